package store

import (
	"bytes"
	"strings"
	"testing"
	"time"

	apperrors "tradeverse/internal/errors"
	"tradeverse/internal/models"
)

func TestCSVRoundTrip(t *testing.T) {
	exitPrice := 2465.0
	entryTime := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	exitTime := entryTime.Add(4 * time.Hour)

	trades := []models.Trade{
		{
			ID:         "01HVXK3E8Y0000000000000001",
			Symbol:     "RELIANCE",
			Direction:  models.Long,
			EntryPrice: 2440,
			ExitPrice:  &exitPrice,
			Quantity:   10,
			EntryTime:  entryTime,
			ExitTime:   &exitTime,
			Fees:       20,
			Strategy:   "breakout",
			Tags:       []string{"gap-up", "high-volume"},
			Notes:      "entered on retest",
		},
		{
			// Open position: exit columns stay empty.
			ID:         "01HVXK3E8Y0000000000000002",
			Symbol:     "TCS",
			Direction:  models.Short,
			EntryPrice: 4100,
			Quantity:   5,
			EntryTime:  entryTime.Add(time.Hour),
		},
	}

	var buf bytes.Buffer
	if err := ExportCSV(&buf, trades); err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}

	got, err := ImportCSV(&buf)
	if err != nil {
		t.Fatalf("ImportCSV failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d trades, want 2", len(got))
	}

	closed := got[0]
	if closed.Symbol != "RELIANCE" || !closed.Closed() || *closed.ExitPrice != exitPrice {
		t.Errorf("closed trade mangled: %+v", closed)
	}
	if !closed.ExitTime.Equal(exitTime) {
		t.Errorf("exit time = %v, want %v", closed.ExitTime, exitTime)
	}
	if len(closed.Tags) != 2 || closed.Tags[1] != "high-volume" {
		t.Errorf("tags = %v", closed.Tags)
	}

	open := got[1]
	if open.Closed() || open.ExitPrice != nil || open.ExitTime != nil {
		t.Errorf("open trade gained exit fields: %+v", open)
	}
}

func TestImportCSVRejectsMalformedRow(t *testing.T) {
	// Second row has an invalid direction; the import must abort rather than
	// skip it.
	csv := strings.Join([]string{
		"id,symbol,direction,entry_price,exit_price,quantity,entry_time,exit_time,fees,strategy,tags,notes",
		"a1,RELIANCE,LONG,100,110,1,2026-03-02T09:30:00Z,2026-03-02T11:30:00Z,0,,,",
		"a2,TCS,SIDEWAYS,100,110,1,2026-03-02T09:30:00Z,2026-03-02T11:30:00Z,0,,,",
	}, "\n")

	_, err := ImportCSV(strings.NewReader(csv))
	if err == nil {
		t.Fatal("malformed row must abort the import")
	}
	if !apperrors.Is(err, apperrors.ErrInvalidTradeRecord) {
		t.Errorf("error %v does not match ErrInvalidTradeRecord", err)
	}

	var importErr *apperrors.ImportError
	if !apperrors.As(err, &importErr) {
		t.Fatalf("error %v is not an ImportError", err)
	}
	if importErr.Row != 2 {
		t.Errorf("row = %d, want 2", importErr.Row)
	}
}

func TestImportCSVBadTimestamp(t *testing.T) {
	csv := strings.Join([]string{
		"id,symbol,direction,entry_price,exit_price,quantity,entry_time,exit_time,fees,strategy,tags,notes",
		"a1,RELIANCE,LONG,100,,1,yesterday,,0,,,",
	}, "\n")

	_, err := ImportCSV(strings.NewReader(csv))
	if !apperrors.Is(err, apperrors.ErrInvalidTradeRecord) {
		t.Errorf("expected ErrInvalidTradeRecord, got %v", err)
	}
}
