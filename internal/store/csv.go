package store

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	apperrors "tradeverse/internal/errors"
	"tradeverse/internal/models"
)

// csvTrade is the flat CSV representation of a trade. Timestamps are RFC 3339
// strings; empty exit fields mean the position is still open.
type csvTrade struct {
	ID         string  `csv:"id"`
	Symbol     string  `csv:"symbol"`
	Direction  string  `csv:"direction"`
	EntryPrice float64 `csv:"entry_price"`
	ExitPrice  string  `csv:"exit_price"`
	Quantity   float64 `csv:"quantity"`
	EntryTime  string  `csv:"entry_time"`
	ExitTime   string  `csv:"exit_time"`
	Fees       float64 `csv:"fees"`
	Strategy   string  `csv:"strategy"`
	Tags       string  `csv:"tags"`
	Notes      string  `csv:"notes"`
}

// ExportCSV writes trades to w in CSV form.
func ExportCSV(w io.Writer, trades []models.Trade) error {
	rows := make([]csvTrade, 0, len(trades))
	for i := range trades {
		rows = append(rows, toCSVTrade(&trades[i]))
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return apperrors.Wrap(err, "failed to write csv")
	}
	return nil
}

// ImportCSV reads trades from r. Every row is validated; the first malformed
// row aborts the import with its row number, since silently skipping a record
// would corrupt later aggregates.
func ImportCSV(r io.Reader) ([]models.Trade, error) {
	var rows []csvTrade
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, apperrors.NewImportError("csv", 0, err)
	}

	trades := make([]models.Trade, 0, len(rows))
	for i, row := range rows {
		trade, err := fromCSVTrade(row)
		if err != nil {
			return nil, apperrors.NewImportError("csv", i+1, err)
		}
		if err := trade.Validate(); err != nil {
			return nil, apperrors.NewImportError("csv", i+1, err)
		}
		trades = append(trades, *trade)
	}
	return trades, nil
}

func toCSVTrade(t *models.Trade) csvTrade {
	row := csvTrade{
		ID:         t.ID,
		Symbol:     t.Symbol,
		Direction:  string(t.Direction),
		EntryPrice: t.EntryPrice,
		Quantity:   t.Quantity,
		EntryTime:  t.EntryTime.Format(time.RFC3339),
		Fees:       t.Fees,
		Strategy:   t.Strategy,
		Tags:       strings.Join(t.Tags, "|"),
		Notes:      t.Notes,
	}
	if t.ExitPrice != nil {
		row.ExitPrice = formatFloat(*t.ExitPrice)
	}
	if t.ExitTime != nil {
		row.ExitTime = t.ExitTime.Format(time.RFC3339)
	}
	return row
}

func fromCSVTrade(row csvTrade) (*models.Trade, error) {
	entryTime, err := time.Parse(time.RFC3339, row.EntryTime)
	if err != nil {
		return nil, apperrors.NewValidationError("entry_time", row.EntryTime, "entry time must be RFC 3339")
	}

	trade := &models.Trade{
		ID:         row.ID,
		Symbol:     row.Symbol,
		Direction:  models.Direction(row.Direction),
		EntryPrice: row.EntryPrice,
		Quantity:   row.Quantity,
		EntryTime:  entryTime,
		Fees:       row.Fees,
		Strategy:   row.Strategy,
		Notes:      row.Notes,
	}
	if row.Tags != "" {
		trade.Tags = strings.Split(row.Tags, "|")
	}
	if row.ExitPrice != "" {
		price, err := parseFloat(row.ExitPrice)
		if err != nil {
			return nil, apperrors.NewValidationError("exit_price", row.ExitPrice, "exit price must be numeric")
		}
		trade.ExitPrice = &price
	}
	if row.ExitTime != "" {
		exitTime, err := time.Parse(time.RFC3339, row.ExitTime)
		if err != nil {
			return nil, apperrors.NewValidationError("exit_time", row.ExitTime, "exit time must be RFC 3339")
		}
		trade.ExitTime = &exitTime
	}
	return trade, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}
