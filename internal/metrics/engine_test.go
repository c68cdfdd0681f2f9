package metrics

import (
	"math"
	"testing"
	"time"

	apperrors "tradeverse/internal/errors"
	"tradeverse/internal/models"
)

func closedTradeAt(symbol string, dir models.Direction, entry, exit, qty, fees float64, exitTime time.Time) models.Trade {
	entryTime := exitTime.Add(-2 * time.Hour)
	return models.Trade{
		Symbol:     symbol,
		Direction:  dir,
		EntryPrice: entry,
		ExitPrice:  &exit,
		Quantity:   qty,
		EntryTime:  entryTime,
		ExitTime:   &exitTime,
		Fees:       fees,
	}
}

func TestComputeSummaryBasic(t *testing.T) {
	base := time.Date(2026, 3, 2, 15, 30, 0, 0, time.UTC)

	trades := []models.Trade{
		// Long 100 -> 110, qty 1, no fees: +10
		closedTradeAt("AAA", models.Long, 100, 110, 1, 0, base),
		// Short 50 -> 45, qty 2, fee 1: (50-45)*2 - 1 = +9
		closedTradeAt("BBB", models.Short, 50, 45, 2, 1, base.Add(time.Hour)),
	}

	s, err := ComputeSummary(trades, Filter{})
	if err != nil {
		t.Fatalf("ComputeSummary failed: %v", err)
	}

	if s.TotalTrades != 2 || s.ClosedTrades != 2 || s.OpenTrades != 0 {
		t.Errorf("counts = %d/%d/%d, want 2/2/0", s.TotalTrades, s.ClosedTrades, s.OpenTrades)
	}
	if s.WinCount != 2 || s.LossCount != 0 {
		t.Errorf("wins/losses = %d/%d, want 2/0", s.WinCount, s.LossCount)
	}
	if math.Abs(s.NetPnL-19) > 1e-9 {
		t.Errorf("NetPnL = %v, want 19", s.NetPnL)
	}
	if s.WinRate != 1.0 {
		t.Errorf("WinRate = %v, want 1.0", s.WinRate)
	}
	if !math.IsInf(s.ProfitFactor, 1) {
		t.Errorf("ProfitFactor = %v, want +Inf with no losses", s.ProfitFactor)
	}
	if math.Abs(s.Expectancy-9.5) > 1e-9 {
		t.Errorf("Expectancy = %v, want 9.5", s.Expectancy)
	}

	if len(s.EquityCurve) != 2 {
		t.Fatalf("equity curve has %d points, want 2", len(s.EquityCurve))
	}
	if math.Abs(s.EquityCurve[0].Cumulative-10) > 1e-9 {
		t.Errorf("first equity point = %v, want 10", s.EquityCurve[0].Cumulative)
	}
	if math.Abs(s.EquityCurve[1].Cumulative-19) > 1e-9 {
		t.Errorf("final equity point = %v, want 19", s.EquityCurve[1].Cumulative)
	}
}

func TestComputeSummaryEmptyInput(t *testing.T) {
	s, err := ComputeSummary(nil, Filter{})
	if err != nil {
		t.Fatalf("empty input must not error, got %v", err)
	}
	if s.TotalTrades != 0 || s.ClosedTrades != 0 || s.NetPnL != 0 {
		t.Errorf("empty input should produce a zero summary, got %+v", s)
	}
	if s.ProfitFactor != 0 {
		t.Errorf("ProfitFactor = %v, want 0 with no trades", s.ProfitFactor)
	}
	if len(s.EquityCurve) != 0 {
		t.Errorf("equity curve should be empty, got %d points", len(s.EquityCurve))
	}
}

func TestComputeSummaryOpenTrades(t *testing.T) {
	base := time.Date(2026, 3, 2, 15, 30, 0, 0, time.UTC)
	trades := []models.Trade{
		closedTradeAt("AAA", models.Long, 100, 90, 1, 0, base),
		{
			Symbol:     "AAA",
			Direction:  models.Long,
			EntryPrice: 100,
			Quantity:   5,
			EntryTime:  base,
		},
	}

	s, err := ComputeSummary(trades, Filter{})
	if err != nil {
		t.Fatalf("ComputeSummary failed: %v", err)
	}
	if s.TotalTrades != 2 || s.ClosedTrades != 1 || s.OpenTrades != 1 {
		t.Errorf("counts = %d/%d/%d, want 2/1/1", s.TotalTrades, s.ClosedTrades, s.OpenTrades)
	}
	// The open trade contributes nothing to P&L.
	if math.Abs(s.NetPnL+10) > 1e-9 {
		t.Errorf("NetPnL = %v, want -10", s.NetPnL)
	}
	if len(s.EquityCurve) != 1 {
		t.Errorf("equity curve has %d points, want 1", len(s.EquityCurve))
	}
}

func TestComputeSummaryMalformedRecord(t *testing.T) {
	base := time.Date(2026, 3, 2, 15, 30, 0, 0, time.UTC)

	cases := []struct {
		name  string
		trade models.Trade
	}{
		{"bad direction", func() models.Trade {
			tr := closedTradeAt("AAA", models.Long, 100, 110, 1, 0, base)
			tr.Direction = "SIDEWAYS"
			return tr
		}()},
		{"zero quantity", func() models.Trade {
			tr := closedTradeAt("AAA", models.Long, 100, 110, 1, 0, base)
			tr.Quantity = 0
			return tr
		}()},
		{"exit price without exit time", func() models.Trade {
			tr := closedTradeAt("AAA", models.Long, 100, 110, 1, 0, base)
			tr.ExitTime = nil
			return tr
		}()},
		{"exit before entry", func() models.Trade {
			tr := closedTradeAt("AAA", models.Long, 100, 110, 1, 0, base)
			early := tr.EntryTime.Add(-time.Hour)
			tr.ExitTime = &early
			return tr
		}()},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComputeSummary([]models.Trade{tc.trade}, Filter{})
			if err == nil {
				t.Fatal("malformed record must abort the computation, got nil error")
			}
			if !apperrors.Is(err, apperrors.ErrInvalidTradeRecord) {
				t.Errorf("error %v does not match ErrInvalidTradeRecord", err)
			}
		})
	}
}

func TestComputeSummaryFilter(t *testing.T) {
	base := time.Date(2026, 3, 2, 15, 30, 0, 0, time.UTC)
	trades := []models.Trade{
		closedTradeAt("AAA", models.Long, 100, 110, 1, 0, base),
		closedTradeAt("BBB", models.Short, 50, 45, 2, 0, base.Add(time.Hour)),
	}
	trades[0].Strategy = "breakout"
	trades[1].Strategy = "reversal"

	t.Run("by symbol", func(t *testing.T) {
		s, err := ComputeSummary(trades, Filter{Symbol: "AAA"})
		if err != nil {
			t.Fatal(err)
		}
		if s.TotalTrades != 1 || math.Abs(s.NetPnL-10) > 1e-9 {
			t.Errorf("got %d trades, net %v; want 1 trade, net 10", s.TotalTrades, s.NetPnL)
		}
	})

	t.Run("by direction", func(t *testing.T) {
		s, err := ComputeSummary(trades, Filter{Direction: models.Short})
		if err != nil {
			t.Fatal(err)
		}
		if s.TotalTrades != 1 || math.Abs(s.NetPnL-10) > 1e-9 {
			t.Errorf("got %d trades, net %v; want 1 trade, net 10", s.TotalTrades, s.NetPnL)
		}
	})

	t.Run("by strategy", func(t *testing.T) {
		s, err := ComputeSummary(trades, Filter{Strategy: "breakout"})
		if err != nil {
			t.Fatal(err)
		}
		if s.TotalTrades != 1 {
			t.Errorf("got %d trades, want 1", s.TotalTrades)
		}
	})

	t.Run("date range inclusive", func(t *testing.T) {
		from := trades[0].EntryTime
		to := trades[0].EntryTime
		s, err := ComputeSummary(trades, Filter{From: from, To: to})
		if err != nil {
			t.Fatal(err)
		}
		if s.TotalTrades != 1 {
			t.Errorf("range bounds must be inclusive, got %d trades", s.TotalTrades)
		}
	})

	t.Run("no match is empty not error", func(t *testing.T) {
		s, err := ComputeSummary(trades, Filter{Symbol: "ZZZ"})
		if err != nil {
			t.Fatal(err)
		}
		if s.TotalTrades != 0 {
			t.Errorf("got %d trades, want 0", s.TotalTrades)
		}
	})

	// Filtering never hides malformed records.
	t.Run("malformed record outside filter still errors", func(t *testing.T) {
		bad := closedTradeAt("CCC", models.Long, 100, 110, 1, 0, base)
		bad.Quantity = -1
		_, err := ComputeSummary(append(trades, bad), Filter{Symbol: "AAA"})
		if !apperrors.Is(err, apperrors.ErrInvalidTradeRecord) {
			t.Errorf("expected ErrInvalidTradeRecord, got %v", err)
		}
	})
}

func TestComputeSummaryProfitFactor(t *testing.T) {
	base := time.Date(2026, 3, 2, 15, 30, 0, 0, time.UTC)

	t.Run("only losses", func(t *testing.T) {
		s, err := ComputeSummary([]models.Trade{
			closedTradeAt("AAA", models.Long, 100, 90, 1, 0, base),
		}, Filter{})
		if err != nil {
			t.Fatal(err)
		}
		if s.ProfitFactor != 0 {
			t.Errorf("ProfitFactor = %v, want 0 with no gross profit", s.ProfitFactor)
		}
	})

	t.Run("mixed", func(t *testing.T) {
		s, err := ComputeSummary([]models.Trade{
			closedTradeAt("AAA", models.Long, 100, 130, 1, 0, base),               // +30
			closedTradeAt("AAA", models.Long, 100, 90, 1, 0, base.Add(time.Hour)), // -10
		}, Filter{})
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(s.ProfitFactor-3) > 1e-9 {
			t.Errorf("ProfitFactor = %v, want 3", s.ProfitFactor)
		}
		if math.Abs(s.GrossLoss+10) > 1e-9 {
			t.Errorf("GrossLoss = %v, want -10 (signed)", s.GrossLoss)
		}
		if math.Abs(s.AvgLoss+10) > 1e-9 {
			t.Errorf("AvgLoss = %v, want -10 (signed)", s.AvgLoss)
		}
	})
}

func TestComputeSummaryDrawdown(t *testing.T) {
	base := time.Date(2026, 3, 2, 15, 30, 0, 0, time.UTC)
	// +20, -30, +5: peak 20, trough -10, drawdown -30.
	trades := []models.Trade{
		closedTradeAt("AAA", models.Long, 100, 120, 1, 0, base),
		closedTradeAt("AAA", models.Long, 100, 70, 1, 0, base.Add(time.Hour)),
		closedTradeAt("AAA", models.Long, 100, 105, 1, 0, base.Add(2*time.Hour)),
	}

	s, err := ComputeSummary(trades, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(s.MaxDrawdown+30) > 1e-9 {
		t.Errorf("MaxDrawdown = %v, want -30", s.MaxDrawdown)
	}
}

func TestEquityCurveTieStability(t *testing.T) {
	exitTime := time.Date(2026, 3, 2, 15, 30, 0, 0, time.UTC)
	trades := []models.Trade{
		closedTradeAt("FIRST", models.Long, 100, 110, 1, 0, exitTime), // +10
		closedTradeAt("SECOND", models.Long, 100, 95, 1, 0, exitTime), // -5
		closedTradeAt("THIRD", models.Long, 100, 101, 1, 0, exitTime), // +1
	}

	s, err := ComputeSummary(trades, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{10, 5, 6}
	if len(s.EquityCurve) != len(want) {
		t.Fatalf("equity curve has %d points, want %d", len(s.EquityCurve), len(want))
	}
	for i, w := range want {
		if math.Abs(s.EquityCurve[i].Cumulative-w) > 1e-9 {
			t.Errorf("point %d = %v, want %v (ties must keep input order)", i, s.EquityCurve[i].Cumulative, w)
		}
	}
}

func TestBucketOrdering(t *testing.T) {
	base := time.Date(2026, 3, 2, 15, 30, 0, 0, time.UTC) // Monday

	trades := []models.Trade{
		closedTradeAt("ZZZ", models.Long, 100, 110, 1, 0, base),
		closedTradeAt("AAA", models.Long, 100, 110, 1, 0, base.Add(time.Hour)),
		closedTradeAt("MMM", models.Long, 100, 90, 1, 0, base.AddDate(0, 0, 2)), // Wednesday
	}

	s, err := ComputeSummary(trades, Filter{})
	if err != nil {
		t.Fatal(err)
	}

	// Symbol buckets sort lexicographically.
	gotSymbols := make([]string, len(s.BySymbol))
	for i, b := range s.BySymbol {
		gotSymbols[i] = b.Key
	}
	wantSymbols := []string{"AAA", "MMM", "ZZZ"}
	for i := range wantSymbols {
		if gotSymbols[i] != wantSymbols[i] {
			t.Fatalf("BySymbol keys = %v, want %v", gotSymbols, wantSymbols)
		}
	}

	// Weekday buckets follow calendar order.
	if len(s.ByWeekday) != 2 || s.ByWeekday[0].Key != "Monday" || s.ByWeekday[1].Key != "Wednesday" {
		t.Errorf("ByWeekday = %+v, want Monday then Wednesday", s.ByWeekday)
	}

	// Untagged trades land in the "manual" strategy bucket.
	if len(s.ByStrategy) != 1 || s.ByStrategy[0].Key != "manual" {
		t.Errorf("ByStrategy = %+v, want a single manual bucket", s.ByStrategy)
	}
}

func TestComputeSummaryDeterminism(t *testing.T) {
	base := time.Date(2026, 3, 2, 15, 30, 0, 0, time.UTC)
	trades := []models.Trade{
		closedTradeAt("AAA", models.Long, 100, 110, 1, 0, base),
		closedTradeAt("BBB", models.Short, 50, 55, 2, 0, base.Add(time.Hour)),
		closedTradeAt("CCC", models.Long, 200, 210, 3, 5, base.Add(2*time.Hour)),
	}

	first, err := ComputeSummary(trades, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := ComputeSummary(trades, Filter{})
		if err != nil {
			t.Fatal(err)
		}
		if len(again.BySymbol) != len(first.BySymbol) {
			t.Fatal("bucket count changed between runs")
		}
		for j := range again.BySymbol {
			if again.BySymbol[j] != first.BySymbol[j] {
				t.Fatalf("BySymbol[%d] differs between runs: %+v vs %+v", j, again.BySymbol[j], first.BySymbol[j])
			}
		}
		if again.NetPnL != first.NetPnL || again.WinRate != first.WinRate {
			t.Fatal("aggregates differ between identical runs")
		}
	}
}
