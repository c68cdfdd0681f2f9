// Package metrics computes aggregate performance statistics and rule-based
// improvement suggestions over a snapshot of journal trades. Every computation
// is a pure function of its input: no state is kept between calls, so the
// package is safe for concurrent use.
package metrics

import (
	"math"
	"sort"
	"time"

	"tradeverse/internal/errors"
	"tradeverse/internal/models"
)

// Filter restricts which trades participate in a summary. Zero-value fields
// are ignored; all set fields must match.
type Filter struct {
	Symbol    string
	Direction models.Direction
	Strategy  string
	From      time.Time
	To        time.Time
}

// Match reports whether the trade passes every set filter field.
// The date range applies to the entry time, inclusive on both ends.
func (f Filter) Match(t *models.Trade) bool {
	if f.Symbol != "" && t.Symbol != f.Symbol {
		return false
	}
	if f.Direction != "" && t.Direction != f.Direction {
		return false
	}
	if f.Strategy != "" && t.Strategy != f.Strategy {
		return false
	}
	if !f.From.IsZero() && t.EntryTime.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && t.EntryTime.After(f.To) {
		return false
	}
	return true
}

// EquityPoint is one step of the cumulative realized P&L curve.
type EquityPoint struct {
	Timestamp  time.Time `json:"timestamp"`
	Cumulative float64   `json:"cumulative"`
}

// BucketStats aggregates closed trades sharing a key (symbol, strategy, weekday).
type BucketStats struct {
	Key     string  `json:"key"`
	Trades  int     `json:"trades"`
	Wins    int     `json:"wins"`
	NetPnL  float64 `json:"net_pnl"`
	WinRate float64 `json:"win_rate"`
}

// Summary holds the aggregate performance statistics for one snapshot of
// trades. It is recomputed on every request and never persisted.
//
// Loss-side fields (AvgLoss, GrossLoss, LargestLoss, MaxDrawdown) are signed:
// they are zero or negative.
type Summary struct {
	TotalTrades    int `json:"total_trades"`
	ClosedTrades   int `json:"closed_trades"`
	OpenTrades     int `json:"open_trades"`
	WinCount       int `json:"win_count"`
	LossCount      int `json:"loss_count"`
	BreakEvenCount int `json:"break_even_count"`

	// WinRate is wins over closed trades, 0 when no trade is closed.
	WinRate float64 `json:"win_rate"`

	AvgWin      float64 `json:"avg_win"`
	AvgLoss     float64 `json:"avg_loss"`
	GrossProfit float64 `json:"gross_profit"`
	GrossLoss   float64 `json:"gross_loss"`

	// ProfitFactor is gross profit over absolute gross loss. It is +Inf when
	// there are gains but no losses, and 0 when there are neither.
	ProfitFactor float64 `json:"profit_factor"`

	NetPnL      float64 `json:"net_pnl"`
	LargestWin  float64 `json:"largest_win"`
	LargestLoss float64 `json:"largest_loss"`

	Expectancy  float64 `json:"expectancy"`
	MaxDrawdown float64 `json:"max_drawdown"`

	AvgHoldDuration time.Duration `json:"avg_hold_duration"`

	// EquityCurve is cumulative realized P&L ordered by exit time ascending.
	// Trades sharing an exit timestamp keep their input order.
	EquityCurve []EquityPoint `json:"equity_curve"`

	BySymbol   []BucketStats `json:"by_symbol"`
	ByStrategy []BucketStats `json:"by_strategy"`
	ByWeekday  []BucketStats `json:"by_weekday"`
}

// ComputeSummary aggregates the given trades into a Summary. Trades that do
// not match the filter are excluded. Open trades count toward TotalTrades and
// OpenTrades but contribute nothing to win/loss statistics or the equity
// curve.
//
// A malformed record is never skipped: dropping it silently would corrupt the
// aggregates, so the first one found aborts the computation with an error
// matching errors.ErrInvalidTradeRecord. An empty input is valid and produces
// a zero summary.
func ComputeSummary(trades []models.Trade, filter Filter) (*Summary, error) {
	s := &Summary{}

	var closed []closedTrade
	var totalHold time.Duration

	for i := range trades {
		t := &trades[i]
		if err := checkRecord(t); err != nil {
			return nil, err
		}
		if !filter.Match(t) {
			continue
		}

		s.TotalTrades++
		if !t.Closed() {
			s.OpenTrades++
			continue
		}

		pnl := t.RealizedPnL()
		s.ClosedTrades++
		s.NetPnL += pnl
		totalHold += t.HoldDuration()
		closed = append(closed, closedTrade{trade: t, pnl: pnl})

		switch {
		case pnl > 0:
			s.WinCount++
			s.GrossProfit += pnl
			if pnl > s.LargestWin {
				s.LargestWin = pnl
			}
		case pnl < 0:
			s.LossCount++
			s.GrossLoss += pnl
			if pnl < s.LargestLoss {
				s.LargestLoss = pnl
			}
		default:
			s.BreakEvenCount++
		}
	}

	if s.ClosedTrades > 0 {
		s.WinRate = float64(s.WinCount) / float64(s.ClosedTrades)
		s.Expectancy = s.NetPnL / float64(s.ClosedTrades)
		s.AvgHoldDuration = totalHold / time.Duration(s.ClosedTrades)
	}
	if s.WinCount > 0 {
		s.AvgWin = s.GrossProfit / float64(s.WinCount)
	}
	if s.LossCount > 0 {
		s.AvgLoss = s.GrossLoss / float64(s.LossCount)
	}
	s.ProfitFactor = profitFactor(s.GrossProfit, s.GrossLoss)

	// Equity curve: stable sort keeps input order for equal exit timestamps.
	sort.SliceStable(closed, func(i, j int) bool {
		return closed[i].trade.ExitTime.Before(*closed[j].trade.ExitTime)
	})

	var cumulative, peak float64
	for _, c := range closed {
		cumulative += c.pnl
		s.EquityCurve = append(s.EquityCurve, EquityPoint{
			Timestamp:  *c.trade.ExitTime,
			Cumulative: cumulative,
		})
		if cumulative > peak {
			peak = cumulative
		}
		if dd := cumulative - peak; dd < s.MaxDrawdown {
			s.MaxDrawdown = dd
		}
	}

	s.BySymbol = bucketize(closed, func(t *models.Trade) string { return t.Symbol })
	s.ByStrategy = bucketize(closed, func(t *models.Trade) string {
		if t.Strategy == "" {
			return "manual"
		}
		return t.Strategy
	})
	s.ByWeekday = bucketizeWeekdays(closed)

	return s, nil
}

// checkRecord rejects records the engine cannot interpret. Full validation
// happens at the store boundary; this is only the interpretability check for
// snapshots arriving from other sources.
func checkRecord(t *models.Trade) error {
	if !t.Direction.Valid() {
		return errors.NewValidationError("direction", string(t.Direction), "direction must be LONG or SHORT")
	}
	if t.EntryPrice <= 0 || t.Quantity <= 0 {
		return errors.NewValidationError("trade", t.ID, "entry price and quantity must be positive")
	}
	if (t.ExitPrice == nil) != (t.ExitTime == nil) {
		return errors.NewValidationError("exit", t.ID, "exit price and exit time must both be set or both be empty")
	}
	if t.Closed() && t.ExitTime.Before(t.EntryTime) {
		return errors.NewValidationError("exit_time", t.ID, "exit time must not be earlier than entry time")
	}
	return nil
}

func profitFactor(grossProfit, grossLoss float64) float64 {
	if grossLoss == 0 {
		if grossProfit > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return grossProfit / -grossLoss
}

type closedTrade struct {
	trade *models.Trade
	pnl   float64
}

func bucketize(closed []closedTrade, keyFn func(*models.Trade) string) []BucketStats {
	byKey := make(map[string]*BucketStats)
	for _, c := range closed {
		key := keyFn(c.trade)
		b, ok := byKey[key]
		if !ok {
			b = &BucketStats{Key: key}
			byKey[key] = b
		}
		b.Trades++
		b.NetPnL += c.pnl
		if c.pnl > 0 {
			b.Wins++
		}
	}
	return sortBuckets(byKey)
}

func bucketizeWeekdays(closed []closedTrade) []BucketStats {
	byKey := make(map[string]*BucketStats)
	for _, c := range closed {
		key := c.trade.ExitTime.Weekday().String()
		b, ok := byKey[key]
		if !ok {
			b = &BucketStats{Key: key}
			byKey[key] = b
		}
		b.Trades++
		b.NetPnL += c.pnl
		if c.pnl > 0 {
			b.Wins++
		}
	}

	// Weekday buckets follow calendar order rather than lexicographic order.
	var out []BucketStats
	for d := time.Sunday; d <= time.Saturday; d++ {
		if b, ok := byKey[d.String()]; ok {
			b.WinRate = float64(b.Wins) / float64(b.Trades)
			out = append(out, *b)
		}
	}
	return out
}

func sortBuckets(byKey map[string]*BucketStats) []BucketStats {
	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]BucketStats, 0, len(keys))
	for _, k := range keys {
		b := byKey[k]
		b.WinRate = float64(b.Wins) / float64(b.Trades)
		out = append(out, *b)
	}
	return out
}
