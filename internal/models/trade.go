// Package models provides domain models for the trade journal.
package models

import (
	"time"

	"tradeverse/internal/errors"
)

// Direction represents the side of a trade.
type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
)

// Valid reports whether the direction is a known value.
func (d Direction) Valid() bool {
	return d == Long || d == Short
}

// Sign returns +1 for long trades and -1 for short trades.
func (d Direction) Sign() float64 {
	if d == Short {
		return -1
	}
	return 1
}

// Trade represents a single journal entry: one position from entry to exit.
// ExitPrice and ExitTime are nil while the position is still open.
type Trade struct {
	ID         string
	Symbol     string
	Direction  Direction
	EntryPrice float64
	ExitPrice  *float64
	Quantity   float64
	EntryTime  time.Time
	ExitTime   *time.Time
	Fees       float64
	Strategy   string
	Tags       []string
	Notes      string
	CreatedAt  time.Time
}

// Closed reports whether the trade has both an exit price and an exit time.
func (t *Trade) Closed() bool {
	return t.ExitPrice != nil && t.ExitTime != nil
}

// RealizedPnL returns the realized profit or loss net of fees.
// Open trades have no realized P&L.
func (t *Trade) RealizedPnL() float64 {
	if !t.Closed() {
		return 0
	}
	return (*t.ExitPrice-t.EntryPrice)*t.Quantity*t.Direction.Sign() - t.Fees
}

// HoldDuration returns the time between entry and exit. Open trades report zero.
func (t *Trade) HoldDuration() time.Duration {
	if !t.Closed() {
		return 0
	}
	return t.ExitTime.Sub(t.EntryTime)
}

// Validate checks the trade invariants. It runs once at the store boundary;
// downstream consumers treat stored trades as pre-validated.
func (t *Trade) Validate() error {
	if t.Symbol == "" {
		return errors.NewValidationError("symbol", t.Symbol, "symbol is required")
	}
	if !t.Direction.Valid() {
		return errors.NewValidationError("direction", string(t.Direction), "direction must be LONG or SHORT")
	}
	if t.EntryPrice <= 0 {
		return errors.NewValidationError("entry_price", t.EntryPrice, "entry price must be positive")
	}
	if t.Quantity <= 0 {
		return errors.NewValidationError("quantity", t.Quantity, "quantity must be positive")
	}
	if t.Fees < 0 {
		return errors.NewValidationError("fees", t.Fees, "fees must be non-negative")
	}
	if t.EntryTime.IsZero() {
		return errors.NewValidationError("entry_time", t.EntryTime, "entry time is required")
	}
	// Exit price and exit time must be set together.
	if (t.ExitPrice == nil) != (t.ExitTime == nil) {
		return errors.NewValidationError("exit", nil, "exit price and exit time must both be set or both be empty")
	}
	if t.Closed() {
		if *t.ExitPrice <= 0 {
			return errors.NewValidationError("exit_price", *t.ExitPrice, "exit price must be positive")
		}
		if t.ExitTime.Before(t.EntryTime) {
			return errors.NewValidationError("exit_time", *t.ExitTime, "exit time must not be earlier than entry time")
		}
	}
	return nil
}
