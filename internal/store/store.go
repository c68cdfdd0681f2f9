// Package store provides data persistence for the trade journal.
package store

import (
	"context"
	"time"

	"tradeverse/internal/models"
)

// TradeStore defines the persistence interface for journal trades.
type TradeStore interface {
	// SaveTrade validates and persists a trade, assigning an ID when empty.
	SaveTrade(ctx context.Context, trade *models.Trade) error
	// GetTrade returns the trade with the given ID, or errors.ErrTradeNotFound.
	GetTrade(ctx context.Context, id string) (*models.Trade, error)
	// ListTrades returns trades matching the filter, ordered by entry time
	// ascending. Insertion order breaks entry-time ties.
	ListTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error)
	// UpdateTrade validates and replaces an existing trade.
	UpdateTrade(ctx context.Context, trade *models.Trade) error
	// DeleteTrade removes the trade with the given ID.
	DeleteTrade(ctx context.Context, id string) error

	Close() error
}

// TradeFilter represents filters for querying trades. Zero-value fields are
// ignored.
type TradeFilter struct {
	Symbol    string
	Direction models.Direction
	Strategy  string
	From      time.Time
	To        time.Time
	// OnlyOpen and OnlyClosed are mutually exclusive.
	OnlyOpen   bool
	OnlyClosed bool
	Limit      int
}
