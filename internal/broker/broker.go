// Package broker provides external trade sources for the journal.
package broker

import (
	"context"

	"tradeverse/internal/models"
)

// ImportSource supplies executed trades from an external broker account.
// Implementations convert broker records into journal trades; the store
// validates them on save like any other input.
type ImportSource interface {
	// Name identifies the source in logs and import notes.
	Name() string
	// FetchTrades returns the completed trades available from the source.
	FetchTrades(ctx context.Context) ([]models.Trade, error)
}
