// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"trade-journal/internal/models"
)

// TradeStore defines the interface for trade persistence.
type TradeStore interface {
	// Imports
	SaveImport(ctx context.Context, meta ImportMeta, trades []models.Trade) (*models.ImportBatch, error)
	ListImports(ctx context.Context) ([]models.ImportBatch, error)
	DeleteImport(ctx context.Context, id string) error

	// Trades
	GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error)
	Accounts(ctx context.Context) ([]models.AccountSummary, error)

	// Lifecycle
	Close() error
}

// ImportMeta describes the statement a batch of trades came from.
type ImportMeta struct {
	Source  string
	Account string
	Skipped int
}

// TradeFilter represents filters for querying trades.
type TradeFilter struct {
	Account  string
	Symbol   string
	ImportID string
	From     time.Time
	To       time.Time
	Limit    int
}
