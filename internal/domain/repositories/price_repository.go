package repositories

import (
	"context"
	"time"
)

// PriceRepository resolves token unit prices.
// Lookups are best effort: 0 means the price is unknown.
type PriceRepository interface {
	// CurrentPrice returns the latest price or 0
	CurrentPrice(ctx context.Context, tokenAddress string) float64

	// HistoricalPrice returns the price at ts, falling back to the current price
	HistoricalPrice(ctx context.Context, ts time.Time, tokenAddress string) float64
}
