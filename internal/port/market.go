package port

import (
	"context"
	"time"
)

// Bar is one daily OHLC bar from a market-data provider. Only the close
// is consumed here.
type Bar struct {
	Close     float64
	Currency  string
	Timestamp time.Time
}

// MarketData fetches daily price history for an instrument. The end date
// is exclusive, so a one-day window fetches a single calendar day.
type MarketData interface {
	History(ctx context.Context, symbol string, start, end time.Time) ([]Bar, error)
}
