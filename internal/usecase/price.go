package usecase

import (
	"context"
	"fmt"
	"time"

	"finagent/internal/domain"
	"finagent/internal/port"
)

const priceSource = "yahoo_finance"

// PriceLookup resolves an instrument reference to a single-day close
// price. Every failure mode is folded into a structured PriceResult so
// the run always reaches the generator with some result.
type PriceLookup struct {
	market port.MarketData
	now    func() time.Time
}

func NewPriceLookup(market port.MarketData) *PriceLookup {
	return &PriceLookup{market: market, now: time.Now}
}

// NewPriceLookupAt pins "today" for deterministic tests.
func NewPriceLookupAt(market port.MarketData, now func() time.Time) *PriceLookup {
	return &PriceLookup{market: market, now: now}
}

// Lookup validates the reference and queries the provider for that
// day's close. Validation order: missing inputs, future date, weekend,
// then the provider call.
func (p *PriceLookup) Lookup(ctx context.Context, ref domain.InstrumentRef) domain.PriceResult {
	if ref.Symbol == "" || ref.Date == "" {
		return domain.PriceResult{Err: "ticker and date must be provided"}
	}

	day, err := time.ParseInLocation("2006-01-02", ref.Date, time.UTC)
	if err != nil {
		return domain.PriceResult{Err: fmt.Sprintf("%s is not a valid date", ref.Date)}
	}

	today := p.now().UTC().Truncate(24 * time.Hour)
	if day.After(today) {
		return domain.PriceResult{Err: fmt.Sprintf("%s is in the future, no data available", ref.Date)}
	}
	if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return domain.PriceResult{Err: fmt.Sprintf("%s is a weekend, no data available", ref.Date)}
	}

	// Exclusive end: fetch only the requested calendar day.
	bars, err := p.market.History(ctx, ref.Symbol, day, day.AddDate(0, 0, 1))
	if err != nil {
		return domain.PriceResult{Err: fmt.Sprintf("price lookup for %s failed: %v", ref.Symbol, err)}
	}
	if len(bars) == 0 {
		return domain.PriceResult{Err: fmt.Sprintf("no data for %s on %s", ref.Symbol, ref.Date)}
	}

	bar := bars[0]
	currency := bar.Currency
	if currency == "" {
		currency = "USD"
	}

	displayName := ref.DisplayName
	if displayName == "" {
		displayName = ref.Symbol
	}

	return domain.PriceResult{
		Source:      priceSource,
		Ticker:      ref.Symbol,
		Price:       bar.Close,
		Currency:    currency,
		AsOf:        bar.Timestamp,
		DisplayName: displayName,
	}
}
