package collector

import (
	"context"
	"errors"

	"MarketScout/internal/model"
)

// ErrNoData signals that the provider has nothing for the symbol. It is not
// a failure: the scanner skips the instrument.
var ErrNoData = errors.New("no data")

// Provider defines the interface for fetching market data.
type Provider interface {
	// FetchSeries returns up to period daily bars, oldest first.
	FetchSeries(ctx context.Context, symbol string, period int) (model.PriceSeries, error)
	// FetchQuote returns the latest quote with its 24h change.
	FetchQuote(ctx context.Context, symbol string) (model.MarketQuote, error)
	Name() string
}

// Composite sends series requests to one provider and quote requests to another.
type Composite struct {
	Series Provider
	Quotes Provider
}

func (c Composite) Name() string { return c.Series.Name() + "/" + c.Quotes.Name() }

func (c Composite) FetchSeries(ctx context.Context, symbol string, period int) (model.PriceSeries, error) {
	return c.Series.FetchSeries(ctx, symbol, period)
}

func (c Composite) FetchQuote(ctx context.Context, symbol string) (model.MarketQuote, error) {
	return c.Quotes.FetchQuote(ctx, symbol)
}
