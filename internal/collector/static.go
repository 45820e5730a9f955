package collector

import (
	"context"
	"sync"
	"time"

	"MarketScout/internal/model"
)

// StaticProvider serves fixed in-memory data. Symbols without data yield
// ErrNoData; symbols listed in Errors fail with that error.
type StaticProvider struct {
	mu     sync.RWMutex
	Series map[string]model.PriceSeries
	Quotes map[string]model.MarketQuote
	Errors map[string]error
}

// NewStaticProvider creates an empty StaticProvider.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{
		Series: make(map[string]model.PriceSeries),
		Quotes: make(map[string]model.MarketQuote),
		Errors: make(map[string]error),
	}
}

func (p *StaticProvider) Name() string { return "static" }

// SetSeries stores a series for symbol.
func (p *StaticProvider) SetSeries(symbol string, s model.PriceSeries) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s.Symbol = symbol
	p.Series[symbol] = s
}

// SetQuote stores a quote for symbol.
func (p *StaticProvider) SetQuote(symbol string, q model.MarketQuote) {
	p.mu.Lock()
	defer p.mu.Unlock()
	q.Symbol = symbol
	p.Quotes[symbol] = q
}

// SetError makes every fetch for symbol fail with err.
func (p *StaticProvider) SetError(symbol string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Errors[symbol] = err
}

func (p *StaticProvider) FetchSeries(ctx context.Context, symbol string, period int) (model.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return model.PriceSeries{}, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.Errors[symbol]; err != nil {
		return model.PriceSeries{}, err
	}
	s, ok := p.Series[symbol]
	if !ok || s.Empty() {
		return model.PriceSeries{}, ErrNoData
	}
	bars := s.Bars
	if period > 0 && len(bars) > period {
		bars = bars[len(bars)-period:]
	}
	return model.PriceSeries{Symbol: symbol, Bars: append([]model.OHLCV(nil), bars...), FetchedAt: time.Now()}, nil
}

func (p *StaticProvider) FetchQuote(ctx context.Context, symbol string) (model.MarketQuote, error) {
	if err := ctx.Err(); err != nil {
		return model.MarketQuote{}, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.Errors[symbol]; err != nil {
		return model.MarketQuote{}, err
	}
	if q, ok := p.Quotes[symbol]; ok {
		return q, nil
	}
	// derive a quote from the series when only history is known
	if s, ok := p.Series[symbol]; ok && len(s.Bars) > 0 {
		return quoteFromBars(symbol, s.Bars), nil
	}
	return model.MarketQuote{}, ErrNoData
}

// quoteFromBars builds a quote from the last two bars of a daily series.
func quoteFromBars(symbol string, bars []model.OHLCV) model.MarketQuote {
	last := bars[len(bars)-1]
	q := model.MarketQuote{Symbol: symbol, LastPrice: last.Close, Volume: last.Volume, FetchedAt: time.Now()}
	if len(bars) > 1 {
		prev := bars[len(bars)-2].Close
		if prev != 0 {
			q.ChangePct24h = (last.Close - prev) / prev * 100
		}
	}
	return q
}

// GenerateBars produces count daily bars drifting by step per bar around basePrice.
func GenerateBars(basePrice, step float64, count int, end time.Time) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*step)
		bars[i] = model.OHLCV{
			Time:   end.AddDate(0, 0, -(count - 1 - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
