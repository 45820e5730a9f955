package model

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries holds the bar history of one instrument, oldest first.
type PriceSeries struct {
	Symbol    string    `json:"symbol"`
	Bars      []OHLCV   `json:"bars"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Empty reports whether the series carries no bars.
func (s PriceSeries) Empty() bool { return len(s.Bars) == 0 }

// Last returns the most recent bar.
func (s PriceSeries) Last() (OHLCV, bool) {
	if len(s.Bars) == 0 {
		return OHLCV{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// Closes extracts the close prices in bar order.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Normalize sorts bars chronologically and drops duplicate timestamps.
// When two bars share a timestamp the later one in the input wins.
func (s *PriceSeries) Normalize() {
	if len(s.Bars) < 2 {
		return
	}
	sort.SliceStable(s.Bars, func(i, j int) bool { return s.Bars[i].Time.Before(s.Bars[j].Time) })
	out := s.Bars[:1]
	for _, b := range s.Bars[1:] {
		if b.Time.Equal(out[len(out)-1].Time) {
			out[len(out)-1] = b
			continue
		}
		out = append(out, b)
	}
	s.Bars = out
}

// ErrMalformedSeries marks a series with an unusable close.
var ErrMalformedSeries = errors.New("malformed series")

// ValidClose reports whether v can be used as a closing price.
func ValidClose(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// Validate checks that every close in the series is a finite positive price.
func (s PriceSeries) Validate() error {
	for _, b := range s.Bars {
		if !ValidClose(b.Close) {
			return fmt.Errorf("%w: close=%v at %s", ErrMalformedSeries, b.Close, b.Time.Format("2006-01-02"))
		}
	}
	return nil
}

// MarketQuote is a point-in-time snapshot of an instrument, used when no
// historical series is available.
type MarketQuote struct {
	Symbol       string    `json:"symbol"`
	LastPrice    float64   `json:"last_price"`
	Volume       float64   `json:"volume"`
	ChangePct24h float64   `json:"change_pct_24h"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// ErrMalformedQuote marks a quote whose numeric fields cannot be used.
var ErrMalformedQuote = errors.New("malformed quote")

// Empty reports whether the quote was never populated.
func (q MarketQuote) Empty() bool {
	return q.Symbol == "" && q.LastPrice == 0 && q.Volume == 0 && q.ChangePct24h == 0
}

// Validate checks the numeric fields of the quote.
func (q MarketQuote) Validate() error {
	switch {
	case math.IsNaN(q.LastPrice) || math.IsInf(q.LastPrice, 0) || q.LastPrice <= 0:
		return fmt.Errorf("%w: last_price=%v", ErrMalformedQuote, q.LastPrice)
	case math.IsNaN(q.Volume) || math.IsInf(q.Volume, 0) || q.Volume < 0:
		return fmt.Errorf("%w: volume=%v", ErrMalformedQuote, q.Volume)
	case math.IsNaN(q.ChangePct24h) || math.IsInf(q.ChangePct24h, 0):
		return fmt.Errorf("%w: change_pct=%v", ErrMalformedQuote, q.ChangePct24h)
	}
	return nil
}
