package calculator

import (
	"time"

	"MarketScout/internal/model"
)

// Series holds every indicator at every bar, aligned with Time. Values
// that are not defined at a bar are NaN.
type Series struct {
	Time       []time.Time
	Close      []float64
	SMAShort   []float64
	SMALong    []float64
	RSI        []float64
	MACD       []float64
	MACDSignal []float64
}

// Series computes the full indicator series with the configured windows.
func (c *Calculator) Series(s model.PriceSeries) Series {
	closes := s.Closes()
	out := Series{
		Time:     make([]time.Time, len(s.Bars)),
		Close:    closes,
		SMAShort: SMASeries(closes, c.cfg.SMAShort, c.cfg.Policy),
		SMALong:  SMASeries(closes, c.cfg.SMALong, c.cfg.Policy),
		RSI:      RSISeries(closes, c.cfg.RSIPeriod, c.cfg.RSIMinPeriods),
	}
	for i, b := range s.Bars {
		out.Time[i] = b.Time
	}
	out.MACD, out.MACDSignal = MACDSeries(closes, c.cfg.MACDFast, c.cfg.MACDSlow, c.cfg.MACDSignal)
	return out
}

// Tail keeps the last n bars.
func (s Series) Tail(n int) Series {
	if n <= 0 || n >= len(s.Close) {
		return s
	}
	from := len(s.Close) - n
	cut := func(v []float64) []float64 {
		if len(v) < from {
			return v
		}
		return v[from:]
	}
	return Series{
		Time:       s.Time[from:],
		Close:      cut(s.Close),
		SMAShort:   cut(s.SMAShort),
		SMALong:    cut(s.SMALong),
		RSI:        cut(s.RSI),
		MACD:       cut(s.MACD),
		MACDSignal: cut(s.MACDSignal),
	}
}
