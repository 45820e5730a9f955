package calculator

import (
	"MarketScout/internal/model"
)

// Config holds the indicator windows.
type Config struct {
	SMAShort      int
	SMALong       int
	RSIPeriod     int
	RSIMinPeriods int
	MACDFast      int
	MACDSlow      int
	MACDSignal    int
	Policy        WindowPolicy
}

// DefaultConfig returns the standard 50/200 SMA, RSI(14) and MACD(12,26,9) windows.
func DefaultConfig() Config {
	return Config{
		SMAShort:   50,
		SMALong:    200,
		RSIPeriod:  14,
		MACDFast:   12,
		MACDSlow:   26,
		MACDSignal: 9,
		Policy:     PartialMean,
	}
}

// Calculator derives indicator snapshots from price series. It holds no
// mutable state and is safe for concurrent use.
type Calculator struct {
	cfg Config
}

// New creates a Calculator.
func New(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// Config returns the windows the calculator was built with.
func (c *Calculator) Config() Config { return c.cfg }

// Snapshot computes the indicators as of the last bar. It returns false for an empty series.
func (c *Calculator) Snapshot(series model.PriceSeries) (model.IndicatorSnapshot, bool) {
	last, ok := series.Last()
	if !ok {
		return model.IndicatorSnapshot{}, false
	}
	closes := series.Closes()
	snap := model.IndicatorSnapshot{Close: last.Close, Volume: last.Volume}

	if len(closes) > 1 {
		prev := closes[len(closes)-2]
		if prev != 0 {
			snap.ChangePct = (last.Close - prev) / prev * 100
		}
	}
	if v, ok := SMA(closes, c.cfg.SMAShort, c.cfg.Policy); ok {
		snap.SMAShort = model.Float(v)
	}
	if v, ok := SMA(closes, c.cfg.SMALong, c.cfg.Policy); ok {
		snap.SMALong = model.Float(v)
	}
	if v, ok := RSI(closes, c.cfg.RSIPeriod, c.cfg.RSIMinPeriods); ok {
		snap.RSI = model.Float(v)
	}
	if m, s, ok := MACD(closes, c.cfg.MACDFast, c.cfg.MACDSlow, c.cfg.MACDSignal); ok {
		snap.MACD = model.Float(m)
		snap.MACDSignal = model.Float(s)
	}
	return snap, true
}
