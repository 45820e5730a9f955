package calculator

import (
	"math"

	"MarketScout/internal/model"
)

// PricingModel turns a price move into a target, a stop-loss and a volatility score.
type PricingModel struct {
	// VolumeScale divides volume in the amplification factor 1+volume/VolumeScale.
	VolumeScale float64
	// FibMultiplier scales the projected move for the target price.
	FibMultiplier float64
	// TightStopTrigger is the change_pct above which the tight stop applies.
	TightStopTrigger float64
	TightStopFactor  float64
	WideStopFactor   float64
}

// DefaultPricingModel returns the 1e7 / 1.618 / 8% / 0.95 / 0.90 model.
func DefaultPricingModel() PricingModel {
	return PricingModel{
		VolumeScale:      1e7,
		FibMultiplier:    1.618,
		TightStopTrigger: 8,
		TightStopFactor:  0.95,
		WideStopFactor:   0.90,
	}
}

func (m PricingModel) amplification(volume float64) float64 {
	return 1 + volume/m.VolumeScale
}

// VolatilityScore is |change_pct| scaled by the volume amplification factor.
func (m PricingModel) VolatilityScore(changePct, volume float64) float64 {
	return math.Abs(changePct) * m.amplification(volume)
}

// TargetPrice projects the move forward from price.
func (m PricingModel) TargetPrice(price, changePct, volume float64) float64 {
	return price * (1 + (changePct/100)*m.FibMultiplier*m.amplification(volume))
}

// StopLossPrice applies the two-tier discount.
func (m PricingModel) StopLossPrice(price, changePct float64) float64 {
	if changePct > m.TightStopTrigger {
		return price * m.TightStopFactor
	}
	return price * m.WideStopFactor
}

// Price computes the full snapshot.
func (m PricingModel) Price(price, changePct, volume float64) model.PricingSnapshot {
	return model.PricingSnapshot{
		TargetPrice:     m.TargetPrice(price, changePct, volume),
		StopLossPrice:   m.StopLossPrice(price, changePct),
		VolatilityScore: m.VolatilityScore(changePct, volume),
	}
}

// PriceQuote computes the snapshot for a market quote.
func (m PricingModel) PriceQuote(q model.MarketQuote) model.PricingSnapshot {
	return m.Price(q.LastPrice, q.ChangePct24h, q.Volume)
}

// Round2 rounds to two decimal places for display.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
