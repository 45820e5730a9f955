package strategy

import (
	"MarketScout/internal/calculator"
	"MarketScout/internal/model"
)

// Classifier maps indicator and pricing snapshots to decisions.
type Classifier struct {
	Trend      TrendRules
	Volatility VolatilityRules
	Pricing    calculator.PricingModel
}

// NewClassifier creates a Classifier.
func NewClassifier(trend TrendRules, vol VolatilityRules, pricing calculator.PricingModel) *Classifier {
	return &Classifier{Trend: trend, Volatility: vol, Pricing: pricing}
}

// ClassifyTrend applies the trend-following table. First match wins; a
// missing indicator makes its condition false.
func (c *Classifier) ClassifyTrend(s model.IndicatorSnapshot) model.Decision {
	switch {
	case c.strongBuy(s):
		return model.DecisionStrongBuy
	case s.RSI != nil && *s.RSI > c.Trend.RSICeiling:
		return model.DecisionOverbought
	case s.SMAShort != nil && s.Close < *s.SMAShort:
		return model.DecisionWeak
	default:
		return model.DecisionNeutral
	}
}

func (c *Classifier) strongBuy(s model.IndicatorSnapshot) bool {
	if s.SMAShort == nil || s.RSI == nil || s.MACD == nil || s.MACDSignal == nil {
		return false
	}
	if s.Close <= *s.SMAShort {
		return false
	}
	if c.Trend.RequireMAAlignment && (s.SMALong == nil || *s.SMAShort <= *s.SMALong) {
		return false
	}
	return *s.RSI < c.Trend.RSICeiling && *s.MACD > *s.MACDSignal
}

// Admit reports whether a quote passes the volatility-path gate.
func (c *Classifier) Admit(q model.MarketQuote) bool {
	return q.ChangePct24h > c.Volatility.MinChangePct && q.Volume > c.Volatility.MinVolume
}

// ClassifyVolatility applies the volatility-following table. Quotes failing
// the admission gate return false and are not classified at all.
func (c *Classifier) ClassifyVolatility(q model.MarketQuote) (model.Decision, model.PricingSnapshot, bool) {
	if !c.Admit(q) {
		return "", model.PricingSnapshot{}, false
	}
	p := c.Pricing.PriceQuote(q)
	switch {
	case p.VolatilityScore > c.Volatility.HighVolatility:
		return model.DecisionHighVolatility, p, true
	case p.VolatilityScore > c.Volatility.StrongBuyScore:
		return model.DecisionStrongBuy, p, true
	default:
		return model.DecisionModerateBuy, p, true
	}
}

// TrendSignal builds the trade signal for a series instrument.
func (c *Classifier) TrendSignal(symbol string, s model.IndicatorSnapshot) model.TradeSignal {
	snap := s
	p := c.Pricing.Price(s.Close, s.ChangePct, s.Volume)
	return model.TradeSignal{
		Symbol:     symbol,
		Decision:   c.ClassifyTrend(s),
		Path:       model.PathTrend,
		Indicators: &snap,
		Pricing:    &p,
	}
}

// VolatilitySignal builds the trade signal for a quote instrument.
func (c *Classifier) VolatilitySignal(q model.MarketQuote) (model.TradeSignal, bool) {
	d, p, ok := c.ClassifyVolatility(q)
	if !ok {
		return model.TradeSignal{}, false
	}
	quote := q
	return model.TradeSignal{
		Symbol:   q.Symbol,
		Decision: d,
		Path:     model.PathVolatility,
		Quote:    &quote,
		Pricing:  &p,
	}, true
}
