package model

// Decision is the trade-decision category assigned to an instrument.
type Decision string

const (
	DecisionStrongBuy      Decision = "Strong Buy"
	DecisionOverbought     Decision = "Overbought — Wait"
	DecisionWeak           Decision = "Weak — Avoid"
	DecisionNeutral        Decision = "Neutral"
	DecisionHighVolatility Decision = "High Volatility — Enter with Caution"
	DecisionModerateBuy    Decision = "Moderate Buy"
)

// SignalPath indicates which decision table produced a signal.
type SignalPath string

const (
	PathTrend      SignalPath = "trend"
	PathVolatility SignalPath = "volatility"
)

// TradeSignal is the classification of one instrument in one cycle.
type TradeSignal struct {
	Symbol     string             `json:"symbol"`
	Decision   Decision           `json:"decision"`
	Path       SignalPath         `json:"path"`
	Indicators *IndicatorSnapshot `json:"indicators,omitempty"`
	Quote      *MarketQuote       `json:"quote,omitempty"`
	Pricing    *PricingSnapshot   `json:"pricing,omitempty"`
}

// LastPrice returns the price the signal was computed at.
func (s TradeSignal) LastPrice() float64 {
	switch {
	case s.Quote != nil:
		return s.Quote.LastPrice
	case s.Indicators != nil:
		return s.Indicators.Close
	}
	return 0
}
