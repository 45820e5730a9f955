package model

// IndicatorSnapshot holds the indicators as of the latest bar of a series.
// Nil fields mean there was not enough history to compute them.
type IndicatorSnapshot struct {
	Close      float64  `json:"close"`
	SMAShort   *float64 `json:"sma_short"`
	SMALong    *float64 `json:"sma_long"`
	RSI        *float64 `json:"rsi"`
	MACD       *float64 `json:"macd"`
	MACDSignal *float64 `json:"macd_signal"`
	// ChangePct and Volume describe the last bar against the one before it.
	ChangePct float64 `json:"change_pct"`
	Volume    float64 `json:"volume"`
}

// Complete reports whether every indicator is available.
func (s IndicatorSnapshot) Complete() bool {
	return s.SMAShort != nil && s.SMALong != nil && s.RSI != nil && s.MACD != nil && s.MACDSignal != nil
}

// PricingSnapshot is the target, stop-loss and volatility heuristic for a quote.
type PricingSnapshot struct {
	TargetPrice     float64 `json:"target_price"`
	StopLossPrice   float64 `json:"stop_loss_price"`
	VolatilityScore float64 `json:"volatility_score"`
}

// Float returns a pointer to v, for populating nullable indicator fields.
func Float(v float64) *float64 { return &v }
