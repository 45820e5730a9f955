package strategy

import (
	"fmt"

	"MarketScout/internal/model"
)

// TrendRules are the thresholds of the trend-following table.
type TrendRules struct {
	Name string
	// RequireMAAlignment adds sma_short > sma_long to the Strong Buy condition.
	RequireMAAlignment bool
	// RSICeiling bounds Strong Buy from above and marks Overbought.
	RSICeiling float64
}

// VolatilityRules are the thresholds of the volatility-following table.
type VolatilityRules struct {
	MinChangePct   float64
	MinVolume      float64
	HighVolatility float64
	StrongBuyScore float64
}

// StrictRules require the short average above the long one and cap RSI at 70.
var StrictRules = TrendRules{Name: "strict", RequireMAAlignment: true, RSICeiling: 70}

// RelaxedRules drop the alignment requirement and cap RSI at 75.
var RelaxedRules = TrendRules{Name: "relaxed", RequireMAAlignment: false, RSICeiling: 75}

// DefaultVolatilityRules gate at 5% / 500k and split scores at 20 and 10.
var DefaultVolatilityRules = VolatilityRules{
	MinChangePct:   5,
	MinVolume:      500000,
	HighVolatility: 20,
	StrongBuyScore: 10,
}

// TrendRulesByName resolves a named rule set.
func TrendRulesByName(name string) (TrendRules, error) {
	switch name {
	case "", StrictRules.Name:
		return StrictRules, nil
	case RelaxedRules.Name:
		return RelaxedRules, nil
	default:
		return TrendRules{}, fmt.Errorf("unknown rule set %q", name)
	}
}

// IsBuyEquivalent reports whether d is a buy signal for display filtering.
// Only Strong Buy qualifies; the cautionary volatility labels do not.
func IsBuyEquivalent(d model.Decision) bool {
	return d == model.DecisionStrongBuy
}
