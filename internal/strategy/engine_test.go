package strategy

import (
	"math"
	"testing"

	"MarketScout/internal/calculator"
	"MarketScout/internal/model"
)

func snapshot(close, smaShort, smaLong, rsi, macd, signal float64) model.IndicatorSnapshot {
	return model.IndicatorSnapshot{
		Close:      close,
		SMAShort:   model.Float(smaShort),
		SMALong:    model.Float(smaLong),
		RSI:        model.Float(rsi),
		MACD:       model.Float(macd),
		MACDSignal: model.Float(signal),
	}
}

func newClassifier(rules TrendRules) *Classifier {
	return NewClassifier(rules, DefaultVolatilityRules, calculator.DefaultPricingModel())
}

func TestClassifyTrend_StrongBuy(t *testing.T) {
	c := newClassifier(StrictRules)
	got := c.ClassifyTrend(snapshot(110, 100, 90, 50, 2, 1))
	if got != model.DecisionStrongBuy {
		t.Errorf("expected %q, got %q", model.DecisionStrongBuy, got)
	}
}

func TestClassifyTrend_Table(t *testing.T) {
	tests := []struct {
		name  string
		rules TrendRules
		snap  model.IndicatorSnapshot
		want  model.Decision
	}{
		{"overbought", StrictRules, snapshot(110, 100, 90, 72, 2, 1), model.DecisionOverbought},
		{"rsi at ceiling is not overbought", StrictRules, snapshot(110, 100, 90, 70, 2, 1), model.DecisionNeutral},
		{"weak below short average", StrictRules, snapshot(95, 100, 90, 50, 2, 1), model.DecisionWeak},
		{"macd under signal", StrictRules, snapshot(110, 100, 90, 50, 1, 2), model.DecisionNeutral},
		{"strict needs alignment", StrictRules, snapshot(110, 100, 105, 50, 2, 1), model.DecisionNeutral},
		{"relaxed ignores alignment", RelaxedRules, snapshot(110, 100, 105, 50, 2, 1), model.DecisionStrongBuy},
		{"relaxed allows rsi 72", RelaxedRules, snapshot(110, 100, 90, 72, 2, 1), model.DecisionStrongBuy},
		{"relaxed overbought above 75", RelaxedRules, snapshot(110, 100, 90, 76, 2, 1), model.DecisionOverbought},
	}
	for _, tt := range tests {
		got := newClassifier(tt.rules).ClassifyTrend(tt.snap)
		if got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.want, got)
		}
	}
}

func TestClassifyTrend_MissingIndicators(t *testing.T) {
	c := newClassifier(StrictRules)
	s := model.IndicatorSnapshot{Close: 100}
	if got := c.ClassifyTrend(s); got != model.DecisionNeutral {
		t.Errorf("empty snapshot: expected Neutral, got %q", got)
	}
	s.SMAShort = model.Float(120)
	if got := c.ClassifyTrend(s); got != model.DecisionWeak {
		t.Errorf("only sma_short: expected Weak, got %q", got)
	}
}

func TestClassifyVolatility(t *testing.T) {
	c := newClassifier(StrictRules)
	tests := []struct {
		name     string
		change   float64
		volume   float64
		want     model.Decision
		admitted bool
	}{
		{"strong buy", 12, 600000, model.DecisionStrongBuy, true},
		{"high volatility", 25, 600000, model.DecisionHighVolatility, true},
		{"moderate", 6, 600000, model.DecisionModerateBuy, true},
		{"gate fails on change", 3, 900000, "", false},
		{"gate fails on volume", 30, 500000, "", false},
		{"gate at exactly 5%", 5, 900000, "", false},
	}
	for _, tt := range tests {
		q := model.MarketQuote{Symbol: "X", LastPrice: 10, ChangePct24h: tt.change, Volume: tt.volume}
		got, _, ok := c.ClassifyVolatility(q)
		if ok != tt.admitted || got != tt.want {
			t.Errorf("%s: got (%q, %v), want (%q, %v)", tt.name, got, ok, tt.want, tt.admitted)
		}
	}
}

func TestClassifyVolatility_Score(t *testing.T) {
	c := newClassifier(StrictRules)
	_, p, ok := c.ClassifyVolatility(model.MarketQuote{Symbol: "BTC", LastPrice: 100, ChangePct24h: 12, Volume: 600000})
	if !ok {
		t.Fatal("expected admission")
	}
	if math.Abs(p.VolatilityScore-12.72) > 1e-9 {
		t.Errorf("expected score 12.72, got %v", p.VolatilityScore)
	}
}

func TestSignals(t *testing.T) {
	c := newClassifier(StrictRules)
	sig := c.TrendSignal("AAPL", snapshot(110, 100, 90, 50, 2, 1))
	if sig.Path != model.PathTrend || sig.Indicators == nil || sig.Pricing == nil || sig.LastPrice() != 110 {
		t.Errorf("unexpected trend signal %+v", sig)
	}
	if _, ok := c.VolatilitySignal(model.MarketQuote{Symbol: "ETH", LastPrice: 1, ChangePct24h: 1, Volume: 1}); ok {
		t.Error("expected excluded quote")
	}
	vs, ok := c.VolatilitySignal(model.MarketQuote{Symbol: "ETH", LastPrice: 2000, ChangePct24h: 9, Volume: 700000})
	if !ok || vs.Quote == nil || vs.LastPrice() != 2000 {
		t.Errorf("unexpected volatility signal %+v", vs)
	}
}

func TestTrendRulesByName(t *testing.T) {
	for name, want := range map[string]TrendRules{"": StrictRules, "strict": StrictRules, "relaxed": RelaxedRules} {
		got, err := TrendRulesByName(name)
		if err != nil || got != want {
			t.Errorf("%q: got (%+v, %v)", name, got, err)
		}
	}
	if _, err := TrendRulesByName("looser"); err == nil {
		t.Error("expected error for unknown rule set")
	}
}

func TestIsBuyEquivalent(t *testing.T) {
	for _, d := range []model.Decision{model.DecisionStrongBuy} {
		if !IsBuyEquivalent(d) {
			t.Errorf("%s should be buy-equivalent", d)
		}
	}
	for _, d := range []model.Decision{model.DecisionHighVolatility, model.DecisionModerateBuy, model.DecisionNeutral, model.DecisionOverbought, model.DecisionWeak} {
		if IsBuyEquivalent(d) {
			t.Errorf("%s must not be buy-equivalent", d)
		}
	}
}
