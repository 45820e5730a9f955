package scanner

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"MarketScout/internal/calculator"
	"MarketScout/internal/collector"
	"MarketScout/internal/model"
	"MarketScout/internal/strategy"
)

var end = time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

func newScanner(p collector.Provider, workers int) *Scanner {
	cls := strategy.NewClassifier(strategy.StrictRules, strategy.DefaultVolatilityRules, calculator.DefaultPricingModel())
	return New(p, calculator.New(calculator.DefaultConfig()), cls, 250, workers, zerolog.Nop())
}

func fixture() (*collector.StaticProvider, []model.Instrument) {
	p := collector.NewStaticProvider()
	p.SetSeries("UP", model.PriceSeries{Bars: collector.GenerateBars(100, 0.002, 250, end)})
	p.SetSeries("DOWN", model.PriceSeries{Bars: collector.GenerateBars(100, -0.002, 250, end)})
	p.SetQuote("BTC", model.MarketQuote{LastPrice: 64000, ChangePct24h: 12, Volume: 600000})
	p.SetQuote("DOGE", model.MarketQuote{LastPrice: 0.1, ChangePct24h: 3, Volume: 900000})
	p.SetQuote("BAD", model.MarketQuote{LastPrice: math.NaN(), ChangePct24h: 9, Volume: 900000})
	p.SetError("DEAD", errors.New("timeout"))

	universe := []model.Instrument{
		{Symbol: "UP", Kind: model.KindSeries},
		{Symbol: "BTC", Kind: model.KindQuote},
		{Symbol: "DOWN", Kind: model.KindSeries},
		{Symbol: "DOGE", Kind: model.KindQuote},
		{Symbol: "BAD", Kind: model.KindQuote},
		{Symbol: "DEAD", Kind: model.KindSeries},
		{Symbol: "NONE", Kind: model.KindSeries},
	}
	return p, universe
}

func TestScan_OutcomesAndOrder(t *testing.T) {
	for _, workers := range []int{1, 4} {
		p, universe := fixture()
		res := newScanner(p, workers).Scan(context.Background(), universe)

		wantOutcomes := []Outcome{OutcomeOK, OutcomeOK, OutcomeOK, OutcomeExcluded, OutcomeMalformed, OutcomeFailed, OutcomeEmpty}
		for i, ir := range res.Instruments {
			if ir.Instrument.Symbol != universe[i].Symbol || ir.Outcome != wantOutcomes[i] {
				t.Errorf("workers=%d #%d: got %s/%s, want %s/%s", workers, i,
					ir.Instrument.Symbol, ir.Outcome, universe[i].Symbol, wantOutcomes[i])
			}
		}

		if len(res.Candidates) != 3 {
			t.Fatalf("workers=%d: expected 3 candidates, got %d", workers, len(res.Candidates))
		}
		order := []string{"UP", "BTC", "DOWN"}
		for i, c := range res.Candidates {
			if c.Signal.Symbol != order[i] {
				t.Errorf("workers=%d: candidate %d is %s, want %s", workers, i, c.Signal.Symbol, order[i])
			}
		}
		if res.Candidates[1].Signal.Decision != model.DecisionStrongBuy {
			t.Errorf("BTC: expected Strong Buy, got %s", res.Candidates[1].Signal.Decision)
		}
		if res.Candidates[2].Signal.Decision != model.DecisionWeak {
			t.Errorf("DOWN: expected Weak, got %s", res.Candidates[2].Signal.Decision)
		}
		if res.AllFailed() {
			t.Error("mixed scan reported as all failed")
		}
	}
}

func TestScan_NonFiniteCloseIsMalformed(t *testing.T) {
	lastBad := collector.GenerateBars(100, 0.002, 250, end)
	lastBad[len(lastBad)-1].Close = math.NaN()
	midBad := collector.GenerateBars(100, 0.002, 250, end)
	midBad[100].Close = math.NaN()
	infBad := collector.GenerateBars(100, 0.002, 250, end)
	infBad[10].Close = math.Inf(1)

	p := collector.NewStaticProvider()
	p.SetSeries("UP", model.PriceSeries{Bars: collector.GenerateBars(100, 0.002, 250, end)})
	p.SetSeries("LASTNAN", model.PriceSeries{Bars: lastBad})
	p.SetSeries("MIDNAN", model.PriceSeries{Bars: midBad})
	p.SetSeries("INF", model.PriceSeries{Bars: infBad})
	universe := []model.Instrument{
		{Symbol: "LASTNAN", Kind: model.KindSeries},
		{Symbol: "UP", Kind: model.KindSeries},
		{Symbol: "MIDNAN", Kind: model.KindSeries},
		{Symbol: "INF", Kind: model.KindSeries},
	}

	res := newScanner(p, 2).Scan(context.Background(), universe)
	want := []Outcome{OutcomeMalformed, OutcomeOK, OutcomeMalformed, OutcomeMalformed}
	for i, ir := range res.Instruments {
		if ir.Outcome != want[i] {
			t.Errorf("%s: outcome %s, want %s", ir.Instrument.Symbol, ir.Outcome, want[i])
		}
		if ir.Outcome == OutcomeMalformed && !errors.Is(ir.Err, model.ErrMalformedSeries) {
			t.Errorf("%s: error %v should wrap ErrMalformedSeries", ir.Instrument.Symbol, ir.Err)
		}
	}
	if len(res.Candidates) != 1 || res.Candidates[0].Signal.Symbol != "UP" {
		t.Errorf("expected only UP as candidate, got %+v", res.Candidates)
	}
	if _, err := json.Marshal(res); err != nil {
		t.Errorf("scan result must stay renderable: %v", err)
	}
}

func TestScan_Prices(t *testing.T) {
	p, universe := fixture()
	res := newScanner(p, 1).Scan(context.Background(), universe)
	prices := res.Prices()
	if prices["BTC"] != 64000 || prices["DOGE"] != 0.1 {
		t.Errorf("unexpected prices %v", prices)
	}
	if _, ok := prices["DEAD"]; ok {
		t.Error("failed instrument should have no price")
	}
	counts := res.Counts()
	if counts[OutcomeOK] != 3 || counts[OutcomeFailed] != 1 {
		t.Errorf("unexpected counts %v", counts)
	}
}

func TestScan_AllFailed(t *testing.T) {
	p := collector.NewStaticProvider()
	p.SetError("A", errors.New("down"))
	p.SetError("B", errors.New("down"))
	res := newScanner(p, 1).Scan(context.Background(), []model.Instrument{{Symbol: "A", Kind: model.KindSeries}, {Symbol: "B", Kind: model.KindQuote}})
	if !res.AllFailed() || len(res.Candidates) != 0 {
		t.Errorf("expected total failure, got %+v", res)
	}

	empty := newScanner(collector.NewStaticProvider(), 1).Scan(context.Background(), []model.Instrument{{Symbol: "A", Kind: model.KindSeries}})
	if empty.AllFailed() {
		t.Error("no data must not be reported as failure")
	}
}

func TestScan_Cancelled(t *testing.T) {
	p, universe := fixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := newScanner(p, 1).Scan(ctx, universe)
	if len(res.Candidates) != 0 || len(res.Instruments) != len(universe) {
		t.Errorf("expected no candidates after cancellation, got %d", len(res.Candidates))
	}
}

func TestFilters(t *testing.T) {
	p, universe := fixture()
	res := newScanner(p, 1).Scan(context.Background(), universe)

	buys := res.Apply(BuyOnly())
	for _, c := range buys {
		if c.Signal.Decision != model.DecisionStrongBuy {
			t.Errorf("BuyOnly kept %s", c.Signal.Decision)
		}
	}
	if got := res.Apply(TopN(2)); len(got) != 2 || got[0].Signal.Symbol != "UP" {
		t.Errorf("TopN(2) returned %+v", got)
	}
	if got := res.Apply(FromConfig(nil, 0)...); len(got) != len(res.Candidates) {
		t.Errorf("empty filter chain dropped candidates")
	}
	if got := res.Apply(FromConfig([]string{string(model.DecisionWeak)}, 5)...); len(got) != 1 || got[0].Signal.Symbol != "DOWN" {
		t.Errorf("decision filter returned %+v", got)
	}
	if len(res.Candidates) != 3 {
		t.Error("Apply must not modify the result")
	}
}
