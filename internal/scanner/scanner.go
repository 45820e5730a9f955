package scanner

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"MarketScout/internal/calculator"
	"MarketScout/internal/collector"
	"MarketScout/internal/model"
	"MarketScout/internal/strategy"
)

// Outcome describes what happened to one instrument during a scan.
type Outcome string

const (
	OutcomeOK        Outcome = "ok"
	OutcomeEmpty     Outcome = "empty"
	OutcomeExcluded  Outcome = "excluded"
	OutcomeMalformed Outcome = "malformed"
	OutcomeFailed    Outcome = "failed"
)

// InstrumentResult is the per-instrument record of a scan.
type InstrumentResult struct {
	Instrument model.Instrument `json:"instrument"`
	Outcome    Outcome          `json:"outcome"`
	Err        error            `json:"-"`
	// Price is the latest price seen, zero when nothing was fetched.
	Price float64 `json:"price"`
}

// Candidate is a classified instrument.
type Candidate struct {
	Signal model.TradeSignal `json:"signal"`
}

// Result is the output of one scan. Candidates and Instruments follow the
// order of the universe.
type Result struct {
	Candidates  []Candidate        `json:"candidates"`
	Instruments []InstrumentResult `json:"instruments"`
}

// Counts tallies instruments by outcome.
func (r *Result) Counts() map[Outcome]int {
	out := make(map[Outcome]int)
	for _, ir := range r.Instruments {
		out[ir.Outcome]++
	}
	return out
}

// AllFailed reports whether every instrument failed to fetch, as opposed to
// the scan simply finding no candidates.
func (r *Result) AllFailed() bool {
	if len(r.Instruments) == 0 {
		return false
	}
	for _, ir := range r.Instruments {
		if ir.Outcome != OutcomeFailed {
			return false
		}
	}
	return true
}

// Prices returns the latest price per symbol seen in this scan.
func (r *Result) Prices() map[string]float64 {
	out := make(map[string]float64, len(r.Instruments))
	for _, ir := range r.Instruments {
		if ir.Price > 0 {
			out[ir.Instrument.Symbol] = ir.Price
		}
	}
	return out
}

// Scanner runs the indicator, pricing and classification pipeline over a universe.
type Scanner struct {
	Provider   collector.Provider
	Calculator *calculator.Calculator
	Classifier *strategy.Classifier
	// Period is the number of daily bars requested per series instrument.
	Period int
	// Workers bounds per-instrument concurrency. Values below 2 scan sequentially.
	Workers int
	Logger  zerolog.Logger
}

// New creates a Scanner.
func New(p collector.Provider, calc *calculator.Calculator, cls *strategy.Classifier, period, workers int, log zerolog.Logger) *Scanner {
	return &Scanner{
		Provider:   p,
		Calculator: calc,
		Classifier: cls,
		Period:     period,
		Workers:    workers,
		Logger:     log,
	}
}

// Scan processes every instrument of universe. It never fails as a whole:
// per-instrument problems are reported in the Result.
func (s *Scanner) Scan(ctx context.Context, universe []model.Instrument) *Result {
	results := make([]InstrumentResult, len(universe))
	signals := make([]*model.TradeSignal, len(universe))

	workers := s.Workers
	if workers < 2 {
		for i, inst := range universe {
			results[i], signals[i] = s.scanOne(ctx, inst)
		}
	} else {
		sem := make(chan struct{}, workers)
		var wg sync.WaitGroup
		for i, inst := range universe {
			wg.Add(1)
			sem <- struct{}{}
			go func(i int, inst model.Instrument) {
				defer wg.Done()
				defer func() { <-sem }()
				results[i], signals[i] = s.scanOne(ctx, inst)
			}(i, inst)
		}
		wg.Wait()
	}

	res := &Result{Instruments: results}
	for _, sig := range signals {
		if sig != nil {
			res.Candidates = append(res.Candidates, Candidate{Signal: *sig})
		}
	}
	return res
}

func (s *Scanner) scanOne(ctx context.Context, inst model.Instrument) (InstrumentResult, *model.TradeSignal) {
	ir := InstrumentResult{Instrument: inst}
	log := s.Logger.With().Str("symbol", inst.Symbol).Str("kind", string(inst.Kind)).Logger()

	if inst.Kind == model.KindQuote {
		q, err := s.Provider.FetchQuote(ctx, inst.Symbol)
		if ir.Outcome, ir.Err = classifyFetchErr(err); ir.Outcome != "" {
			logFetch(log, ir)
			return ir, nil
		}
		if q.Empty() {
			ir.Outcome = OutcomeEmpty
			return ir, nil
		}
		q.Symbol = inst.Symbol
		if err := q.Validate(); err != nil {
			ir.Outcome, ir.Err = OutcomeMalformed, err
			log.Warn().Err(err).Msg("skipping malformed quote")
			return ir, nil
		}
		ir.Price = q.LastPrice
		sig, ok := s.Classifier.VolatilitySignal(q)
		if !ok {
			ir.Outcome = OutcomeExcluded
			return ir, nil
		}
		ir.Outcome = OutcomeOK
		return ir, &sig
	}

	series, err := s.Provider.FetchSeries(ctx, inst.Symbol, s.Period)
	if ir.Outcome, ir.Err = classifyFetchErr(err); ir.Outcome != "" {
		logFetch(log, ir)
		return ir, nil
	}
	if err := series.Validate(); err != nil {
		ir.Outcome, ir.Err = OutcomeMalformed, err
		log.Warn().Err(err).Msg("skipping malformed series")
		return ir, nil
	}
	snap, ok := s.Calculator.Snapshot(series)
	if !ok {
		ir.Outcome = OutcomeEmpty
		return ir, nil
	}
	ir.Price = snap.Close
	ir.Outcome = OutcomeOK
	sig := s.Classifier.TrendSignal(inst.Symbol, snap)
	return ir, &sig
}

func classifyFetchErr(err error) (Outcome, error) {
	switch {
	case err == nil:
		return "", nil
	case errors.Is(err, collector.ErrNoData):
		return OutcomeEmpty, nil
	default:
		return OutcomeFailed, err
	}
}

func logFetch(log zerolog.Logger, ir InstrumentResult) {
	if ir.Outcome == OutcomeFailed {
		log.Warn().Err(ir.Err).Msg("fetch failed, skipping instrument")
	}
}
