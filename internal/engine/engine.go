package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"MarketScout/internal/calculator"
	"MarketScout/internal/collector"
	"MarketScout/internal/metrics"
	"MarketScout/internal/model"
	"MarketScout/internal/position"
	"MarketScout/internal/recorder"
	"MarketScout/internal/scanner"
)

var (
	// ErrCycleInProgress is returned when RunCycle is invoked while a cycle is running.
	ErrCycleInProgress = errors.New("cycle already in progress")
	// ErrNoProjectedMove is returned when no target above the entry price can be derived.
	ErrNoProjectedMove = errors.New("no price move to project a target from")
)

// Report is the presentation view of one refresh cycle.
type Report struct {
	StartedAt   time.Time             `json:"started_at"`
	Duration    time.Duration         `json:"duration"`
	Scan        *scanner.Result       `json:"scan"`
	Candidates  []scanner.Candidate   `json:"candidates"`
	Positions   []model.Position      `json:"positions"`
	Transitions []position.Transition `json:"transitions"`
}

// Engine runs refresh cycles and translates take/release actions into
// tracker calls. It knows nothing about when cycles are triggered.
type Engine struct {
	Universe []model.Instrument
	Scanner  *scanner.Scanner
	Tracker  *position.Tracker
	Pricing  calculator.PricingModel
	Provider collector.Provider
	Recorder recorder.Recorder
	Metrics  *metrics.Recorder
	Filters  []scanner.Filter
	Logger   zerolog.Logger
	Now      func() time.Time

	cycleMu sync.Mutex
	mu      sync.RWMutex
	last    *Report
}

// New creates an Engine. Metrics may be nil.
func New(universe []model.Instrument, sc *scanner.Scanner, tr *position.Tracker, pricing calculator.PricingModel,
	rec recorder.Recorder, m *metrics.Recorder, filters []scanner.Filter, log zerolog.Logger) *Engine {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Engine{
		Universe: universe,
		Scanner:  sc,
		Tracker:  tr,
		Pricing:  pricing,
		Provider: sc.Provider,
		Recorder: rec,
		Metrics:  m,
		Filters:  filters,
		Logger:   log,
		Now:      time.Now,
	}
}

// RunCycle scans the universe, evaluates every open position against the
// freshest price and returns the cycle report.
func (e *Engine) RunCycle(ctx context.Context) (*Report, error) {
	if !e.cycleMu.TryLock() {
		return nil, ErrCycleInProgress
	}
	defer e.cycleMu.Unlock()

	start := e.Now()
	res := e.Scanner.Scan(ctx, e.Universe)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("cycle cancelled: %w", err)
	}

	prices := res.Prices()
	for _, sym := range e.Tracker.OpenSymbols() {
		if _, ok := prices[sym]; ok {
			continue
		}
		q, err := e.Provider.FetchQuote(ctx, sym)
		if err == nil {
			err = q.Validate()
		}
		if err != nil {
			e.Logger.Warn().Err(err).Str("symbol", sym).Msg("no price for open position this cycle")
			continue
		}
		prices[sym] = q.LastPrice
	}
	transitions := e.Tracker.EvaluateAll(prices)

	report := &Report{
		StartedAt:   start,
		Duration:    e.Now().Sub(start),
		Scan:        res,
		Candidates:  res.Apply(e.Filters...),
		Positions:   e.Tracker.Positions(),
		Transitions: transitions,
	}

	e.observe(report, prices)

	e.mu.Lock()
	e.last = report
	e.mu.Unlock()

	counts := res.Counts()
	ev := e.Logger.Info()
	if res.AllFailed() {
		ev = e.Logger.Warn()
	}
	ev.Int("candidates", len(report.Candidates)).
		Int("ok", counts[scanner.OutcomeOK]).
		Int("failed", counts[scanner.OutcomeFailed]).
		Int("transitions", len(transitions)).
		Dur("took", report.Duration).
		Msg("cycle complete")
	return report, nil
}

func (e *Engine) observe(r *Report, prices map[string]float64) {
	counts := r.Scan.Counts()
	rec := &recorder.CycleRecord{
		StartedAt: r.StartedAt,
		Duration:  r.Duration,
		OK:        counts[scanner.OutcomeOK],
		Empty:     counts[scanner.OutcomeEmpty],
		Excluded:  counts[scanner.OutcomeExcluded],
		Malformed: counts[scanner.OutcomeMalformed],
		Failed:    counts[scanner.OutcomeFailed],
	}
	byDecision := make(map[string]int)
	for _, c := range r.Scan.Candidates {
		cr := recorder.CandidateRecord{
			Symbol:   c.Signal.Symbol,
			Decision: string(c.Signal.Decision),
			Path:     string(c.Signal.Path),
			Price:    c.Signal.LastPrice(),
		}
		if p := c.Signal.Pricing; p != nil {
			cr.TargetPrice, cr.StopLossPrice, cr.VolatilityScore = p.TargetPrice, p.StopLossPrice, p.VolatilityScore
		}
		rec.Candidates = append(rec.Candidates, cr)
		byDecision[cr.Decision]++
	}
	if err := e.Recorder.RecordCycle(rec); err != nil {
		e.Logger.Error().Err(err).Msg("record cycle")
	}
	for _, t := range r.Transitions {
		e.recordEvent(t.Symbol, "TRANSITION", string(t.To), t.Price)
	}

	if e.Metrics == nil {
		return
	}
	e.Metrics.RecordCycle(r.Duration.Seconds())
	for o, n := range counts {
		e.Metrics.RecordOutcomes(string(o), n)
	}
	e.Metrics.SetCandidates(byDecision)
	e.Metrics.SetOpenPositions(len(e.Tracker.OpenSymbols()))
	for _, t := range r.Transitions {
		e.Metrics.RecordTransition(string(t.To))
	}
	for sym, p := range prices {
		e.Metrics.RecordLastPrice(sym, p)
	}
}

// LastReport returns the report of the most recent completed cycle, or nil.
func (e *Engine) LastReport() *Report {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.last
}

// TakePosition opens a position at the latest known price of symbol, with
// target and stop-loss from the pricing model.
func (e *Engine) TakePosition(ctx context.Context, symbol string) (model.Position, error) {
	price, change, volume, err := e.latest(ctx, symbol)
	if err != nil {
		return model.Position{}, err
	}
	if change == 0 {
		return model.Position{}, fmt.Errorf("take %s: %w", symbol, ErrNoProjectedMove)
	}
	// the target projects the size of the last move upward regardless of its sign
	target := e.Pricing.TargetPrice(price, math.Abs(change), volume)
	stop := e.Pricing.StopLossPrice(price, change)
	return e.TakePositionAt(symbol, price, target, stop)
}

// TakePositionAt opens a position with explicit prices.
func (e *Engine) TakePositionAt(symbol string, entry, target, stop float64) (model.Position, error) {
	p, err := e.Tracker.Open(symbol, entry, target, stop, e.Now())
	if err != nil {
		return p, err
	}
	e.recordEvent(symbol, "OPEN", string(p.Status), entry)
	e.Logger.Info().Str("symbol", symbol).Float64("entry", entry).
		Float64("target", target).Float64("stop", stop).Msg("position opened")
	return p, nil
}

// ReleasePosition closes the open position of symbol.
func (e *Engine) ReleasePosition(symbol string) (model.Position, error) {
	p, err := e.Tracker.Close(symbol, e.Now())
	if err != nil {
		return p, err
	}
	e.recordEvent(symbol, "CLOSE", string(p.Status), p.LastPrice)
	e.Logger.Info().Str("symbol", symbol).Str("status", string(p.Status)).Msg("position closed")
	return p, nil
}

// latest finds price, change and volume for symbol, preferring the last
// cycle's data over a fresh fetch.
func (e *Engine) latest(ctx context.Context, symbol string) (price, change, volume float64, err error) {
	if r := e.LastReport(); r != nil {
		for _, c := range r.Scan.Candidates {
			if c.Signal.Symbol != symbol {
				continue
			}
			switch {
			case c.Signal.Quote != nil:
				q := c.Signal.Quote
				return q.LastPrice, q.ChangePct24h, q.Volume, nil
			case c.Signal.Indicators != nil:
				s := c.Signal.Indicators
				return s.Close, s.ChangePct, s.Volume, nil
			}
		}
	}
	q, err := e.Provider.FetchQuote(ctx, symbol)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("take %s: %w", symbol, err)
	}
	if err := q.Validate(); err != nil {
		return 0, 0, 0, fmt.Errorf("take %s: %w", symbol, err)
	}
	return q.LastPrice, q.ChangePct24h, q.Volume, nil
}

func (e *Engine) recordEvent(symbol, event, status string, price float64) {
	if err := e.Recorder.RecordPositionEvent(&recorder.PositionEvent{
		At: e.Now(), Symbol: symbol, Event: event, Status: status, Price: price,
	}); err != nil {
		e.Logger.Error().Err(err).Msg("record position event")
	}
}
