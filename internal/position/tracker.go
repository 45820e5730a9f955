package position

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"MarketScout/internal/model"
)

// Transition records a status change produced by an evaluation.
type Transition struct {
	Symbol string               `json:"symbol"`
	From   model.PositionStatus `json:"from"`
	To     model.PositionStatus `json:"to"`
	Price  float64              `json:"price"`
}

// Tracker owns the positions of the running session. All mutation goes
// through its mutex; callers only ever see copies.
type Tracker struct {
	mu      sync.Mutex
	open    map[string]*model.Position
	history []model.Position
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{open: make(map[string]*model.Position)}
}

// Open starts a Holding position for symbol.
func (t *Tracker) Open(symbol string, entry, target, stop float64, now time.Time) (model.Position, error) {
	if symbol == "" {
		return model.Position{}, fmt.Errorf("open position: empty symbol")
	}
	if entry <= 0 || target <= 0 || stop <= 0 {
		return model.Position{}, fmt.Errorf("open position %s: prices must be positive (entry=%v target=%v stop=%v)", symbol, entry, target, stop)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.open[symbol]; ok {
		return model.Position{}, &AlreadyOpenError{Symbol: symbol}
	}
	p := &model.Position{
		Symbol:        symbol,
		EntryTime:     now,
		EntryPrice:    entry,
		TargetPrice:   target,
		StopLossPrice: stop,
		LastPrice:     entry,
		Status:        model.StatusHolding,
	}
	t.open[symbol] = p
	return *p, nil
}

// Close stamps the exit time of the open position for symbol. The status is
// left as it was.
func (t *Tracker) Close(symbol string, now time.Time) (model.Position, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.open[symbol]
	if !ok {
		return model.Position{}, &NoOpenPositionError{Symbol: symbol}
	}
	exit := now
	p.ExitTime = &exit
	delete(t.open, symbol)
	t.history = append(t.history, *p)
	return *p, nil
}

// Evaluate compares price with the stored target and stop-loss. A position
// that already hit its target or stop keeps that status until closed.
func (t *Tracker) Evaluate(symbol string, price float64) (model.Position, *Transition, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.open[symbol]
	if !ok {
		return model.Position{}, nil, &NoOpenPositionError{Symbol: symbol}
	}
	tr := evaluate(p, price)
	return *p, tr, nil
}

// EvaluateAll evaluates every open position that has a price in prices.
func (t *Tracker) EvaluateAll(prices map[string]float64) []Transition {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []Transition
	for _, sym := range t.sortedOpenLocked() {
		price, ok := prices[sym]
		if !ok {
			continue
		}
		if tr := evaluate(t.open[sym], price); tr != nil {
			out = append(out, *tr)
		}
	}
	return out
}

func evaluate(p *model.Position, price float64) *Transition {
	if price <= 0 {
		return nil
	}
	p.LastPrice = price
	if p.Status.Terminal() {
		return nil
	}
	next := model.StatusHolding
	switch {
	case price >= p.TargetPrice:
		next = model.StatusTargetHit
	case price <= p.StopLossPrice:
		next = model.StatusStopLossHit
	}
	if next == p.Status {
		return nil
	}
	tr := &Transition{Symbol: p.Symbol, From: p.Status, To: next, Price: price}
	p.Status = next
	return tr
}

// Get returns the open position for symbol.
func (t *Tracker) Get(symbol string) (model.Position, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.open[symbol]
	if !ok {
		return model.Position{}, false
	}
	return *p, true
}

// OpenSymbols lists the symbols with an open position, sorted.
func (t *Tracker) OpenSymbols() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sortedOpenLocked()
}

// Positions returns the session's position table, closed and open, sorted
// by entry time then symbol. A closed record sorts before a reopened
// position entered at the same instant.
func (t *Tracker) Positions() []model.Position {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]model.Position, 0, len(t.history)+len(t.open))
	out = append(out, t.history...)
	for _, p := range t.open {
		out = append(out, *p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].EntryTime.Equal(out[j].EntryTime) {
			return out[i].EntryTime.Before(out[j].EntryTime)
		}
		if out[i].Symbol != out[j].Symbol {
			return out[i].Symbol < out[j].Symbol
		}
		return !out[i].Open() && out[j].Open()
	})
	return out
}

func (t *Tracker) sortedOpenLocked() []string {
	syms := make([]string, 0, len(t.open))
	for s := range t.open {
		syms = append(syms, s)
	}
	sort.Strings(syms)
	return syms
}
