package position

import (
	"errors"
	"sync"
	"testing"
	"time"

	"MarketScout/internal/model"
)

var t0 = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func TestLifecycle_TargetHitIsTerminal(t *testing.T) {
	tr := NewTracker()
	if _, err := tr.Open("X", 100, 110, 90, t0); err != nil {
		t.Fatalf("open: %v", err)
	}

	p, change, err := tr.Evaluate("X", 111)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if p.Status != model.StatusTargetHit || p.Suggestion() != model.SuggestSell {
		t.Errorf("expected TargetHit/Sell, got %s/%s", p.Status, p.Suggestion())
	}
	if change == nil || change.From != model.StatusHolding || change.To != model.StatusTargetHit {
		t.Errorf("unexpected transition %+v", change)
	}

	p, change, _ = tr.Evaluate("X", 85)
	if p.Status != model.StatusTargetHit {
		t.Errorf("expected TargetHit to be terminal, got %s", p.Status)
	}
	if change != nil {
		t.Errorf("expected no transition, got %+v", change)
	}
	if p.LastPrice != 85 {
		t.Errorf("expected last price to follow the market, got %v", p.LastPrice)
	}
}

func TestEvaluate_Table(t *testing.T) {
	tests := []struct {
		price float64
		want  model.PositionStatus
	}{
		{100, model.StatusHolding},
		{109.99, model.StatusHolding},
		{110, model.StatusTargetHit},
		{90, model.StatusStopLossHit},
		{50, model.StatusStopLossHit},
		{90.01, model.StatusHolding},
	}
	for _, tt := range tests {
		tr := NewTracker()
		tr.Open("X", 100, 110, 90, t0)
		p, _, _ := tr.Evaluate("X", tt.price)
		if p.Status != tt.want {
			t.Errorf("price %v: expected %s, got %s", tt.price, tt.want, p.Status)
		}
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	tr := NewTracker()
	tr.Open("X", 100, 110, 90, t0)
	a, _, _ := tr.Evaluate("X", 101)
	b, change, _ := tr.Evaluate("X", 101)
	if a.Status != b.Status || b.Status != model.StatusHolding || change != nil {
		t.Errorf("expected stable Holding, got %s then %s", a.Status, b.Status)
	}
}

func TestStopLossIsTerminal(t *testing.T) {
	tr := NewTracker()
	tr.Open("X", 100, 110, 90, t0)
	tr.Evaluate("X", 89)
	p, _, _ := tr.Evaluate("X", 200)
	if p.Status != model.StatusStopLossHit {
		t.Errorf("expected StopLossHit to persist, got %s", p.Status)
	}
}

func TestOpen_AlreadyOpen(t *testing.T) {
	tr := NewTracker()
	tr.Open("X", 100, 110, 90, t0)
	_, err := tr.Open("X", 50, 60, 40, t0.Add(time.Minute))
	var already *AlreadyOpenError
	if !errors.As(err, &already) || already.Symbol != "X" {
		t.Fatalf("expected AlreadyOpenError, got %v", err)
	}
	p, _ := tr.Get("X")
	if p.EntryPrice != 100 {
		t.Errorf("existing position was modified: %+v", p)
	}
}

func TestOpen_RejectsBadInput(t *testing.T) {
	tr := NewTracker()
	if _, err := tr.Open("", 1, 2, 0.5, t0); err == nil {
		t.Error("expected error for empty symbol")
	}
	if _, err := tr.Open("X", 0, 2, 0.5, t0); err == nil {
		t.Error("expected error for zero entry")
	}
}

func TestClose(t *testing.T) {
	tr := NewTracker()
	var none *NoOpenPositionError
	if _, err := tr.Close("X", t0); !errors.As(err, &none) {
		t.Fatalf("expected NoOpenPositionError, got %v", err)
	}

	tr.Open("X", 100, 110, 90, t0)
	tr.Evaluate("X", 89)
	closed, err := tr.Close("X", t0.Add(time.Hour))
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.ExitTime == nil || !closed.ExitTime.Equal(t0.Add(time.Hour)) {
		t.Errorf("expected exit time to be stamped, got %v", closed.ExitTime)
	}
	if closed.Status != model.StatusStopLossHit {
		t.Errorf("close must not change status, got %s", closed.Status)
	}

	if _, err := tr.Close("X", t0.Add(2*time.Hour)); !errors.As(err, &none) {
		t.Errorf("expected NoOpenPositionError on double close, got %v", err)
	}
	if _, _, err := tr.Evaluate("X", 100); !errors.As(err, &none) {
		t.Errorf("expected NoOpenPositionError evaluating closed symbol, got %v", err)
	}

	// reopen after close starts a fresh Holding position
	p, err := tr.Open("X", 95, 105, 85, t0.Add(3*time.Hour))
	if err != nil || p.Status != model.StatusHolding {
		t.Fatalf("reopen: %+v, %v", p, err)
	}
	all := tr.Positions()
	if len(all) != 2 || all[0].Open() || !all[1].Open() {
		t.Errorf("expected closed then open position, got %+v", all)
	}
}

func TestEvaluateAll(t *testing.T) {
	tr := NewTracker()
	tr.Open("A", 100, 110, 90, t0)
	tr.Open("B", 10, 11, 9, t0)
	tr.Open("C", 1, 2, 0.5, t0)

	changes := tr.EvaluateAll(map[string]float64{"A": 120, "B": 8, "Z": 1})
	if len(changes) != 2 || changes[0].Symbol != "A" || changes[1].Symbol != "B" {
		t.Fatalf("unexpected transitions %+v", changes)
	}
	if c, _ := tr.Get("C"); c.Status != model.StatusHolding {
		t.Errorf("unpriced position changed: %+v", c)
	}
	if syms := tr.OpenSymbols(); len(syms) != 3 || syms[0] != "A" {
		t.Errorf("unexpected open symbols %v", syms)
	}
}

func TestConcurrentEvaluate(t *testing.T) {
	tr := NewTracker()
	tr.Open("X", 100, 110, 90, t0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tr.Evaluate("X", float64(95+i%10))
		}(i)
	}
	wg.Wait()
	if p, _ := tr.Get("X"); p.Status != model.StatusHolding {
		t.Errorf("expected Holding, got %s", p.Status)
	}
}

func TestPositions_SortedByEntryTimeThenSymbol(t *testing.T) {
	tr := NewTracker()
	tr.Open("B", 10, 11, 9, t0)
	tr.Open("A", 10, 11, 9, t0)
	tr.Open("C", 10, 11, 9, t0.Add(-time.Hour))
	tr.Close("C", t0.Add(2*time.Hour))
	tr.Open("D", 10, 11, 9, t0.Add(time.Hour))
	tr.Close("A", t0.Add(3*time.Hour))

	var got []string
	for _, p := range tr.Positions() {
		got = append(got, p.Symbol)
	}
	want := []string{"C", "A", "B", "D"}
	if len(got) != len(want) {
		t.Fatalf("Positions() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Positions() = %v, want %v", got, want)
			break
		}
	}
}
