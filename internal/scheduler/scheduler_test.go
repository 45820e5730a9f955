package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"MarketScout/internal/calculator"
	"MarketScout/internal/collector"
	"MarketScout/internal/engine"
	"MarketScout/internal/model"
	"MarketScout/internal/news"
	"MarketScout/internal/position"
	"MarketScout/internal/scanner"
	"MarketScout/internal/strategy"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeSender) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

type fakeNews struct{ err error }

func (f fakeNews) FetchHeadlines(_ context.Context, symbol string) ([]news.Headline, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []news.Headline{{Title: symbol + " beats earnings", Published: time.Now(), Sentiment: 0.5}}, nil
}

func newScheduler(t *testing.T) (*Scheduler, *collector.StaticProvider, *fakeSender) {
	t.Helper()
	p := collector.NewStaticProvider()
	p.SetQuote("BTC", model.MarketQuote{LastPrice: 100, ChangePct24h: 12, Volume: 600000})
	pricing := calculator.DefaultPricingModel()
	cls := strategy.NewClassifier(strategy.StrictRules, strategy.DefaultVolatilityRules, pricing)
	sc := scanner.New(p, calculator.New(calculator.DefaultConfig()), cls, 250, 1, zerolog.Nop())
	eng := engine.New([]model.Instrument{{Symbol: "BTC", Kind: model.KindQuote}}, sc,
		position.NewTracker(), pricing, nil, nil, nil, zerolog.Nop())
	sender := &fakeSender{}
	return NewScheduler(context.Background(), eng, sender, fakeNews{}, zerolog.Nop()), p, sender
}

func TestRunNow_SendsReport(t *testing.T) {
	s, _, sender := newScheduler(t)
	r, err := s.RunNow()
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Candidates) != 1 {
		t.Fatalf("expected one candidate, got %+v", r.Candidates)
	}
	if len(sender.sent) != 1 || !strings.Contains(sender.sent[0], "BTC") {
		t.Errorf("expected report mentioning BTC, got %q", sender.sent)
	}
}

func TestRunNow_QuietCycleSendsNothing(t *testing.T) {
	s, p, sender := newScheduler(t)
	p.SetQuote("BTC", model.MarketQuote{LastPrice: 100, ChangePct24h: 1, Volume: 10})
	if _, err := s.RunNow(); err != nil {
		t.Fatal(err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("expected no message, got %q", sender.sent)
	}
}

func TestRegister(t *testing.T) {
	s, _, _ := newScheduler(t)
	if err := s.Register("@every 30s"); err != nil {
		t.Errorf("valid spec rejected: %v", err)
	}
	if err := s.Register("every tuesday-ish"); err == nil {
		t.Error("expected error for invalid spec")
	}
}

func TestHandleCommand(t *testing.T) {
	s, _, _ := newScheduler(t)
	ctx := context.Background()

	tests := []struct {
		cmd  string
		want string
	}{
		{"/help", "/take SYMBOL"},
		{"", "Commands"},
		{"/positions", "No positions taken."},
		{"/take", "usage"},
		{"/scan", "Strong Buy"},
		{"/take btc", "took BTC at 100.00"},
		{"/take BTC", "already open"},
		{"/positions", "Holding"},
		{"/release BTC", "released BTC"},
		{"/release BTC", "no open position"},
		{"/news@scoutbot aapl", "AAPL beats earnings"},
	}
	for _, tt := range tests {
		got := s.HandleCommand(ctx, tt.cmd)
		if !strings.Contains(got, tt.want) {
			t.Errorf("HandleCommand(%q) = %q, want it to contain %q", tt.cmd, got, tt.want)
		}
	}
}

func TestHandleCommand_Failures(t *testing.T) {
	s, p, _ := newScheduler(t)
	ctx := context.Background()

	p.SetQuote("FLAT", model.MarketQuote{LastPrice: 5, ChangePct24h: 0, Volume: 1})
	if got := s.HandleCommand(ctx, "/take FLAT"); !strings.Contains(got, "no price move") {
		t.Errorf("got %q", got)
	}
	if got := s.HandleCommand(ctx, "/take NOPE"); !strings.Contains(got, "action failed") {
		t.Errorf("got %q", got)
	}
	s.News = fakeNews{err: errors.New("feed down")}
	if got := s.HandleCommand(ctx, "/news AAPL"); !strings.Contains(got, "feed down") {
		t.Errorf("got %q", got)
	}
	s.News = nil
	if got := s.HandleCommand(ctx, "/news AAPL"); !strings.Contains(got, "not configured") {
		t.Errorf("got %q", got)
	}
}

func TestHandleCommand_EscapesFreeText(t *testing.T) {
	s, _, _ := newScheduler(t)
	ctx := context.Background()

	s.News = fakeNews{err: errors.New("bad <html> & worse")}
	got := s.HandleCommand(ctx, "/news S&P")
	if strings.Contains(got, "<html>") || strings.Contains(got, "& worse") {
		t.Errorf("reply not escaped: %q", got)
	}
	if !strings.Contains(got, "S&amp;P") || !strings.Contains(got, "&lt;html&gt;") {
		t.Errorf("unexpected reply %q", got)
	}

	if got := s.HandleCommand(ctx, "/release <X>"); !strings.Contains(got, "&lt;X&gt;") {
		t.Errorf("error reply not escaped: %q", got)
	}
}
