package scheduler

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"MarketScout/internal/calculator"
	"MarketScout/internal/engine"
	"MarketScout/internal/news"
	"MarketScout/internal/notifier"
	"MarketScout/internal/position"
)

// Sender delivers formatted messages.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// HeadlineSource returns recent headlines for a symbol.
type HeadlineSource interface {
	FetchHeadlines(ctx context.Context, symbol string) ([]news.Headline, error)
}

// Scheduler triggers refresh cycles on a cron spec and answers chat commands.
type Scheduler struct {
	Cron       *cron.Cron
	Engine     *engine.Engine
	Sender     Sender
	News       HeadlineSource
	MaxRetries int
	Logger     zerolog.Logger
	Ctx        context.Context
}

// NewScheduler creates a new Scheduler. Sender and news may be nil.
func NewScheduler(ctx context.Context, eng *engine.Engine, sender Sender, hs HeadlineSource, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cron: cron.New(cron.WithSeconds(), cron.WithChain(
			cron.SkipIfStillRunning(cron.DiscardLogger),
		)),
		Engine:     eng,
		Sender:     sender,
		News:       hs,
		MaxRetries: 3,
		Logger:     log,
		Ctx:        ctx,
	}
}

// Register adds the refresh cycle under spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.cycleTask); err != nil {
		return fmt.Errorf("register cycle task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Logger.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running cycle to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Logger.Info().Msg("scheduler stopped")
}

// RunNow executes one cycle immediately (manual trigger / run on start).
func (s *Scheduler) RunNow() (*engine.Report, error) {
	return s.runCycle(s.Ctx)
}

func (s *Scheduler) cycleTask() {
	if _, err := s.runCycle(s.Ctx); err != nil && !errors.Is(err, engine.ErrCycleInProgress) {
		s.Logger.Error().Err(err).Msg("scheduled cycle failed")
	}
}

func (s *Scheduler) runCycle(ctx context.Context) (*engine.Report, error) {
	r, err := s.Engine.RunCycle(ctx)
	if err != nil {
		return nil, err
	}
	if len(r.Candidates) > 0 || len(r.Transitions) > 0 || r.Scan.AllFailed() {
		s.trySend(ctx, notifier.FormatReport(r))
	}
	return r, nil
}

func (s *Scheduler) trySend(ctx context.Context, msg string) {
	if s.Sender == nil {
		return
	}
	if err := s.Sender.SendWithRetry(ctx, msg, s.MaxRetries); err != nil {
		s.Logger.Error().Err(err).Msg("send notification")
	}
}

// HandleCommand processes a user command and returns the reply text.
func (s *Scheduler) HandleCommand(ctx context.Context, text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return helpText
	}
	cmd := strings.ToLower(fields[0])
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i]
	}
	arg := ""
	if len(fields) > 1 {
		arg = strings.ToUpper(fields[1])
	}

	switch cmd {
	case "/scan":
		r, err := s.Engine.RunCycle(ctx)
		if errors.Is(err, engine.ErrCycleInProgress) {
			if last := s.Engine.LastReport(); last != nil {
				return "⏳ a cycle is already running, last result:\n" + notifier.FormatReport(last)
			}
			return "⏳ a cycle is already running, try again shortly."
		}
		if err != nil {
			return "❌ scan failed: " + html.EscapeString(err.Error())
		}
		return notifier.FormatReport(r)

	case "/positions":
		return notifier.FormatPositions(s.Engine.Tracker.Positions())

	case "/take":
		if arg == "" {
			return "usage: /take SYMBOL"
		}
		p, err := s.Engine.TakePosition(ctx, arg)
		if err != nil {
			return "❌ " + describe(err)
		}
		return fmt.Sprintf("✅ took %s at %.2f (target %.2f, stop %.2f)", html.EscapeString(p.Symbol),
			calculator.Round2(p.EntryPrice), calculator.Round2(p.TargetPrice), calculator.Round2(p.StopLossPrice))

	case "/release":
		if arg == "" {
			return "usage: /release SYMBOL"
		}
		p, err := s.Engine.ReleasePosition(arg)
		if err != nil {
			return "❌ " + describe(err)
		}
		return fmt.Sprintf("✅ released %s (%s, P/L %+.2f%%)", html.EscapeString(p.Symbol), p.Status, calculator.Round2(p.PnLPct()))

	case "/news":
		if arg == "" {
			return "usage: /news SYMBOL"
		}
		if s.News == nil {
			return "news is not configured."
		}
		hs, err := s.News.FetchHeadlines(ctx, arg)
		if err != nil {
			return fmt.Sprintf("❌ news for %s unavailable: %s", html.EscapeString(arg), html.EscapeString(err.Error()))
		}
		return notifier.FormatHeadlines(arg, hs)

	default:
		return helpText
	}
}

func describe(err error) string {
	var already *position.AlreadyOpenError
	var none *position.NoOpenPositionError
	switch {
	case errors.As(err, &already), errors.As(err, &none):
		return html.EscapeString(err.Error())
	case errors.Is(err, engine.ErrNoProjectedMove):
		return "no price move to project a target from, try again later"
	default:
		return "action failed: " + html.EscapeString(err.Error())
	}
}

const helpText = `📋 <b>Commands</b>
/scan - run a refresh cycle now
/positions - list positions
/take SYMBOL - take a position at the latest price
/release SYMBOL - release an open position
/news SYMBOL - recent headlines`
