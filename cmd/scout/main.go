package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"MarketScout/internal/api"
	"MarketScout/internal/calculator"
	"MarketScout/internal/collector"
	"MarketScout/internal/config"
	"MarketScout/internal/engine"
	"MarketScout/internal/logging"
	"MarketScout/internal/metrics"
	"MarketScout/internal/news"
	"MarketScout/internal/notifier"
	"MarketScout/internal/position"
	"MarketScout/internal/recorder"
	"MarketScout/internal/scanner"
	"MarketScout/internal/scheduler"
	"MarketScout/internal/strategy"
)

func main() {
	boot := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load(config.Path())
	if err != nil {
		boot.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		boot.Fatal().Err(err).Msg("config validation")
	}

	log, err := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		boot.Fatal().Err(err).Msg("init logger")
	}
	log.Info().Int("instruments", len(cfg.Universe)).Msg("MarketScout starting")

	provider := buildProvider(cfg, log)
	log.Info().Str("provider", provider.Name()).Msg("data source")

	trend, vol, err := cfg.Rules()
	if err != nil {
		log.Fatal().Err(err).Msg("strategy rules")
	}
	pricing := calculator.DefaultPricingModel()
	cls := strategy.NewClassifier(trend, vol, pricing)
	calc := calculator.New(cfg.CalculatorConfig())
	sc := scanner.New(provider, calc, cls, cfg.Scanner.Period, cfg.Scanner.Workers, log)

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Journal.Enabled {
		sr, err := recorder.NewSQLiteRecorder(log)
		if err != nil {
			log.Warn().Err(err).Msg("init session journal failed, using noop")
		} else {
			sr.MaxCycles, sr.MaxEvents = cfg.Journal.MaxCycles, cfg.Journal.MaxEvents
			rec = sr
		}
	}
	defer rec.Close()

	m := metrics.New()
	filters := scanner.FromConfig(cfg.Scanner.Decisions, cfg.Scanner.TopN)
	eng := engine.New(cfg.Universe, sc, position.NewTracker(), pricing, rec, m, filters, log)

	headlines := news.NewProvider(cfg.News.MaxHeadlines, cfg.News.Timeout)
	if cfg.News.FeedURL != "" {
		headlines.FeedURL = cfg.News.FeedURL
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.DataSource.Proxy, log)
	var sender scheduler.Sender
	if tn.Enabled() {
		sender = tn
	}
	sched := scheduler.NewScheduler(ctx, eng, sender, headlines, log)
	sched.MaxRetries = cfg.Telegram.MaxRetries
	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		log.Fatal().Err(err).Msg("register cron task")
	}
	sched.Start()
	defer sched.Stop()

	if tn.Enabled() {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	} else {
		log.Info().Msg("telegram not configured, notifications disabled")
	}

	var srv *api.Server
	if cfg.API.Enabled {
		srv = api.NewServer(cfg.API.Listen, &api.Handler{Engine: eng, News: headlines, Recorder: rec}, m.Handler(), log)
		srv.Start()
	}

	if cfg.Schedule.RunOnStart {
		go func() {
			if _, err := sched.RunNow(); err != nil {
				log.Error().Err(err).Msg("initial cycle failed")
			}
		}()
	}

	log.Info().Str("cron", cfg.Schedule.Cron).Msg("MarketScout is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping...")
	cancel()
	if srv != nil {
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		if err := srv.Stop(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("stop http server")
		}
	}
	log.Info().Msg("MarketScout stopped")
}

// buildProvider routes bar history to Yahoo and live quotes to the REST
// source when both are configured, and caches both.
func buildProvider(cfg *config.Config, log zerolog.Logger) collector.Provider {
	ds := cfg.DataSource
	var yahoo, rest collector.Provider
	if ds.Yahoo.Enabled {
		yahoo = collector.NewYahooProvider(ds.Proxy, ds.Timeout)
	}
	if ds.REST.BaseURL != "" {
		rest = collector.NewRESTProvider(collector.RESTOptions{
			BaseURL:        ds.REST.BaseURL,
			APIKey:         ds.REST.APIKey,
			Proxy:          ds.Proxy,
			Timeout:        ds.Timeout,
			RequestsPerSec: ds.REST.RequestsPerSec,
			MaxRetryTime:   ds.REST.MaxRetryTime,
		})
	}

	var p collector.Provider
	switch {
	case yahoo != nil && rest != nil:
		p = &collector.Composite{Series: yahoo, Quotes: rest}
	case yahoo != nil:
		p = yahoo
	default:
		p = rest
	}
	if ds.CacheTTL > 0 {
		p = collector.NewCachedProvider(p, ds.CacheTTL)
		log.Debug().Dur("ttl", ds.CacheTTL).Msg("provider cache enabled")
	}
	return p
}
