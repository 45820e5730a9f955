package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"MarketScout/internal/calculator"
	"MarketScout/internal/model"
	"MarketScout/internal/strategy"
)

// DefaultPath is used when CONFIG_PATH is unset.
const DefaultPath = "configs/config.yaml"

// Config holds all application configuration.
type Config struct {
	Logging struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=json console"`
		Output string `yaml:"output" default:"stderr"`
	} `yaml:"logging"`

	Universe []model.Instrument `yaml:"universe" validate:"dive"`

	DataSource struct {
		Proxy    string        `yaml:"proxy"`
		Timeout  time.Duration `yaml:"timeout" default:"10s" validate:"gt=0"`
		CacheTTL time.Duration `yaml:"cache_ttl" default:"60s" validate:"gte=0"`
		Yahoo    struct {
			Enabled bool `yaml:"enabled" default:"true"`
		} `yaml:"yahoo"`
		REST struct {
			BaseURL        string        `yaml:"base_url" validate:"omitempty,url"`
			APIKey         string        `yaml:"api_key"`
			RequestsPerSec float64       `yaml:"requests_per_sec" default:"5" validate:"gt=0"`
			MaxRetryTime   time.Duration `yaml:"max_retry_time" default:"10s"`
		} `yaml:"rest"`
	} `yaml:"data_source"`

	Calculator struct {
		SMAShort      int    `yaml:"sma_short" default:"50" validate:"gt=0"`
		SMALong       int    `yaml:"sma_long" default:"200" validate:"gt=0"`
		RSIPeriod     int    `yaml:"rsi_period" default:"14" validate:"gt=0"`
		RSIMinPeriods int    `yaml:"rsi_min_periods" validate:"gte=0"`
		MACDFast      int    `yaml:"macd_fast" default:"12" validate:"gt=0"`
		MACDSlow      int    `yaml:"macd_slow" default:"26" validate:"gt=0"`
		MACDSignal    int    `yaml:"macd_signal" default:"9" validate:"gt=0"`
		WindowPolicy  string `yaml:"window_policy" default:"partial" validate:"oneof=partial strict"`
	} `yaml:"calculator"`

	Strategy struct {
		RuleSet        string  `yaml:"rule_set" default:"strict" validate:"oneof=strict relaxed"`
		MinChangePct   float64 `yaml:"min_change_pct" default:"5"`
		MinVolume      float64 `yaml:"min_volume" default:"500000" validate:"gte=0"`
		HighVolatility float64 `yaml:"high_volatility" default:"20"`
		StrongBuyScore float64 `yaml:"strong_buy_score" default:"10"`
	} `yaml:"strategy"`

	Scanner struct {
		Period    int      `yaml:"period" default:"250" validate:"gt=0"`
		Workers   int      `yaml:"workers" default:"4" validate:"gt=0"`
		Decisions []string `yaml:"decisions"`
		TopN      int      `yaml:"top_n" validate:"gte=0"`
	} `yaml:"scanner"`

	Schedule struct {
		Cron       string `yaml:"cron" default:"@every 30s" validate:"required"`
		RunOnStart bool   `yaml:"run_on_start" default:"true"`
	} `yaml:"schedule"`

	Telegram struct {
		BotToken   string `yaml:"bot_token"`
		ChatID     string `yaml:"chat_id"`
		MaxRetries int    `yaml:"max_retries" default:"3" validate:"gte=0"`
	} `yaml:"telegram"`

	API struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Listen  string `yaml:"listen" default:":8080"`
	} `yaml:"api"`

	Journal struct {
		Enabled   bool  `yaml:"enabled" default:"true"`
		MaxCycles int64 `yaml:"max_cycles" default:"2880" validate:"gte=0"`
		MaxEvents int64 `yaml:"max_events" default:"10000" validate:"gte=0"`
	} `yaml:"journal"`

	News struct {
		FeedURL      string        `yaml:"feed_url"`
		MaxHeadlines int           `yaml:"max_headlines" default:"5" validate:"gt=0"`
		Timeout      time.Duration `yaml:"timeout" default:"10s" validate:"gt=0"`
	} `yaml:"news"`
}

var validate = validator.New()

// Path returns the config file location, honouring CONFIG_PATH.
func Path() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads .env (if any) and the YAML file at path on top of the defaults,
// then applies environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	for i := range cfg.Universe {
		if err := defaults.Set(&cfg.Universe[i]); err != nil {
			return nil, fmt.Errorf("apply defaults: %w", err)
		}
	}
	applyEnv(cfg)
	return cfg, nil
}

// applyEnv overlays environment variables onto values read from the file.
func applyEnv(cfg *Config) {
	str := map[string]*string{
		"TELEGRAM_BOT_TOKEN": &cfg.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":   &cfg.Telegram.ChatID,
		"REST_BASE_URL":      &cfg.DataSource.REST.BaseURL,
		"REST_API_KEY":       &cfg.DataSource.REST.APIKey,
		"HTTPS_PROXY":        &cfg.DataSource.Proxy,
		"SCHEDULE_CRON":      &cfg.Schedule.Cron,
		"API_LISTEN":         &cfg.API.Listen,
		"LOG_LEVEL":          &cfg.Logging.Level,
		"LOG_FORMAT":         &cfg.Logging.Format,
		"STRATEGY_RULE_SET":  &cfg.Strategy.RuleSet,
		"NEWS_FEED_URL":      &cfg.News.FeedURL,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	if v := os.Getenv("SCANNER_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scanner.Workers = n
		}
	}
}

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if len(c.Universe) == 0 {
		return fmt.Errorf("universe must list at least one instrument")
	}
	seen := make(map[string]bool, len(c.Universe))
	for _, inst := range c.Universe {
		if seen[inst.Symbol] {
			return fmt.Errorf("universe lists %s twice", inst.Symbol)
		}
		seen[inst.Symbol] = true
	}
	if c.Calculator.SMAShort >= c.Calculator.SMALong {
		return fmt.Errorf("calculator.sma_short must be below sma_long")
	}
	if c.Calculator.MACDFast >= c.Calculator.MACDSlow {
		return fmt.Errorf("calculator.macd_fast must be below macd_slow")
	}
	if c.Calculator.RSIMinPeriods > c.Calculator.RSIPeriod {
		return fmt.Errorf("calculator.rsi_min_periods must not exceed rsi_period")
	}
	if c.Strategy.StrongBuyScore > c.Strategy.HighVolatility {
		return fmt.Errorf("strategy.strong_buy_score must not exceed high_volatility")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if !c.DataSource.Yahoo.Enabled && c.DataSource.REST.BaseURL == "" {
		return fmt.Errorf("at least one data source must be configured")
	}
	return nil
}

// CalculatorConfig converts the calculator section.
func (c *Config) CalculatorConfig() calculator.Config {
	return calculator.Config{
		SMAShort:      c.Calculator.SMAShort,
		SMALong:       c.Calculator.SMALong,
		RSIPeriod:     c.Calculator.RSIPeriod,
		RSIMinPeriods: c.Calculator.RSIMinPeriods,
		MACDFast:      c.Calculator.MACDFast,
		MACDSlow:      c.Calculator.MACDSlow,
		MACDSignal:    c.Calculator.MACDSignal,
		Policy:        calculator.ParseWindowPolicy(c.Calculator.WindowPolicy),
	}
}

// Rules converts the strategy section.
func (c *Config) Rules() (strategy.TrendRules, strategy.VolatilityRules, error) {
	trend, err := strategy.TrendRulesByName(c.Strategy.RuleSet)
	if err != nil {
		return strategy.TrendRules{}, strategy.VolatilityRules{}, err
	}
	return trend, strategy.VolatilityRules{
		MinChangePct:   c.Strategy.MinChangePct,
		MinVolume:      c.Strategy.MinVolume,
		HighVolatility: c.Strategy.HighVolatility,
		StrongBuyScore: c.Strategy.StrongBuyScore,
	}, nil
}
