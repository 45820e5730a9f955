package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"MarketScout/internal/model"
)

// RESTOptions configures a RESTProvider.
type RESTOptions struct {
	BaseURL        string
	APIKey         string
	Proxy          string
	Timeout        time.Duration
	RequestsPerSec float64
	MaxRetryTime   time.Duration
}

// RESTProvider implements Provider against a JSON bars/ticker API of the
// kind crypto exchanges expose. Requests are rate limited and retried with
// exponential backoff; 4xx responses are not retried.
type RESTProvider struct {
	BaseURL      string
	APIKey       string
	Client       *http.Client
	Limiter      *rate.Limiter
	MaxRetryTime time.Duration
}

// NewRESTProvider creates a RESTProvider.
func NewRESTProvider(opts RESTOptions) *RESTProvider {
	if opts.RequestsPerSec <= 0 {
		opts.RequestsPerSec = 5
	}
	if opts.MaxRetryTime <= 0 {
		opts.MaxRetryTime = 10 * time.Second
	}
	return &RESTProvider{
		BaseURL:      opts.BaseURL,
		APIKey:       opts.APIKey,
		Client:       newHTTPClient(opts.Proxy, opts.Timeout),
		Limiter:      rate.NewLimiter(rate.Limit(opts.RequestsPerSec), int(opts.RequestsPerSec)+1),
		MaxRetryTime: opts.MaxRetryTime,
	}
}

func (f *RESTProvider) Name() string { return "rest" }

// flexFloat accepts both JSON numbers and numeric strings. Anything else,
// including null, decodes to NaN so the quote fails validation.
type flexFloat float64

func (v *flexFloat) UnmarshalJSON(b []byte) error {
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		*v = flexFloat(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			*v = flexFloat(n)
			return nil
		}
	}
	*v = flexFloat(nan())
	return nil
}

// restBar is the expected JSON shape of a bar.
type restBar struct {
	Timestamp int64     `json:"timestamp"`
	Open      flexFloat `json:"open"`
	High      flexFloat `json:"high"`
	Low       flexFloat `json:"low"`
	Close     flexFloat `json:"close"`
	Volume    flexFloat `json:"volume"`
}

// restTicker is the expected JSON shape of a 24h ticker.
type restTicker struct {
	Symbol             string     `json:"symbol"`
	LastPrice          *flexFloat `json:"lastPrice"`
	Volume             *flexFloat `json:"volume"`
	PriceChangePercent *flexFloat `json:"priceChangePercent"`
}

func (f *RESTProvider) FetchSeries(ctx context.Context, symbol string, period int) (model.PriceSeries, error) {
	endpoint := fmt.Sprintf("%s/api/v1/bars/daily?symbol=%s&limit=%d", f.BaseURL, url.QueryEscape(symbol), period)
	var raw []restBar
	if err := f.getJSON(ctx, endpoint, &raw); err != nil {
		return model.PriceSeries{}, err
	}
	if len(raw) == 0 {
		return model.PriceSeries{}, ErrNoData
	}
	bars := make([]model.OHLCV, 0, len(raw))
	for _, rb := range raw {
		if !model.ValidClose(float64(rb.Close)) {
			continue
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(rb.Timestamp, 0).UTC(),
			Open:   float64(rb.Open),
			High:   float64(rb.High),
			Low:    float64(rb.Low),
			Close:  float64(rb.Close),
			Volume: float64(rb.Volume),
		})
	}
	if len(bars) == 0 {
		return model.PriceSeries{}, ErrNoData
	}
	s := model.PriceSeries{Symbol: symbol, Bars: bars, FetchedAt: time.Now()}
	s.Normalize()
	return s, nil
}

func (f *RESTProvider) FetchQuote(ctx context.Context, symbol string) (model.MarketQuote, error) {
	endpoint := fmt.Sprintf("%s/api/v1/ticker/24hr?symbol=%s", f.BaseURL, url.QueryEscape(symbol))
	var t restTicker
	if err := f.getJSON(ctx, endpoint, &t); err != nil {
		return model.MarketQuote{}, err
	}
	return model.MarketQuote{
		Symbol:       symbol,
		LastPrice:    deref(t.LastPrice),
		Volume:       deref(t.Volume),
		ChangePct24h: deref(t.PriceChangePercent),
		FetchedAt:    time.Now(),
	}, nil
}

func deref(v *flexFloat) float64 {
	if v == nil {
		return nan()
	}
	return float64(*v)
}

func (f *RESTProvider) getJSON(ctx context.Context, endpoint string, out any) error {
	if err := f.Limiter.Wait(ctx); err != nil {
		return err
	}

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		if f.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+f.APIKey)
		}
		resp, err := f.Client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		switch {
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(ErrNoData)
		case resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests:
			return backoff.Permanent(&StatusError{StatusCode: resp.StatusCode, Body: string(body)})
		case resp.StatusCode != http.StatusOK:
			return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxElapsedTime = f.MaxRetryTime
	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

// StatusError represents a non-200 response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
}
