package news

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const yahooFeedURL = "https://feeds.finance.yahoo.com/rss/2.0/headline"

// Headline is one news item for a symbol.
type Headline struct {
	Title     string    `json:"title"`
	Published time.Time `json:"published"`
	Sentiment float64   `json:"sentiment"`
}

// Provider fetches recent headlines for a symbol. The headlines are for
// display only and play no part in classification.
type Provider struct {
	FeedURL string
	Max     int
	Client  *http.Client
	Scorer  *Scorer
}

// NewProvider creates a Provider reading the Yahoo Finance RSS feed.
func NewProvider(max int, timeout time.Duration) *Provider {
	if max <= 0 {
		max = 5
	}
	return &Provider{
		FeedURL: yahooFeedURL,
		Max:     max,
		Client:  &http.Client{Timeout: timeout},
		Scorer:  NewScorer(),
	}
}

// FetchHeadlines returns up to Max headlines, most recent first.
func (p *Provider) FetchHeadlines(ctx context.Context, symbol string) ([]Headline, error) {
	u := fmt.Sprintf("%s?s=%s&region=US&lang=en-US", p.FeedURL, url.QueryEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch headlines: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch headlines: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	var out []Headline
	doc.Find("item").Each(func(_ int, item *goquery.Selection) {
		title := strings.TrimSpace(item.Find("title").First().Text())
		if title == "" {
			return
		}
		h := Headline{Title: title, Sentiment: p.Scorer.Score(title)}
		if ts, err := time.Parse(time.RFC1123Z, strings.TrimSpace(item.Find("pubDate").First().Text())); err == nil {
			h.Published = ts.UTC()
		}
		out = append(out, h)
	})

	sort.SliceStable(out, func(i, j int) bool { return out[i].Published.After(out[j].Published) })
	if len(out) > p.Max {
		out = out[:p.Max]
	}
	return out, nil
}
