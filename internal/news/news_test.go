package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const feed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Yahoo</title>
<item><title>Old news: shares slump after lawsuit</title><pubDate>Mon, 03 Jun 2024 08:00:00 +0000</pubDate></item>
<item><title>Stock jumps to record on strong earnings beat</title><pubDate>Wed, 05 Jun 2024 08:00:00 +0000</pubDate></item>
<item><title>Analysts meet in New York</title><pubDate>Tue, 04 Jun 2024 08:00:00 +0000</pubDate></item>
</channel></rss>`

func TestFetchHeadlines(t *testing.T) {
	var gotSymbol string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSymbol = r.URL.Query().Get("s")
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(feed))
	}))
	defer srv.Close()

	p := NewProvider(2, time.Second)
	p.FeedURL = srv.URL

	hs, err := p.FetchHeadlines(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if gotSymbol != "AAPL" {
		t.Errorf("expected symbol in query, got %q", gotSymbol)
	}
	if len(hs) != 2 {
		t.Fatalf("expected 2 headlines, got %d", len(hs))
	}
	if hs[0].Title != "Stock jumps to record on strong earnings beat" || hs[0].Sentiment <= 0 {
		t.Errorf("expected newest positive headline first, got %+v", hs[0])
	}
	if hs[1].Sentiment != 0 {
		t.Errorf("expected neutral second headline, got %+v", hs[1])
	}
}

func TestFetchHeadlines_Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	p := NewProvider(5, time.Second)
	p.FeedURL = srv.URL
	if _, err := p.FetchHeadlines(context.Background(), "X"); err == nil {
		t.Error("expected error on 503")
	}
}

func TestScorer(t *testing.T) {
	s := NewScorer()
	tests := []struct {
		text  string
		label string
	}{
		{"Bitcoin rally continues as inflows surge", "positive"},
		{"Exchange hack triggers selloff", "negative"},
		{"Company schedules annual meeting", "neutral"},
	}
	for _, tt := range tests {
		if got := Label(s.Score(tt.text)); got != tt.label {
			t.Errorf("%q: expected %s, got %s (%.2f)", tt.text, tt.label, got, s.Score(tt.text))
		}
	}
}
