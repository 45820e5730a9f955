package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"MarketScout/internal/calculator"
	"MarketScout/internal/engine"
	"MarketScout/internal/model"
	"MarketScout/internal/news"
	"MarketScout/internal/scanner"
)

func opt(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", calculator.Round2(*v))
}

// esc escapes free text for Telegram's HTML parse mode.
func esc(v any) string {
	return html.EscapeString(fmt.Sprint(v))
}

func volume(v float64) string {
	return humanize.Comma(int64(v))
}

// FormatCandidates renders the candidate list as a fixed-width table.
func FormatCandidates(cands []scanner.Candidate) string {
	if len(cands) == 0 {
		return "No candidates this cycle."
	}
	var b strings.Builder
	b.WriteString("<pre>\n")
	fmt.Fprintf(&b, "%-10s %-38s %10s %10s %10s %s\n", "Symbol", "Decision", "Price", "Target", "Stop", "Detail")
	for _, c := range cands {
		s := c.Signal
		target, stop := "-", "-"
		if s.Pricing != nil {
			target = fmt.Sprintf("%.2f", calculator.Round2(s.Pricing.TargetPrice))
			stop = fmt.Sprintf("%.2f", calculator.Round2(s.Pricing.StopLossPrice))
		}
		var detail string
		switch {
		case s.Quote != nil:
			detail = fmt.Sprintf("chg=%+.2f%% vol=%s", s.Quote.ChangePct24h, volume(s.Quote.Volume))
			if s.Pricing != nil {
				detail += fmt.Sprintf(" score=%.2f", calculator.Round2(s.Pricing.VolatilityScore))
			}
		case s.Indicators != nil:
			ind := s.Indicators
			detail = fmt.Sprintf("sma=%s/%s rsi=%s macd=%s/%s",
				opt(ind.SMAShort), opt(ind.SMALong), opt(ind.RSI), opt(ind.MACD), opt(ind.MACDSignal))
		}
		fmt.Fprintf(&b, "%-10s %-38s %10.2f %10s %10s %s\n",
			esc(s.Symbol), esc(s.Decision), calculator.Round2(s.LastPrice()), target, stop, detail)
	}
	b.WriteString("</pre>")
	return b.String()
}

// FormatPositions renders the position table.
func FormatPositions(positions []model.Position) string {
	if len(positions) == 0 {
		return "No positions taken."
	}
	var b strings.Builder
	b.WriteString("<pre>\n")
	fmt.Fprintf(&b, "%-10s %-11s %-4s %10s %10s %10s %10s %8s %-16s %s\n",
		"Symbol", "Status", "Act", "Entry", "Target", "Stop", "Last", "P/L%", "Entered", "Exited")
	for _, p := range positions {
		exited := "-"
		if p.ExitTime != nil {
			exited = p.ExitTime.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(&b, "%-10s %-11s %-4s %10.2f %10.2f %10.2f %10.2f %+8.2f %-16s %s\n",
			esc(p.Symbol), p.Status, p.Suggestion(),
			calculator.Round2(p.EntryPrice), calculator.Round2(p.TargetPrice),
			calculator.Round2(p.StopLossPrice), calculator.Round2(p.LastPrice),
			calculator.Round2(p.PnLPct()), p.EntryTime.Format("2006-01-02 15:04"), exited)
	}
	b.WriteString("</pre>")
	return b.String()
}

// FormatCycleSummary renders the header of a cycle report.
func FormatCycleSummary(r *engine.Report) string {
	counts := r.Scan.Counts()
	var b strings.Builder
	fmt.Fprintf(&b, "📊 <b>MarketScout</b> | %s\n", r.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "scanned %d: ok %d, excluded %d, no data %d, malformed %d, failed %d (%s)\n",
		len(r.Scan.Instruments), counts[scanner.OutcomeOK], counts[scanner.OutcomeExcluded],
		counts[scanner.OutcomeEmpty], counts[scanner.OutcomeMalformed], counts[scanner.OutcomeFailed],
		r.Duration.Round(time.Millisecond))
	if r.Scan.AllFailed() {
		b.WriteString("⚠️ data provider unavailable, every fetch failed\n")
	}
	for _, t := range r.Transitions {
		fmt.Fprintf(&b, "🔔 %s: %s → %s at %.2f\n", esc(t.Symbol), t.From, t.To, calculator.Round2(t.Price))
	}
	return b.String()
}

// FormatReport renders a full cycle report.
func FormatReport(r *engine.Report) string {
	return FormatCycleSummary(r) + "\n" + FormatCandidates(r.Candidates) + "\n\n" + FormatPositions(r.Positions)
}

// FormatHeadlines renders headlines with their sentiment.
func FormatHeadlines(symbol string, hs []news.Headline) string {
	if len(hs) == 0 {
		return fmt.Sprintf("No headlines for %s.", esc(symbol))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📰 <b>%s</b>\n", esc(symbol))
	for _, h := range hs {
		when := "-"
		if !h.Published.IsZero() {
			when = humanize.Time(h.Published)
		}
		fmt.Fprintf(&b, "• %s (%s, %s %+.2f)\n", esc(h.Title), when, news.Label(h.Sentiment), h.Sentiment)
	}
	return b.String()
}
