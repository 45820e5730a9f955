package news

import "strings"

// Scorer assigns a lexicon-based sentiment to headline text.
type Scorer struct {
	positive map[string]float64
	negative map[string]float64
}

// NewScorer creates a Scorer with a market-news vocabulary.
func NewScorer() *Scorer {
	return &Scorer{
		positive: map[string]float64{
			"surge": 1.0, "soar": 1.0, "skyrocket": 1.0, "breakthrough": 1.0,
			"bullish": 0.95, "rally": 0.95, "record": 0.9, "breakout": 0.9,
			"beat": 0.85, "beats": 0.85, "upgrade": 0.85, "upgraded": 0.85,
			"profit": 0.8, "growth": 0.8, "gain": 0.8, "gains": 0.8, "jump": 0.8, "jumps": 0.8,
			"strong": 0.8, "boost": 0.8, "rise": 0.65, "rises": 0.65, "higher": 0.65,
			"recover": 0.7, "rebound": 0.7, "approval": 0.7, "partnership": 0.6,
			"adoption": 0.6, "inflows": 0.6, "optimistic": 0.85, "outperform": 0.9,
		},
		negative: map[string]float64{
			"crash": 1.0, "plunge": 1.0, "collapse": 1.0, "bankruptcy": 0.95,
			"plummet": 0.95, "tumble": 0.95, "hack": 0.95, "exploit": 0.9, "panic": 0.9,
			"bearish": 0.85, "downgrade": 0.85, "downgraded": 0.85, "lawsuit": 0.85,
			"miss": 0.8, "misses": 0.8, "loss": 0.8, "losses": 0.8, "slump": 0.8,
			"decline": 0.8, "falls": 0.75, "fall": 0.75, "drop": 0.75, "drops": 0.75,
			"weak": 0.75, "probe": 0.7, "concern": 0.7, "concerns": 0.7,
			"outflows": 0.6, "lower": 0.6, "risk": 0.65, "selloff": 0.9, "sell-off": 0.9,
		},
	}
}

// Score returns a value in [-1, 1]; zero when no known word occurs.
func (s *Scorer) Score(text string) float64 {
	var score float64
	var matches int
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?\"'()[]{}:;")
		if v, ok := s.positive[word]; ok {
			score += v
			matches++
		}
		if v, ok := s.negative[word]; ok {
			score -= v
			matches++
		}
	}
	if matches == 0 {
		return 0
	}
	score /= float64(matches)
	if score > 1 {
		return 1
	}
	if score < -1 {
		return -1
	}
	return score
}

// Label buckets a score for display.
func Label(score float64) string {
	switch {
	case score >= 0.3:
		return "positive"
	case score <= -0.3:
		return "negative"
	default:
		return "neutral"
	}
}
