package scanner

import (
	"MarketScout/internal/model"
	"MarketScout/internal/strategy"
)

// Filter projects a candidate list. Filters are applied by callers; Scan
// itself never drops classified instruments.
type Filter func([]Candidate) []Candidate

// Apply runs filters in order over a copy of the candidates.
func (r *Result) Apply(filters ...Filter) []Candidate {
	out := append([]Candidate(nil), r.Candidates...)
	for _, f := range filters {
		out = f(out)
	}
	return out
}

// Decisions keeps candidates whose decision is one of ds.
func Decisions(ds ...model.Decision) Filter {
	keep := make(map[model.Decision]bool, len(ds))
	for _, d := range ds {
		keep[d] = true
	}
	return func(in []Candidate) []Candidate {
		var out []Candidate
		for _, c := range in {
			if keep[c.Signal.Decision] {
				out = append(out, c)
			}
		}
		return out
	}
}

// BuyOnly keeps buy-equivalent candidates.
func BuyOnly() Filter {
	return func(in []Candidate) []Candidate {
		var out []Candidate
		for _, c := range in {
			if strategy.IsBuyEquivalent(c.Signal.Decision) {
				out = append(out, c)
			}
		}
		return out
	}
}

// TopN keeps the first n candidates.
func TopN(n int) Filter {
	return func(in []Candidate) []Candidate {
		if n <= 0 || len(in) <= n {
			return in
		}
		return in[:n]
	}
}

// FromConfig builds the post-filter chain from config values. An empty
// decision list keeps every decision.
func FromConfig(decisions []string, topN int) []Filter {
	var fs []Filter
	if len(decisions) > 0 {
		ds := make([]model.Decision, len(decisions))
		for i, d := range decisions {
			ds[i] = model.Decision(d)
		}
		fs = append(fs, Decisions(ds...))
	}
	if topN > 0 {
		fs = append(fs, TopN(topN))
	}
	return fs
}
