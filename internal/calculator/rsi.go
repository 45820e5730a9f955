package calculator

import "math"

var nan = math.NaN()

// rsiEpsilon keeps the gain/loss ratio finite when there were no losses.
const rsiEpsilon = 1e-10

// RSI computes the relative strength index of values over period using plain
// trailing means of gains and losses.
//
// It needs period deltas (period+1 values). When minPeriods is between 1 and
// period, the mean is taken over the deltas available once at least
// minPeriods of them exist.
func RSI(values []float64, period, minPeriods int) (float64, bool) {
	if period <= 0 || len(values) < 2 {
		return 0, false
	}
	deltas := len(values) - 1
	need := period
	if minPeriods > 0 && minPeriods < period {
		need = minPeriods
	}
	if deltas < need {
		return 0, false
	}
	n := period
	if deltas < n {
		n = deltas
	}

	var gain, loss float64
	for i := len(values) - n; i < len(values); i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			gain += change
		} else {
			loss -= change
		}
	}
	gain /= float64(n)
	loss /= float64(n)
	if gain == 0 && loss == 0 {
		// flat window: no momentum either way
		return 50.0, true
	}

	rs := gain / (loss + rsiEpsilon)
	return 100.0 - 100.0/(1.0+rs), true
}

// RSISeries returns RSI at every index, NaN where it is not yet defined.
func RSISeries(values []float64, period, minPeriods int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if v, ok := RSI(values[:i+1], period, minPeriods); ok {
			out[i] = v
		} else {
			out[i] = nan
		}
	}
	return out
}
