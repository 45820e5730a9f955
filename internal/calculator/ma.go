package calculator

// WindowPolicy decides what a moving average returns before its window is full.
type WindowPolicy int

const (
	// PartialMean averages over all available bars when fewer than window exist.
	PartialMean WindowPolicy = iota
	// StrictWindow returns no value until window bars exist.
	StrictWindow
)

// ParseWindowPolicy maps a config string to a policy. Unknown values fall back to PartialMean.
func ParseWindowPolicy(s string) WindowPolicy {
	if s == "strict" {
		return StrictWindow
	}
	return PartialMean
}

func (p WindowPolicy) String() string {
	if p == StrictWindow {
		return "strict"
	}
	return "partial"
}

// SMA returns the trailing simple moving average of values over window.
// The boolean is false when no value can be produced under the policy.
func SMA(values []float64, window int, policy WindowPolicy) (float64, bool) {
	if window <= 0 || len(values) == 0 {
		return 0, false
	}
	if len(values) < window {
		if policy == StrictWindow {
			return 0, false
		}
		window = len(values)
	}
	sum := 0.0
	for _, v := range values[len(values)-window:] {
		sum += v
	}
	return sum / float64(window), true
}

// SMASeries returns the moving average at every index. Entries that cannot
// be produced under the policy are NaN.
func SMASeries(values []float64, window int, policy WindowPolicy) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if v, ok := SMA(values[:i+1], window, policy); ok {
			out[i] = v
		} else {
			out[i] = nan
		}
	}
	return out
}
