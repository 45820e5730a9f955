package calculator

// EMA returns the exponential moving average series of values with
// smoothing factor 2/(span+1), seeded by the first value.
func EMA(values []float64, span int) []float64 {
	if len(values) == 0 || span <= 0 {
		return nil
	}
	alpha := 2.0 / float64(span+1)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// MACD returns the MACD line and its signal line as of the last value.
func MACD(values []float64, fast, slow, signal int) (macd, sig float64, ok bool) {
	line, signalLine := MACDSeries(values, fast, slow, signal)
	if len(line) == 0 {
		return 0, 0, false
	}
	return line[len(line)-1], signalLine[len(signalLine)-1], true
}

// MACDSeries returns the full MACD and signal series.
func MACDSeries(values []float64, fast, slow, signal int) (line, signalLine []float64) {
	fastEMA := EMA(values, fast)
	slowEMA := EMA(values, slow)
	if fastEMA == nil || slowEMA == nil {
		return nil, nil
	}
	line = make([]float64, len(values))
	for i := range values {
		line[i] = fastEMA[i] - slowEMA[i]
	}
	signalLine = EMA(line, signal)
	if signalLine == nil {
		return nil, nil
	}
	return line, signalLine
}
