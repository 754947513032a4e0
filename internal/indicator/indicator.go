// Package indicator provides technical indicator calculations over ordered
// closing-price series.
//
// All functions are pure and side-effect free. A series shorter than the
// requested warm-up period yields an empty result, never an error.
package indicator

// Default periods matching common charting conventions.
const (
	DefaultRSIPeriod  = 14
	DefaultMACDFast   = 12
	DefaultMACDSlow   = 26
	DefaultMACDSignal = 9
)

// SMA computes the simple moving average. The result is aligned to the
// trailing edge of the input: len(out) == len(prices) - period + 1.
func SMA(prices []float64, period int) []float64 {
	if period <= 0 || period > len(prices) {
		return nil
	}
	out := make([]float64, 0, len(prices)-period+1)
	var sum float64
	for i, p := range prices {
		sum += p
		if i >= period {
			sum -= prices[i-period]
		}
		if i >= period-1 {
			out = append(out, sum/float64(period))
		}
	}
	return out
}

// EMA computes the exponential moving average with smoothing factor
// 2/(period+1). The first output value is the SMA of the first period
// inputs; len(out) == len(prices) - period + 1.
func EMA(prices []float64, period int) []float64 {
	if period <= 0 || period > len(prices) {
		return nil
	}
	multiplier := 2 / float64(period+1)

	var seed float64
	for _, p := range prices[:period] {
		seed += p
	}
	seed /= float64(period)

	out := make([]float64, 0, len(prices)-period+1)
	out = append(out, seed)
	prev := seed
	for _, p := range prices[period:] {
		prev = (p-prev)*multiplier + prev
		out = append(out, prev)
	}
	return out
}

// RSI computes the relative strength index over per-step gains and losses.
// Every output value lies in [0, 100]; an all-gain window reads 100.
func RSI(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period+1 {
		return nil
	}
	gains := make([]float64, len(prices)-1)
	losses := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains[i-1] = change
		} else {
			losses[i-1] = -change
		}
	}

	out := make([]float64, 0, len(gains)-period+1)
	var gainSum, lossSum float64
	for i := range gains {
		gainSum += gains[i]
		lossSum += losses[i]
		if i >= period {
			gainSum -= gains[i-period]
			lossSum -= losses[i-period]
		}
		if i < period-1 {
			continue
		}
		avgGain := gainSum / float64(period)
		avgLoss := lossSum / float64(period)
		if avgLoss == 0 {
			out = append(out, 100)
		} else {
			out = append(out, 100-100/(1+avgGain/avgLoss))
		}
	}
	return out
}

// MACDResult holds the three MACD series. Signal trails MACD by the signal
// period; Histogram is aligned to Signal.
type MACDResult struct {
	MACD      []float64
	Signal    []float64
	Histogram []float64
}

// MACD computes the moving average convergence divergence. The MACD line is
// the fast EMA minus the slow EMA with both series aligned to the same
// trailing index, the signal line is an EMA of the MACD line, and the
// histogram is the MACD line minus the signal line.
func MACD(prices []float64, fast, slow, signal int) MACDResult {
	if fast <= 0 || slow <= fast || signal <= 0 {
		return MACDResult{}
	}
	fastEMA := EMA(prices, fast)
	slowEMA := EMA(prices, slow)
	if len(slowEMA) == 0 {
		return MACDResult{}
	}

	offset := slow - fast
	macdLine := make([]float64, len(slowEMA))
	for i := range macdLine {
		macdLine[i] = fastEMA[i+offset] - slowEMA[i]
	}

	signalLine := EMA(macdLine, signal)
	histogram := make([]float64, len(signalLine))
	for i := range signalLine {
		histogram[i] = macdLine[i+signal-1] - signalLine[i]
	}

	return MACDResult{MACD: macdLine, Signal: signalLine, Histogram: histogram}
}
