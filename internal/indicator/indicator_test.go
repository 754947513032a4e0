package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMAWindowMeans(t *testing.T) {
	prices := []float64{1, 2, 3, 4, 5}

	out := SMA(prices, 3)

	require.Len(t, out, 3)
	assert.InDelta(t, 2, out[0], 1e-9)
	assert.InDelta(t, 3, out[1], 1e-9)
	assert.InDelta(t, 4, out[2], 1e-9)
}

func TestSMALengthProperty(t *testing.T) {
	prices := []float64{44, 45, 43, 46, 47, 44, 48, 49, 45, 50}
	for period := 1; period <= len(prices); period++ {
		out := SMA(prices, period)
		require.Len(t, out, len(prices)-period+1, "period %d", period)

		for i, got := range out {
			var sum float64
			for _, p := range prices[i : i+period] {
				sum += p
			}
			assert.InDelta(t, sum/float64(period), got, 1e-9)
		}
	}
}

func TestSMATooShort(t *testing.T) {
	assert.Empty(t, SMA([]float64{1, 2}, 3))
	assert.Empty(t, SMA(nil, 1))
	assert.Empty(t, SMA([]float64{1, 2, 3}, 0))
}

func TestEMASeedEqualsSMA(t *testing.T) {
	prices := []float64{10, 11, 12, 13, 14, 15, 16, 17}
	period := 4

	ema := EMA(prices, period)
	sma := SMA(prices[:period], period)

	require.Len(t, ema, len(prices)-period+1)
	require.Len(t, sma, 1)
	assert.InDelta(t, sma[0], ema[0], 1e-9)
}

func TestEMASmoothing(t *testing.T) {
	// period 2: seed 1.5, multiplier 2/3.
	out := EMA([]float64{1, 2, 3, 4}, 2)

	require.Len(t, out, 3)
	assert.InDelta(t, 1.5, out[0], 1e-9)
	assert.InDelta(t, 2.5, out[1], 1e-9)
	assert.InDelta(t, 3.5, out[2], 1e-9)
}

func TestRSIBounds(t *testing.T) {
	prices := []float64{
		44250, 44800, 43900, 44100, 45200, 44600, 44900, 45500,
		45100, 44700, 45900, 46200, 45800, 46500, 46100, 46800,
		46400, 47000, 46600, 47200,
	}

	out := RSI(prices, DefaultRSIPeriod)

	require.NotEmpty(t, out)
	for _, v := range out {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
}

func TestRSIAllGains(t *testing.T) {
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}

	for _, v := range RSI(prices, DefaultRSIPeriod) {
		assert.Equal(t, 100.0, v)
	}
}

func TestRSIExact(t *testing.T) {
	// gains [1,1,0], losses [0,0,1]; period 2 windows:
	// [1,1]/[0,0] -> 100, [1,0]/[0,1] -> 50.
	out := RSI([]float64{1, 2, 3, 2}, 2)

	require.Len(t, out, 2)
	assert.InDelta(t, 100, out[0], 1e-9)
	assert.InDelta(t, 50, out[1], 1e-9)
}

func TestRSITooShort(t *testing.T) {
	assert.Empty(t, RSI([]float64{1, 2, 3}, 14))
	assert.Empty(t, RSI(nil, 14))
}

func TestMACDAlignment(t *testing.T) {
	prices := make([]float64, 40)
	for i := range prices {
		prices[i] = 100 + 5*math.Sin(float64(i)/4)
	}

	out := MACD(prices, DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal)

	require.Len(t, out.MACD, len(prices)-DefaultMACDSlow+1)
	require.Len(t, out.Signal, len(out.MACD)-DefaultMACDSignal+1)
	require.Len(t, out.Histogram, len(out.Signal))

	for i := range out.Signal {
		assert.InDelta(t, out.MACD[i+DefaultMACDSignal-1]-out.Signal[i], out.Histogram[i], 1e-9)
	}
}

func TestMACDTooShort(t *testing.T) {
	out := MACD([]float64{1, 2, 3}, DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal)

	assert.Empty(t, out.MACD)
	assert.Empty(t, out.Signal)
	assert.Empty(t, out.Histogram)
}
