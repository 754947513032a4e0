package indicator

import (
	"github.com/redadb/aitrader/internal/model"
	"github.com/redadb/aitrader/internal/model/enum"
)

const (
	rsiOversold   = 30
	rsiOverbought = 70

	crossoverStrength = 75
	maxSignalStrength = 95
)

// GenerateSignals derives one-shot advisory signals from the latest RSI and
// MACD state of the given closing-price series.
//
// Multiple signals may fire at once; no de-duplication or conflict
// resolution happens here, the caller interprets the set. Insufficient
// history yields no signals.
func GenerateSignals(prices []float64) []model.Signal {
	var signals []model.Signal

	rsi := RSI(prices, DefaultRSIPeriod)
	if len(rsi) > 0 {
		current := rsi[len(rsi)-1]
		switch {
		case current < rsiOversold:
			signals = append(signals, model.Signal{
				Type:     enum.SignalBuy,
				Strength: clampStrength(100 - current*2),
				Reason:   "RSI oversold condition",
			})
		case current > rsiOverbought:
			signals = append(signals, model.Signal{
				Type:     enum.SignalSell,
				Strength: clampStrength((current - 50) * 2),
				Reason:   "RSI overbought condition",
			})
		}
	}

	macd := MACD(prices, DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal)
	if len(macd.MACD) >= 2 && len(macd.Signal) >= 2 {
		currMACD := macd.MACD[len(macd.MACD)-1]
		currSignal := macd.Signal[len(macd.Signal)-1]
		prevMACD := macd.MACD[len(macd.MACD)-2]
		prevSignal := macd.Signal[len(macd.Signal)-2]

		if currMACD > currSignal && prevMACD <= prevSignal {
			signals = append(signals, model.Signal{
				Type:     enum.SignalBuy,
				Strength: crossoverStrength,
				Reason:   "MACD bullish crossover",
			})
		} else if currMACD < currSignal && prevMACD >= prevSignal {
			signals = append(signals, model.Signal{
				Type:     enum.SignalSell,
				Strength: crossoverStrength,
				Reason:   "MACD bearish crossover",
			})
		}
	}

	return signals
}

func clampStrength(v float64) float64 {
	if v > maxSignalStrength {
		return maxSignalStrength
	}
	return v
}
