package model

import (
	"time"

	"github.com/redadb/aitrader/internal/model/enum"
)

// PricePoint is one OHLCV candle. Sequences are ordered by timestamp
// ascending with no duplicate timestamps.
type PricePoint struct {
	Timestamp int64   `json:"timestamp"` // unix milliseconds
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// Quote is a market snapshot for one tracked symbol.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change24h     float64 `json:"change24h"`
	ChangePercent float64 `json:"changePercent"`
	Volume        float64 `json:"volume"`
	MarketCap     float64 `json:"marketCap"`
}

// Tick is one real-time price update from the streaming feed.
type Tick struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change24h     float64   `json:"change24h"`
	ChangePercent float64   `json:"changePercent"`
	Volume        float64   `json:"volume"`
	EventTime     time.Time `json:"eventTime"`
}

// Signal is a one-shot advisory trading signal derived from indicators.
// Signals are ephemeral and never persisted.
type Signal struct {
	Type     enum.SignalType `json:"type"`
	Strength float64         `json:"strength"` // 0-100
	Reason   string          `json:"reason"`
}

// Position is the holding for one symbol. AveragePrice is the
// size-weighted cost basis.
type Position struct {
	Symbol        string  `json:"symbol"`
	Amount        float64 `json:"amount"`
	AveragePrice  float64 `json:"averagePrice"`
	UnrealizedPnL float64 `json:"unrealizedPnL"`
}

// Order is a snapshot of one order as seen by callers. The ledger owns the
// authoritative record; ExecutionPrice is only set on filled orders and
// Error only on rejected ones.
type Order struct {
	ID             string           `json:"id"`
	Symbol         string           `json:"symbol"`
	Side           enum.Side        `json:"side"`
	Type           enum.OrderType   `json:"type"`
	Amount         float64          `json:"amount"`
	LimitPrice     float64          `json:"limitPrice,omitempty"`
	Status         enum.OrderStatus `json:"status"`
	Filled         float64          `json:"filled"`
	ExecutionPrice float64          `json:"executionPrice,omitempty"`
	Error          string           `json:"error,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
}

// PriceLevel is one order book row.
type PriceLevel struct {
	Price  float64 `json:"price"`
	Amount float64 `json:"amount"`
}

// OrderBook is a snapshot of bids and asks around the current price.
type OrderBook struct {
	Symbol string       `json:"symbol"`
	Bids   []PriceLevel `json:"bids"`
	Asks   []PriceLevel `json:"asks"`
}

// MarketOverview aggregates market-wide figures.
type MarketOverview struct {
	TotalMarketCap         float64 `json:"totalMarketCap"`
	TotalVolume            float64 `json:"totalVolume"`
	BTCDominance           float64 `json:"btcDominance"`
	ActiveCryptocurrencies int     `json:"activeCryptocurrencies"`
}

// NewsItem is one market news entry.
type NewsItem struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Sentiment string    `json:"sentiment"` // positive, negative, neutral
	Impact    string    `json:"impact"`    // high, medium, low
	URL       string    `json:"url"`
}

// Closes extracts the closing prices from a candle sequence.
func Closes(points []PricePoint) []float64 {
	if len(points) == 0 {
		return nil
	}
	closes := make([]float64, len(points))
	for i, p := range points {
		closes[i] = p.Close
	}
	return closes
}
