package marketdata

import (
	"math/rand"
	"sync"
	"time"

	"github.com/redadb/aitrader/internal/model"
)

// Synthetic data defaults, matching the fallback figures served when the
// upstream API is unreachable.
const (
	DefaultCandleBasePrice = 44000
	DefaultHistoryDays     = 30

	orderBookDepth   = 10
	orderBookSpacing = 5
)

// Generator produces synthetic market data. It backs every Source method
// when the upstream API fails, so the serving path never surfaces an
// upstream error. Safe for concurrent use.
type Generator struct {
	mu   sync.Mutex
	rand *rand.Rand
}

// NewGenerator creates a generator. A zero seed derives one from the clock.
func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rand: rand.New(rand.NewSource(seed))}
}

// draw serializes access to the RNG; concurrent API handlers share one
// generator and rand.Rand is not safe for concurrent use.
func (g *Generator) draw() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rand.Float64()
}

// volume draws the synthetic volume figure used for candles that carry no
// real one.
func (g *Generator) volume() float64 {
	return g.draw() * 1000000
}

// Quotes returns the static fallback quote table.
func (g *Generator) Quotes() []model.Quote {
	return []model.Quote{
		{Symbol: "BTC", Name: "Bitcoin", Price: 44250.00, Change24h: 1125.50, ChangePercent: 2.61, Volume: 28500000000, MarketCap: 865000000000},
		{Symbol: "ETH", Name: "Ethereum", Price: 2485.75, Change24h: -45.25, ChangePercent: -1.79, Volume: 15200000000, MarketCap: 298000000000},
		{Symbol: "SOL", Name: "Solana", Price: 126.84, Change24h: 6.47, ChangePercent: 5.37, Volume: 2800000000, MarketCap: 57000000000},
		{Symbol: "ADA", Name: "Cardano", Price: 0.612, Change24h: 0.019, ChangePercent: 3.20, Volume: 890000000, MarketCap: 21500000000},
	}
}

// Candles walks a random daily OHLCV series ending at now. It returns
// days+1 candles so the series includes today's.
func (g *Generator) Candles(now time.Time, days int) []model.PricePoint {
	if days <= 0 {
		days = DefaultHistoryDays
	}

	points := make([]model.PricePoint, 0, days+1)
	price := float64(DefaultCandleBasePrice)
	for i := days; i >= 0; i-- {
		timestamp := now.Add(-time.Duration(i) * 24 * time.Hour).UnixMilli()
		price += (g.draw() - 0.5) * 1000

		open := price
		high := open + g.draw()*500
		low := open - g.draw()*500
		close := low + g.draw()*(high-low)

		points = append(points, model.PricePoint{
			Timestamp: timestamp,
			Open:      open,
			High:      high,
			Low:       low,
			Close:     close,
			Volume:    g.volume(),
		})
		price = close
	}
	return points
}

// OrderBook fabricates a book around basePrice: ten levels each side at a
// fixed spacing, with random sizes.
func (g *Generator) OrderBook(symbol string, basePrice float64) model.OrderBook {
	book := model.OrderBook{
		Symbol: symbol,
		Bids:   make([]model.PriceLevel, 0, orderBookDepth),
		Asks:   make([]model.PriceLevel, 0, orderBookDepth),
	}
	for i := 0; i < orderBookDepth; i++ {
		offset := float64(i+1) * orderBookSpacing
		book.Bids = append(book.Bids, model.PriceLevel{Price: basePrice - offset, Amount: g.draw() * 2})
		book.Asks = append(book.Asks, model.PriceLevel{Price: basePrice + offset, Amount: g.draw() * 2})
	}
	return book
}

// Overview returns the static fallback market-wide figures.
func (g *Generator) Overview() model.MarketOverview {
	return model.MarketOverview{
		TotalMarketCap:         2100000000000,
		TotalVolume:            89200000000,
		BTCDominance:           42.3,
		ActiveCryptocurrencies: 13500,
	}
}

// News returns a static headline list timestamped relative to now.
func (g *Generator) News(now time.Time) []model.NewsItem {
	return []model.NewsItem{
		{
			ID:        "1",
			Title:     "Bitcoin ETF Approval Drives Market Rally",
			Summary:   "SEC approves multiple Bitcoin ETFs, leading to significant price increases across major cryptocurrencies.",
			Source:    "CoinDesk",
			Timestamp: now.Add(-2 * time.Hour),
			Sentiment: "positive",
			Impact:    "high",
			URL:       "#",
		},
		{
			ID:        "2",
			Title:     "Ethereum Network Upgrade Scheduled",
			Summary:   "Major network upgrade expected to improve transaction speeds and reduce gas fees.",
			Source:    "Ethereum Foundation",
			Timestamp: now.Add(-4 * time.Hour),
			Sentiment: "positive",
			Impact:    "medium",
			URL:       "#",
		},
		{
			ID:        "3",
			Title:     "Regulatory Concerns in Asian Markets",
			Summary:   "New regulations proposed in several Asian countries may impact crypto trading volumes.",
			Source:    "Reuters",
			Timestamp: now.Add(-6 * time.Hour),
			Sentiment: "negative",
			Impact:    "medium",
			URL:       "#",
		},
	}
}
