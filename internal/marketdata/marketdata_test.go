package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratorQuotes(t *testing.T) {
	g := NewGenerator(1)

	quotes := g.Quotes()
	require.Len(t, quotes, 4)
	assert.Equal(t, "BTC", quotes[0].Symbol)
	assert.Equal(t, 44250.00, quotes[0].Price)
	assert.Equal(t, "ADA", quotes[3].Symbol)
}

func TestGeneratorCandles(t *testing.T) {
	g := NewGenerator(1)
	now := time.Now()

	points := g.Candles(now, 30)
	require.Len(t, points, 31)

	for i, p := range points {
		assert.GreaterOrEqual(t, p.High, p.Low, "candle %d", i)
		assert.GreaterOrEqual(t, p.High, p.Close, "candle %d", i)
		assert.LessOrEqual(t, p.Low, p.Close, "candle %d", i)
		if i > 0 {
			assert.Greater(t, p.Timestamp, points[i-1].Timestamp, "candle %d", i)
			// each candle opens where the previous one closed, plus the walk step
			assert.InDelta(t, points[i-1].Close, p.Open, 500, "candle %d", i)
		}
	}
	assert.Equal(t, now.UnixMilli(), points[30].Timestamp)
}

func TestGeneratorCandlesDeterministic(t *testing.T) {
	now := time.Now()
	a := NewGenerator(42).Candles(now, 10)
	b := NewGenerator(42).Candles(now, 10)
	assert.Equal(t, a, b)
}

func TestGeneratorConcurrentUse(t *testing.T) {
	g := NewGenerator(1)
	now := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				g.Candles(now, 10)
				g.OrderBook("BTC", 44250)
			}
		}()
	}
	wg.Wait()
}

func TestGeneratorOrderBook(t *testing.T) {
	g := NewGenerator(1)

	book := g.OrderBook("BTC", 44250)
	require.Len(t, book.Bids, 10)
	require.Len(t, book.Asks, 10)

	for i := 0; i < 10; i++ {
		assert.Equal(t, 44250-float64(i+1)*5, book.Bids[i].Price)
		assert.Equal(t, 44250+float64(i+1)*5, book.Asks[i].Price)
		assert.GreaterOrEqual(t, book.Bids[i].Amount, 0.0)
		assert.Less(t, book.Asks[i].Amount, 2.0)
	}
}

func TestTopQuotesFromUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/markets", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("per_page"))
		w.Write([]byte(`[
			{"symbol":"btc","name":"Bitcoin","current_price":45000,"price_change_24h":500,"price_change_percentage_24h":1.12,"total_volume":1000,"market_cap":2000},
			{"symbol":"eth","name":"Ethereum","current_price":2500,"price_change_24h":-10,"price_change_percentage_24h":-0.4,"total_volume":500,"market_cap":800}
		]`))
	}))
	defer srv.Close()

	s := New(Option{BaseURL: srv.URL})
	quotes := s.TopQuotes(context.Background(), 2)

	require.Len(t, quotes, 2)
	assert.Equal(t, "BTC", quotes[0].Symbol)
	assert.Equal(t, 45000.0, quotes[0].Price)
	assert.Equal(t, "ETH", quotes[1].Symbol)
	assert.Equal(t, -0.4, quotes[1].ChangePercent)
}

func TestTopQuotesFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := New(Option{BaseURL: srv.URL})
	quotes := s.TopQuotes(context.Background(), 10)

	require.Len(t, quotes, 4)
	assert.Equal(t, "BTC", quotes[0].Symbol)
}

func TestHistoryFromUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/bitcoin/ohlc", r.URL.Path)
		w.Write([]byte(`[[1700000000000,100,110,90,105],[1700086400000,105,115,100,112]]`))
	}))
	defer srv.Close()

	s := New(Option{BaseURL: srv.URL})
	points := s.History(context.Background(), "bitcoin", 2)

	require.Len(t, points, 2)
	assert.Equal(t, int64(1700000000000), points[0].Timestamp)
	assert.Equal(t, 100.0, points[0].Open)
	assert.Equal(t, 112.0, points[1].Close)
	assert.Greater(t, points[0].Volume, 0.0)
}

func TestHistoryFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	s := New(Option{BaseURL: srv.URL})
	points := s.History(context.Background(), "bitcoin", 30)

	require.Len(t, points, 31)
}

func TestOverviewFromUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/global", r.URL.Path)
		w.Write([]byte(`{"data":{"total_market_cap":{"usd":2.5e12},"total_volume":{"usd":9e10},"market_cap_percentage":{"btc":45.1},"active_cryptocurrencies":14000}}`))
	}))
	defer srv.Close()

	s := New(Option{BaseURL: srv.URL})
	overview := s.Overview(context.Background())

	assert.Equal(t, 2.5e12, overview.TotalMarketCap)
	assert.Equal(t, 45.1, overview.BTCDominance)
	assert.Equal(t, 14000, overview.ActiveCryptocurrencies)
}

func TestOverviewFallsBack(t *testing.T) {
	s := New(Option{BaseURL: "http://127.0.0.1:0"})
	overview := s.Overview(context.Background())

	assert.Equal(t, 42.3, overview.BTCDominance)
	assert.Equal(t, 13500, overview.ActiveCryptocurrencies)
}
