// Package marketdata serves quotes, candles and market-wide figures from a
// CoinGecko-shaped HTTP API, degrading to synthetic data when the upstream
// is unreachable.
package marketdata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"github.com/redadb/aitrader/internal/model"
)

const (
	DefaultBaseURL     = "https://api.coingecko.com/api/v3"
	DefaultHTTPTimeout = 10 * time.Second
)

// Option configures a Source. Zero values fall back to defaults.
type Option struct {
	// BaseURL is the upstream API root. Optional; default DefaultBaseURL.
	BaseURL string
	// Client overrides the HTTP client. Optional.
	Client *http.Client
	// Generator overrides the synthetic fallback. Optional.
	Generator *Generator
}

func (opt *Option) init() {
	if opt.BaseURL == "" {
		opt.BaseURL = DefaultBaseURL
	}
	if opt.Client == nil {
		opt.Client = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	if opt.Generator == nil {
		opt.Generator = NewGenerator(0)
	}
}

// Source fetches market data over HTTP. Every method degrades to the
// generator on transport or decode failure, so callers never see an
// upstream error.
type Source struct {
	opt Option
}

// New builds a source.
func New(option ...Option) *Source {
	var opt Option
	if len(option) != 0 {
		opt = option[0]
	}
	opt.init()
	return &Source{opt: opt}
}

// Generator exposes the synthetic fallback for callers that want order
// books or news directly.
func (s *Source) Generator() *Generator { return s.opt.Generator }

type marketRow struct {
	Symbol         string  `json:"symbol"`
	Name           string  `json:"name"`
	CurrentPrice   float64 `json:"current_price"`
	PriceChange24h float64 `json:"price_change_24h"`
	PriceChangePct float64 `json:"price_change_percentage_24h"`
	TotalVolume    float64 `json:"total_volume"`
	MarketCap      float64 `json:"market_cap"`
}

// TopQuotes returns the top market-cap quotes, falling back to the static
// table when the upstream fails.
func (s *Source) TopQuotes(ctx context.Context, limit int) []model.Quote {
	if limit <= 0 {
		limit = 10
	}

	var rows []marketRow
	url := fmt.Sprintf("%s/coins/markets?vs_currency=usd&order=market_cap_desc&per_page=%d&page=1&sparkline=false", s.opt.BaseURL, limit)
	if err := s.get(ctx, url, &rows); err != nil {
		logs.Warnf("marketdata: top quotes unavailable, using fallback: %v", err)
		return s.opt.Generator.Quotes()
	}

	quotes := make([]model.Quote, 0, len(rows))
	for _, row := range rows {
		quotes = append(quotes, model.Quote{
			Symbol:        strings.ToUpper(row.Symbol),
			Name:          row.Name,
			Price:         row.CurrentPrice,
			Change24h:     row.PriceChange24h,
			ChangePercent: row.PriceChangePct,
			Volume:        row.TotalVolume,
			MarketCap:     row.MarketCap,
		})
	}
	return quotes
}

// History returns daily OHLC candles for a coin. The upstream OHLC feed
// carries no volume, so volume is synthesized; on failure the whole series
// is synthetic.
func (s *Source) History(ctx context.Context, coin string, days int) []model.PricePoint {
	if days <= 0 {
		days = DefaultHistoryDays
	}

	var rows [][]float64
	url := fmt.Sprintf("%s/coins/%s/ohlc?vs_currency=usd&days=%d", s.opt.BaseURL, coin, days)
	if err := s.get(ctx, url, &rows); err != nil {
		logs.Warnf("marketdata: history for %s unavailable, using fallback: %v", coin, err)
		return s.opt.Generator.Candles(time.Now(), days)
	}

	points := make([]model.PricePoint, 0, len(rows))
	for _, row := range rows {
		if len(row) < 5 {
			continue
		}
		points = append(points, model.PricePoint{
			Timestamp: int64(row[0]),
			Open:      row[1],
			High:      row[2],
			Low:       row[3],
			Close:     row[4],
			Volume:    s.opt.Generator.volume(),
		})
	}
	return points
}

type globalEnvelope struct {
	Data struct {
		TotalMarketCap         map[string]float64 `json:"total_market_cap"`
		TotalVolume            map[string]float64 `json:"total_volume"`
		MarketCapPercentage    map[string]float64 `json:"market_cap_percentage"`
		ActiveCryptocurrencies int                `json:"active_cryptocurrencies"`
	} `json:"data"`
}

// Overview returns market-wide figures, static fallback on failure.
func (s *Source) Overview(ctx context.Context) model.MarketOverview {
	var envelope globalEnvelope
	if err := s.get(ctx, s.opt.BaseURL+"/global", &envelope); err != nil {
		logs.Warnf("marketdata: overview unavailable, using fallback: %v", err)
		return s.opt.Generator.Overview()
	}
	return model.MarketOverview{
		TotalMarketCap:         envelope.Data.TotalMarketCap["usd"],
		TotalVolume:            envelope.Data.TotalVolume["usd"],
		BTCDominance:           envelope.Data.MarketCapPercentage["btc"],
		ActiveCryptocurrencies: envelope.Data.ActiveCryptocurrencies,
	}
}

func (s *Source) get(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}

	resp, err := s.opt.Client.Do(req)
	if err != nil {
		return errors.Wrap(err, "request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read body")
	}
	if err := sonic.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "decode body")
	}
	return nil
}
