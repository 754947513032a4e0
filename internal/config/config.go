// Package config resolves the JSON runtime configuration.
package config

import (
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/errors"

	"github.com/redadb/aitrader/internal/engine"
	"github.com/redadb/aitrader/internal/feed"
	"github.com/redadb/aitrader/internal/ledger"
	"github.com/redadb/aitrader/internal/marketdata"
)

// DefaultSymbols are the dashboard's tracked markets.
var DefaultSymbols = []string{"BTC", "ETH", "SOL", "ADA"}

const DefaultListenAddr = ":8080"

// FileConfig mirrors the JSON config layout. All fields are optional;
// zero values resolve to defaults.
type FileConfig struct {
	Symbols         []string         `json:"symbols"`
	StartingBalance float64          `json:"startingBalance"`
	ListenAddr      string           `json:"listenAddr"`
	RedisAddr       string           `json:"redisAddr"`
	Feed            FeedConfig       `json:"feed"`
	MarketData      MarketDataConfig `json:"marketData"`
	Execution       ExecutionConfig  `json:"execution"`
}

// FeedConfig tunes the streaming client.
type FeedConfig struct {
	BaseURL             string `json:"baseUrl"`
	ReconnectAttempts   int    `json:"reconnectAttempts"`
	ReconnectIntervalMS int    `json:"reconnectIntervalMs"`
}

// MarketDataConfig tunes the HTTP market data source.
type MarketDataConfig struct {
	BaseURL string `json:"baseUrl"`
}

// ExecutionConfig tunes the simulated fill behavior.
type ExecutionConfig struct {
	MinDelayMS    int     `json:"minDelayMs"`
	MaxDelayMS    int     `json:"maxDelayMs"`
	FallbackPrice float64 `json:"fallbackPrice"`
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	Symbols         []string
	StartingBalance float64
	ListenAddr      string
	RedisAddr       string
	Feed            feed.Option
	MarketData      marketdata.Option
	Execution       engine.Option
}

// Load reads a JSON config file and applies defaults. An empty path
// resolves to an all-defaults configuration.
func Load(path string) (Loaded, error) {
	var cfg FileConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Loaded{}, errors.Wrap(err, "read config")
		}
		if err := sonic.Unmarshal(data, &cfg); err != nil {
			return Loaded{}, errors.Wrap(err, "parse config")
		}
	}
	return resolve(cfg), nil
}

func resolve(cfg FileConfig) Loaded {
	loaded := Loaded{
		Symbols:         cfg.Symbols,
		StartingBalance: cfg.StartingBalance,
		ListenAddr:      cfg.ListenAddr,
		RedisAddr:       cfg.RedisAddr,
		Feed: feed.Option{
			BaseURL:           cfg.Feed.BaseURL,
			ReconnectAttempts: cfg.Feed.ReconnectAttempts,
			ReconnectInterval: time.Duration(cfg.Feed.ReconnectIntervalMS) * time.Millisecond,
		},
		MarketData: marketdata.Option{
			BaseURL: cfg.MarketData.BaseURL,
		},
		Execution: engine.Option{
			MinExecutionDelay: time.Duration(cfg.Execution.MinDelayMS) * time.Millisecond,
			MaxExecutionDelay: time.Duration(cfg.Execution.MaxDelayMS) * time.Millisecond,
			FallbackPrice:     cfg.Execution.FallbackPrice,
		},
	}
	if len(loaded.Symbols) == 0 {
		loaded.Symbols = DefaultSymbols
	}
	if loaded.StartingBalance <= 0 {
		loaded.StartingBalance = ledger.DefaultStartingBalance
	}
	if loaded.ListenAddr == "" {
		loaded.ListenAddr = DefaultListenAddr
	}
	return loaded
}
