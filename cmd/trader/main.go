package main

import (
	"context"
	"flag"
	"log"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"

	"github.com/redadb/aitrader/internal/api"
	"github.com/redadb/aitrader/internal/cache"
	"github.com/redadb/aitrader/internal/config"
	"github.com/redadb/aitrader/internal/engine"
	"github.com/redadb/aitrader/internal/feed"
	"github.com/redadb/aitrader/internal/ledger"
	"github.com/redadb/aitrader/internal/marketdata"
	"github.com/redadb/aitrader/internal/model"
	"github.com/redadb/aitrader/internal/obs"
)

func main() {
	configPath := flag.String("config", "", "Path to JSON config")
	listenAddr := flag.String("listen", "", "API listen address (overrides config)")
	profileAddr := flag.String("profile", "", "Pyroscope server address (empty=off)")
	flag.Parse()

	loaded, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if *listenAddr != "" {
		loaded.ListenAddr = *listenAddr
	}

	if *profileAddr != "" {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "aitrader",
			ServerAddress:   *profileAddr,
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			log.Fatalf("pyroscope start failed: %v", err)
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	if err := run(loaded); err != nil {
		log.Fatalf("run failed: %v", err)
	}
}

func run(loaded config.Loaded) error {
	ctx := context.Background()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	metrics := obs.NewMetrics(registry)

	book := ledger.New(loaded.StartingBalance)
	metrics.SetBalance(book.Balance())

	eng := engine.New(book, metrics, loaded.Execution)
	source := marketdata.New(loaded.MarketData)
	quotes := cache.New(ctx, loaded.RedisAddr)

	feedOpt := loaded.Feed
	feedOpt.Metrics = metrics
	feedOpt.OnTick = func(tick model.Tick) {
		eng.UpdatePrice(tick.Symbol, tick.Price)
		if err := quotes.SetQuote(ctx, model.Quote{
			Symbol:        tick.Symbol,
			Price:         tick.Price,
			Change24h:     tick.Change24h,
			ChangePercent: tick.ChangePercent,
			Volume:        tick.Volume,
		}); err != nil {
			logs.Warnf("cache quote for %s: %v", tick.Symbol, err)
		}
	}
	feedOpt.OnError = func(err error) {
		logs.Warnf("feed error: %v", err)
	}
	stream := feed.New(loaded.Symbols, feedOpt)
	stream.Connect()

	server := api.New(api.Option{
		Engine:     eng,
		Source:     source,
		Cache:      quotes,
		ListenAddr: loaded.ListenAddr,
		Metrics:    metrics,
		Registry:   registry,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run()
	}()

	select {
	case err := <-errCh:
		stream.Disconnect()
		return err
	case <-sys.Shutdown():
		logs.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, api.DefaultShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logs.Warnf("api shutdown: %v", err)
	}
	stream.Disconnect()
	return nil
}
