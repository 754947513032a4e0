// Package api exposes the dashboard REST surface: market data reads and
// order placement over the execution engine.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yanun0323/logs"

	"github.com/redadb/aitrader/internal/cache"
	"github.com/redadb/aitrader/internal/engine"
	"github.com/redadb/aitrader/internal/marketdata"
	"github.com/redadb/aitrader/internal/obs"
)

const (
	DefaultListenAddr      = ":8080"
	DefaultShutdownTimeout = 5 * time.Second
)

// Option wires the server's collaborators. Engine, Source and Cache are
// required; the rest are optional.
type Option struct {
	Engine *engine.Engine
	Source *marketdata.Source
	Cache  cache.Cache

	// ListenAddr is the bind address. Optional; default DefaultListenAddr.
	ListenAddr string
	// Metrics records request latency. Optional.
	Metrics *obs.Metrics
	// Registry backs the /metrics endpoint. Optional; nil disables it.
	Registry *prometheus.Registry
}

func (opt *Option) init() {
	if opt.ListenAddr == "" {
		opt.ListenAddr = DefaultListenAddr
	}
}

// Server serves the REST API.
type Server struct {
	opt    Option
	router *mux.Router
	srv    *http.Server
}

// New builds the server and its routes.
func New(option Option) *Server {
	option.init()
	s := &Server{opt: option}
	s.routes()
	s.srv = &http.Server{
		Addr:    option.ListenAddr,
		Handler: s.router,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	logs.Infof("api: listening on %s", s.opt.ListenAddr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) routes() {
	s.router = mux.NewRouter()
	s.router.Use(s.instrument)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if s.opt.Registry != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.opt.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	v1 := s.router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/prices", s.handlePrices).Methods(http.MethodGet)
	v1.HandleFunc("/prices/{symbol}", s.handlePrice).Methods(http.MethodGet)
	v1.HandleFunc("/candles/{coin}", s.handleCandles).Methods(http.MethodGet)
	v1.HandleFunc("/signals/{coin}", s.handleSignals).Methods(http.MethodGet)
	v1.HandleFunc("/orderbook/{symbol}", s.handleOrderBook).Methods(http.MethodGet)
	v1.HandleFunc("/overview", s.handleOverview).Methods(http.MethodGet)
	v1.HandleFunc("/news", s.handleNews).Methods(http.MethodGet)
	v1.HandleFunc("/orders", s.handleListOrders).Methods(http.MethodGet)
	v1.HandleFunc("/orders", s.handlePlaceOrder).Methods(http.MethodPost)
	v1.HandleFunc("/orders/{id}", s.handleCancelOrder).Methods(http.MethodDelete)
	v1.HandleFunc("/positions", s.handlePositions).Methods(http.MethodGet)
	v1.HandleFunc("/balance", s.handleBalance).Methods(http.MethodGet)
}

// instrument records per-route latency. The route template keeps the
// label cardinality bounded.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if template, err := current.GetPathTemplate(); err == nil {
				route = template
			}
		}
		s.opt.Metrics.ObserveRequest(route, time.Since(start))
	})
}
