package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/mux"
	"github.com/yanun0323/logs"

	"github.com/redadb/aitrader/internal/engine"
	"github.com/redadb/aitrader/internal/indicator"
	"github.com/redadb/aitrader/internal/marketdata"
	"github.com/redadb/aitrader/internal/model"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handlePrices serves the cached quote set, refreshing from the upstream
// when the cache is still empty.
func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	quotes, err := s.opt.Cache.AllQuotes(ctx)
	if err != nil {
		logs.Warnf("api: read quotes from cache: %v", err)
	}
	if len(quotes) == 0 {
		quotes = s.opt.Source.TopQuotes(ctx, 10)
		for _, quote := range quotes {
			if err := s.opt.Cache.SetQuote(ctx, quote); err != nil {
				logs.Warnf("api: warm quote cache: %v", err)
			}
		}
	}
	writeJSON(w, http.StatusOK, quotes)
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	quote, err := s.opt.Cache.GetQuote(r.Context(), symbol)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown symbol: " + symbol})
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (s *Server) handleCandles(w http.ResponseWriter, r *http.Request) {
	coin := mux.Vars(r)["coin"]
	days := queryInt(r, "days", marketdata.DefaultHistoryDays)

	writeJSON(w, http.StatusOK, s.opt.Source.History(r.Context(), coin, days))
}

func (s *Server) handleSignals(w http.ResponseWriter, r *http.Request) {
	coin := mux.Vars(r)["coin"]
	days := queryInt(r, "days", marketdata.DefaultHistoryDays)

	closes := model.Closes(s.opt.Source.History(r.Context(), coin, days))
	signals := indicator.GenerateSignals(closes)
	if signals == nil {
		signals = []model.Signal{}
	}
	writeJSON(w, http.StatusOK, signals)
}

// handleOrderBook fabricates a book around the symbol's cached price.
func (s *Server) handleOrderBook(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	basePrice := float64(engine.DefaultFallbackPrice)
	if quote, err := s.opt.Cache.GetQuote(r.Context(), symbol); err == nil && quote.Price > 0 {
		basePrice = quote.Price
	}
	writeJSON(w, http.StatusOK, s.opt.Source.Generator().OrderBook(symbol, basePrice))
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.opt.Source.Overview(r.Context()))
}

func (s *Server) handleNews(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.opt.Source.Generator().News(time.Now()))
}

func (s *Server) handleListOrders(w http.ResponseWriter, _ *http.Request) {
	orders := s.opt.Engine.Orders()
	if orders == nil {
		orders = []model.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req engine.PlaceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request: " + err.Error()})
		return
	}

	order, err := s.opt.Engine.PlaceOrder(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

// handleCancelOrder distinguishes an unknown order from one whose
// execution already settled it.
func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if _, ok := s.opt.Engine.Order(id); !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown order: " + id})
		return
	}
	if !s.opt.Engine.CancelOrder(id) {
		writeJSON(w, http.StatusConflict, errorResponse{Error: "order already settled: " + id})
		return
	}

	order, _ := s.opt.Engine.Order(id)
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) handlePositions(w http.ResponseWriter, _ *http.Request) {
	positions := s.opt.Engine.Positions()
	if positions == nil {
		positions = []model.Position{}
	}
	writeJSON(w, http.StatusOK, positions)
}

func (s *Server) handleBalance(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]float64{"balance": s.opt.Engine.Balance()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	data, err := sonic.Marshal(payload)
	if err != nil {
		logs.Errorf("api: marshal response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func decodeJSON(r *http.Request, out any) error {
	defer r.Body.Close()
	return sonic.ConfigDefault.NewDecoder(r.Body).Decode(out)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
