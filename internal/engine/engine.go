// Package engine validates and accepts orders against the execution
// ledger, simulating venue latency for market orders.
package engine

import (
	"math/rand"
	"time"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"github.com/redadb/aitrader/internal/ledger"
	"github.com/redadb/aitrader/internal/model"
	"github.com/redadb/aitrader/internal/model/enum"
	"github.com/redadb/aitrader/internal/obs"
)

var (
	ErrInvalidSymbol = errors.New("engine: symbol must not be empty")
	ErrInvalidSide   = errors.New("engine: unknown order side")
	ErrInvalidType   = errors.New("engine: unknown order type")
	ErrInvalidAmount = errors.New("engine: amount must be positive")
	ErrInvalidPrice  = errors.New("engine: price must be positive")
)

// Simulation defaults. The delay bounds model venue latency; the fallback
// price covers market orders placed before any tick arrived.
const (
	DefaultMinExecutionDelay = 500 * time.Millisecond
	DefaultMaxExecutionDelay = 2500 * time.Millisecond
	DefaultFallbackPrice     = 44250
)

// Scheduler defers a task by the given delay. The default uses
// time.AfterFunc; tests inject a synchronous one.
type Scheduler func(delay time.Duration, task func())

// Option tunes the simulation. Zero values fall back to defaults.
type Option struct {
	// MinExecutionDelay is the lower bound of the simulated fill delay.
	MinExecutionDelay time.Duration
	// MaxExecutionDelay is the exclusive upper bound of the simulated fill delay.
	MaxExecutionDelay time.Duration
	// FallbackPrice is used for market orders with no known market price.
	FallbackPrice float64
	// Scheduler overrides how execution tasks are deferred.
	Scheduler Scheduler
}

func (opt *Option) init() {
	if opt.MinExecutionDelay <= 0 {
		opt.MinExecutionDelay = DefaultMinExecutionDelay
	}
	if opt.MaxExecutionDelay <= opt.MinExecutionDelay {
		opt.MaxExecutionDelay = opt.MinExecutionDelay + (DefaultMaxExecutionDelay - DefaultMinExecutionDelay)
	}
	if opt.FallbackPrice <= 0 {
		opt.FallbackPrice = DefaultFallbackPrice
	}
	if opt.Scheduler == nil {
		opt.Scheduler = func(delay time.Duration, task func()) {
			time.AfterFunc(delay, task)
		}
	}
}

// PlaceRequest is the caller's order intent. Price is required for limit
// and stop orders and ignored for market orders.
type PlaceRequest struct {
	Symbol string         `json:"symbol"`
	Side   enum.Side      `json:"side"`
	Type   enum.OrderType `json:"type"`
	Amount float64        `json:"amount"`
	Price  float64        `json:"price,omitempty"`
}

// Engine accepts orders and schedules their simulated execution. All
// bookkeeping is delegated to the ledger, which serializes mutations.
type Engine struct {
	ledger  *ledger.Ledger
	metrics *obs.Metrics
	opt     Option
}

// New builds an engine over the given ledger.
func New(l *ledger.Ledger, metrics *obs.Metrics, option ...Option) *Engine {
	var opt Option
	if len(option) != 0 {
		opt = option[0]
	}
	opt.init()
	return &Engine{ledger: l, metrics: metrics, opt: opt}
}

// PlaceOrder validates the request, appends a pending order and returns
// its snapshot immediately. Market orders are scheduled for execution
// after a randomized delay; limit and stop orders stay pending, no
// price-trigger evaluation happens in this engine.
func (e *Engine) PlaceOrder(req PlaceRequest) (model.Order, error) {
	if err := validate(req); err != nil {
		return model.Order{}, err
	}

	limitPrice := req.Price
	if req.Type == enum.OrderTypeMarket {
		limitPrice = 0
	}

	order := e.ledger.Append(req.Symbol, req.Side, req.Type, req.Amount, limitPrice)
	e.metrics.OrderPlaced()
	logs.Infof("order %s accepted: %s %s %v %s", order.ID, order.Side, order.Type, order.Amount, order.Symbol)

	if req.Type == enum.OrderTypeMarket {
		e.opt.Scheduler(e.executionDelay(), func() { e.execute(order.ID) })
	}
	return order, nil
}

// CancelOrder cancels a pending order. It returns false when the order is
// unknown or already terminal; a market order whose execution already ran
// cannot be cancelled.
func (e *Engine) CancelOrder(id string) bool {
	if !e.ledger.Cancel(id) {
		return false
	}
	e.metrics.OrderCancelled()
	logs.Infof("order %s cancelled", id)
	return true
}

// UpdatePrice records a market tick as the symbol's last known price.
func (e *Engine) UpdatePrice(symbol string, price float64) {
	e.ledger.MarkPrice(symbol, price)
}

// Balance returns the current cash balance.
func (e *Engine) Balance() float64 { return e.ledger.Balance() }

// Orders returns order snapshots, most recent first.
func (e *Engine) Orders() []model.Order { return e.ledger.Orders() }

// Order returns one order snapshot by id.
func (e *Engine) Order(id string) (model.Order, bool) { return e.ledger.Order(id) }

// Positions returns snapshots of all open positions.
func (e *Engine) Positions() []model.Position { return e.ledger.Positions() }

func (e *Engine) execute(id string) {
	snapshot, ok := e.ledger.Order(id)
	if !ok {
		return
	}

	executionPrice := snapshot.LimitPrice
	if executionPrice <= 0 {
		mark, ok := e.ledger.Mark(snapshot.Symbol)
		if !ok {
			mark = e.opt.FallbackPrice
		}
		executionPrice = mark
	}

	result, err := e.ledger.Execute(id, executionPrice)
	if err != nil {
		// cancelled before the delay fired, or already settled
		logs.Debugf("order %s not executed: %v", id, err)
		return
	}

	switch result.Status {
	case enum.OrderStatusFilled:
		e.metrics.OrderFilled()
		logs.Infof("order %s filled: %v %s at %v", id, result.Filled, result.Symbol, result.ExecutionPrice)
	case enum.OrderStatusRejected:
		e.metrics.OrderRejected()
		logs.Warnf("order %s rejected: %s", id, result.Error)
	}
	e.metrics.SetBalance(e.ledger.Balance())
}

func (e *Engine) executionDelay() time.Duration {
	spread := e.opt.MaxExecutionDelay - e.opt.MinExecutionDelay
	return e.opt.MinExecutionDelay + time.Duration(rand.Int63n(int64(spread)))
}

func validate(req PlaceRequest) error {
	if req.Symbol == "" {
		return ErrInvalidSymbol
	}
	if !req.Side.IsAvailable() {
		return ErrInvalidSide
	}
	if !req.Type.IsAvailable() {
		return ErrInvalidType
	}
	if req.Amount <= 0 {
		return ErrInvalidAmount
	}
	if req.Type.RequiresPrice() && req.Price <= 0 {
		return ErrInvalidPrice
	}
	return nil
}
