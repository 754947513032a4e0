// Package ledger owns the simulated account state: cash balance, per-symbol
// positions and the order log.
//
// Every mutation happens behind one mutex so concurrent placements,
// scheduled executions and cancellations apply in a total order. Callers
// only ever see snapshots.
package ledger

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yanun0323/errors"

	"github.com/redadb/aitrader/internal/model"
	"github.com/redadb/aitrader/internal/model/enum"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrTerminalState = errors.New("order already in terminal state")
)

// DefaultStartingBalance is the simulated cash balance a fresh ledger
// starts with.
const DefaultStartingBalance = 50000

// Rejection reasons recorded on orders that fail the business checks.
const (
	ReasonInsufficientBalance  = "insufficient balance"
	ReasonInsufficientPosition = "insufficient position"
)

// Ledger is the authoritative account state for one running simulation.
// Construct one per simulation and inject it; there is no shared instance.
type Ledger struct {
	mu        sync.Mutex
	balance   float64
	positions map[string]*model.Position
	orders    []*model.Order // append-only, insertion order
	index     map[string]*model.Order
	marks     map[string]float64
}

// New creates a ledger with the given starting balance. A non-positive
// balance falls back to DefaultStartingBalance.
func New(startingBalance float64) *Ledger {
	if startingBalance <= 0 {
		startingBalance = DefaultStartingBalance
	}
	return &Ledger{
		balance:   startingBalance,
		positions: make(map[string]*model.Position),
		index:     make(map[string]*model.Order),
		marks:     make(map[string]float64),
	}
}

// Append records a new pending order and returns its snapshot. Input is
// assumed validated by the engine.
func (l *Ledger) Append(symbol string, side enum.Side, typ enum.OrderType, amount, limitPrice float64) model.Order {
	order := &model.Order{
		ID:         uuid.NewString(),
		Symbol:     symbol,
		Side:       side,
		Type:       typ,
		Amount:     amount,
		LimitPrice: limitPrice,
		Status:     enum.OrderStatusPending,
		CreatedAt:  time.Now().UTC(),
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.orders = append(l.orders, order)
	l.index[order.ID] = order
	return *order
}

// Execute settles a pending order at the given execution price, either
// filling it against the balance/position or rejecting it with a reason.
// The whole read-check-mutate sequence runs under the ledger mutex; a
// cancellation that already won leaves the order untouched and returns
// ErrTerminalState.
func (l *Ledger) Execute(id string, executionPrice float64) (model.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	order, ok := l.index[id]
	if !ok {
		return model.Order{}, ErrOrderNotFound
	}
	if order.Status.IsTerminal() {
		return *order, ErrTerminalState
	}

	total := order.Amount * executionPrice

	switch order.Side {
	case enum.SideBuy:
		if l.balance < total {
			l.markRejected(order, ReasonInsufficientBalance)
			return *order, nil
		}
		l.balance -= total
		l.applyBuy(order.Symbol, order.Amount, executionPrice, total)
		l.markFilled(order, executionPrice)

	case enum.SideSell:
		position, ok := l.positions[order.Symbol]
		if !ok || position.Amount < order.Amount {
			l.markRejected(order, ReasonInsufficientPosition)
			return *order, nil
		}
		l.balance += total
		position.Amount -= order.Amount
		if position.Amount == 0 {
			delete(l.positions, order.Symbol)
		} else {
			l.refreshPnL(position)
		}
		l.markFilled(order, executionPrice)
	}

	return *order, nil
}

// Cancel transitions a pending order to cancelled. It returns true only
// when the order was still pending; terminal orders are left untouched.
func (l *Ledger) Cancel(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	order, ok := l.index[id]
	if !ok || order.Status != enum.OrderStatusPending {
		return false
	}
	order.Status = enum.OrderStatusCancelled
	return true
}

// MarkPrice records the last known trade price for a symbol and refreshes
// the unrealized PnL of any open position on it.
func (l *Ledger) MarkPrice(symbol string, price float64) {
	if price <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	l.marks[symbol] = price
	if position, ok := l.positions[symbol]; ok {
		position.UnrealizedPnL = (price - position.AveragePrice) * position.Amount
	}
}

// Mark returns the last known trade price for a symbol.
func (l *Ledger) Mark(symbol string) (float64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	price, ok := l.marks[symbol]
	return price, ok
}

// Balance returns the current cash balance.
func (l *Ledger) Balance() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}

// Order returns a snapshot of one order by id.
func (l *Ledger) Order(id string) (model.Order, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	order, ok := l.index[id]
	if !ok {
		return model.Order{}, false
	}
	return *order, true
}

// Orders returns snapshots of all orders, most recent first.
func (l *Ledger) Orders() []model.Order {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]model.Order, 0, len(l.orders))
	for i := len(l.orders) - 1; i >= 0; i-- {
		out = append(out, *l.orders[i])
	}
	return out
}

// Positions returns snapshots of all open positions.
func (l *Ledger) Positions() []model.Position {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]model.Position, 0, len(l.positions))
	for _, position := range l.positions {
		out = append(out, *position)
	}
	return out
}

// Position returns the open position for a symbol, if any.
func (l *Ledger) Position(symbol string) (model.Position, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	position, ok := l.positions[symbol]
	if !ok {
		return model.Position{}, false
	}
	return *position, true
}

// applyBuy upserts the position with a size-weighted cost basis:
// newAvg = (oldAvg*oldAmount + total) / (oldAmount + amount).
func (l *Ledger) applyBuy(symbol string, amount, executionPrice, total float64) {
	position, ok := l.positions[symbol]
	if !ok {
		position = &model.Position{
			Symbol:       symbol,
			Amount:       amount,
			AveragePrice: executionPrice,
		}
		l.positions[symbol] = position
		l.refreshPnL(position)
		return
	}
	position.AveragePrice = (position.AveragePrice*position.Amount + total) / (position.Amount + amount)
	position.Amount += amount
	l.refreshPnL(position)
}

func (l *Ledger) refreshPnL(position *model.Position) {
	if mark, ok := l.marks[position.Symbol]; ok {
		position.UnrealizedPnL = (mark - position.AveragePrice) * position.Amount
	} else {
		position.UnrealizedPnL = 0
	}
}

// markFilled and markRejected are the only writers of ExecutionPrice and
// Error, keeping the illegal field combinations unreachable.
func (l *Ledger) markFilled(order *model.Order, executionPrice float64) {
	order.Status = enum.OrderStatusFilled
	order.Filled = order.Amount
	order.ExecutionPrice = executionPrice
}

func (l *Ledger) markRejected(order *model.Order, reason string) {
	order.Status = enum.OrderStatusRejected
	order.Error = reason
}
