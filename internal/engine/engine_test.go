package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redadb/aitrader/internal/ledger"
	"github.com/redadb/aitrader/internal/model/enum"
)

func syncScheduler(_ time.Duration, task func()) { task() }

// manualScheduler captures tasks so tests control when execution fires.
type manualScheduler struct {
	tasks []func()
}

func (m *manualScheduler) schedule(_ time.Duration, task func()) {
	m.tasks = append(m.tasks, task)
}

func (m *manualScheduler) fire() {
	for _, task := range m.tasks {
		task()
	}
	m.tasks = nil
}

func newSyncEngine(balance float64) *Engine {
	return New(ledger.New(balance), nil, Option{Scheduler: syncScheduler})
}

func TestPlaceOrderValidation(t *testing.T) {
	e := newSyncEngine(50000)

	cases := []struct {
		name string
		req  PlaceRequest
		want error
	}{
		{"empty symbol", PlaceRequest{Side: enum.SideBuy, Type: enum.OrderTypeMarket, Amount: 1}, ErrInvalidSymbol},
		{"unknown side", PlaceRequest{Symbol: "BTC", Type: enum.OrderTypeMarket, Amount: 1}, ErrInvalidSide},
		{"unknown type", PlaceRequest{Symbol: "BTC", Side: enum.SideBuy, Amount: 1}, ErrInvalidType},
		{"zero amount", PlaceRequest{Symbol: "BTC", Side: enum.SideBuy, Type: enum.OrderTypeMarket}, ErrInvalidAmount},
		{"negative amount", PlaceRequest{Symbol: "BTC", Side: enum.SideBuy, Type: enum.OrderTypeMarket, Amount: -1}, ErrInvalidAmount},
		{"limit without price", PlaceRequest{Symbol: "BTC", Side: enum.SideBuy, Type: enum.OrderTypeLimit, Amount: 1}, ErrInvalidPrice},
		{"stop without price", PlaceRequest{Symbol: "BTC", Side: enum.SideSell, Type: enum.OrderTypeStop, Amount: 1}, ErrInvalidPrice},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.PlaceOrder(tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	// rejected requests never enter the order list
	assert.Empty(t, e.Orders())
}

func TestMarketBuyFillsAtLastPrice(t *testing.T) {
	e := newSyncEngine(50000)
	e.UpdatePrice("BTC", 44250)

	order, err := e.PlaceOrder(PlaceRequest{Symbol: "BTC", Side: enum.SideBuy, Type: enum.OrderTypeMarket, Amount: 0.1})
	require.NoError(t, err)

	settled, ok := e.Order(order.ID)
	require.True(t, ok)
	assert.Equal(t, enum.OrderStatusFilled, settled.Status)
	assert.Equal(t, 44250.0, settled.ExecutionPrice)
	assert.InDelta(t, 45575.00, e.Balance(), 1e-9)

	positions := e.Positions()
	require.Len(t, positions, 1)
	assert.Equal(t, 0.1, positions[0].Amount)
	assert.Equal(t, 44250.0, positions[0].AveragePrice)
}

func TestMarketBuyFallbackPrice(t *testing.T) {
	e := newSyncEngine(50000)

	order, err := e.PlaceOrder(PlaceRequest{Symbol: "BTC", Side: enum.SideBuy, Type: enum.OrderTypeMarket, Amount: 0.1})
	require.NoError(t, err)

	settled, _ := e.Order(order.ID)
	assert.Equal(t, float64(DefaultFallbackPrice), settled.ExecutionPrice)
}

func TestMarketBuyInsufficientBalance(t *testing.T) {
	e := newSyncEngine(1000)
	e.UpdatePrice("BTC", 44250)

	order, err := e.PlaceOrder(PlaceRequest{Symbol: "BTC", Side: enum.SideBuy, Type: enum.OrderTypeMarket, Amount: 1})
	require.NoError(t, err)

	settled, _ := e.Order(order.ID)
	assert.Equal(t, enum.OrderStatusRejected, settled.Status)
	assert.Zero(t, settled.Filled)
	assert.Equal(t, 1000.0, e.Balance())
}

func TestLimitOrderStaysPending(t *testing.T) {
	e := newSyncEngine(50000)

	order, err := e.PlaceOrder(PlaceRequest{Symbol: "BTC", Side: enum.SideBuy, Type: enum.OrderTypeLimit, Amount: 1, Price: 40000})
	require.NoError(t, err)

	pending, _ := e.Order(order.ID)
	assert.Equal(t, enum.OrderStatusPending, pending.Status)
	assert.Equal(t, 40000.0, pending.LimitPrice)
	assert.Equal(t, 50000.0, e.Balance())
}

func TestStopOrderStaysPending(t *testing.T) {
	e := newSyncEngine(50000)

	order, err := e.PlaceOrder(PlaceRequest{Symbol: "ETH", Side: enum.SideSell, Type: enum.OrderTypeStop, Amount: 1, Price: 2000})
	require.NoError(t, err)

	pending, _ := e.Order(order.ID)
	assert.Equal(t, enum.OrderStatusPending, pending.Status)
}

func TestCancelBeforeExecutionWins(t *testing.T) {
	sched := &manualScheduler{}
	e := New(ledger.New(50000), nil, Option{Scheduler: sched.schedule})
	e.UpdatePrice("BTC", 44250)

	order, err := e.PlaceOrder(PlaceRequest{Symbol: "BTC", Side: enum.SideBuy, Type: enum.OrderTypeMarket, Amount: 0.1})
	require.NoError(t, err)

	require.True(t, e.CancelOrder(order.ID))
	sched.fire()

	settled, _ := e.Order(order.ID)
	assert.Equal(t, enum.OrderStatusCancelled, settled.Status)
	assert.Equal(t, 50000.0, e.Balance())
}

func TestCancelAfterExecutionLoses(t *testing.T) {
	sched := &manualScheduler{}
	e := New(ledger.New(50000), nil, Option{Scheduler: sched.schedule})
	e.UpdatePrice("BTC", 44250)

	order, err := e.PlaceOrder(PlaceRequest{Symbol: "BTC", Side: enum.SideBuy, Type: enum.OrderTypeMarket, Amount: 0.1})
	require.NoError(t, err)

	sched.fire()
	assert.False(t, e.CancelOrder(order.ID))

	settled, _ := e.Order(order.ID)
	assert.Equal(t, enum.OrderStatusFilled, settled.Status)
}

func TestSellRoundTrip(t *testing.T) {
	e := newSyncEngine(50000)
	e.UpdatePrice("BTC", 44250)

	_, err := e.PlaceOrder(PlaceRequest{Symbol: "BTC", Side: enum.SideBuy, Type: enum.OrderTypeMarket, Amount: 0.1})
	require.NoError(t, err)

	e.UpdatePrice("BTC", 45000)
	_, err = e.PlaceOrder(PlaceRequest{Symbol: "BTC", Side: enum.SideSell, Type: enum.OrderTypeMarket, Amount: 0.1})
	require.NoError(t, err)

	assert.Empty(t, e.Positions())
	assert.InDelta(t, 50000-4425+4500, e.Balance(), 1e-9)
}

func TestExecutionDelayBounds(t *testing.T) {
	e := newSyncEngine(50000)
	for i := 0; i < 200; i++ {
		delay := e.executionDelay()
		assert.GreaterOrEqual(t, delay, DefaultMinExecutionDelay)
		assert.Less(t, delay, DefaultMaxExecutionDelay)
	}
}
