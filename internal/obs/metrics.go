// Package obs collects runtime metrics for the trading core.
package obs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/redadb/aitrader/internal/model/enum"
)

// Metrics holds the Prometheus collectors. A nil *Metrics is valid and
// drops every observation, so tests can pass nil.
type Metrics struct {
	ordersPlaced    prometheus.Counter
	ordersFilled    prometheus.Counter
	ordersRejected  prometheus.Counter
	ordersCancelled prometheus.Counter
	balance         prometheus.Gauge

	feedState      prometheus.Gauge
	feedReconnects prometheus.Counter
	framesDropped  prometheus.Counter

	requestDuration *prometheus.HistogramVec
}

// NewMetrics registers the collectors on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ordersPlaced: factory.NewCounter(prometheus.CounterOpts{
			Name: "aitrader_orders_placed_total",
			Help: "Orders accepted into the ledger.",
		}),
		ordersFilled: factory.NewCounter(prometheus.CounterOpts{
			Name: "aitrader_orders_filled_total",
			Help: "Orders that reached the filled state.",
		}),
		ordersRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "aitrader_orders_rejected_total",
			Help: "Orders that reached the rejected state.",
		}),
		ordersCancelled: factory.NewCounter(prometheus.CounterOpts{
			Name: "aitrader_orders_cancelled_total",
			Help: "Orders cancelled while pending.",
		}),
		balance: factory.NewGauge(prometheus.GaugeOpts{
			Name: "aitrader_balance",
			Help: "Current simulated cash balance.",
		}),
		feedState: factory.NewGauge(prometheus.GaugeOpts{
			Name: "aitrader_feed_state",
			Help: "Feed connection state (0 disconnected, 1 connecting, 2 connected).",
		}),
		feedReconnects: factory.NewCounter(prometheus.CounterOpts{
			Name: "aitrader_feed_reconnects_total",
			Help: "Reconnect attempts scheduled by the feed client.",
		}),
		framesDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "aitrader_feed_frames_dropped_total",
			Help: "Malformed feed frames dropped.",
		}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aitrader_http_request_duration_seconds",
			Help:    "API request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

func (m *Metrics) OrderPlaced() {
	if m == nil {
		return
	}
	m.ordersPlaced.Inc()
}

func (m *Metrics) OrderFilled() {
	if m == nil {
		return
	}
	m.ordersFilled.Inc()
}

func (m *Metrics) OrderRejected() {
	if m == nil {
		return
	}
	m.ordersRejected.Inc()
}

func (m *Metrics) OrderCancelled() {
	if m == nil {
		return
	}
	m.ordersCancelled.Inc()
}

func (m *Metrics) SetBalance(balance float64) {
	if m == nil {
		return
	}
	m.balance.Set(balance)
}

func (m *Metrics) SetFeedState(state enum.ConnState) {
	if m == nil {
		return
	}
	m.feedState.Set(float64(state))
}

func (m *Metrics) FeedReconnect() {
	if m == nil {
		return
	}
	m.feedReconnects.Inc()
}

func (m *Metrics) FrameDropped() {
	if m == nil {
		return
	}
	m.framesDropped.Inc()
}

func (m *Metrics) ObserveRequest(route string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
