// Package feed maintains one logical streaming connection to the ticker
// source, reconnecting a bounded number of times when it drops.
package feed

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/yanun0323/logs"

	"github.com/redadb/aitrader/internal/model"
	"github.com/redadb/aitrader/internal/model/enum"
	"github.com/redadb/aitrader/internal/obs"
)

const (
	DefaultStreamBaseURL     = "wss://stream.binance.com:9443"
	DefaultReconnectAttempts = 5
	DefaultReconnectInterval = 3 * time.Second
)

// conn is the subset of the transport the client drives.
type conn interface {
	ReadMessage() (messageType int, payload []byte, err error)
	WriteMessage(messageType int, payload []byte) error
	Close() error
}

type dialFunc func(ctx context.Context, url string) (conn, error)

// Option configures a Client. Zero values fall back to defaults.
type Option struct {
	// BaseURL is the stream endpoint. Optional; default DefaultStreamBaseURL.
	BaseURL string
	// ReconnectAttempts bounds consecutive reconnects. Optional; default 5.
	ReconnectAttempts int
	// ReconnectInterval is the fixed delay before a reconnect. Optional; default 3s.
	ReconnectInterval time.Duration
	// OnTick receives every well-formed ticker update. Optional.
	OnTick func(model.Tick)
	// OnError receives transport errors. Errors do not change the
	// connection state by themselves. Optional.
	OnError func(error)
	// OnStateChange observes connection state transitions. Optional.
	OnStateChange func(enum.ConnState)
	// Metrics records feed counters. Optional.
	Metrics *obs.Metrics

	// dial is internal and wired by New; tests override it.
	dial dialFunc
}

func (opt *Option) init() {
	if opt.BaseURL == "" {
		opt.BaseURL = DefaultStreamBaseURL
	}
	if opt.ReconnectAttempts <= 0 {
		opt.ReconnectAttempts = DefaultReconnectAttempts
	}
	if opt.ReconnectInterval <= 0 {
		opt.ReconnectInterval = DefaultReconnectInterval
	}
	if opt.dial == nil {
		opt.dial = func(ctx context.Context, url string) (conn, error) {
			c, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
			if err != nil {
				return nil, err
			}
			return c, nil
		}
	}
}

// Client is a reconnecting ticker stream consumer. The symbol set is fixed
// at construction; changing it requires a fresh client.
type Client struct {
	opt Option
	url string

	state atomic.Uint32

	mu             sync.Mutex
	conn           conn
	attempts       int
	reconnectTimer *time.Timer
	generation     uint64
}

// New builds a client subscribed to ticker streams for the given symbols.
func New(symbols []string, option ...Option) *Client {
	var opt Option
	if len(option) != 0 {
		opt = option[0]
	}
	opt.init()
	return &Client{
		opt: opt,
		url: StreamURL(opt.BaseURL, symbols),
	}
}

// StreamURL builds the combined-stream endpoint for a symbol set.
func StreamURL(base string, symbols []string) string {
	streams := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		streams = append(streams, strings.ToLower(symbol)+"usdt@ticker")
	}
	return base + "/stream?streams=" + strings.Join(streams, "/")
}

// State returns the current connection state.
func (c *Client) State() enum.ConnState {
	return enum.ConnState(c.state.Load())
}

// Connect opens the stream. It is idempotent: a client that is already
// connecting or connected ignores the call. A successful handshake resets
// the reconnect counter.
func (c *Client) Connect() {
	c.mu.Lock()
	if c.State() != enum.ConnDisconnected {
		c.mu.Unlock()
		return
	}
	c.stopReconnectTimerLocked()
	c.setState(enum.ConnConnecting)
	generation := c.generation
	c.mu.Unlock()

	transport, err := c.opt.dial(context.Background(), c.url)

	c.mu.Lock()
	if c.generation != generation {
		// Disconnect ran while dialing; drop the fresh connection.
		c.mu.Unlock()
		if transport != nil {
			_ = transport.Close()
		}
		return
	}
	if err != nil {
		c.setState(enum.ConnDisconnected)
		c.scheduleReconnectLocked()
		c.mu.Unlock()
		logs.Errorf("feed: dial failed: %v", err)
		c.reportError(err)
		return
	}
	c.conn = transport
	c.attempts = 0
	c.setState(enum.ConnConnected)
	c.mu.Unlock()

	logs.Info("feed: connected")
	go c.readLoop(transport, generation)
}

// Disconnect cancels any pending reconnect timer, closes the transport and
// resets the attempt counter so a later Connect starts fresh.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.generation++
	c.stopReconnectTimerLocked()
	transport := c.conn
	c.conn = nil
	c.attempts = 0
	c.setState(enum.ConnDisconnected)
	c.mu.Unlock()

	if transport != nil {
		_ = transport.Close()
	}
}

// Send marshals and writes a payload. Valid only while connected;
// otherwise it is a logged no-op. Write errors are reported without
// forcing a disconnect.
func (c *Client) Send(payload any) {
	c.mu.Lock()
	transport := c.conn
	c.mu.Unlock()

	if c.State() != enum.ConnConnected || transport == nil {
		logs.Warn("feed: send skipped, not connected")
		return
	}

	data, err := sonic.Marshal(payload)
	if err != nil {
		logs.Errorf("feed: marshal send payload: %v", err)
		return
	}
	if err := transport.WriteMessage(websocket.TextMessage, data); err != nil {
		logs.Errorf("feed: write failed: %v", err)
		c.reportError(err)
	}
}

func (c *Client) readLoop(transport conn, generation uint64) {
	for {
		_, payload, err := transport.ReadMessage()
		if err != nil {
			c.handleClose(generation, err)
			return
		}
		c.dispatch(payload)
	}
}

// handleClose runs the close transition: back to disconnected, then a
// reconnect after the fixed interval while the budget lasts.
func (c *Client) handleClose(generation uint64, cause error) {
	c.mu.Lock()
	if c.generation != generation {
		// deliberate Disconnect, not a transport close
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.setState(enum.ConnDisconnected)
	c.scheduleReconnectLocked()
	c.mu.Unlock()

	logs.Warnf("feed: connection closed: %v", cause)
}

func (c *Client) scheduleReconnectLocked() {
	if c.attempts >= c.opt.ReconnectAttempts {
		logs.Warnf("feed: reconnect budget exhausted after %d attempts", c.attempts)
		return
	}
	c.attempts++
	c.opt.Metrics.FeedReconnect()
	logs.Infof("feed: reconnecting in %s (attempt %d/%d)", c.opt.ReconnectInterval, c.attempts, c.opt.ReconnectAttempts)
	c.reconnectTimer = time.AfterFunc(c.opt.ReconnectInterval, c.Connect)
}

func (c *Client) stopReconnectTimerLocked() {
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
}

func (c *Client) setState(state enum.ConnState) {
	if c.State() == state {
		return
	}
	c.state.Store(uint32(state))
	c.opt.Metrics.SetFeedState(state)
	if c.opt.OnStateChange != nil {
		c.opt.OnStateChange(state)
	}
}

func (c *Client) reportError(err error) {
	if c.opt.OnError != nil {
		c.opt.OnError(err)
	}
}
