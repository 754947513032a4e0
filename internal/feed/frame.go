package feed

import (
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/decimal"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"github.com/redadb/aitrader/internal/model"
)

// tickerFrame is one combined-stream envelope.
type tickerFrame struct {
	Stream string     `json:"stream"`
	Data   tickerData `json:"data"`
}

type tickerData struct {
	EventType     string          `json:"e"`
	EventTime     int64           `json:"E"` // unix milliseconds
	Symbol        string          `json:"s"`
	LastPrice     decimal.Decimal `json:"c"`
	PriceChange   decimal.Decimal `json:"p"`
	PercentChange decimal.Decimal `json:"P"`
	Volume        decimal.Decimal `json:"v"`
}

// dispatch parses one inbound frame and hands it to the subscriber.
// Malformed frames are logged and dropped; they never affect the
// connection state.
func (c *Client) dispatch(payload []byte) {
	var frame tickerFrame
	if err := sonic.Unmarshal(payload, &frame); err != nil {
		c.drop(err)
		return
	}
	if frame.Stream == "" || frame.Data.Symbol == "" {
		c.drop(errors.New("frame missing stream or symbol"))
		return
	}

	tick, err := frame.Data.tick()
	if err != nil {
		c.drop(err)
		return
	}
	if c.opt.OnTick != nil {
		c.opt.OnTick(tick)
	}
}

func (c *Client) drop(cause error) {
	c.opt.Metrics.FrameDropped()
	logs.Warnf("feed: drop malformed frame: %v", cause)
}

func (d tickerData) tick() (model.Tick, error) {
	price, err := toFloat(d.LastPrice)
	if err != nil {
		return model.Tick{}, errors.Wrap(err, "parse last price")
	}
	change, err := toFloat(d.PriceChange)
	if err != nil {
		return model.Tick{}, errors.Wrap(err, "parse price change")
	}
	percent, err := toFloat(d.PercentChange)
	if err != nil {
		return model.Tick{}, errors.Wrap(err, "parse percent change")
	}
	volume, err := toFloat(d.Volume)
	if err != nil {
		return model.Tick{}, errors.Wrap(err, "parse volume")
	}

	return model.Tick{
		Symbol:        strings.TrimSuffix(d.Symbol, "USDT"),
		Price:         price,
		Change24h:     change,
		ChangePercent: percent,
		Volume:        volume,
		EventTime:     time.UnixMilli(d.EventTime).UTC(),
	}, nil
}

func toFloat(d decimal.Decimal) (float64, error) {
	return strconv.ParseFloat(d.String(), 64)
}
