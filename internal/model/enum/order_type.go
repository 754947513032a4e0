package enum

import "github.com/yanun0323/errors"

// OrderType selects the execution style of an order.
type OrderType uint8

const (
	_orderType_beg OrderType = iota
	OrderTypeMarket
	OrderTypeLimit
	OrderTypeStop
	_orderType_end
)

func (t OrderType) IsAvailable() bool {
	return t > _orderType_beg && t < _orderType_end
}

// RequiresPrice reports whether placing an order of this type needs an
// explicit price.
func (t OrderType) RequiresPrice() bool {
	return t == OrderTypeLimit || t == OrderTypeStop
}

func (t OrderType) String() string {
	switch t {
	case OrderTypeMarket:
		return "market"
	case OrderTypeLimit:
		return "limit"
	case OrderTypeStop:
		return "stop"
	default:
		return "unknown"
	}
}

// ParseOrderType converts the wire form into an OrderType.
func ParseOrderType(s string) (OrderType, error) {
	switch s {
	case "market":
		return OrderTypeMarket, nil
	case "limit":
		return OrderTypeLimit, nil
	case "stop":
		return OrderTypeStop, nil
	default:
		return 0, errors.Errorf("unknown order type: %q", s)
	}
}

func (t OrderType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *OrderType) UnmarshalJSON(data []byte) error {
	parsed, err := ParseOrderType(unquote(data))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
