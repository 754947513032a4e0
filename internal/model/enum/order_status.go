package enum

import "github.com/yanun0323/errors"

// OrderStatus tracks the lifecycle of an order.
//
// Pending is the only non-terminal status. Filled, Rejected and Cancelled
// are absorbing; the ledger refuses transitions out of them.
type OrderStatus uint8

const (
	OrderStatusUnknown OrderStatus = iota
	OrderStatusPending
	OrderStatusFilled
	OrderStatusRejected
	OrderStatusCancelled
)

// IsTerminal reports whether the status permits no further transitions.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusFilled, OrderStatusRejected, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusPending:
		return "pending"
	case OrderStatusFilled:
		return "filled"
	case OrderStatusRejected:
		return "rejected"
	case OrderStatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ParseOrderStatus converts the wire form into an OrderStatus.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch s {
	case "pending":
		return OrderStatusPending, nil
	case "filled":
		return OrderStatusFilled, nil
	case "rejected":
		return OrderStatusRejected, nil
	case "cancelled":
		return OrderStatusCancelled, nil
	default:
		return 0, errors.Errorf("unknown order status: %q", s)
	}
}

func (s OrderStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

func (s *OrderStatus) UnmarshalJSON(data []byte) error {
	parsed, err := ParseOrderStatus(unquote(data))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
