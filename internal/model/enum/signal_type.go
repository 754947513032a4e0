package enum

// SignalType is the direction of an advisory trading signal.
type SignalType uint8

const (
	SignalUnknown SignalType = iota
	SignalBuy
	SignalSell
)

func (t SignalType) String() string {
	switch t {
	case SignalBuy:
		return "buy"
	case SignalSell:
		return "sell"
	default:
		return "unknown"
	}
}

func (t SignalType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}
