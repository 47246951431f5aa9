package book

import "github.com/shopspring/decimal"

// EventKind is the lifecycle stage an OrderEvent records.
type EventKind int8

const (
	Accepted EventKind = iota
	Rejected
	PartiallyFilled
	Filled
	Cancelled
	Rested
)

func (k EventKind) String() string {
	switch k {
	case Accepted:
		return "ACCEPTED"
	case Rejected:
		return "REJECTED"
	case PartiallyFilled:
		return "PARTIALLY_FILLED"
	case Filled:
		return "FILLED"
	case Cancelled:
		return "CANCELLED"
	case Rested:
		return "RESTED"
	default:
		return "UNKNOWN"
	}
}

func (k EventKind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

// OrderEvent is one entry in the append-only order-event log. What
// Quantity holds depends on Kind: the submitted quantity for ACCEPTED
// and REJECTED, the fill size for (PARTIALLY_)FILLED, and the
// residual for RESTED and CANCELLED. Reason is set for REJECTED and
// for the CANCELLED residual of a market order. The simulator does
// not populate FilledQuantity or RemainingQuantity; they stay zero.
type OrderEvent struct {
	EventID           uint64
	Timestamp         int64
	Kind              EventKind
	OrderID           string
	TraderID          string
	Side              Side
	Quantity          int64
	PriceTick         int64
	FilledQuantity    int64
	RemainingQuantity int64
	Reason            string
}

// ToDict renders the event with the stable field names spec'd for the
// public API.
func (e OrderEvent) ToDict(ticker Ticker) map[string]any {
	out := map[string]any{
		"event_id":   e.EventID,
		"timestamp":  e.Timestamp,
		"event_kind": e.Kind.String(),
		"order_id":   e.OrderID,
		"trader_id":  e.TraderID,
		"side":       e.Side.String(),
		"quantity":   e.Quantity,
	}
	if e.PriceTick != 0 {
		out["price"] = ticker.FromTicks(e.PriceTick)
	} else {
		out["price"] = decimal.Zero
	}
	if e.Reason != "" {
		out["reason"] = e.Reason
	}
	return out
}
