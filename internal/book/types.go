// Package book implements a single-instrument limit order book: two
// price-ordered sides, FIFO queues within a price level, and the
// order-id index needed to cancel a resting order in O(log levels).
package book

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Side is which side of the book an order rests on or crosses into.
type Side int8

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "BUY"
	}
	return "SELL"
}

// Opposite returns the side an order of this side matches against.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// MarshalJSON renders Side using its ToDict-stable name.
func (s Side) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// OrderType distinguishes resting limit orders from sweeping market orders.
type OrderType int8

const (
	Limit OrderType = iota
	Market
)

func (t OrderType) String() string {
	if t == Limit {
		return "LIMIT"
	}
	return "MARKET"
}

func (t OrderType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

var (
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrInvalidPrice     = errors.New("invalid price")
	ErrDuplicateOrderID = errors.New("duplicate order id")
	ErrUnknownOrder     = errors.New("unknown order")
)

// Ticker converts between the public decimal price and the internal
// int64 tick representation the book compares and orders on. The
// design behind this split: float equality at a price level is a
// hazard, decimal.Decimal is the right public unit, but every hot
// path (level lookup, comparator) wants a cheap integer key.
type Ticker struct {
	tickSize decimal.Decimal
}

// NewTicker builds a Ticker for the given minimum tick size. tickSize
// must be strictly positive.
func NewTicker(tickSize decimal.Decimal) (Ticker, error) {
	if tickSize.Sign() <= 0 {
		return Ticker{}, fmt.Errorf("tick size must be positive: %w", ErrInvalidPrice)
	}
	return Ticker{tickSize: tickSize}, nil
}

// ToTicks converts a decimal price to its tick count. Rejects
// non-positive prices and prices that are not an exact multiple of
// the configured tick size.
func (t Ticker) ToTicks(price decimal.Decimal) (int64, error) {
	if price.Sign() <= 0 {
		return 0, ErrInvalidPrice
	}
	quotient := price.Div(t.tickSize)
	if !quotient.Equal(quotient.Truncate(0)) {
		return 0, fmt.Errorf("price %s is not a multiple of tick size %s: %w", price, t.tickSize, ErrInvalidPrice)
	}
	return quotient.IntPart(), nil
}

// FromTicks converts a tick count back to a decimal price. Zero ticks
// renders as decimal.Zero, used by consumers to represent "undefined".
func (t Ticker) FromTicks(ticks int64) decimal.Decimal {
	if ticks == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(ticks).Mul(t.tickSize)
}

// TickSize returns the configured minimum price increment.
func (t Ticker) TickSize() decimal.Decimal {
	return t.tickSize
}
