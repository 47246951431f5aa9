package book

import "fmt"

// RestingOrder is a limit order that has been accepted onto the book.
// Sequence is assigned at acceptance time and is the sole tie-break
// between two orders resting at the same price.
type RestingOrder struct {
	OrderID   string
	TraderID  string
	Side      Side
	PriceTick int64
	Remaining int64
	Sequence  uint64
}

func (o *RestingOrder) String() string {
	return fmt.Sprintf(
		"RestingOrder{id=%s trader=%s side=%s priceTicks=%d remaining=%d seq=%d}",
		o.OrderID, o.TraderID, o.Side, o.PriceTick, o.Remaining, o.Sequence,
	)
}
