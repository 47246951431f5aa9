package book

import "container/list"

// PriceLevel is the FIFO of resting orders at one price, plus a
// cached aggregate quantity kept in sync on every mutation. Orders
// live in a container/list so that Remove (used on cancellation) runs
// in O(1) given the element handle, instead of the O(n) slice splice
// a plain slice-backed level would need.
type PriceLevel struct {
	PriceTick int64
	orders    *list.List
	aggregate int64
}

func newPriceLevel(priceTick int64) *PriceLevel {
	return &PriceLevel{
		PriceTick: priceTick,
		orders:    list.New(),
	}
}

// Append adds an order to the back of the queue, preserving arrival
// order, and returns the handle needed to Remove it later.
func (l *PriceLevel) Append(order *RestingOrder) *list.Element {
	l.aggregate += order.Remaining
	return l.orders.PushBack(order)
}

// Front returns the oldest resting order, or nil if the level is empty.
func (l *PriceLevel) Front() *RestingOrder {
	elem := l.orders.Front()
	if elem == nil {
		return nil
	}
	return elem.Value.(*RestingOrder)
}

// PopFront removes and returns the oldest resting order.
func (l *PriceLevel) PopFront() *RestingOrder {
	elem := l.orders.Front()
	if elem == nil {
		return nil
	}
	order := elem.Value.(*RestingOrder)
	l.orders.Remove(elem)
	l.aggregate -= order.Remaining
	return order
}

// Remove deletes the order at the given handle. Reserved for
// cancellations: the matcher only ever consumes from the front, so a
// handle here will only ever NOT be the front element when an order
// resting deeper in the queue is cancelled out of turn.
func (l *PriceLevel) Remove(elem *list.Element) {
	order := elem.Value.(*RestingOrder)
	l.orders.Remove(elem)
	l.aggregate -= order.Remaining
}

// DecrementFront reduces the front order's remaining quantity by qty,
// keeping the cached aggregate in sync, and pops the order off the
// level if it is now fully consumed.
func (l *PriceLevel) DecrementFront(qty int64) (order *RestingOrder, exhausted bool) {
	elem := l.orders.Front()
	if elem == nil {
		return nil, false
	}
	order = elem.Value.(*RestingOrder)
	order.Remaining -= qty
	l.aggregate -= qty
	if order.Remaining == 0 {
		l.orders.Remove(elem)
		exhausted = true
	}
	return order, exhausted
}

// Aggregate returns the cached sum of remaining quantities.
func (l *PriceLevel) Aggregate() int64 {
	return l.aggregate
}

// Empty reports whether the level has no resting orders left.
func (l *PriceLevel) Empty() bool {
	return l.orders.Len() == 0
}

// Orders returns the resting orders from front to back, for snapshotting
// and tests. The returned slice is a fresh copy; mutating it does not
// affect the level.
func (l *PriceLevel) Orders() []*RestingOrder {
	out := make([]*RestingOrder, 0, l.orders.Len())
	for elem := l.orders.Front(); elem != nil; elem = elem.Next() {
		out = append(out, elem.Value.(*RestingOrder))
	}
	return out
}
