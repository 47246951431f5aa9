package sim

import "matchbook/internal/book"

// pendingOrder is a limit or market order that has been accepted into
// the pending queue but not yet drained into the matching engine.
type pendingOrder struct {
	OrderID   string
	TraderID  string
	Side      book.Side
	Type      book.OrderType
	PriceTick int64 // zero for Market
	Quantity  int64
}

// pendingQueue holds orders submitted between two SubmitPendingOrders
// calls. It owns no randomness of its own — the simulator supplies
// the permutation at drain time, per the design note that a single
// seeded PRNG must live on the simulator, not be recreated per call.
type pendingQueue struct {
	orders []pendingOrder
}

func (q *pendingQueue) push(o pendingOrder) {
	q.orders = append(q.orders, o)
}

// removeByID deletes an order from the pending queue by id, used by
// cancel_order for an order that has not yet been drained. Returns
// the removed order and true, or a zero value and false if no order
// with that id was queued.
func (q *pendingQueue) removeByID(orderID string) (pendingOrder, bool) {
	for i, o := range q.orders {
		if o.OrderID == orderID {
			q.orders = append(q.orders[:i], q.orders[i+1:]...)
			return o, true
		}
	}
	return pendingOrder{}, false
}

// drain returns every queued order in the given permutation and
// empties the queue.
func (q *pendingQueue) drain(permutation []int) []pendingOrder {
	drained := make([]pendingOrder, len(q.orders))
	for i, idx := range permutation {
		drained[i] = q.orders[idx]
	}
	q.orders = nil
	return drained
}

func (q *pendingQueue) len() int {
	return len(q.orders)
}
