package book

import (
	"container/list"

	"github.com/tidwall/btree"
)

// levels is the ordered map from price-in-ticks to PriceLevel for one
// side of the book. Grounded on the teacher's engine.OrderBook, which
// keyed a github.com/tidwall/btree.BTreeG[*PriceLevel] by float64 and
// flipped the comparator per side; this book does the same over
// int64 ticks, which makes equality and ordering exact.
type levels = btree.BTreeG[*PriceLevel]

type orderHandle struct {
	side      Side
	priceTick int64
	elem      *list.Element
}

// Book is a two-sided, price-time-priority limit order book for one
// instrument. It owns every resting order; the order index below
// holds only handles into it, valid exactly as long as the order is
// resting.
type Book struct {
	ticker Ticker

	bids *levels // best = highest price
	asks *levels // best = lowest price

	index map[string]*orderHandle

	nextSequence uint64
}

// New creates an empty book that prices orders at the given tick size.
func New(ticker Ticker) *Book {
	bids := btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.PriceTick > b.PriceTick // descending: highest bid first
	})
	asks := btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.PriceTick < b.PriceTick // ascending: lowest ask first
	})
	return &Book{
		ticker: ticker,
		bids:   bids,
		asks:   asks,
		index:  make(map[string]*orderHandle),
	}
}

func (b *Book) sideTree(side Side) *levels {
	if side == Buy {
		return b.bids
	}
	return b.asks
}

// Best returns the best (price, level) for a side, or ok=false if the
// side is empty.
func (b *Book) Best(side Side) (*PriceLevel, bool) {
	return b.sideTree(side).Min()
}

// InsertResting places a new limit order on its side, creating the
// price level if needed, and assigns it a sequence number — the sole
// tiebreaker within a level. Returns the resulting RestingOrder.
func (b *Book) InsertResting(orderID, traderID string, side Side, priceTick, quantity int64) *RestingOrder {
	b.nextSequence++
	order := &RestingOrder{
		OrderID:   orderID,
		TraderID:  traderID,
		Side:      side,
		PriceTick: priceTick,
		Remaining: quantity,
		Sequence:  b.nextSequence,
	}

	tree := b.sideTree(side)
	level, ok := tree.Get(&PriceLevel{PriceTick: priceTick})
	if !ok {
		level = newPriceLevel(priceTick)
		tree.Set(level)
	}
	elem := level.Append(order)

	b.index[orderID] = &orderHandle{side: side, priceTick: priceTick, elem: elem}
	return order
}

// Cancel removes a resting order from its level, deleting the level
// if it becomes empty, and drops the index entry. Returns
// ErrUnknownOrder if the id is not currently resting.
func (b *Book) Cancel(orderID string) error {
	handle, ok := b.index[orderID]
	if !ok {
		return ErrUnknownOrder
	}

	tree := b.sideTree(handle.side)
	level, ok := tree.Get(&PriceLevel{PriceTick: handle.priceTick})
	if !ok {
		// Invariant violation guard: the index pointed at a level that
		// no longer exists. Treat as unknown rather than panic.
		delete(b.index, orderID)
		return ErrUnknownOrder
	}

	level.Remove(handle.elem)
	if level.Empty() {
		tree.Delete(level)
	}
	delete(b.index, orderID)
	return nil
}

// ConsumeFront fills up to maxQty off the front of the best level on
// the given side. Returns the maker order (post-decrement), the
// quantity actually filled, and whether the level is now empty (in
// which case it has already been removed from the side). ok is false
// if the side has no resting liquidity.
func (b *Book) ConsumeFront(side Side, maxQty int64) (maker *RestingOrder, filled int64, levelExhausted bool, ok bool) {
	tree := b.sideTree(side)
	level, found := tree.Min()
	if !found {
		return nil, 0, false, false
	}

	front := level.Front()
	fillQty := front.Remaining
	if maxQty < fillQty {
		fillQty = maxQty
	}

	maker, exhausted := level.DecrementFront(fillQty)
	if exhausted {
		delete(b.index, maker.OrderID)
	}
	if level.Empty() {
		tree.Delete(level)
		levelExhausted = true
	}
	return maker, fillQty, levelExhausted, true
}

// Resting reports whether an order id is currently resting on the book.
func (b *Book) Resting(orderID string) bool {
	_, ok := b.index[orderID]
	return ok
}

// Lookup returns the resting order for an id, for callers (the
// simulator's cancel path) that need its trader, side, price, and
// remaining quantity without walking every level. The returned
// pointer is only valid while the order is still resting; callers
// that also cancel the order must read it first.
func (b *Book) Lookup(orderID string) (*RestingOrder, bool) {
	handle, found := b.index[orderID]
	if !found {
		return nil, false
	}
	return handle.elem.Value.(*RestingOrder), true
}

// Depth returns the number of distinct price levels on each side.
func (b *Book) Depth() (bidLevels, askLevels int) {
	return b.bids.Len(), b.asks.Len()
}

// Ticker returns the price <-> tick converter this book was built with.
func (b *Book) Ticker() Ticker {
	return b.ticker
}
