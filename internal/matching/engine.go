// Package matching implements the crossing algorithm: given an
// incoming limit or market order and the opposite side of the book,
// consume resting liquidity under price-time priority and report what
// was filled. It never validates orders and never mutates anything
// but the book and the incoming order's Quantity passed to it —
// rejection and event-log bookkeeping
// belong to the caller (internal/sim), per the boundary the teacher's
// own engine.OrderBook.Match drew between "sweep the book" and
// "everything around the sweep".
package matching

import "matchbook/internal/book"

// Incoming is the order being matched against the book. Quantity is
// mutated in place as fills are applied; callers read the remainder
// after Match returns.
type Incoming struct {
	OrderID   string
	TraderID  string
	Side      book.Side
	Type      book.OrderType
	PriceTick int64 // ignored for Market orders
	Quantity  int64
}

// crosses reports whether the incoming order's price crosses the
// given resting price on the opposite side. Market orders always cross.
func (in *Incoming) crosses(restingPriceTick int64) bool {
	if in.Type == book.Market {
		return true
	}
	if in.Side == book.Buy {
		return in.PriceTick >= restingPriceTick
	}
	return in.PriceTick <= restingPriceTick
}

// Match sweeps the opposite side of b, consuming resting liquidity
// while the incoming order has quantity left, the opposite side has a
// best level, and (the incoming order is a market order or its price
// crosses the opposite best). Each fill emits a book.Trade at the
// maker's resting price, for the quantity actually filled. allocTradeID
// assigns the monotonic trade id; timestamp is stamped on every trade.
func Match(b *book.Book, in *Incoming, timestamp int64, allocTradeID func() uint64) []book.Trade {
	opposite := in.Side.Opposite()
	var trades []book.Trade

	for in.Quantity > 0 {
		level, ok := b.Best(opposite)
		if !ok {
			break
		}
		if !in.crosses(level.PriceTick) {
			break
		}

		maker, filled, _, ok := b.ConsumeFront(opposite, in.Quantity)
		if !ok {
			break
		}
		in.Quantity -= filled

		trade := book.Trade{
			TradeID:       allocTradeID(),
			Timestamp:     timestamp,
			PriceTick:     maker.PriceTick,
			Quantity:      filled,
			TakerOrderID:  in.OrderID,
			MakerOrderID:  maker.OrderID,
			TakerTraderID: in.TraderID,
			MakerTraderID: maker.TraderID,
			TakerSide:     in.Side,
		}
		trades = append(trades, trade)
	}

	return trades
}
