package book

import "github.com/shopspring/decimal"

// Snapshot is a point-in-time view of top-of-book state.
type Snapshot struct {
	Timestamp int64
	BestBid   decimal.Decimal
	BestAsk   decimal.Decimal
	MidPrice  decimal.Decimal
	BidDepth  int
	AskDepth  int
}

// ToDict renders the snapshot with the stable field names spec'd for
// the public API.
func (s Snapshot) ToDict() map[string]any {
	return map[string]any{
		"timestamp": s.Timestamp,
		"best_bid":  s.BestBid,
		"best_ask":  s.BestAsk,
		"mid_price": s.MidPrice,
		"bid_depth": s.BidDepth,
		"ask_depth": s.AskDepth,
	}
}

// Level1 is aggregate quantity at the top of each side.
type Level1 struct {
	Timestamp       int64
	BestBidPrice    decimal.Decimal
	BestBidQuantity int64
	BestAskPrice    decimal.Decimal
	BestAskQuantity int64
}

func (l Level1) ToDict() map[string]any {
	return map[string]any{
		"timestamp":         l.Timestamp,
		"best_bid_price":    l.BestBidPrice,
		"best_bid_quantity": l.BestBidQuantity,
		"best_ask_price":    l.BestAskPrice,
		"best_ask_quantity": l.BestAskQuantity,
	}
}

// LevelEntry is one rung of a depth ladder: a price and the aggregate
// quantity resting at it.
type LevelEntry struct {
	Price    decimal.Decimal
	Quantity int64
}

// Level2 is the full depth ladder on each side, best first, up to a
// configured depth.
type Level2 struct {
	Timestamp int64
	Bids      []LevelEntry
	Asks      []LevelEntry
}

func (l Level2) ToDict() map[string]any {
	return map[string]any{
		"timestamp": l.Timestamp,
		"bid_ladder": l.Bids,
		"ask_ladder": l.Asks,
	}
}

// MidPriceTicks computes the midpoint in exact integer-tick
// arithmetic, rounding the odd remainder half up, per the rounding
// policy this spec fixes for integer-tick prices. Returns 0 (meaning
// "undefined") if either side is empty.
func (b *Book) MidPriceTicks() int64 {
	bid, bidOk := b.Best(Buy)
	ask, askOk := b.Best(Sell)
	if !bidOk || !askOk {
		return 0
	}
	sum := bid.PriceTick + ask.PriceTick
	return (sum + 1) / 2
}

// CurrentSnapshot builds a Snapshot of the book's current top-of-book state.
func (b *Book) CurrentSnapshot(timestamp int64) Snapshot {
	bid, bidOk := b.Best(Buy)
	ask, askOk := b.Best(Sell)
	bidDepth, askDepth := b.Depth()

	snap := Snapshot{
		Timestamp: timestamp,
		BidDepth:  bidDepth,
		AskDepth:  askDepth,
	}
	if bidOk {
		snap.BestBid = b.ticker.FromTicks(bid.PriceTick)
	}
	if askOk {
		snap.BestAsk = b.ticker.FromTicks(ask.PriceTick)
	}
	if bidOk && askOk {
		snap.MidPrice = b.ticker.FromTicks(b.MidPriceTicks())
	}
	return snap
}

// CurrentLevel1 builds a Level1 view of the book's current top-of-book state.
func (b *Book) CurrentLevel1(timestamp int64) Level1 {
	l1 := Level1{Timestamp: timestamp}
	if bid, ok := b.Best(Buy); ok {
		l1.BestBidPrice = b.ticker.FromTicks(bid.PriceTick)
		l1.BestBidQuantity = bid.Aggregate()
	}
	if ask, ok := b.Best(Sell); ok {
		l1.BestAskPrice = b.ticker.FromTicks(ask.PriceTick)
		l1.BestAskQuantity = ask.Aggregate()
	}
	return l1
}

// CurrentLevel2 builds a depth ladder up to depth levels per side. A
// depth of 0 or less means unbounded.
func (b *Book) CurrentLevel2(timestamp int64, depth int) Level2 {
	l2 := Level2{Timestamp: timestamp}
	l2.Bids = b.ladder(b.bids, depth)
	l2.Asks = b.ladder(b.asks, depth)
	return l2
}

func (b *Book) ladder(tree *levels, depth int) []LevelEntry {
	var out []LevelEntry
	tree.Scan(func(level *PriceLevel) bool {
		if depth > 0 && len(out) >= depth {
			return false
		}
		out = append(out, LevelEntry{
			Price:    b.ticker.FromTicks(level.PriceTick),
			Quantity: level.Aggregate(),
		})
		return true
	})
	return out
}
