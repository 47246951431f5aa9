// Package sim drives simulated time, owns the pending-order queue and
// the order book, and exposes the deterministic snapshot and log
// query surface described for the core. A Simulator is
// single-threaded and unsynchronized: every operation runs to
// completion before the next one begins, exactly as the teacher's
// net.Server processes one client message at a time off its channel,
// generalized here to a library with no transport underneath it.
package sim

import (
	"fmt"
	"math/rand"

	"matchbook/internal/book"
	"matchbook/internal/matching"

	"github.com/shopspring/decimal"
)

// DefaultTickSize is the minimum price increment used when a
// Simulator is built with NewSimulator. Callers needing a different
// tick size should use NewSimulatorWithTicker.
var DefaultTickSize = decimal.NewFromFloat(0.01)

// Simulator is the core driver: it owns the book, the pending queue,
// both event logs, and the seeded PRNG used to permute each drain.
// Nothing here is synchronized; callers touching one Simulator from
// multiple goroutines must serialize externally, per the contract.
type Simulator struct {
	currentTime int64
	seed        int64
	rng         *rand.Rand

	book    *book.Book
	pending pendingQueue

	orderLog []book.OrderEvent
	tradeLog []book.Trade

	nextEventID uint64
	nextTradeID uint64

	// seenOrderIDs never shrinks: an id that was ever accepted stays
	// "known" for the lifetime of the simulator, so a cancelled (or
	// filled) order's id cannot be resubmitted. This resolves the
	// spec's duplicate-id open question as a hard, permanent rejection.
	seenOrderIDs map[string]struct{}
}

// NewSimulator creates a simulator starting at startTime, seeded with
// seed, pricing the book at DefaultTickSize.
func NewSimulator(startTime int64, seed int64) *Simulator {
	ticker, err := book.NewTicker(DefaultTickSize)
	if err != nil {
		panic(fmt.Sprintf("invalid default tick size: %v", err))
	}
	return newSimulator(startTime, seed, ticker)
}

// NewSimulatorWithTicker creates a simulator with an explicit tick size.
func NewSimulatorWithTicker(startTime int64, seed int64, tickSize decimal.Decimal) (*Simulator, error) {
	ticker, err := book.NewTicker(tickSize)
	if err != nil {
		return nil, err
	}
	return newSimulator(startTime, seed, ticker), nil
}

func newSimulator(startTime, seed int64, ticker book.Ticker) *Simulator {
	return &Simulator{
		currentTime:  startTime,
		seed:         seed,
		rng:          rand.New(rand.NewSource(seed)),
		book:         book.New(ticker),
		seenOrderIDs: make(map[string]struct{}),
	}
}

func (s *Simulator) allocEventID() uint64 {
	s.nextEventID++
	return s.nextEventID
}

func (s *Simulator) allocTradeID() uint64 {
	s.nextTradeID++
	return s.nextTradeID
}

func (s *Simulator) logEvent(kind book.EventKind, orderID, traderID string, side book.Side, quantity, priceTick int64, reason string) book.OrderEvent {
	event := book.OrderEvent{
		EventID:   s.allocEventID(),
		Timestamp: s.currentTime,
		Kind:      kind,
		OrderID:   orderID,
		TraderID:  traderID,
		Side:      side,
		Quantity:  quantity,
		PriceTick: priceTick,
		Reason:    reason,
	}
	s.orderLog = append(s.orderLog, event)
	return event
}

func (s *Simulator) reject(orderID, traderID string, side book.Side, quantity, priceTick int64, err error) error {
	s.logEvent(book.Rejected, orderID, traderID, side, quantity, priceTick, err.Error())
	return err
}

func (s *Simulator) isDuplicate(orderID string) bool {
	_, ok := s.seenOrderIDs[orderID]
	return ok
}

// PlaceLimitOrder validates and queues a limit order. It has no
// effect on the book until the next SubmitPendingOrders call.
func (s *Simulator) PlaceLimitOrder(orderID, traderID string, side book.Side, quantity int64, price decimal.Decimal) error {
	if quantity <= 0 {
		return s.reject(orderID, traderID, side, quantity, 0, book.ErrInvalidQuantity)
	}
	priceTick, err := s.book.Ticker().ToTicks(price)
	if err != nil {
		return s.reject(orderID, traderID, side, quantity, 0, book.ErrInvalidPrice)
	}
	if s.isDuplicate(orderID) {
		return s.reject(orderID, traderID, side, quantity, priceTick, book.ErrDuplicateOrderID)
	}

	s.seenOrderIDs[orderID] = struct{}{}
	s.pending.push(pendingOrder{
		OrderID:   orderID,
		TraderID:  traderID,
		Side:      side,
		Type:      book.Limit,
		PriceTick: priceTick,
		Quantity:  quantity,
	})
	s.logEvent(book.Accepted, orderID, traderID, side, quantity, priceTick, "")
	return nil
}

// PlaceMarketOrder validates and queues a market order. It has no
// effect on the book until the next SubmitPendingOrders call.
func (s *Simulator) PlaceMarketOrder(orderID, traderID string, side book.Side, quantity int64) error {
	if quantity <= 0 {
		return s.reject(orderID, traderID, side, quantity, 0, book.ErrInvalidQuantity)
	}
	if s.isDuplicate(orderID) {
		return s.reject(orderID, traderID, side, quantity, 0, book.ErrDuplicateOrderID)
	}

	s.seenOrderIDs[orderID] = struct{}{}
	s.pending.push(pendingOrder{
		OrderID:  orderID,
		TraderID: traderID,
		Side:     side,
		Type:     book.Market,
		Quantity: quantity,
	})
	s.logEvent(book.Accepted, orderID, traderID, side, quantity, 0, "")
	return nil
}

// CancelOrder removes an order immediately: from the book if it is
// resting, or from the pending queue if it has not yet been drained.
// Returns book.ErrUnknownOrder if the id is neither.
func (s *Simulator) CancelOrder(orderID string) error {
	if resting, ok := s.book.Lookup(orderID); ok {
		traderID, side, priceTick, remaining := resting.TraderID, resting.Side, resting.PriceTick, resting.Remaining
		if err := s.book.Cancel(orderID); err != nil {
			return err
		}
		s.logEvent(book.Cancelled, orderID, traderID, side, remaining, priceTick, "")
		return nil
	}
	if removed, ok := s.pending.removeByID(orderID); ok {
		s.logEvent(book.Cancelled, orderID, removed.TraderID, removed.Side, removed.Quantity, removed.PriceTick, "")
		return nil
	}
	return book.ErrUnknownOrder
}

// SubmitPendingOrders drains the pending queue in a permutation drawn
// from the simulator's seeded PRNG, and feeds each order to the
// matching engine in that order.
func (s *Simulator) SubmitPendingOrders() {
	n := s.pending.len()
	if n == 0 {
		return
	}
	permutation := s.rng.Perm(n)
	drained := s.pending.drain(permutation)

	for _, order := range drained {
		s.process(order)
	}
}

func (s *Simulator) process(order pendingOrder) {
	incoming := &matching.Incoming{
		OrderID:   order.OrderID,
		TraderID:  order.TraderID,
		Side:      order.Side,
		Type:      order.Type,
		PriceTick: order.PriceTick,
		Quantity:  order.Quantity,
	}

	trades := matching.Match(s.book, incoming, s.currentTime, s.allocTradeID)
	// Match runs the whole sweep before returning, so incoming.Quantity
	// is already its final post-sweep value here; emitFillEvents needs
	// the taker's remainder as of each trade, not the end state, so
	// that gets tracked separately as the loop replays the sweep.
	takerRemaining := order.Quantity
	for i := range trades {
		trade := trades[i]
		s.tradeLog = append(s.tradeLog, trade)
		takerRemaining -= trade.Quantity
		s.emitFillEvents(order, trade, takerRemaining)
	}

	switch order.Type {
	case book.Limit:
		if incoming.Quantity > 0 {
			s.book.InsertResting(order.OrderID, order.TraderID, order.Side, order.PriceTick, incoming.Quantity)
			s.logEvent(book.Rested, order.OrderID, order.TraderID, order.Side, incoming.Quantity, order.PriceTick, "")
		}
	case book.Market:
		if incoming.Quantity > 0 {
			s.logEvent(book.Cancelled, order.OrderID, order.TraderID, order.Side, incoming.Quantity, 0, "insufficient liquidity")
		}
	}
}

// emitFillEvents logs the PARTIALLY_FILLED/FILLED transition for both
// sides of one trade. The maker's transition is decided from whether
// it is still resting after the fill; the taker's transition is
// decided from takerRemaining, its live quantity after this trade (and
// every earlier trade in the same sweep) has been applied.
func (s *Simulator) emitFillEvents(taker pendingOrder, trade book.Trade, takerRemaining int64) {
	if s.book.Resting(trade.MakerOrderID) {
		s.logEvent(book.PartiallyFilled, trade.MakerOrderID, trade.MakerTraderID, taker.Side.Opposite(), trade.Quantity, trade.PriceTick, "")
	} else {
		s.logEvent(book.Filled, trade.MakerOrderID, trade.MakerTraderID, taker.Side.Opposite(), trade.Quantity, trade.PriceTick, "")
	}

	if takerRemaining > 0 {
		s.logEvent(book.PartiallyFilled, taker.OrderID, taker.TraderID, taker.Side, trade.Quantity, trade.PriceTick, "")
	} else {
		s.logEvent(book.Filled, taker.OrderID, taker.TraderID, taker.Side, trade.Quantity, trade.PriceTick, "")
	}
}

// AdvanceTime moves the simulated clock forward by a non-negative delta.
func (s *Simulator) AdvanceTime(delta int64) error {
	if delta < 0 {
		return ErrInvalidTimeDelta
	}
	s.currentTime += delta
	return nil
}

// CurrentTime returns the simulator's current simulated time.
func (s *Simulator) CurrentTime() int64 {
	return s.currentTime
}

// CurrentSnapshot returns a point-in-time view of top-of-book state.
func (s *Simulator) CurrentSnapshot() book.Snapshot {
	return s.book.CurrentSnapshot(s.currentTime)
}

// CurrentLevel1Data returns the aggregate quantities at the top of book.
func (s *Simulator) CurrentLevel1Data() book.Level1 {
	return s.book.CurrentLevel1(s.currentTime)
}

// CurrentLevel2Data returns the depth ladder on each side, up to depth
// levels. A depth of 0 or less means unbounded.
func (s *Simulator) CurrentLevel2Data(depth int) book.Level2 {
	return s.book.CurrentLevel2(s.currentTime, depth)
}

// OrderLogs returns a copy of the order-event log, in processing order.
func (s *Simulator) OrderLogs() []book.OrderEvent {
	out := make([]book.OrderEvent, len(s.orderLog))
	copy(out, s.orderLog)
	return out
}

// TradeLogs returns a copy of the trade log, in processing order.
func (s *Simulator) TradeLogs() []book.Trade {
	out := make([]book.Trade, len(s.tradeLog))
	copy(out, s.tradeLog)
	return out
}

// Ticker exposes the price<->tick converter backing this simulator's book.
func (s *Simulator) Ticker() book.Ticker {
	return s.book.Ticker()
}

// DumpBook renders the current book for interactive debugging,
// mirroring the teacher's LogBook() debug accessor.
func (s *Simulator) DumpBook() string {
	l2 := s.CurrentLevel2Data(0)
	out := "bids:\n"
	for _, lvl := range l2.Bids {
		out += fmt.Sprintf("  %s x %d\n", lvl.Price, lvl.Quantity)
	}
	out += "asks:\n"
	for _, lvl := range l2.Asks {
		out += fmt.Sprintf("  %s x %d\n", lvl.Price, lvl.Quantity)
	}
	return out
}

// DumpTrades renders the trade log for interactive debugging,
// alongside DumpBook, converting each trade's tick price back to a
// decimal through the book's ticker.
func (s *Simulator) DumpTrades() string {
	ticker := s.Ticker()
	out := ""
	for _, trade := range s.tradeLog {
		out += fmt.Sprintf("  %s @ %s x %d\n", trade.TakerOrderID, trade.Price(ticker), trade.Quantity)
	}
	return out
}
