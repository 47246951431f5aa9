package book

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Trade records one matched execution. Price is always the maker's
// resting price, never the taker's; quantity is always the fill size.
type Trade struct {
	TradeID       uint64
	Timestamp     int64
	PriceTick     int64
	Quantity      int64
	TakerOrderID  string
	MakerOrderID  string
	TakerTraderID string
	MakerTraderID string
	TakerSide     Side
}

func (t Trade) String() string {
	return fmt.Sprintf(
		"Trade{id=%d ts=%d priceTicks=%d qty=%d taker=%s maker=%s side=%s}",
		t.TradeID, t.Timestamp, t.PriceTick, t.Quantity, t.TakerOrderID, t.MakerOrderID, t.TakerSide,
	)
}

// ToDict renders the trade with the stable field names spec'd for the
// public API. Price requires the book's Ticker to convert back to decimal.
func (t Trade) ToDict(ticker Ticker) map[string]any {
	return map[string]any{
		"trade_id":        t.TradeID,
		"timestamp":       t.Timestamp,
		"price":           ticker.FromTicks(t.PriceTick),
		"quantity":        t.Quantity,
		"taker_order_id":  t.TakerOrderID,
		"maker_order_id":  t.MakerOrderID,
		"taker_trader_id": t.TakerTraderID,
		"maker_trader_id": t.MakerTraderID,
		"side":            t.TakerSide.String(),
	}
}

// Price converts the trade's tick price to a decimal, using the given
// ticker, for display purposes.
func (t Trade) Price(ticker Ticker) decimal.Decimal {
	return ticker.FromTicks(t.PriceTick)
}
