package types

import "time"

// Trade is the immutable record of one match. The execution price is always
// the resting order's price: price improvement accrues to the side that was
// already in the book. TradeID is the monotonic match sequence, used for
// audit ordering.
type Trade struct {
	TradeID      uint64    `json:"trade_id"`
	BuyOrderID   uint64    `json:"buy_order_id"`
	SellOrderID  uint64    `json:"sell_order_id"`
	MakerOrderID uint64    `json:"maker_order_id"` // the resting order
	TakerOrderID uint64    `json:"taker_order_id"` // the incoming order
	Price        Price     `json:"price"`
	Quantity     Quantity  `json:"quantity"`
	Timestamp    time.Time `json:"timestamp"`
}
