package types

import (
	"fmt"
	"time"
)

// OrderType identifies how an order executes
type OrderType int

const (
	NoActionOrder OrderType = iota
	MarketOrder
	LimitOrder
)

// SideType identifies the direction of an order
type SideType int

const (
	NoActionSide SideType = iota
	Buy
	Sell
)

// OrderStatus tracks the lifecycle of an order
type OrderStatus string

const (
	StatusOpen          OrderStatus = "OPEN"
	StatusPartialFilled OrderStatus = "PARTIALLY_FILLED"
	StatusFilled        OrderStatus = "FILLED"
	StatusCancelled     OrderStatus = "CANCELLED"
)

// Order is the mutable state of one incoming or resting order.
// IDs are process-unique and never reused. Sequence is the arrival sequence
// number assigned at acceptance; it is the time-priority tie-break and is
// never altered afterward (a modify produces a brand-new order with a fresh
// sequence).
type Order struct {
	ID        uint64      `json:"order_id"`
	UserID    string      `json:"user_id"`
	Symbol    string      `json:"symbol"`
	OrderType OrderType   `json:"order_type"`
	Side      SideType    `json:"side"`
	Price     Price       `json:"price"` // limit price in ticks; zero for market orders
	Quantity  Quantity    `json:"quantity"`
	Remaining Quantity    `json:"remaining"`
	Sequence  uint64      `json:"sequence"`
	Status    OrderStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewOrder creates an order with its remaining quantity initialized to the
// original quantity.
func NewOrder(id uint64, userID string, orderType OrderType, side SideType, price Price, quantity Quantity) *Order {
	return &Order{
		ID:        id,
		UserID:    userID,
		OrderType: orderType,
		Side:      side,
		Price:     price,
		Quantity:  quantity,
		Remaining: quantity,
		Status:    StatusOpen,
		Timestamp: time.Now().UTC(),
	}
}

// Validate rejects malformed intents before they touch any book state.
func (o *Order) Validate() error {
	if o.Side != Buy && o.Side != Sell {
		return fmt.Errorf("order %d has no side: %w", o.ID, ErrInvalidIntent)
	}
	if o.Quantity <= 0 {
		return fmt.Errorf("order %d has non-positive quantity %d: %w", o.ID, o.Quantity, ErrInvalidIntent)
	}
	switch o.OrderType {
	case LimitOrder:
		if o.Price <= 0 {
			return fmt.Errorf("limit order %d requires a positive price: %w", o.ID, ErrInvalidIntent)
		}
	case MarketOrder:
		// Market orders carry no limit price.
	default:
		return fmt.Errorf("order %d has unknown type: %w", o.ID, ErrInvalidIntent)
	}
	return nil
}

// Filled returns the executed quantity so far.
func (o *Order) Filled() Quantity {
	return o.Quantity - o.Remaining
}
