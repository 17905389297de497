package models

import (
	"strings"
)

// SubmitOrderRequest represents a single order submission. Prices are
// decimal strings ("101.25") converted to ticks at the boundary; quantities
// are whole instrument units.
type SubmitOrderRequest struct {
	UserID    string `json:"user_id"`
	OrderType string `json:"order_type"` // "market" | "limit"
	Side      string `json:"side"`       // "buy" | "sell"
	Price     string `json:"price,omitempty"`
	Quantity  int64  `json:"quantity"`
	IntentID  string `json:"intent_id,omitempty"` // client idempotency token, generated when absent
}

// Validate validates the order request
func (r *SubmitOrderRequest) Validate() *HTTPError {
	if strings.TrimSpace(r.UserID) == "" {
		return ErrBadRequest("user_id cannot be empty", map[string]interface{}{"field": "user_id"})
	}

	orderType := strings.ToLower(strings.TrimSpace(r.OrderType))
	if orderType != "market" && orderType != "limit" {
		return ErrInvalidOrderTypeError(r.OrderType)
	}

	side := strings.ToLower(strings.TrimSpace(r.Side))
	if side != "buy" && side != "sell" {
		return ErrInvalidSideError(r.Side)
	}

	if r.Quantity <= 0 {
		return ErrInvalidQuantityError(r.Quantity)
	}

	// Limit orders require a price; the tick conversion itself happens in
	// the handler where the instrument scale is known.
	if orderType == "limit" && strings.TrimSpace(r.Price) == "" {
		return ErrMissingPriceError()
	}

	return nil
}

// ModifyOrderRequest represents a price/quantity modification of a resting
// order. A modify is a cancel-and-replace: the replacement gets a new order
// id and loses time priority.
type ModifyOrderRequest struct {
	Price    string `json:"price,omitempty"` // empty keeps the current price
	Quantity int64  `json:"quantity"`
}

// Validate validates the modify request
func (r *ModifyOrderRequest) Validate() *HTTPError {
	if r.Quantity <= 0 {
		return ErrInvalidQuantityError(r.Quantity)
	}
	return nil
}

// BatchOrderRequest represents a batch order submission
type BatchOrderRequest struct {
	Orders []SubmitOrderRequest `json:"orders"`
}

// Validate validates the batch request
func (r *BatchOrderRequest) Validate() *HTTPError {
	if len(r.Orders) == 0 {
		return ErrBadRequest("orders array cannot be empty", map[string]interface{}{"field": "orders"})
	}

	if len(r.Orders) > 1000 {
		return ErrBadRequest("batch size cannot exceed 1000 orders",
			map[string]interface{}{"field": "orders", "max_size": 1000, "provided_size": len(r.Orders)})
	}

	return nil
}
