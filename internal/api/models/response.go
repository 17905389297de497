package models

import "time"

// BaseResponse is the base structure for all API responses
type BaseResponse struct {
	Success   bool      `json:"success"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message,omitempty"`
	Error     *APIError `json:"error,omitempty"`
}

// TradeDTO represents a trade in API responses. Prices are rendered as
// fixed-point decimal strings.
type TradeDTO struct {
	TradeID      uint64    `json:"trade_id"`
	BuyOrderID   uint64    `json:"buy_order_id"`
	SellOrderID  uint64    `json:"sell_order_id"`
	MakerOrderID uint64    `json:"maker_order_id"`
	TakerOrderID uint64    `json:"taker_order_id"`
	Price        string    `json:"price"`
	Quantity     int64     `json:"quantity"`
	Timestamp    time.Time `json:"timestamp"`
}

// SubmitOrderResponse represents the response for order submission
type SubmitOrderResponse struct {
	BaseResponse
	OrderID     uint64     `json:"order_id,omitempty"`
	IntentID    string     `json:"intent_id,omitempty"`
	Disposition string     `json:"disposition,omitempty"`
	Remaining   int64      `json:"remaining"`
	Trades      []TradeDTO `json:"trades,omitempty"`
}

// ModifyOrderResponse represents the response for a cancel-and-replace
type ModifyOrderResponse struct {
	BaseResponse
	OrderID     uint64     `json:"order_id"`               // the cancelled order
	NewOrderID  uint64     `json:"new_order_id,omitempty"` // the replacement
	Disposition string     `json:"disposition,omitempty"`
	Remaining   int64      `json:"remaining"`
	Trades      []TradeDTO `json:"trades,omitempty"`
}

// BatchOrderResult represents a single order result in batch submission
type BatchOrderResult struct {
	Index       int        `json:"index"`
	Success     bool       `json:"success"`
	OrderID     uint64     `json:"order_id,omitempty"`
	IntentID    string     `json:"intent_id,omitempty"`
	Disposition string     `json:"disposition,omitempty"`
	Trades      []TradeDTO `json:"trades,omitempty"`
	Error       *APIError  `json:"error,omitempty"`
}

// BatchOrderSummary provides summary statistics for batch submission
type BatchOrderSummary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// BatchOrderResponse represents the response for batch order submission
type BatchOrderResponse struct {
	BaseResponse
	Results []BatchOrderResult `json:"results"`
	Summary BatchOrderSummary  `json:"summary"`
}

// CancelOrderResponse represents the response for order cancellation
type CancelOrderResponse struct {
	BaseResponse
	OrderID uint64 `json:"order_id,omitempty"`
}

// OrderDTO represents an order in API responses
type OrderDTO struct {
	OrderID           uint64    `json:"order_id"`
	UserID            string    `json:"user_id"`
	Symbol            string    `json:"symbol"`
	OrderType         string    `json:"order_type"`
	Side              string    `json:"side"`
	Price             string    `json:"price"`
	Quantity          int64     `json:"quantity"`
	FilledQuantity    int64     `json:"filled_quantity"`
	RemainingQuantity int64     `json:"remaining_quantity"`
	Status            string    `json:"status,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
}

// GetOrderResponse represents the response for getting a single order
type GetOrderResponse struct {
	BaseResponse
	Order *OrderDTO `json:"order,omitempty"`
}

// GetOrdersResponse represents the response for getting multiple orders
type GetOrdersResponse struct {
	BaseResponse
	Orders []OrderDTO `json:"orders"`
	Count  int        `json:"count"`
}

// PriceLevel represents a price level in the order book
type PriceLevel struct {
	Price      string `json:"price"`
	Quantity   int64  `json:"quantity"`
	OrderCount int    `json:"order_count"`
}

// OrderBookResponse represents the full order book
type OrderBookResponse struct {
	BaseResponse
	Symbol   string       `json:"symbol"`
	Bids     []PriceLevel `json:"bids"`
	Asks     []PriceLevel `json:"asks"`
	Spread   string       `json:"spread,omitempty"`
	MidPrice string       `json:"mid_price,omitempty"`
}

// BestQuote represents the best bid or ask
type BestQuote struct {
	Price    string `json:"price"`
	Quantity int64  `json:"quantity"`
}

// TopOfBookResponse represents the best bid and ask
type TopOfBookResponse struct {
	BaseResponse
	Symbol   string     `json:"symbol"`
	BestBid  *BestQuote `json:"best_bid,omitempty"`
	BestAsk  *BestQuote `json:"best_ask,omitempty"`
	Spread   string     `json:"spread,omitempty"`
	MidPrice string     `json:"mid_price,omitempty"`
}

// DepthResponse reports the aggregate resting quantity at one price level
type DepthResponse struct {
	BaseResponse
	Symbol   string `json:"symbol"`
	Side     string `json:"side"`
	Price    string `json:"price"`
	Quantity int64  `json:"quantity"`
}

// GetTradesResponse represents the response for getting trades
type GetTradesResponse struct {
	BaseResponse
	Trades []TradeDTO `json:"trades"`
	Count  int        `json:"count"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	UptimeSeconds int64     `json:"uptime_seconds"`
	Version       string    `json:"version"`
}
