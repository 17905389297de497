package matching

import "github.com/matchcore/orderbook/internal/types"

// Re-export the core data model so engine callers can stay on one import.
type (
	OrderType = types.OrderType
	SideType  = types.SideType
	Order     = types.Order
	Trade     = types.Trade
	Price     = types.Price
	Quantity  = types.Quantity
)

// Re-export constants
const (
	NoActionOrder = types.NoActionOrder
	MarketOrder   = types.MarketOrder
	LimitOrder    = types.LimitOrder

	NoActionSide = types.NoActionSide
	Buy          = types.Buy
	Sell         = types.Sell
)

// Re-export constructor
var NewOrder = types.NewOrder
