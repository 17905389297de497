package types

// Disposition is the final outcome of a submitted order intent.
type Disposition string

const (
	// DispositionFilled: the incoming order was fully executed.
	DispositionFilled Disposition = "FILLED"
	// DispositionResting: no fills, the order rests in the book.
	DispositionResting Disposition = "RESTING"
	// DispositionPartialResting: some fills, the limit remainder rests.
	DispositionPartialResting Disposition = "PARTIALLY_FILLED_RESTING"
	// DispositionPartialExpired: some fills, the market remainder is
	// discarded (market orders never rest).
	DispositionPartialExpired Disposition = "PARTIALLY_FILLED_EXPIRED"
	// DispositionExpired: a market order found no opposing liquidity.
	DispositionExpired Disposition = "EXPIRED"
	// DispositionRejected: the intent was malformed; no book mutation.
	DispositionRejected Disposition = "REJECTED"
)

// BookLevel is an aggregate view of one price level, for market-data
// consumers.
type BookLevel struct {
	Price      Price    `json:"price"`
	Quantity   Quantity `json:"quantity"`
	OrderCount int      `json:"order_count"`
}

// OrderResult acknowledges a submitted intent: the trades it generated
// (possibly none) and its final disposition.
type OrderResult struct {
	OrderID     uint64
	Trades      []*Trade
	Disposition Disposition
	Remaining   Quantity
	Err         error // rejection reason, nil unless DispositionRejected
}
