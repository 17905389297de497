package matching

import (
	"fmt"
	"sync"
	"time"

	"github.com/matchcore/orderbook/internal/storage"
	"github.com/matchcore/orderbook/internal/types"
)

// Engine drives one instrument's order book. The matching core itself is
// strictly sequential: every intent runs to completion before the next one
// is accepted. Concurrent callers (the HTTP layer) are serialized through a
// single exclusive lock around the whole book, never anything finer, so the
// ordering invariants hold exactly as they would in a single-threaded loop.
//
// Order ids and arrival sequence numbers come from injected monotonic
// counters that never repeat or go backward for the lifetime of the book.
type Engine struct {
	mu   sync.Mutex
	book *OrderBook

	nextID   func() uint64
	seq      uint64 // arrival sequence, assigned at acceptance
	matchSeq uint64 // trade sequence, assigned per fill
	now      func() time.Time

	orderStore storage.OrderStore
	tradeStore storage.TradeStore
	onTrade    func(*types.Trade)
}

// Option configures an Engine.
type Option func(*Engine)

// WithIDGenerator injects the order-id source. It must be monotonic and
// never reused.
func WithIDGenerator(fn func() uint64) Option {
	return func(e *Engine) { e.nextID = fn }
}

// WithClock injects the timestamp source used on trade events.
func WithClock(fn func() time.Time) Option {
	return func(e *Engine) { e.now = fn }
}

// WithTradeListener registers a callback invoked for every trade event,
// after the originating intent has completed. Used by the market-data feed.
func WithTradeListener(fn func(*types.Trade)) Option {
	return func(e *Engine) { e.onTrade = fn }
}

// NewEngine creates an engine with no storage attached.
func NewEngine(opts ...Option) *Engine {
	return NewEngineWithStores(nil, nil, opts...)
}

// NewEngineWithStores creates an engine that mirrors resting orders into
// orderStore and persists trade events into tradeStore. Either store may be
// nil.
func NewEngineWithStores(orderStore storage.OrderStore, tradeStore storage.TradeStore, opts ...Option) *Engine {
	var idCounter uint64
	e := &Engine{
		book: NewOrderBook(),
		nextID: func() uint64 {
			idCounter++
			return idCounter
		},
		now:        time.Now,
		orderStore: orderStore,
		tradeStore: tradeStore,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GenerateOrderID hands out the next order id.
func (e *Engine) GenerateOrderID() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.nextID()
}

// PlaceOrder processes one new-order intent: validate, match against the
// opposing side, rest any limit remainder, acknowledge. A market remainder
// is never rested; it expires.
func (e *Engine) PlaceOrder(incoming *types.Order) *types.OrderResult {
	if err := incoming.Validate(); err != nil {
		return &types.OrderResult{
			OrderID:     incoming.ID,
			Trades:      nil,
			Disposition: types.DispositionRejected,
			Remaining:   incoming.Remaining,
			Err:         err,
		}
	}

	e.mu.Lock()
	trades, rested := e.placeLocked(incoming)
	e.mu.Unlock()

	e.persistIntent(incoming, trades, rested)
	e.notify(trades)

	return &types.OrderResult{
		OrderID:     incoming.ID,
		Trades:      trades,
		Disposition: disposition(incoming, trades, rested),
		Remaining:   incoming.Remaining,
	}
}

// CancelOrder removes a resting order. The second cancel of the same id
// reports ErrUnknownOrder; it is not an idempotent no-op.
func (e *Engine) CancelOrder(orderID uint64) error {
	e.mu.Lock()
	o, err := e.book.Cancel(orderID)
	e.mu.Unlock()
	if err != nil {
		return err
	}

	o.Status = types.StatusCancelled
	if e.orderStore != nil {
		_ = e.orderStore.Remove(orderID)
	}
	return nil
}

// ModifyOrder replaces a resting order with a brand-new order carrying a
// fresh id and arrival sequence. Cancel and reinsert run inside one critical
// section, so no other intent can observe the book between the two halves.
// Losing time priority on modify is the deliberate rule here, not a
// shortcut: the replacement goes to the back of the queue at its price, and
// re-enters matching first, so a modify that crosses executes immediately.
func (e *Engine) ModifyOrder(orderID uint64, newPrice *types.Price, newQuantity types.Quantity) (*types.OrderResult, error) {
	if newQuantity <= 0 {
		return nil, fmt.Errorf("modify order %d with non-positive quantity %d: %w", orderID, newQuantity, types.ErrInvalidIntent)
	}
	if newPrice != nil && *newPrice <= 0 {
		return nil, fmt.Errorf("modify order %d with non-positive price %d: %w", orderID, *newPrice, types.ErrInvalidIntent)
	}

	e.mu.Lock()
	existing, err := e.book.Cancel(orderID)
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	existing.Status = types.StatusCancelled

	price := existing.Price
	if newPrice != nil {
		price = *newPrice
	}

	replacement := types.NewOrder(e.nextID(), existing.UserID, existing.OrderType, existing.Side, price, newQuantity)
	replacement.Symbol = existing.Symbol
	trades, rested := e.placeLocked(replacement)
	e.mu.Unlock()

	if e.orderStore != nil {
		_ = e.orderStore.Remove(orderID)
	}
	e.persistIntent(replacement, trades, rested)
	e.notify(trades)

	return &types.OrderResult{
		OrderID:     replacement.ID,
		Trades:      trades,
		Disposition: disposition(replacement, trades, rested),
		Remaining:   replacement.Remaining,
	}, nil
}

// BestBid returns the highest resting bid price.
func (e *Engine) BestBid() (types.Price, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.BestBid()
}

// BestAsk returns the lowest resting ask price.
func (e *Engine) BestAsk() (types.Price, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.BestAsk()
}

// DepthAt returns the aggregate resting quantity at one price level.
func (e *Engine) DepthAt(side types.SideType, price types.Price) types.Quantity {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.DepthAt(side, price)
}

// BidLevels returns up to max bid levels, best first.
func (e *Engine) BidLevels(max int) []types.BookLevel {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.Levels(types.Buy, max)
}

// AskLevels returns up to max ask levels, best first.
func (e *Engine) AskLevels(max int) []types.BookLevel {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.Levels(types.Sell, max)
}

// GetOrder returns a resting order by id, or nil.
func (e *Engine) GetOrder(orderID uint64) *types.Order {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.Get(orderID)
}

// GetAllOrders returns every resting order from the order store.
func (e *Engine) GetAllOrders() []*types.Order {
	if e.orderStore == nil {
		return nil
	}
	return e.orderStore.GetAll()
}

// GetOrdersByUser returns a user's resting orders from the order store.
func (e *Engine) GetOrdersByUser(userID string) []*types.Order {
	if e.orderStore == nil {
		return nil
	}
	return e.orderStore.GetByUser(userID)
}

// GetOrdersBySide returns one side's resting orders from the order store.
func (e *Engine) GetOrdersBySide(side types.SideType) []*types.Order {
	if e.orderStore == nil {
		return nil
	}
	return e.orderStore.GetBySide(side)
}

// GetRecentTrades returns the most recent trade events from the trade store.
func (e *Engine) GetRecentTrades(limit int) ([]*types.Trade, error) {
	if e.tradeStore == nil {
		return []*types.Trade{}, nil
	}
	return e.tradeStore.GetRecent(limit)
}

// OpenOrders returns the number of orders resting in the book.
func (e *Engine) OpenOrders() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.Len()
}

// Close releases the attached stores.
func (e *Engine) Close() error {
	var lastErr error
	if e.orderStore != nil {
		if err := e.orderStore.Close(); err != nil {
			lastErr = err
		}
	}
	if e.tradeStore != nil {
		if err := e.tradeStore.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// placeLocked matches one accepted order against the opposing side and
// rests any limit remainder. The caller holds e.mu; both PlaceOrder and the
// reinsert half of ModifyOrder funnel through here.
func (e *Engine) placeLocked(incoming *types.Order) (trades []*types.Trade, rested bool) {
	e.seq++
	incoming.Sequence = e.seq

	e.book.matchIncoming(incoming, func(resting *types.Order, qty types.Quantity) {
		e.matchSeq++
		trades = append(trades, e.newTrade(incoming, resting, qty))
		e.syncRestingOrder(resting)
	})

	switch {
	case incoming.Remaining == 0:
		incoming.Status = types.StatusFilled
	case incoming.Filled() > 0:
		incoming.Status = types.StatusPartialFilled
	}

	if incoming.Remaining > 0 && incoming.OrderType == types.LimitOrder {
		e.book.Insert(incoming)
		rested = true
	}
	return trades, rested
}

// newTrade builds the trade event for one fill. The execution price is the
// resting order's price.
func (e *Engine) newTrade(incoming, resting *types.Order, qty types.Quantity) *types.Trade {
	trade := &types.Trade{
		TradeID:      e.matchSeq,
		MakerOrderID: resting.ID,
		TakerOrderID: incoming.ID,
		Price:        resting.Price,
		Quantity:     qty,
		Timestamp:    e.now().UTC(),
	}
	if incoming.Side == types.Buy {
		trade.BuyOrderID = incoming.ID
		trade.SellOrderID = resting.ID
	} else {
		trade.BuyOrderID = resting.ID
		trade.SellOrderID = incoming.ID
	}
	return trade
}

// syncRestingOrder mirrors a resting order's fill state into the order store.
func (e *Engine) syncRestingOrder(resting *types.Order) {
	if e.orderStore == nil {
		return
	}
	if resting.Remaining == 0 {
		_ = e.orderStore.Remove(resting.ID)
	} else {
		_ = e.orderStore.Update(resting)
	}
}

// persistIntent records the accepted order and its trades after the book
// mutation has completed.
func (e *Engine) persistIntent(incoming *types.Order, trades []*types.Trade, rested bool) {
	if e.orderStore != nil && rested {
		_ = e.orderStore.Save(incoming)
	}
	if e.tradeStore != nil && len(trades) > 0 {
		_ = e.tradeStore.SaveBatch(trades)
	}
}

func (e *Engine) notify(trades []*types.Trade) {
	if e.onTrade == nil {
		return
	}
	for _, trade := range trades {
		e.onTrade(trade)
	}
}

func disposition(incoming *types.Order, trades []*types.Trade, rested bool) types.Disposition {
	switch {
	case incoming.Remaining == 0:
		return types.DispositionFilled
	case rested && len(trades) == 0:
		return types.DispositionResting
	case rested:
		return types.DispositionPartialResting
	case len(trades) == 0:
		return types.DispositionExpired
	default:
		return types.DispositionPartialExpired
	}
}
