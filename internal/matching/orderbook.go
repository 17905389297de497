package matching

import (
	"container/list"
	"fmt"

	"github.com/matchcore/orderbook/internal/types"
)

// bookEntry is an identity-table record: the resting order plus the position
// token returned by its level queue at insertion time. Side and price live
// on the order itself, so a cancel routes in O(1) without scanning.
type bookEntry struct {
	order *types.Order
	elem  *list.Element
}

// OrderBook is the aggregate state for one instrument: one price-level index
// per side plus the identity table. Every order reachable from the identity
// table sits in exactly one queue of exactly one index and vice versa; the
// two structures are kept in lock-step by every mutating operation, and a
// detected divergence panics because it can only be a programming defect.
//
// The book is mutated exclusively by the Engine and performs no locking of
// its own.
type OrderBook struct {
	bids    *levelIndex
	asks    *levelIndex
	entries map[uint64]*bookEntry
}

// NewOrderBook creates an empty book.
func NewOrderBook() *OrderBook {
	return &OrderBook{
		bids:    newLevelIndex(types.Buy),
		asks:    newLevelIndex(types.Sell),
		entries: make(map[uint64]*bookEntry),
	}
}

func (b *OrderBook) sideIndex(side types.SideType) *levelIndex {
	if side == types.Buy {
		return b.bids
	}
	return b.asks
}

// Insert rests an order at its limit price. O(log N) when the price level is
// new, O(1) append when it already exists.
func (b *OrderBook) Insert(o *types.Order) {
	lv := b.sideIndex(o.Side).getOrCreate(o.Price)
	elem := lv.queue.pushBack(o)
	b.entries[o.ID] = &bookEntry{order: o, elem: elem}
}

// Cancel removes a resting order by id and returns it. Cancelling an id that
// is not resting (already filled, already cancelled, or never accepted)
// returns ErrUnknownOrder and leaves the book untouched.
func (b *OrderBook) Cancel(orderID uint64) (*types.Order, error) {
	entry, ok := b.entries[orderID]
	if !ok {
		return nil, fmt.Errorf("cancel order %d: %w", orderID, types.ErrUnknownOrder)
	}

	o := entry.order
	ix := b.sideIndex(o.Side)
	lv, ok := ix.get(o.Price)
	if !ok {
		panic(fmt.Sprintf("order book corrupt: order %d tracked at price %d but level is missing", o.ID, o.Price))
	}

	lv.queue.remove(entry.elem)
	ix.removeIfEmpty(lv)
	delete(b.entries, orderID)
	return o, nil
}

// Get returns the resting order with the given id, or nil.
func (b *OrderBook) Get(orderID uint64) *types.Order {
	if entry, ok := b.entries[orderID]; ok {
		return entry.order
	}
	return nil
}

// Len returns the number of resting orders.
func (b *OrderBook) Len() int {
	return len(b.entries)
}

// BestBid returns the highest resting bid price.
func (b *OrderBook) BestBid() (types.Price, bool) {
	if lv, ok := b.bids.best(); ok {
		return lv.price, true
	}
	return 0, false
}

// BestAsk returns the lowest resting ask price.
func (b *OrderBook) BestAsk() (types.Price, bool) {
	if lv, ok := b.asks.best(); ok {
		return lv.price, true
	}
	return 0, false
}

// DepthAt returns the aggregate resting quantity at one exact price level.
func (b *OrderBook) DepthAt(side types.SideType, price types.Price) types.Quantity {
	if lv, ok := b.sideIndex(side).get(price); ok {
		return lv.queue.depth
	}
	return 0
}

// Levels returns up to max aggregated levels for one side, best price first.
// max <= 0 returns every level.
func (b *OrderBook) Levels(side types.SideType, max int) []types.BookLevel {
	levels := make([]types.BookLevel, 0)
	b.sideIndex(side).walk(func(lv *level) bool {
		if max > 0 && len(levels) >= max {
			return false
		}
		levels = append(levels, types.BookLevel{
			Price:      lv.price,
			Quantity:   lv.queue.depth,
			OrderCount: lv.queue.len(),
		})
		return true
	})
	return levels
}

// matchIncoming walks the opposing side from the best price outward while
// the incoming order still crosses, filling strictly in price-then-time
// priority. Each fill executes at the resting order's price and is reported
// through onFill before the loop advances. Fully filled resting orders are
// popped and erased from the identity table, and emptied levels are removed
// before the walk moves to the next price.
//
// The caller rests any remainder; matchIncoming never inserts the incoming
// order.
func (b *OrderBook) matchIncoming(incoming *types.Order, onFill func(resting *types.Order, qty types.Quantity)) {
	opposing := b.asks
	crosses := func(best types.Price) bool { return best <= incoming.Price }
	if incoming.Side == types.Sell {
		opposing = b.bids
		crosses = func(best types.Price) bool { return best >= incoming.Price }
	}

	for incoming.Remaining > 0 {
		lv, ok := opposing.best()
		if !ok {
			break
		}
		// Market orders cross unconditionally.
		if incoming.OrderType == types.LimitOrder && !crosses(lv.price) {
			break
		}

		resting := lv.queue.peekFront()
		if resting == nil {
			panic(fmt.Sprintf("order book corrupt: empty level at price %d left in index", lv.price))
		}

		qty := incoming.Remaining
		if resting.Remaining < qty {
			qty = resting.Remaining
		}

		incoming.Remaining -= qty
		resting.Remaining -= qty
		lv.queue.reduce(qty)

		if resting.Remaining == 0 {
			resting.Status = types.StatusFilled
			if _, err := lv.queue.popFront(); err != nil {
				panic(fmt.Sprintf("order book corrupt: %v", err))
			}
			delete(b.entries, resting.ID)
		} else {
			resting.Status = types.StatusPartialFilled
		}

		onFill(resting, qty)
		opposing.removeIfEmpty(lv)
	}
}
