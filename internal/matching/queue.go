package matching

import (
	"container/list"
	"fmt"

	"github.com/matchcore/orderbook/internal/types"
)

// levelQueue is the FIFO of resting orders at one exact price, ordered by
// arrival sequence ascending (oldest first). The doubly-linked list gives
// O(1) push-back, pop-front and removal of an arbitrary order through the
// element captured at insertion time, so cancels never scan the level.
//
// depth tracks the summed remaining quantity of all queued orders; it is
// kept current on every push, pop, removal and partial fill.
type levelQueue struct {
	orders *list.List
	depth  types.Quantity
}

func newLevelQueue() *levelQueue {
	return &levelQueue{orders: list.New()}
}

// pushBack appends an order at the lowest-priority tail and returns its
// position token.
func (q *levelQueue) pushBack(o *types.Order) *list.Element {
	q.depth += o.Remaining
	return q.orders.PushBack(o)
}

// popFront removes and returns the highest-priority order.
func (q *levelQueue) popFront() (*types.Order, error) {
	front := q.orders.Front()
	if front == nil {
		return nil, fmt.Errorf("pop from empty price level: %w", types.ErrEmptyQueue)
	}
	o := q.orders.Remove(front).(*types.Order)
	q.depth -= o.Remaining
	return o, nil
}

// peekFront returns the highest-priority order without removing it, or nil
// if the queue is empty.
func (q *levelQueue) peekFront() *types.Order {
	front := q.orders.Front()
	if front == nil {
		return nil
	}
	return front.Value.(*types.Order)
}

// remove detaches an arbitrary order by its position token.
func (q *levelQueue) remove(el *list.Element) *types.Order {
	o := q.orders.Remove(el).(*types.Order)
	q.depth -= o.Remaining
	return o
}

// reduce records a partial fill of a still-queued order. The order's
// remaining quantity has already been decremented by the caller.
func (q *levelQueue) reduce(qty types.Quantity) {
	q.depth -= qty
}

func (q *levelQueue) len() int {
	return q.orders.Len()
}
