package matching

import (
	"github.com/google/btree"

	"github.com/matchcore/orderbook/internal/types"
)

// btreeDegree is the branching factor of the price-level trees.
const btreeDegree = 32

// level is one price level: the price key plus the time-priority queue of
// every order resting at that price. A level present in an index always has
// at least one order; emptied levels are removed immediately so best() and
// the matching walk never see a dangling key.
type level struct {
	price types.Price
	queue *levelQueue
}

// levelIndex is an ordered map from price to level for one side of the book.
// The comparator is chosen per side so that the tree minimum is always the
// best price: descending for bids (highest first), ascending for asks
// (lowest first). Level insertion and removal are O(log N); best-level
// access is O(1) amortized.
type levelIndex struct {
	tree *btree.BTreeG[*level]
}

func newLevelIndex(side types.SideType) *levelIndex {
	less := func(a, b *level) bool { return a.price < b.price }
	if side == types.Buy {
		less = func(a, b *level) bool { return a.price > b.price }
	}
	return &levelIndex{tree: btree.NewG(btreeDegree, less)}
}

// best returns the best-priced level, if any.
func (ix *levelIndex) best() (*level, bool) {
	return ix.tree.Min()
}

// get returns the level at an exact price, if present.
func (ix *levelIndex) get(price types.Price) (*level, bool) {
	return ix.tree.Get(&level{price: price})
}

// getOrCreate returns the level at the given price, creating it when absent.
func (ix *levelIndex) getOrCreate(price types.Price) *level {
	if lv, ok := ix.tree.Get(&level{price: price}); ok {
		return lv
	}
	lv := &level{price: price, queue: newLevelQueue()}
	ix.tree.ReplaceOrInsert(lv)
	return lv
}

// removeIfEmpty drops a level whose queue has been emptied.
func (ix *levelIndex) removeIfEmpty(lv *level) {
	if lv.queue.len() == 0 {
		ix.tree.Delete(lv)
	}
}

func (ix *levelIndex) len() int {
	return ix.tree.Len()
}

// walk visits levels best-first until fn returns false.
func (ix *levelIndex) walk(fn func(*level) bool) {
	ix.tree.Ascend(func(lv *level) bool {
		return fn(lv)
	})
}
