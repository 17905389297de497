package matching

import (
	"testing"

	"github.com/matchcore/orderbook/internal/types"
)

func addLevel(ix *levelIndex, price types.Price, orderID uint64) *level {
	lv := ix.getOrCreate(price)
	lv.queue.pushBack(types.NewOrder(orderID, "alice", types.LimitOrder, types.Buy, price, 10))
	return lv
}

// TestBidIndexBestIsHighest tests that the bid side surfaces the highest price
func TestBidIndexBestIsHighest(t *testing.T) {
	ix := newLevelIndex(types.Buy)

	addLevel(ix, 10000, 1)
	addLevel(ix, 10200, 2)
	addLevel(ix, 10100, 3)

	best, ok := ix.best()
	if !ok {
		t.Fatal("Expected a best level")
	}
	if best.price != 10200 {
		t.Errorf("Expected best bid 10200, got %d", best.price)
	}
}

// TestAskIndexBestIsLowest tests that the ask side surfaces the lowest price
func TestAskIndexBestIsLowest(t *testing.T) {
	ix := newLevelIndex(types.Sell)

	addLevel(ix, 10300, 1)
	addLevel(ix, 10100, 2)
	addLevel(ix, 10200, 3)

	best, ok := ix.best()
	if !ok {
		t.Fatal("Expected a best level")
	}
	if best.price != 10100 {
		t.Errorf("Expected best ask 10100, got %d", best.price)
	}
}

// TestGetOrCreateReusesLevel tests that one price maps to one level
func TestGetOrCreateReusesLevel(t *testing.T) {
	ix := newLevelIndex(types.Buy)

	lv1 := ix.getOrCreate(10000)
	lv2 := ix.getOrCreate(10000)
	if lv1 != lv2 {
		t.Error("getOrCreate created a duplicate level for the same price")
	}
	if ix.len() != 1 {
		t.Errorf("Expected 1 level, got %d", ix.len())
	}
}

// TestRemoveIfEmpty tests that emptied levels leave the index
func TestRemoveIfEmpty(t *testing.T) {
	ix := newLevelIndex(types.Sell)

	lv := addLevel(ix, 10100, 1)

	// Still populated: removal must be a no-op
	ix.removeIfEmpty(lv)
	if ix.len() != 1 {
		t.Fatalf("Populated level was removed")
	}

	if _, err := lv.queue.popFront(); err != nil {
		t.Fatalf("popFront failed: %v", err)
	}
	ix.removeIfEmpty(lv)
	if ix.len() != 0 {
		t.Errorf("Expected empty index, got %d levels", ix.len())
	}
	if _, ok := ix.best(); ok {
		t.Error("best() returned a level from an empty index")
	}
}

// TestWalkBestFirst tests best-first traversal order per side
func TestWalkBestFirst(t *testing.T) {
	bids := newLevelIndex(types.Buy)
	asks := newLevelIndex(types.Sell)
	for _, p := range []types.Price{10100, 10300, 10200} {
		addLevel(bids, p, uint64(p))
		addLevel(asks, p, uint64(p))
	}

	var bidPrices []types.Price
	bids.walk(func(lv *level) bool {
		bidPrices = append(bidPrices, lv.price)
		return true
	})
	for i := 1; i < len(bidPrices); i++ {
		if bidPrices[i-1] < bidPrices[i] {
			t.Errorf("Bid walk not descending: %v", bidPrices)
		}
	}

	var askPrices []types.Price
	asks.walk(func(lv *level) bool {
		askPrices = append(askPrices, lv.price)
		return true
	})
	for i := 1; i < len(askPrices); i++ {
		if askPrices[i-1] > askPrices[i] {
			t.Errorf("Ask walk not ascending: %v", askPrices)
		}
	}
}
