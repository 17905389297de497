package storage

import (
	"testing"

	"github.com/matchcore/orderbook/internal/types"
)

func newTestOrder(id uint64, userID string, side types.SideType) *types.Order {
	return types.NewOrder(id, userID, types.LimitOrder, side, 10000, 10)
}

// TestInMemoryOrderStoreSaveGet tests basic save and lookup
func TestInMemoryOrderStoreSaveGet(t *testing.T) {
	store := NewInMemoryOrderStore(0)

	order := newTestOrder(1, "alice", types.Buy)
	if err := store.Save(order); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Get(1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID != 1 || got.UserID != "alice" {
		t.Errorf("Got wrong order: %+v", got)
	}

	if _, err := store.Get(99); err == nil {
		t.Error("Expected error for unknown order")
	}
}

// TestInMemoryOrderStoreCapacity tests the maxOrders bound
func TestInMemoryOrderStoreCapacity(t *testing.T) {
	store := NewInMemoryOrderStore(2)

	if err := store.Save(newTestOrder(1, "alice", types.Buy)); err != nil {
		t.Fatalf("Save 1 failed: %v", err)
	}
	if err := store.Save(newTestOrder(2, "alice", types.Buy)); err != nil {
		t.Fatalf("Save 2 failed: %v", err)
	}
	if err := store.Save(newTestOrder(3, "alice", types.Buy)); err == nil {
		t.Error("Expected capacity error on third order")
	}

	// Overwriting an existing id is allowed at capacity
	if err := store.Save(newTestOrder(2, "bob", types.Buy)); err != nil {
		t.Errorf("Overwrite at capacity failed: %v", err)
	}
}

// TestInMemoryOrderStoreRemove tests removal
func TestInMemoryOrderStoreRemove(t *testing.T) {
	store := NewInMemoryOrderStore(0)

	store.Save(newTestOrder(1, "alice", types.Buy))
	if err := store.Remove(1); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := store.Get(1); err == nil {
		t.Error("Order still present after removal")
	}

	// Removing an absent order is a no-op
	if err := store.Remove(1); err != nil {
		t.Errorf("Second remove errored: %v", err)
	}
}

// TestInMemoryOrderStoreFilters tests user and side queries
func TestInMemoryOrderStoreFilters(t *testing.T) {
	store := NewInMemoryOrderStore(0)

	store.Save(newTestOrder(1, "alice", types.Buy))
	store.Save(newTestOrder(2, "alice", types.Sell))
	store.Save(newTestOrder(3, "bob", types.Buy))

	if got := store.GetByUser("alice"); len(got) != 2 {
		t.Errorf("Expected 2 orders for alice, got %d", len(got))
	}
	if got := store.GetBySide(types.Buy); len(got) != 2 {
		t.Errorf("Expected 2 buy orders, got %d", len(got))
	}
	if got := store.GetAll(); len(got) != 3 {
		t.Errorf("Expected 3 orders, got %d", len(got))
	}
}

// TestInMemoryTradeStoreRecency tests bounded retention and recency order
func TestInMemoryTradeStoreRecency(t *testing.T) {
	store := NewInMemoryTradeStore(3)

	for i := uint64(1); i <= 5; i++ {
		if err := store.Save(&types.Trade{TradeID: i, Price: 10000, Quantity: 1}); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	trades, err := store.GetRecent(10)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(trades) != 3 {
		t.Fatalf("Expected 3 retained trades, got %d", len(trades))
	}
	// Oldest two were trimmed
	if trades[0].TradeID != 3 || trades[2].TradeID != 5 {
		t.Errorf("Wrong retention window: first=%d last=%d", trades[0].TradeID, trades[2].TradeID)
	}
}

// TestInMemoryTradeStoreSaveBatch tests batched writes
func TestInMemoryTradeStoreSaveBatch(t *testing.T) {
	store := NewInMemoryTradeStore(100)

	batch := []*types.Trade{
		{TradeID: 1, Price: 10000, Quantity: 5},
		{TradeID: 2, Price: 10100, Quantity: 7},
	}
	if err := store.SaveBatch(batch); err != nil {
		t.Fatalf("SaveBatch failed: %v", err)
	}

	trades, _ := store.GetRecent(0)
	if len(trades) != 2 {
		t.Errorf("Expected 2 trades, got %d", len(trades))
	}
}

// TestTieredOrderStoreWriteThrough tests tiered write and first-hit read
func TestTieredOrderStoreWriteThrough(t *testing.T) {
	l1 := NewInMemoryOrderStore(0)
	l2 := NewInMemoryOrderStore(0)
	store := NewTieredOrderStore(l1, l2)

	order := newTestOrder(1, "alice", types.Buy)
	if err := store.Save(order); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Both layers got the write
	if _, err := l1.Get(1); err != nil {
		t.Error("L1 missing the order")
	}
	if _, err := l2.Get(1); err != nil {
		t.Error("L2 missing the order")
	}

	// Read falls through to L2 when L1 misses
	l1.Remove(1)
	got, err := store.Get(1)
	if err != nil || got.ID != 1 {
		t.Errorf("Tiered read-through failed: %v", err)
	}

	// Miss everywhere reports the canonical error
	store.Remove(1)
	if _, err := store.Get(1); err == nil {
		t.Error("Expected error after removal from all layers")
	}
}
