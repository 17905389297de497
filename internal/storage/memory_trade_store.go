package storage

import (
	"sync"

	"github.com/matchcore/orderbook/internal/types"
)

// InMemoryTradeStore implements TradeStore using a bounded slice.
// Keeps only the N most recent trades in memory.
type InMemoryTradeStore struct {
	trades  []*types.Trade
	maxSize int
	mutex   sync.RWMutex
}

// NewInMemoryTradeStore creates a new in-memory trade store with a size limit
func NewInMemoryTradeStore(maxSize int) *InMemoryTradeStore {
	return &InMemoryTradeStore{
		trades:  make([]*types.Trade, 0, maxSize),
		maxSize: maxSize,
	}
}

func (s *InMemoryTradeStore) Save(trade *types.Trade) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.trades = append(s.trades, trade)
	s.trim()
	return nil
}

func (s *InMemoryTradeStore) SaveBatch(trades []*types.Trade) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.trades = append(s.trades, trades...)
	s.trim()
	return nil
}

// trim drops the oldest trades beyond maxSize. Caller holds the lock.
func (s *InMemoryTradeStore) trim() {
	if s.maxSize > 0 && len(s.trades) > s.maxSize {
		s.trades = s.trades[len(s.trades)-s.maxSize:]
	}
}

func (s *InMemoryTradeStore) GetRecent(limit int) ([]*types.Trade, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if limit <= 0 || limit > len(s.trades) {
		limit = len(s.trades)
	}

	start := len(s.trades) - limit
	result := make([]*types.Trade, limit)
	copy(result, s.trades[start:])

	return result, nil
}

func (s *InMemoryTradeStore) Close() error {
	// No cleanup needed for in-memory store
	return nil
}
