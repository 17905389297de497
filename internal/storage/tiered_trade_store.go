package storage

import (
	"errors"

	"github.com/matchcore/orderbook/internal/types"
)

// TieredTradeStore stacks trade stores fastest-first, typically memory in
// front of redis, postgres and the audit log. Writes fan out to every tier;
// GetRecent serves from the first tier holding any trades, which keeps the
// write-only audit tier out of the read path.
type TieredTradeStore struct {
	tiers []TradeStore
}

// NewTieredTradeStore stacks tiers fastest-first.
func NewTieredTradeStore(tiers ...TradeStore) *TieredTradeStore {
	return &TieredTradeStore{tiers: tiers}
}

func (t *TieredTradeStore) Save(trade *types.Trade) error {
	var errs []error
	for _, tier := range t.tiers {
		errs = append(errs, tier.Save(trade))
	}
	return errors.Join(errs...)
}

func (t *TieredTradeStore) SaveBatch(trades []*types.Trade) error {
	var errs []error
	for _, tier := range t.tiers {
		errs = append(errs, tier.SaveBatch(trades))
	}
	return errors.Join(errs...)
}

func (t *TieredTradeStore) GetRecent(limit int) ([]*types.Trade, error) {
	for _, tier := range t.tiers {
		trades, err := tier.GetRecent(limit)
		if err != nil {
			continue
		}
		if len(trades) > 0 {
			return trades, nil
		}
	}
	return []*types.Trade{}, nil
}

func (t *TieredTradeStore) Close() error {
	var errs []error
	for _, tier := range t.tiers {
		errs = append(errs, tier.Close())
	}
	return errors.Join(errs...)
}
