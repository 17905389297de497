package storage

import (
	"errors"

	"github.com/matchcore/orderbook/internal/types"
)

// TieredOrderStore stacks order stores the way the server wires them:
// memory in front, then redis, then postgres. Every write fans out to every
// tier so the layers never disagree; reads stop at the first tier that
// answers. A tier failing a write does not stop the tiers behind it.
type TieredOrderStore struct {
	tiers []OrderStore
}

// NewTieredOrderStore stacks tiers fastest-first.
func NewTieredOrderStore(tiers ...OrderStore) *TieredOrderStore {
	return &TieredOrderStore{tiers: tiers}
}

func (t *TieredOrderStore) Save(order *types.Order) error {
	var errs []error
	for _, tier := range t.tiers {
		errs = append(errs, tier.Save(order))
	}
	return errors.Join(errs...)
}

func (t *TieredOrderStore) Get(orderID uint64) (*types.Order, error) {
	for _, tier := range t.tiers {
		if order, err := tier.Get(orderID); err == nil && order != nil {
			return order, nil
		}
	}
	return nil, types.ErrUnknownOrder
}

func (t *TieredOrderStore) Remove(orderID uint64) error {
	var errs []error
	for _, tier := range t.tiers {
		errs = append(errs, tier.Remove(orderID))
	}
	return errors.Join(errs...)
}

func (t *TieredOrderStore) Update(order *types.Order) error {
	var errs []error
	for _, tier := range t.tiers {
		errs = append(errs, tier.Update(order))
	}
	return errors.Join(errs...)
}

func (t *TieredOrderStore) GetAll() []*types.Order {
	for _, tier := range t.tiers {
		if orders := tier.GetAll(); len(orders) > 0 {
			return orders
		}
	}
	return []*types.Order{}
}

func (t *TieredOrderStore) GetByUser(userID string) []*types.Order {
	for _, tier := range t.tiers {
		if orders := tier.GetByUser(userID); len(orders) > 0 {
			return orders
		}
	}
	return []*types.Order{}
}

func (t *TieredOrderStore) GetBySide(side types.SideType) []*types.Order {
	for _, tier := range t.tiers {
		if orders := tier.GetBySide(side); len(orders) > 0 {
			return orders
		}
	}
	return []*types.Order{}
}

func (t *TieredOrderStore) Close() error {
	var errs []error
	for _, tier := range t.tiers {
		errs = append(errs, tier.Close())
	}
	return errors.Join(errs...)
}
