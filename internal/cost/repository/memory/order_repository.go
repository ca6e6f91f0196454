package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/bitfantasy/nimo-cost/internal/cost/entity"
	"github.com/bitfantasy/nimo-cost/internal/cost/repository"
	"gorm.io/gorm"
)

type orderRepository struct {
	s *Store
}

var _ repository.OrderRepository = (*orderRepository)(nil)

func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&order.ID)
	ensureTime(&order.CreatedAt)
	ensureTime(&order.UpdatedAt)
	stored := *order
	stored.BOMItems = nil
	r.s.orders = append(r.s.orders, stored)
	return nil
}

func (r *orderRepository) Update(ctx context.Context, order *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.orders {
		if r.s.orders[i].ID == order.ID {
			stored := *order
			stored.BOMItems = nil
			r.s.orders[i] = stored
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *orderRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	// 模拟外键级联：订单→BOM行项→消耗记录
	kept := r.s.orders[:0]
	for _, o := range r.s.orders {
		if o.ID != id {
			kept = append(kept, o)
		}
	}
	r.s.orders = kept

	removedItems := map[string]bool{}
	keptItems := r.s.bomItems[:0]
	for _, b := range r.s.bomItems {
		if b.OrderID == id {
			removedItems[b.ID] = true
			continue
		}
		keptItems = append(keptItems, b)
	}
	r.s.bomItems = keptItems

	keptACs := r.s.consumptions[:0]
	for _, ac := range r.s.consumptions {
		if !removedItems[ac.BOMItemID] {
			keptACs = append(keptACs, ac)
		}
	}
	r.s.consumptions = keptACs
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*entity.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for i := range r.s.orders {
		if r.s.orders[i].ID == id {
			o := r.s.orders[i]
			o.BOMItems = r.s.itemsOfLocked(id, false)
			return &o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *orderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*entity.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for i := range r.s.orders {
		if r.s.orders[i].OrderNumber == orderNumber {
			o := r.s.orders[i]
			return &o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *orderRepository) ListNested(ctx context.Context) ([]entity.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	orders := make([]entity.Order, len(r.s.orders))
	copy(orders, r.s.orders)
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})
	for i := range orders {
		orders[i].BOMItems = r.s.itemsOfLocked(orders[i].ID, true)
	}
	return orders, nil
}

func (r *orderRepository) ListRecent(ctx context.Context, limit int) ([]entity.Order, error) {
	if limit <= 0 {
		limit = 10
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	orders := make([]entity.Order, len(r.s.orders))
	copy(orders, r.s.orders)
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	if len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

// itemsOfLocked 取某订单的BOM行项，调用方需持有读锁
func (s *Store) itemsOfLocked(orderID string, withConsumptions bool) []entity.BOMItem {
	var items []entity.BOMItem
	for i := range s.bomItems {
		if s.bomItems[i].OrderID != orderID {
			continue
		}
		item := s.bomItems[i]
		if withConsumptions {
			item.Consumptions = s.consumptionsOfLocked(item.ID)
		}
		items = append(items, item)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return strings.Compare(items[i].ItemName, items[j].ItemName) < 0
	})
	return items
}

func (s *Store) consumptionsOfLocked(bomItemID string) []entity.ActualConsumption {
	var list []entity.ActualConsumption
	for i := range s.consumptions {
		if s.consumptions[i].BOMItemID == bomItemID {
			list = append(list, s.consumptions[i])
		}
	}
	return list
}
