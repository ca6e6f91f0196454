package memory

import (
	"context"
	"sort"

	"github.com/bitfantasy/nimo-cost/internal/cost/entity"
	"github.com/bitfantasy/nimo-cost/internal/cost/repository"
	"gorm.io/gorm"
)

type bomItemRepository struct {
	s *Store
}

var _ repository.BOMItemRepository = (*bomItemRepository)(nil)

func (r *bomItemRepository) Create(ctx context.Context, item *entity.BOMItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&item.ID)
	ensureTime(&item.CreatedAt)
	stored := *item
	stored.Consumptions = nil
	r.s.bomItems = append(r.s.bomItems, stored)
	return nil
}

func (r *bomItemRepository) Update(ctx context.Context, item *entity.BOMItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.bomItems {
		if r.s.bomItems[i].ID == item.ID {
			stored := *item
			stored.Consumptions = nil
			r.s.bomItems[i] = stored
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *bomItemRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.bomItems[:0]
	for _, b := range r.s.bomItems {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	r.s.bomItems = kept

	// 级联删除消耗记录
	keptACs := r.s.consumptions[:0]
	for _, ac := range r.s.consumptions {
		if ac.BOMItemID != id {
			keptACs = append(keptACs, ac)
		}
	}
	r.s.consumptions = keptACs
	return nil
}

func (r *bomItemRepository) FindByID(ctx context.Context, id string) (*entity.BOMItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for i := range r.s.bomItems {
		if r.s.bomItems[i].ID == id {
			item := r.s.bomItems[i]
			return &item, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *bomItemRepository) ListByOrder(ctx context.Context, orderID string) ([]entity.BOMItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.itemsOfLocked(orderID, true), nil
}

func (r *bomItemRepository) ListAll(ctx context.Context) ([]entity.BOMItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	items := make([]entity.BOMItem, len(r.s.bomItems))
	copy(items, r.s.bomItems)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].ItemName < items[j].ItemName
	})
	return items, nil
}
