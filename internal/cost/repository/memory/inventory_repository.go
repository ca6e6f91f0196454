package memory

import (
	"context"
	"sort"
	"time"

	"github.com/bitfantasy/nimo-cost/internal/cost/entity"
	"github.com/bitfantasy/nimo-cost/internal/cost/repository"
	"gorm.io/gorm"
)

type inventoryRepository struct {
	s *Store
}

var _ repository.InventoryRepository = (*inventoryRepository)(nil)

func (r *inventoryRepository) Create(ctx context.Context, item *entity.InventoryItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&item.ID)
	ensureTime(&item.UpdatedAt)
	r.s.inventory = append(r.s.inventory, *item)
	return nil
}

func (r *inventoryRepository) Update(ctx context.Context, item *entity.InventoryItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.inventory {
		if r.s.inventory[i].ID == item.ID {
			item.UpdatedAt = time.Now()
			r.s.inventory[i] = *item
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *inventoryRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.inventory[:0]
	for _, item := range r.s.inventory {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	r.s.inventory = kept
	return nil
}

func (r *inventoryRepository) FindByID(ctx context.Context, id string) (*entity.InventoryItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for i := range r.s.inventory {
		if r.s.inventory[i].ID == id {
			item := r.s.inventory[i]
			return &item, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// FindByName 与gorm实现一致：精确匹配、区分大小写
func (r *inventoryRepository) FindByName(ctx context.Context, name string) (*entity.InventoryItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for i := range r.s.inventory {
		if r.s.inventory[i].ItemName == name {
			item := r.s.inventory[i]
			return &item, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *inventoryRepository) List(ctx context.Context) ([]entity.InventoryItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	items := make([]entity.InventoryItem, len(r.s.inventory))
	copy(items, r.s.inventory)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].ItemName < items[j].ItemName
	})
	return items, nil
}

type snapshotRepository struct {
	s *Store
}

var _ repository.SnapshotRepository = (*snapshotRepository)(nil)

func (r *snapshotRepository) Create(ctx context.Context, snap *entity.MaterialSnapshot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&snap.ID)
	ensureTime(&snap.CreatedAt)
	r.s.snapshots = append(r.s.snapshots, *snap)
	return nil
}

func (r *snapshotRepository) List(ctx context.Context) ([]entity.MaterialSnapshot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	snaps := make([]entity.MaterialSnapshot, len(r.s.snapshots))
	copy(snaps, r.s.snapshots)
	sort.SliceStable(snaps, func(i, j int) bool {
		return snaps[i].CreatedAt.After(snaps[j].CreatedAt)
	})
	return snaps, nil
}
