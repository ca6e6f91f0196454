package memory

import (
	"context"
	"sort"

	"github.com/bitfantasy/nimo-cost/internal/cost/entity"
	"github.com/bitfantasy/nimo-cost/internal/cost/repository"
)

type consumptionRepository struct {
	s *Store
}

var _ repository.ConsumptionRepository = (*consumptionRepository)(nil)

func (r *consumptionRepository) Create(ctx context.Context, ac *entity.ActualConsumption) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&ac.ID)
	ensureTime(&ac.ConsumedAt)
	r.s.consumptions = append(r.s.consumptions, *ac)
	return nil
}

func (r *consumptionRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.consumptions[:0]
	for _, ac := range r.s.consumptions {
		if ac.ID != id {
			kept = append(kept, ac)
		}
	}
	r.s.consumptions = kept
	return nil
}

func (r *consumptionRepository) ListByBOMItem(ctx context.Context, bomItemID string) ([]entity.ActualConsumption, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := r.s.consumptionsOfLocked(bomItemID)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].ConsumedAt.After(list[j].ConsumedAt)
	})
	return list, nil
}
