package repository

import (
	"context"

	"github.com/bitfantasy/nimo-cost/internal/cost/entity"
	"gorm.io/gorm"
)

type consumptionRepository struct {
	db *gorm.DB
}

func NewConsumptionRepository(db *gorm.DB) ConsumptionRepository {
	return &consumptionRepository{db: db}
}

func (r *consumptionRepository) Create(ctx context.Context, ac *entity.ActualConsumption) error {
	return r.db.WithContext(ctx).Create(ac).Error
}

func (r *consumptionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.ActualConsumption{}, "id = ?", id).Error
}

func (r *consumptionRepository) ListByBOMItem(ctx context.Context, bomItemID string) ([]entity.ActualConsumption, error) {
	var list []entity.ActualConsumption
	err := r.db.WithContext(ctx).
		Where("bom_item_id = ?", bomItemID).
		Order("consumed_at DESC").
		Find(&list).Error
	return list, err
}
