package repository

import (
	"context"

	"github.com/bitfantasy/nimo-cost/internal/cost/entity"
	"gorm.io/gorm"
)

type bomItemRepository struct {
	db *gorm.DB
}

func NewBOMItemRepository(db *gorm.DB) BOMItemRepository {
	return &bomItemRepository{db: db}
}

func (r *bomItemRepository) Create(ctx context.Context, item *entity.BOMItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *bomItemRepository) Update(ctx context.Context, item *entity.BOMItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *bomItemRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.BOMItem{}, "id = ?", id).Error
}

func (r *bomItemRepository) FindByID(ctx context.Context, id string) (*entity.BOMItem, error) {
	var item entity.BOMItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *bomItemRepository) ListByOrder(ctx context.Context, orderID string) ([]entity.BOMItem, error) {
	var items []entity.BOMItem
	err := r.db.WithContext(ctx).
		Preload("Consumptions").
		Where("order_id = ?", orderID).
		Order("item_name ASC").
		Find(&items).Error
	return items, err
}

func (r *bomItemRepository) ListAll(ctx context.Context) ([]entity.BOMItem, error) {
	var items []entity.BOMItem
	err := r.db.WithContext(ctx).
		Select("id", "order_id", "item_name").
		Find(&items).Error
	return items, err
}
