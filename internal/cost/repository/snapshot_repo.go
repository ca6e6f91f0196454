package repository

import (
	"context"

	"github.com/bitfantasy/nimo-cost/internal/cost/entity"
	"gorm.io/gorm"
)

type snapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) Create(ctx context.Context, snap *entity.MaterialSnapshot) error {
	return r.db.WithContext(ctx).Create(snap).Error
}

func (r *snapshotRepository) List(ctx context.Context) ([]entity.MaterialSnapshot, error) {
	var snaps []entity.MaterialSnapshot
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&snaps).Error
	return snaps, err
}
