// Package memory 仓库接口的内存实现，测试中替代数据库。
// 未命中统一返回 gorm.ErrRecordNotFound，与gorm实现保持同构
package memory

import (
	"sync"
	"time"

	"github.com/bitfantasy/nimo-cost/internal/cost/entity"
	"github.com/bitfantasy/nimo-cost/internal/cost/repository"
	"github.com/google/uuid"
)

// Store 五张表的内存镜像，各仓库共享同一实例以保证级联语义
type Store struct {
	mu           sync.RWMutex
	orders       []entity.Order
	bomItems     []entity.BOMItem
	consumptions []entity.ActualConsumption
	inventory    []entity.InventoryItem
	snapshots    []entity.MaterialSnapshot
}

// NewStore 创建空内存存储
func NewStore() *Store {
	return &Store{}
}

// NewRepositories 基于同一个内存存储创建仓库集合
func NewRepositories(s *Store) *repository.Repositories {
	return &repository.Repositories{
		Order:       &orderRepository{s},
		BOMItem:     &bomItemRepository{s},
		Consumption: &consumptionRepository{s},
		Inventory:   &inventoryRepository{s},
		Snapshot:    &snapshotRepository{s},
	}
}

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.New().String()
	}
}

func ensureTime(t *time.Time) {
	if t.IsZero() {
		*t = time.Now()
	}
}
