// Package repository 持久层访问。接口化以便在测试中替换为内存实现，
// 所有依赖通过构造函数显式传入，不使用包级全局client
package repository

import (
	"context"

	"github.com/bitfantasy/nimo-cost/internal/cost/entity"
	"gorm.io/gorm"
)

// OrderRepository 生产订单
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	Update(ctx context.Context, order *entity.Order) error
	// Delete 级联删除BOM行项及其消耗记录
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*entity.Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*entity.Order, error)
	// ListNested 取全部订单并预载 BOM行项→消耗记录，创建时间升序
	ListNested(ctx context.Context) ([]entity.Order, error)
	ListRecent(ctx context.Context, limit int) ([]entity.Order, error)
}

// BOMItemRepository BOM行项
type BOMItemRepository interface {
	Create(ctx context.Context, item *entity.BOMItem) error
	Update(ctx context.Context, item *entity.BOMItem) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*entity.BOMItem, error)
	// ListByOrder 预载消耗记录，按物料名排序
	ListByOrder(ctx context.Context, orderID string) ([]entity.BOMItem, error)
	// ListAll 取全部行项（id+名称即可，报表导入用于名称匹配）
	ListAll(ctx context.Context) ([]entity.BOMItem, error)
}

// ConsumptionRepository 实际消耗记录
type ConsumptionRepository interface {
	Create(ctx context.Context, ac *entity.ActualConsumption) error
	Delete(ctx context.Context, id string) error
	ListByBOMItem(ctx context.Context, bomItemID string) ([]entity.ActualConsumption, error)
}

// InventoryRepository 库存项
type InventoryRepository interface {
	Create(ctx context.Context, item *entity.InventoryItem) error
	Update(ctx context.Context, item *entity.InventoryItem) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*entity.InventoryItem, error)
	// FindByName 精确匹配（区分大小写），找不到返回 gorm.ErrRecordNotFound
	FindByName(ctx context.Context, name string) (*entity.InventoryItem, error)
	List(ctx context.Context) ([]entity.InventoryItem, error)
}

// SnapshotRepository 物料库存快照（告警用）
type SnapshotRepository interface {
	Create(ctx context.Context, snap *entity.MaterialSnapshot) error
	List(ctx context.Context) ([]entity.MaterialSnapshot, error)
}

// Repositories 仓库集合
type Repositories struct {
	Order       OrderRepository
	BOMItem     BOMItemRepository
	Consumption ConsumptionRepository
	Inventory   InventoryRepository
	Snapshot    SnapshotRepository
}

// NewRepositories 创建gorm仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Order:       NewOrderRepository(db),
		BOMItem:     NewBOMItemRepository(db),
		Consumption: NewConsumptionRepository(db),
		Inventory:   NewInventoryRepository(db),
		Snapshot:    NewSnapshotRepository(db),
	}
}
