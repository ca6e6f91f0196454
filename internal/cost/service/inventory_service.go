package service

import (
	"context"
	"fmt"

	"github.com/bitfantasy/nimo-cost/internal/cost/calc"
	"github.com/bitfantasy/nimo-cost/internal/cost/entity"
	"github.com/bitfantasy/nimo-cost/internal/cost/repository"
)

// InventoryService 库存项CRUD与再订货点视图
type InventoryService struct {
	repo     repository.InventoryRepository
	snapRepo repository.SnapshotRepository
	cache    *Cache
}

func NewInventoryService(repo repository.InventoryRepository, snapRepo repository.SnapshotRepository, cache *Cache) *InventoryService {
	return &InventoryService{repo: repo, snapRepo: snapRepo, cache: cache}
}

type InventoryItemRequest struct {
	ItemName         string  `json:"item_name" binding:"required,max=100"`
	CurrentStock     float64 `json:"current_stock" binding:"min=0"`
	MinimumStock     float64 `json:"minimum_stock" binding:"min=0"`
	SafetyStock      float64 `json:"safety_stock" binding:"min=0"`
	DailyConsumption float64 `json:"daily_consumption" binding:"required,gt=0"`
	LeadTimeDays     int     `json:"lead_time_days" binding:"required,gt=0"`
	Unit             string  `json:"unit" binding:"max=20"`
}

// InventoryView 库存项及其派生字段
// 派生值读取时重算，不落库
type InventoryView struct {
	entity.InventoryItem
	ReorderLevel float64 `json:"reorder_level"`
	ReorderQty   float64 `json:"reorder_qty"`
	Status       string  `json:"status"`
}

func newInventoryView(item entity.InventoryItem) InventoryView {
	rl := calc.ReorderLevel(item.DailyConsumption, item.LeadTimeDays, item.SafetyStock)
	return InventoryView{
		InventoryItem: item,
		ReorderLevel:  rl,
		ReorderQty:    calc.ReorderQty(item.CurrentStock, rl),
		Status:        calc.InventoryStatus(item.CurrentStock, item.MinimumStock, rl),
	}
}

func (s *InventoryService) Create(ctx context.Context, req InventoryItemRequest) (*InventoryView, error) {
	item := &entity.InventoryItem{
		ItemName:         req.ItemName,
		CurrentStock:     req.CurrentStock,
		MinimumStock:     req.MinimumStock,
		SafetyStock:      req.SafetyStock,
		DailyConsumption: req.DailyConsumption,
		LeadTimeDays:     req.LeadTimeDays,
		Unit:             defaultUnit(req.Unit),
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("创建库存项失败: %w", err)
	}
	s.cache.Invalidate(ctx, dashboardCacheKey)
	view := newInventoryView(*item)
	return &view, nil
}

func (s *InventoryService) Update(ctx context.Context, id string, req InventoryItemRequest) (*InventoryView, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("库存项不存在: %w", err)
	}
	item.ItemName = req.ItemName
	item.CurrentStock = req.CurrentStock
	item.MinimumStock = req.MinimumStock
	item.SafetyStock = req.SafetyStock
	item.DailyConsumption = req.DailyConsumption
	item.LeadTimeDays = req.LeadTimeDays
	item.Unit = defaultUnit(req.Unit)
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("更新库存项失败: %w", err)
	}
	s.cache.Invalidate(ctx, dashboardCacheKey)
	view := newInventoryView(*item)
	return &view, nil
}

func (s *InventoryService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("删除库存项失败: %w", err)
	}
	s.cache.Invalidate(ctx, dashboardCacheKey)
	return nil
}

// List 全部库存项及派生状态
func (s *InventoryService) List(ctx context.Context) ([]InventoryView, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询库存失败: %w", err)
	}
	views := make([]InventoryView, 0, len(items))
	for _, item := range items {
		views = append(views, newInventoryView(item))
	}
	return views, nil
}

// Alerts 处于 critical / warning 的库存项
func (s *InventoryService) Alerts(ctx context.Context) ([]InventoryView, error) {
	views, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	alerts := views[:0]
	for _, v := range views {
		if v.Status != calc.StatusSafe {
			alerts = append(alerts, v)
		}
	}
	return alerts, nil
}

type SnapshotRequest struct {
	MaterialName string  `json:"material_name" binding:"required,max=100"`
	CurrentStock float64 `json:"current_stock" binding:"min=0"`
	ReorderLevel float64 `json:"reorder_level" binding:"min=0"`
}

// CreateSnapshot 记录一条物料库存快照（仅告警用，与库存项只靠名称弱关联）
func (s *InventoryService) CreateSnapshot(ctx context.Context, req SnapshotRequest) (*entity.MaterialSnapshot, error) {
	snap := &entity.MaterialSnapshot{
		MaterialName: req.MaterialName,
		CurrentStock: req.CurrentStock,
		ReorderLevel: req.ReorderLevel,
	}
	if err := s.snapRepo.Create(ctx, snap); err != nil {
		return nil, fmt.Errorf("创建库存快照失败: %w", err)
	}
	return snap, nil
}

func (s *InventoryService) ListSnapshots(ctx context.Context) ([]entity.MaterialSnapshot, error) {
	return s.snapRepo.List(ctx)
}

func defaultUnit(unit string) string {
	if unit == "" {
		return "units"
	}
	return unit
}
