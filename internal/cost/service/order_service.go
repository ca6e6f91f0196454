package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bitfantasy/nimo-cost/internal/cost/entity"
	"github.com/bitfantasy/nimo-cost/internal/cost/repository"
	"gorm.io/gorm"
)

// OrderService 生产订单与BOM行项的CRUD
type OrderService struct {
	orderRepo repository.OrderRepository
	bomRepo   repository.BOMItemRepository
	cache     *Cache
}

func NewOrderService(orderRepo repository.OrderRepository, bomRepo repository.BOMItemRepository, cache *Cache) *OrderService {
	return &OrderService{orderRepo: orderRepo, bomRepo: bomRepo, cache: cache}
}

type CreateOrderRequest struct {
	OrderNumber string `json:"order_number" binding:"required,max=50"`
	Description string `json:"description" binding:"required,max=200"`
	Status      string `json:"status"`
}

func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (*entity.Order, error) {
	status := req.Status
	if status == "" {
		status = entity.OrderStatusActive
	}
	if !entity.ValidOrderStatus(status) {
		return nil, fmt.Errorf("无效的订单状态: %s", status)
	}

	// 先查再插，不加锁：并发重复创建依赖唯一索引兜底
	if _, err := s.orderRepo.FindByOrderNumber(ctx, req.OrderNumber); err == nil {
		return nil, fmt.Errorf("订单号已存在: %s", req.OrderNumber)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("查询订单失败: %w", err)
	}

	order := &entity.Order{
		OrderNumber: req.OrderNumber,
		Description: req.Description,
		Status:      status,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("创建订单失败: %w", err)
	}
	s.cache.Invalidate(ctx, dashboardCacheKey)
	return order, nil
}

type UpdateOrderRequest struct {
	OrderNumber string `json:"order_number" binding:"required,max=50"`
	Description string `json:"description" binding:"required,max=200"`
	Status      string `json:"status" binding:"required"`
}

func (s *OrderService) Update(ctx context.Context, id string, req UpdateOrderRequest) (*entity.Order, error) {
	if !entity.ValidOrderStatus(req.Status) {
		return nil, fmt.Errorf("无效的订单状态: %s", req.Status)
	}
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("订单不存在: %w", err)
	}
	order.OrderNumber = req.OrderNumber
	order.Description = req.Description
	order.Status = req.Status
	order.BOMItems = nil
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("更新订单失败: %w", err)
	}
	s.cache.Invalidate(ctx, dashboardCacheKey)
	return order, nil
}

// Delete 删除订单，级联删除BOM行项与消耗记录
func (s *OrderService) Delete(ctx context.Context, id string) error {
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("删除订单失败: %w", err)
	}
	s.cache.Invalidate(ctx, dashboardCacheKey)
	return nil
}

func (s *OrderService) Get(ctx context.Context, id string) (*entity.Order, error) {
	return s.orderRepo.FindByID(ctx, id)
}

type CreateBOMItemRequest struct {
	ItemName    string  `json:"item_name" binding:"required,max=100"`
	PlannedQty  float64 `json:"planned_qty" binding:"required,gt=0"`
	PlannedRate float64 `json:"planned_rate" binding:"required,gt=0"`
	Unit        string  `json:"unit" binding:"max=20"`
}

func (s *OrderService) CreateBOMItem(ctx context.Context, orderID string, req CreateBOMItemRequest) (*entity.BOMItem, error) {
	if _, err := s.orderRepo.FindByID(ctx, orderID); err != nil {
		return nil, fmt.Errorf("订单不存在: %w", err)
	}
	unit := req.Unit
	if unit == "" {
		unit = "units"
	}
	item := &entity.BOMItem{
		OrderID:     orderID,
		ItemName:    req.ItemName,
		PlannedQty:  req.PlannedQty,
		PlannedRate: req.PlannedRate,
		Unit:        unit,
	}
	if err := s.bomRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("创建BOM行项失败: %w", err)
	}
	s.cache.Invalidate(ctx, dashboardCacheKey)
	return item, nil
}

type UpdateBOMItemRequest struct {
	ItemName    string  `json:"item_name" binding:"required,max=100"`
	PlannedQty  float64 `json:"planned_qty" binding:"required,gt=0"`
	PlannedRate float64 `json:"planned_rate" binding:"required,gt=0"`
	Unit        string  `json:"unit" binding:"max=20"`
}

func (s *OrderService) UpdateBOMItem(ctx context.Context, id string, req UpdateBOMItemRequest) (*entity.BOMItem, error) {
	item, err := s.bomRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("BOM行项不存在: %w", err)
	}
	item.ItemName = req.ItemName
	item.PlannedQty = req.PlannedQty
	item.PlannedRate = req.PlannedRate
	if req.Unit != "" {
		item.Unit = req.Unit
	}
	item.Consumptions = nil
	if err := s.bomRepo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("更新BOM行项失败: %w", err)
	}
	s.cache.Invalidate(ctx, dashboardCacheKey)
	return item, nil
}

func (s *OrderService) DeleteBOMItem(ctx context.Context, id string) error {
	if err := s.bomRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("删除BOM行项失败: %w", err)
	}
	s.cache.Invalidate(ctx, dashboardCacheKey)
	return nil
}
