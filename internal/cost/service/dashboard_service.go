package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-cost/internal/cost/aggregate"
	"github.com/bitfantasy/nimo-cost/internal/cost/repository"
)

// DashboardService 看板聚合。取数在这里完成，折叠全部委托给aggregate包的纯函数
type DashboardService struct {
	orderRepo repository.OrderRepository
	bomRepo   repository.BOMItemRepository
	invRepo   repository.InventoryRepository
	snapRepo  repository.SnapshotRepository
	cache     *Cache
}

func NewDashboardService(
	orderRepo repository.OrderRepository,
	bomRepo repository.BOMItemRepository,
	invRepo repository.InventoryRepository,
	snapRepo repository.SnapshotRepository,
	cache *Cache,
) *DashboardService {
	return &DashboardService{
		orderRepo: orderRepo,
		bomRepo:   bomRepo,
		invRepo:   invRepo,
		snapRepo:  snapRepo,
		cache:     cache,
	}
}

// GetOrdersWithVariance 订单级差异列表，创建时间倒序（含草稿）
func (s *DashboardService) GetOrdersWithVariance(ctx context.Context) ([]aggregate.OrderVarianceRow, error) {
	orders, err := s.orderRepo.ListNested(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询订单失败: %w", err)
	}
	rows := aggregate.OrderVarianceRows(orders)
	// ListNested 升序取回，列表展示按最新在前
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}

// GetBOMItemsWithVariance 某订单下BOM行项级差异
func (s *DashboardService) GetBOMItemsWithVariance(ctx context.Context, orderID string) ([]aggregate.BOMItemVarianceRow, error) {
	if _, err := s.orderRepo.FindByID(ctx, orderID); err != nil {
		return nil, fmt.Errorf("订单不存在: %w", err)
	}
	items, err := s.bomRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("查询BOM行项失败: %w", err)
	}
	return aggregate.BOMItemVarianceRows(items), nil
}

// GetDashboard 看板聚合，带30秒读缓存
func (s *DashboardService) GetDashboard(ctx context.Context) (*aggregate.Dashboard, error) {
	var cached aggregate.Dashboard
	if s.cache.Get(ctx, dashboardCacheKey, &cached) {
		return &cached, nil
	}

	orders, err := s.orderRepo.ListNested(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询订单失败: %w", err)
	}
	inventory, err := s.invRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询库存失败: %w", err)
	}

	dashboard := aggregate.BuildDashboard(orders, inventory)
	s.cache.Set(ctx, dashboardCacheKey, &dashboard, dashboardCacheTTL)
	return &dashboard, nil
}

// GetOrderChart 订单计划/实际对比图数据
func (s *DashboardService) GetOrderChart(ctx context.Context) ([]aggregate.ChartRow, error) {
	rows, err := s.GetOrdersWithVariance(ctx)
	if err != nil {
		return nil, err
	}
	return aggregate.OrderChartRows(rows), nil
}

// GetNotifications 告警通知：快照缺口、近7天超支/节约、近48小时新订单
func (s *DashboardService) GetNotifications(ctx context.Context) ([]aggregate.Notification, error) {
	snapshots, err := s.snapRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询库存快照失败: %w", err)
	}
	orders, err := s.orderRepo.ListNested(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询订单失败: %w", err)
	}
	return aggregate.BuildNotifications(snapshots, orders, time.Now()), nil
}

// GetActivity 最近订单动态流
func (s *DashboardService) GetActivity(ctx context.Context) ([]aggregate.ActivityItem, error) {
	orders, err := s.orderRepo.ListRecent(ctx, 10)
	if err != nil {
		return nil, fmt.Errorf("查询订单失败: %w", err)
	}
	return aggregate.ActivityItems(orders), nil
}
