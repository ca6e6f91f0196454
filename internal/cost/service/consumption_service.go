package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-cost/internal/cost/entity"
	"github.com/bitfantasy/nimo-cost/internal/cost/repository"
)

// ConsumptionService 实际消耗记录的登记与删除
type ConsumptionService struct {
	acRepo  repository.ConsumptionRepository
	bomRepo repository.BOMItemRepository
	cache   *Cache
}

func NewConsumptionService(acRepo repository.ConsumptionRepository, bomRepo repository.BOMItemRepository, cache *Cache) *ConsumptionService {
	return &ConsumptionService{acRepo: acRepo, bomRepo: bomRepo, cache: cache}
}

type CreateConsumptionRequest struct {
	ActualQty  float64 `json:"actual_qty" binding:"required,gt=0"`
	ActualRate float64 `json:"actual_rate" binding:"required,gt=0"`
	Reason     string  `json:"reason" binding:"required"`
	Notes      string  `json:"notes" binding:"max=500"`
}

// Create 登记一次消耗事件；同一BOM行项允许多条记录，互不覆盖
func (s *ConsumptionService) Create(ctx context.Context, bomItemID string, req CreateConsumptionRequest) (*entity.ActualConsumption, error) {
	if !entity.ValidConsumptionReason(req.Reason) {
		return nil, fmt.Errorf("无效的消耗原因: %s", req.Reason)
	}
	if _, err := s.bomRepo.FindByID(ctx, bomItemID); err != nil {
		return nil, fmt.Errorf("BOM行项不存在: %w", err)
	}
	ac := &entity.ActualConsumption{
		BOMItemID:  bomItemID,
		ActualQty:  req.ActualQty,
		ActualRate: req.ActualRate,
		Reason:     req.Reason,
		Notes:      req.Notes,
		ConsumedAt: time.Now(),
	}
	if err := s.acRepo.Create(ctx, ac); err != nil {
		return nil, fmt.Errorf("登记消耗失败: %w", err)
	}
	s.cache.Invalidate(ctx, dashboardCacheKey)
	return ac, nil
}

func (s *ConsumptionService) ListByBOMItem(ctx context.Context, bomItemID string) ([]entity.ActualConsumption, error) {
	return s.acRepo.ListByBOMItem(ctx, bomItemID)
}

func (s *ConsumptionService) Delete(ctx context.Context, id string) error {
	if err := s.acRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("删除消耗记录失败: %w", err)
	}
	s.cache.Invalidate(ctx, dashboardCacheKey)
	return nil
}
