package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bitfantasy/nimo-cost/internal/cost/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Services 成本模块服务集合
type Services struct {
	Order       *OrderService
	Consumption *ConsumptionService
	Inventory   *InventoryService
	Dashboard   *DashboardService
	Ingest      *IngestService
}

// NewServices 创建服务集合。rdb 可为 nil，此时看板缓存退化为每次重算
func NewServices(repos *repository.Repositories, rdb *redis.Client, logger *zap.Logger) *Services {
	cache := NewCache(rdb, logger)
	return &Services{
		Order:       NewOrderService(repos.Order, repos.BOMItem, cache),
		Consumption: NewConsumptionService(repos.Consumption, repos.BOMItem, cache),
		Inventory:   NewInventoryService(repos.Inventory, repos.Snapshot, cache),
		Dashboard:   NewDashboardService(repos.Order, repos.BOMItem, repos.Inventory, repos.Snapshot, cache),
		Ingest:      NewIngestService(repos, cache, logger),
	}
}

// 看板聚合缓存键与TTL
// 写操作只做失效，不做同步更新；30秒与前端请求缓存的stale窗口一致
const (
	dashboardCacheKey = "nimo-cost:dashboard"
	dashboardCacheTTL = 30 * time.Second
)

// Cache 基于redis的读缓存，nil安全：没有redis时全部走重算
type Cache struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewCache(rdb *redis.Client, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{rdb: rdb, logger: logger}
}

// Get 命中时反序列化到v并返回true；redis异常按未命中处理
func (c *Cache) Get(ctx context.Context, key string, v interface{}) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		c.logger.Warn("缓存内容损坏，按未命中处理", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Set 写入缓存，失败只记日志不影响主流程
func (c *Cache) Set(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	if c == nil || c.rdb == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.Warn("写入缓存失败", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate 写操作之后失效相关键
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("失效缓存失败", zap.Strings("keys", keys), zap.Error(err))
	}
}
