package aggregate

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/bitfantasy/nimo-cost/internal/cost/entity"
)

// 通知类型
const (
	NotifyCritical = "critical"  // 库存低于再订货点
	NotifyOverrun  = "overrun"   // 成本超支
	NotifySaving   = "saving"    // 成本节约
	NotifyNewOrder = "new_order" // 新订单
)

// Notification 通知项
type Notification struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	Href        string    `json:"href"`
	Read        bool      `json:"read"`
}

// 超支/节约告警阈值与数量上限
const (
	overrunThresholdPct = 5.0
	savingThresholdPct  = -3.0
	maxOverrunNotices   = 5
	maxSavingNotices    = 3
	overrunWindow       = 7 * 24 * time.Hour
	newOrderWindow      = 48 * time.Hour
)

// costGroup 日期+物料维度的成本汇总
type costGroup struct {
	material string
	planned  float64
	actual   float64
	latest   time.Time
}

// BuildNotifications 汇总三类通知：快照缺口告警、近7天超支/节约、近48小时新订单
// 快照表与库存项之间只有名称字符串关联，这里不做任何回查
func BuildNotifications(snapshots []entity.MaterialSnapshot, orders []entity.Order, now time.Time) []Notification {
	items := []Notification{}

	// 1. 库存缺口告警
	for i := range snapshots {
		m := &snapshots[i]
		if m.CurrentStock > m.ReorderLevel {
			continue
		}
		deficit := m.ReorderLevel - m.CurrentStock
		items = append(items, Notification{
			ID:    "crit-" + m.ID,
			Type:  NotifyCritical,
			Title: fmt.Sprintf("%s Below Reorder", m.MaterialName),
			Description: fmt.Sprintf("Stock: %g units (deficit: %g). Immediate reorder required.",
				m.CurrentStock, deficit),
			Timestamp: m.CreatedAt,
			Href:      "/inventory",
		})
	}

	// 2. 近7天成本超支/节约，按 日期+物料 汇总
	// 计划口径取该物料计划单价 × 实际消耗量
	weekAgo := now.Add(-overrunWindow)
	groups := map[string]*costGroup{}
	keys := []string{}
	for i := range orders {
		o := &orders[i]
		for j := range o.BOMItems {
			item := &o.BOMItems[j]
			for k := range item.Consumptions {
				ac := &item.Consumptions[k]
				if ac.ConsumedAt.Before(weekAgo) {
					continue
				}
				key := ac.ConsumedAt.Format("2006-01-02") + "-" + item.ItemName
				g, ok := groups[key]
				if !ok {
					g = &costGroup{material: item.ItemName}
					groups[key] = g
					keys = append(keys, key)
				}
				g.planned += ac.ActualQty * item.PlannedRate
				g.actual += ac.ActualAmount()
				if ac.ConsumedAt.After(g.latest) {
					g.latest = ac.ConsumedAt
				}
			}
		}
	}

	overruns, savings := 0, 0
	for _, key := range keys {
		g := groups[key]
		if g.planned == 0 {
			continue
		}
		pct := (g.actual - g.planned) / g.planned * 100
		switch {
		case pct > overrunThresholdPct && overruns < maxOverrunNotices:
			overruns++
			items = append(items, Notification{
				ID:    "overrun-" + key,
				Type:  NotifyOverrun,
				Title: fmt.Sprintf("%s Cost Overrun", g.material),
				Description: fmt.Sprintf("+%.1f%% over budget (₹%.0f excess)",
					pct, math.Round(g.actual-g.planned)),
				Timestamp: g.latest,
				Href:      "/reports",
			})
		case pct < savingThresholdPct && savings < maxSavingNotices:
			savings++
			items = append(items, Notification{
				ID:    "saving-" + key,
				Type:  NotifySaving,
				Title: fmt.Sprintf("%s Cost Savings", g.material),
				Description: fmt.Sprintf("%.1f%% under budget (₹%.0f saved)",
					math.Abs(pct), math.Abs(math.Round(g.actual-g.planned))),
				Timestamp: g.latest,
				Href:      "/reports",
			})
		}
	}

	// 3. 近48小时新订单
	twoDaysAgo := now.Add(-newOrderWindow)
	for i := range orders {
		o := &orders[i]
		if o.CreatedAt.Before(twoDaysAgo) {
			continue
		}
		items = append(items, Notification{
			ID:          "order-" + o.ID,
			Type:        NotifyNewOrder,
			Title:       fmt.Sprintf("New Order: %s", o.OrderNumber),
			Description: o.Description,
			Timestamp:   o.CreatedAt,
			Href:        "/planning",
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp.After(items[j].Timestamp)
	})
	return items
}

// ActivityItem 动态流条目
type ActivityItem struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	Status      string    `json:"status"`
}

// ActivityItems 把最近订单映射为动态流，最多10条，时间倒序
func ActivityItems(orders []entity.Order) []ActivityItem {
	items := make([]ActivityItem, 0, len(orders))
	for i := range orders {
		o := &orders[i]
		status := "warning"
		switch o.Status {
		case entity.OrderStatusCompleted:
			status = "success"
		case entity.OrderStatusDraft:
			status = "info"
		}
		items = append(items, ActivityItem{
			ID:          "order-" + o.ID,
			Type:        "order",
			Action:      fmt.Sprintf("Order %s", o.Status),
			Description: fmt.Sprintf("%s - %s", o.OrderNumber, o.Description),
			Timestamp:   o.CreatedAt,
			Status:      status,
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp.After(items[j].Timestamp)
	})
	if len(items) > 10 {
		items = items[:10]
	}
	return items
}
