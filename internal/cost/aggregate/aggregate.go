// Package aggregate 对已取回的订单/BOM/消耗/库存嵌套数据做纯折叠，
// 不做任何I/O，取数由service层完成后整体传入
package aggregate

import (
	"math"
	"sort"
	"time"

	"github.com/bitfantasy/nimo-cost/internal/cost/calc"
	"github.com/bitfantasy/nimo-cost/internal/cost/entity"
)

// 趋势图日期键格式（"02 Jan"）
const trendDateLayout = "02 Jan"

// OrderVarianceRow 订单级差异行
type OrderVarianceRow struct {
	ID           string    `json:"id"`
	OrderNumber  string    `json:"order_number"`
	Description  string    `json:"description"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	PlannedTotal float64   `json:"planned_total"`
	ActualTotal  float64   `json:"actual_total"`
	Variance     float64   `json:"variance"`
	VariancePct  float64   `json:"variance_pct"`
	BOMItemCount int       `json:"bom_item_count"`
}

// BOMItemVarianceRow BOM行项级差异行
// HasActuals 为 false 表示"无数据"，与 count>0 的零成本消耗语义不同
type BOMItemVarianceRow struct {
	ID               string  `json:"id"`
	OrderID          string  `json:"order_id"`
	ItemName         string  `json:"item_name"`
	PlannedQty       float64 `json:"planned_qty"`
	PlannedRate      float64 `json:"planned_rate"`
	PlannedAmount    float64 `json:"planned_amount"`
	Unit             string  `json:"unit"`
	ActualQty        float64 `json:"actual_qty"`
	ActualAmount     float64 `json:"actual_amount"`
	Variance         float64 `json:"variance"`
	VariancePct      float64 `json:"variance_pct"`
	ConsumptionCount int     `json:"consumption_count"`
	HasActuals       bool    `json:"has_actuals"`
}

// TrendPoint 差异趋势点
// 计划成本记在订单创建日，实际成本记在各消耗发生日，两条序列按日期键合并。
// 这种不对称是有意保留的：两条线只在汇总口径上可比
type TrendPoint struct {
	Date    string  `json:"date"`
	Planned float64 `json:"planned"`
	Actual  float64 `json:"actual"`
}

// SpendPoint 支出构成点（按物料实际成本排名）
type SpendPoint struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// BurnPoint 消耗速率点（按日汇总数量，非金额）
type BurnPoint struct {
	Date     string  `json:"date"`
	Quantity float64 `json:"quantity"`
}

// MRPException 再订货点异常（缺口从大到小）
type MRPException struct {
	ID           string  `json:"id"`
	MaterialName string  `json:"material_name"`
	CurrentStock float64 `json:"current_stock"`
	ReorderLevel float64 `json:"reorder_level"`
	Deficit      float64 `json:"deficit"`
}

// Dashboard 看板聚合结果
type Dashboard struct {
	NetVariance        float64 `json:"net_variance"`
	EfficiencyScore    float64 `json:"efficiency_score"`
	InventoryHealth    float64 `json:"inventory_health"`
	CriticalItemsCount int     `json:"critical_items_count"`
	ActiveOrdersCount  int     `json:"active_orders_count"`
	TotalMaterials     int     `json:"total_materials"`

	VarianceTrend    []TrendPoint   `json:"variance_trend"`
	SpendComposition []SpendPoint   `json:"spend_composition"`
	BurnRate         []BurnPoint    `json:"burn_rate"`
	MRPExceptions    []MRPException `json:"mrp_exceptions"`
}

// OrderVarianceRows 按订单折叠计划/实际总额
// 草稿订单也在列表中返回，只是不计入组合口径（见 BuildDashboard）
func OrderVarianceRows(orders []entity.Order) []OrderVarianceRow {
	rows := make([]OrderVarianceRow, 0, len(orders))
	for i := range orders {
		o := &orders[i]
		var plannedTotal, actualTotal float64
		for j := range o.BOMItems {
			item := &o.BOMItems[j]
			plannedTotal += item.PlannedAmount()
			for k := range item.Consumptions {
				actualTotal += item.Consumptions[k].ActualAmount()
			}
		}
		v := calc.CalcVariance(plannedTotal, actualTotal)
		rows = append(rows, OrderVarianceRow{
			ID:           o.ID,
			OrderNumber:  o.OrderNumber,
			Description:  o.Description,
			Status:       o.Status,
			CreatedAt:    o.CreatedAt,
			PlannedTotal: plannedTotal,
			ActualTotal:  actualTotal,
			Variance:     v.Diff,
			VariancePct:  v.Pct,
			BOMItemCount: len(o.BOMItems),
		})
	}
	return rows
}

// BOMItemVarianceRows 折叠单个订单下的BOM行项差异
func BOMItemVarianceRows(items []entity.BOMItem) []BOMItemVarianceRow {
	rows := make([]BOMItemVarianceRow, 0, len(items))
	for i := range items {
		item := &items[i]
		planned := item.PlannedAmount()
		var actualQty, actualAmount float64
		for j := range item.Consumptions {
			ac := &item.Consumptions[j]
			actualQty += ac.ActualQty
			actualAmount += ac.ActualAmount()
		}
		v := calc.CalcVariance(planned, actualAmount)
		rows = append(rows, BOMItemVarianceRow{
			ID:               item.ID,
			OrderID:          item.OrderID,
			ItemName:         item.ItemName,
			PlannedQty:       item.PlannedQty,
			PlannedRate:      item.PlannedRate,
			PlannedAmount:    planned,
			Unit:             item.Unit,
			ActualQty:        actualQty,
			ActualAmount:     actualAmount,
			Variance:         v.Diff,
			VariancePct:      v.Pct,
			ConsumptionCount: len(item.Consumptions),
			HasActuals:       len(item.Consumptions) > 0,
		})
	}
	return rows
}

// ChartRow 订单对比图行（非草稿且有计划金额的订单）
type ChartRow struct {
	Name     string  `json:"name"`
	Planned  float64 `json:"planned"`
	Actual   float64 `json:"actual"`
	Variance float64 `json:"variance"`
}

// OrderChartRows 从订单差异行筛选图表数据
func OrderChartRows(rows []OrderVarianceRow) []ChartRow {
	out := make([]ChartRow, 0, len(rows))
	for _, r := range rows {
		if r.Status == entity.OrderStatusDraft || r.PlannedTotal <= 0 {
			continue
		}
		out = append(out, ChartRow{
			Name:     r.OrderNumber,
			Planned:  math.Round(r.PlannedTotal),
			Actual:   math.Round(r.ActualTotal),
			Variance: math.Round(r.Variance),
		})
	}
	return out
}

// dateBucket 带原始日期的桶，输出前按日期升序排
type dateBucket struct {
	day     time.Time
	planned float64
	actual  float64
	qty     float64
}

// BuildDashboard 组合口径看板折叠
// 草稿订单整体排除；空库存表健康度按100处理
func BuildDashboard(orders []entity.Order, inventory []entity.InventoryItem) Dashboard {
	var totalPlanned, totalActual float64
	activeOrders := 0

	spendMap := map[string]float64{}
	spendOrder := []string{} // 物料首次出现顺序，保证并列时排序稳定
	trendMap := map[string]*dateBucket{}
	burnMap := map[string]*dateBucket{}

	bucket := func(m map[string]*dateBucket, ts time.Time) *dateBucket {
		day := ts.Truncate(24 * time.Hour)
		key := ts.Format(trendDateLayout)
		b, ok := m[key]
		if !ok {
			b = &dateBucket{day: day}
			m[key] = b
		}
		return b
	}

	for i := range orders {
		o := &orders[i]
		if o.Status == entity.OrderStatusDraft {
			continue
		}
		activeOrders++
		for j := range o.BOMItems {
			item := &o.BOMItems[j]
			planned := item.PlannedAmount()
			totalPlanned += planned

			// 计划成本计入订单创建日
			bucket(trendMap, o.CreatedAt).planned += planned

			for k := range item.Consumptions {
				ac := &item.Consumptions[k]
				amount := ac.ActualAmount()
				totalActual += amount

				if _, seen := spendMap[item.ItemName]; !seen {
					spendOrder = append(spendOrder, item.ItemName)
				}
				spendMap[item.ItemName] += amount

				// 实际成本计入消耗发生日
				bucket(trendMap, ac.ConsumedAt).actual += amount
				bucket(burnMap, ac.ConsumedAt).qty += ac.ActualQty
			}
		}
	}

	netVariance := totalActual - totalPlanned
	efficiencyScore := 100.0
	if totalActual != 0 {
		efficiencyScore = totalPlanned / totalActual * 100
	}

	// 库存健康度：current > reorderLevel 视为健康
	healthy, critical := 0, 0
	mrpExceptions := []MRPException{}
	for i := range inventory {
		inv := &inventory[i]
		rl := calc.ReorderLevel(inv.DailyConsumption, inv.LeadTimeDays, inv.SafetyStock)
		if inv.CurrentStock > rl {
			healthy++
			continue
		}
		critical++
		mrpExceptions = append(mrpExceptions, MRPException{
			ID:           inv.ID,
			MaterialName: inv.ItemName,
			CurrentStock: inv.CurrentStock,
			ReorderLevel: rl,
			Deficit:      rl - inv.CurrentStock,
		})
	}
	inventoryHealth := 100.0
	if len(inventory) > 0 {
		inventoryHealth = float64(healthy) / float64(len(inventory)) * 100
	}
	sort.SliceStable(mrpExceptions, func(i, j int) bool {
		return mrpExceptions[i].Deficit > mrpExceptions[j].Deficit
	})

	return Dashboard{
		NetVariance:        netVariance,
		EfficiencyScore:    efficiencyScore,
		InventoryHealth:    inventoryHealth,
		CriticalItemsCount: critical,
		ActiveOrdersCount:  activeOrders,
		TotalMaterials:     len(inventory),
		VarianceTrend:      trendPoints(trendMap),
		SpendComposition:   topSpend(spendMap, spendOrder, 5),
		BurnRate:           burnPoints(burnMap),
		MRPExceptions:      mrpExceptions,
	}
}

func trendPoints(m map[string]*dateBucket) []TrendPoint {
	keys := sortedBucketKeys(m)
	points := make([]TrendPoint, 0, len(keys))
	for _, k := range keys {
		b := m[k]
		points = append(points, TrendPoint{
			Date:    k,
			Planned: math.Round(b.planned),
			Actual:  math.Round(b.actual),
		})
	}
	return points
}

func burnPoints(m map[string]*dateBucket) []BurnPoint {
	keys := sortedBucketKeys(m)
	points := make([]BurnPoint, 0, len(keys))
	for _, k := range keys {
		points = append(points, BurnPoint{Date: k, Quantity: math.Round(m[k].qty)})
	}
	return points
}

func sortedBucketKeys(m map[string]*dateBucket) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return m[keys[i]].day.Before(m[keys[j]].day)
	})
	return keys
}

// topSpend 取实际成本最高的前N个物料，并列按首次出现顺序
func topSpend(m map[string]float64, order []string, n int) []SpendPoint {
	points := make([]SpendPoint, 0, len(order))
	for _, name := range order {
		points = append(points, SpendPoint{Name: name, Value: math.Round(m[name])})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Value > points[j].Value
	})
	if len(points) > n {
		points = points[:n]
	}
	return points
}
