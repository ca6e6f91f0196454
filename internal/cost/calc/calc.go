// Package calc 成本差异与库存阈值的纯计算，无I/O无副作用
package calc

// Variance 成本差异
// Diff > 0 表示实际超出计划（超支），Diff < 0 表示节约
type Variance struct {
	Diff      float64 `json:"diff"`
	Pct       float64 `json:"pct"`
	IsOverrun bool    `json:"is_overrun"`
}

// CalcVariance 计算计划/实际差异
// planned 为 0 时百分比返回 0，不产生 NaN/Inf
func CalcVariance(planned, actual float64) Variance {
	diff := actual - planned
	pct := 0.0
	if planned != 0 {
		pct = diff / planned * 100
	}
	return Variance{Diff: diff, Pct: pct, IsOverrun: diff > 0}
}

// ReorderLevel 再订货点 = 日均消耗 × 采购周期 + 安全库存
func ReorderLevel(dailyConsumption float64, leadTimeDays int, safetyStock float64) float64 {
	return dailyConsumption*float64(leadTimeDays) + safetyStock
}

// ReorderQty 建议补货量，不为负
func ReorderQty(currentStock, reorderLevel float64) float64 {
	if qty := reorderLevel - currentStock; qty > 0 {
		return qty
	}
	return 0
}

// 库存状态
const (
	StatusCritical = "critical"
	StatusWarning  = "warning"
	StatusSafe     = "safe"
)

// InventoryStatus 库存状态判定
// critical 判断必须先于 warning：minimumStock 与 reorderLevel 接近时区间会重叠
func InventoryStatus(currentStock, minimumStock, reorderLevel float64) string {
	if currentStock <= minimumStock {
		return StatusCritical
	}
	if currentStock <= reorderLevel {
		return StatusWarning
	}
	return StatusSafe
}
