package entity

import (
	"time"
)

// OrderStatus 生产订单状态
const (
	OrderStatusDraft     = "draft"     // 草稿（不计入汇总）
	OrderStatusActive    = "active"    // 进行中
	OrderStatusCompleted = "completed" // 已完成
)

// ConsumptionReason 实际消耗原因
const (
	ReasonNormal            = "normal"             // 正常消耗
	ReasonEmergency         = "emergency"          // 紧急采购
	ReasonScopeChange       = "scope_change"       // 需求变更
	ReasonMarketFluctuation = "market_fluctuation" // 市场价格波动
	ReasonSupplierDelay     = "supplier_delay"     // 供应商延期
)

// ValidOrderStatus 校验订单状态取值
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusDraft, OrderStatusActive, OrderStatusCompleted:
		return true
	}
	return false
}

// ValidConsumptionReason 校验消耗原因取值
func ValidConsumptionReason(r string) bool {
	switch r {
	case ReasonNormal, ReasonEmergency, ReasonScopeChange,
		ReasonMarketFluctuation, ReasonSupplierDelay:
		return true
	}
	return false
}

// Order 生产订单
// 删除订单时级联删除其BOM行项及行项下的消耗记录
type Order struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	OrderNumber string    `json:"order_number" gorm:"size:50;not null;uniqueIndex"`
	Description string    `json:"description" gorm:"size:200;not null"`
	Status      string    `json:"status" gorm:"size:10;not null;default:draft"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	BOMItems []BOMItem `json:"bom_items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (Order) TableName() string {
	return "cost_orders"
}

// BOMItem BOM行项（计划口径）
// 计划金额 = PlannedQty × PlannedRate，派生值不落库，读取时重算避免漂移
type BOMItem struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	OrderID     string    `json:"order_id" gorm:"type:uuid;not null;index"`
	ItemName    string    `json:"item_name" gorm:"size:100;not null"`
	PlannedQty  float64   `json:"planned_qty" gorm:"type:decimal(12,3);not null"`
	PlannedRate float64   `json:"planned_rate" gorm:"type:decimal(12,2);not null"`
	Unit        string    `json:"unit" gorm:"size:20;not null;default:units"`
	CreatedAt   time.Time `json:"created_at"`

	Consumptions []ActualConsumption `json:"actual_consumptions,omitempty" gorm:"foreignKey:BOMItemID;constraint:OnDelete:CASCADE"`
}

func (BOMItem) TableName() string {
	return "cost_bom_items"
}

// PlannedAmount 计划金额
func (b *BOMItem) PlannedAmount() float64 {
	return b.PlannedQty * b.PlannedRate
}

// ActualConsumption 实际消耗记录
// 一条记录代表一次领用事件，同一BOM行项可以有多条，不做覆盖
type ActualConsumption struct {
	ID         string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	BOMItemID  string    `json:"bom_item_id" gorm:"type:uuid;not null;index"`
	ActualQty  float64   `json:"actual_qty" gorm:"type:decimal(12,3);not null"`
	ActualRate float64   `json:"actual_rate" gorm:"type:decimal(12,2);not null"`
	Reason     string    `json:"reason" gorm:"size:20;not null;default:normal"`
	Notes      string    `json:"notes" gorm:"size:500"`
	ConsumedAt time.Time `json:"consumed_at" gorm:"not null"`
}

func (ActualConsumption) TableName() string {
	return "cost_actual_consumptions"
}

// ActualAmount 单条消耗金额
func (a *ActualConsumption) ActualAmount() float64 {
	return a.ActualQty * a.ActualRate
}
