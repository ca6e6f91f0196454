package entity

import (
	"time"
)

// InventoryItem 库存项（独立实体，不关联订单/BOM）
type InventoryItem struct {
	ID               string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ItemName         string    `json:"item_name" gorm:"size:100;not null;index"`
	CurrentStock     float64   `json:"current_stock" gorm:"type:decimal(12,3);not null"`
	MinimumStock     float64   `json:"minimum_stock" gorm:"type:decimal(12,3);not null"`
	SafetyStock      float64   `json:"safety_stock" gorm:"type:decimal(12,3);not null"`
	DailyConsumption float64   `json:"daily_consumption" gorm:"type:decimal(12,3);not null"`
	LeadTimeDays     int       `json:"lead_time_days" gorm:"not null"`
	Unit             string    `json:"unit" gorm:"size:20;not null;default:units"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (InventoryItem) TableName() string {
	return "cost_inventory_items"
}

// MaterialSnapshot 物料库存快照，仅用于缺口告警
// 与 InventoryItem 只靠名称字符串关联，没有外键约束，匹配是尽力而为
type MaterialSnapshot struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	MaterialName string    `json:"material_name" gorm:"size:100;not null;index"`
	CurrentStock float64   `json:"current_stock" gorm:"type:decimal(12,3);not null"`
	ReorderLevel float64   `json:"reorder_level" gorm:"type:decimal(12,3);not null"`
	CreatedAt    time.Time `json:"created_at"`
}

func (MaterialSnapshot) TableName() string {
	return "material_inventory"
}
