package entity

import "gorm.io/gorm"

// AutoMigrate 自动迁移成本模块所有表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// 订单与BOM
		&Order{},
		&BOMItem{},
		&ActualConsumption{},

		// 库存
		&InventoryItem{},

		// 告警快照
		&MaterialSnapshot{},
	)
}
