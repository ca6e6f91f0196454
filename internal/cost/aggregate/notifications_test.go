package aggregate

import (
	"strings"
	"testing"
	"time"

	"github.com/bitfantasy/nimo-cost/internal/cost/entity"
)

func TestBuildNotificationsCriticalStock(t *testing.T) {
	now := day(2026, 3, 10)
	snapshots := []entity.MaterialSnapshot{
		{ID: "m1", MaterialName: "Denim Fabric", CurrentStock: 12, ReorderLevel: 40, CreatedAt: day(2026, 3, 9)},
		{ID: "m2", MaterialName: "Thread", CurrentStock: 500, ReorderLevel: 100, CreatedAt: day(2026, 3, 9)},
	}
	items := BuildNotifications(snapshots, nil, now)
	if len(items) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(items))
	}
	n := items[0]
	if n.Type != NotifyCritical {
		t.Errorf("Type = %q, want critical", n.Type)
	}
	if !strings.Contains(n.Description, "deficit: 28") {
		t.Errorf("Description = %q, want deficit 28", n.Description)
	}
}

func TestBuildNotificationsOverrunAndSaving(t *testing.T) {
	now := day(2026, 3, 10)
	order := entity.Order{
		ID: "o1", OrderNumber: "PO-9", Status: entity.OrderStatusActive,
		CreatedAt: day(2026, 2, 1), // 不在48小时窗口内
		BOMItems: []entity.BOMItem{
			{
				ID: "b1", ItemName: "Steel", PlannedQty: 100, PlannedRate: 10,
				Consumptions: []entity.ActualConsumption{
					// 计划口径 50×10=500，实际 50×12=600 → +20% 超支
					{ActualQty: 50, ActualRate: 12, ConsumedAt: day(2026, 3, 8)},
				},
			},
			{
				ID: "b2", ItemName: "Foam", PlannedQty: 100, PlannedRate: 10,
				Consumptions: []entity.ActualConsumption{
					// 计划口径 50×10=500，实际 50×9=450 → −10% 节约
					{ActualQty: 50, ActualRate: 9, ConsumedAt: day(2026, 3, 8)},
					// 窗口外的消耗不参与
					{ActualQty: 999, ActualRate: 99, ConsumedAt: day(2026, 1, 1)},
				},
			},
		},
	}
	items := BuildNotifications(nil, []entity.Order{order}, now)

	var overrun, saving *Notification
	for i := range items {
		switch items[i].Type {
		case NotifyOverrun:
			overrun = &items[i]
		case NotifySaving:
			saving = &items[i]
		}
	}
	if overrun == nil || !strings.Contains(overrun.Title, "Steel") {
		t.Fatalf("missing Steel overrun notification: %+v", items)
	}
	if !strings.Contains(overrun.Description, "+20.0%") {
		t.Errorf("overrun description = %q", overrun.Description)
	}
	if saving == nil || !strings.Contains(saving.Title, "Foam") {
		t.Fatalf("missing Foam saving notification: %+v", items)
	}
}

func TestBuildNotificationsNewOrders(t *testing.T) {
	now := day(2026, 3, 10)
	orders := []entity.Order{
		{ID: "o1", OrderNumber: "PO-NEW", Description: "急单", CreatedAt: now.Add(-3 * time.Hour), Status: entity.OrderStatusActive},
		{ID: "o2", OrderNumber: "PO-OLD", Description: "旧单", CreatedAt: now.Add(-80 * time.Hour), Status: entity.OrderStatusActive},
	}
	items := BuildNotifications(nil, orders, now)
	if len(items) != 1 {
		t.Fatalf("expected 1 new-order notification, got %d", len(items))
	}
	if items[0].Type != NotifyNewOrder || !strings.Contains(items[0].Title, "PO-NEW") {
		t.Errorf("notification = %+v", items[0])
	}
}

func TestActivityItems(t *testing.T) {
	var orders []entity.Order
	base := day(2026, 3, 1)
	for i := 0; i < 12; i++ {
		orders = append(orders, entity.Order{
			ID:          string(rune('a' + i)),
			OrderNumber: "PO",
			Status:      entity.OrderStatusCompleted,
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		})
	}
	items := ActivityItems(orders)
	if len(items) != 10 {
		t.Fatalf("expected 10 items, got %d", len(items))
	}
	// 时间倒序
	if !items[0].Timestamp.After(items[1].Timestamp) {
		t.Error("activity items must be sorted newest first")
	}
	if items[0].Status != "success" {
		t.Errorf("completed order status = %q, want success", items[0].Status)
	}
}
