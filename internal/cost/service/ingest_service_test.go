package service

import (
	"context"
	"strings"
	"testing"

	"github.com/bitfantasy/nimo-cost/internal/cost/repository"
	"github.com/bitfantasy/nimo-cost/internal/cost/repository/memory"
)

func newTestIngest(t *testing.T) (*IngestService, *repository.Repositories) {
	t.Helper()
	repos := memory.NewRepositories(memory.NewStore())
	return NewIngestService(repos, nil, nil), repos
}

func TestParseUploadType(t *testing.T) {
	for _, s := range []string{"inventory", "production", "reports"} {
		if _, err := ParseUploadType(s); err != nil {
			t.Errorf("ParseUploadType(%q) 应该成功: %v", s, err)
		}
	}
	if _, err := ParseUploadType("bom"); err == nil {
		t.Error("未知类型应报错")
	}
}

func TestIngestHeaderValidation(t *testing.T) {
	svc, _ := newTestIngest(t)
	ctx := context.Background()

	// 缺列整单拒绝
	_, err := svc.IngestRows(ctx, UploadInventory,
		[]string{"material_name", "quantity"},
		[][]string{{"Steel", "100"}})
	if err == nil {
		t.Fatal("缺少必需列时应整单拒绝")
	}
	if !strings.Contains(err.Error(), "unit") || !strings.Contains(err.Error(), "location") {
		t.Errorf("错误信息应列出全部缺失列: %v", err)
	}

	// 表头带BOM、\r、大小写和空白都应规格化通过
	res, err := svc.IngestRows(ctx, UploadInventory,
		[]string{"\uFEFFMaterial_Name", " QUANTITY \r", "Unit", "Location"},
		[][]string{{"Steel", "100", "kg", "A1"}})
	if err != nil {
		t.Fatalf("规格化后的表头应通过校验: %v", err)
	}
	if res.Inserted != 1 {
		t.Errorf("Inserted = %d, 期望 1", res.Inserted)
	}
}

func TestIngestEmptyRows(t *testing.T) {
	svc, _ := newTestIngest(t)
	if _, err := svc.IngestRows(context.Background(), UploadInventory,
		[]string{"material_name", "quantity", "unit", "location"}, nil); err == nil {
		t.Fatal("无数据行时应报错")
	}
}

func TestIngestInventoryCreateDefaults(t *testing.T) {
	svc, repos := newTestIngest(t)
	ctx := context.Background()

	res, err := svc.IngestRows(ctx, UploadInventory,
		[]string{"material_name", "quantity", "unit", "location"},
		[][]string{
			{"Steel", "100", "kg", "A1"},
			{"", "50", "kg", "A2"},       // 空名称跳过
			{"Copper", "abc", "kg", "A3"}, // 数量非数值跳过
		})
	if err != nil {
		t.Fatal(err)
	}
	if res.Inserted != 1 || res.Skipped != 2 {
		t.Fatalf("结果 = %+v, 期望 inserted=1 skipped=2", res)
	}

	item, err := repos.Inventory.FindByName(ctx, "Steel")
	if err != nil {
		t.Fatal(err)
	}
	if item.CurrentStock != 100 || item.Unit != "kg" {
		t.Errorf("现存量/单位 = %v/%v", item.CurrentStock, item.Unit)
	}
	// 新建阈值：20% / 30% / max(1, 5%) / 采购周期3天
	if item.MinimumStock != 20 || item.SafetyStock != 30 {
		t.Errorf("阈值 = %v/%v, 期望 20/30", item.MinimumStock, item.SafetyStock)
	}
	if item.DailyConsumption != 5 || item.LeadTimeDays != 3 {
		t.Errorf("日耗/周期 = %v/%v, 期望 5/3", item.DailyConsumption, item.LeadTimeDays)
	}
}

func TestIngestInventoryDailyFloor(t *testing.T) {
	svc, repos := newTestIngest(t)
	ctx := context.Background()

	// 5%取整后为0的小数量，日耗兜底为1
	if _, err := svc.IngestRows(ctx, UploadInventory,
		[]string{"material_name", "quantity", "unit", "location"},
		[][]string{{"Pigment", "8", "kg", ""}}); err != nil {
		t.Fatal(err)
	}
	item, err := repos.Inventory.FindByName(ctx, "Pigment")
	if err != nil {
		t.Fatal(err)
	}
	if item.DailyConsumption != 1 {
		t.Errorf("DailyConsumption = %v, 期望兜底为 1", item.DailyConsumption)
	}
}

func TestIngestInventoryUpdateKeepsThresholds(t *testing.T) {
	svc, repos := newTestIngest(t)
	ctx := context.Background()

	header := []string{"material_name", "quantity", "unit", "location"}
	if _, err := svc.IngestRows(ctx, UploadInventory, header,
		[][]string{{"Steel", "100", "kg", "A1"}}); err != nil {
		t.Fatal(err)
	}

	// 二次导入只更新现存量和单位，阈值保持首见值
	if _, err := svc.IngestRows(ctx, UploadInventory, header,
		[][]string{{"Steel", "500", "t", "A1"}}); err != nil {
		t.Fatal(err)
	}

	items, _ := repos.Inventory.List(ctx)
	if len(items) != 1 {
		t.Fatalf("同名物料重复导入不应重复建项, 得到 %d 项", len(items))
	}
	item := items[0]
	if item.CurrentStock != 500 || item.Unit != "t" {
		t.Errorf("现存量/单位 = %v/%v, 期望 500/t", item.CurrentStock, item.Unit)
	}
	if item.MinimumStock != 20 || item.SafetyStock != 30 || item.DailyConsumption != 5 {
		t.Errorf("阈值被覆盖: %+v", item)
	}

	// 名称匹配区分大小写，大小写不同按新物料建项
	if _, err := svc.IngestRows(ctx, UploadInventory, header,
		[][]string{{"STEEL", "10", "kg", ""}}); err != nil {
		t.Fatal(err)
	}
	items, _ = repos.Inventory.List(ctx)
	if len(items) != 2 {
		t.Errorf("大小写不同应建新项, 得到 %d 项", len(items))
	}
}

func TestIngestProductionBatches(t *testing.T) {
	svc, repos := newTestIngest(t)
	ctx := context.Background()

	header := []string{"material_name", "planned_qty", "unit_cost", "batch_id"}
	rows := [][]string{
		{"Steel", "100", "10", "PO-100"},
		{"Copper", "50", "20", "PO-100"},
		{"Resin", "30", "5", "PO-200"},
		{"Loose", "10", "1", ""}, // 无batch_id跳过
	}
	res, err := svc.IngestRows(ctx, UploadProduction, header, rows)
	if err != nil {
		t.Fatal(err)
	}
	if res.Inserted != 3 || res.Skipped != 1 {
		t.Fatalf("结果 = %+v, 期望 inserted=3 skipped=1", res)
	}

	order, err := repos.Order.FindByOrderNumber(ctx, "PO-100")
	if err != nil {
		t.Fatal(err)
	}
	if order.Status != "active" {
		t.Errorf("导入订单状态 = %s, 期望 active", order.Status)
	}
	if order.Description != "CSV Import — PO-100" {
		t.Errorf("订单描述 = %q", order.Description)
	}
	items, _ := repos.BOMItem.ListByOrder(ctx, order.ID)
	if len(items) != 2 {
		t.Fatalf("PO-100 行项数 = %d, 期望 2", len(items))
	}
	if items[0].Unit != "units" {
		t.Errorf("BOM行项单位 = %q, 期望 units", items[0].Unit)
	}

	if _, err := repos.Order.FindByOrderNumber(ctx, "PO-200"); err != nil {
		t.Errorf("PO-200 订单未创建: %v", err)
	}
}

func TestIngestProductionRerunDuplicatesItems(t *testing.T) {
	svc, repos := newTestIngest(t)
	ctx := context.Background()

	header := []string{"material_name", "planned_qty", "unit_cost", "batch_id"}
	rows := [][]string{{"Steel", "100", "10", "PO-100"}}

	for i := 0; i < 2; i++ {
		if _, err := svc.IngestRows(ctx, UploadProduction, header, rows); err != nil {
			t.Fatal(err)
		}
	}

	// 订单按订单号去重，行项无幂等会重复
	orders, _ := repos.Order.ListNested(ctx)
	if len(orders) != 1 {
		t.Fatalf("重复导入不应重复建订单, 得到 %d", len(orders))
	}
	if len(orders[0].BOMItems) != 2 {
		t.Errorf("重复导入行项数 = %d, 期望 2", len(orders[0].BOMItems))
	}
}

func TestIngestReports(t *testing.T) {
	svc, repos := newTestIngest(t)
	ctx := context.Background()

	// 先铺底一个带BOM行项的订单
	if _, err := svc.IngestRows(ctx, UploadProduction,
		[]string{"material_name", "planned_qty", "unit_cost", "batch_id"},
		[][]string{{"Steel Plate", "100", "10", "PO-100"}}); err != nil {
		t.Fatal(err)
	}
	order, _ := repos.Order.FindByOrderNumber(ctx, "PO-100")
	items, _ := repos.BOMItem.ListByOrder(ctx, order.ID)
	bomItemID := items[0].ID

	res, err := svc.IngestRows(ctx, UploadReports,
		[]string{"date", "material_name", "actual_qty", "actual_cost"},
		[][]string{
			{"2026-03-02", "steel plate", "40", "440"}, // 名称匹配不区分大小写
			{"2026-03-03", "Unknown", "10", "100"},     // 匹配不到跳过
			{"", "Steel Plate", "0", "50"},             // 数量为0时单价置0
		})
	if err != nil {
		t.Fatal(err)
	}
	if res.Inserted != 2 || res.Skipped != 1 {
		t.Fatalf("结果 = %+v, 期望 inserted=2 skipped=1", res)
	}

	acs, err := repos.Consumption.ListByBOMItem(ctx, bomItemID)
	if err != nil {
		t.Fatal(err)
	}
	if len(acs) != 2 {
		t.Fatalf("消耗记录数 = %d, 期望 2", len(acs))
	}

	var withDate, noDate bool
	for _, ac := range acs {
		if ac.Reason != "normal" {
			t.Errorf("导入消耗原因 = %q, 期望 normal", ac.Reason)
		}
		switch ac.Notes {
		case "CSV Import — 2026-03-02":
			withDate = true
			if ac.ActualRate != 11 {
				t.Errorf("单价 = %v, 期望 440/40 = 11", ac.ActualRate)
			}
			if got := ac.ConsumedAt.Format("2006-01-02"); got != "2026-03-02" {
				t.Errorf("消耗日期 = %s, 期望 2026-03-02", got)
			}
		case "CSV Import — no date":
			noDate = true
			if ac.ActualRate != 0 {
				t.Errorf("数量为0时单价 = %v, 期望 0", ac.ActualRate)
			}
		default:
			t.Errorf("意外的备注: %q", ac.Notes)
		}
	}
	if !withDate || !noDate {
		t.Errorf("缺少期望的备注记录: withDate=%v noDate=%v", withDate, noDate)
	}
}

func TestIngestReportsRateRounding(t *testing.T) {
	svc, repos := newTestIngest(t)
	ctx := context.Background()

	if _, err := svc.IngestRows(ctx, UploadProduction,
		[]string{"material_name", "planned_qty", "unit_cost", "batch_id"},
		[][]string{{"Resin", "10", "3", "PO-1"}}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.IngestRows(ctx, UploadReports,
		[]string{"date", "material_name", "actual_qty", "actual_cost"},
		[][]string{{"2026-03-01", "Resin", "3", "10"}}); err != nil {
		t.Fatal(err)
	}

	order, _ := repos.Order.FindByOrderNumber(ctx, "PO-1")
	items, _ := repos.BOMItem.ListByOrder(ctx, order.ID)
	acs, _ := repos.Consumption.ListByBOMItem(ctx, items[0].ID)
	if len(acs) != 1 {
		t.Fatal("期望 1 条消耗记录")
	}
	// 10/3 = 3.333... 保留两位
	if acs[0].ActualRate != 3.33 {
		t.Errorf("单价 = %v, 期望 3.33", acs[0].ActualRate)
	}
}

func TestIngestCSVEndToEnd(t *testing.T) {
	svc, repos := newTestIngest(t)
	ctx := context.Background()

	csvData := "\uFEFFmaterial_name,quantity,unit,location\r\nSteel,100,kg,A1\r\nCopper,200,kg,A2\r\n"
	res, err := svc.IngestCSV(ctx, UploadInventory, strings.NewReader(csvData))
	if err != nil {
		t.Fatal(err)
	}
	if res.Inserted != 2 || res.Skipped != 0 {
		t.Fatalf("结果 = %+v, 期望 inserted=2", res)
	}
	if _, err := repos.Inventory.FindByName(ctx, "Copper"); err != nil {
		t.Errorf("Copper 未入库: %v", err)
	}
}

func TestIngestCSVEmptyFile(t *testing.T) {
	svc, _ := newTestIngest(t)
	if _, err := svc.IngestCSV(context.Background(), UploadInventory, strings.NewReader("")); err == nil {
		t.Fatal("空文件应报错")
	}
}
