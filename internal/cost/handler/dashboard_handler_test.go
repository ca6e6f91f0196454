package handler_test

import (
	"net/http"
	"testing"

	"github.com/bitfantasy/nimo-cost/internal/cost/testutil"
)

func TestDashboardAggregation(t *testing.T) {
	router, _ := testutil.SetupAPI()
	token := testutil.DefaultTestToken()

	// 订单：计划1000，实际440+600=1040 → 超支40
	w := testutil.DoRequest(router, "POST", "/api/v1/cost/orders",
		map[string]interface{}{"order_number": "PO-1", "description": "看板测试批次"}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("创建订单失败: %d %s", w.Code, w.Body.String())
	}
	orderID := testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)

	w = testutil.DoRequest(router, "POST", "/api/v1/cost/orders/"+orderID+"/bom-items",
		map[string]interface{}{"item_name": "钢板", "planned_qty": 100.0, "planned_rate": 10.0}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("创建BOM行项失败: %d", w.Code)
	}
	bomItemID := testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)

	for _, c := range []struct{ qty, rate float64 }{{40, 11}, {50, 12}} {
		w = testutil.DoRequest(router, "POST", "/api/v1/cost/bom-items/"+bomItemID+"/consumptions",
			map[string]interface{}{"actual_qty": c.qty, "actual_rate": c.rate, "reason": "normal"}, token)
		if w.Code != http.StatusCreated {
			t.Fatalf("登记消耗失败: %d %s", w.Code, w.Body.String())
		}
	}

	// 草稿订单不进组合口径
	w = testutil.DoRequest(router, "POST", "/api/v1/cost/orders",
		map[string]interface{}{"order_number": "PO-DRAFT", "description": "草稿", "status": "draft"}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("创建草稿订单失败: %d", w.Code)
	}

	w = testutil.DoRequest(router, "GET", "/api/v1/cost/dashboard", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	dash := testutil.ParseResponse(w)["data"].(map[string]interface{})

	if dash["net_variance"].(float64) != 40 {
		t.Errorf("net_variance = %v, 期望 40", dash["net_variance"])
	}
	if dash["active_orders_count"].(float64) != 1 {
		t.Errorf("active_orders_count = %v, 期望 1（草稿不计入）", dash["active_orders_count"])
	}

	trend := dash["variance_trend"].([]interface{})
	if len(trend) == 0 {
		t.Fatal("variance_trend 为空")
	}

	// 图表数据
	w = testutil.DoRequest(router, "GET", "/api/v1/cost/dashboard/chart", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	chart := testutil.ParseResponse(w)["data"].(map[string]interface{})["items"].([]interface{})
	if len(chart) != 1 {
		t.Fatalf("图表行数 = %d, 期望 1（草稿订单排除）", len(chart))
	}
	row := chart[0].(map[string]interface{})
	if row["variance"].(float64) != 40 {
		t.Errorf("图表 variance = %v, 期望 40", row["variance"])
	}

	// 最近动态
	w = testutil.DoRequest(router, "GET", "/api/v1/cost/dashboard/activity", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	activity := testutil.ParseResponse(w)["data"].(map[string]interface{})["items"].([]interface{})
	if len(activity) != 2 {
		t.Errorf("动态数 = %d, 期望 2", len(activity))
	}

	// 通知：快照缺口 + 成本异常
	w = testutil.DoRequest(router, "POST", "/api/v1/cost/snapshots",
		map[string]interface{}{"material_name": "钢板", "current_stock": 12.0, "reorder_level": 40.0}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("创建快照失败: %d", w.Code)
	}
	w = testutil.DoRequest(router, "GET", "/api/v1/cost/dashboard/notifications", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	notifications := testutil.ParseResponse(w)["data"].(map[string]interface{})["items"].([]interface{})
	if len(notifications) == 0 {
		t.Fatal("通知列表为空，期望至少有缺料告警")
	}
}
