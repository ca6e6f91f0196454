package calc

import (
	"math"
	"testing"
)

func TestCalcVariance(t *testing.T) {
	tests := []struct {
		name      string
		planned   float64
		actual    float64
		wantDiff  float64
		wantPct   float64
		wantOver  bool
	}{
		{"overrun", 1000, 1040, 40, 4.0, true},
		{"savings", 1000, 900, -100, -10.0, false},
		{"exact", 500, 500, 0, 0, false},
		{"zero planned", 0, 250, 250, 0, true},
		{"zero both", 0, 0, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := CalcVariance(tt.planned, tt.actual)
			if v.Diff != tt.wantDiff {
				t.Errorf("Diff = %v, want %v", v.Diff, tt.wantDiff)
			}
			if math.Abs(v.Pct-tt.wantPct) > 1e-9 {
				t.Errorf("Pct = %v, want %v", v.Pct, tt.wantPct)
			}
			if v.IsOverrun != tt.wantOver {
				t.Errorf("IsOverrun = %v, want %v", v.IsOverrun, tt.wantOver)
			}
		})
	}
}

func TestCalcVarianceNeverNaN(t *testing.T) {
	v := CalcVariance(0, 100)
	if math.IsNaN(v.Pct) || math.IsInf(v.Pct, 0) {
		t.Fatalf("Pct must be finite when planned is 0, got %v", v.Pct)
	}
}

func TestReorderLevel(t *testing.T) {
	// 场景B: 日均4 × 周期10天 + 安全库存15 = 55
	if got := ReorderLevel(4, 10, 15); got != 55 {
		t.Errorf("ReorderLevel(4,10,15) = %v, want 55", got)
	}
	if got := ReorderLevel(0, 0, 0); got != 0 {
		t.Errorf("ReorderLevel(0,0,0) = %v, want 0", got)
	}
}

func TestReorderQty(t *testing.T) {
	if got := ReorderQty(8, 55); got != 47 {
		t.Errorf("ReorderQty(8,55) = %v, want 47", got)
	}
	// 库存充足时不为负
	if got := ReorderQty(100, 55); got != 0 {
		t.Errorf("ReorderQty(100,55) = %v, want 0", got)
	}
	if got := ReorderQty(55, 55); got != 0 {
		t.Errorf("ReorderQty(55,55) = %v, want 0", got)
	}
}

func TestInventoryStatus(t *testing.T) {
	tests := []struct {
		name         string
		current      float64
		minimum      float64
		reorderLevel float64
		want         string
	}{
		{"below minimum", 8, 30, 55, StatusCritical},
		{"at minimum boundary", 30, 30, 55, StatusCritical},
		{"between minimum and reorder", 40, 30, 55, StatusWarning},
		{"at reorder boundary", 55, 30, 55, StatusWarning},
		{"just above reorder", 56, 30, 55, StatusSafe},
		// minimum 与 reorder 重叠时 critical 优先
		{"overlapping thresholds", 50, 50, 50, StatusCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InventoryStatus(tt.current, tt.minimum, tt.reorderLevel); got != tt.want {
				t.Errorf("InventoryStatus(%v,%v,%v) = %q, want %q",
					tt.current, tt.minimum, tt.reorderLevel, got, tt.want)
			}
		})
	}
}
