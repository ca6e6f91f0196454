package handler

import (
	"github.com/bitfantasy/nimo-cost/internal/cost/service"
	"github.com/gin-gonic/gin"
)

// DashboardHandler 看板与差异分析接口
type DashboardHandler struct {
	svc *service.DashboardService
}

func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// ListOrders 订单列表（含差异汇总），创建时间倒序
// GET /api/v1/cost/orders
func (h *DashboardHandler) ListOrders(c *gin.Context) {
	rows, err := h.svc.GetOrdersWithVariance(c.Request.Context())
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": rows})
}

// ListBOMItems 某订单的BOM行项差异明细
// GET /api/v1/cost/orders/:id/bom-items
func (h *DashboardHandler) ListBOMItems(c *gin.Context) {
	orderID := c.Param("id")
	if orderID == "" {
		BadRequest(c, "订单ID不能为空")
		return
	}

	rows, err := h.svc.GetBOMItemsWithVariance(c.Request.Context(), orderID)
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, gin.H{"items": rows})
}

// GetDashboard 看板聚合
// GET /api/v1/cost/dashboard
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	dash, err := h.svc.GetDashboard(c.Request.Context())
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, dash)
}

// GetOrderChart 订单对比图数据
func (h *DashboardHandler) GetOrderChart(c *gin.Context) {
	rows, err := h.svc.GetOrderChart(c.Request.Context())
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": rows})
}

// GetNotifications 通知列表：缺料告警、成本异常与新订单
func (h *DashboardHandler) GetNotifications(c *gin.Context) {
	items, err := h.svc.GetNotifications(c.Request.Context())
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": items})
}

// GetActivity 最近订单动态
func (h *DashboardHandler) GetActivity(c *gin.Context) {
	items, err := h.svc.GetActivity(c.Request.Context())
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": items})
}
