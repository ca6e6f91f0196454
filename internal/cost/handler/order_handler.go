package handler

import (
	"github.com/bitfantasy/nimo-cost/internal/cost/service"
	"github.com/gin-gonic/gin"
)

// OrderHandler 订单、BOM行项与消耗记录接口
type OrderHandler struct {
	svc         *service.OrderService
	consumption *service.ConsumptionService
}

func NewOrderHandler(svc *service.OrderService, consumption *service.ConsumptionService) *OrderHandler {
	return &OrderHandler{svc: svc, consumption: consumption}
}

// Create 创建订单
// POST /api/v1/cost/orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	order, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Created(c, order)
}

// Get 获取订单详情（含BOM行项与消耗记录）
func (h *OrderHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "订单ID不能为空")
		return
	}

	order, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, order)
}

// Update 更新订单
func (h *OrderHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "订单ID不能为空")
		return
	}

	var req service.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	order, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, order)
}

// Delete 删除订单，级联删除BOM行项与消耗记录
func (h *OrderHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "订单ID不能为空")
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		FromError(c, err)
		return
	}
	Success(c, gin.H{"deleted": id})
}

// CreateBOMItem 在订单下新增BOM行项
// POST /api/v1/cost/orders/:id/bom-items
func (h *OrderHandler) CreateBOMItem(c *gin.Context) {
	orderID := c.Param("id")
	if orderID == "" {
		BadRequest(c, "订单ID不能为空")
		return
	}

	var req service.CreateBOMItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	item, err := h.svc.CreateBOMItem(c.Request.Context(), orderID, req)
	if err != nil {
		FromError(c, err)
		return
	}
	Created(c, item)
}

// UpdateBOMItem 更新BOM行项
func (h *OrderHandler) UpdateBOMItem(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "BOM行项ID不能为空")
		return
	}

	var req service.UpdateBOMItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	item, err := h.svc.UpdateBOMItem(c.Request.Context(), id, req)
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, item)
}

// DeleteBOMItem 删除BOM行项，级联删除消耗记录
func (h *OrderHandler) DeleteBOMItem(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "BOM行项ID不能为空")
		return
	}

	if err := h.svc.DeleteBOMItem(c.Request.Context(), id); err != nil {
		FromError(c, err)
		return
	}
	Success(c, gin.H{"deleted": id})
}

// ListConsumptions 某BOM行项的消耗记录，登记时间倒序
func (h *OrderHandler) ListConsumptions(c *gin.Context) {
	bomItemID := c.Param("id")
	if bomItemID == "" {
		BadRequest(c, "BOM行项ID不能为空")
		return
	}

	items, err := h.consumption.ListByBOMItem(c.Request.Context(), bomItemID)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": items})
}

// CreateConsumption 登记实际消耗
// POST /api/v1/cost/bom-items/:id/consumptions
func (h *OrderHandler) CreateConsumption(c *gin.Context) {
	bomItemID := c.Param("id")
	if bomItemID == "" {
		BadRequest(c, "BOM行项ID不能为空")
		return
	}

	var req service.CreateConsumptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	ac, err := h.consumption.Create(c.Request.Context(), bomItemID, req)
	if err != nil {
		FromError(c, err)
		return
	}
	Created(c, ac)
}

// DeleteConsumption 删除消耗记录
func (h *OrderHandler) DeleteConsumption(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "消耗记录ID不能为空")
		return
	}

	if err := h.consumption.Delete(c.Request.Context(), id); err != nil {
		FromError(c, err)
		return
	}
	Success(c, gin.H{"deleted": id})
}
