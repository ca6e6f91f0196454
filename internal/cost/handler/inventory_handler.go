package handler

import (
	"github.com/bitfantasy/nimo-cost/internal/cost/service"
	"github.com/gin-gonic/gin"
)

// InventoryHandler 库存与物料快照接口
type InventoryHandler struct {
	svc *service.InventoryService
}

func NewInventoryHandler(svc *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// List 库存列表，附带补货点、建议补货量和状态
// GET /api/v1/cost/inventory
func (h *InventoryHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": items})
}

// Create 新建库存项
func (h *InventoryHandler) Create(c *gin.Context) {
	var req service.InventoryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	item, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Created(c, item)
}

// Update 更新库存项
func (h *InventoryHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "库存项ID不能为空")
		return
	}

	var req service.InventoryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	item, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, item)
}

// Delete 删除库存项
func (h *InventoryHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "库存项ID不能为空")
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		FromError(c, err)
		return
	}
	Success(c, gin.H{"deleted": id})
}

// Alerts 告警列表：低于补货点的库存项
// GET /api/v1/cost/inventory/alerts
func (h *InventoryHandler) Alerts(c *gin.Context) {
	items, err := h.svc.Alerts(c.Request.Context())
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": items})
}

// ListSnapshots 物料快照列表
func (h *InventoryHandler) ListSnapshots(c *gin.Context) {
	snaps, err := h.svc.ListSnapshots(c.Request.Context())
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": snaps})
}

// CreateSnapshot 登记物料快照
func (h *InventoryHandler) CreateSnapshot(c *gin.Context) {
	var req service.SnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	snap, err := h.svc.CreateSnapshot(c.Request.Context(), req)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Created(c, snap)
}
