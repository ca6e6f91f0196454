package handler

import (
	"errors"

	"github.com/bitfantasy/nimo-cost/internal/cost/service"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handlers 处理器集合
type Handlers struct {
	Order     *OrderHandler
	Inventory *InventoryHandler
	Dashboard *DashboardHandler
	Ingest    *IngestHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Order:     NewOrderHandler(svc.Order, svc.Consumption),
		Inventory: NewInventoryHandler(svc.Inventory),
		Dashboard: NewDashboardHandler(svc.Dashboard),
		Ingest:    NewIngestHandler(svc.Ingest),
	}
}

// RegisterRoutes 注册成本模块路由
func (h *Handlers) RegisterRoutes(g *gin.RouterGroup) {
	orders := g.Group("/orders")
	{
		orders.GET("", h.Dashboard.ListOrders)
		orders.POST("", h.Order.Create)
		orders.GET("/:id", h.Order.Get)
		orders.PUT("/:id", h.Order.Update)
		orders.DELETE("/:id", h.Order.Delete)
		orders.GET("/:id/bom-items", h.Dashboard.ListBOMItems)
		orders.POST("/:id/bom-items", h.Order.CreateBOMItem)
	}

	bomItems := g.Group("/bom-items")
	{
		bomItems.PUT("/:id", h.Order.UpdateBOMItem)
		bomItems.DELETE("/:id", h.Order.DeleteBOMItem)
		bomItems.GET("/:id/consumptions", h.Order.ListConsumptions)
		bomItems.POST("/:id/consumptions", h.Order.CreateConsumption)
	}
	g.DELETE("/consumptions/:id", h.Order.DeleteConsumption)

	inventory := g.Group("/inventory")
	{
		inventory.GET("", h.Inventory.List)
		inventory.POST("", h.Inventory.Create)
		inventory.PUT("/:id", h.Inventory.Update)
		inventory.DELETE("/:id", h.Inventory.Delete)
		inventory.GET("/alerts", h.Inventory.Alerts)
	}

	snapshots := g.Group("/snapshots")
	{
		snapshots.GET("", h.Inventory.ListSnapshots)
		snapshots.POST("", h.Inventory.CreateSnapshot)
	}

	dashboard := g.Group("/dashboard")
	{
		dashboard.GET("", h.Dashboard.GetDashboard)
		dashboard.GET("/chart", h.Dashboard.GetOrderChart)
		dashboard.GET("/notifications", h.Dashboard.GetNotifications)
		dashboard.GET("/activity", h.Dashboard.GetActivity)
	}

	g.POST("/uploads", h.Ingest.Upload)
}

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest 参数错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// NotFound 资源不存在响应
func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// InternalError 服务器错误响应
func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// FromError 按错误类型映射响应：记录不存在→404，其余→500
func FromError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		NotFound(c, err.Error())
		return
	}
	InternalError(c, err.Error())
}
