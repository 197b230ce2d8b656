package orders

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xhorus11/mrp/pkg/auditlog"
	custom_error "github.com/xhorus11/mrp/pkg/errors"
)

type OrderHandler struct {
	Repository  *OrderRepository
	Fulfillment *FulfillmentService
	AuditLog    *auditlog.Auditlog
}

func NewOrderHandler(r *OrderRepository, f *FulfillmentService, a *auditlog.Auditlog) *OrderHandler {
	return &OrderHandler{Repository: r, Fulfillment: f, AuditLog: a}
}

func (h *OrderHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/orders", h.GetOrders)
	router.GET("/orders/:id", h.GetOrder)
	router.POST("/orders", h.CreateOrder)
	router.PUT("/orders/:id", h.UpdateOrder)
	router.DELETE("/orders/:id", h.DeleteOrder)
	router.GET("/orders/:id/preview", h.PreviewCompletion)
	router.POST("/orders/:id/complete", h.CompleteOrder)
	router.POST("/orders/:id/reopen", h.ReopenOrder)
}

func (h *OrderHandler) GetOrders(c *gin.Context) {
	orders, err := h.Repository.GetOrders(c.Request.Context(), c.Query("status"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not list sales orders", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	order, err := h.Repository.GetOrder(c.Request.Context(), id)
	if err != nil {
		abortWithOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	if req.RecipeID == nil && req.ProductDescription == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Either recipe_id or product_description is required"})
		return
	}

	order, err := h.Repository.PersistOrder(c.Request.Context(), req)
	if err != nil {
		abortWithOrderError(c, err)
		return
	}

	go h.AuditLog.Log(
		"create",
		map[string]interface{}{
			"customer": order.CustomerName,
			"quantity": order.Quantity,
			"msg":      "Registered sales order",
		},
		order,
	)

	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	order, err := h.Repository.UpdateOrder(c.Request.Context(), id, req)
	if err != nil {
		abortWithOrderError(c, err)
		return
	}

	go h.AuditLog.Log(
		"update",
		map[string]interface{}{
			"customer": order.CustomerName,
			"quantity": order.Quantity,
			"msg":      "Updated sales order",
		},
		order,
	)

	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	if err := h.Repository.DeleteOrder(c.Request.Context(), id); err != nil {
		abortWithOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Sales order deleted successfully"})
}

func (h *OrderHandler) PreviewCompletion(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	preview, report, err := h.Fulfillment.PreviewCompletion(c.Request.Context(), id)
	if err != nil {
		abortWithOrderError(c, err)
		return
	}
	if report != nil {
		c.JSON(http.StatusConflict, gin.H{"shortages": report.Shortages})
		return
	}

	c.JSON(http.StatusOK, preview)
}

func (h *OrderHandler) CompleteOrder(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	result, report, err := h.Fulfillment.Complete(c.Request.Context(), id)
	if err != nil {
		abortWithOrderError(c, err)
		return
	}
	if report != nil {
		c.JSON(http.StatusConflict, gin.H{"shortages": report.Shortages})
		return
	}

	order, _ := h.Repository.GetOrder(c.Request.Context(), id)
	if order != nil {
		go h.AuditLog.Log(
			"complete",
			map[string]interface{}{
				"customer": order.CustomerName,
				"quantity": order.Quantity,
				"msg":      "Completed sales order",
			},
			order,
		)
	}

	c.JSON(http.StatusOK, result)
}

func (h *OrderHandler) ReopenOrder(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	result, err := h.Fulfillment.Reopen(c.Request.Context(), id)
	if err != nil {
		abortWithOrderError(c, err)
		return
	}

	order, _ := h.Repository.GetOrder(c.Request.Context(), id)
	if order != nil {
		go h.AuditLog.Log(
			"reopen",
			map[string]interface{}{
				"customer": order.CustomerName,
				"msg":      "Reopened sales order, stock not restored",
			},
			order,
		)
	}

	c.JSON(http.StatusOK, result)
}

func orderID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return 0, false
	}
	return id, true
}

func abortWithOrderError(c *gin.Context, err error) {
	var validation *custom_error.ValidationError
	var notFound *custom_error.NotFoundError

	switch {
	case errors.As(err, &validation):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &notFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, custom_error.ErrConcurrentModification):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Order is busy, please retry", "details": err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Order operation failed", "details": err.Error()})
	}
}
