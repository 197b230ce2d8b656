package inventory

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xhorus11/mrp/pkg/auditlog"
	custom_error "github.com/xhorus11/mrp/pkg/errors"
)

type ItemHandler struct {
	Repository *ItemRepository
	AuditLog   *auditlog.Auditlog
}

func NewItemHandler(r *ItemRepository, a *auditlog.Auditlog) *ItemHandler {
	return &ItemHandler{Repository: r, AuditLog: a}
}

func (h *ItemHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/items", h.GetItems)
	router.GET("/items/:id", h.GetItem)
	router.POST("/items", h.CreateItem)
	router.PUT("/items/:id", h.UpdateItem)
	router.DELETE("/items/:id", h.DeleteItem)
}

func (h *ItemHandler) GetItems(c *gin.Context) {
	items, err := h.Repository.GetItems(c.Request.Context(), c.Query("kind"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not list inventory items", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, items)
}

func (h *ItemHandler) GetItem(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
		return
	}

	item, err := h.Repository.GetItem(c.Request.Context(), id)
	var notFound *custom_error.NotFoundError
	if errors.As(err, &notFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	} else if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not get inventory item", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) CreateItem(c *gin.Context) {
	var req ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	if msg, ok := req.Validate(); !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	item, err := h.Repository.PersistItem(c.Request.Context(), req)
	if _, ok := err.(*custom_error.UniqueViolationError); ok {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Item name already in use for this kind", "details": err.Error()})
		return
	} else if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not create inventory item"})
		return
	}

	go h.AuditLog.Log(
		"create",
		map[string]interface{}{
			"name":        item.Name,
			"kind":        item.Kind,
			"stock_count": item.StockCount,
			"msg":         "Registered inventory item",
		},
		item,
	)

	c.JSON(http.StatusCreated, item)
}

func (h *ItemHandler) UpdateItem(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
		return
	}

	var req ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	if msg, ok := req.Validate(); !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	item, err := h.Repository.UpdateItem(c.Request.Context(), id, req)
	var notFound *custom_error.NotFoundError
	if _, ok := err.(*custom_error.UniqueViolationError); ok {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Item name already in use for this kind", "details": err.Error()})
		return
	} else if errors.As(err, &notFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	} else if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not update inventory item", "details": err.Error()})
		return
	}

	go h.AuditLog.Log(
		"update",
		map[string]interface{}{
			"name":        item.Name,
			"stock_count": item.StockCount,
			"msg":         "Updated inventory item",
		},
		item,
	)

	c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) DeleteItem(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
		return
	}

	err = h.Repository.DeleteItem(c.Request.Context(), id)
	var notFound *custom_error.NotFoundError
	if _, ok := err.(*custom_error.ForeignKeyViolationError); ok {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Could not delete inventory item", "details": err.Error()})
		return
	} else if errors.As(err, &notFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	} else if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not delete inventory item", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Inventory item deleted successfully"})
}
