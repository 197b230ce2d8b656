package production

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xhorus11/mrp/internal/rate_limiter"
	"github.com/xhorus11/mrp/pkg/auditlog"
	custom_error "github.com/xhorus11/mrp/pkg/errors"
)

type ProductionHandler struct {
	Service     *Service
	AuditLog    *auditlog.Auditlog
	rateLimiter *rate_limiter.RateLimiter
}

func NewProductionHandler(service *Service, a *auditlog.Auditlog) *ProductionHandler {
	return &ProductionHandler{
		Service:     service,
		AuditLog:    a,
		rateLimiter: rate_limiter.NewRateLimiter(30, time.Minute),
	}
}

func (h *ProductionHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/production/preview", h.PreviewProduction)
	router.POST("/production/confirm", h.ConfirmProduction)
}

type productionRequest struct {
	RecipeID int   `json:"recipe_id" binding:"required"`
	Quantity int64 `json:"quantity" binding:"required"`
}

func (h *ProductionHandler) PreviewProduction(c *gin.Context) {
	var req productionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	plan, report, err := h.Service.PreviewProduction(c.Request.Context(), req.RecipeID, req.Quantity)
	if err != nil {
		abortWithProductionError(c, err)
		return
	}
	if report != nil {
		c.JSON(http.StatusConflict, gin.H{"shortages": report.Shortages})
		return
	}

	c.JSON(http.StatusOK, plan)
}

func (h *ProductionHandler) ConfirmProduction(c *gin.Context) {
	clientIP := c.ClientIP()
	if !h.rateLimiter.IsAllowed(clientIP) {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":     "Too many production requests",
			"remaining": h.rateLimiter.GetRemainingRequests(clientIP),
		})
		return
	}

	var req productionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	result, report, err := h.Service.ConfirmProduction(c.Request.Context(), req.RecipeID, req.Quantity)
	if err != nil {
		abortWithProductionError(c, err)
		return
	}
	if report != nil {
		c.JSON(http.StatusConflict, gin.H{"shortages": report.Shortages})
		return
	}

	go h.AuditLog.Log(
		"produce",
		map[string]interface{}{
			"recipe_id": req.RecipeID,
			"quantity":  req.Quantity,
			"plan_id":   result.PlanID,
			"msg":       "Confirmed production batch",
		},
		result,
	)

	c.JSON(http.StatusOK, result)
}

func abortWithProductionError(c *gin.Context, err error) {
	var validation *custom_error.ValidationError
	var notFound *custom_error.NotFoundError

	switch {
	case errors.As(err, &validation):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &notFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, custom_error.ErrConcurrentModification):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Inventory is busy, please retry", "details": err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Production failed", "details": err.Error()})
	}
}
