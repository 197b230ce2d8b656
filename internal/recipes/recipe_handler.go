package recipes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xhorus11/mrp/pkg/auditlog"
	custom_error "github.com/xhorus11/mrp/pkg/errors"
	"github.com/xhorus11/mrp/pkg/units"
)

type RecipeHandler struct {
	Repository *RecipeRepository
	AuditLog   *auditlog.Auditlog
}

func NewRecipeHandler(r *RecipeRepository, a *auditlog.Auditlog) *RecipeHandler {
	return &RecipeHandler{Repository: r, AuditLog: a}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/recipes", h.GetRecipes)
	router.GET("/recipes/:id", h.GetRecipe)
	router.POST("/recipes", h.CreateRecipe)
	router.PUT("/recipes/:id", h.UpdateRecipe)
	router.DELETE("/recipes/:id", h.DeleteRecipe)
}

func (h *RecipeHandler) GetRecipes(c *gin.Context) {
	recipes, err := h.Repository.GetRecipes(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not list recipes", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, recipes)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe id"})
		return
	}

	recipe, err := h.Repository.GetRecipe(c.Request.Context(), id)
	var notFound *custom_error.NotFoundError
	if errors.As(err, &notFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	} else if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not get recipe", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	if msg, ok := validateIngredients(req); !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	recipe, err := h.Repository.PersistRecipe(c.Request.Context(), req)
	if _, ok := err.(*custom_error.UniqueViolationError); ok {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Recipe name already in use", "details": err.Error()})
		return
	} else if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not create recipe"})
		return
	}

	go h.AuditLog.Log(
		"create",
		map[string]interface{}{
			"name":        recipe.Name,
			"ingredients": len(recipe.Ingredients),
			"msg":         "Registered recipe",
		},
		recipe,
	)

	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe id"})
		return
	}

	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	if msg, ok := validateIngredients(req); !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	recipe, err := h.Repository.UpdateRecipe(c.Request.Context(), id, req)
	var notFound *custom_error.NotFoundError
	if errors.As(err, &notFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	} else if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not update recipe", "details": err.Error()})
		return
	}

	go h.AuditLog.Log(
		"update",
		map[string]interface{}{
			"name": recipe.Name,
			"msg":  "Updated recipe",
		},
		recipe,
	)

	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe id"})
		return
	}

	err = h.Repository.DeleteRecipe(c.Request.Context(), id)
	var notFound *custom_error.NotFoundError
	if errors.As(err, &notFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	} else if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not delete recipe", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Recipe deleted successfully"})
}

// validateIngredients rejects what JSON binding alone cannot: non-positive
// quantities and unit symbols outside the conversion table.
func validateIngredients(req RecipeRequest) (string, bool) {
	for _, ingredient := range req.Ingredients {
		if !ingredient.Quantity.IsPositive() {
			return "Ingredient quantity must be positive: " + ingredient.IngredientName, false
		}
		if !units.Known(ingredient.Unit) {
			return "Unknown unit symbol: " + ingredient.Unit, false
		}
	}
	return "", true
}
