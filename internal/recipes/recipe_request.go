package recipes

import "github.com/shopspring/decimal"

type IngredientRequest struct {
	IngredientName string          `json:"ingredient_name" binding:"required"`
	Quantity       decimal.Decimal `json:"quantity" binding:"required"`
	Unit           string          `json:"unit" binding:"required"`
}

type RecipeRequest struct {
	Name        string              `json:"name" binding:"required"`
	ProductType string              `json:"product_type"`
	Ingredients []IngredientRequest `json:"ingredients" binding:"required,dive"`
}
