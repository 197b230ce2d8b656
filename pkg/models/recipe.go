package models

import "github.com/shopspring/decimal"

type Recipe struct {
	ID          int          `json:"id" db:"id"`
	Name        string       `json:"name" db:"name"`
	ProductType string       `json:"product_type" db:"product_type"`
	Ingredients []Ingredient `json:"ingredients" db:"-"`
}

// Ingredient references a raw material by name; the quantity is expressed
// in the ingredient's own unit, which may differ from the matched item's.
type Ingredient struct {
	ID             int             `json:"id" db:"id"`
	IngredientName string          `json:"ingredient_name" db:"ingredient_name"`
	Quantity       decimal.Decimal `json:"quantity" db:"quantity"`
	Unit           string          `json:"unit" db:"unit"`
}

func (r *Recipe) CreateLogView() AuditLog {
	return AuditLog{
		ResourceID:   r.ID,
		ResourceType: "recipe",
	}
}
