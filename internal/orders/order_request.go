package orders

import "time"

type OrderRequest struct {
	CustomerName       string     `json:"customer_name" binding:"required"`
	RecipeID           *int       `json:"recipe_id"`
	ProductDescription string     `json:"product_description"`
	Quantity           int64      `json:"quantity" binding:"required,gt=0"`
	OrderDate          *time.Time `json:"order_date"`
}
