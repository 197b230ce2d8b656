package models

import "time"

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
)

type SalesOrder struct {
	ID                 int         `json:"id" db:"id"`
	CustomerName       string      `json:"customer_name" db:"customer_name"`
	RecipeID           *int        `json:"recipe_id" db:"recipe_id"`
	ProductDescription string      `json:"product_description" db:"product_description"`
	Quantity           int64       `json:"quantity" db:"quantity"`
	OrderDate          time.Time   `json:"order_date" db:"order_date"`
	Status             OrderStatus `json:"status" db:"status"`
	Version            int64       `json:"version" db:"version"`
}

func (o *SalesOrder) CreateLogView() AuditLog {
	return AuditLog{
		ResourceID:   o.ID,
		ResourceType: "sales_order",
	}
}
