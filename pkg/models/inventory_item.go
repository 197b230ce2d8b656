package models

import "github.com/shopspring/decimal"

type ItemKind string

const (
	RawMaterial  ItemKind = "raw_material"
	FinishedGood ItemKind = "finished_good"
)

type InventoryItem struct {
	ID         int             `json:"id" db:"id"`
	Name       string          `json:"name" db:"name"`
	Kind       ItemKind        `json:"kind" db:"kind"`
	UnitValue  decimal.Decimal `json:"unit_value" db:"unit_value"`
	UnitType   string          `json:"unit_type" db:"unit_type"`
	StockCount decimal.Decimal `json:"stock_count" db:"stock_count"`
}

// TotalBaseQuantity is the stock on hand expressed in the base unit of the
// stocked package's unit type, e.g. 3 bags of 500 g each is 1500 g.
func (i *InventoryItem) TotalBaseQuantity() decimal.Decimal {
	return i.StockCount.Mul(i.UnitValue)
}

func (i *InventoryItem) CreateLogView() AuditLog {
	return AuditLog{
		ResourceID:   i.ID,
		ResourceType: "inventory_item",
	}
}
