package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/xhorus11/mrp/pkg/models"
	"github.com/xhorus11/mrp/pkg/units"
)

type ItemRequest struct {
	Name       string          `json:"name" binding:"required"`
	Kind       models.ItemKind `json:"kind" binding:"required,oneof=raw_material finished_good"`
	UnitValue  decimal.Decimal `json:"unit_value" binding:"required"`
	UnitType   string          `json:"unit_type" binding:"required"`
	StockCount decimal.Decimal `json:"stock_count"`
}

// Validate covers what JSON binding cannot express.
func (r *ItemRequest) Validate() (string, bool) {
	if !r.UnitValue.IsPositive() {
		return "unit_value must be positive", false
	}
	if r.StockCount.IsNegative() {
		return "stock_count must not be negative", false
	}
	if !units.Known(r.UnitType) {
		return "unknown unit symbol: " + r.UnitType, false
	}
	return "", true
}
