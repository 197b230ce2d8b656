package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ShortageKind string

const (
	MissingIngredient        ShortageKind = "missing_ingredient"
	UnitMismatch             ShortageKind = "unit_mismatch"
	InsufficientStock        ShortageKind = "insufficient_stock"
	InsufficientFinishedGood ShortageKind = "insufficient_finished_good"
)

// ShortageEntry describes one deficit. Required and Available are expressed
// in Unit, the matched item's stocked unit type.
type ShortageEntry struct {
	Kind           ShortageKind    `json:"kind"`
	IngredientName string          `json:"ingredient_name"`
	Required       decimal.Decimal `json:"required"`
	Available      decimal.Decimal `json:"available"`
	Unit           string          `json:"unit"`
	Detail         string          `json:"detail,omitempty"`
}

// ShortageReport lists every deficit found in one planning pass. It is a
// result value, not an error: nothing has been mutated.
type ShortageReport struct {
	Shortages []ShortageEntry `json:"shortages"`
}

func (r *ShortageReport) Add(entry ShortageEntry) {
	r.Shortages = append(r.Shortages, entry)
}

func (r *ShortageReport) Empty() bool {
	return len(r.Shortages) == 0
}

// DeductionEntry proposes a new stock count for one item, conditional on
// the version the item had when the plan was computed.
type DeductionEntry struct {
	ItemID          int             `json:"item_id"`
	ItemName        string          `json:"item_name"`
	ExpectedVersion int64           `json:"expected_version"`
	NewStockCount   decimal.Decimal `json:"new_stock_count"`
}

type FinishedGoodIncrement struct {
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
}

// DeductionPlan is a fully validated, side-effect-free proposal: per-item
// stock decrements plus one finished-good increment, ready to commit.
type DeductionPlan struct {
	PlanID     uuid.UUID             `json:"plan_id"`
	RecipeID   int                   `json:"recipe_id"`
	RecipeName string                `json:"recipe_name"`
	Quantity   int64                 `json:"quantity"`
	Entries    []DeductionEntry      `json:"entries"`
	Increment  FinishedGoodIncrement `json:"increment"`
}

func (p *DeductionPlan) CreateLogView() AuditLog {
	return AuditLog{
		ResourceID:   p.RecipeID,
		ResourceType: "production",
	}
}

// StockChange reports one item's stock after a successful commit.
type StockChange struct {
	ItemID        int             `json:"item_id"`
	ItemName      string          `json:"item_name"`
	NewStockCount decimal.Decimal `json:"new_stock_count"`
}

type CommitResult struct {
	PlanID   string        `json:"plan_id,omitempty"`
	RecipeID int           `json:"recipe_id,omitempty"`
	Changes  []StockChange `json:"changes"`
}

func (r *CommitResult) CreateLogView() AuditLog {
	return AuditLog{
		ResourceID:   r.RecipeID,
		ResourceType: "production",
	}
}
