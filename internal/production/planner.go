// Package production turns a recipe and a desired batch size into either a
// committable deduction plan or a complete shortage report, and commits
// plans against the inventory ledger.
package production

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xhorus11/mrp/internal/ledger"
	custom_error "github.com/xhorus11/mrp/pkg/errors"
	"github.com/xhorus11/mrp/pkg/models"
	"github.com/xhorus11/mrp/pkg/units"
)

// Plan evaluates every ingredient of the recipe against the snapshot and
// returns exactly one of a deduction plan or a shortage report. It never
// stops at the first problem: the report lists all deficits in one pass so
// the user can restock everything at once. No mutation is proposed unless
// every ingredient is satisfiable.
func Plan(recipe models.Recipe, quantity int64, snap *ledger.Snapshot) (*models.DeductionPlan, *models.ShortageReport, error) {
	if quantity <= 0 {
		return nil, nil, &custom_error.ValidationError{Field: "quantity", Message: "must be positive"}
	}
	if len(recipe.Ingredients) == 0 {
		return nil, nil, &custom_error.ValidationError{Field: "ingredients", Message: "recipe has no ingredients"}
	}

	report := &models.ShortageReport{}
	batch := decimal.NewFromInt(quantity)

	// Requirements are summed per item before any stock check: a recipe may
	// list the same raw material on several lines, and the plan must carry
	// exactly one conditional update per item or the commit's version checks
	// would collide with each other.
	type requirement struct {
		item           models.InventoryItem
		version        int64
		ingredientName string
		requiredBase   decimal.Decimal
	}
	needs := make(map[int]*requirement, len(recipe.Ingredients))
	itemOrder := make([]int, 0, len(recipe.Ingredients))

	for _, ingredient := range recipe.Ingredients {
		record, ok := snap.FindByName(models.RawMaterial, ingredient.IngredientName)
		if !ok {
			report.Add(models.ShortageEntry{
				Kind:           models.MissingIngredient,
				IngredientName: ingredient.IngredientName,
				Detail:         "no raw material with this name",
			})
			continue
		}
		item := record.Item

		// Required quantity in the stocked item's own unit type.
		requiredBase, err := units.Convert(ingredient.Quantity.Mul(batch), ingredient.Unit, item.UnitType)
		if err != nil {
			report.Add(models.ShortageEntry{
				Kind:           models.UnitMismatch,
				IngredientName: ingredient.IngredientName,
				Unit:           item.UnitType,
				Detail:         err.Error(),
			})
			continue
		}

		if need, ok := needs[item.ID]; ok {
			need.requiredBase = need.requiredBase.Add(requiredBase)
			continue
		}
		needs[item.ID] = &requirement{
			item:           item,
			version:        record.Version,
			ingredientName: ingredient.IngredientName,
			requiredBase:   requiredBase,
		}
		itemOrder = append(itemOrder, item.ID)
	}

	entries := make([]models.DeductionEntry, 0, len(itemOrder))
	for _, id := range itemOrder {
		need := needs[id]

		availableBase := need.item.TotalBaseQuantity()
		if need.requiredBase.GreaterThan(availableBase) {
			report.Add(models.ShortageEntry{
				Kind:           models.InsufficientStock,
				IngredientName: need.ingredientName,
				Required:       need.requiredBase,
				Available:      availableBase,
				Unit:           need.item.UnitType,
			})
			continue
		}

		entries = append(entries, models.DeductionEntry{
			ItemID:          need.item.ID,
			ItemName:        need.item.Name,
			ExpectedVersion: need.version,
			NewStockCount:   availableBase.Sub(need.requiredBase).Div(need.item.UnitValue),
		})
	}

	if !report.Empty() {
		return nil, report, nil
	}

	return &models.DeductionPlan{
		PlanID:     uuid.New(),
		RecipeID:   recipe.ID,
		RecipeName: recipe.Name,
		Quantity:   quantity,
		Entries:    entries,
		Increment:  models.FinishedGoodIncrement{Name: recipe.Name, Quantity: quantity},
	}, nil, nil
}
