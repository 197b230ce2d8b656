package production

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xhorus11/mrp/internal/ledger"
	custom_error "github.com/xhorus11/mrp/pkg/errors"
	"github.com/xhorus11/mrp/pkg/models"
)

func seedRawMaterial(l *ledger.MemoryLedger, name, unitType string, unitValue, stockCount string) int {
	return l.AddItem(models.InventoryItem{
		Name:       name,
		Kind:       models.RawMaterial,
		UnitValue:  dec(unitValue),
		UnitType:   unitType,
		StockCount: dec(stockCount),
	})
}

func planAgainst(t *testing.T, l *ledger.MemoryLedger, recipe models.Recipe, quantity int64) *models.DeductionPlan {
	t.Helper()

	snap, err := l.Snapshot(context.Background())
	assert.NoError(t, err)

	plan, report, err := Plan(recipe, quantity, snap)
	assert.NoError(t, err)
	assert.Nil(t, report)
	assert.NotNil(t, plan)

	return plan
}

func TestCommitAppliesPlanAndCreatesFinishedGood(t *testing.T) {
	l := ledger.NewMemoryLedger()
	flourID := seedRawMaterial(l, "flour", "g", "500", "3")
	recipe := breadRecipe(
		models.Ingredient{IngredientName: "flour", Quantity: dec("100"), Unit: "g"},
	)

	plan := planAgainst(t, l, recipe, 2)
	result, err := NewCommitter(l).Commit(context.Background(), plan)
	assert.NoError(t, err)
	assert.Len(t, result.Changes, 1)

	flour, version, _ := l.Item(flourID)
	assert.True(t, flour.StockCount.Equal(dec("2.6")), "got %s", flour.StockCount)
	assert.Equal(t, int64(2), version)

	bread, ok := l.FindItem(models.FinishedGood, "bread")
	assert.True(t, ok)
	assert.True(t, bread.StockCount.Equal(dec("2")))
	assert.Equal(t, "unit", bread.UnitType)
	assert.True(t, bread.UnitValue.Equal(dec("1")))
}

func TestCommitIncrementsExistingFinishedGood(t *testing.T) {
	l := ledger.NewMemoryLedger()
	seedRawMaterial(l, "flour", "g", "500", "3")
	breadID := l.AddItem(models.InventoryItem{
		Name:       "bread",
		Kind:       models.FinishedGood,
		UnitValue:  dec("1"),
		UnitType:   "unit",
		StockCount: dec("5"),
	})
	recipe := breadRecipe(
		models.Ingredient{IngredientName: "flour", Quantity: dec("100"), Unit: "g"},
	)

	plan := planAgainst(t, l, recipe, 3)
	_, err := NewCommitter(l).Commit(context.Background(), plan)
	assert.NoError(t, err)

	bread, _, _ := l.Item(breadID)
	assert.True(t, bread.StockCount.Equal(dec("8")), "got %s", bread.StockCount)
}

func TestCommitDeductsEveryDuplicateLine(t *testing.T) {
	l := ledger.NewMemoryLedger()
	flourID := seedRawMaterial(l, "flour", "g", "100", "10")
	recipe := breadRecipe(
		models.Ingredient{IngredientName: "flour", Quantity: dec("100"), Unit: "g"},
		models.Ingredient{IngredientName: "flour", Quantity: dec("200"), Unit: "g"},
	)

	plan := planAgainst(t, l, recipe, 1)
	_, err := NewCommitter(l).Commit(context.Background(), plan)
	assert.NoError(t, err)

	// 1000 g - (100 g + 200 g) leaves 7 packages; losing either line's
	// share would leave more.
	flour, version, _ := l.Item(flourID)
	assert.True(t, flour.StockCount.Equal(dec("7")), "got %s", flour.StockCount)
	assert.Equal(t, int64(2), version)
}

func TestCommitConflictAppliesNothing(t *testing.T) {
	l := ledger.NewMemoryLedger()
	flourID := seedRawMaterial(l, "flour", "g", "500", "3")
	recipe := breadRecipe(
		models.Ingredient{IngredientName: "flour", Quantity: dec("100"), Unit: "g"},
	)

	plan := planAgainst(t, l, recipe, 2)

	// Someone else touches flour between plan and commit.
	err := l.ApplyAtomic(context.Background(), []ledger.Mutation{
		ledger.UpdateStock(flourID, 1, dec("1")),
	})
	assert.NoError(t, err)

	_, err = NewCommitter(l).Commit(context.Background(), plan)
	assert.ErrorIs(t, err, custom_error.ErrConcurrentModification)

	flour, _, _ := l.Item(flourID)
	assert.True(t, flour.StockCount.Equal(dec("1")), "stale plan must not apply, got %s", flour.StockCount)

	_, ok := l.FindItem(models.FinishedGood, "bread")
	assert.False(t, ok, "finished good must not appear on a failed commit")
}
