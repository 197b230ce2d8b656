package ledger

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	custom_error "github.com/xhorus11/mrp/pkg/errors"
	"github.com/xhorus11/mrp/pkg/models"
)

func seedItem(l *MemoryLedger, name string, kind models.ItemKind, unitValue, stock int64) int {
	return l.AddItem(models.InventoryItem{
		Name:       name,
		Kind:       kind,
		UnitValue:  decimal.NewFromInt(unitValue),
		UnitType:   "g",
		StockCount: decimal.NewFromInt(stock),
	})
}

func TestSnapshotNameLookupIsCaseInsensitive(t *testing.T) {
	l := NewMemoryLedger()
	id := seedItem(l, "Flour", models.RawMaterial, 500, 3)

	snap, err := l.Snapshot(context.Background())
	assert.NoError(t, err)

	record, ok := snap.FindByName(models.RawMaterial, "fLoUr")
	assert.True(t, ok)
	assert.Equal(t, id, record.Item.ID)

	_, ok = snap.FindByName(models.FinishedGood, "flour")
	assert.False(t, ok, "kind is part of the lookup key")
}

func TestApplyAtomicVersionConflictAppliesNothing(t *testing.T) {
	l := NewMemoryLedger()
	flourID := seedItem(l, "flour", models.RawMaterial, 500, 3)
	sugarID := seedItem(l, "sugar", models.RawMaterial, 1000, 2)

	// First mutation is valid, second carries a stale version.
	err := l.ApplyAtomic(context.Background(), []Mutation{
		UpdateStock(flourID, 1, decimal.NewFromInt(1)),
		UpdateStock(sugarID, 99, decimal.NewFromInt(1)),
	})
	assert.ErrorIs(t, err, custom_error.ErrConcurrentModification)

	flour, version, _ := l.Item(flourID)
	assert.True(t, flour.StockCount.Equal(decimal.NewFromInt(3)), "flour untouched, got %s", flour.StockCount)
	assert.Equal(t, int64(1), version)
}

func TestApplyAtomicRejectsRepeatedItemInBatch(t *testing.T) {
	l := NewMemoryLedger()
	flourID := seedItem(l, "flour", models.RawMaterial, 500, 3)

	// The second update would run against the version the first one bumps;
	// postgres fails that version check and so must we.
	err := l.ApplyAtomic(context.Background(), []Mutation{
		UpdateStock(flourID, 1, decimal.NewFromInt(2)),
		UpdateStock(flourID, 1, decimal.NewFromInt(1)),
	})
	assert.ErrorIs(t, err, custom_error.ErrConcurrentModification)

	flour, version, _ := l.Item(flourID)
	assert.True(t, flour.StockCount.Equal(decimal.NewFromInt(3)), "got %s", flour.StockCount)
	assert.Equal(t, int64(1), version)
}

func TestApplyAtomicBumpsVersions(t *testing.T) {
	l := NewMemoryLedger()
	flourID := seedItem(l, "flour", models.RawMaterial, 500, 3)

	err := l.ApplyAtomic(context.Background(), []Mutation{
		UpdateStock(flourID, 1, decimal.NewFromInt(2)),
	})
	assert.NoError(t, err)

	_, version, _ := l.Item(flourID)
	assert.Equal(t, int64(2), version)

	// The old token no longer commits.
	err = l.ApplyAtomic(context.Background(), []Mutation{
		UpdateStock(flourID, 1, decimal.NewFromInt(1)),
	})
	assert.ErrorIs(t, err, custom_error.ErrConcurrentModification)
}

func TestApplyAtomicRejectsNegativeStock(t *testing.T) {
	l := NewMemoryLedger()
	flourID := seedItem(l, "flour", models.RawMaterial, 500, 3)

	err := l.ApplyAtomic(context.Background(), []Mutation{
		UpdateStock(flourID, 1, decimal.NewFromInt(-1)),
	})
	assert.Error(t, err)

	flour, _, _ := l.Item(flourID)
	assert.True(t, flour.StockCount.Equal(decimal.NewFromInt(3)))
}

func TestFinishedGoodIncrementUpserts(t *testing.T) {
	l := NewMemoryLedger()

	err := l.ApplyAtomic(context.Background(), []Mutation{
		IncrementFinishedGood("Bread", decimal.NewFromInt(4)),
	})
	assert.NoError(t, err)

	bread, ok := l.FindItem(models.FinishedGood, "bread")
	assert.True(t, ok)
	assert.True(t, bread.StockCount.Equal(decimal.NewFromInt(4)))
	assert.Equal(t, "unit", bread.UnitType)
	assert.True(t, bread.UnitValue.Equal(decimal.NewFromInt(1)))

	err = l.ApplyAtomic(context.Background(), []Mutation{
		IncrementFinishedGood("BREAD", decimal.NewFromInt(2)),
	})
	assert.NoError(t, err)

	bread, _ = l.FindItem(models.FinishedGood, "bread")
	assert.True(t, bread.StockCount.Equal(decimal.NewFromInt(6)), "got %s", bread.StockCount)
}

func TestSetOrderStatusConditionalOnVersion(t *testing.T) {
	l := NewMemoryLedger()
	l.AddOrder(7, models.OrderPending)

	err := l.ApplyAtomic(context.Background(), []Mutation{
		SetOrderStatus(7, 1, models.OrderCompleted),
	})
	assert.NoError(t, err)

	status, version, _ := l.OrderState(7)
	assert.Equal(t, models.OrderCompleted, status)
	assert.Equal(t, int64(2), version)

	err = l.ApplyAtomic(context.Background(), []Mutation{
		SetOrderStatus(7, 1, models.OrderPending),
	})
	assert.ErrorIs(t, err, custom_error.ErrConcurrentModification)
}
