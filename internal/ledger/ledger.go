// Package ledger exposes the shared inventory as a versioned snapshot plus
// a conditional multi-record commit. Planning reads a snapshot; committing
// re-validates every touched record's version inside one transaction, so a
// stale plan fails as a whole instead of applying partially.
package ledger

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/xhorus11/mrp/pkg/models"
)

// Record pairs an inventory item with its optimistic-concurrency token.
type Record struct {
	Item    models.InventoryItem
	Version int64
}

// Snapshot is a point-in-time read of the inventory. Lookups by normalized
// name are O(1); the index is built once per snapshot, not per call.
type Snapshot struct {
	records []Record
	byID    map[int]int
	byName  map[string]int
}

func nameKey(kind models.ItemKind, name string) string {
	return string(kind) + "\x00" + strings.ToLower(name)
}

func NewSnapshot(records []Record) *Snapshot {
	s := &Snapshot{
		records: records,
		byID:    make(map[int]int, len(records)),
		byName:  make(map[string]int, len(records)),
	}
	for i, r := range records {
		s.byID[r.Item.ID] = i
		s.byName[nameKey(r.Item.Kind, r.Item.Name)] = i
	}
	return s
}

func (s *Snapshot) Records() []Record {
	return s.records
}

func (s *Snapshot) ByID(id int) (Record, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Record{}, false
	}
	return s.records[i], true
}

// FindByName resolves an item of the given kind by case-insensitive name.
func (s *Snapshot) FindByName(kind models.ItemKind, name string) (Record, bool) {
	i, ok := s.byName[nameKey(kind, name)]
	if !ok {
		return Record{}, false
	}
	return s.records[i], true
}

type MutationKind int

const (
	// MutationUpdateStock sets an item's stock count, conditional on the
	// version read at plan time.
	MutationUpdateStock MutationKind = iota
	// MutationIncrementFinishedGood upserts a finished good by normalized
	// name: existing stock is incremented, a missing item is created as a
	// single-unit package. Relative increments need no version token.
	MutationIncrementFinishedGood
	// MutationSetOrderStatus transitions a sales order's status,
	// conditional on the order's version.
	MutationSetOrderStatus
)

type Mutation struct {
	Kind MutationKind

	ItemID          int
	ExpectedVersion int64
	NewStockCount   decimal.Decimal

	Name     string
	Quantity decimal.Decimal

	OrderID        int
	OrderVersion   int64
	NewOrderStatus models.OrderStatus
}

func UpdateStock(itemID int, expectedVersion int64, newStockCount decimal.Decimal) Mutation {
	return Mutation{
		Kind:            MutationUpdateStock,
		ItemID:          itemID,
		ExpectedVersion: expectedVersion,
		NewStockCount:   newStockCount,
	}
}

func IncrementFinishedGood(name string, quantity decimal.Decimal) Mutation {
	return Mutation{Kind: MutationIncrementFinishedGood, Name: name, Quantity: quantity}
}

func SetOrderStatus(orderID int, orderVersion int64, status models.OrderStatus) Mutation {
	return Mutation{
		Kind:           MutationSetOrderStatus,
		OrderID:        orderID,
		OrderVersion:   orderVersion,
		NewOrderStatus: status,
	}
}

// Ledger is the store collaborator the planners and committers run against.
type Ledger interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
	// ApplyAtomic applies every mutation or none. A version miss on any
	// conditional mutation returns custom_error.ErrConcurrentModification
	// with nothing applied.
	ApplyAtomic(ctx context.Context, mutations []Mutation) error
}
