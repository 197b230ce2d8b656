package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	custom_error "github.com/xhorus11/mrp/pkg/errors"
	"github.com/xhorus11/mrp/pkg/models"
)

// MemoryLedger mirrors the postgres driver's semantics in process memory.
// Validation of every version token happens before any record is touched,
// so a conflicting batch leaves the ledger exactly as it was.
type MemoryLedger struct {
	mu         sync.Mutex
	items      map[int]Record
	orders     map[int]orderRecord
	nextItemID int
}

type orderRecord struct {
	status  models.OrderStatus
	version int64
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		items:  make(map[int]Record),
		orders: make(map[int]orderRecord),
	}
}

// AddItem seeds an item and returns its assigned ID.
func (l *MemoryLedger) AddItem(item models.InventoryItem) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if item.ID == 0 {
		l.nextItemID++
		item.ID = l.nextItemID
	} else if item.ID > l.nextItemID {
		l.nextItemID = item.ID
	}
	l.items[item.ID] = Record{Item: item, Version: 1}
	return item.ID
}

// AddOrder seeds a sales order's status record.
func (l *MemoryLedger) AddOrder(orderID int, status models.OrderStatus) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.orders[orderID] = orderRecord{status: status, version: 1}
}

// Item returns the current state of one item for assertions.
func (l *MemoryLedger) Item(id int) (models.InventoryItem, int64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	r, ok := l.items[id]
	if !ok {
		return models.InventoryItem{}, 0, false
	}
	return r.Item, r.Version, true
}

// FindItem resolves an item by kind and case-insensitive name.
func (l *MemoryLedger) FindItem(kind models.ItemKind, name string) (models.InventoryItem, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id, ok := l.findByNameLocked(kind, name)
	if !ok {
		return models.InventoryItem{}, false
	}
	return l.items[id].Item, true
}

// OrderState returns a seeded order's status and version.
func (l *MemoryLedger) OrderState(orderID int) (models.OrderStatus, int64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	o, ok := l.orders[orderID]
	if !ok {
		return "", 0, false
	}
	return o.status, o.version, true
}

func (l *MemoryLedger) Snapshot(_ context.Context) (*Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	records := make([]Record, 0, len(l.items))
	for _, r := range l.items {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Item.ID < records[j].Item.ID })

	return NewSnapshot(records), nil
}

func (l *MemoryLedger) ApplyAtomic(_ context.Context, mutations []Mutation) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Validate the whole batch before applying any of it.
	touched := make(map[int]bool, len(mutations))
	for _, m := range mutations {
		switch m.Kind {
		case MutationUpdateStock:
			if m.NewStockCount.IsNegative() {
				return fmt.Errorf("refusing to set stock of item %d below zero", m.ItemID)
			}
			// A second update of the same item would run against the version
			// the first one already bumped; postgres fails that check, so we
			// do too instead of letting the later entry win.
			if touched[m.ItemID] {
				return custom_error.ErrConcurrentModification
			}
			touched[m.ItemID] = true
			r, ok := l.items[m.ItemID]
			if !ok || r.Version != m.ExpectedVersion {
				return custom_error.ErrConcurrentModification
			}
		case MutationSetOrderStatus:
			o, ok := l.orders[m.OrderID]
			if !ok || o.version != m.OrderVersion {
				return custom_error.ErrConcurrentModification
			}
		case MutationIncrementFinishedGood:
			// unconditional
		default:
			return fmt.Errorf("unsupported mutation kind %d", m.Kind)
		}
	}

	for _, m := range mutations {
		switch m.Kind {
		case MutationUpdateStock:
			r := l.items[m.ItemID]
			r.Item.StockCount = m.NewStockCount
			r.Version++
			l.items[m.ItemID] = r
		case MutationIncrementFinishedGood:
			l.incrementFinishedGoodLocked(m.Name, m.Quantity)
		case MutationSetOrderStatus:
			o := l.orders[m.OrderID]
			o.status = m.NewOrderStatus
			o.version++
			l.orders[m.OrderID] = o
		}
	}

	return nil
}

func (l *MemoryLedger) findByNameLocked(kind models.ItemKind, name string) (int, bool) {
	needle := strings.ToLower(name)
	for id, r := range l.items {
		if r.Item.Kind == kind && strings.ToLower(r.Item.Name) == needle {
			return id, true
		}
	}
	return 0, false
}

func (l *MemoryLedger) incrementFinishedGoodLocked(name string, quantity decimal.Decimal) {
	if id, ok := l.findByNameLocked(models.FinishedGood, name); ok {
		r := l.items[id]
		r.Item.StockCount = r.Item.StockCount.Add(quantity)
		r.Version++
		l.items[id] = r
		return
	}

	l.nextItemID++
	l.items[l.nextItemID] = Record{
		Item: models.InventoryItem{
			ID:         l.nextItemID,
			Name:       name,
			Kind:       models.FinishedGood,
			UnitValue:  decimal.NewFromInt(1),
			UnitType:   "unit",
			StockCount: quantity,
		},
		Version: 1,
	}
}
