package ledger

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/shopspring/decimal"

	"github.com/xhorus11/mrp/internal/repository"
	custom_error "github.com/xhorus11/mrp/pkg/errors"
	"github.com/xhorus11/mrp/pkg/models"
)

// PostgresLedger keeps versions in a per-row counter column; every write
// bumps it, every conditional write checks it.
type PostgresLedger struct {
	r *repository.Repository
}

func NewPostgresLedger(r *repository.Repository) *PostgresLedger {
	return &PostgresLedger{r: r}
}

type itemRow struct {
	ID         int             `db:"id"`
	Name       string          `db:"name"`
	Kind       string          `db:"kind"`
	UnitValue  decimal.Decimal `db:"unit_value"`
	UnitType   string          `db:"unit_type"`
	StockCount decimal.Decimal `db:"stock_count"`
	Version    int64           `db:"version"`
}

func (l *PostgresLedger) Snapshot(ctx context.Context) (*Snapshot, error) {
	var rows []itemRow
	query := l.r.GoquDBWrapper.
		From("inventory_items").
		Select("id", "name", "kind", "unit_value", "unit_type", "stock_count", "version").
		Order(goqu.I("id").Asc())

	if err := query.Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("error reading inventory snapshot: %w", err)
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, Record{
			Item: models.InventoryItem{
				ID:         row.ID,
				Name:       row.Name,
				Kind:       models.ItemKind(row.Kind),
				UnitValue:  row.UnitValue,
				UnitType:   row.UnitType,
				StockCount: row.StockCount,
			},
			Version: row.Version,
		})
	}

	return NewSnapshot(records), nil
}

func (l *PostgresLedger) ApplyAtomic(ctx context.Context, mutations []Mutation) error {
	return repository.WithTransaction(ctx, l.r.GoquDBWrapper, func(tx *goqu.TxDatabase) error {
		for _, m := range mutations {
			var err error
			switch m.Kind {
			case MutationUpdateStock:
				err = l.applyStockUpdate(ctx, tx, m)
			case MutationIncrementFinishedGood:
				err = l.applyFinishedGoodIncrement(ctx, tx, m)
			case MutationSetOrderStatus:
				err = l.applyOrderStatus(ctx, tx, m)
			default:
				err = fmt.Errorf("unsupported mutation kind %d", m.Kind)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (l *PostgresLedger) applyStockUpdate(ctx context.Context, tx *goqu.TxDatabase, m Mutation) error {
	if m.NewStockCount.IsNegative() {
		return fmt.Errorf("refusing to set stock of item %d below zero", m.ItemID)
	}

	query := tx.Update("inventory_items").
		Set(goqu.Record{
			"stock_count": m.NewStockCount,
			"version":     goqu.L("version + 1"),
		}).
		Where(goqu.Ex{
			"id":      m.ItemID,
			"version": m.ExpectedVersion,
		})

	result, err := query.Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update stock of item %d: %w", m.ItemID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows for item %d: %w", m.ItemID, err)
	}
	if affected == 0 {
		return custom_error.ErrConcurrentModification
	}

	return nil
}

// applyFinishedGoodIncrement upserts the produced good by normalized name.
// The increment is relative, so it carries no version token; a missing row
// is created as a single-unit package holding the produced quantity.
func (l *PostgresLedger) applyFinishedGoodIncrement(ctx context.Context, tx *goqu.TxDatabase, m Mutation) error {
	query := tx.Update("inventory_items").
		Set(goqu.Record{
			"stock_count": goqu.L("stock_count + ?", m.Quantity),
			"version":     goqu.L("version + 1"),
		}).
		Where(
			goqu.L("LOWER(name) = LOWER(?)", m.Name),
			goqu.Ex{"kind": string(models.FinishedGood)},
		)

	result, err := query.Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to increment finished good %q: %w", m.Name, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows for finished good %q: %w", m.Name, err)
	}
	if affected > 0 {
		return nil
	}

	insert := tx.Insert("inventory_items").
		Rows(goqu.Record{
			"name":        m.Name,
			"kind":        string(models.FinishedGood),
			"unit_value":  decimal.NewFromInt(1),
			"unit_type":   "unit",
			"stock_count": m.Quantity,
			"version":     1,
		})

	if _, err := insert.Executor().ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to create finished good %q: %w", m.Name, err)
	}

	return nil
}

func (l *PostgresLedger) applyOrderStatus(ctx context.Context, tx *goqu.TxDatabase, m Mutation) error {
	query := tx.Update("sales_orders").
		Set(goqu.Record{
			"status":  string(m.NewOrderStatus),
			"version": goqu.L("version + 1"),
		}).
		Where(goqu.Ex{
			"id":      m.OrderID,
			"version": m.OrderVersion,
		})

	result, err := query.Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update status of order %d: %w", m.OrderID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows for order %d: %w", m.OrderID, err)
	}
	if affected == 0 {
		return custom_error.ErrConcurrentModification
	}

	return nil
}
