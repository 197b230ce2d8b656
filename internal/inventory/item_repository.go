package inventory

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"

	"github.com/xhorus11/mrp/internal/repository"
	custom_error "github.com/xhorus11/mrp/pkg/errors"
	"github.com/xhorus11/mrp/pkg/models"
)

type ItemRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *ItemRepository {
	return &ItemRepository{repository: r}
}

func (r *ItemRepository) GetItems(ctx context.Context, kind string) ([]models.InventoryItem, error) {
	query := r.repository.GoquDBWrapper.
		From("inventory_items").
		Select("id", "name", "kind", "unit_value", "unit_type", "stock_count").
		Order(goqu.I("id").Asc())

	if kind != "" {
		query = query.Where(goqu.Ex{"kind": kind})
	}

	var items []models.InventoryItem
	if err := query.Executor().ScanStructsContext(ctx, &items); err != nil {
		return nil, fmt.Errorf("error listing inventory items: %w", err)
	}

	return items, nil
}

func (r *ItemRepository) GetItem(ctx context.Context, id int) (*models.InventoryItem, error) {
	var item models.InventoryItem
	query := r.repository.GoquDBWrapper.
		From("inventory_items").
		Select("id", "name", "kind", "unit_value", "unit_type", "stock_count").
		Where(goqu.Ex{"id": id})

	found, err := query.Executor().ScanStructContext(ctx, &item)
	if err != nil {
		return nil, fmt.Errorf("error fetching inventory item %d: %w", id, err)
	}
	if !found {
		return nil, &custom_error.NotFoundError{Resource: "inventory item", Key: strconv.Itoa(id)}
	}

	return &item, nil
}

func (r *ItemRepository) PersistItem(ctx context.Context, req ItemRequest) (*models.InventoryItem, error) {
	item := models.InventoryItem{
		Name:       req.Name,
		Kind:       req.Kind,
		UnitValue:  req.UnitValue,
		UnitType:   req.UnitType,
		StockCount: req.StockCount,
	}

	query := r.repository.GoquDBWrapper.Insert("inventory_items").
		Rows(goqu.Record{
			"name":        req.Name,
			"kind":        string(req.Kind),
			"unit_value":  req.UnitValue,
			"unit_type":   req.UnitType,
			"stock_count": req.StockCount,
			"version":     1,
		}).
		Returning("id")

	if _, err := query.Executor().ScanValContext(ctx, &item.ID); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return nil, custom_error.WrapDBError("Duplicate item name for kind "+string(req.Kind), string(pqErr.Code))
		}
		return nil, fmt.Errorf("failed to insert inventory item record: %w", err)
	}

	return &item, nil
}

// UpdateItem rewrites every editable field and bumps the version so any
// in-flight production plan touching this item fails its commit and
// re-plans against the edited stock.
func (r *ItemRepository) UpdateItem(ctx context.Context, id int, req ItemRequest) (*models.InventoryItem, error) {
	query := r.repository.GoquDBWrapper.Update("inventory_items").
		Set(goqu.Record{
			"name":        req.Name,
			"kind":        string(req.Kind),
			"unit_value":  req.UnitValue,
			"unit_type":   req.UnitType,
			"stock_count": req.StockCount,
			"version":     goqu.L("version + 1"),
		}).
		Where(goqu.Ex{"id": id})

	result, err := query.Executor().ExecContext(ctx)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return nil, custom_error.WrapDBError("Duplicate item name for kind "+string(req.Kind), string(pqErr.Code))
		}
		return nil, fmt.Errorf("failed to update inventory item %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return nil, &custom_error.NotFoundError{Resource: "inventory item", Key: strconv.Itoa(id)}
	}

	return &models.InventoryItem{
		ID:         id,
		Name:       req.Name,
		Kind:       req.Kind,
		UnitValue:  req.UnitValue,
		UnitType:   req.UnitType,
		StockCount: req.StockCount,
	}, nil
}

func (r *ItemRepository) DeleteItem(ctx context.Context, id int) error {
	query := r.repository.GoquDBWrapper.Delete("inventory_items").Where(goqu.Ex{"id": id})

	result, err := query.Executor().ExecContext(ctx)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return custom_error.WrapDBError("Item is referenced by other records", string(pqErr.Code))
		}
		return fmt.Errorf("failed to delete inventory item %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return &custom_error.NotFoundError{Resource: "inventory item", Key: strconv.Itoa(id)}
	}

	return nil
}
