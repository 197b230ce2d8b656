package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"

	"github.com/xhorus11/mrp/internal/repository"
	custom_error "github.com/xhorus11/mrp/pkg/errors"
	"github.com/xhorus11/mrp/pkg/models"
)

type OrderRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *OrderRepository {
	return &OrderRepository{repository: r}
}

func (r *OrderRepository) GetOrders(ctx context.Context, status string) ([]models.SalesOrder, error) {
	query := r.repository.GoquDBWrapper.
		From("sales_orders").
		Select("id", "customer_name", "recipe_id", "product_description", "quantity", "order_date", "status", "version").
		Order(goqu.I("order_date").Desc(), goqu.I("id").Desc())

	if status != "" {
		query = query.Where(goqu.Ex{"status": status})
	}

	var orders []models.SalesOrder
	if err := query.Executor().ScanStructsContext(ctx, &orders); err != nil {
		return nil, fmt.Errorf("error listing sales orders: %w", err)
	}

	return orders, nil
}

func (r *OrderRepository) GetOrder(ctx context.Context, id int) (*models.SalesOrder, error) {
	var order models.SalesOrder
	query := r.repository.GoquDBWrapper.
		From("sales_orders").
		Select("id", "customer_name", "recipe_id", "product_description", "quantity", "order_date", "status", "version").
		Where(goqu.Ex{"id": id})

	found, err := query.Executor().ScanStructContext(ctx, &order)
	if err != nil {
		return nil, fmt.Errorf("error fetching sales order %d: %w", id, err)
	}
	if !found {
		return nil, &custom_error.NotFoundError{Resource: "sales order", Key: strconv.Itoa(id)}
	}

	return &order, nil
}

func (r *OrderRepository) PersistOrder(ctx context.Context, req OrderRequest) (*models.SalesOrder, error) {
	orderDate := time.Now().UTC()
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}

	order := models.SalesOrder{
		CustomerName:       req.CustomerName,
		RecipeID:           req.RecipeID,
		ProductDescription: req.ProductDescription,
		Quantity:           req.Quantity,
		OrderDate:          orderDate,
		Status:             models.OrderPending,
		Version:            1,
	}

	query := r.repository.GoquDBWrapper.Insert("sales_orders").
		Rows(goqu.Record{
			"customer_name":       req.CustomerName,
			"recipe_id":           req.RecipeID,
			"product_description": req.ProductDescription,
			"quantity":            req.Quantity,
			"order_date":          orderDate,
			"status":              string(models.OrderPending),
			"version":             1,
		}).
		Returning("id")

	if _, err := query.Executor().ScanValContext(ctx, &order.ID); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return nil, custom_error.WrapDBError("for sales order", string(pqErr.Code))
		}
		return nil, fmt.Errorf("failed to insert sales order record: %w", err)
	}

	return &order, nil
}

// UpdateOrder edits the order's descriptive fields. Status is owned by the
// fulfillment flow and never written here.
func (r *OrderRepository) UpdateOrder(ctx context.Context, id int, req OrderRequest) (*models.SalesOrder, error) {
	record := goqu.Record{
		"customer_name":       req.CustomerName,
		"recipe_id":           req.RecipeID,
		"product_description": req.ProductDescription,
		"quantity":            req.Quantity,
		"version":             goqu.L("version + 1"),
	}
	if req.OrderDate != nil {
		record["order_date"] = *req.OrderDate
	}

	query := r.repository.GoquDBWrapper.Update("sales_orders").
		Set(record).
		Where(goqu.Ex{"id": id})

	result, err := query.Executor().ExecContext(ctx)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return nil, custom_error.WrapDBError("for sales order", string(pqErr.Code))
		}
		return nil, fmt.Errorf("failed to update sales order %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return nil, &custom_error.NotFoundError{Resource: "sales order", Key: strconv.Itoa(id)}
	}

	return r.GetOrder(ctx, id)
}

func (r *OrderRepository) DeleteOrder(ctx context.Context, id int) error {
	query := r.repository.GoquDBWrapper.Delete("sales_orders").Where(goqu.Ex{"id": id})

	result, err := query.Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete sales order %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return &custom_error.NotFoundError{Resource: "sales order", Key: strconv.Itoa(id)}
	}

	return nil
}
