// Package orders manages sales orders and fulfills them against
// finished-good stock through the same conditional-commit ledger the
// production flow uses.
package orders

import (
	"context"
	"errors"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xhorus11/mrp/internal/ledger"
	custom_error "github.com/xhorus11/mrp/pkg/errors"
	"github.com/xhorus11/mrp/pkg/models"
)

const maxCommitAttempts = 3

type OrderStore interface {
	GetOrder(ctx context.Context, id int) (*models.SalesOrder, error)
}

type RecipeResolver interface {
	GetRecipe(ctx context.Context, id int) (*models.Recipe, error)
}

type FulfillmentService struct {
	orders  OrderStore
	recipes RecipeResolver
	ledger  ledger.Ledger
	log     *zap.Logger
}

func NewFulfillmentService(orders OrderStore, recipes RecipeResolver, l ledger.Ledger, log *zap.Logger) *FulfillmentService {
	return &FulfillmentService{
		orders:  orders,
		recipes: recipes,
		ledger:  l,
		log:     log,
	}
}

// productName resolves what the order actually deducts: the linked recipe's
// name when a recipe is referenced, the free-text description otherwise.
func (s *FulfillmentService) productName(ctx context.Context, order *models.SalesOrder) (string, error) {
	if order.RecipeID == nil {
		return order.ProductDescription, nil
	}

	recipe, err := s.recipes.GetRecipe(ctx, *order.RecipeID)
	if err != nil {
		return "", err
	}
	return recipe.Name, nil
}

// PreviewCompletion reports what completing the order would do, without
// committing anything.
func (s *FulfillmentService) PreviewCompletion(ctx context.Context, orderID int) (*models.CommitResult, *models.ShortageReport, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if order.Status != models.OrderPending {
		return nil, nil, &custom_error.ValidationError{Field: "status", Message: "order is already completed"}
	}

	snap, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}

	change, report, err := s.planCompletion(ctx, order, snap)
	if err != nil || report != nil {
		return nil, report, err
	}

	return &models.CommitResult{Changes: []models.StockChange{*change}}, nil, nil
}

// Complete deducts finished-good stock and marks the order completed as one
// atomic commit. On a version conflict it re-reads the order and the
// inventory and tries again, up to maxCommitAttempts.
func (s *FulfillmentService) Complete(ctx context.Context, orderID int) (*models.CommitResult, *models.ShortageReport, error) {
	for attempt := 1; attempt <= maxCommitAttempts; attempt++ {
		order, err := s.orders.GetOrder(ctx, orderID)
		if err != nil {
			return nil, nil, err
		}
		if order.Status != models.OrderPending {
			return nil, nil, &custom_error.ValidationError{Field: "status", Message: "order is already completed"}
		}

		snap, err := s.ledger.Snapshot(ctx)
		if err != nil {
			return nil, nil, err
		}

		change, report, err := s.planCompletion(ctx, order, snap)
		if err != nil {
			return nil, nil, err
		}
		if report != nil {
			return nil, report, nil
		}

		record, _ := snap.ByID(change.ItemID)
		err = s.ledger.ApplyAtomic(ctx, []ledger.Mutation{
			ledger.UpdateStock(change.ItemID, record.Version, change.NewStockCount),
			ledger.SetOrderStatus(order.ID, order.Version, models.OrderCompleted),
		})
		if errors.Is(err, custom_error.ErrConcurrentModification) {
			s.log.Warn("order completion conflicted, retrying",
				zap.Int("order_id", orderID),
				zap.Int("attempt", attempt),
			)
			continue
		}
		if err != nil {
			return nil, nil, err
		}

		s.log.Info("sales order completed",
			zap.Int("order_id", orderID),
			zap.Int64("quantity", order.Quantity),
		)
		return &models.CommitResult{Changes: []models.StockChange{*change}}, nil, nil
	}

	return nil, nil, custom_error.ErrConcurrentModification
}

// Reopen returns a completed order to pending. Stock deducted by the
// completion is NOT restored; reopening is a status-only reversal.
func (s *FulfillmentService) Reopen(ctx context.Context, orderID int) (*models.CommitResult, error) {
	for attempt := 1; attempt <= maxCommitAttempts; attempt++ {
		order, err := s.orders.GetOrder(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if order.Status != models.OrderCompleted {
			return nil, &custom_error.ValidationError{Field: "status", Message: "order is not completed"}
		}

		err = s.ledger.ApplyAtomic(ctx, []ledger.Mutation{
			ledger.SetOrderStatus(order.ID, order.Version, models.OrderPending),
		})
		if errors.Is(err, custom_error.ErrConcurrentModification) {
			s.log.Warn("order reopen conflicted, retrying",
				zap.Int("order_id", orderID),
				zap.Int("attempt", attempt),
			)
			continue
		}
		if err != nil {
			return nil, err
		}

		s.log.Info("sales order reopened", zap.Int("order_id", orderID))
		return &models.CommitResult{}, nil
	}

	return nil, custom_error.ErrConcurrentModification
}

func (s *FulfillmentService) planCompletion(ctx context.Context, order *models.SalesOrder, snap *ledger.Snapshot) (*models.StockChange, *models.ShortageReport, error) {
	name, err := s.productName(ctx, order)
	if err != nil {
		return nil, nil, err
	}

	record, ok := snap.FindByName(models.FinishedGood, name)
	if !ok {
		return nil, nil, &custom_error.NotFoundError{Resource: "finished good", Key: name}
	}
	item := record.Item

	quantity := decimal.NewFromInt(order.Quantity)
	if item.StockCount.LessThan(quantity) {
		report := &models.ShortageReport{}
		report.Add(models.ShortageEntry{
			Kind:           models.InsufficientFinishedGood,
			IngredientName: item.Name,
			Required:       quantity,
			Available:      item.StockCount,
			Unit:           item.UnitType,
			Detail:         "order " + strconv.Itoa(order.ID) + " exceeds finished-good stock",
		})
		return nil, report, nil
	}

	return &models.StockChange{
		ItemID:        item.ID,
		ItemName:      item.Name,
		NewStockCount: item.StockCount.Sub(quantity),
	}, nil, nil
}
