package container

import (
	"database/sql"

	"go.uber.org/zap"

	auditLogRepo "github.com/xhorus11/mrp/internal/auditlog"
	"github.com/xhorus11/mrp/internal/inventory"
	"github.com/xhorus11/mrp/internal/ledger"
	"github.com/xhorus11/mrp/internal/orders"
	"github.com/xhorus11/mrp/internal/production"
	"github.com/xhorus11/mrp/internal/recipes"
	"github.com/xhorus11/mrp/internal/repository"
	"github.com/xhorus11/mrp/pkg/auditlog"
)

type Container struct {
	Repository        *repository.Repository
	Ledger            *ledger.PostgresLedger
	AuditLog          *auditlog.Auditlog
	ItemHandler       *inventory.ItemHandler
	RecipeHandler     *recipes.RecipeHandler
	OrderHandler      *orders.OrderHandler
	ProductionHandler *production.ProductionHandler
}

func NewAppContainer(db *sql.DB, log *zap.Logger) *Container {
	repo := repository.NewRepository(db)
	auditRepo := auditLogRepo.NewRepository(repo)
	auditLog := auditlog.NewAuditLog(auditRepo)
	inventoryLedger := ledger.NewPostgresLedger(repo)

	itemRepo := inventory.NewRepository(repo)
	recipeRepo := recipes.NewRepository(repo)
	orderRepo := orders.NewRepository(repo)

	productionService := production.NewService(recipeRepo, inventoryLedger, log)
	fulfillmentService := orders.NewFulfillmentService(orderRepo, recipeRepo, inventoryLedger, log)

	return &Container{
		Repository:        repo,
		Ledger:            inventoryLedger,
		AuditLog:          auditLog,
		ItemHandler:       inventory.NewItemHandler(itemRepo, auditLog),
		RecipeHandler:     recipes.NewRecipeHandler(recipeRepo, auditLog),
		OrderHandler:      orders.NewOrderHandler(orderRepo, fulfillmentService, auditLog),
		ProductionHandler: production.NewProductionHandler(productionService, auditLog),
	}
}
