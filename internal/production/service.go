package production

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/xhorus11/mrp/internal/ledger"
	custom_error "github.com/xhorus11/mrp/pkg/errors"
	"github.com/xhorus11/mrp/pkg/models"
)

// maxCommitAttempts bounds the automatic re-plan loop on commit conflicts.
// Shortages and validation failures are user problems and never retried.
const maxCommitAttempts = 3

type RecipeCatalog interface {
	GetRecipe(ctx context.Context, id int) (*models.Recipe, error)
}

type Service struct {
	recipes   RecipeCatalog
	ledger    ledger.Ledger
	committer *Committer
	log       *zap.Logger
}

func NewService(recipes RecipeCatalog, l ledger.Ledger, log *zap.Logger) *Service {
	return &Service{
		recipes:   recipes,
		ledger:    l,
		committer: NewCommitter(l),
		log:       log,
	}
}

// PreviewProduction computes a plan or shortage report without touching the
// ledger. Safe to call repeatedly.
func (s *Service) PreviewProduction(ctx context.Context, recipeID int, quantity int64) (*models.DeductionPlan, *models.ShortageReport, error) {
	recipe, err := s.recipes.GetRecipe(ctx, recipeID)
	if err != nil {
		return nil, nil, err
	}

	snap, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}

	return Plan(*recipe, quantity, snap)
}

// Commit applies a previously previewed plan once, with no retry. Expect
// ErrConcurrentModification when the inventory moved since the preview.
func (s *Service) Commit(ctx context.Context, plan *models.DeductionPlan) (*models.CommitResult, error) {
	return s.committer.Commit(ctx, plan)
}

// ConfirmProduction plans and commits in one call. A commit conflict means
// somebody else changed a touched item between snapshot and commit; the
// service re-snapshots and re-plans up to maxCommitAttempts times, so stock
// checks are always re-validated against fresh versions and no commit can
// overdraw an ingredient.
func (s *Service) ConfirmProduction(ctx context.Context, recipeID int, quantity int64) (*models.CommitResult, *models.ShortageReport, error) {
	recipe, err := s.recipes.GetRecipe(ctx, recipeID)
	if err != nil {
		return nil, nil, err
	}

	for attempt := 1; attempt <= maxCommitAttempts; attempt++ {
		snap, err := s.ledger.Snapshot(ctx)
		if err != nil {
			return nil, nil, err
		}

		plan, report, err := Plan(*recipe, quantity, snap)
		if err != nil {
			return nil, nil, err
		}
		if report != nil {
			return nil, report, nil
		}

		result, err := s.committer.Commit(ctx, plan)
		if errors.Is(err, custom_error.ErrConcurrentModification) {
			s.log.Warn("production commit conflicted, re-planning",
				zap.Int("recipe_id", recipeID),
				zap.Int("attempt", attempt),
			)
			continue
		}
		if err != nil {
			return nil, nil, err
		}

		s.log.Info("production committed",
			zap.Int("recipe_id", recipeID),
			zap.Int64("quantity", quantity),
			zap.String("plan_id", plan.PlanID.String()),
		)
		return result, nil, nil
	}

	return nil, nil, custom_error.ErrConcurrentModification
}
