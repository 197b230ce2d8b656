package production

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/xhorus11/mrp/internal/ledger"
	"github.com/xhorus11/mrp/pkg/models"
)

type Committer struct {
	ledger ledger.Ledger
}

func NewCommitter(l ledger.Ledger) *Committer {
	return &Committer{ledger: l}
}

// Commit applies every deduction of the plan plus the finished-good upsert
// as one conditional transaction. On a version conflict the ledger applies
// nothing and the caller must re-plan against a fresh snapshot.
func (c *Committer) Commit(ctx context.Context, plan *models.DeductionPlan) (*models.CommitResult, error) {
	mutations := make([]ledger.Mutation, 0, len(plan.Entries)+1)
	for _, entry := range plan.Entries {
		mutations = append(mutations, ledger.UpdateStock(entry.ItemID, entry.ExpectedVersion, entry.NewStockCount))
	}
	mutations = append(mutations, ledger.IncrementFinishedGood(
		plan.Increment.Name,
		decimal.NewFromInt(plan.Increment.Quantity),
	))

	if err := c.ledger.ApplyAtomic(ctx, mutations); err != nil {
		return nil, err
	}

	result := &models.CommitResult{PlanID: plan.PlanID.String(), RecipeID: plan.RecipeID}
	for _, entry := range plan.Entries {
		result.Changes = append(result.Changes, models.StockChange{
			ItemID:        entry.ItemID,
			ItemName:      entry.ItemName,
			NewStockCount: entry.NewStockCount,
		})
	}

	return result, nil
}
