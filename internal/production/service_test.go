package production

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xhorus11/mrp/internal/ledger"
	custom_error "github.com/xhorus11/mrp/pkg/errors"
	"github.com/xhorus11/mrp/pkg/models"
)

type MockRecipeCatalog struct {
	mock.Mock
}

func (m *MockRecipeCatalog) GetRecipe(ctx context.Context, id int) (*models.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

// conflictingLedger fails the first conflictCount commits, then delegates.
type conflictingLedger struct {
	*ledger.MemoryLedger
	conflictCount int32
	applyCalls    int32
}

func (l *conflictingLedger) ApplyAtomic(ctx context.Context, mutations []ledger.Mutation) error {
	atomic.AddInt32(&l.applyCalls, 1)
	if atomic.AddInt32(&l.conflictCount, -1) >= 0 {
		return custom_error.ErrConcurrentModification
	}
	return l.MemoryLedger.ApplyAtomic(ctx, mutations)
}

func flourBreadFixture(stockCount string) (*ledger.MemoryLedger, *MockRecipeCatalog, int) {
	l := ledger.NewMemoryLedger()
	flourID := seedRawMaterial(l, "flour", "g", "1000", stockCount)

	recipe := breadRecipe(
		models.Ingredient{IngredientName: "flour", Quantity: dec("1000"), Unit: "g"},
	)
	catalog := new(MockRecipeCatalog)
	catalog.On("GetRecipe", mock.Anything, 1).Return(&recipe, nil)

	return l, catalog, flourID
}

func TestConfirmProductionCommits(t *testing.T) {
	l, catalog, flourID := flourBreadFixture("3")
	service := NewService(catalog, l, zap.NewNop())

	result, report, err := service.ConfirmProduction(context.Background(), 1, 2)
	assert.NoError(t, err)
	assert.Nil(t, report)
	assert.NotNil(t, result)

	flour, _, _ := l.Item(flourID)
	assert.True(t, flour.StockCount.Equal(dec("1")), "got %s", flour.StockCount)

	bread, ok := l.FindItem(models.FinishedGood, "bread")
	assert.True(t, ok)
	assert.True(t, bread.StockCount.Equal(dec("2")))

	catalog.AssertExpectations(t)
}

func TestConfirmProductionRetriesAfterConflict(t *testing.T) {
	l, catalog, flourID := flourBreadFixture("3")
	flaky := &conflictingLedger{MemoryLedger: l, conflictCount: 1}
	service := NewService(catalog, flaky, zap.NewNop())

	result, report, err := service.ConfirmProduction(context.Background(), 1, 1)
	assert.NoError(t, err)
	assert.Nil(t, report)
	assert.NotNil(t, result)
	assert.Equal(t, int32(2), atomic.LoadInt32(&flaky.applyCalls))

	flour, _, _ := l.Item(flourID)
	assert.True(t, flour.StockCount.Equal(dec("2")), "got %s", flour.StockCount)
}

func TestConfirmProductionGivesUpAfterBoundedRetries(t *testing.T) {
	l, catalog, flourID := flourBreadFixture("3")
	flaky := &conflictingLedger{MemoryLedger: l, conflictCount: 100}
	service := NewService(catalog, flaky, zap.NewNop())

	_, _, err := service.ConfirmProduction(context.Background(), 1, 1)
	assert.ErrorIs(t, err, custom_error.ErrConcurrentModification)
	assert.Equal(t, int32(maxCommitAttempts), atomic.LoadInt32(&flaky.applyCalls))

	flour, _, _ := l.Item(flourID)
	assert.True(t, flour.StockCount.Equal(dec("3")), "nothing may have been applied")
}

func TestConfirmProductionSurfacesShortageWithoutRetry(t *testing.T) {
	l, catalog, _ := flourBreadFixture("1")
	service := NewService(catalog, l, zap.NewNop())

	result, report, err := service.ConfirmProduction(context.Background(), 1, 2)
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NotNil(t, report)
	assert.Equal(t, models.InsufficientStock, report.Shortages[0].Kind)
}

func TestPreviewProductionRecipeNotFound(t *testing.T) {
	l := ledger.NewMemoryLedger()
	catalog := new(MockRecipeCatalog)
	catalog.On("GetRecipe", mock.Anything, 42).Return(nil, &custom_error.NotFoundError{Resource: "recipe", Key: "42"})
	service := NewService(catalog, l, zap.NewNop())

	_, _, err := service.PreviewProduction(context.Background(), 42, 1)
	var notFound *custom_error.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

// Two plans derived from the same snapshot race for the last batch of
// flour: exactly one commit wins, the other fails its version check.
func TestConcurrentCommitsFromSameSnapshot(t *testing.T) {
	l, _, flourID := flourBreadFixture("1")
	recipe := breadRecipe(
		models.Ingredient{IngredientName: "flour", Quantity: dec("1000"), Unit: "g"},
	)

	snap, err := l.Snapshot(context.Background())
	assert.NoError(t, err)

	planA, _, err := Plan(recipe, 1, snap)
	assert.NoError(t, err)
	planB, _, err := Plan(recipe, 1, snap)
	assert.NoError(t, err)

	committer := NewCommitter(l)
	results := make([]error, 2)

	var group errgroup.Group
	group.Go(func() error {
		_, results[0] = committer.Commit(context.Background(), planA)
		return nil
	})
	group.Go(func() error {
		_, results[1] = committer.Commit(context.Background(), planB)
		return nil
	})
	assert.NoError(t, group.Wait())

	var successes, conflicts int
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, custom_error.ErrConcurrentModification):
			conflicts++
		default:
			t.Fatalf("unexpected commit error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)

	flour, _, _ := l.Item(flourID)
	assert.True(t, flour.StockCount.Equal(dec("0")), "got %s", flour.StockCount)
	assert.False(t, flour.StockCount.IsNegative())
}

// With the retry loop in front, the losing caller re-plans against fresh
// stock and gets a shortage instead of a conflict; either way the contested
// ingredient is only consumed once.
func TestConcurrentConfirmationsNeverOverdraw(t *testing.T) {
	l, catalog, flourID := flourBreadFixture("1")
	service := NewService(catalog, l, zap.NewNop())

	type outcome struct {
		committed bool
		report    *models.ShortageReport
		err       error
	}
	outcomes := make([]outcome, 2)

	var group errgroup.Group
	for i := range outcomes {
		i := i
		group.Go(func() error {
			result, report, err := service.ConfirmProduction(context.Background(), 1, 1)
			outcomes[i] = outcome{committed: result != nil, report: report, err: err}
			return nil
		})
	}
	assert.NoError(t, group.Wait())

	var committed int
	for _, o := range outcomes {
		if o.committed {
			committed++
			continue
		}
		// The loser must have been told why, one way or the other.
		assert.True(t, o.report != nil || errors.Is(o.err, custom_error.ErrConcurrentModification))
	}
	assert.Equal(t, 1, committed)

	flour, _, _ := l.Item(flourID)
	assert.True(t, flour.StockCount.Equal(dec("0")), "got %s", flour.StockCount)

	bread, ok := l.FindItem(models.FinishedGood, "bread")
	assert.True(t, ok)
	assert.True(t, bread.StockCount.Equal(dec("1")), "exactly one batch produced, got %s", bread.StockCount)
}
