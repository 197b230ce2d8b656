package recipes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"

	"github.com/xhorus11/mrp/internal/repository"
	custom_error "github.com/xhorus11/mrp/pkg/errors"
	"github.com/xhorus11/mrp/pkg/models"
)

type RecipeRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *RecipeRepository {
	return &RecipeRepository{repository: r}
}

func (r *RecipeRepository) GetRecipe(ctx context.Context, id int) (*models.Recipe, error) {
	var recipe models.Recipe
	query := r.repository.GoquDBWrapper.
		From("recipes").
		Select("id", "name", "product_type").
		Where(goqu.Ex{"id": id})

	found, err := query.Executor().ScanStructContext(ctx, &recipe)
	if err != nil {
		return nil, fmt.Errorf("error fetching recipe %d: %w", id, err)
	}
	if !found {
		return nil, &custom_error.NotFoundError{Resource: "recipe", Key: strconv.Itoa(id)}
	}

	ingredients, err := r.getIngredients(ctx, id)
	if err != nil {
		return nil, err
	}
	recipe.Ingredients = ingredients

	return &recipe, nil
}

func (r *RecipeRepository) getIngredients(ctx context.Context, recipeID int) ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	query := r.repository.GoquDBWrapper.
		From("recipe_ingredients").
		Select("id", "ingredient_name", "quantity", "unit").
		Where(goqu.Ex{"recipe_id": recipeID}).
		Order(goqu.I("id").Asc())

	if err := query.Executor().ScanStructsContext(ctx, &ingredients); err != nil {
		return nil, fmt.Errorf("error fetching ingredients of recipe %d: %w", recipeID, err)
	}

	return ingredients, nil
}

func (r *RecipeRepository) GetRecipes(ctx context.Context) ([]models.Recipe, error) {
	var recipes []models.Recipe
	query := r.repository.GoquDBWrapper.
		From("recipes").
		Select("id", "name", "product_type").
		Order(goqu.I("id").Asc())

	if err := query.Executor().ScanStructsContext(ctx, &recipes); err != nil {
		return nil, fmt.Errorf("error listing recipes: %w", err)
	}

	for i := range recipes {
		ingredients, err := r.getIngredients(ctx, recipes[i].ID)
		if err != nil {
			return nil, err
		}
		recipes[i].Ingredients = ingredients
	}

	return recipes, nil
}

// PersistRecipe inserts the recipe row and its ingredient lines in one
// transaction so a recipe is never observed half-written.
func (r *RecipeRepository) PersistRecipe(ctx context.Context, req RecipeRequest) (*models.Recipe, error) {
	recipe := models.Recipe{
		Name:        req.Name,
		ProductType: req.ProductType,
	}

	err := repository.WithTransaction(ctx, r.repository.GoquDBWrapper, func(tx *goqu.TxDatabase) error {
		insert := tx.Insert("recipes").
			Rows(goqu.Record{
				"name":         req.Name,
				"product_type": req.ProductType,
			}).
			Returning("id")

		if _, err := insert.Executor().ScanValContext(ctx, &recipe.ID); err != nil {
			return wrapRecipeError("failed to insert recipe record", err)
		}

		return insertIngredients(ctx, tx, recipe.ID, req.Ingredients, &recipe)
	})
	if err != nil {
		return nil, err
	}

	return &recipe, nil
}

// UpdateRecipe replaces the recipe row and all of its ingredient lines.
func (r *RecipeRepository) UpdateRecipe(ctx context.Context, id int, req RecipeRequest) (*models.Recipe, error) {
	recipe := models.Recipe{
		ID:          id,
		Name:        req.Name,
		ProductType: req.ProductType,
	}

	err := repository.WithTransaction(ctx, r.repository.GoquDBWrapper, func(tx *goqu.TxDatabase) error {
		update := tx.Update("recipes").
			Set(goqu.Record{
				"name":         req.Name,
				"product_type": req.ProductType,
			}).
			Where(goqu.Ex{"id": id})

		result, err := update.Executor().ExecContext(ctx)
		if err != nil {
			return wrapRecipeError("failed to update recipe record", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if affected == 0 {
			return &custom_error.NotFoundError{Resource: "recipe", Key: strconv.Itoa(id)}
		}

		purge := tx.Delete("recipe_ingredients").Where(goqu.Ex{"recipe_id": id})
		if _, err := purge.Executor().ExecContext(ctx); err != nil {
			return fmt.Errorf("failed to clear recipe ingredients: %w", err)
		}

		return insertIngredients(ctx, tx, id, req.Ingredients, &recipe)
	})
	if err != nil {
		return nil, err
	}

	return &recipe, nil
}

func (r *RecipeRepository) DeleteRecipe(ctx context.Context, id int) error {
	return repository.WithTransaction(ctx, r.repository.GoquDBWrapper, func(tx *goqu.TxDatabase) error {
		purge := tx.Delete("recipe_ingredients").Where(goqu.Ex{"recipe_id": id})
		if _, err := purge.Executor().ExecContext(ctx); err != nil {
			return fmt.Errorf("failed to delete recipe ingredients: %w", err)
		}

		query := tx.Delete("recipes").Where(goqu.Ex{"id": id})
		result, err := query.Executor().ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to delete recipe: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if affected == 0 {
			return &custom_error.NotFoundError{Resource: "recipe", Key: strconv.Itoa(id)}
		}

		return nil
	})
}

func insertIngredients(ctx context.Context, tx *goqu.TxDatabase, recipeID int, ingredients []IngredientRequest, recipe *models.Recipe) error {
	for _, ingredient := range ingredients {
		insert := tx.Insert("recipe_ingredients").
			Rows(goqu.Record{
				"recipe_id":       recipeID,
				"ingredient_name": ingredient.IngredientName,
				"quantity":        ingredient.Quantity,
				"unit":            ingredient.Unit,
			}).
			Returning("id")

		var lineID int
		if _, err := insert.Executor().ScanValContext(ctx, &lineID); err != nil {
			return fmt.Errorf("failed to insert ingredient %q: %w", ingredient.IngredientName, err)
		}

		recipe.Ingredients = append(recipe.Ingredients, models.Ingredient{
			ID:             lineID,
			IngredientName: ingredient.IngredientName,
			Quantity:       ingredient.Quantity,
			Unit:           ingredient.Unit,
		})
	}

	return nil
}

func wrapRecipeError(message string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", message, err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return custom_error.WrapDBError(message, string(pqErr.Code))
	}
	return fmt.Errorf("%s: %w", message, err)
}
