package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/foodtrace/foodtrace-backend/pkg/database"
	"github.com/foodtrace/foodtrace-backend/pkg/errors"
)

// Recipe describes how an output product is produced from ingredients
type Recipe struct {
	ID              string          `db:"id" json:"id"`
	Name            string          `db:"name" json:"name"`
	OutputProductID string          `db:"output_product_id" json:"output_product_id"`
	OutputQuantity  decimal.Decimal `db:"output_quantity" json:"output_quantity"`
	Description     *string         `db:"description" json:"description,omitempty"`
	IsActive        bool            `db:"is_active" json:"is_active"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`

	Ingredients []*RecipeIngredient `db:"-" json:"ingredients,omitempty"`
}

// RecipeIngredient is one ingredient line of a recipe
type RecipeIngredient struct {
	ID          string          `db:"id" json:"id"`
	RecipeID    string          `db:"recipe_id" json:"recipe_id"`
	ProductID   string          `db:"product_id" json:"product_id"`
	Quantity    decimal.Decimal `db:"quantity" json:"quantity"`
	ProductName string          `db:"product_name" json:"product_name"`
	ProductCode string          `db:"product_code" json:"product_code"`
	Unit        string          `db:"unit" json:"unit"`
}

// RecipeProduction records one production run of a recipe
type RecipeProduction struct {
	ID              string          `db:"id" json:"id"`
	RecipeID        string          `db:"recipe_id" json:"recipe_id"`
	BatchMultiplier decimal.Decimal `db:"batch_multiplier" json:"batch_multiplier"`
	OutputQuantity  decimal.Decimal `db:"output_quantity" json:"output_quantity"`
	Notes           *string         `db:"notes" json:"notes,omitempty"`
	ProducedBy      *string         `db:"produced_by" json:"produced_by,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// RecipeRepository handles recipe persistence
type RecipeRepository struct {
	db *database.DB
}

// NewRecipeRepository creates a new recipe repository
func NewRecipeRepository(db *database.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

// Create inserts a recipe with its ingredient lines atomically
func (r *RecipeRepository) Create(ctx context.Context, recipe *Recipe) error {
	if recipe.ID == "" {
		recipe.ID = uuid.New().String()
	}

	return r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO recipes (id, name, output_product_id, output_quantity, description, is_active)
			VALUES ($1, $2, $3, $4, $5, true)
			RETURNING created_at
		`
		err := tx.QueryRowxContext(ctx, query,
			recipe.ID, recipe.Name, recipe.OutputProductID, recipe.OutputQuantity, recipe.Description,
		).Scan(&recipe.CreatedAt)
		if err != nil {
			if mapped := database.MapPQError(err); mapped != nil {
				return mapped
			}
			return err
		}

		for _, ing := range recipe.Ingredients {
			if ing.ID == "" {
				ing.ID = uuid.New().String()
			}
			ing.RecipeID = recipe.ID
			_, err := tx.ExecContext(ctx, `
				INSERT INTO recipe_ingredients (id, recipe_id, product_id, quantity)
				VALUES ($1, $2, $3, $4)
			`, ing.ID, ing.RecipeID, ing.ProductID, ing.Quantity)
			if err != nil {
				if mapped := database.MapPQError(err); mapped != nil {
					return mapped
				}
				return err
			}
		}
		return nil
	})
}

// GetByID gets a recipe with its ingredient lines
func (r *RecipeRepository) GetByID(ctx context.Context, id string) (*Recipe, error) {
	var recipe Recipe
	query := `SELECT * FROM recipes WHERE id = $1`
	if err := r.db.GetContext(ctx, &recipe, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("recipe")
		}
		return nil, err
	}

	ingredients, err := r.listIngredients(ctx, id)
	if err != nil {
		return nil, err
	}
	recipe.Ingredients = ingredients
	return &recipe, nil
}

func (r *RecipeRepository) listIngredients(ctx context.Context, recipeID string) ([]*RecipeIngredient, error) {
	var ingredients []*RecipeIngredient
	query := `
		SELECT ri.*, p.name AS product_name, p.code AS product_code, p.unit AS unit
		FROM recipe_ingredients ri
		JOIN products p ON p.id = ri.product_id
		WHERE ri.recipe_id = $1
		ORDER BY p.name
	`
	if err := r.db.SelectContext(ctx, &ingredients, query, recipeID); err != nil {
		return nil, err
	}
	return ingredients, nil
}

// List lists active recipes without ingredient lines
func (r *RecipeRepository) List(ctx context.Context) ([]*Recipe, error) {
	var recipes []*Recipe
	query := `SELECT * FROM recipes WHERE is_active = true ORDER BY name`
	if err := r.db.SelectContext(ctx, &recipes, query); err != nil {
		return nil, err
	}
	return recipes, nil
}

// Deactivate soft-deletes a recipe
func (r *RecipeRepository) Deactivate(ctx context.Context, id string) error {
	query := `UPDATE recipes SET is_active = false WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("recipe")
	}
	return nil
}

// InsertProduction records a production run within the given transaction
func (r *RecipeRepository) InsertProduction(ctx context.Context, q sqlx.ExtContext, prod *RecipeProduction) error {
	if prod.ID == "" {
		prod.ID = uuid.New().String()
	}
	query := `
		INSERT INTO recipe_productions (id, recipe_id, batch_multiplier, output_quantity, notes, produced_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err := sqlx.GetContext(ctx, q, &prod.CreatedAt, query,
		prod.ID, prod.RecipeID, prod.BatchMultiplier, prod.OutputQuantity,
		prod.Notes, prod.ProducedBy,
	)
	if err != nil {
		if mapped := database.MapPQError(err); mapped != nil {
			return mapped
		}
		return err
	}
	return nil
}

// ListProductions lists production runs for a recipe, newest first
func (r *RecipeRepository) ListProductions(ctx context.Context, recipeID string) ([]*RecipeProduction, error) {
	var runs []*RecipeProduction
	query := `
		SELECT * FROM recipe_productions
		WHERE recipe_id = $1
		ORDER BY created_at DESC
	`
	if err := r.db.SelectContext(ctx, &runs, query, recipeID); err != nil {
		return nil, err
	}
	return runs, nil
}
