package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/foodtrace/foodtrace-backend/pkg/database"
	"github.com/foodtrace/foodtrace-backend/pkg/errors"
)

// Product represents a catalog item
type Product struct {
	ID                string          `db:"id" json:"id"`
	Code              string          `db:"code" json:"code"`
	Name              string          `db:"name" json:"name"`
	DepartmentID      string          `db:"department_id" json:"department_id"`
	DefaultSupplierID *string         `db:"default_supplier_id" json:"default_supplier_id,omitempty"`
	PackagingID       *string         `db:"packaging_id" json:"packaging_id,omitempty"`
	Unit              string          `db:"unit" json:"unit"`
	StorageLocation   *string         `db:"storage_location" json:"storage_location,omitempty"`
	MinStock          decimal.Decimal `db:"min_stock" json:"min_stock"`
	IsActive          bool            `db:"is_active" json:"is_active"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

// Packaging represents a packaging type
type Packaging struct {
	ID          string  `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description,omitempty"`
	IsActive    bool    `db:"is_active" json:"is_active"`
}

// Ingredient marks a product as usable as a recipe ingredient
type Ingredient struct {
	ID        string  `db:"id" json:"id"`
	ProductID string  `db:"product_id" json:"product_id"`
	Notes     *string `db:"notes" json:"notes,omitempty"`
	IsActive  bool    `db:"is_active" json:"is_active"`
}

// ProductRepository handles product catalog persistence
type ProductRepository struct {
	db *database.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *database.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create creates a new product
func (r *ProductRepository) Create(ctx context.Context, p *Product) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Unit == "" {
		p.Unit = "pcs"
	}

	query := `
		INSERT INTO products (
			id, code, name, department_id, default_supplier_id, packaging_id,
			unit, storage_location, min_stock, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		p.ID, p.Code, p.Name, p.DepartmentID, p.DefaultSupplierID, p.PackagingID,
		p.Unit, p.StorageLocation, p.MinStock, p.IsActive,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if mapped := database.MapPQError(err); mapped != nil {
			return mapped
		}
		return err
	}
	return nil
}

// GetByID gets a product by ID
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*Product, error) {
	var p Product
	query := `SELECT * FROM products WHERE id = $1`
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("product")
		}
		return nil, err
	}
	return &p, nil
}

// GetByCode gets a product by its catalog code
func (r *ProductRepository) GetByCode(ctx context.Context, code string) (*Product, error) {
	var p Product
	query := `SELECT * FROM products WHERE code = $1`
	if err := r.db.GetContext(ctx, &p, query, code); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("product")
		}
		return nil, err
	}
	return &p, nil
}

// GetByIDs fetches products by ID within a transaction. Used by ledger
// operations that need product names for availability errors.
func (r *ProductRepository) GetByIDs(ctx context.Context, q sqlx.ExtContext, ids []string) (map[string]*Product, error) {
	var products []*Product
	query := `SELECT * FROM products WHERE id = ANY($1)`
	if err := sqlx.SelectContext(ctx, q, &products, query, pq.Array(ids)); err != nil {
		return nil, err
	}

	result := make(map[string]*Product, len(products))
	for _, p := range products {
		result[p.ID] = p
	}
	return result, nil
}

// List lists products, optionally filtered by department
func (r *ProductRepository) List(ctx context.Context, departmentID string) ([]*Product, error) {
	var products []*Product

	if departmentID != "" {
		query := `SELECT * FROM products WHERE is_active = true AND department_id = $1 ORDER BY name`
		if err := r.db.SelectContext(ctx, &products, query, departmentID); err != nil {
			return nil, err
		}
		return products, nil
	}

	query := `SELECT * FROM products WHERE is_active = true ORDER BY name`
	if err := r.db.SelectContext(ctx, &products, query); err != nil {
		return nil, err
	}
	return products, nil
}

// Update updates a product
func (r *ProductRepository) Update(ctx context.Context, p *Product) error {
	query := `
		UPDATE products SET
			code = $2, name = $3, department_id = $4, default_supplier_id = $5,
			packaging_id = $6, unit = $7, storage_location = $8, min_stock = $9,
			updated_at = now()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		p.ID, p.Code, p.Name, p.DepartmentID, p.DefaultSupplierID,
		p.PackagingID, p.Unit, p.StorageLocation, p.MinStock,
	)
	if err != nil {
		if mapped := database.MapPQError(err); mapped != nil {
			return mapped
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("product")
	}
	return nil
}

// Deactivate soft-deactivates a product
func (r *ProductRepository) Deactivate(ctx context.Context, id string) error {
	query := `UPDATE products SET is_active = false, updated_at = now() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("product")
	}
	return nil
}

// Packaging lookup

// CreatePackaging creates a packaging type
func (r *ProductRepository) CreatePackaging(ctx context.Context, p *Packaging) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	query := `INSERT INTO packaging (id, name, description, is_active) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, p.ID, p.Name, p.Description, p.IsActive); err != nil {
		if mapped := database.MapPQError(err); mapped != nil {
			return mapped
		}
		return err
	}
	return nil
}

// ListPackaging lists active packaging types
func (r *ProductRepository) ListPackaging(ctx context.Context) ([]*Packaging, error) {
	var packaging []*Packaging
	query := `SELECT * FROM packaging WHERE is_active = true ORDER BY name`
	if err := r.db.SelectContext(ctx, &packaging, query); err != nil {
		return nil, err
	}
	return packaging, nil
}

// Ingredient catalog

// MarkIngredient registers a product in the raw-material catalog
func (r *ProductRepository) MarkIngredient(ctx context.Context, ing *Ingredient) error {
	if ing.ID == "" {
		ing.ID = uuid.New().String()
	}
	query := `
		INSERT INTO ingredients (id, product_id, notes, is_active)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (product_id) DO UPDATE SET notes = EXCLUDED.notes, is_active = EXCLUDED.is_active
	`
	if _, err := r.db.ExecContext(ctx, query, ing.ID, ing.ProductID, ing.Notes, ing.IsActive); err != nil {
		if mapped := database.MapPQError(err); mapped != nil {
			return mapped
		}
		return err
	}
	return nil
}

// ListIngredients lists products registered as recipe ingredients
func (r *ProductRepository) ListIngredients(ctx context.Context) ([]*Product, error) {
	var products []*Product
	query := `
		SELECT p.* FROM products p
		JOIN ingredients i ON i.product_id = p.id
		WHERE i.is_active = true AND p.is_active = true
		ORDER BY p.name
	`
	if err := r.db.SelectContext(ctx, &products, query); err != nil {
		return nil, err
	}
	return products, nil
}
