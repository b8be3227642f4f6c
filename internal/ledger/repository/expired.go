package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/foodtrace/foodtrace-backend/pkg/database"
)

// ExpiredProduct records the write-off of one expired lot
type ExpiredProduct struct {
	ID          string          `db:"id" json:"id"`
	LotID       string          `db:"lot_id" json:"lot_id"`
	ProductID   string          `db:"product_id" json:"product_id"`
	Quantity    decimal.Decimal `db:"quantity" json:"quantity"`
	ExpiryDate  time.Time       `db:"expiry_date" json:"expiry_date"`
	RemovedDate time.Time       `db:"removed_date" json:"removed_date"`
	RemovedBy   *string         `db:"removed_by" json:"removed_by,omitempty"`
	Notes       *string         `db:"notes" json:"notes,omitempty"`
	Category    *string         `db:"category" json:"category,omitempty"`
}

// ExpiredProductRow is a write-off joined with product identity
type ExpiredProductRow struct {
	ExpiredProduct
	ProductName string `db:"product_name" json:"product_name"`
	ProductCode string `db:"product_code" json:"product_code"`
}

// ExpiredRepository handles expired-lot write-off records
type ExpiredRepository struct {
	db *database.DB
}

// NewExpiredRepository creates a new expired repository
func NewExpiredRepository(db *database.DB) *ExpiredRepository {
	return &ExpiredRepository{db: db}
}

// Insert records a write-off within the given transaction. The UNIQUE
// constraint on lot_id rejects a second write-off of the same lot.
func (r *ExpiredRepository) Insert(ctx context.Context, q sqlx.ExtContext, exp *ExpiredProduct) error {
	if exp.ID == "" {
		exp.ID = uuid.New().String()
	}
	query := `
		INSERT INTO expired_products (id, lot_id, product_id, quantity, expiry_date, removed_by, notes, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING removed_date
	`
	err := sqlx.GetContext(ctx, q, &exp.RemovedDate, query,
		exp.ID, exp.LotID, exp.ProductID, exp.Quantity, exp.ExpiryDate,
		exp.RemovedBy, exp.Notes, exp.Category,
	)
	if err != nil {
		if mapped := database.MapPQError(err); mapped != nil {
			return mapped
		}
		return err
	}
	return nil
}

// List lists write-offs, newest removal first
func (r *ExpiredRepository) List(ctx context.Context, limit int) ([]*ExpiredProductRow, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var rows []*ExpiredProductRow
	query := `
		SELECT e.*, p.name AS product_name, p.code AS product_code
		FROM expired_products e
		JOIN products p ON p.id = e.product_id
		ORDER BY e.removed_date DESC, e.expiry_date DESC
		LIMIT $1
	`
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, err
	}
	return rows, nil
}
