package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/foodtrace/foodtrace-backend/pkg/database"
	"github.com/foodtrace/foodtrace-backend/pkg/errors"
)

// Sale is one completed sale with its line items
type Sale struct {
	ID          string          `db:"id" json:"id"`
	TotalAmount decimal.Decimal `db:"total_amount" json:"total_amount"`
	SoldBy      *string         `db:"sold_by" json:"sold_by,omitempty"`
	Notes       *string         `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`

	Items []*SaleItem `db:"-" json:"items,omitempty"`
}

// SaleItem is one line of a sale
type SaleItem struct {
	ID        string          `db:"id" json:"id"`
	SaleID    string          `db:"sale_id" json:"sale_id"`
	ProductID string          `db:"product_id" json:"product_id"`
	Quantity  decimal.Decimal `db:"quantity" json:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unit_price"`
	LineTotal decimal.Decimal `db:"line_total" json:"line_total"`
}

// SaleRepository handles sale persistence
type SaleRepository struct {
	db *database.DB
}

// NewSaleRepository creates a new sale repository
func NewSaleRepository(db *database.DB) *SaleRepository {
	return &SaleRepository{db: db}
}

// Insert writes the sale header within the given transaction
func (r *SaleRepository) Insert(ctx context.Context, q sqlx.ExtContext, sale *Sale) error {
	if sale.ID == "" {
		sale.ID = uuid.New().String()
	}
	query := `
		INSERT INTO sales (id, total_amount, sold_by, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	err := sqlx.GetContext(ctx, q, &sale.CreatedAt, query,
		sale.ID, sale.TotalAmount, sale.SoldBy, sale.Notes,
	)
	if err != nil {
		if mapped := database.MapPQError(err); mapped != nil {
			return mapped
		}
		return err
	}
	return nil
}

// InsertItem writes one sale line within the given transaction
func (r *SaleRepository) InsertItem(ctx context.Context, q sqlx.ExtContext, item *SaleItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	query := `
		INSERT INTO sales_items (id, sale_id, product_id, quantity, unit_price, line_total)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := q.ExecContext(ctx, query,
		item.ID, item.SaleID, item.ProductID, item.Quantity, item.UnitPrice, item.LineTotal,
	)
	if err != nil {
		if mapped := database.MapPQError(err); mapped != nil {
			return mapped
		}
		return err
	}
	return nil
}

// GetByID gets a sale with its items
func (r *SaleRepository) GetByID(ctx context.Context, id string) (*Sale, error) {
	var sale Sale
	if err := r.db.GetContext(ctx, &sale, `SELECT * FROM sales WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("sale")
		}
		return nil, err
	}

	var items []*SaleItem
	query := `SELECT * FROM sales_items WHERE sale_id = $1 ORDER BY id`
	if err := r.db.SelectContext(ctx, &items, query, id); err != nil {
		return nil, err
	}
	sale.Items = items
	return &sale, nil
}

// List lists sales in a date range, newest first
func (r *SaleRepository) List(ctx context.Context, from, to *time.Time, limit int) ([]*Sale, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := `SELECT * FROM sales WHERE 1=1`
	args := []interface{}{}
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND created_at < $%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	var sales []*Sale
	if err := r.db.SelectContext(ctx, &sales, query, args...); err != nil {
		return nil, err
	}
	return sales, nil
}
