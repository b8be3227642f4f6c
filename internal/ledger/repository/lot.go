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

// Lot statuses
const (
	LotStatusActive  = "active"
	LotStatusExpired = "expired"
)

// ReceivedProduct represents a received lot of a product.
// Immutable once created except for the status transition to expired.
type ReceivedProduct struct {
	ID              string          `db:"id" json:"id"`
	ProductID       string          `db:"product_id" json:"product_id"`
	SupplierID      string          `db:"supplier_id" json:"supplier_id"`
	Quantity        decimal.Decimal `db:"quantity" json:"quantity"`
	Unit            string          `db:"unit" json:"unit"`
	ExpiryDate      time.Time       `db:"expiry_date" json:"expiry_date"`
	BestBeforeDate  *time.Time      `db:"best_before_date" json:"best_before_date,omitempty"`
	StorageLocation *string         `db:"storage_location" json:"storage_location,omitempty"`
	ReceivedDate    time.Time       `db:"received_date" json:"received_date"`
	Status          string          `db:"status" json:"status"`
	ReceivedBy      *string         `db:"received_by" json:"received_by,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// LotBalance is a lot with its remaining quantity derived from the ledger
type LotBalance struct {
	ReceivedProduct
	Remaining decimal.Decimal `db:"remaining" json:"remaining"`
}

// ExpiringLot is a lot approaching or past its expiry date
type ExpiringLot struct {
	LotBalance
	ProductName     string `db:"product_name" json:"product_name"`
	ProductCode     string `db:"product_code" json:"product_code"`
	DaysUntilExpiry int    `db:"days_until_expiry" json:"days_until_expiry"`
}

// LotRepository handles received-lot persistence
type LotRepository struct {
	db *database.DB
}

// NewLotRepository creates a new lot repository
func NewLotRepository(db *database.DB) *LotRepository {
	return &LotRepository{db: db}
}

// Create inserts a new lot within the given transaction
func (r *LotRepository) Create(ctx context.Context, q sqlx.ExtContext, lot *ReceivedProduct) error {
	if lot.ID == "" {
		lot.ID = uuid.New().String()
	}
	if lot.Unit == "" {
		lot.Unit = "pcs"
	}
	if lot.Status == "" {
		lot.Status = LotStatusActive
	}
	if lot.ReceivedDate.IsZero() {
		lot.ReceivedDate = time.Now().UTC().Truncate(24 * time.Hour)
	}

	query := `
		INSERT INTO received_products (
			id, product_id, supplier_id, quantity, unit, expiry_date,
			best_before_date, storage_location, received_date, status, received_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`

	err := sqlx.GetContext(ctx, q, &lot.CreatedAt, query,
		lot.ID, lot.ProductID, lot.SupplierID, lot.Quantity, lot.Unit,
		lot.ExpiryDate, lot.BestBeforeDate, lot.StorageLocation,
		lot.ReceivedDate, lot.Status, lot.ReceivedBy,
	)
	if err != nil {
		if mapped := database.MapPQError(err); mapped != nil {
			return mapped
		}
		return err
	}
	return nil
}

// GetByID gets a lot by ID
func (r *LotRepository) GetByID(ctx context.Context, id string) (*ReceivedProduct, error) {
	var lot ReceivedProduct
	query := `SELECT * FROM received_products WHERE id = $1`
	if err := r.db.GetContext(ctx, &lot, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("lot")
		}
		return nil, err
	}
	return &lot, nil
}

// GetForUpdate locks a lot row within the given transaction
func (r *LotRepository) GetForUpdate(ctx context.Context, q sqlx.ExtContext, id string) (*ReceivedProduct, error) {
	var lot ReceivedProduct
	query := `SELECT * FROM received_products WHERE id = $1 FOR UPDATE`
	if err := sqlx.GetContext(ctx, q, &lot, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("lot")
		}
		return nil, err
	}
	return &lot, nil
}

// SetStatus updates the lot status within the given transaction
func (r *LotRepository) SetStatus(ctx context.Context, q sqlx.ExtContext, id, status string) error {
	query := `UPDATE received_products SET status = $2 WHERE id = $1`
	result, err := q.ExecContext(ctx, query, id, status)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("lot")
	}
	return nil
}

// ListByProduct lists lots for a product, newest receipt first
func (r *LotRepository) ListByProduct(ctx context.Context, productID string) ([]*ReceivedProduct, error) {
	var lots []*ReceivedProduct
	query := `
		SELECT * FROM received_products
		WHERE product_id = $1
		ORDER BY received_date DESC, created_at DESC
	`
	if err := r.db.SelectContext(ctx, &lots, query, productID); err != nil {
		return nil, err
	}
	return lots, nil
}

// LockOpenLots locks the open lots of a product in consumption order and
// returns them with remaining quantities. Consumption order is FEFO:
// earliest expiry first, receipt date as tie-breaker.
func (r *LotRepository) LockOpenLots(ctx context.Context, q sqlx.ExtContext, productID string) ([]*LotBalance, error) {
	var lots []*LotBalance
	query := `
		SELECT rp.*, COALESCE(t.remaining, 0) AS remaining
		FROM received_products rp
		LEFT JOIN (
			SELECT lot_id, SUM(quantity_delta) AS remaining
			FROM inventory_transactions
			GROUP BY lot_id
		) t ON t.lot_id = rp.id
		WHERE rp.product_id = $1 AND rp.status = 'active' AND COALESCE(t.remaining, 0) > 0
		ORDER BY rp.expiry_date ASC, rp.received_date ASC, rp.created_at ASC
		FOR UPDATE OF rp
	`
	if err := sqlx.SelectContext(ctx, q, &lots, query, productID); err != nil {
		return nil, err
	}
	return lots, nil
}

// Remaining returns the lot's remaining quantity derived from the ledger
func (r *LotRepository) Remaining(ctx context.Context, q sqlx.ExtContext, lotID string) (decimal.Decimal, error) {
	var remaining decimal.Decimal
	query := `
		SELECT COALESCE(SUM(quantity_delta), 0)
		FROM inventory_transactions
		WHERE lot_id = $1
	`
	if err := sqlx.GetContext(ctx, q, &remaining, query, lotID); err != nil {
		return decimal.Zero, err
	}
	return remaining, nil
}

// ListExpiring lists open lots expiring within the given number of days
func (r *LotRepository) ListExpiring(ctx context.Context, withinDays int) ([]*ExpiringLot, error) {
	var lots []*ExpiringLot
	query := `
		SELECT rp.*, COALESCE(t.remaining, 0) AS remaining,
			p.name AS product_name, p.code AS product_code,
			(rp.expiry_date - CURRENT_DATE) AS days_until_expiry
		FROM received_products rp
		JOIN products p ON p.id = rp.product_id
		LEFT JOIN (
			SELECT lot_id, SUM(quantity_delta) AS remaining
			FROM inventory_transactions
			GROUP BY lot_id
		) t ON t.lot_id = rp.id
		WHERE rp.status = 'active'
			AND COALESCE(t.remaining, 0) > 0
			AND rp.expiry_date >= CURRENT_DATE
			AND rp.expiry_date <= CURRENT_DATE + $1::int
		ORDER BY rp.expiry_date ASC, p.name
	`
	if err := r.db.SelectContext(ctx, &lots, query, withinDays); err != nil {
		return nil, err
	}
	return lots, nil
}

// ListExpiredUnconsumed lists lots past expiry that still carry stock.
// This is the derived expired-products listing: a lot appears here until
// it is written off (or fully consumed before the write-off).
func (r *LotRepository) ListExpiredUnconsumed(ctx context.Context) ([]*ExpiringLot, error) {
	var lots []*ExpiringLot
	query := `
		SELECT rp.*, COALESCE(t.remaining, 0) AS remaining,
			p.name AS product_name, p.code AS product_code,
			(rp.expiry_date - CURRENT_DATE) AS days_until_expiry
		FROM received_products rp
		JOIN products p ON p.id = rp.product_id
		LEFT JOIN (
			SELECT lot_id, SUM(quantity_delta) AS remaining
			FROM inventory_transactions
			GROUP BY lot_id
		) t ON t.lot_id = rp.id
		WHERE rp.status = 'active'
			AND COALESCE(t.remaining, 0) > 0
			AND rp.expiry_date < CURRENT_DATE
		ORDER BY rp.expiry_date ASC, p.name
	`
	if err := r.db.SelectContext(ctx, &lots, query); err != nil {
		return nil, err
	}
	return lots, nil
}
