package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/foodtrace/foodtrace-backend/pkg/database"
)

// Transaction types
const (
	TxTypeReceipt               = "receipt"
	TxTypeSale                  = "sale"
	TxTypeProductionConsumption = "production_consumption"
	TxTypeProductionOutput      = "production_output"
	TxTypeAdjustment            = "adjustment"
	TxTypeExpiryWriteoff        = "expiry_writeoff"
)

// InventoryTransaction is one append-only ledger entry. Entries are never
// updated or deleted; the inventory balance is the sum of their deltas.
type InventoryTransaction struct {
	ID              string          `db:"id" json:"id"`
	ProductID       string          `db:"product_id" json:"product_id"`
	LotID           *string         `db:"lot_id" json:"lot_id,omitempty"`
	TransactionType string          `db:"transaction_type" json:"transaction_type"`
	QuantityDelta   decimal.Decimal `db:"quantity_delta" json:"quantity_delta"`
	ReferenceType   *string         `db:"reference_type" json:"reference_type,omitempty"`
	ReferenceID     *string         `db:"reference_id" json:"reference_id,omitempty"`
	Notes           *string         `db:"notes" json:"notes,omitempty"`
	PerformedBy     *string         `db:"performed_by" json:"performed_by,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// ProductBalance is a materialized inventory balance row
type ProductBalance struct {
	ProductID   string          `db:"product_id" json:"product_id"`
	Quantity    decimal.Decimal `db:"quantity" json:"quantity"`
	LastUpdated time.Time       `db:"last_updated" json:"last_updated"`
}

// TransactionFilter narrows transaction history listings
type TransactionFilter struct {
	ProductID       string
	LotID           string
	TransactionType string
	From            *time.Time
	To              *time.Time
	Limit           int
	Offset          int
}

// TransactionRepository handles ledger entries and the materialized balances
type TransactionRepository struct {
	db *database.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Insert appends a ledger entry and applies its delta to the materialized
// balance in the same transaction. Callers must hold the balance row lock
// (LockBalances) before inserting entries that depend on availability.
func (r *TransactionRepository) Insert(ctx context.Context, q sqlx.ExtContext, txn *InventoryTransaction) error {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_transactions (
			id, product_id, lot_id, transaction_type, quantity_delta,
			reference_type, reference_id, notes, performed_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	err := sqlx.GetContext(ctx, q, &txn.CreatedAt, query,
		txn.ID, txn.ProductID, txn.LotID, txn.TransactionType, txn.QuantityDelta,
		txn.ReferenceType, txn.ReferenceID, txn.Notes, txn.PerformedBy,
	)
	if err != nil {
		if mapped := database.MapPQError(err); mapped != nil {
			return mapped
		}
		return err
	}

	balanceQuery := `
		INSERT INTO inventory (product_id, quantity, last_updated)
		VALUES ($1, $2, now())
		ON CONFLICT (product_id) DO UPDATE
		SET quantity = inventory.quantity + EXCLUDED.quantity, last_updated = now()
	`
	if _, err := q.ExecContext(ctx, balanceQuery, txn.ProductID, txn.QuantityDelta); err != nil {
		return err
	}
	return nil
}

// LockBalances locks the balance rows for the given products in a stable
// order so concurrent operations touching the same products serialize
// instead of deadlocking. Products without a balance row yet are absent
// from the result and read as zero.
func (r *TransactionRepository) LockBalances(ctx context.Context, q sqlx.ExtContext, productIDs []string) (map[string]decimal.Decimal, error) {
	var rows []*ProductBalance
	query := `
		SELECT * FROM inventory
		WHERE product_id = ANY($1)
		ORDER BY product_id
		FOR UPDATE
	`
	if err := sqlx.SelectContext(ctx, q, &rows, query, pq.Array(productIDs)); err != nil {
		return nil, err
	}

	balances := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		balances[row.ProductID] = row.Quantity
	}
	return balances, nil
}

// GetBalance returns the materialized balance for a product, zero if the
// product has never had a transaction
func (r *TransactionRepository) GetBalance(ctx context.Context, productID string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	query := `SELECT quantity FROM inventory WHERE product_id = $1`
	if err := r.db.GetContext(ctx, &balance, query, productID); err != nil {
		if err == sql.ErrNoRows {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return balance, nil
}

// ListBalances returns materialized balances joined with product names
func (r *TransactionRepository) ListBalances(ctx context.Context) ([]*InventoryLevel, error) {
	var levels []*InventoryLevel
	query := `
		SELECT i.product_id, p.code AS product_code, p.name AS product_name,
			p.unit, i.quantity, p.min_stock, i.last_updated
		FROM inventory i
		JOIN products p ON p.id = i.product_id
		WHERE p.is_active = true
		ORDER BY p.name
	`
	if err := r.db.SelectContext(ctx, &levels, query); err != nil {
		return nil, err
	}
	return levels, nil
}

// InventoryLevel is a balance row with product identity for display
type InventoryLevel struct {
	ProductID   string          `db:"product_id" json:"product_id"`
	ProductCode string          `db:"product_code" json:"product_code"`
	ProductName string          `db:"product_name" json:"product_name"`
	Unit        string          `db:"unit" json:"unit"`
	Quantity    decimal.Decimal `db:"quantity" json:"quantity"`
	MinStock    decimal.Decimal `db:"min_stock" json:"min_stock"`
	LastUpdated time.Time       `db:"last_updated" json:"last_updated"`
}

// ReplayBalance recomputes a product's balance from the ledger. Used by
// the consistency check: the result must equal the materialized balance.
func (r *TransactionRepository) ReplayBalance(ctx context.Context, productID string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	query := `
		SELECT COALESCE(SUM(quantity_delta), 0)
		FROM inventory_transactions
		WHERE product_id = $1
	`
	if err := r.db.GetContext(ctx, &balance, query, productID); err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

// ListByLot returns every ledger entry touching a lot in insertion order
func (r *TransactionRepository) ListByLot(ctx context.Context, lotID string) ([]*InventoryTransaction, error) {
	var txns []*InventoryTransaction
	query := `
		SELECT * FROM inventory_transactions
		WHERE lot_id = $1
		ORDER BY created_at ASC, id ASC
	`
	if err := r.db.SelectContext(ctx, &txns, query, lotID); err != nil {
		return nil, err
	}
	return txns, nil
}

// List returns ledger entries matching the filter, newest first
func (r *TransactionRepository) List(ctx context.Context, filter TransactionFilter) ([]*InventoryTransaction, error) {
	conditions := []string{}
	args := []interface{}{}
	argN := 1

	addCondition := func(clause string, value interface{}) {
		conditions = append(conditions, fmt.Sprintf(clause, argN))
		args = append(args, value)
		argN++
	}

	if filter.ProductID != "" {
		addCondition("product_id = $%d", filter.ProductID)
	}
	if filter.LotID != "" {
		addCondition("lot_id = $%d", filter.LotID)
	}
	if filter.TransactionType != "" {
		addCondition("transaction_type = $%d", filter.TransactionType)
	}
	if filter.From != nil {
		addCondition("created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		addCondition("created_at < $%d", *filter.To)
	}

	query := `SELECT * FROM inventory_transactions`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query += fmt.Sprintf(" LIMIT $%d", argN)
	args = append(args, limit)
	argN++
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argN)
		args = append(args, filter.Offset)
	}

	var txns []*InventoryTransaction
	if err := r.db.SelectContext(ctx, &txns, query, args...); err != nil {
		return nil, err
	}
	return txns, nil
}

// NewReference generates a reference ID for grouping entries of one operation
func NewReference() string {
	return uuid.New().String()
}
