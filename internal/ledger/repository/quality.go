package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/foodtrace/foodtrace-backend/pkg/database"
	"github.com/foodtrace/foodtrace-backend/pkg/errors"
)

// QualityCheckType is a configurable kind of quality check
type QualityCheckType struct {
	ID          string  `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description,omitempty"`
	IsActive    bool    `db:"is_active" json:"is_active"`
}

// QualityCheck is one recorded check against a product or a lot
type QualityCheck struct {
	ID          string    `db:"id" json:"id"`
	CheckTypeID string    `db:"check_type_id" json:"check_type_id"`
	ProductID   *string   `db:"product_id" json:"product_id,omitempty"`
	LotID       *string   `db:"lot_id" json:"lot_id,omitempty"`
	Passed      bool      `db:"passed" json:"passed"`
	Notes       *string   `db:"notes" json:"notes,omitempty"`
	CheckedBy   *string   `db:"checked_by" json:"checked_by,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// QualityCheckRow is a check joined with its type name
type QualityCheckRow struct {
	QualityCheck
	CheckTypeName string `db:"check_type_name" json:"check_type_name"`
}

// FailureRate aggregates pass/fail counts per check type
type FailureRate struct {
	CheckTypeID   string          `db:"check_type_id" json:"check_type_id"`
	CheckTypeName string          `db:"check_type_name" json:"check_type_name"`
	Total         int             `db:"total" json:"total"`
	Failed        int             `db:"failed" json:"failed"`
	FailureRate   decimal.Decimal `db:"failure_rate" json:"failure_rate"`
}

// QualityRepository handles quality check persistence
type QualityRepository struct {
	db *database.DB
}

// NewQualityRepository creates a new quality repository
func NewQualityRepository(db *database.DB) *QualityRepository {
	return &QualityRepository{db: db}
}

// CreateType creates a quality check type
func (r *QualityRepository) CreateType(ctx context.Context, t *QualityCheckType) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	t.IsActive = true
	query := `INSERT INTO quality_check_types (id, name, description, is_active) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, t.ID, t.Name, t.Description, t.IsActive); err != nil {
		if mapped := database.MapPQError(err); mapped != nil {
			return mapped
		}
		return err
	}
	return nil
}

// GetType gets a quality check type by ID
func (r *QualityRepository) GetType(ctx context.Context, id string) (*QualityCheckType, error) {
	var t QualityCheckType
	query := `SELECT * FROM quality_check_types WHERE id = $1`
	if err := r.db.GetContext(ctx, &t, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("quality check type")
		}
		return nil, err
	}
	return &t, nil
}

// ListTypes lists active quality check types
func (r *QualityRepository) ListTypes(ctx context.Context) ([]*QualityCheckType, error) {
	var types []*QualityCheckType
	query := `SELECT * FROM quality_check_types WHERE is_active = true ORDER BY name`
	if err := r.db.SelectContext(ctx, &types, query); err != nil {
		return nil, err
	}
	return types, nil
}

// Create records a quality check
func (r *QualityRepository) Create(ctx context.Context, check *QualityCheck) error {
	if check.ID == "" {
		check.ID = uuid.New().String()
	}
	query := `
		INSERT INTO quality_checks (id, check_type_id, product_id, lot_id, passed, notes, checked_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err := r.db.GetContext(ctx, &check.CreatedAt, query,
		check.ID, check.CheckTypeID, check.ProductID, check.LotID,
		check.Passed, check.Notes, check.CheckedBy,
	)
	if err != nil {
		if mapped := database.MapPQError(err); mapped != nil {
			return mapped
		}
		return err
	}
	return nil
}

// ListByLot lists checks recorded against a lot, oldest first
func (r *QualityRepository) ListByLot(ctx context.Context, lotID string) ([]*QualityCheckRow, error) {
	var checks []*QualityCheckRow
	query := `
		SELECT qc.*, qt.name AS check_type_name
		FROM quality_checks qc
		JOIN quality_check_types qt ON qt.id = qc.check_type_id
		WHERE qc.lot_id = $1
		ORDER BY qc.created_at ASC
	`
	if err := r.db.SelectContext(ctx, &checks, query, lotID); err != nil {
		return nil, err
	}
	return checks, nil
}

// ListByProduct lists checks recorded against a product, newest first
func (r *QualityRepository) ListByProduct(ctx context.Context, productID string) ([]*QualityCheckRow, error) {
	var checks []*QualityCheckRow
	query := `
		SELECT qc.*, qt.name AS check_type_name
		FROM quality_checks qc
		JOIN quality_check_types qt ON qt.id = qc.check_type_id
		WHERE qc.product_id = $1
		ORDER BY qc.created_at DESC
	`
	if err := r.db.SelectContext(ctx, &checks, query, productID); err != nil {
		return nil, err
	}
	return checks, nil
}

// FailureRates aggregates pass/fail counts per check type over a window
func (r *QualityRepository) FailureRates(ctx context.Context, from, to time.Time) ([]*FailureRate, error) {
	var rates []*FailureRate
	query := `
		SELECT qt.id AS check_type_id, qt.name AS check_type_name,
			COUNT(qc.id) AS total,
			COUNT(qc.id) FILTER (WHERE NOT qc.passed) AS failed,
			CASE WHEN COUNT(qc.id) = 0 THEN 0
				ELSE ROUND(COUNT(qc.id) FILTER (WHERE NOT qc.passed)::numeric / COUNT(qc.id), 4)
			END AS failure_rate
		FROM quality_check_types qt
		LEFT JOIN quality_checks qc
			ON qc.check_type_id = qt.id AND qc.created_at >= $1 AND qc.created_at < $2
		WHERE qt.is_active = true
		GROUP BY qt.id, qt.name
		ORDER BY qt.name
	`
	if err := r.db.SelectContext(ctx, &rates, query, from, to); err != nil {
		return nil, err
	}
	return rates, nil
}
