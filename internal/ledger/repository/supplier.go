package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/foodtrace/foodtrace-backend/pkg/database"
	"github.com/foodtrace/foodtrace-backend/pkg/errors"
)

// Supplier represents a supplier
type Supplier struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	ContactEmail *string   `db:"contact_email" json:"contact_email,omitempty"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// SupplierRepository handles supplier persistence
type SupplierRepository struct {
	db *database.DB
}

// NewSupplierRepository creates a new supplier repository
func NewSupplierRepository(db *database.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

// Create creates a new supplier
func (r *SupplierRepository) Create(ctx context.Context, s *Supplier) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}

	query := `
		INSERT INTO suppliers (id, name, contact_email, phone, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		s.ID, s.Name, s.ContactEmail, s.Phone, s.IsActive,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if mapped := database.MapPQError(err); mapped != nil {
			return mapped
		}
		return err
	}
	return nil
}

// GetByID gets a supplier by ID
func (r *SupplierRepository) GetByID(ctx context.Context, id string) (*Supplier, error) {
	var s Supplier
	query := `SELECT * FROM suppliers WHERE id = $1`
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("supplier")
		}
		return nil, err
	}
	return &s, nil
}

// List lists active suppliers
func (r *SupplierRepository) List(ctx context.Context) ([]*Supplier, error) {
	var suppliers []*Supplier
	query := `SELECT * FROM suppliers WHERE is_active = true ORDER BY name`
	if err := r.db.SelectContext(ctx, &suppliers, query); err != nil {
		return nil, err
	}
	return suppliers, nil
}

// Update updates a supplier
func (r *SupplierRepository) Update(ctx context.Context, s *Supplier) error {
	query := `
		UPDATE suppliers SET name = $2, contact_email = $3, phone = $4, updated_at = now()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, s.ID, s.Name, s.ContactEmail, s.Phone)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("supplier")
	}
	return nil
}

// Deactivate soft-deactivates a supplier
func (r *SupplierRepository) Deactivate(ctx context.Context, id string) error {
	query := `UPDATE suppliers SET is_active = false, updated_at = now() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("supplier")
	}
	return nil
}

// LinkDepartment associates a supplier with a department
func (r *SupplierRepository) LinkDepartment(ctx context.Context, supplierID, departmentID string) error {
	query := `
		INSERT INTO supplier_departments (supplier_id, department_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, supplierID, departmentID); err != nil {
		if mapped := database.MapPQError(err); mapped != nil {
			return mapped
		}
		return err
	}
	return nil
}

// UnlinkDepartment removes a supplier-department association
func (r *SupplierRepository) UnlinkDepartment(ctx context.Context, supplierID, departmentID string) error {
	query := `DELETE FROM supplier_departments WHERE supplier_id = $1 AND department_id = $2`
	_, err := r.db.ExecContext(ctx, query, supplierID, departmentID)
	return err
}

// ListByDepartment lists active suppliers serving a department
func (r *SupplierRepository) ListByDepartment(ctx context.Context, departmentID string) ([]*Supplier, error) {
	var suppliers []*Supplier
	query := `
		SELECT s.* FROM suppliers s
		JOIN supplier_departments sd ON sd.supplier_id = s.id
		WHERE sd.department_id = $1 AND s.is_active = true
		ORDER BY s.name
	`
	if err := r.db.SelectContext(ctx, &suppliers, query, departmentID); err != nil {
		return nil, err
	}
	return suppliers, nil
}
