package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/foodtrace/foodtrace-backend/pkg/database"
	"github.com/foodtrace/foodtrace-backend/pkg/errors"
)

// Department represents a product department
type Department struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// DepartmentRepository handles department persistence
type DepartmentRepository struct {
	db *database.DB
}

// NewDepartmentRepository creates a new department repository
func NewDepartmentRepository(db *database.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// Create creates a new department
func (r *DepartmentRepository) Create(ctx context.Context, dept *Department) error {
	if dept.ID == "" {
		dept.ID = uuid.New().String()
	}

	query := `
		INSERT INTO departments (id, name, description, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		dept.ID, dept.Name, dept.Description, dept.IsActive,
	).Scan(&dept.CreatedAt, &dept.UpdatedAt)
	if err != nil {
		if mapped := database.MapPQError(err); mapped != nil {
			return mapped
		}
		return err
	}
	return nil
}

// GetByID gets a department by ID
func (r *DepartmentRepository) GetByID(ctx context.Context, id string) (*Department, error) {
	var dept Department
	query := `SELECT * FROM departments WHERE id = $1`
	if err := r.db.GetContext(ctx, &dept, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("department")
		}
		return nil, err
	}
	return &dept, nil
}

// List lists active departments
func (r *DepartmentRepository) List(ctx context.Context) ([]*Department, error) {
	var depts []*Department
	query := `SELECT * FROM departments WHERE is_active = true ORDER BY name`
	if err := r.db.SelectContext(ctx, &depts, query); err != nil {
		return nil, err
	}
	return depts, nil
}

// Update updates a department
func (r *DepartmentRepository) Update(ctx context.Context, dept *Department) error {
	query := `
		UPDATE departments SET name = $2, description = $3, updated_at = now()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, dept.ID, dept.Name, dept.Description)
	if err != nil {
		if mapped := database.MapPQError(err); mapped != nil {
			return mapped
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("department")
	}
	return nil
}

// Deactivate soft-deactivates a department
func (r *DepartmentRepository) Deactivate(ctx context.Context, id string) error {
	query := `UPDATE departments SET is_active = false, updated_at = now() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("department")
	}
	return nil
}
