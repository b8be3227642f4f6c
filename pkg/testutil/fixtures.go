package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// FixtureFactory inserts catalog rows that ledger tests depend on
type FixtureFactory struct {
	db  *sqlx.DB
	seq int
}

// NewFixtureFactory creates a fixture factory
func NewFixtureFactory(db *sqlx.DB) *FixtureFactory {
	return &FixtureFactory{db: db}
}

func (f *FixtureFactory) next() int {
	f.seq++
	return f.seq
}

// Department inserts a department and returns its ID
func (f *FixtureFactory) Department(t *testing.T, ctx context.Context, name string) string {
	t.Helper()
	if name == "" {
		name = fmt.Sprintf("Department %d", f.next())
	}
	id := uuid.New().String()
	_, err := f.db.ExecContext(ctx,
		`INSERT INTO departments (id, name) VALUES ($1, $2)`, id, name)
	if err != nil {
		t.Fatalf("failed to insert department: %v", err)
	}
	return id
}

// Supplier inserts a supplier and returns its ID
func (f *FixtureFactory) Supplier(t *testing.T, ctx context.Context, name string) string {
	t.Helper()
	if name == "" {
		name = fmt.Sprintf("Supplier %d", f.next())
	}
	id := uuid.New().String()
	_, err := f.db.ExecContext(ctx,
		`INSERT INTO suppliers (id, name) VALUES ($1, $2)`, id, name)
	if err != nil {
		t.Fatalf("failed to insert supplier: %v", err)
	}
	return id
}

// Product inserts a product and returns its ID
func (f *FixtureFactory) Product(t *testing.T, ctx context.Context, departmentID, name string) string {
	t.Helper()
	n := f.next()
	if name == "" {
		name = fmt.Sprintf("Product %d", n)
	}
	id := uuid.New().String()
	_, err := f.db.ExecContext(ctx, `
		INSERT INTO products (id, code, name, department_id, unit, min_stock)
		VALUES ($1, $2, $3, $4, 'pcs', 0)
	`, id, fmt.Sprintf("P-%d-%s", n, id[:8]), name, departmentID)
	if err != nil {
		t.Fatalf("failed to insert product: %v", err)
	}
	return id
}

// Lot inserts a received lot directly, bypassing the service layer. Tests
// of receiving itself should use the service instead.
func (f *FixtureFactory) Lot(t *testing.T, ctx context.Context, productID, supplierID string, quantity decimal.Decimal, expiry time.Time) string {
	t.Helper()
	id := uuid.New().String()
	_, err := f.db.ExecContext(ctx, `
		INSERT INTO received_products (id, product_id, supplier_id, quantity, unit, expiry_date)
		VALUES ($1, $2, $3, $4, 'pcs', $5)
	`, id, productID, supplierID, quantity, expiry)
	if err != nil {
		t.Fatalf("failed to insert lot: %v", err)
	}
	return id
}

// Recipe inserts a recipe with ingredient lines and returns its ID
func (f *FixtureFactory) Recipe(t *testing.T, ctx context.Context, outputProductID string, outputQty decimal.Decimal, ingredients map[string]decimal.Decimal) string {
	t.Helper()
	id := uuid.New().String()
	_, err := f.db.ExecContext(ctx, `
		INSERT INTO recipes (id, name, output_product_id, output_quantity)
		VALUES ($1, $2, $3, $4)
	`, id, fmt.Sprintf("Recipe %d", f.next()), outputProductID, outputQty)
	if err != nil {
		t.Fatalf("failed to insert recipe: %v", err)
	}
	for productID, qty := range ingredients {
		_, err := f.db.ExecContext(ctx, `
			INSERT INTO recipe_ingredients (id, recipe_id, product_id, quantity)
			VALUES ($1, $2, $3, $4)
		`, uuid.New().String(), id, productID, qty)
		if err != nil {
			t.Fatalf("failed to insert recipe ingredient: %v", err)
		}
	}
	return id
}

// QualityCheckType inserts a quality check type and returns its ID
func (f *FixtureFactory) QualityCheckType(t *testing.T, ctx context.Context, name string) string {
	t.Helper()
	if name == "" {
		name = fmt.Sprintf("Check %d", f.next())
	}
	id := uuid.New().String()
	_, err := f.db.ExecContext(ctx,
		`INSERT INTO quality_check_types (id, name) VALUES ($1, $2)`, id, name)
	if err != nil {
		t.Fatalf("failed to insert quality check type: %v", err)
	}
	return id
}

// User inserts an active user with a bcrypt-hashed password and returns its ID
func (f *FixtureFactory) User(t *testing.T, ctx context.Context, email, password string) string {
	t.Helper()
	if email == "" {
		email = fmt.Sprintf("user%d@foodtrace.test", f.next())
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	id := uuid.New().String()
	_, err = f.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, name, role)
		VALUES ($1, $2, $3, 'Test User', 'staff')
	`, id, email, string(hash))
	if err != nil {
		t.Fatalf("failed to insert user: %v", err)
	}
	return id
}
