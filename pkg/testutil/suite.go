package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/foodtrace/foodtrace-backend/pkg/database"
	"github.com/foodtrace/foodtrace-backend/pkg/logger"
)

var (
	// Global test container (shared across all integration tests)
	globalContainer *PostgresContainer
	globalDB        *sqlx.DB
	containerOnce   sync.Once
	containerErr    error
)

// IntegrationSuite provides a base for integration tests with real PostgreSQL
type IntegrationSuite struct {
	Container *PostgresContainer
	RawDB     *sqlx.DB
	DB        *database.DB
	Fixtures  *FixtureFactory
	Logger    *logger.Logger
}

// NewIntegrationSuite starts (or reuses) the shared PostgreSQL container,
// applies the schema and returns a connected suite.
//
// Usage:
//
//	func TestMain(m *testing.M) {
//	    ctx := context.Background()
//	    suite, err := testutil.NewIntegrationSuite(ctx)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer suite.Cleanup(ctx)
//	    os.Exit(m.Run())
//	}
func NewIntegrationSuite(ctx context.Context) (*IntegrationSuite, error) {
	containerOnce.Do(func() {
		globalContainer, containerErr = NewPostgresContainer(ctx, DefaultPostgresConfig())
		if containerErr != nil {
			return
		}
		globalDB, containerErr = globalContainer.Connect()
		if containerErr != nil {
			return
		}
		containerErr = ApplyMigrations(ctx, globalDB)
	})
	if containerErr != nil {
		return nil, containerErr
	}

	log := logger.New("test", "test")
	db := database.NewFromSqlx(globalDB, log)

	return &IntegrationSuite{
		Container: globalContainer,
		RawDB:     globalDB,
		DB:        db,
		Fixtures:  NewFixtureFactory(globalDB),
		Logger:    log,
	}, nil
}

// Cleanup releases per-suite resources. The shared container stays up;
// terminate it with TerminateContainer in TestMain.
func (s *IntegrationSuite) Cleanup(ctx context.Context) error {
	return nil
}

// TerminateContainer terminates the shared container.
// Only call this in TestMain after all tests have completed.
func TerminateContainer(ctx context.Context) {
	if globalDB != nil {
		globalDB.Close()
	}
	if globalContainer != nil {
		globalContainer.Terminate(ctx)
	}
}

// Reset truncates every mutable table so a test starts from an empty
// database. Table order does not matter with CASCADE.
func (s *IntegrationSuite) Reset(t *testing.T, ctx context.Context) {
	t.Helper()
	tables := []string{
		"quality_checks", "quality_check_types",
		"sales_items", "sales",
		"expired_products", "inventory_transactions", "inventory",
		"recipe_productions", "recipe_ingredients", "recipes",
		"received_products", "ingredients", "products",
		"supplier_departments", "packaging", "suppliers", "departments",
		"users",
	}
	for _, table := range tables {
		if _, err := s.RawDB.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			t.Fatalf("failed to truncate %s: %v", table, err)
		}
	}
}
