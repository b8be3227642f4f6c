package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodtrace/foodtrace-backend/internal/ledger/repository"
	"github.com/foodtrace/foodtrace-backend/pkg/database"
	"github.com/foodtrace/foodtrace-backend/pkg/logger"
	"github.com/foodtrace/foodtrace-backend/pkg/testutil"
)

func newMockRepo(t *testing.T) (*repository.TransactionRepository, *testutil.MockDB) {
	mockDB := testutil.NewMockDB(t)
	db := database.NewFromSqlx(mockDB.DB, logger.New("test", "test"))
	return repository.NewTransactionRepository(db), mockDB
}

func TestTransactionRepository_Insert_UpsertsBalance(t *testing.T) {
	repo, mockDB := newMockRepo(t)
	defer mockDB.Close()
	ctx := context.Background()

	lotID := "9d1f1f8a-93d9-4a41-8d52-6b0c0b6a1111"
	txn := &repository.InventoryTransaction{
		ProductID:       "3b2a6c0e-23a5-4e8e-9f10-5a30b61f2222",
		LotID:           &lotID,
		TransactionType: repository.TxTypeReceipt,
		QuantityDelta:   decimal.NewFromInt(10),
	}

	mockDB.Mock.ExpectQuery("INSERT INTO inventory_transactions").
		WillReturnRows(testutil.MockRows("created_at").AddRow(time.Now()))
	mockDB.Mock.ExpectExec("INSERT INTO inventory").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Insert(ctx, mockDB.DB, txn)
	require.NoError(t, err)
	assert.NotEmpty(t, txn.ID)
	mockDB.ExpectationsWereMet(t)
}

func TestTransactionRepository_GetBalance_ZeroWithoutRow(t *testing.T) {
	repo, mockDB := newMockRepo(t)
	defer mockDB.Close()
	ctx := context.Background()

	mockDB.Mock.ExpectQuery("SELECT quantity FROM inventory").
		WillReturnRows(testutil.MockRows("quantity"))

	balance, err := repo.GetBalance(ctx, "3b2a6c0e-23a5-4e8e-9f10-5a30b61f2222")
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
	mockDB.ExpectationsWereMet(t)
}

func TestTransactionRepository_List_AppliesFilters(t *testing.T) {
	repo, mockDB := newMockRepo(t)
	defer mockDB.Close()
	ctx := context.Background()

	productID := "3b2a6c0e-23a5-4e8e-9f10-5a30b61f2222"
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	mockDB.Mock.ExpectQuery(`SELECT \* FROM inventory_transactions WHERE product_id = \$1 AND transaction_type = \$2 AND created_at >= \$3 ORDER BY created_at DESC, id DESC LIMIT \$4`).
		WithArgs(productID, repository.TxTypeSale, from, 50).
		WillReturnRows(testutil.MockRows(
			"id", "product_id", "lot_id", "transaction_type", "quantity_delta",
			"reference_type", "reference_id", "performed_by", "notes", "created_at",
		))

	txns, err := repo.List(ctx, repository.TransactionFilter{
		ProductID:       productID,
		TransactionType: repository.TxTypeSale,
		From:            &from,
		Limit:           50,
	})
	require.NoError(t, err)
	assert.Empty(t, txns)
	mockDB.ExpectationsWereMet(t)
}
