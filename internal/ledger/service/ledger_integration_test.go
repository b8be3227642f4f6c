package service_test

import (
	"context"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodtrace/foodtrace-backend/internal/ledger/events"
	"github.com/foodtrace/foodtrace-backend/internal/ledger/repository"
	"github.com/foodtrace/foodtrace-backend/internal/ledger/service"
	"github.com/foodtrace/foodtrace-backend/pkg/config"
	"github.com/foodtrace/foodtrace-backend/pkg/errors"
	"github.com/foodtrace/foodtrace-backend/pkg/testutil"
)

var suite *testutil.IntegrationSuite

func TestMain(m *testing.M) {
	ctx := context.Background()

	var err error
	suite, err = testutil.NewIntegrationSuite(ctx)
	if err != nil {
		log.Fatalf("failed to create integration suite: %v", err)
	}
	defer suite.Cleanup(ctx)
	defer testutil.TerminateContainer(ctx)

	os.Exit(m.Run())
}

func newLedgerService() *service.LedgerService {
	cfg := config.LedgerConfig{ExpiryWarningDays: 7, TxMaxRetries: 3}
	return service.NewLedgerService(
		suite.DB,
		repository.NewProductRepository(suite.DB),
		repository.NewLotRepository(suite.DB),
		repository.NewTransactionRepository(suite.DB),
		repository.NewRecipeRepository(suite.DB),
		repository.NewSaleRepository(suite.DB),
		repository.NewExpiredRepository(suite.DB),
		repository.NewQualityRepository(suite.DB),
		events.NewPublisher(nil, suite.Logger),
		cfg,
		suite.Logger,
	)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func countRows(t *testing.T, ctx context.Context, table string) int {
	t.Helper()
	var n int
	err := suite.RawDB.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+table)
	require.NoError(t, err)
	return n
}

func TestReceiveStock(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()
	suite.Reset(t, ctx)
	svc := newLedgerService()

	deptID := suite.Fixtures.Department(t, ctx, "")
	supplierID := suite.Fixtures.Supplier(t, ctx, "")
	productID := suite.Fixtures.Product(t, ctx, deptID, "Tomatoes")

	lot, err := svc.ReceiveStock(ctx, service.ReceiveStockInput{
		ProductID:  productID,
		SupplierID: supplierID,
		Quantity:   dec("10"),
		ExpiryDate: time.Now().AddDate(0, 0, 5),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, lot.ID)
	assert.Equal(t, repository.LotStatusActive, lot.Status)

	check, err := svc.VerifyBalance(ctx, productID)
	require.NoError(t, err)
	assert.True(t, check.Materialized.Equal(dec("10")), "balance should be 10, got %s", check.Materialized)
	assert.True(t, check.Consistent)

	trace, err := svc.TraceLot(ctx, lot.ID)
	require.NoError(t, err)
	require.Len(t, trace.Transactions, 1)
	assert.Equal(t, repository.TxTypeReceipt, trace.Transactions[0].TransactionType)
	assert.True(t, trace.Remaining.Equal(dec("10")))
}

func TestReceiveStock_Rejections(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()
	suite.Reset(t, ctx)
	svc := newLedgerService()

	deptID := suite.Fixtures.Department(t, ctx, "")
	supplierID := suite.Fixtures.Supplier(t, ctx, "")
	productID := suite.Fixtures.Product(t, ctx, deptID, "")

	_, err := svc.ReceiveStock(ctx, service.ReceiveStockInput{
		ProductID:  productID,
		SupplierID: supplierID,
		Quantity:   dec("0"),
		ExpiryDate: time.Now().AddDate(0, 0, 5),
	})
	assert.True(t, errors.Is(err, errors.ErrValidation), "zero quantity must be rejected")

	_, err = svc.ReceiveStock(ctx, service.ReceiveStockInput{
		ProductID:  productID,
		SupplierID: supplierID,
		Quantity:   dec("5"),
		ExpiryDate: time.Now().AddDate(0, 0, -1),
	})
	assert.True(t, errors.Is(err, errors.ErrValidation), "past expiry must be rejected")

	assert.Equal(t, 0, countRows(t, ctx, "received_products"))
	assert.Equal(t, 0, countRows(t, ctx, "inventory_transactions"))
}

func TestRecordSale_DrainsEarliestExpiryFirst(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()
	suite.Reset(t, ctx)
	svc := newLedgerService()

	deptID := suite.Fixtures.Department(t, ctx, "")
	supplierID := suite.Fixtures.Supplier(t, ctx, "")
	productID := suite.Fixtures.Product(t, ctx, deptID, "Milk")

	// Received out of expiry order on purpose
	late, err := svc.ReceiveStock(ctx, service.ReceiveStockInput{
		ProductID: productID, SupplierID: supplierID,
		Quantity: dec("5"), ExpiryDate: time.Now().AddDate(0, 0, 10),
	})
	require.NoError(t, err)
	early, err := svc.ReceiveStock(ctx, service.ReceiveStockInput{
		ProductID: productID, SupplierID: supplierID,
		Quantity: dec("5"), ExpiryDate: time.Now().AddDate(0, 0, 2),
	})
	require.NoError(t, err)

	sale, err := svc.RecordSale(ctx, service.RecordSaleInput{
		Items: []service.SaleLine{
			{ProductID: productID, Quantity: dec("7"), UnitPrice: dec("1.50")},
		},
	})
	require.NoError(t, err)
	assert.True(t, sale.TotalAmount.Equal(dec("10.50")))

	earlyTrace, err := svc.TraceLot(ctx, early.ID)
	require.NoError(t, err)
	assert.True(t, earlyTrace.Remaining.IsZero(), "earliest-expiry lot should be drained first, remaining %s", earlyTrace.Remaining)

	lateTrace, err := svc.TraceLot(ctx, late.ID)
	require.NoError(t, err)
	assert.True(t, lateTrace.Remaining.Equal(dec("3")))

	check, err := svc.VerifyBalance(ctx, productID)
	require.NoError(t, err)
	assert.True(t, check.Materialized.Equal(dec("3")))
	assert.True(t, check.Consistent)
}

func TestRecordSale_InsufficientLeavesNothingBehind(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()
	suite.Reset(t, ctx)
	svc := newLedgerService()

	deptID := suite.Fixtures.Department(t, ctx, "")
	supplierID := suite.Fixtures.Supplier(t, ctx, "")
	bread := suite.Fixtures.Product(t, ctx, deptID, "Bread")
	butter := suite.Fixtures.Product(t, ctx, deptID, "Butter")

	_, err := svc.ReceiveStock(ctx, service.ReceiveStockInput{
		ProductID: bread, SupplierID: supplierID,
		Quantity: dec("10"), ExpiryDate: time.Now().AddDate(0, 0, 3),
	})
	require.NoError(t, err)
	_, err = svc.ReceiveStock(ctx, service.ReceiveStockInput{
		ProductID: butter, SupplierID: supplierID,
		Quantity: dec("2"), ExpiryDate: time.Now().AddDate(0, 0, 30),
	})
	require.NoError(t, err)

	txnsBefore := countRows(t, ctx, "inventory_transactions")

	// First line is coverable, second is not: the whole sale must fail
	_, err = svc.RecordSale(ctx, service.RecordSaleInput{
		Items: []service.SaleLine{
			{ProductID: bread, Quantity: dec("4"), UnitPrice: dec("2")},
			{ProductID: butter, Quantity: dec("5"), UnitPrice: dec("3")},
		},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInsufficientInventory))

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "Butter", appErr.Details["product"])

	assert.Equal(t, 0, countRows(t, ctx, "sales"))
	assert.Equal(t, 0, countRows(t, ctx, "sales_items"))
	assert.Equal(t, txnsBefore, countRows(t, ctx, "inventory_transactions"))

	for _, id := range []string{bread, butter} {
		check, err := svc.VerifyBalance(ctx, id)
		require.NoError(t, err)
		assert.True(t, check.Consistent)
	}
}

func TestProduceRecipe(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()
	suite.Reset(t, ctx)
	svc := newLedgerService()

	deptID := suite.Fixtures.Department(t, ctx, "")
	supplierID := suite.Fixtures.Supplier(t, ctx, "")
	flour := suite.Fixtures.Product(t, ctx, deptID, "Flour")
	sugar := suite.Fixtures.Product(t, ctx, deptID, "Sugar")
	cake := suite.Fixtures.Product(t, ctx, deptID, "Cake")

	_, err := svc.ReceiveStock(ctx, service.ReceiveStockInput{
		ProductID: flour, SupplierID: supplierID,
		Quantity: dec("10"), ExpiryDate: time.Now().AddDate(0, 1, 0),
	})
	require.NoError(t, err)
	_, err = svc.ReceiveStock(ctx, service.ReceiveStockInput{
		ProductID: sugar, SupplierID: supplierID,
		Quantity: dec("2"), ExpiryDate: time.Now().AddDate(0, 1, 0),
	})
	require.NoError(t, err)

	recipeID := suite.Fixtures.Recipe(t, ctx, cake, dec("1"), map[string]decimal.Decimal{
		flour: dec("2"),
		sugar: dec("1"),
	})

	// Needs 6 flour and 3 sugar but only 2 sugar is on hand:
	// nothing may change.
	_, err = svc.ProduceRecipe(ctx, service.ProduceRecipeInput{
		RecipeID:        recipeID,
		BatchMultiplier: dec("3"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInsufficientInventory))
	assert.Equal(t, 0, countRows(t, ctx, "recipe_productions"))

	check, err := svc.VerifyBalance(ctx, flour)
	require.NoError(t, err)
	assert.True(t, check.Materialized.Equal(dec("10")))

	// Multiplier 2 fits: 4 flour and 2 sugar consumed, 2 cake credited
	prod, err := svc.ProduceRecipe(ctx, service.ProduceRecipeInput{
		RecipeID:        recipeID,
		BatchMultiplier: dec("2"),
	})
	require.NoError(t, err)
	assert.True(t, prod.OutputQuantity.Equal(dec("2")))

	for id, want := range map[string]string{flour: "6", sugar: "0", cake: "2"} {
		check, err := svc.VerifyBalance(ctx, id)
		require.NoError(t, err)
		assert.True(t, check.Materialized.Equal(dec(want)), "product %s: want %s got %s", id, want, check.Materialized)
		assert.True(t, check.Consistent)
	}
}

func TestMarkExpired(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()
	suite.Reset(t, ctx)
	svc := newLedgerService()

	deptID := suite.Fixtures.Department(t, ctx, "")
	supplierID := suite.Fixtures.Supplier(t, ctx, "")
	productID := suite.Fixtures.Product(t, ctx, deptID, "Yoghurt")

	fresh, err := svc.ReceiveStock(ctx, service.ReceiveStockInput{
		ProductID: productID, SupplierID: supplierID,
		Quantity: dec("4"), ExpiryDate: time.Now().AddDate(0, 0, 5),
	})
	require.NoError(t, err)

	// Not yet expired
	_, err = svc.MarkExpired(ctx, service.MarkExpiredInput{LotID: fresh.ID})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidState))

	// Expiry date today is eligible for write-off
	due, err := svc.ReceiveStock(ctx, service.ReceiveStockInput{
		ProductID: productID, SupplierID: supplierID,
		Quantity: dec("6"), ExpiryDate: time.Now(),
	})
	require.NoError(t, err)

	record, err := svc.MarkExpired(ctx, service.MarkExpiredInput{LotID: due.ID})
	require.NoError(t, err)
	assert.True(t, record.Quantity.Equal(dec("6")))

	trace, err := svc.TraceLot(ctx, due.ID)
	require.NoError(t, err)
	assert.Equal(t, repository.LotStatusExpired, trace.Lot.Status)
	assert.True(t, trace.Remaining.IsZero())
	require.Len(t, trace.Transactions, 2)
	assert.Equal(t, repository.TxTypeExpiryWriteoff, trace.Transactions[1].TransactionType)

	// Write-off is not repeatable
	_, err = svc.MarkExpired(ctx, service.MarkExpiredInput{LotID: due.ID})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidState))

	check, err := svc.VerifyBalance(ctx, productID)
	require.NoError(t, err)
	assert.True(t, check.Materialized.Equal(dec("4")))
	assert.True(t, check.Consistent)
}

func TestMarkExpired_FullyConsumedLot(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()
	suite.Reset(t, ctx)
	svc := newLedgerService()

	deptID := suite.Fixtures.Department(t, ctx, "")
	supplierID := suite.Fixtures.Supplier(t, ctx, "")
	productID := suite.Fixtures.Product(t, ctx, deptID, "")

	lot, err := svc.ReceiveStock(ctx, service.ReceiveStockInput{
		ProductID: productID, SupplierID: supplierID,
		Quantity: dec("5"), ExpiryDate: time.Now(),
	})
	require.NoError(t, err)

	_, err = svc.RecordSale(ctx, service.RecordSaleInput{
		Items: []service.SaleLine{{ProductID: productID, Quantity: dec("5"), UnitPrice: dec("1")}},
	})
	require.NoError(t, err)

	txnsBefore := countRows(t, ctx, "inventory_transactions")

	// Nothing remains, so there is nothing to write off
	_, err = svc.MarkExpired(ctx, service.MarkExpiredInput{LotID: lot.ID})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidState))

	assert.Equal(t, txnsBefore, countRows(t, ctx, "inventory_transactions"))
	assert.Equal(t, 0, countRows(t, ctx, "expired_products"))

	trace, err := svc.TraceLot(ctx, lot.ID)
	require.NoError(t, err)
	assert.Equal(t, repository.LotStatusActive, trace.Lot.Status)
	require.Len(t, trace.Transactions, 2)
	for _, txn := range trace.Transactions {
		assert.NotEqual(t, repository.TxTypeExpiryWriteoff, txn.TransactionType)
	}
}

func TestAdjustStock(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()
	suite.Reset(t, ctx)
	svc := newLedgerService()

	deptID := suite.Fixtures.Department(t, ctx, "")
	supplierID := suite.Fixtures.Supplier(t, ctx, "")
	productID := suite.Fixtures.Product(t, ctx, deptID, "Rice")

	_, err := svc.ReceiveStock(ctx, service.ReceiveStockInput{
		ProductID: productID, SupplierID: supplierID,
		Quantity: dec("8"), ExpiryDate: time.Now().AddDate(1, 0, 0),
	})
	require.NoError(t, err)

	_, err = svc.AdjustStock(ctx, service.AdjustStockInput{
		ProductID: productID, Delta: dec("-10"), Reason: "shrinkage",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInsufficientInventory))

	newBalance, err := svc.AdjustStock(ctx, service.AdjustStockInput{
		ProductID: productID, Delta: dec("-3"), Reason: "damaged packaging",
	})
	require.NoError(t, err)
	assert.True(t, newBalance.Equal(dec("5")))

	check, err := svc.VerifyBalance(ctx, productID)
	require.NoError(t, err)
	assert.True(t, check.Materialized.Equal(dec("5")))
	assert.True(t, check.Consistent)
}

func TestTraceLot_OrderAndSum(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()
	suite.Reset(t, ctx)
	svc := newLedgerService()

	deptID := suite.Fixtures.Department(t, ctx, "")
	supplierID := suite.Fixtures.Supplier(t, ctx, "")
	productID := suite.Fixtures.Product(t, ctx, deptID, "Cheese")

	lot, err := svc.ReceiveStock(ctx, service.ReceiveStockInput{
		ProductID: productID, SupplierID: supplierID,
		Quantity: dec("10"), ExpiryDate: time.Now().AddDate(0, 0, 20),
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = svc.RecordSale(ctx, service.RecordSaleInput{
			Items: []service.SaleLine{{ProductID: productID, Quantity: dec("2"), UnitPrice: dec("4")}},
		})
		require.NoError(t, err)
	}

	trace, err := svc.TraceLot(ctx, lot.ID)
	require.NoError(t, err)
	require.Len(t, trace.Transactions, 4)

	assert.Equal(t, repository.TxTypeReceipt, trace.Transactions[0].TransactionType)
	sum := decimal.Zero
	for i, txn := range trace.Transactions {
		if i > 0 {
			assert.Equal(t, repository.TxTypeSale, txn.TransactionType)
			assert.False(t, txn.CreatedAt.Before(trace.Transactions[i-1].CreatedAt))
		}
		sum = sum.Add(txn.QuantityDelta)
	}
	assert.True(t, sum.Equal(trace.Remaining))
	assert.True(t, trace.Remaining.Equal(dec("4")))
}

func TestExpiringLots_WarningWindow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()
	suite.Reset(t, ctx)
	svc := newLedgerService()

	deptID := suite.Fixtures.Department(t, ctx, "")
	supplierID := suite.Fixtures.Supplier(t, ctx, "")
	productID := suite.Fixtures.Product(t, ctx, deptID, "Cream")

	// Earliest expiry, fully sold below: must not be listed
	_, err := svc.ReceiveStock(ctx, service.ReceiveStockInput{
		ProductID: productID, SupplierID: supplierID,
		Quantity: dec("4"), ExpiryDate: time.Now().AddDate(0, 0, 2),
	})
	require.NoError(t, err)

	soon, err := svc.ReceiveStock(ctx, service.ReceiveStockInput{
		ProductID: productID, SupplierID: supplierID,
		Quantity: dec("5"), ExpiryDate: time.Now().AddDate(0, 0, 3),
	})
	require.NoError(t, err)

	// Outside the 7-day warning window
	_, err = svc.ReceiveStock(ctx, service.ReceiveStockInput{
		ProductID: productID, SupplierID: supplierID,
		Quantity: dec("5"), ExpiryDate: time.Now().AddDate(0, 0, 30),
	})
	require.NoError(t, err)

	// Drains the earliest lot completely
	_, err = svc.RecordSale(ctx, service.RecordSaleInput{
		Items: []service.SaleLine{{ProductID: productID, Quantity: dec("4"), UnitPrice: dec("2")}},
	})
	require.NoError(t, err)

	expiring, err := svc.ExpiringLots(ctx)
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	assert.Equal(t, soon.ID, expiring[0].ID)
	assert.Equal(t, "Cream", expiring[0].ProductName)
	assert.Equal(t, 3, expiring[0].DaysUntilExpiry)
	assert.True(t, expiring[0].Remaining.Equal(dec("5")))
}

func TestExpiredLots_ListsPastDateWithStock(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()
	suite.Reset(t, ctx)
	svc := newLedgerService()

	deptID := suite.Fixtures.Department(t, ctx, "")
	supplierID := suite.Fixtures.Supplier(t, ctx, "")
	productID := suite.Fixtures.Product(t, ctx, deptID, "Ham")

	stale, err := svc.ReceiveStock(ctx, service.ReceiveStockInput{
		ProductID: productID, SupplierID: supplierID,
		Quantity: dec("6"), ExpiryDate: time.Now(),
	})
	require.NoError(t, err)
	_, err = suite.RawDB.ExecContext(ctx,
		`UPDATE received_products SET expiry_date = CURRENT_DATE - 2 WHERE id = $1`, stale.ID)
	require.NoError(t, err)

	_, err = svc.ReceiveStock(ctx, service.ReceiveStockInput{
		ProductID: productID, SupplierID: supplierID,
		Quantity: dec("3"), ExpiryDate: time.Now().AddDate(0, 0, 10),
	})
	require.NoError(t, err)

	expired, err := svc.ExpiredLots(ctx)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, stale.ID, expired[0].ID)
	assert.Equal(t, -2, expired[0].DaysUntilExpiry)
	assert.True(t, expired[0].Remaining.Equal(dec("6")))

	// Written-off lots leave the listing
	_, err = svc.MarkExpired(ctx, service.MarkExpiredInput{LotID: stale.ID})
	require.NoError(t, err)

	expired, err = svc.ExpiredLots(ctx)
	require.NoError(t, err)
	assert.Empty(t, expired)
}

func TestDashboard(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()
	suite.Reset(t, ctx)
	svc := newLedgerService()
	reports := service.NewReportService(
		repository.NewReportRepository(suite.DB),
		config.LedgerConfig{ExpiryWarningDays: 7, TxMaxRetries: 3},
		suite.Logger,
	)

	deptID := suite.Fixtures.Department(t, ctx, "")
	supplierID := suite.Fixtures.Supplier(t, ctx, "")
	eggs := suite.Fixtures.Product(t, ctx, deptID, "Eggs")
	oats := suite.Fixtures.Product(t, ctx, deptID, "Oats")

	_, err := svc.ReceiveStock(ctx, service.ReceiveStockInput{
		ProductID: eggs, SupplierID: supplierID,
		Quantity: dec("12"), ExpiryDate: time.Now().AddDate(0, 0, 4),
	})
	require.NoError(t, err)
	_, err = svc.ReceiveStock(ctx, service.ReceiveStockInput{
		ProductID: oats, SupplierID: supplierID,
		Quantity: dec("20"), ExpiryDate: time.Now().AddDate(0, 1, 0),
	})
	require.NoError(t, err)

	_, err = svc.RecordSale(ctx, service.RecordSaleInput{
		Items: []service.SaleLine{{ProductID: eggs, Quantity: dec("2"), UnitPrice: dec("0.50")}},
	})
	require.NoError(t, err)

	stats, err := reports.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.ProductCount)
	assert.Equal(t, 1, stats.ExpiringLotCount)
	assert.Equal(t, 0, stats.ExpiredLotCount)
	assert.True(t, stats.SalesToday.Equal(dec("1")))
	assert.Equal(t, 3, stats.TransactionsToday)
}

func TestRecordSale_ConcurrentSalesNeverOversell(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()
	suite.Reset(t, ctx)
	svc := newLedgerService()

	deptID := suite.Fixtures.Department(t, ctx, "")
	supplierID := suite.Fixtures.Supplier(t, ctx, "")
	productID := suite.Fixtures.Product(t, ctx, deptID, "Juice")

	_, err := svc.ReceiveStock(ctx, service.ReceiveStockInput{
		ProductID: productID, SupplierID: supplierID,
		Quantity: dec("10"), ExpiryDate: time.Now().AddDate(0, 0, 14),
	})
	require.NoError(t, err)

	// Two sales of 7 against a balance of 10: only one can be covered
	results := make([]error, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.RecordSale(ctx, service.RecordSaleInput{
				Items: []service.SaleLine{{ProductID: productID, Quantity: dec("7"), UnitPrice: dec("1")}},
			})
		}(i)
	}
	wg.Wait()

	var failures int
	for _, err := range results {
		if err != nil {
			failures++
			assert.True(t, errors.Is(err, errors.ErrInsufficientInventory))
		}
	}
	assert.Equal(t, 1, failures)
	assert.Equal(t, 1, countRows(t, ctx, "sales"))

	check, err := svc.VerifyBalance(ctx, productID)
	require.NoError(t, err)
	assert.True(t, check.Materialized.Equal(dec("3")))
	assert.True(t, check.Consistent)
}
