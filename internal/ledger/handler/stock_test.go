package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodtrace/foodtrace-backend/internal/ledger/events"
	"github.com/foodtrace/foodtrace-backend/internal/ledger/handler"
	"github.com/foodtrace/foodtrace-backend/internal/ledger/repository"
	"github.com/foodtrace/foodtrace-backend/internal/ledger/service"
	"github.com/foodtrace/foodtrace-backend/pkg/config"
	"github.com/foodtrace/foodtrace-backend/pkg/httputil"
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

func newTestStockHandler() *handler.StockHandler {
	cfg := config.LedgerConfig{ExpiryWarningDays: 7, TxMaxRetries: 3}
	svc := service.NewLedgerService(
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
	return handler.NewStockHandler(svc, suite.Logger)
}

func newStockRouter(h *handler.StockHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Post("/api/v1/stock/receive", h.Receive)
	r.Get("/api/v1/stock/inventory", h.Inventory)
	r.Get("/api/v1/lots/{id}", h.GetLot)
	r.Get("/api/v1/lots/{id}/trace", h.Trace)
	return r
}

func TestReceive_Success(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()
	suite.Reset(t, ctx)

	deptID := suite.Fixtures.Department(t, ctx, "Bakery")
	supplierID := suite.Fixtures.Supplier(t, ctx, "Mill & Co")
	productID := suite.Fixtures.Product(t, ctx, deptID, "Flour")

	h := newTestStockHandler()
	r := newStockRouter(h)

	body := map[string]interface{}{
		"product_id":  productID,
		"supplier_id": supplierID,
		"quantity":    "25",
		"expiry_date": time.Now().UTC().AddDate(0, 1, 0).Format(time.RFC3339),
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/stock/receive", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code, "unexpected status code. Body: %s", rr.Body.String())

	var resp httputil.Response
	err = json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
	require.NotNil(t, resp.Data)

	lot := resp.Data.(map[string]interface{})
	assert.Equal(t, productID, lot["product_id"])
	assert.NotEmpty(t, lot["id"])
}

func TestReceive_RejectsNonPositiveQuantity(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()
	suite.Reset(t, ctx)

	deptID := suite.Fixtures.Department(t, ctx, "Bakery")
	supplierID := suite.Fixtures.Supplier(t, ctx, "Mill & Co")
	productID := suite.Fixtures.Product(t, ctx, deptID, "Flour")

	h := newTestStockHandler()
	r := newStockRouter(h)

	body := map[string]interface{}{
		"product_id":  productID,
		"supplier_id": supplierID,
		"quantity":    "-5",
		"expiry_date": time.Now().UTC().AddDate(0, 1, 0).Format(time.RFC3339),
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/stock/receive", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code, "expected 400 for negative quantity. Body: %s", rr.Body.String())

	var resp httputil.Response
	err = json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestGetLot_NotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()
	suite.Reset(t, ctx)

	h := newTestStockHandler()
	r := newStockRouter(h)

	req := httptest.NewRequest("GET", "/api/v1/lots/00000000-0000-0000-0000-0000000000ff", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code, "expected 404 for unknown lot. Body: %s", rr.Body.String())

	var resp httputil.Response
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func receiveLot(t *testing.T, r *chi.Mux, productID, supplierID, quantity string) string {
	t.Helper()

	body := map[string]interface{}{
		"product_id":  productID,
		"supplier_id": supplierID,
		"quantity":    quantity,
		"expiry_date": time.Now().UTC().AddDate(0, 0, 10).Format(time.RFC3339),
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/stock/receive", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code, "failed to receive lot. Body: %s", rr.Body.String())

	var resp httputil.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Data.(map[string]interface{})["id"].(string)
}

func TestTrace_ReturnsHistory(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()
	suite.Reset(t, ctx)

	deptID := suite.Fixtures.Department(t, ctx, "Dairy")
	supplierID := suite.Fixtures.Supplier(t, ctx, "Farm Fresh")
	productID := suite.Fixtures.Product(t, ctx, deptID, "Milk")

	h := newTestStockHandler()
	r := newStockRouter(h)
	lotID := receiveLot(t, r, productID, supplierID, "12")

	req := httptest.NewRequest("GET", fmt.Sprintf("/api/v1/lots/%s/trace", lotID), nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code, "unexpected status code. Body: %s", rr.Body.String())

	var resp httputil.Response
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Data)

	trace := resp.Data.(map[string]interface{})
	assert.Equal(t, "12", trace["remaining"])
}

func TestInventory_ListsBalances(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()
	suite.Reset(t, ctx)

	deptID := suite.Fixtures.Department(t, ctx, "Dairy")
	supplierID := suite.Fixtures.Supplier(t, ctx, "Farm Fresh")
	productID := suite.Fixtures.Product(t, ctx, deptID, "Butter")

	h := newTestStockHandler()
	r := newStockRouter(h)
	receiveLot(t, r, productID, supplierID, "8")

	req := httptest.NewRequest("GET", "/api/v1/stock/inventory", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code, "unexpected status code. Body: %s", rr.Body.String())

	var resp httputil.Response
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Data)

	levels := resp.Data.([]interface{})
	require.Len(t, levels, 1)
	level := levels[0].(map[string]interface{})
	assert.Equal(t, productID, level["product_id"])
	assert.Equal(t, "8", level["quantity"])
}
