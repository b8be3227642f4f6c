package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/foodtrace/foodtrace-backend/internal/ledger/repository"
	"github.com/foodtrace/foodtrace-backend/internal/ledger/service"
	"github.com/foodtrace/foodtrace-backend/pkg/errors"
	"github.com/foodtrace/foodtrace-backend/pkg/httputil"
	"github.com/foodtrace/foodtrace-backend/pkg/logger"
)

// StockHandler handles stock intake, inventory and traceability endpoints
type StockHandler struct {
	service *service.LedgerService
	logger  *logger.Logger
}

// NewStockHandler creates a new stock handler
func NewStockHandler(svc *service.LedgerService, log *logger.Logger) *StockHandler {
	return &StockHandler{
		service: svc,
		logger:  log,
	}
}

// Receive records an incoming lot
func (h *StockHandler) Receive(w http.ResponseWriter, r *http.Request) {
	var req service.ReceiveStockInput
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	lot, err := h.service.ReceiveStock(r.Context(), req)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.Created(w, lot)
}

// GetLot gets a lot by ID
func (h *StockHandler) GetLot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	lot, err := h.service.GetLot(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, lot)
}

// ListLots lists a product's lots
func (h *StockHandler) ListLots(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")

	lots, err := h.service.ListLots(r.Context(), productID)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, lots)
}

// Trace returns the full recorded history of a lot
func (h *StockHandler) Trace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	trace, err := h.service.TraceLot(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, trace)
}

// Inventory lists current balances of all active products
func (h *StockHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	levels, err := h.service.CurrentInventory(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, levels)
}

// VerifyBalance replays a product's ledger and compares with its balance
func (h *StockHandler) VerifyBalance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	check, err := h.service.VerifyBalance(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, check)
}

// Adjust records a manual stock correction
func (h *StockHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req service.AdjustStockInput
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	newBalance, err := h.service.AdjustStock(r.Context(), req)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"product_id":  req.ProductID,
		"new_balance": newBalance,
	})
}

// Transactions lists ledger entries matching query filters
func (h *StockHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTransactionFilter(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	txns, err := h.service.ListTransactions(r.Context(), filter)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, txns)
}

func parseTransactionFilter(r *http.Request) (repository.TransactionFilter, error) {
	q := r.URL.Query()
	filter := repository.TransactionFilter{
		ProductID:       q.Get("product_id"),
		LotID:           q.Get("lot_id"),
		TransactionType: q.Get("type"),
		Limit:           parseIntParam(q.Get("limit")),
		Offset:          parseIntParam(q.Get("offset")),
	}

	if v := q.Get("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, errors.Validation(map[string]string{"from": "must be a YYYY-MM-DD date"})
		}
		filter.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, errors.Validation(map[string]string{"to": "must be a YYYY-MM-DD date"})
		}
		filter.To = &t
	}
	return filter, nil
}

func parseIntParam(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
