package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/foodtrace/foodtrace-backend/internal/ledger/service"
	"github.com/foodtrace/foodtrace-backend/pkg/errors"
	"github.com/foodtrace/foodtrace-backend/pkg/httputil"
	"github.com/foodtrace/foodtrace-backend/pkg/logger"
)

// SaleHandler handles sale endpoints
type SaleHandler struct {
	service *service.LedgerService
	logger  *logger.Logger
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(svc *service.LedgerService, log *logger.Logger) *SaleHandler {
	return &SaleHandler{
		service: svc,
		logger:  log,
	}
}

// Create records a sale
func (h *SaleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.RecordSaleInput
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	sale, err := h.service.RecordSale(r.Context(), req)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.Created(w, sale)
}

// Get gets a sale with its items
func (h *SaleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sale, err := h.service.GetSale(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, sale)
}

// List lists sales in a date range
func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var from, to *time.Time
	if v := q.Get("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			httputil.Error(w, errors.Validation(map[string]string{"from": "must be a YYYY-MM-DD date"}))
			return
		}
		from = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			httputil.Error(w, errors.Validation(map[string]string{"to": "must be a YYYY-MM-DD date"}))
			return
		}
		to = &t
	}

	sales, err := h.service.ListSales(r.Context(), from, to, parseIntParam(q.Get("limit")))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, sales)
}
