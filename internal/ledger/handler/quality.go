package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/foodtrace/foodtrace-backend/internal/ledger/repository"
	"github.com/foodtrace/foodtrace-backend/internal/ledger/service"
	"github.com/foodtrace/foodtrace-backend/pkg/errors"
	"github.com/foodtrace/foodtrace-backend/pkg/httputil"
	"github.com/foodtrace/foodtrace-backend/pkg/logger"
)

// QualityHandler handles quality check endpoints
type QualityHandler struct {
	service *service.QualityService
	logger  *logger.Logger
}

// NewQualityHandler creates a new quality handler
func NewQualityHandler(svc *service.QualityService, log *logger.Logger) *QualityHandler {
	return &QualityHandler{
		service: svc,
		logger:  log,
	}
}

// ListCheckTypes lists quality check types
func (h *QualityHandler) ListCheckTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.service.ListCheckTypes(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, types)
}

// CreateCheckType creates a quality check type
func (h *QualityHandler) CreateCheckType(w http.ResponseWriter, r *http.Request) {
	var checkType repository.QualityCheckType
	if err := httputil.DecodeJSON(r, &checkType); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := h.service.CreateCheckType(r.Context(), &checkType); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.Created(w, checkType)
}

// RecordCheck records a quality check against a product or lot
func (h *QualityHandler) RecordCheck(w http.ResponseWriter, r *http.Request) {
	var req service.RecordCheckInput
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	check, err := h.service.RecordCheck(r.Context(), req)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.Created(w, check)
}

// ChecksByLot lists checks recorded against a lot
func (h *QualityHandler) ChecksByLot(w http.ResponseWriter, r *http.Request) {
	lotID := chi.URLParam(r, "id")

	checks, err := h.service.ChecksByLot(r.Context(), lotID)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, checks)
}

// ChecksByProduct lists checks recorded against a product
func (h *QualityHandler) ChecksByProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")

	checks, err := h.service.ChecksByProduct(r.Context(), productID)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, checks)
}

// FailureRates aggregates failure rates per check type over a window.
// Defaults to the last 30 days.
func (h *QualityHandler) FailureRates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	to := time.Now()
	from := to.AddDate(0, 0, -30)
	if v := q.Get("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			httputil.Error(w, errors.Validation(map[string]string{"from": "must be a YYYY-MM-DD date"}))
			return
		}
		from = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			httputil.Error(w, errors.Validation(map[string]string{"to": "must be a YYYY-MM-DD date"}))
			return
		}
		to = t.AddDate(0, 0, 1)
	}

	rates, err := h.service.FailureRates(r.Context(), from, to)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, rates)
}
