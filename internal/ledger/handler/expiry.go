package handler

import (
	"net/http"

	"github.com/foodtrace/foodtrace-backend/internal/ledger/service"
	"github.com/foodtrace/foodtrace-backend/pkg/httputil"
	"github.com/foodtrace/foodtrace-backend/pkg/logger"
)

// ExpiryHandler handles expiry management endpoints
type ExpiryHandler struct {
	service *service.LedgerService
	logger  *logger.Logger
}

// NewExpiryHandler creates a new expiry handler
func NewExpiryHandler(svc *service.LedgerService, log *logger.Logger) *ExpiryHandler {
	return &ExpiryHandler{
		service: svc,
		logger:  log,
	}
}

// Expiring lists open lots expiring within the warning window
func (h *ExpiryHandler) Expiring(w http.ResponseWriter, r *http.Request) {
	lots, err := h.service.ExpiringLots(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, lots)
}

// Expired lists lots past expiry still holding stock
func (h *ExpiryHandler) Expired(w http.ResponseWriter, r *http.Request) {
	lots, err := h.service.ExpiredLots(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, lots)
}

// MarkExpired writes off an expired lot
func (h *ExpiryHandler) MarkExpired(w http.ResponseWriter, r *http.Request) {
	var req service.MarkExpiredInput
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	record, err := h.service.MarkExpired(r.Context(), req)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.Created(w, record)
}

// WriteOffs lists recorded expiry write-offs
func (h *ExpiryHandler) WriteOffs(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.WriteOffs(r.Context(), parseIntParam(r.URL.Query().Get("limit")))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, records)
}
