package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/foodtrace/foodtrace-backend/internal/ledger/service"
	"github.com/foodtrace/foodtrace-backend/pkg/httputil"
	"github.com/foodtrace/foodtrace-backend/pkg/logger"
)

// ProductionHandler handles recipe production endpoints
type ProductionHandler struct {
	service *service.LedgerService
	logger  *logger.Logger
}

// NewProductionHandler creates a new production handler
func NewProductionHandler(svc *service.LedgerService, log *logger.Logger) *ProductionHandler {
	return &ProductionHandler{
		service: svc,
		logger:  log,
	}
}

// Produce runs a recipe: consumes its ingredients and credits its output
func (h *ProductionHandler) Produce(w http.ResponseWriter, r *http.Request) {
	var req service.ProduceRecipeInput
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	prod, err := h.service.ProduceRecipe(r.Context(), req)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.Created(w, prod)
}

// ListRuns lists production runs of a recipe
func (h *ProductionHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	recipeID := chi.URLParam(r, "id")

	runs, err := h.service.ListProductions(r.Context(), recipeID)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, runs)
}
