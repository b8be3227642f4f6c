package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/foodtrace/foodtrace-backend/internal/ledger/repository"
	"github.com/foodtrace/foodtrace-backend/internal/ledger/service"
	"github.com/foodtrace/foodtrace-backend/pkg/httputil"
	"github.com/foodtrace/foodtrace-backend/pkg/logger"
)

// CatalogHandler handles reference data endpoints
type CatalogHandler struct {
	service *service.CatalogService
	logger  *logger.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(svc *service.CatalogService, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: svc,
		logger:  log,
	}
}

// ListDepartments lists departments
func (h *CatalogHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.service.ListDepartments(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, departments)
}

// CreateDepartment creates a department
func (h *CatalogHandler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var department repository.Department
	if err := httputil.DecodeJSON(r, &department); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := h.service.CreateDepartment(r.Context(), &department); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.Created(w, department)
}

// ListSuppliers lists suppliers
func (h *CatalogHandler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.service.ListSuppliers(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, suppliers)
}

// CreateSupplier creates a supplier
func (h *CatalogHandler) CreateSupplier(w http.ResponseWriter, r *http.Request) {
	var supplier repository.Supplier
	if err := httputil.DecodeJSON(r, &supplier); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := h.service.CreateSupplier(r.Context(), &supplier); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.Created(w, supplier)
}

// LinkSupplierDepartment links a supplier to a department
func (h *CatalogHandler) LinkSupplierDepartment(w http.ResponseWriter, r *http.Request) {
	supplierID := chi.URLParam(r, "id")
	departmentID := chi.URLParam(r, "departmentID")

	if err := h.service.LinkSupplierDepartment(r.Context(), supplierID, departmentID); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.NoContent(w)
}

// ListProducts lists products, optionally filtered by department
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	departmentID := r.URL.Query().Get("department_id")

	products, err := h.service.ListProducts(r.Context(), departmentID)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, products)
}

// CreateProduct creates a product
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product repository.Product
	if err := httputil.DecodeJSON(r, &product); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := h.service.CreateProduct(r.Context(), &product); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.Created(w, product)
}

// GetProduct gets a product by ID
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, product)
}

// UpdateProduct updates a product
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var product repository.Product
	if err := httputil.DecodeJSON(r, &product); err != nil {
		httputil.Error(w, err)
		return
	}
	product.ID = id
	if err := h.service.UpdateProduct(r.Context(), &product); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, product)
}

// DeleteProduct soft-deletes a product
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeactivateProduct(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.NoContent(w)
}

// ListPackaging lists packaging types
func (h *CatalogHandler) ListPackaging(w http.ResponseWriter, r *http.Request) {
	packaging, err := h.service.ListPackaging(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, packaging)
}

// CreatePackaging creates a packaging type
func (h *CatalogHandler) CreatePackaging(w http.ResponseWriter, r *http.Request) {
	var packaging repository.Packaging
	if err := httputil.DecodeJSON(r, &packaging); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := h.service.CreatePackaging(r.Context(), &packaging); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.Created(w, packaging)
}

// ListIngredients lists products flagged as recipe ingredients
func (h *CatalogHandler) ListIngredients(w http.ResponseWriter, r *http.Request) {
	ingredients, err := h.service.ListIngredients(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, ingredients)
}

// MarkIngredient flags a product as usable in recipes
func (h *CatalogHandler) MarkIngredient(w http.ResponseWriter, r *http.Request) {
	var ingredient repository.Ingredient
	if err := httputil.DecodeJSON(r, &ingredient); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := h.service.MarkIngredient(r.Context(), &ingredient); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.Created(w, ingredient)
}

// ListRecipes lists recipes
func (h *CatalogHandler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.service.ListRecipes(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, recipes)
}

// CreateRecipe creates a recipe
func (h *CatalogHandler) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	var req service.CreateRecipeInput
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	recipe, err := h.service.CreateRecipe(r.Context(), req)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.Created(w, recipe)
}

// GetRecipe gets a recipe with its ingredients
func (h *CatalogHandler) GetRecipe(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	recipe, err := h.service.GetRecipe(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, recipe)
}

// DeleteRecipe soft-deletes a recipe
func (h *CatalogHandler) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeactivateRecipe(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.NoContent(w)
}
