package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/foodtrace/foodtrace-backend/internal/ledger/repository"
	"github.com/foodtrace/foodtrace-backend/pkg/errors"
	"github.com/foodtrace/foodtrace-backend/pkg/logger"
)

// CatalogService manages the reference data the ledger writes against:
// departments, suppliers, packaging, products, ingredients and recipes.
type CatalogService struct {
	departments *repository.DepartmentRepository
	suppliers   *repository.SupplierRepository
	products    *repository.ProductRepository
	recipes     *repository.RecipeRepository
	log         *logger.Logger
}

// NewCatalogService creates the catalog service
func NewCatalogService(
	departments *repository.DepartmentRepository,
	suppliers *repository.SupplierRepository,
	products *repository.ProductRepository,
	recipes *repository.RecipeRepository,
	log *logger.Logger,
) *CatalogService {
	return &CatalogService{
		departments: departments,
		suppliers:   suppliers,
		products:    products,
		recipes:     recipes,
		log:         log.WithComponent("catalog"),
	}
}

// CreateDepartment creates a department
func (s *CatalogService) CreateDepartment(ctx context.Context, d *repository.Department) error {
	if d.Name == "" {
		return errors.Validation(map[string]string{"name": "is required"})
	}
	return s.departments.Create(ctx, d)
}

// ListDepartments lists active departments
func (s *CatalogService) ListDepartments(ctx context.Context) ([]*repository.Department, error) {
	return s.departments.List(ctx)
}

// CreateSupplier creates a supplier
func (s *CatalogService) CreateSupplier(ctx context.Context, sup *repository.Supplier) error {
	if sup.Name == "" {
		return errors.Validation(map[string]string{"name": "is required"})
	}
	return s.suppliers.Create(ctx, sup)
}

// ListSuppliers lists active suppliers
func (s *CatalogService) ListSuppliers(ctx context.Context) ([]*repository.Supplier, error) {
	return s.suppliers.List(ctx)
}

// LinkSupplierDepartment associates a supplier with a department
func (s *CatalogService) LinkSupplierDepartment(ctx context.Context, supplierID, departmentID string) error {
	return s.suppliers.LinkDepartment(ctx, supplierID, departmentID)
}

// CreateProduct creates a product
func (s *CatalogService) CreateProduct(ctx context.Context, p *repository.Product) error {
	details := map[string]string{}
	if p.Code == "" {
		details["code"] = "is required"
	}
	if p.Name == "" {
		details["name"] = "is required"
	}
	if p.DepartmentID == "" {
		details["department_id"] = "is required"
	}
	if p.MinStock.IsNegative() {
		details["min_stock"] = "must not be negative"
	}
	if len(details) > 0 {
		return errors.Validation(details)
	}
	if err := s.products.Create(ctx, p); err != nil {
		return err
	}
	s.log.Info().Str("product_id", p.ID).Str("code", p.Code).Msg("product created")
	return nil
}

// GetProduct gets a product by ID
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*repository.Product, error) {
	return s.products.GetByID(ctx, id)
}

// GetProductByCode gets a product by its unique code
func (s *CatalogService) GetProductByCode(ctx context.Context, code string) (*repository.Product, error) {
	return s.products.GetByCode(ctx, code)
}

// ListProducts lists active products, optionally by department
func (s *CatalogService) ListProducts(ctx context.Context, departmentID string) ([]*repository.Product, error) {
	return s.products.List(ctx, departmentID)
}

// UpdateProduct updates a product's mutable fields
func (s *CatalogService) UpdateProduct(ctx context.Context, p *repository.Product) error {
	if p.MinStock.IsNegative() {
		return errors.Validation(map[string]string{"min_stock": "must not be negative"})
	}
	return s.products.Update(ctx, p)
}

// DeactivateProduct soft-deletes a product
func (s *CatalogService) DeactivateProduct(ctx context.Context, id string) error {
	return s.products.Deactivate(ctx, id)
}

// CreatePackaging creates a packaging type
func (s *CatalogService) CreatePackaging(ctx context.Context, p *repository.Packaging) error {
	if p.Name == "" {
		return errors.Validation(map[string]string{"name": "is required"})
	}
	return s.products.CreatePackaging(ctx, p)
}

// ListPackaging lists packaging types
func (s *CatalogService) ListPackaging(ctx context.Context) ([]*repository.Packaging, error) {
	return s.products.ListPackaging(ctx)
}

// MarkIngredient flags a product as usable in recipes
func (s *CatalogService) MarkIngredient(ctx context.Context, ing *repository.Ingredient) error {
	if _, err := s.products.GetByID(ctx, ing.ProductID); err != nil {
		return err
	}
	return s.products.MarkIngredient(ctx, ing)
}

// ListIngredients lists products flagged as ingredients
func (s *CatalogService) ListIngredients(ctx context.Context) ([]*repository.Product, error) {
	return s.products.ListIngredients(ctx)
}

// RecipeIngredientInput is one ingredient line of a new recipe
type RecipeIngredientInput struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity" validate:"required"`
}

// CreateRecipeInput describes a new recipe
type CreateRecipeInput struct {
	Name            string                  `json:"name" validate:"required"`
	OutputProductID string                  `json:"output_product_id" validate:"required,uuid"`
	OutputQuantity  decimal.Decimal         `json:"output_quantity" validate:"required"`
	Description     *string                 `json:"description,omitempty"`
	Ingredients     []RecipeIngredientInput `json:"ingredients" validate:"required,min=1,dive"`
}

// CreateRecipe creates a recipe with its ingredient lines
func (s *CatalogService) CreateRecipe(ctx context.Context, in CreateRecipeInput) (*repository.Recipe, error) {
	if !in.OutputQuantity.IsPositive() {
		return nil, errors.Validation(map[string]string{"output_quantity": "must be greater than zero"})
	}
	if len(in.Ingredients) == 0 {
		return nil, errors.Validation(map[string]string{"ingredients": "at least one ingredient is required"})
	}
	for _, ing := range in.Ingredients {
		if !ing.Quantity.IsPositive() {
			return nil, errors.Validation(map[string]string{"ingredients": "quantities must be greater than zero"})
		}
		if ing.ProductID == in.OutputProductID {
			return nil, errors.Validation(map[string]string{"ingredients": "recipe output cannot be its own ingredient"})
		}
	}

	recipe := &repository.Recipe{
		Name:            in.Name,
		OutputProductID: in.OutputProductID,
		OutputQuantity:  in.OutputQuantity,
		Description:     in.Description,
	}
	for _, ing := range in.Ingredients {
		recipe.Ingredients = append(recipe.Ingredients, &repository.RecipeIngredient{
			ProductID: ing.ProductID,
			Quantity:  ing.Quantity,
		})
	}
	if err := s.recipes.Create(ctx, recipe); err != nil {
		return nil, err
	}
	s.log.Info().Str("recipe_id", recipe.ID).Str("name", recipe.Name).Msg("recipe created")
	return recipe, nil
}

// GetRecipe gets a recipe with its ingredient lines
func (s *CatalogService) GetRecipe(ctx context.Context, id string) (*repository.Recipe, error) {
	return s.recipes.GetByID(ctx, id)
}

// ListRecipes lists active recipes
func (s *CatalogService) ListRecipes(ctx context.Context) ([]*repository.Recipe, error) {
	return s.recipes.List(ctx)
}

// DeactivateRecipe soft-deletes a recipe
func (s *CatalogService) DeactivateRecipe(ctx context.Context, id string) error {
	return s.recipes.Deactivate(ctx, id)
}
