package database

import (
	"strings"

	"github.com/lib/pq"

	"github.com/foodtrace/foodtrace-backend/pkg/errors"
)

// IsSerializationFailure reports whether err was caused by Postgres
// aborting a transaction due to a concurrent conflicting write
// (serialization_failure 40001 or deadlock_detected 40P01). The check
// matches both the raw pq error and its mapped AppError form, since
// repositories convert errors through MapPQError before returning.
func IsSerializationFailure(err error) bool {
	if errors.Is(err, errors.ErrConcurrencyConflict) {
		return true
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "40001" || pqErr.Code == "40P01"
}

// MapPQError converts a PostgreSQL error to an AppError with meaningful messages.
// Returns nil if the error is not a pq.Error or the code is not handled.
func MapPQError(err error) *errors.AppError {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}

	switch pqErr.Code {
	// Check constraint violation (23514)
	case "23514":
		return mapCheckConstraint(pqErr)

	// Unique constraint violation (23505)
	case "23505":
		return errors.Conflict(formatConstraintMessage(pqErr))

	// Foreign key violation (23503): a referenced row does not exist
	case "23503":
		return errors.NotFound("referenced record")

	// Not null violation (23502)
	case "23502":
		col := pqErr.Column
		if col == "" {
			col = "required field"
		}
		return errors.Validation(map[string]string{
			col: "must not be empty",
		})

	// Serialization failure / deadlock (40001, 40P01)
	case "40001", "40P01":
		return errors.ConcurrencyConflict()

	default:
		return nil
	}
}

// mapCheckConstraint maps specific CHECK constraint names to user-friendly messages.
func mapCheckConstraint(pqErr *pq.Error) *errors.AppError {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "quantity_positive"):
		return errors.Validation(map[string]string{
			"quantity": "must be greater than zero",
		})

	case strings.Contains(constraint, "price_non_negative"):
		return errors.Validation(map[string]string{
			"unit_price": "must not be negative",
		})

	case strings.Contains(constraint, "transaction_type_valid"):
		return errors.Validation(map[string]string{
			"transaction_type": "must be one of: receipt, sale, production_consumption, production_output, adjustment, expiry_writeoff",
		})

	default:
		return errors.BadRequest("data validation failed: " + constraint)
	}
}

// formatConstraintMessage creates a user-friendly message for unique constraint violations.
func formatConstraintMessage(pqErr *pq.Error) string {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "product_code"):
		return "a product with this code already exists"
	case strings.Contains(constraint, "email"):
		return "a user with this email already exists"
	case strings.Contains(constraint, "recipe_name"):
		return "a recipe with this name already exists"
	default:
		return "a record with these values already exists"
	}
}
