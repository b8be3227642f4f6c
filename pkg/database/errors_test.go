package database

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodtrace/foodtrace-backend/pkg/errors"
)

func TestIsSerializationFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"serialization failure", &pq.Error{Code: "40001"}, true},
		{"deadlock detected", &pq.Error{Code: "40P01"}, true},
		{"unique violation", &pq.Error{Code: "23505"}, false},
		{"plain error", assert.AnError, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSerializationFailure(tt.err))
		})
	}
}

func TestIsSerializationFailure_MappedErrorStaysRetryable(t *testing.T) {
	// Repositories pass errors through MapPQError before returning, so the
	// retry loop sees the mapped form, not the raw pq error.
	for _, code := range []pq.ErrorCode{"40001", "40P01"} {
		raw := &pq.Error{Code: code}
		require.True(t, IsSerializationFailure(raw))

		mapped := MapPQError(raw)
		require.NotNil(t, mapped)
		assert.Equal(t, "CONCURRENCY_CONFLICT", mapped.Code)
		assert.True(t, IsSerializationFailure(mapped),
			"mapped serialization failure must remain retryable")
	}
}

func TestMapPQError(t *testing.T) {
	t.Run("unique violation", func(t *testing.T) {
		mapped := MapPQError(&pq.Error{Code: "23505", Constraint: "users_email_key"})
		require.NotNil(t, mapped)
		assert.Equal(t, "CONFLICT", mapped.Code)
		assert.Contains(t, mapped.Message, "email")
	})

	t.Run("foreign key violation", func(t *testing.T) {
		mapped := MapPQError(&pq.Error{Code: "23503"})
		require.NotNil(t, mapped)
		assert.True(t, errors.Is(mapped, errors.ErrNotFound))
	})

	t.Run("transaction type check constraint", func(t *testing.T) {
		mapped := MapPQError(&pq.Error{
			Code:       "23514",
			Constraint: "inventory_transactions_transaction_type_valid",
		})
		require.NotNil(t, mapped)
		assert.Equal(t, "VALIDATION_ERROR", mapped.Code)
		assert.Contains(t, mapped.Details["transaction_type"], "production_consumption")
		assert.Contains(t, mapped.Details["transaction_type"], "production_output")
	})

	t.Run("unhandled code", func(t *testing.T) {
		assert.Nil(t, MapPQError(&pq.Error{Code: "42601"}))
	})

	t.Run("not a pq error", func(t *testing.T) {
		assert.Nil(t, MapPQError(assert.AnError))
	})
}
