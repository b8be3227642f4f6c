package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/foodtrace/foodtrace-backend/internal/ledger/repository"
	"github.com/foodtrace/foodtrace-backend/internal/ledger/service"
	"github.com/foodtrace/foodtrace-backend/pkg/auth"
	"github.com/foodtrace/foodtrace-backend/pkg/config"
	"github.com/foodtrace/foodtrace-backend/pkg/database"
	"github.com/foodtrace/foodtrace-backend/pkg/errors"
	"github.com/foodtrace/foodtrace-backend/pkg/logger"
	"github.com/foodtrace/foodtrace-backend/pkg/testutil"
)

func newAuthService(t *testing.T) (*service.AuthService, *testutil.MockDB) {
	mockDB := testutil.NewMockDB(t)
	log := logger.New("test", "test")
	users := repository.NewUserRepository(database.NewFromSqlx(mockDB.DB, log))
	jwtManager := auth.NewManager(&config.JWTConfig{
		Secret:       "test-secret",
		AccessExpiry: 15 * time.Minute,
		Issuer:       "test",
	})
	return service.NewAuthService(users, jwtManager, log), mockDB
}

func TestAuthService_Login(t *testing.T) {
	svc, mockDB := newAuthService(t)
	defer mockDB.Close()
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	mockDB.Mock.ExpectQuery("SELECT \\* FROM users WHERE email").
		WithArgs("chef@foodtrace.test").
		WillReturnRows(testutil.MockRows(
			"id", "email", "password_hash", "name", "role", "is_active", "created_at",
		).AddRow(
			"b7e4a9a0-1111-4a66-9a5e-000000000001", "chef@foodtrace.test",
			string(hash), "Chef", "staff", true, time.Now(),
		))

	result, err := svc.Login(ctx, service.LoginInput{
		Email:    "chef@foodtrace.test",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token.AccessToken)
	assert.Equal(t, "chef@foodtrace.test", result.User.Email)
	mockDB.ExpectationsWereMet(t)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, mockDB := newAuthService(t)
	defer mockDB.Close()
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	mockDB.Mock.ExpectQuery("SELECT \\* FROM users WHERE email").
		WithArgs("chef@foodtrace.test").
		WillReturnRows(testutil.MockRows(
			"id", "email", "password_hash", "name", "role", "is_active", "created_at",
		).AddRow(
			"b7e4a9a0-1111-4a66-9a5e-000000000001", "chef@foodtrace.test",
			string(hash), "Chef", "staff", true, time.Now(),
		))

	_, err = svc.Login(ctx, service.LoginInput{
		Email:    "chef@foodtrace.test",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidCredentials))
	mockDB.ExpectationsWereMet(t)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc, mockDB := newAuthService(t)
	defer mockDB.Close()
	ctx := context.Background()

	mockDB.Mock.ExpectQuery("SELECT \\* FROM users WHERE email").
		WithArgs("nobody@foodtrace.test").
		WillReturnRows(testutil.MockRows("id"))

	_, err := svc.Login(ctx, service.LoginInput{
		Email:    "nobody@foodtrace.test",
		Password: "whatever",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidCredentials))
	mockDB.ExpectationsWereMet(t)
}
