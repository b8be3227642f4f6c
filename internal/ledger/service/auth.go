package service

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/foodtrace/foodtrace-backend/internal/ledger/repository"
	"github.com/foodtrace/foodtrace-backend/pkg/auth"
	"github.com/foodtrace/foodtrace-backend/pkg/errors"
	"github.com/foodtrace/foodtrace-backend/pkg/logger"
)

// AuthService authenticates operators and issues tokens
type AuthService struct {
	users *repository.UserRepository
	jwt   *auth.Manager
	log   *logger.Logger
}

// NewAuthService creates the auth service
func NewAuthService(users *repository.UserRepository, jwt *auth.Manager, log *logger.Logger) *AuthService {
	return &AuthService{users: users, jwt: jwt, log: log.WithComponent("auth")}
}

// LoginInput carries login credentials
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is a successful login response
type LoginResult struct {
	Token *auth.Token      `json:"token"`
	User  *repository.User `json:"user"`
}

// Login verifies credentials and issues a token. Unknown emails and wrong
// passwords produce the same error so the response does not reveal which.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.InvalidCredentials()
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		s.log.Warn().Str("email", in.Email).Msg("failed login attempt")
		return nil, errors.InvalidCredentials()
	}

	token, err := s.jwt.GenerateToken(&auth.UserInfo{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("user logged in")
	return &LoginResult{Token: token, User: user}, nil
}

// RegisterInput describes a new operator account
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role,omitempty"`
}

// Register creates an operator account
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*repository.User, error) {
	if len(in.Password) < 8 {
		return nil, errors.Validation(map[string]string{"password": "must be at least 8 characters"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &repository.User{
		Email:        in.Email,
		PasswordHash: string(hash),
		Name:         in.Name,
		Role:         in.Role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("user registered")
	return user, nil
}
