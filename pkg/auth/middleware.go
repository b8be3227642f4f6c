package auth

import (
	"net/http"
	"strings"

	"github.com/foodtrace/foodtrace-backend/pkg/actor"
	"github.com/foodtrace/foodtrace-backend/pkg/errors"
	"github.com/foodtrace/foodtrace-backend/pkg/httputil"
)

// Middleware validates the Authorization header and attaches the acting
// user to the request context. Mutating ledger routes require it so every
// transaction carries audit attribution.
func Middleware(manager *Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				httputil.Error(w, errors.Unauthorized("missing authorization header"))
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				httputil.Error(w, errors.Unauthorized("invalid authorization header"))
				return
			}

			claims, err := manager.ValidateToken(parts[1])
			if err != nil {
				httputil.Error(w, err)
				return
			}

			ctx := actor.WithActor(r.Context(), &actor.Actor{
				ID:    claims.UserID,
				Name:  claims.Name,
				Email: claims.Email,
				Role:  claims.Role,
			})

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
