package middleware

import (
	"context"
	"net/http"

	"safetyshare/internal/domain"

	"github.com/google/uuid"
)

type ctxKey string

const (
	userIDKey ctxKey = "user_id"
	roleKey   ctxKey = "role"
)

// Identity reads the caller identity set by the upstream auth gateway.
// X-User-ID must be a UUID; X-User-Role defaults to driver when absent.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("X-User-ID")
		if raw == "" {
			http.Error(w, "missing X-User-ID header", http.StatusUnauthorized)
			return
		}
		userID, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "invalid X-User-ID header", http.StatusUnauthorized)
			return
		}

		role := domain.Role(r.Header.Get("X-User-Role"))
		switch role {
		case domain.RoleDriver, domain.RoleTrustedUser, domain.RoleAdmin:
		default:
			role = domain.RoleDriver
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		ctx = context.WithValue(ctx, roleKey, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFromContext returns the identity placed by Identity. The bool is false
// on routes that skipped the middleware.
func UserFromContext(ctx context.Context) (uuid.UUID, domain.Role, bool) {
	userID, ok := ctx.Value(userIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, "", false
	}
	role, ok := ctx.Value(roleKey).(domain.Role)
	if !ok {
		return userID, domain.RoleDriver, true
	}
	return userID, role, true
}
