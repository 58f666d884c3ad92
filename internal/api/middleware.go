package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/splitledger/splitledger/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// memberIDKey is the context key for the authenticated member ID.
	memberIDKey contextKey = "member_id"
	// stepUpKey is the context key for the step-up verification claim.
	stepUpKey contextKey = "step_up"
)

// MemberID extracts the acting member's ID from the context.
// Returns empty string if not found.
func MemberID(ctx context.Context) string {
	id, _ := ctx.Value(memberIDKey).(string)
	return id
}

// StepUpVerified reports whether the request carried a step-up token.
func StepUpVerified(ctx context.Context) bool {
	ok, _ := ctx.Value(stepUpKey).(bool)
	return ok
}

// RequireAuth validates the bearer token and adds the member identity to the
// request context. Requests without a valid token get 401.
func RequireAuth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeUnauthorized(w, auth.ErrMissingToken)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				writeUnauthorized(w, auth.ErrInvalidToken)
				return
			}

			claims, err := jwtManager.Validate(parts[1])
			if err != nil {
				writeUnauthorized(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), memberIDKey, claims.MemberID)
			ctx = context.WithValue(ctx, stepUpKey, claims.StepUp)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusUnauthorized, errorResponse{
		Code:    "AUTH_001",
		Message: err.Error(),
	})
}
