package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/japanime/backend/internal/auth"
)

type key string

const UserIDKey key = "user_id"

// GetUserID returns the authenticated user id stored by JWTMiddleware.
func GetUserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserIDKey).(int64)
	return id, ok
}

// JWTMiddleware rejects requests without a valid, unexpired access token and
// stores the token's user id in the request context. Refresh tokens are not
// accepted here.
func JWTMiddleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, "missing authorization header")
				return
			}

			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := auth.ParseToken(tokenStr, secret)
			if err != nil {
				unauthorized(w, "invalid token")
				return
			}

			if claims.TokenType != auth.TypeAccess {
				unauthorized(w, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
