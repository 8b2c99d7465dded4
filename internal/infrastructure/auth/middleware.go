package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rupayx/wallet-service/internal/infrastructure/redis"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type contextKey string

const (
	subjectKey contextKey = "subject"
	roleKey    contextKey = "role"
)

// SubjectFromContext returns the authenticated user email (or admin
// username) stored by the middleware.
func SubjectFromContext(ctx context.Context) (string, bool) {
	sub, ok := ctx.Value(subjectKey).(string)
	return sub, ok
}

func RoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(roleKey).(string)
	return role, ok
}

// TokenKey is the Redis key under which the currently valid token for a
// subject is stored. Overwriting it revokes earlier sessions.
func TokenKey(role, subject string) string {
	return fmt.Sprintf("%s:%s:token", role, subject)
}

// Middleware validates the bearer token, checks it against the Redis token
// store and requires the given role claim.
func Middleware(redisClient redis.RedisClient, jwtSecret, requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "authorization header missing", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "invalid authorization header", http.StatusUnauthorized)
				return
			}

			tokenStr := parts[1]
			token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Method.Alg())
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				http.Error(w, "invalid token claims", http.StatusUnauthorized)
				return
			}

			subject, ok := claims["sub"].(string)
			if !ok || subject == "" {
				http.Error(w, "invalid subject in token", http.StatusUnauthorized)
				return
			}
			role, _ := claims["role"].(string)
			if role != requiredRole {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			storedToken, err := redisClient.Get(r.Context(), TokenKey(role, subject))
			if err != nil || storedToken != tokenStr {
				slog.Error("invalid or revoked token", "subject", subject, "error", err)
				http.Error(w, "invalid or revoked token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey, subject)
			ctx = context.WithValue(ctx, roleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
