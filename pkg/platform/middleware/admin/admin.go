// Package admin guards operator-only routes. Policy configuration changes
// which flows get paused for real clients, so the surface requires a signed
// admin token rather than a shared header value.
package admin

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"flowguard/pkg/requestcontext"
)

const roleAdmin = "admin"

// RequireAdminToken verifies an HS256 bearer token with role=admin.
func RequireAdminToken(signingSecret string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			tokenString := bearerToken(r)
			if tokenString == "" {
				deny(ctx, w, logger, "missing bearer token")
				return
			}

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(signingSecret), nil
			})
			if err != nil || !token.Valid {
				deny(ctx, w, logger, "invalid admin token")
				return
			}
			if role, _ := claims["role"].(string); role != roleAdmin {
				deny(ctx, w, logger, "token lacks admin role")
				return
			}

			if sub, _ := claims["sub"].(string); sub != "" {
				r = r.WithContext(requestcontext.WithActor(ctx, sub))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func deny(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, reason string) {
	if logger != nil {
		logger.WarnContext(ctx, "admin access denied",
			"reason", reason,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"admin token required"}`))
}
