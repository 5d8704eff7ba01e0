package middleware

import (
	"context"
	"net/http"
	"strings"

	"log/slog"

	"github.com/divyanshu-1/RoadX/internal/domain"
)

type ctxKey string

const callerKey ctxKey = "caller_id"

// TokenResolver resolves an API bearer token to the calling user.
type TokenResolver interface {
	GetByToken(ctx context.Context, token string) (*domain.User, error)
}

// Authenticate requires a valid "Authorization: Bearer <token>" header and
// stores the resolved caller id in the request context.
func Authenticate(resolver TokenResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthenticated"}`))
				return
			}

			user, err := resolver.GetByToken(r.Context(), token)
			if err != nil {
				logger.Warn("token rejected", slog.String("remote", r.RemoteAddr), slog.Any("error", err))
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthenticated"}`))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithCallerID(r.Context(), user.ID)))
		})
	}
}

// WithCallerID returns a context carrying the authenticated caller id.
func WithCallerID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, callerKey, id)
}

// CallerID returns the authenticated caller id, or "" when the request was
// not authenticated.
func CallerID(ctx context.Context) string {
	id, _ := ctx.Value(callerKey).(string)
	return id
}
