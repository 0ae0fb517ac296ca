package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/hlog"

	"nexus/internal/domain"
	"nexus/internal/identity"
)

type sessionKey struct{}

// SessionResolver turns a bearer token into a live session.
type SessionResolver interface {
	CurrentSession(ctx context.Context, token string) (*identity.Session, error)
}

// Authenticate requires a bearer token naming a live session and stores the
// session in the request context.
func Authenticate(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "missing authorization")
				return
			}
			sess, err := resolver.CurrentSession(r.Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, context.Canceled):
					return
				case errors.Is(err, domain.ErrUnauthorized):
					writeError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired session")
				default:
					hlog.FromRequest(r).Error().Err(err).Msg("session lookup failed")
					writeError(w, http.StatusServiceUnavailable, "unavailable", "session store unavailable")
				}
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), sess)))
		})
	}
}

// RequireRole rejects sessions whose role is not one of roles. Services check
// roles again; this only short-circuits obvious mistakes.
func RequireRole(roles ...domain.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := SessionFromContext(r.Context())
			if sess == nil {
				writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
				return
			}
			for _, role := range roles {
				if sess.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, "forbidden", "role not allowed")
		})
	}
}

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func ContextWithSession(ctx context.Context, sess *identity.Session) context.Context {
	if sess == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, sess)
}

func SessionFromContext(ctx context.Context) *identity.Session {
	if v, ok := ctx.Value(sessionKey{}).(*identity.Session); ok {
		return v
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":{"code":"` + code + `","message":"` + message + `"}}`))
}
