// ABOUTME: HTTP middleware for JWT authentication on API endpoints
// ABOUTME: Extracts JWT from Authorization header and adds the principal to context

package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lotus-studio/bookingd/internal/store"
)

// UserResolver maps a verified token subject (an email) to a full user record.
type UserResolver interface {
	GetUserByEmail(ctx context.Context, email string) (*store.User, error)
}

// extractBearerToken extracts a bearer token from the Authorization header.
// Returns the token and an error message (empty if successful).
func extractBearerToken(authHeader string) (string, string) {
	if authHeader == "" {
		return "", "missing authorization header"
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", "invalid authorization header format"
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", "empty token"
	}
	return token, ""
}

// buildAuthContext creates an AuthContext from a resolved user.
func buildAuthContext(user *store.User) *AuthContext {
	return &AuthContext{
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Admin:     user.Admin,
	}
}

// Middleware creates an HTTP middleware that attempts JWT authentication and
// always lets the request continue. It makes exactly one authentication
// attempt per request: extract the bearer token, validate it, resolve the
// subject against the user store, and attach an AuthContext on success. Any
// failure along the way (missing header, bad token, unknown subject, store
// fault) leaves the request anonymous rather than aborting the pipeline;
// whether anonymous requests are acceptable is the access policy's concern.
func Middleware(users UserResolver, verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, errMsg := extractBearerToken(r.Header.Get("Authorization"))
			if errMsg != "" {
				next.ServeHTTP(w, r) // Continue as anonymous
				return
			}

			if !verifier.Validate(token) {
				logAuthFailure(logger, r, "invalid token")
				next.ServeHTTP(w, r)
				return
			}

			// Validate returned true, so the subject is extractable.
			subject, err := verifier.Verify(token)
			if err != nil {
				logAuthFailure(logger, r, "subject extraction failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetUserByEmail(r.Context(), subject)
			if err != nil {
				// Unknown subject or store fault: the token holder is not a
				// current principal, so the request proceeds anonymous.
				logAuthFailure(logger, r, "principal not resolvable", "subject", subject)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAuth(r.Context(), buildAuthContext(user))))
		})
	}
}

// logAuthFailure logs an authentication failure with structured context.
func logAuthFailure(logger *slog.Logger, r *http.Request, reason string, attrs ...any) {
	if logger == nil {
		return
	}
	baseAttrs := []any{"reason", reason, "remote_addr", r.RemoteAddr, "path", r.URL.Path}
	baseAttrs = append(baseAttrs, attrs...)
	logger.Warn("auth failure", baseAttrs...)
}

// AccessRule maps a path prefix (optionally restricted to a method) to
// whether it may be reached anonymously.
type AccessRule struct {
	Method     string // empty matches any method
	PathPrefix string
	Public     bool
}

// AccessPolicy is an explicit route-level authentication policy evaluated
// before handler dispatch. Rules are checked in order; the first match wins.
// Paths without a matching rule require authentication.
type AccessPolicy struct {
	rules []AccessRule
}

// NewAccessPolicy builds a policy from the given rules.
func NewAccessPolicy(rules []AccessRule) *AccessPolicy {
	return &AccessPolicy{rules: rules}
}

// IsPublic reports whether the request may proceed without a principal.
func (p *AccessPolicy) IsPublic(r *http.Request) bool {
	for _, rule := range p.rules {
		if rule.Method != "" && rule.Method != r.Method {
			continue
		}
		if strings.HasPrefix(r.URL.Path, rule.PathPrefix) {
			return rule.Public
		}
	}
	return false
}

// Enforce creates an HTTP middleware that rejects unauthenticated requests to
// non-public routes with 401. Must be used after Middleware.
func (p *AccessPolicy) Enforce(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !p.IsPublic(r) && FromContext(r.Context()) == nil {
			writeUnauthenticated(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth wraps a handler and rejects requests without a principal,
// independent of the route-level policy.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if FromContext(r.Context()) == nil {
			writeUnauthenticated(w)
			return
		}
		next(w, r)
	}
}

func writeUnauthenticated(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"not authenticated"}`))
}
