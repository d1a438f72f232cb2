package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/courier-chat/courier/pkg/observability"
)

// TokenField is the query/form field accepted as a fallback token location
// for clients that cannot set headers.
const TokenField = "_token"

// Middleware resolves a session token into a request-scoped identity.
//
// It looks for a bearer token in the Authorization header, falling back to
// the _token query field. If a token is present and validates, the identity
// is attached to the request context. If the token is absent or invalid the
// request continues anonymously: this middleware never rejects a request.
// Rejection is the guards' job, after route handlers know which resource is
// being touched.
func Middleware(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := extractToken(r)
			if raw == "" {
				observability.TokenValidationsTotal.WithLabelValues("missing").Inc()
				next.ServeHTTP(w, r)
				return
			}

			claim, err := tokens.Validate(raw)
			if err != nil {
				// Invalid is treated identically to absent.
				observability.TokenValidationsTotal.WithLabelValues("invalid").Inc()
				slog.Debug("token validation failed",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				next.ServeHTTP(w, r)
				return
			}

			observability.TokenValidationsTotal.WithLabelValues("valid").Inc()
			ctx := SetIdentity(r.Context(), &Identity{Username: claim.Username})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken pulls the raw token out of the conventional locations.
// The Authorization header wins over the _token query field.
func extractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if tok, ok := strings.CutPrefix(header, "Bearer "); ok {
			return tok
		}
		return ""
	}
	return r.URL.Query().Get(TokenField)
}
