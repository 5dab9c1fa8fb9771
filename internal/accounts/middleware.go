package accounts

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/trylog/trylog/internal/shared"
	"github.com/trylog/trylog/internal/token"
)

// BearerAuth resolves the caller identity from the Authorization header and
// stores it in the request context. Requests without a valid live token
// proceed as Anonymous; handlers that require authentication reject them via
// the service layer.
func BearerAuth(issuer *token.Issuer, sessions SessionRegistry, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ident := shared.Anonymous

			if raw, ok := bearerToken(r); ok {
				if claims, err := issuer.Parse(raw); err == nil {
					live, err := sessions.Active(ctx, claims.RegisteredClaims.Subject, claims.RegisteredClaims.ID)
					if err != nil {
						logger.Warn("session lookup", slog.Any("error", err))
					} else if live {
						ident = shared.Identity{Email: claims.RegisteredClaims.Subject, Authenticated: true}
					}
				}
			}

			next.ServeHTTP(w, r.WithContext(shared.ContextWithIdentity(ctx, ident)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return header[len(prefix):], true
}
