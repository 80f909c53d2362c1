package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bechdu/buyback-backend/api/responses"
	pkgauth "github.com/bechdu/buyback-backend/pkg/auth"
	"github.com/bechdu/buyback-backend/pkg/config"
	pkgerrors "github.com/bechdu/buyback-backend/pkg/errors"
	"github.com/bechdu/buyback-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the claims,
// including the device the token was issued for. Downstream authorization
// compares that claim against the stored binding, so a token from a superseded
// login stays dead even when the request spoofs the current User-Agent.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthenticated, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthenticated, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				code := pkgerrors.CodeUnauthenticated
				if errors.Is(err, jwt.ErrTokenExpired) {
					code = pkgerrors.CodeSessionExpired
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(code, err, "invalid token"))
				return
			}

			ctx := WithPhone(r.Context(), claims.Phone)
			ctx = WithRole(ctx, string(claims.Role))
			ctx = WithDevice(ctx, claims.LoggedInDevice)

			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"phone":      claims.Phone,
					"actor_role": string(claims.Role),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
