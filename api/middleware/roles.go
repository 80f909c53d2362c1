package middleware

import (
	"net/http"

	"github.com/bechdu/buyback-backend/api/responses"
	"github.com/bechdu/buyback-backend/pkg/enums"
	pkgerrors "github.com/bechdu/buyback-backend/pkg/errors"
	"github.com/bechdu/buyback-backend/pkg/logger"
)

// RequireRole rejects requests whose token does not carry one of the allowed roles.
func RequireRole(logg *logger.Logger, roles ...enums.PrincipalRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := RoleFromContext(r.Context())
			for _, role := range roles {
				if got == string(role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, ""))
		})
	}
}
