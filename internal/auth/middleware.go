package auth

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/mehmetcc/libdesk/internal/httpx"
	"github.com/mehmetcc/libdesk/internal/person"
	"github.com/mehmetcc/libdesk/internal/token"
	"go.uber.org/zap"
)

type ctxKey struct{}

// StaffRoles may operate the desk.
var StaffRoles = []person.Role{person.RoleAdmin, person.RoleLibrarian}

// Middleware requires a valid bearer token whose role is one of roles.
func Middleware(tokens token.TokenService, logger *zap.Logger, roles ...person.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearer(r)
			if !ok {
				httpx.WriteMessage(w, http.StatusUnauthorized, httpx.ErrUnauthorized, ErrMissingToken.Error())
				return
			}

			claims, err := tokens.ValidateAccess(raw)
			if err != nil {
				logger.Debug("rejected access token", zap.Error(err))
				httpx.WriteMessage(w, http.StatusUnauthorized, httpx.ErrUnauthorized, "invalid or expired token")
				return
			}

			if len(roles) > 0 && !slices.Contains(roles, claims.Role) {
				logger.Debug("role not allowed",
					zap.String("subject", claims.Subject),
					zap.String("role", claims.Role.String()),
				)
				httpx.WriteMessage(w, http.StatusForbidden, httpx.ErrForbidden, ErrForbidden.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, rest, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	rest = strings.TrimSpace(rest)
	return rest, rest != ""
}

func WithClaims(ctx context.Context, c *token.Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// ClaimsFrom returns the operator claims stored by Middleware.
func ClaimsFrom(ctx context.Context) (*token.Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(*token.Claims)
	return c, ok
}
