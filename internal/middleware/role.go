package middleware // middleware provides shared request processing for handlers

import (
	"log"

	"github.com/labstack/echo/v4" // echo provides middleware chaining and context

	"github.com/iliyamo/restaurant-order-gate/internal/auth"
	"github.com/iliyamo/restaurant-order-gate/internal/httperr"
)

// RequireRole returns a middleware that enforces that the authenticated
// caller holds one of the specified roles.  It assumes Authenticate ran
// earlier in the chain; a request without an Identity is treated as
// unauthenticated, not as a role mismatch.  Denials are logged with the
// attempted route and the resolved role for audit.
func RequireRole(roles ...auth.Role) echo.MiddlewareFunc {
	// Build a set of allowed roles for constant‑time lookups.
	allowed := make(map[auth.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident, ok := CurrentIdentity(c)
			if !ok {
				return httperr.Authentication("missing_credential", "authentication required").Write(c)
			}
			if !allowed[ident.Role] {
				log.Printf("authz: role %s denied on %s %s", ident.Role, c.Request().Method, c.Path())
				e := httperr.Authorization("role_not_allowed", "role may not access this endpoint")
				e.UserRole = string(ident.Role)
				return e.Write(c)
			}
			return next(c)
		}
	}
}

// RequirePermission returns a middleware that enforces a single permission
// against the caller's role via the static matrix.  Unknown roles carry no
// permissions, so the check is deny-by-default.
func RequirePermission(perm auth.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident, ok := CurrentIdentity(c)
			if !ok {
				return httperr.Authentication("missing_credential", "authentication required").Write(c)
			}
			if !auth.HasPermission(ident.Role, perm) {
				log.Printf("authz: role %s lacks %s on %s %s", ident.Role, perm, c.Request().Method, c.Path())
				e := httperr.Authorization("missing_permission", "role lacks permission "+string(perm))
				e.UserRole = string(ident.Role)
				return e.Write(c)
			}
			return next(c)
		}
	}
}
