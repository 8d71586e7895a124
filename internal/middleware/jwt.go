package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"context"
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
	"github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers

	"github.com/iliyamo/restaurant-order-gate/internal/auth"
	"github.com/iliyamo/restaurant-order-gate/internal/httperr"
	"github.com/iliyamo/restaurant-order-gate/internal/model"
)

// identityKey is the context key the resolved Identity is stored under.
const identityKey = "identity"

// TenantDirectory is the one lookup authentication needs: resolving a
// restaurant human code to its record for owner-by-code credentials.
// Satisfied by repository.TenantRepo; faked in tests.
type TenantDirectory interface {
	GetByHumanCode(ctx context.Context, code string) (model.Tenant, error)
}

// Authenticate returns a middleware that validates a Bearer access token,
// derives the caller's Identity from its claim shape and stores it in the
// request context.  The provided secret must match the one used when
// issuing tokens.  Handlers and later middleware read the result via
// CurrentIdentity.
func Authenticate(secret string, tenants TenantDirectory) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident, herr := authenticate(c, secret, tenants)
			if herr != nil {
				return herr.Write(c)
			}
			c.Set(identityKey, ident)
			return next(c)
		}
	}
}

// OptionalAuthenticate runs the same verification but swallows every
// failure: the request simply proceeds anonymously.  Used only on
// customer-facing routes that must stay reachable without a session.
func OptionalAuthenticate(secret string, tenants TenantDirectory) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if ident, herr := authenticate(c, secret, tenants); herr == nil {
				c.Set(identityKey, ident)
			}
			return next(c)
		}
	}
}

// CurrentIdentity returns the Identity resolved for this request, if any.
func CurrentIdentity(c echo.Context) (auth.Identity, bool) {
	ident, ok := c.Get(identityKey).(auth.Identity)
	return ident, ok
}

// authenticate performs the full verification pipeline: bearer extraction,
// signature and expiry checks, then the claim-shape branch.  It is shared
// by the mandatory and optional variants.
func authenticate(c echo.Context, secret string, tenants TenantDirectory) (auth.Identity, *httperr.Error) {
	// A valid header starts with "Bearer " followed by the JWT.  Anything
	// else counts as an absent credential, not an invalid one.
	header := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return auth.Identity{}, httperr.Authentication("missing_credential", "authorization bearer token required")
	}
	raw := strings.TrimPrefix(header, "Bearer ")

	// Parse with HS256 and our secret; reject any other signing method so
	// an attacker cannot downgrade to "none" or swap algorithms.
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, echo.ErrUnauthorized
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return auth.Identity{}, httperr.Authentication("expired", "token expired")
		}
		return auth.Identity{}, httperr.Authentication("invalid", "invalid token")
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return auth.Identity{}, httperr.Authentication("invalid", "invalid token")
	}

	claims := auth.DecodeClaims(mc)
	switch claims.Shape {
	case auth.ShapeOwnerByCode:
		// Resolve the human re-entry code to the restaurant it names.
		// This is the only store access on the authentication path.
		t, err := tenants.GetByHumanCode(c.Request().Context(), claims.TenantCode)
		if err != nil {
			return auth.Identity{}, httperr.Authorization("tenant_not_found", "no restaurant for this code")
		}
		return auth.Identity{
			SubjectID: claims.SubjectID,
			Kind:      auth.SubjectOwner,
			Role:      auth.RoleAdmin,
			TenantID:  t.ID,
		}, nil

	case auth.ShapeOwnerByID:
		// The owner's own id doubles as its restaurant id.
		return auth.Identity{
			SubjectID: claims.SubjectID,
			Kind:      auth.SubjectOwner,
			Role:      auth.RoleAdmin,
			TenantID:  claims.SubjectID,
		}, nil

	case auth.ShapeStaff:
		// A staff credential must be bound to a restaurant.  Absence is a
		// hard failure, never a default.
		if claims.TenantID == 0 {
			return auth.Identity{}, httperr.Authorization("missing_tenant_binding", "staff token lacks a restaurant binding")
		}
		return auth.Identity{
			SubjectID: claims.SubjectID,
			Kind:      auth.SubjectStaff,
			Role:      claims.Role,
			TenantID:  claims.TenantID,
		}, nil

	default:
		return auth.Identity{}, httperr.Authorization("unrecognized_claim_shape", "token claims match no known credential shape")
	}
}
