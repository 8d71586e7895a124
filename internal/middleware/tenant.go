package middleware

// tenant.go binds a request to the restaurant it may touch.  Resolution
// finds the slug, loads the restaurant record and attaches the schema-
// scoped data handle; the isolation guard then makes sure no client-
// supplied restaurant id can steer the request across that binding.

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-order-gate/internal/httperr"
	"github.com/iliyamo/restaurant-order-gate/internal/model"
	"github.com/iliyamo/restaurant-order-gate/internal/tenantstore"
)

const (
	tenantKey     = "tenant_ctx"
	bodyFieldsKey = "body_fields"

	// slugHeader is the dedicated header customers' devices send when the
	// slug is not part of the route.
	slugHeader = "x-restaurant-slug"
)

// slugNames and tenantIDNames are the accepted spellings in params, query
// and body, checked in order.
var (
	slugNames     = []string{"slug", "restaurantSlug"}
	tenantIDNames = []string{"restaurantId", "restaurant_id"}
)

// TenantSource resolves a slug to its restaurant record.  Satisfied by
// repository.TenantRepo.
type TenantSource interface {
	GetBySlug(ctx context.Context, slug string) (model.Tenant, error)
}

// HandleProvider hands out the per-restaurant data handle.  Satisfied by
// tenantstore.Registry.
type HandleProvider interface {
	Handle(ctx context.Context, slug string) (*tenantstore.Store, error)
}

// TenantContext is the request-scoped binding attached after resolution.
type TenantContext struct {
	Slug   string
	Tenant model.Tenant
	Store  *tenantstore.Store
}

// CurrentTenant returns the restaurant binding for this request, if
// resolution populated one.
func CurrentTenant(c echo.Context) (*TenantContext, bool) {
	tc, ok := c.Get(tenantKey).(*TenantContext)
	return tc, ok
}

// ResolveTenant returns a middleware that extracts the restaurant slug
// from the request, loads the restaurant and attaches its data handle.
// Extraction precedence is route param, then query, then the dedicated
// header, then a JSON body field; the first non-empty value wins.  A
// request carrying no slug at all passes through untouched — routes with
// no restaurant concept simply skip resolution.
func ResolveTenant(tenants TenantSource, handles HandleProvider) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			slug := extractSlug(c)
			if slug == "" {
				return next(c)
			}

			t, err := tenants.GetBySlug(c.Request().Context(), slug)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return httperr.NotFound("tenant_not_found", "unknown restaurant").Write(c)
				}
				return httperr.Internal("tenant_lookup_failed", "restaurant lookup failed").Write(c)
			}

			store, err := handles.Handle(c.Request().Context(), t.Slug)
			if err != nil {
				return httperr.Internal("tenant_handle_failed", "restaurant storage unavailable").Write(c)
			}

			c.Set(tenantKey, &TenantContext{Slug: t.Slug, Tenant: t, Store: store})
			return next(c)
		}
	}
}

// RequireTenant fails a route that demands restaurant context which
// resolution did not populate.
func RequireTenant() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := CurrentTenant(c); !ok {
				return httperr.Validation("tenant_context_required", "request carries no restaurant context").Write(c)
			}
			return next(c)
		}
	}
}

// EnforceTenantIsolation compares the Identity's bound restaurant id with
// any restaurant id the client supplied in params, query or body.  When
// both are present and differ the request dies with 403.  The Identity is
// always the source of truth; this guard exists so a forged id in the
// payload can never widen what a credential may touch.
func EnforceTenantIsolation() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident, ok := CurrentIdentity(c)
			if !ok || ident.TenantID == 0 {
				return next(c)
			}
			// The slug in the route is a tenant identifier too: a resolved
			// restaurant that is not the credential's restaurant is exactly
			// the leak this guard exists to stop.
			if tc, ok := CurrentTenant(c); ok && tc.Tenant.ID != ident.TenantID {
				e := httperr.Authorization("cross_tenant_access", "request addresses another restaurant's resources")
				e.UserRole = string(ident.Role)
				return e.Write(c)
			}
			claimed := extractClaimedTenantID(c)
			if claimed != 0 && claimed != ident.TenantID {
				e := httperr.Authorization("cross_tenant_access", "request addresses another restaurant's resources")
				e.UserRole = string(ident.Role)
				return e.Write(c)
			}
			return next(c)
		}
	}
}

// extractSlug applies the documented precedence: path, query, header, body.
func extractSlug(c echo.Context) string {
	for _, name := range slugNames {
		if v := strings.TrimSpace(c.Param(name)); v != "" {
			return v
		}
	}
	for _, name := range slugNames {
		if v := strings.TrimSpace(c.QueryParam(name)); v != "" {
			return v
		}
	}
	if v := strings.TrimSpace(c.Request().Header.Get(slugHeader)); v != "" {
		return v
	}
	for _, name := range slugNames {
		if v, ok := bodyField(c, name).(string); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

// extractClaimedTenantID looks for a client-supplied restaurant id in
// params, query and body, coercing it to an integer.  0 means absent.
func extractClaimedTenantID(c echo.Context) uint64 {
	for _, name := range tenantIDNames {
		if v := strings.TrimSpace(c.Param(name)); v != "" {
			return parseID(v)
		}
	}
	for _, name := range tenantIDNames {
		if v := strings.TrimSpace(c.QueryParam(name)); v != "" {
			return parseID(v)
		}
	}
	for _, name := range tenantIDNames {
		switch v := bodyField(c, name).(type) {
		case float64:
			if v > 0 {
				return uint64(v)
			}
		case string:
			if id := parseID(v); id != 0 {
				return id
			}
		}
	}
	return 0
}

func parseID(s string) uint64 {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// bodyField returns the named top-level field of a JSON request body, or
// nil.  The body is read once per request, cached in the context, and the
// reader is restored so handlers can still bind it.  Non-JSON and
// malformed bodies simply yield no fields.
func bodyField(c echo.Context, name string) interface{} {
	fields, ok := c.Get(bodyFieldsKey).(map[string]interface{})
	if !ok {
		fields = map[string]interface{}{}
		req := c.Request()
		if req.Body != nil && strings.Contains(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
			raw, err := io.ReadAll(req.Body)
			if err == nil {
				req.Body = io.NopCloser(bytes.NewReader(raw))
				_ = json.Unmarshal(raw, &fields)
			}
		}
		c.Set(bodyFieldsKey, fields)
	}
	return fields[name]
}
