package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/restaurant-order-gate/internal/auth"
	"github.com/iliyamo/restaurant-order-gate/internal/config"
	"github.com/iliyamo/restaurant-order-gate/internal/handler"
	"github.com/iliyamo/restaurant-order-gate/internal/middleware"
	"github.com/iliyamo/restaurant-order-gate/internal/ratelimit"
	"github.com/iliyamo/restaurant-order-gate/internal/repository"
	"github.com/iliyamo/restaurant-order-gate/internal/tenantstore"
)

// Deps bundles everything route registration needs.  The request pipeline
// is assembled here and only here: authentication before tenant
// resolution, resolution before the permission and isolation gates, gates
// before the handler — short-circuiting at the first failure.
type Deps struct {
	Cfg       config.Config
	RateCfg   config.RateLimitConfig
	RateStore ratelimit.Store
	Tenants   *repository.TenantRepo
	Handles   *tenantstore.Registry

	Auth   *handler.AuthHandler
	Tenant *handler.TenantHandler
	Orders *handler.OrderHandler
}

// RegisterRoutes registers routes that run outside every middleware chain.
// Currently that is only the health check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterGate wires the full API surface.
func RegisterGate(e *echo.Echo, d Deps) {
	limiter := middleware.NewRateLimiter(d.RateCfg, d.RateStore)
	resolve := middleware.ResolveTenant(d.Tenants, d.Handles)
	authn := middleware.Authenticate(d.Cfg.JWTSecret, d.Tenants)
	optAuthn := middleware.OptionalAuthenticate(d.Cfg.JWTSecret, d.Tenants)

	// Unauthenticated surfaces: signup and the three login flows.  All sit
	// behind the abuse guard since anyone on the network can reach them.
	pub := e.Group("/v1", limiter)
	pub.POST("/restaurants", d.Tenant.Signup)
	pub.POST("/auth/owner/login", d.Auth.OwnerLogin)
	pub.POST("/auth/owner/code-login", d.Auth.CodeLogin)
	pub.POST("/auth/staff/login", d.Auth.StaffLogin)

	// Public restaurant profile: tenant resolution only, no credential.
	pub.GET("/restaurants/:slug", d.Tenant.Profile, resolve, middleware.RequireTenant())

	// Customer ordering: reachable without a session but sanitized,
	// table-code-checked and optionally identified.
	pub.POST("/r/:restaurantSlug/orders", d.Orders.PlaceOrder,
		middleware.SanitizeCustomerInput(),
		optAuthn,
		resolve,
		middleware.RequireTenant(),
		middleware.ValidateTableCode("tableCode"),
	)

	// Staff surface: the full pipeline.  Authentication, then resolution,
	// then the isolation and permission gates.
	staff := e.Group("/v1/r/:restaurantSlug", authn, resolve, middleware.RequireTenant(), middleware.EnforceTenantIsolation())
	staff.GET("/orders", d.Orders.ListOrders, middleware.RequirePermission(auth.PermReadOrders))

	// Owner-only maintenance: rerun the idempotent provisioning pipeline.
	owner := e.Group("/v1/restaurants/:slug", authn, resolve, middleware.RequireTenant(), middleware.EnforceTenantIsolation())
	owner.POST("/provision", d.Tenant.Reprovision, middleware.RequireRole(auth.RoleAdmin))
}
