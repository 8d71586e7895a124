package middleware

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-order-gate/internal/config"
	"github.com/iliyamo/restaurant-order-gate/internal/httperr"
	"github.com/iliyamo/restaurant-order-gate/internal/ratelimit"
)

// NewRateLimiter returns the fixed-window abuse guard for public and
// customer-facing routes.  Counters are keyed by caller network address
// and owned by the injected store, not by this middleware, so the guard
// stays testable and a Redis-backed store can be swapped in for multi-
// instance deployments.  Store errors fail open: losing the limiter must
// not take ordering down with it.
func NewRateLimiter(cfg config.RateLimitConfig, store ratelimit.Store) echo.MiddlewareFunc {
	if !cfg.Enabled || store == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}
			key := cfg.Prefix + ":ip:" + ip

			dec, err := store.Hit(c.Request().Context(), key, cfg.Threshold, cfg.Window)
			if err != nil {
				if cfg.Debug {
					c.Logger().Warnf("[ratelimit] store error for key=%s: %v", key, err)
				}
				return next(c)
			}

			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(dec.Limit))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.Itoa(dec.Remaining))

			if !dec.Allowed {
				secs := int(math.Ceil(dec.RetryAfter.Seconds()))
				if secs < 0 {
					secs = 0
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
				if cfg.Debug {
					c.Logger().Infof("[ratelimit] block key=%s retry=%ds", key, secs)
				}
				return httperr.RateLimited("rate limit exceeded, retry after the window elapses").Write(c)
			}
			return next(c)
		}
	}
}
