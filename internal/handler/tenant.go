package handler

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-order-gate/internal/config"
	"github.com/iliyamo/restaurant-order-gate/internal/middleware"
	"github.com/iliyamo/restaurant-order-gate/internal/queue"
	"github.com/iliyamo/restaurant-order-gate/internal/repository"
	qp "github.com/iliyamo/restaurant-order-gate/internal/service"
	"github.com/iliyamo/restaurant-order-gate/internal/tenantstore"
	"github.com/iliyamo/restaurant-order-gate/internal/utils"
)

// TenantHandler owns restaurant signup and the provisioning entry points.
// Provisioning runs out-of-band at signup, never per request; the retry
// endpoint exists because provisioning steps are idempotent and partial
// runs are meant to be repeated, not repaired by hand.
type TenantHandler struct {
	Cfg         config.Config
	Tenants     *repository.TenantRepo
	Provisioner *tenantstore.Provisioner
}

func NewTenantHandler(cfg config.Config, t *repository.TenantRepo, p *tenantstore.Provisioner) *TenantHandler {
	return &TenantHandler{Cfg: cfg, Tenants: t, Provisioner: p}
}

type signupReq struct {
	Slug        string `json:"slug"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
}

type signupResp struct {
	ID          uint64    `json:"id"`
	Slug        string    `json:"slug"`
	HumanCode   string    `json:"humanCode"`
	DisplayName string    `json:"displayName"`
	Access      tokenPart `json:"access"`
}

// Signup registers a restaurant, provisions its isolated schema and hands
// the owner their first credential plus the human re-entry code.
func (h *TenantHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body", "error": "invalid_body"})
	}
	req.Slug = strings.ToLower(strings.TrimSpace(req.Slug))
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if req.Slug == "" || req.DisplayName == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "slug/displayName/password required", "error": "missing_fields"})
	}
	if !tenantstore.ValidSlug(req.Slug) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "slug must be lowercase letters, digits and hyphens", "error": "invalid_slug"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	code := newHumanCode()
	id, err := h.Tenants.Create(ctx, req.Slug, code, req.DisplayName, req.Password, h.Cfg.BcryptCost)
	if err == repository.ErrCodeExists {
		// Astronomically unlikely collision; one regeneration is plenty.
		code = newHumanCode()
		id, err = h.Tenants.Create(ctx, req.Slug, code, req.DisplayName, req.Password, h.Cfg.BcryptCost)
	}
	if err != nil {
		if err == repository.ErrSlugExists {
			return c.JSON(http.StatusConflict, echo.Map{"message": "slug already registered", "error": "slug_exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "create restaurant failed", "error": "create_failed"})
	}

	if err := h.Provisioner.InitializeTenant(ctx, req.Slug); err != nil {
		// The restaurant record exists; the owner can retry provisioning.
		log.Printf("signup: provisioning %s failed: %v", req.Slug, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": err.Error(), "error": "provisioning_failed"})
	}

	// Lifecycle event for downstream consumers; a broker outage must not
	// fail a signup that already provisioned successfully.
	_ = qp.PublishTenantProvisioned(ctx, queue.TenantProvisionedEvent{
		TenantID:      id,
		Slug:          req.Slug,
		DisplayName:   req.DisplayName,
		SeededAccount: tenantstore.SeedStaffUsername,
		ProvisionedAt: time.Now().UTC().Format(time.RFC3339),
	})

	access, err := utils.NewOwnerToken(h.Cfg.JWTSecret, id, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "token signing failed", "error": "issue_failed"})
	}
	return c.JSON(http.StatusCreated, signupResp{
		ID:          id,
		Slug:        req.Slug,
		HumanCode:   code,
		DisplayName: req.DisplayName,
		Access:      tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Reprovision re-runs the provisioning pipeline for the caller's own
// restaurant.  Owner-only; every step is idempotent so this is safe to
// invoke after a partial signup-time failure.
func (h *TenantHandler) Reprovision(c echo.Context) error {
	tc, ok := middleware.CurrentTenant(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "request carries no restaurant context", "error": "tenant_context_required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	if err := h.Provisioner.InitializeTenant(ctx, tc.Slug); err != nil {
		log.Printf("reprovision: %s failed: %v", tc.Slug, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": err.Error(), "error": "provisioning_failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"slug": tc.Slug, "schema": tenantstore.SchemaName(tc.Slug), "status": "provisioned"})
}

// Profile returns the public view of a restaurant.  No credential needed;
// resolution alone decides whether the restaurant exists.
func (h *TenantHandler) Profile(c echo.Context) error {
	tc, ok := middleware.CurrentTenant(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "request carries no restaurant context", "error": "tenant_context_required"})
	}
	t := tc.Tenant
	return c.JSON(http.StatusOK, echo.Map{
		"slug":        t.Slug,
		"displayName": t.DisplayName,
		"isActive":    t.IsActive,
	})
}

// newHumanCode derives an 8-character uppercase re-entry code.
func newHumanCode() string {
	return strings.ToUpper(uuid.NewString()[:8])
}
