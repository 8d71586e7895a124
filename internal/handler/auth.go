package handler

import (
	"context"      // provides context with cancellation for DB calls
	"database/sql" // SQL database interactions
	"net/http"     // HTTP status codes and primitives
	"strings"      // string manipulation utilities
	"time"         // timeouts for DB calls

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/iliyamo/restaurant-order-gate/internal/auth"
	"github.com/iliyamo/restaurant-order-gate/internal/config"
	"github.com/iliyamo/restaurant-order-gate/internal/repository"
	"github.com/iliyamo/restaurant-order-gate/internal/tenantstore"
	"github.com/iliyamo/restaurant-order-gate/internal/utils"
)

// AuthHandler bundles dependencies for the credential-issuing endpoints.
// Issuance policy lives here, deliberately outside the verification core:
// owner signup and owner re-auth issue owner-by-id tokens, re-entry with
// the human code issues owner-by-code tokens, and staff login issues
// staff tokens bound to their restaurant.
type AuthHandler struct {
	Cfg     config.Config
	Tenants *repository.TenantRepo
	Handles *tenantstore.Registry
}

func NewAuthHandler(cfg config.Config, t *repository.TenantRepo, h *tenantstore.Registry) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Tenants: t, Handles: h}
}

// ----- DTOs -----

type ownerLoginReq struct {
	Slug     string `json:"slug"`
	Password string `json:"password"`
}
type codeLoginReq struct {
	HumanCode string `json:"humanCode"`
	Password  string `json:"password"`
}
type staffLoginReq struct {
	Slug     string `json:"slug"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type loginResp struct {
	Restaurant string    `json:"restaurant"`
	Role       string    `json:"role"`
	Access     tokenPart `json:"access"`
}

// OwnerLogin authenticates a restaurant owner by slug and password and
// issues an owner-by-id credential: the restaurant id doubles as the
// subject id.
func (h *AuthHandler) OwnerLogin(c echo.Context) error {
	var req ownerLoginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body", "error": "invalid_body"})
	}
	req.Slug = strings.ToLower(strings.TrimSpace(req.Slug))
	if req.Slug == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "slug/password required", "error": "missing_fields"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Tenants.GetBySlug(ctx, req.Slug)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid credentials", "error": "invalid_credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "lookup failed", "error": "query_failed"})
	}
	if !utils.VerifyPassword(t.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid credentials", "error": "invalid_credentials"})
	}

	access, err := utils.NewOwnerToken(h.Cfg.JWTSecret, t.ID, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "token signing failed", "error": "issue_failed"})
	}
	return c.JSON(http.StatusOK, loginResp{
		Restaurant: t.Slug,
		Role:       string(auth.RoleAdmin),
		Access:     tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// CodeLogin authenticates an owner by the human re-entry code and issues
// an owner-by-code credential.  The token carries the code itself, not the
// restaurant id; verification resolves it on every request.
func (h *AuthHandler) CodeLogin(c echo.Context) error {
	var req codeLoginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body", "error": "invalid_body"})
	}
	req.HumanCode = strings.TrimSpace(req.HumanCode)
	if req.HumanCode == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "humanCode/password required", "error": "missing_fields"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Tenants.GetByHumanCode(ctx, req.HumanCode)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid credentials", "error": "invalid_credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "lookup failed", "error": "query_failed"})
	}
	if !utils.VerifyPassword(t.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid credentials", "error": "invalid_credentials"})
	}

	access, err := utils.NewOwnerCodeToken(h.Cfg.JWTSecret, t.ID, t.HumanCode, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "token signing failed", "error": "issue_failed"})
	}
	return c.JSON(http.StatusOK, loginResp{
		Restaurant: t.Slug,
		Role:       string(auth.RoleAdmin),
		Access:     tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// StaffLogin authenticates a staff member against their restaurant's own
// schema and issues a staff credential embedding the restaurant id.
func (h *AuthHandler) StaffLogin(c echo.Context) error {
	var req staffLoginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body", "error": "invalid_body"})
	}
	req.Slug = strings.ToLower(strings.TrimSpace(req.Slug))
	if req.Slug == "" || req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "slug/username/password required", "error": "missing_fields"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Tenants.GetBySlug(ctx, req.Slug)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid credentials", "error": "invalid_credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "lookup failed", "error": "query_failed"})
	}

	store, err := h.Handles.Handle(ctx, t.Slug)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "restaurant storage unavailable", "error": "tenant_handle_failed"})
	}
	st, err := store.GetStaffByUsername(ctx, req.Username)
	if err != nil || !st.IsActive || !utils.VerifyPassword(st.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid credentials", "error": "invalid_credentials"})
	}
	role, ok := auth.ParseRole(st.Role)
	if !ok || !auth.IsStaffRole(role) {
		// An account row carrying a role outside the closed set cannot be
		// mapped onto a credential.
		return c.JSON(http.StatusForbidden, echo.Map{"message": "account role not recognized", "error": "role_not_allowed"})
	}

	access, err := utils.NewStaffToken(h.Cfg.JWTSecret, st.ID, role, t.ID, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "token signing failed", "error": "issue_failed"})
	}
	return c.JSON(http.StatusOK, loginResp{
		Restaurant: t.Slug,
		Role:       string(role),
		Access:     tokenPart{Token: access.Token, Expires: access.Exp},
	})
}
