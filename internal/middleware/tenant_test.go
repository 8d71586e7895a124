package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-order-gate/internal/auth"
	"github.com/iliyamo/restaurant-order-gate/internal/model"
	"github.com/iliyamo/restaurant-order-gate/internal/tenantstore"
)

// fakeTenants resolves one slug and records what it was asked for.
type fakeTenants struct {
	tenant model.Tenant
	asked  []string
}

func (f *fakeTenants) GetBySlug(_ context.Context, slug string) (model.Tenant, error) {
	f.asked = append(f.asked, slug)
	if slug == f.tenant.Slug {
		return f.tenant, nil
	}
	return model.Tenant{}, sql.ErrNoRows
}

// fakeHandles hands out an empty store and counts constructions.
type fakeHandles struct {
	calls int
}

func (f *fakeHandles) Handle(_ context.Context, _ string) (*tenantstore.Store, error) {
	f.calls++
	return &tenantstore.Store{}, nil
}

func resolveRequest(t *testing.T, mw echo.MiddlewareFunc, build func(req *http.Request, c echo.Context)) (*httptest.ResponseRecorder, echo.Context, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if build != nil {
		build(req, c)
	}

	resolved := false
	h := mw(func(c echo.Context) error {
		_, resolved = CurrentTenant(c)
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec, c, resolved
}

func TestResolveTenant_NoSlugPassesThrough(t *testing.T) {
	src := &fakeTenants{tenant: model.Tenant{ID: 7, Slug: "acme"}}
	mw := ResolveTenant(src, &fakeHandles{})
	rec, _, resolved := resolveRequest(t, mw, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, resolved, "routes without a tenant concept skip resolution")
	assert.Empty(t, src.asked)
}

func TestResolveTenant_FromPathParam(t *testing.T) {
	src := &fakeTenants{tenant: model.Tenant{ID: 7, Slug: "acme"}}
	mw := ResolveTenant(src, &fakeHandles{})
	rec, c, resolved := resolveRequest(t, mw, func(req *http.Request, c echo.Context) {
		c.SetParamNames("restaurantSlug")
		c.SetParamValues("acme")
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resolved)
	tc, ok := CurrentTenant(c)
	require.True(t, ok)
	assert.Equal(t, uint64(7), tc.Tenant.ID)
	assert.Equal(t, "acme", tc.Slug)
}

func TestResolveTenant_PathBeatsQueryAndHeader(t *testing.T) {
	src := &fakeTenants{tenant: model.Tenant{ID: 7, Slug: "acme"}}
	mw := ResolveTenant(src, &fakeHandles{})
	_, _, _ = resolveRequest(t, mw, func(req *http.Request, c echo.Context) {
		c.SetParamNames("slug")
		c.SetParamValues("acme")
		req.URL.RawQuery = "slug=other"
		req.Header.Set(slugHeader, "another")
	})
	require.Equal(t, []string{"acme"}, src.asked)
}

func TestResolveTenant_QueryBeatsHeader(t *testing.T) {
	src := &fakeTenants{tenant: model.Tenant{ID: 7, Slug: "acme"}}
	mw := ResolveTenant(src, &fakeHandles{})
	_, _, _ = resolveRequest(t, mw, func(req *http.Request, c echo.Context) {
		req.URL.RawQuery = "restaurantSlug=acme"
		req.Header.Set(slugHeader, "another")
	})
	require.Equal(t, []string{"acme"}, src.asked)
}

func TestResolveTenant_FromHeader(t *testing.T) {
	src := &fakeTenants{tenant: model.Tenant{ID: 7, Slug: "acme"}}
	mw := ResolveTenant(src, &fakeHandles{})
	_, _, resolved := resolveRequest(t, mw, func(req *http.Request, c echo.Context) {
		req.Header.Set(slugHeader, "acme")
	})
	assert.True(t, resolved)
}

func TestResolveTenant_FromBodyField(t *testing.T) {
	src := &fakeTenants{tenant: model.Tenant{ID: 7, Slug: "acme"}}
	mw := ResolveTenant(src, &fakeHandles{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"restaurantSlug":"acme","note":"hi"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	bodySeen := ""
	h := mw(func(c echo.Context) error {
		// The body must still be readable by the handler after the peek.
		var m map[string]string
		require.NoError(t, json.NewDecoder(c.Request().Body).Decode(&m))
		bodySeen = m["note"]
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"acme"}, src.asked)
	assert.Equal(t, "hi", bodySeen)
}

func TestResolveTenant_UnknownSlugIs404(t *testing.T) {
	src := &fakeTenants{tenant: model.Tenant{ID: 7, Slug: "acme"}}
	mw := ResolveTenant(src, &fakeHandles{})
	rec, _, resolved := resolveRequest(t, mw, func(req *http.Request, c echo.Context) {
		c.SetParamNames("slug")
		c.SetParamValues("ghost")
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, resolved)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "tenant_not_found", body["error"])
}

func TestRequireTenant(t *testing.T) {
	rec, _, _ := resolveRequest(t, RequireTenant(), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec2 := httptest.NewRecorder()
	c := e.NewContext(req, rec2)
	c.Set(tenantKey, &TenantContext{Slug: "acme"})
	h := RequireTenant()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec2.Code)
}

// isolationCase runs EnforceTenantIsolation with identity tenant 7 against
// a request built by the caller.
func isolationCase(t *testing.T, build func(req *http.Request, c echo.Context)) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(identityKey, auth.Identity{SubjectID: 1, Role: auth.RoleCaptain, TenantID: 7})
	if build != nil {
		build(c.Request(), c)
	}
	h := EnforceTenantIsolation()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	require.NoError(t, h(c))
	return rec
}

func TestEnforceTenantIsolation_BodyMismatch(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"restaurantId":9}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(identityKey, auth.Identity{SubjectID: 1, Role: auth.RoleCaptain, TenantID: 7})

	h := EnforceTenantIsolation()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "cross_tenant_access", body["error"])
	assert.Equal(t, "CAPTAIN", body["userRole"])
}

func TestEnforceTenantIsolation_BodyMatchPasses(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"restaurantId":7}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(identityKey, auth.Identity{SubjectID: 1, Role: auth.RoleCaptain, TenantID: 7})

	h := EnforceTenantIsolation()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEnforceTenantIsolation_AbsentIDPasses(t *testing.T) {
	rec := isolationCase(t, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEnforceTenantIsolation_QueryMismatch(t *testing.T) {
	rec := isolationCase(t, func(req *http.Request, c echo.Context) {
		req.URL.RawQuery = "restaurant_id=9"
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestEnforceTenantIsolation_ResolvedTenantMismatch(t *testing.T) {
	rec := isolationCase(t, func(req *http.Request, c echo.Context) {
		c.Set(tenantKey, &TenantContext{Slug: "other", Tenant: model.Tenant{ID: 9, Slug: "other"}})
	})
	assert.Equal(t, http.StatusForbidden, rec.Code, "a slug addressing another restaurant is a cross-tenant attempt")
}

func TestEnforceTenantIsolation_ResolvedTenantMatchPasses(t *testing.T) {
	rec := isolationCase(t, func(req *http.Request, c echo.Context) {
		c.Set(tenantKey, &TenantContext{Slug: "mine", Tenant: model.Tenant{ID: 7, Slug: "mine"}})
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEnforceTenantIsolation_NoIdentityPasses(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	h := EnforceTenantIsolation()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}
