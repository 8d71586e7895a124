package httperr

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, e *Error) (int, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, e.Write(c))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestWrite_Envelope(t *testing.T) {
	code, body := render(t, Authentication("expired", "token has expired"))
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "expired", body["error"])
	assert.Equal(t, "token has expired", body["message"])
	assert.NotContains(t, body, "userRole")
}

func TestWrite_UserRole(t *testing.T) {
	e := Authorization("role_not_allowed", "role may not do this")
	e.UserRole = "KITCHEN"
	code, body := render(t, e)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "KITCHEN", body["userRole"])
}

func TestConstructorStatuses(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, NotFound("tenant_not_found", "").Status)
	assert.Equal(t, http.StatusBadRequest, Validation("invalid_table_code", "").Status)
	assert.Equal(t, http.StatusInternalServerError, Internal("provisioning_failed", "").Status)

	rl := RateLimited("slow down")
	assert.Equal(t, http.StatusTooManyRequests, rl.Status)
	assert.Equal(t, "too_many_requests", rl.Code)
}

func TestErrorString(t *testing.T) {
	e := Validation("invalid_table_code", "must match pattern")
	assert.Equal(t, "400 invalid_table_code: must match pattern", e.Error())
}
