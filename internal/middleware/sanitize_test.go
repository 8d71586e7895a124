package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runSanitize pushes a JSON body through SanitizeCustomerInput and returns
// the body as the downstream handler saw it.
func runSanitize(t *testing.T, body string) map[string]interface{} {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen map[string]interface{}
	h := SanitizeCustomerInput()(func(c echo.Context) error {
		raw, err := io.ReadAll(c.Request().Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &seen))
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return seen
}

func TestSanitize_StripsScriptTags(t *testing.T) {
	seen := runSanitize(t, `{"specialInstructions":"<script>alert(1)</script>hello"}`)
	assert.Equal(t, "hello", seen["specialInstructions"])
}

func TestSanitize_StripsUnclosedScriptTag(t *testing.T) {
	seen := runSanitize(t, `{"comment":"<script src=x>no sauce"}`)
	assert.Equal(t, "no sauce", seen["comment"])
}

func TestSanitize_TruncatesLongName(t *testing.T) {
	long := strings.Repeat("a", 600)
	seen := runSanitize(t, `{"customerName":"`+long+`"}`)
	assert.Len(t, seen["customerName"], 100)
}

func TestSanitize_TrimsWhitespace(t *testing.T) {
	seen := runSanitize(t, `{"customerName":"  Ada Lovelace  "}`)
	assert.Equal(t, "Ada Lovelace", seen["customerName"])
}

func TestSanitize_LeavesUnknownFieldsAlone(t *testing.T) {
	seen := runSanitize(t, `{"tableCode":"t1","quantity":3,"customerName":"ok"}`)
	assert.Equal(t, "t1", seen["tableCode"])
	assert.Equal(t, float64(3), seen["quantity"])
}

func TestSanitize_MalformedBodyPassesThrough(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("not json"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen string
	h := SanitizeCustomerInput()(func(c echo.Context) error {
		raw, err := io.ReadAll(c.Request().Body)
		require.NoError(t, err)
		seen = string(raw)
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "not json", seen, "original body must reach the handler untouched")
}

func runTableCode(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	h := ValidateTableCode("tableCode")(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec
}

func TestValidateTableCode(t *testing.T) {
	valid := []string{"t1", "table-1", "T_2", "42"}
	for _, code := range valid {
		rec := runTableCode(t, `{"tableCode":"`+code+`"}`)
		assert.Equal(t, http.StatusOK, rec.Code, "code %q should pass", code)
	}

	invalid := []string{"t 1", "t1;drop", "<b>t</b>", ""}
	for _, code := range invalid {
		rec := runTableCode(t, `{"tableCode":"`+code+`"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "code %q should be rejected", code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "invalid_table_code", body["error"])
	}
}

func TestValidateTableCode_FromRouteParam(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("tableCode")
	c.SetParamValues("table-9")
	h := ValidateTableCode("tableCode")(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}
