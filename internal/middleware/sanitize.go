package middleware

// sanitize.go cleans customer-supplied text before it reaches a handler
// and validates customer-facing table codes.  Sanitization never blocks a
// request: a body this middleware cannot make sense of is left for the
// handler's own binding to reject, because malformed optional input must
// not break an ordering flow.

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-order-gate/internal/httperr"
)

// tableCodePattern is the only accepted shape for customer-facing table
// identifiers.
var tableCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// scriptPattern matches script-tag-shaped substrings in free text,
// including unclosed openings left by sloppy copy-paste.
var scriptPattern = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>|<script[^>]*>`)

// fieldRule describes how one customer-supplied field is cleaned.
type fieldRule struct {
	name     string
	maxLen   int
	freeText bool // free text additionally gets script tags stripped
}

// customerFieldRules is the fixed set of fields the sanitizer touches.
// Everything else in the body passes through untouched.
var customerFieldRules = []fieldRule{
	{name: "customerName", maxLen: 100},
	{name: "customerPhone", maxLen: 20},
	{name: "specialInstructions", maxLen: 500, freeText: true},
	{name: "comment", maxLen: 500, freeText: true},
}

// SanitizeCustomerInput returns a middleware that trims, truncates and
// de-scripts the known customer text fields of a JSON body, rewriting the
// body in place for downstream binding.  All failures are absorbed and
// logged, never surfaced.
func SanitizeCustomerInput() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Body == nil || !strings.Contains(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
				return next(c)
			}

			raw, err := io.ReadAll(req.Body)
			if err != nil {
				log.Printf("sanitize: body read failed: %v", err)
				return next(c)
			}
			// Restore the original body first so a failure below leaves the
			// request intact.
			req.Body = io.NopCloser(bytes.NewReader(raw))

			var fields map[string]interface{}
			if err := json.Unmarshal(raw, &fields); err != nil {
				return next(c)
			}

			changed := false
			for _, rule := range customerFieldRules {
				v, ok := fields[rule.name].(string)
				if !ok {
					continue
				}
				clean := sanitizeField(v, rule)
				if clean != v {
					fields[rule.name] = clean
					changed = true
				}
			}
			if changed {
				cleanBody, err := json.Marshal(fields)
				if err != nil {
					log.Printf("sanitize: marshal failed: %v", err)
					return next(c)
				}
				req.Body = io.NopCloser(bytes.NewReader(cleanBody))
				req.ContentLength = int64(len(cleanBody))
				// Invalidate any cached body-field view from earlier middleware.
				c.Set(bodyFieldsKey, nil)
			}
			return next(c)
		}
	}
}

// sanitizeField applies one rule: strip scripts from free text, trim, then
// truncate to the field's maximum.
func sanitizeField(v string, rule fieldRule) string {
	if rule.freeText {
		v = scriptPattern.ReplaceAllString(v, "")
	}
	v = strings.TrimSpace(v)
	if r := []rune(v); rule.maxLen > 0 && len(r) > rule.maxLen {
		v = string(r[:rule.maxLen])
	}
	return v
}

// ValidateTableCode returns a middleware that rejects requests whose table
// identifier (route param or body field of the given name) does not match
// [A-Za-z0-9_-]+.  Unlike sanitization this failure is fatal: a malformed
// table code cannot be repaired into a meaningful one.
func ValidateTableCode(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			code := strings.TrimSpace(c.Param(param))
			if code == "" {
				switch v := bodyField(c, param).(type) {
				case string:
					code = strings.TrimSpace(v)
				case float64:
					code = strconv.FormatFloat(v, 'f', -1, 64)
				}
			}
			if code == "" || !tableCodePattern.MatchString(code) {
				return httperr.Validation("invalid_table_code", "parameter "+param+" must match [A-Za-z0-9_-]+").Write(c)
			}
			return next(c)
		}
	}
}
