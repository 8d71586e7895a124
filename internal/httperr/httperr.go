// Package httperr defines the error taxonomy shared by middleware and
// handlers, and the JSON envelope every failure is written in.  Each error
// carries a machine-readable code in `error` and a human-readable `message`;
// role-check failures additionally echo the resolved role in `userRole`.
package httperr

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Error is a request-terminating failure with a fixed HTTP status.
type Error struct {
	Status   int    // HTTP status code
	Code     string // stable machine-readable code, e.g. "cross_tenant_access"
	Message  string // human-readable explanation
	UserRole string // resolved role, set on role/permission denials only
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

// Write renders the standard envelope to the client and terminates the
// request.  Middleware returns Write(...) directly in place of next(c).
func (e *Error) Write(c echo.Context) error {
	body := echo.Map{"message": e.Message, "error": e.Code}
	if e.UserRole != "" {
		body["userRole"] = e.UserRole
	}
	return c.JSON(e.Status, body)
}

// Authentication marks a missing, malformed, invalid or expired
// credential.  Always 401, never retried.
func Authentication(code, message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Code: code, Message: message}
}

// Authorization marks an authenticated caller that may not perform the
// attempted action.  Always 403.
func Authorization(code, message string) *Error {
	return &Error{Status: http.StatusForbidden, Code: code, Message: message}
}

// NotFound marks a lookup miss that is visible to the client, currently
// only unknown restaurants.
func NotFound(code, message string) *Error {
	return &Error{Status: http.StatusNotFound, Code: code, Message: message}
}

// Validation marks malformed client input, e.g. a bad table code or a
// route that demands restaurant context which resolution did not populate.
func Validation(code, message string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: code, Message: message}
}

// RateLimited is the one error class a client is expected to retry, after
// backing off for the remainder of the window.
func RateLimited(message string) *Error {
	return &Error{Status: http.StatusTooManyRequests, Code: "too_many_requests", Message: message}
}

// Internal covers provisioning and other unexpected failures.
func Internal(code, message string) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: code, Message: message}
}
