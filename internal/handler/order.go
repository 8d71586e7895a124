package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-order-gate/internal/middleware"
)

// OrderHandler carries the two thin order routes that prove the gate end
// to end: a customer placing an order through the public pipeline and
// staff reading the queue through the authenticated one.  Everything
// interesting — sanitization, table-code validation, rate limiting,
// authentication, tenancy, permissions — happened in middleware by the
// time these run.
type OrderHandler struct{}

func NewOrderHandler() *OrderHandler { return &OrderHandler{} }

type placeOrderReq struct {
	TableCode           string `json:"tableCode"`
	CustomerName        string `json:"customerName"`
	SpecialInstructions string `json:"specialInstructions"`
}

// PlaceOrder creates an order in the resolved restaurant's schema.  The
// route is customer-facing: no credential required, input already
// sanitized and the table code already validated.
func (h *OrderHandler) PlaceOrder(c echo.Context) error {
	tc, ok := middleware.CurrentTenant(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "request carries no restaurant context", "error": "tenant_context_required"})
	}

	var req placeOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body", "error": "invalid_body"})
	}
	req.TableCode = strings.TrimSpace(req.TableCode)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := tc.Store.CreateOrder(ctx, req.TableCode, req.CustomerName, req.SpecialInstructions)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "create order failed", "error": "create_failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":         id,
		"restaurant": tc.Slug,
		"tableCode":  req.TableCode,
		"status":     "OPEN",
	})
}

// ListOrders returns the restaurant's unsettled orders for staff.  The
// permission gate already established read:orders; the isolation guard
// already pinned the request to the caller's own restaurant.
func (h *OrderHandler) ListOrders(c echo.Context) error {
	tc, ok := middleware.CurrentTenant(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "request carries no restaurant context", "error": "tenant_context_required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	orders, err := tc.Store.ListOpenOrders(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "list orders failed", "error": "query_failed"})
	}

	type orderPart struct {
		ID                  uint64    `json:"id"`
		TableCode           string    `json:"tableCode"`
		CustomerName        string    `json:"customerName"`
		SpecialInstructions string    `json:"specialInstructions"`
		Status              string    `json:"status"`
		CreatedAt           time.Time `json:"createdAt"`
	}
	out := make([]orderPart, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderPart{
			ID: o.ID, TableCode: o.TableCode, CustomerName: o.CustomerName,
			SpecialInstructions: o.SpecialInstructions, Status: o.Status, CreatedAt: o.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"restaurant": tc.Slug, "orders": out})
}
