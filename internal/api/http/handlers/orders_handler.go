package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-orders-service/internal/api/dto"
	"github.com/spec-kit/user-orders-service/internal/service"
	"github.com/spec-kit/user-orders-service/internal/validation"
	apperrors "github.com/spec-kit/user-orders-service/pkg/util/errorutil"
)

// OrdersHandler exposes the per-user order endpoints.
type OrdersHandler struct {
	users *service.UserService
}

// NewOrdersHandler constructs handler.
func NewOrdersHandler(userService *service.UserService) *OrdersHandler {
	return &OrdersHandler{users: userService}
}

// Add handles PUT /:userId/orders.
func (h *OrdersHandler) Add(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return err
	}

	var req dto.OrderPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Validation Error", map[string]any{"body": "invalid JSON payload"})
	}
	if err := validation.Order(req); err != nil {
		return err
	}

	if err := h.users.PlaceOrder(c.UserContext(), userID, req.ToOrder()); err != nil {
		return err
	}
	return c.JSON(dto.NewSuccess("Order created successfully!", nil))
}

// List handles GET /:userId/orders.
func (h *OrdersHandler) List(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return err
	}

	orders, err := h.users.Orders(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewSuccess("Orders fetched successfully!", dto.OrdersResponse{Orders: orders}))
}

// TotalPrice handles GET /:userId/orders/total-price. A user without orders
// yields a null totalPrice, not an error.
func (h *OrdersHandler) TotalPrice(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return err
	}

	total, err := h.users.OrderTotal(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewSuccess("Total price calculated successfully!", dto.OrderTotalResponse{TotalPrice: total}))
}
