package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-orders-service/internal/api/dto"
	"github.com/spec-kit/user-orders-service/internal/service"
	"github.com/spec-kit/user-orders-service/internal/validation"
	apperrors "github.com/spec-kit/user-orders-service/pkg/util/errorutil"
)

// UsersHandler exposes the user CRUD endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// Create handles POST /.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Validation Error", map[string]any{"body": "invalid JSON payload"})
	}
	if err := validation.CreateUser(req); err != nil {
		return err
	}

	user, err := h.users.Register(c.UserContext(), req.ToInput())
	if err != nil {
		return err
	}

	return c.Status(http.StatusOK).JSON(dto.NewSuccess("Successfully created user", dto.NewUserResponse(user)))
}

// List handles GET /.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	summaries, err := h.users.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewSuccess("Users fetched successfully!", summaries))
}

// Get handles GET /:userId.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return err
	}

	detail, err := h.users.Get(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewSuccess("User fetched successfully!", detail))
}

// Update handles PUT /:userId.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return err
	}

	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Validation Error", map[string]any{"body": "invalid JSON payload"})
	}
	if err := validation.UserPatch(req); err != nil {
		return err
	}

	updated, err := h.users.Change(c.UserContext(), userID, req.ToPatch())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewSuccess("User updated successfully!", dto.NewUserResponse(updated)))
}

// Delete handles DELETE /:userId.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return err
	}

	if err := h.users.Delete(c.UserContext(), userID); err != nil {
		return err
	}
	return c.JSON(dto.NewSuccess("User deleted successfully!", nil))
}

// parseUserID reads the :userId segment as an integer. Non-numeric input is
// a validation failure rather than a silent NaN-style coercion.
func parseUserID(c *fiber.Ctx) (int64, error) {
	raw := c.Params("userId")
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError("Validation Error", map[string]any{"userId": "userId must be an integer"})
	}
	return userID, nil
}
