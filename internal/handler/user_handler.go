package handler

import (
	"go-stock-tracker/internal/service"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetUsers returns all users
// GET /api/users
func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	users, err := h.userService.GetAllUsers()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": users, "count": len(users)})
}

// GetUser returns a single user by ID
// GET /api/users/:id
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	userID, err := paramUUID(c, "id", "user")
	if err != nil {
		return respondError(c, err)
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, user)
}

// UpdateUser changes role or active flag
// PATCH /api/users/:id
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	userID, err := paramUUID(c, "id", "user")
	if err != nil {
		return respondError(c, err)
	}

	var req service.UpdateUserRequest
	if err := decodeStrict(c, &req); err != nil {
		return respondError(c, err)
	}

	user, err := h.userService.UpdateUser(userID, &req, actor(c))
	if err != nil {
		return respondError(c, err)
	}
	return okMessage(c, fiber.StatusOK, "User updated successfully", user)
}

// DeleteUser deactivates the account
// DELETE /api/users/:id
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	userID, err := paramUUID(c, "id", "user")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.userService.DeactivateUser(userID, actor(c)); err != nil {
		return respondError(c, err)
	}
	return okMessage(c, fiber.StatusOK, "User deactivated successfully", nil)
}
