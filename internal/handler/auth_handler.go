package handler

import (
	"go-stock-tracker/internal/middleware"
	"go-stock-tracker/internal/service"
	"go-stock-tracker/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a regular user account and logs it in.
// POST /api/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req service.RegisterRequest
	if err := decodeStrict(c, &req); err != nil {
		return respondError(c, err)
	}
	response, err := h.authService.Register(&req)
	if err != nil {
		return respondError(c, err)
	}
	return okMessage(c, fiber.StatusCreated, "User registered", response)
}

// Login handles user authentication
// POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req service.LoginRequest
	if err := decodeStrict(c, &req); err != nil {
		return respondError(c, err)
	}
	response, err := h.authService.Login(&req)
	if err != nil {
		return respondError(c, err)
	}
	return okMessage(c, fiber.StatusOK, "Login successful", response)
}

// Logout is stateless; the client discards its token.
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	return okMessage(c, fiber.StatusOK, "Logged out", nil)
}

// GET /api/auth/profile
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	userID, err := uuid.Parse(actor(c).ID)
	if err != nil {
		return respondError(c, apperror.Unauthorized("Authentication required"))
	}
	profile, err := h.authService.Profile(userID)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, profile)
}

// Verify reports whether the bearer token is still valid.
// GET /api/auth/verify
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	token, err := middleware.BearerToken(c)
	if err != nil {
		return respondError(c, err)
	}
	user, err := h.authService.Verify(token)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "valid": true, "data": user})
}

// ResetPassword handles password change
// POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req service.ResetPasswordRequest
	if err := decodeStrict(c, &req); err != nil {
		return respondError(c, err)
	}
	if err := h.authService.ResetPassword(&req); err != nil {
		return respondError(c, err)
	}
	return okMessage(c, fiber.StatusOK, "Password updated successfully", nil)
}
