package middleware

import (
	"errors"
	"strings"

	"go-stock-tracker/internal/model"
	"go-stock-tracker/internal/repository"
	"go-stock-tracker/pkg/apperror"
	"go-stock-tracker/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Locals keys set by RequireAuth.
const (
	LocalUserID   = "user_id"
	LocalUsername = "username"
	LocalUserRole = "user_role"
)

// RequireAuth is middleware that validates the bearer token and sets user info in context.
// Errors are returned so the app's error handler writes the envelope.
func RequireAuth(tokens *jwt.Manager, userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := BearerToken(c)
		if err != nil {
			return err
		}

		// Validate token
		claims, err := tokens.ValidateToken(tokenString)
		if err != nil {
			if errors.Is(err, jwt.ErrExpiredToken) {
				return apperror.Unauthorized("Token has expired")
			}
			return apperror.Unauthorized("Invalid token")
		}

		// The account must still exist and be active; the role is read fresh
		user, err := userRepo.FindByID(claims.UserID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.Unauthorized("User not found")
		}
		if err != nil {
			return apperror.Internal("Failed to load user", err)
		}
		if !user.IsActive {
			return apperror.Unauthorized("User account is inactive")
		}

		// Set user info in context for downstream handlers
		c.Locals(LocalUserID, user.ID.String())
		c.Locals(LocalUsername, user.Username)
		c.Locals(LocalUserRole, string(user.Role))

		return c.Next()
	}
}

// RequireRole checks the role set by RequireAuth. Evaluated per request.
func RequireRole(roles ...model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(LocalUserRole).(string)
		if !ok {
			return apperror.Unauthorized("Authentication required")
		}
		for _, r := range roles {
			if role == string(r) {
				return c.Next()
			}
		}
		return apperror.Forbidden("Insufficient permissions")
	}
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", apperror.Unauthorized("Missing authorization token")
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", apperror.Unauthorized("Invalid authorization format. Use: Bearer <token>")
	}
	return parts[1], nil
}

// RequireOwnerOrAdmin lets admins through and otherwise only the user whose
// id is in the named path parameter.
func RequireOwnerOrAdmin(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(LocalUserRole).(string)
		if !ok {
			return apperror.Unauthorized("Authentication required")
		}
		userID, _ := c.Locals(LocalUserID).(string)
		if role == string(model.RoleAdmin) || strings.EqualFold(userID, c.Params(param)) {
			return c.Next()
		}
		return apperror.Forbidden("Insufficient permissions")
	}
}
