package service

import (
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-stock-tracker/internal/model"
	"go-stock-tracker/internal/repository"
	"go-stock-tracker/pkg/apperror"
	"go-stock-tracker/pkg/jwt"
	"go-stock-tracker/pkg/validator"
)

var (
	ErrInvalidCredentials = apperror.Unauthorized("Invalid email or password")
	ErrUserInactive       = apperror.Unauthorized("User account is inactive")
	ErrWrongPassword      = apperror.Validation("Current password is incorrect", map[string]string{
		"oldPassword": "is incorrect",
	})
)

type AuthService interface {
	Register(req *RegisterRequest) (*LoginResponse, error)
	Login(req *LoginRequest) (*LoginResponse, error)
	Profile(userID uuid.UUID) (*model.UserResponse, error)
	Verify(tokenString string) (*model.UserResponse, error)
	ResetPassword(req *ResetPasswordRequest) error
	EnsureAdmin(email, username, password string) error
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30,alphanum"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=72"`
}

type LoginResponse struct {
	Token     string             `json:"token"`
	ExpiresIn int64              `json:"expiresIn"`
	User      model.UserResponse `json:"user"`
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *jwt.Manager
}

func NewAuthService(userRepo repository.UserRepository, tokens *jwt.Manager) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

func (s *authService) Register(req *RegisterRequest) (*LoginResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	// 1. Username and email must be free
	if _, err := s.userRepo.FindByEmail(req.Email); err == nil {
		return nil, duplicateError("email")
	} else if !isNotFound(err) {
		return nil, apperror.Internal("Failed to check email", err)
	}
	if _, err := s.userRepo.FindByUsername(req.Username); err == nil {
		return nil, duplicateError("username")
	} else if !isNotFound(err) {
		return nil, apperror.Internal("Failed to check username", err)
	}

	// 2. Create the account; registration never grants admin
	user := &model.User{
		Username: req.Username,
		Email:    req.Email,
		Role:     model.RoleUser,
		IsActive: true,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, apperror.Internal("Failed to hash password", err)
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, s.registerError(err, req.Email)
	}

	return s.issue(user)
}

// registerError maps a unique index violation from a concurrent registration
// to the field that collided.
func (s *authService) registerError(err error, email string) error {
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.Internal("Failed to create user", err)
	}
	if _, findErr := s.userRepo.FindByEmail(email); findErr == nil {
		return duplicateError("email")
	}
	return duplicateError("username")
}

func (s *authService) Login(req *LoginRequest) (*LoginResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	// 1. Find user by email
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, apperror.Internal("Failed to load user", err)
	}

	// 2. Check if user is active
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// 3. Verify password
	if !user.CheckPassword(req.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *authService) issue(user *model.User) (*LoginResponse, error) {
	token, err := s.tokens.GenerateToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, apperror.Internal("Failed to generate token", err)
	}
	return &LoginResponse{
		Token:     token,
		ExpiresIn: int64(s.tokens.TTL().Seconds()),
		User:      user.ToResponse(),
	}, nil
}

func (s *authService) Profile(userID uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, notFoundOr(err, "User not found", "Failed to load user")
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *authService) Verify(tokenString string) (*model.UserResponse, error) {
	// 1. Validate JWT token
	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, apperror.Unauthorized(tokenMessage(err))
	}

	// 2. The account must still exist and be active
	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.Unauthorized("User no longer exists")
		}
		return nil, apperror.Internal("Failed to load user", err)
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	resp := user.ToResponse()
	return &resp, nil
}

func (s *authService) ResetPassword(req *ResetPasswordRequest) error {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validator.Check(req); err != nil {
		return err
	}

	// 1. Find user by email
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		return notFoundOr(err, "User not found", "Failed to load user")
	}

	// 2. Verify old password
	if !user.CheckPassword(req.OldPassword) {
		return ErrWrongPassword
	}

	// 3. Set new password
	if err := user.SetPassword(req.NewPassword); err != nil {
		return apperror.Internal("Failed to hash new password", err)
	}

	// 4. Update in database
	if err := s.userRepo.UpdatePassword(user.ID, user.Password); err != nil {
		return apperror.Internal("Failed to update password", err)
	}
	return nil
}

// EnsureAdmin creates the configured admin account on first start.
// An existing account with that email is left untouched.
func (s *authService) EnsureAdmin(email, username, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		log.Println("Admin seed skipped: ADMIN_EMAIL or ADMIN_PASSWORD not set")
		return nil
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil
	} else if !isNotFound(err) {
		return err
	}

	admin := &model.User{
		Username: username,
		Email:    email,
		Role:     model.RoleAdmin,
		IsActive: true,
	}
	if err := admin.SetPassword(password); err != nil {
		return err
	}
	if err := s.userRepo.Create(admin); err != nil {
		return err
	}
	log.Printf("✅ Admin user created: %s", email)
	return nil
}

// tokenMessage turns token validation errors into client-facing text.
func tokenMessage(err error) string {
	switch {
	case errors.Is(err, jwt.ErrExpiredToken):
		return "Token has expired"
	case errors.Is(err, jwt.ErrMissingToken):
		return "Missing authorization token"
	}
	return "Invalid token"
}
