package service

import (
	"go-stock-tracker/internal/model"
	"go-stock-tracker/internal/repository"
	"go-stock-tracker/pkg/apperror"
	"go-stock-tracker/pkg/validator"

	"github.com/google/uuid"
)

// ErrSelfLockout stops an admin from demoting or deactivating their own account.
var ErrSelfLockout = apperror.Validation("You cannot remove your own admin access", map[string]string{
	"id": "is the current user",
})

type UserService interface {
	GetAllUsers() ([]model.UserResponse, error)
	GetUserByID(id uuid.UUID) (*model.UserResponse, error)
	UpdateUser(userID uuid.UUID, req *UpdateUserRequest, actor Actor) (*model.UserResponse, error)
	DeactivateUser(userID uuid.UUID, actor Actor) error
}

// UpdateUserRequest changes an account's role or active flag.
type UpdateUserRequest struct {
	Role     *string `json:"role" validate:"omitempty,oneof=user admin"`
	IsActive *bool   `json:"isActive"`
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetAllUsers() ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll()
	if err != nil {
		return nil, apperror.Internal("Failed to load users", err)
	}

	responses := make([]model.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return responses, nil
}

func (s *userService) GetUserByID(id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, notFoundOr(err, "User not found", "Failed to load user")
	}
	response := user.ToResponse()
	return &response, nil
}

func (s *userService) UpdateUser(userID uuid.UUID, req *UpdateUserRequest, actor Actor) (*model.UserResponse, error) {
	// 1. Validate request
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	// 2. Find existing user
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, notFoundOr(err, "User not found", "Failed to load user")
	}

	// 3. An admin keeps their own access
	self := user.ID.String() == actor.ID
	if self && ((req.Role != nil && model.Role(*req.Role) != model.RoleAdmin) || (req.IsActive != nil && !*req.IsActive)) {
		return nil, ErrSelfLockout
	}

	// 4. Apply the changes
	if req.Role != nil {
		user.Role = model.Role(*req.Role)
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.UpdatedBy = actor.ID

	if err := s.userRepo.Update(user); err != nil {
		return nil, apperror.Internal("Failed to update user", err)
	}
	response := user.ToResponse()
	return &response, nil
}

// DeactivateUser disables the account; tokens it holds stop working on the
// next request.
func (s *userService) DeactivateUser(userID uuid.UUID, actor Actor) error {
	inactive := false
	_, err := s.UpdateUser(userID, &UpdateUserRequest{IsActive: &inactive}, actor)
	return err
}
