package services

import (
	"context"
	"fmt"

	"bookstore/models"
	"bookstore/repositories"

	"golang.org/x/crypto/bcrypt"
)

// Requester is the authenticated caller of a user operation.
type Requester struct {
	UserID uint
	// CanManageUsers is set when the caller holds the users:manage permission.
	CanManageUsers bool
}

func (r Requester) mayAccess(targetUserID uint) bool {
	return r.CanManageUsers || r.UserID == targetUserID
}

// The UserService interface defines the account operations on existing users.
type UserService interface {
	GetUserByID(ctx context.Context, targetUserID uint, requester Requester) (*models.User, error)
	ListUsers(ctx context.Context, page int, pageSize int) (*Page[models.User], error)
	UpdateUser(ctx context.Context, targetUserID uint, requester Requester, input *UpdateUserInput) (*models.User, error)
	DeleteUser(ctx context.Context, targetUserID uint, requester Requester) error
	ChangePassword(ctx context.Context, userID uint, input *ChangePasswordInput) error
}

// UpdateUserInput holds the profile fields to change. Nil fields are left alone.
type UpdateUserInput struct {
	Email     *string `json:"email" binding:"omitempty,email"`
	FirstName *string `json:"first_name" binding:"omitempty,max=64"`
	LastName  *string `json:"last_name" binding:"omitempty,max=64"`
}

// ChangePasswordInput is the body of PATCH /user/password.
type ChangePasswordInput struct {
	OldPassword       string `json:"old_password" binding:"required"`
	NewPassword       string `json:"new_password" binding:"required,min=6"`
	NewPasswordRepeat string `json:"new_password_repeat" binding:"eqfield=NewPassword"`
}

type userService struct {
	repo repositories.UserRepository
}

var _ UserService = (*userService)(nil)

// NewUserService creates a new UserService instance
func NewUserService(repo repositories.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) GetUserByID(ctx context.Context, targetUserID uint, requester Requester) (*models.User, error) {
	if !requester.mayAccess(targetUserID) {
		return nil, fmt.Errorf("%w: you need 'users:manage' permission to view other profiles", ErrForbidden)
	}
	user, err := s.repo.FindByID(ctx, targetUserID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, page int, pageSize int) (*Page[models.User], error) {
	users, total, err := s.repo.FindAll(ctx, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("database error retrieving users: %w", err)
	}
	return newPage(users, total, page, pageSize), nil
}

func (s *userService) UpdateUser(ctx context.Context, targetUserID uint, requester Requester, input *UpdateUserInput) (*models.User, error) {
	if !requester.mayAccess(targetUserID) {
		return nil, fmt.Errorf("%w: you can only update your own profile", ErrForbidden)
	}
	if err := Validate(input); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, targetUserID)
	if err != nil {
		return nil, notFound(err, "user")
	}

	needsSave := false
	if input.Email != nil && *input.Email != user.Email {
		taken, err := s.repo.EmailTaken(ctx, *input.Email, user.ID)
		if err != nil {
			return nil, fmt.Errorf("database error checking email uniqueness: %w", err)
		}
		if taken {
			return nil, fmt.Errorf("email address is %w", ErrConflict)
		}
		user.Email = *input.Email
		user.EmailConfirmed = false
		needsSave = true
	}
	if input.FirstName != nil && *input.FirstName != user.FirstName {
		user.FirstName = *input.FirstName
		needsSave = true
	}
	if input.LastName != nil && *input.LastName != user.LastName {
		user.LastName = *input.LastName
		needsSave = true
	}

	if needsSave {
		if err := s.repo.Update(ctx, user); err != nil {
			return nil, conflict(fmt.Errorf("failed to save user updates: %w", err), "email address")
		}
	}
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, targetUserID uint, requester Requester) error {
	if !requester.CanManageUsers {
		return fmt.Errorf("%w: no permission to delete users", ErrForbidden)
	}
	if targetUserID == requester.UserID {
		return fieldError("id", "administrators cannot delete their own account")
	}
	if err := s.repo.Delete(ctx, targetUserID); err != nil {
		return notFound(err, "user")
	}
	return nil
}

// ChangePassword replaces the user's password after checking the old one.
// The new password must be entered twice.
func (s *userService) ChangePassword(ctx context.Context, userID uint, input *ChangePasswordInput) error {
	if err := Validate(input); err != nil {
		return err
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return notFound(err, "user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.OldPassword)); err != nil {
		return fieldError("old_password", "does not match the current password")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("could not hash new password: %w", err)
	}
	user.Password = string(hashed)
	if err := s.repo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to save new password: %w", err)
	}
	return nil
}
