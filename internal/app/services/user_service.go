package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/emre/gatherly/internal/app/models/dto"
	"github.com/emre/gatherly/internal/pkg/apperrors"
	"github.com/emre/gatherly/internal/pkg/auth"
)

// UserService handles user profile operations
type UserService struct {
	userStore UserStore
	logger    zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(userStore UserStore, logger zerolog.Logger) *UserService {
	return &UserService{userStore: userStore, logger: logger}
}

// GetProfile retrieves a user's profile
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	user, err := s.userStore.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}

	return dto.NewUserResponse(user), nil
}

// UpdateProfile applies the provided profile fields and returns the result
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.userStore.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.AvatarURL != nil {
		user.AvatarURL = req.AvatarURL
	}

	if err := s.userStore.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Debug().Int64("userID", userID).Msg("User profile updated")

	return dto.NewUserResponse(user), nil
}

// ChangePassword verifies the caller's current password and stores a
// hash of the new one
func (s *UserService) ChangePassword(ctx context.Context, userID int64, req *dto.ChangePasswordRequest) error {
	user, err := s.userStore.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperrors.ErrUserNotFound
	}

	if !auth.CheckPassword(user.Password, req.OldPassword) {
		return apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "current password is incorrect")
	}

	hashed, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	if err := s.userStore.UpdatePassword(ctx, userID, hashed); err != nil {
		return err
	}

	s.logger.Info().Int64("userID", userID).Msg("User password changed")

	return nil
}
