package auth

import (
	"context"
	"errors"

	"github.com/emre/gatherly/internal/app/models"
	"github.com/emre/gatherly/internal/app/repositories"
	"github.com/emre/gatherly/internal/pkg/apperrors"
	"github.com/emre/gatherly/internal/pkg/logger"
)

// AuthorizationService answers management-permission questions for
// activities. Every mutating activity operation goes through it rather
// than checking ownership inline.
type AuthorizationService struct {
	userRepo *repositories.UserRepository
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(userRepo *repositories.UserRepository) *AuthorizationService {
	return &AuthorizationService{userRepo: userRepo}
}

// IsAdmin checks if the user has the ADMIN role
func (s *AuthorizationService) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error getting user by ID in IsAdmin")
		return false, err
	}
	if user == nil {
		return false, apperrors.ErrUserNotFound
	}
	return user.Role == models.RoleAdmin, nil
}

// CanManageActivity returns nil when the actor may mutate the activity.
// The organizer and ADMIN users may; everyone else gets a Forbidden error.
func (s *AuthorizationService) CanManageActivity(ctx context.Context, actorID int64, activity *models.Activity) error {
	if activity == nil {
		return apperrors.ErrActivityNotFound
	}
	if activity.OrganizerID == actorID {
		return nil
	}

	isAdmin, err := s.IsAdmin(ctx, actorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return apperrors.NewForbiddenError("you don't have permission to manage this activity")
		}
		return err
	}
	if !isAdmin {
		return apperrors.NewForbiddenError("you don't have permission to manage this activity")
	}

	return nil
}
