package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/emre/gatherly/internal/app/lifecycle"
	"github.com/emre/gatherly/internal/app/models/dto"
)

// EnrollmentService defines the interface for enrollment operations
type EnrollmentService interface {
	Enroll(ctx context.Context, activityID, userID int64) (*dto.EnrollmentResponse, error)
	CancelEnrollment(ctx context.Context, activityID, userID int64) error
}

// enrollmentServiceImpl implements EnrollmentService
type enrollmentServiceImpl struct {
	activityStore   ActivityStore
	enrollmentStore EnrollmentStore
	userStore       UserStore
	clock           lifecycle.Clock
	logger          zerolog.Logger
}

// NewEnrollmentService creates a new EnrollmentService
func NewEnrollmentService(
	activityStore ActivityStore,
	enrollmentStore EnrollmentStore,
	userStore UserStore,
	clock lifecycle.Clock,
	logger zerolog.Logger,
) EnrollmentService {
	return &enrollmentServiceImpl{
		activityStore:   activityStore,
		enrollmentStore: enrollmentStore,
		userStore:       userStore,
		clock:           clock,
		logger:          logger,
	}
}

// Enroll admits the user into the activity. The store runs the whole
// admission under a per-activity lock, so the participant cap holds no
// matter how many requests race. One clock reading covers the entire
// operation.
func (s *enrollmentServiceImpl) Enroll(ctx context.Context, activityID, userID int64) (*dto.EnrollmentResponse, error) {
	now := s.clock.Now()

	activity, err := s.activityStore.GetByID(ctx, activityID)
	if err != nil {
		return nil, err
	}

	// Read-side recompute first so the locked admission check sees the
	// status the wall clock implies, not a stale stored one.
	derived := lifecycle.DeriveStatus(activity, now)
	if derived != activity.Status {
		if err := s.activityStore.UpdateStatus(ctx, activityID, derived); err != nil {
			return nil, err
		}
		activity.Status = derived
	}

	enrollment, err := s.enrollmentStore.Admit(ctx, activityID, userID, now)
	if err != nil {
		return nil, err
	}

	user, err := s.userStore.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	enrollment.User = user

	s.logger.Info().
		Int64("activityID", activityID).
		Int64("userID", userID).
		Msg("User enrolled")

	return dto.NewEnrollmentResponse(enrollment), nil
}

// CancelEnrollment flips the user's active enrollment to CANCELLED.
// Cancellation is not gated by the registration deadline.
func (s *enrollmentServiceImpl) CancelEnrollment(ctx context.Context, activityID, userID int64) error {
	if _, err := s.activityStore.GetByID(ctx, activityID); err != nil {
		return err
	}

	if err := s.enrollmentStore.CancelActive(ctx, activityID, userID); err != nil {
		return err
	}

	s.logger.Info().
		Int64("activityID", activityID).
		Int64("userID", userID).
		Msg("Enrollment cancelled")

	return nil
}
