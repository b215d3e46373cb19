// Package lifecycle holds the pure rules of the activity state machine and
// the capacity-guarded admission check. Nothing here touches the database or
// the wall clock; callers pass the activity snapshot and a single `now`.
package lifecycle

import (
	"time"

	"github.com/emre/gatherly/internal/app/models"
	"github.com/emre/gatherly/internal/pkg/apperrors"
)

// DeriveStatus maps an activity and the current instant to the status the
// activity should carry. It is pure and idempotent: applying the result and
// deriving again yields the same status.
//
// Rules, first match wins:
//  1. CANCELLED is sticky and never overridden.
//  2. Past end_time the activity is FINISHED.
//  3. Between start_time and end_time it is ONGOING.
//  4. Between registration_deadline and start_time it is REGISTRATION_CLOSED.
//  5. Before the deadline the stored status stands. PREPARING is never
//     auto-promoted to RECRUITING; opening recruitment is an organizer action.
func DeriveStatus(a *models.Activity, now time.Time) models.ActivityStatus {
	if a.Status == models.StatusCancelled {
		return models.StatusCancelled
	}

	switch {
	case now.After(a.EndTime):
		return models.StatusFinished
	case !now.Before(a.StartTime): // start <= now <= end
		return models.StatusOngoing
	case now.After(a.RegistrationDeadline): // deadline < now < start
		return models.StatusRegistrationClosed
	default:
		return a.Status
	}
}

// ValidateManualTransition checks an organizer- or admin-requested status
// change. Beyond the terminal checks there is no adjacency constraint between
// states; any non-terminal activity can be moved to any valid status before
// its end time.
func ValidateManualTransition(a *models.Activity, now time.Time, target models.ActivityStatus) error {
	if !target.IsValid() {
		return apperrors.ErrInvalidStatus
	}

	if a.Status == models.StatusCancelled {
		return apperrors.NewCustomError(apperrors.ErrInvalidStatus, "cancelled activities cannot change status")
	}

	if now.After(a.EndTime) {
		return apperrors.NewCustomError(apperrors.ErrInvalidStatus, "activity status cannot change after the activity has ended")
	}

	return nil
}

// CanModify reports whether the activity still accepts edits or an
// organizer cancel. Both are allowed only before the activity starts and
// while it has not begun, finished or been cancelled.
func CanModify(a *models.Activity, now time.Time) bool {
	switch a.Status {
	case models.StatusPreparing, models.StatusRecruiting, models.StatusRegistrationClosed:
		return now.Before(a.StartTime)
	default:
		return false
	}
}

// ValidateSchedule enforces registration_deadline < start_time < end_time.
func ValidateSchedule(start, end, deadline time.Time) error {
	if !end.After(start) {
		return apperrors.NewCustomError(apperrors.ErrInvalidSchedule, "activity end time must be after start time")
	}
	if !deadline.Before(start) {
		return apperrors.NewCustomError(apperrors.ErrInvalidSchedule, "registration deadline must be before activity start time")
	}
	return nil
}

// ValidateScheduleAtCreate additionally requires the registration deadline
// to lie in the future. Updates re-validate ordering only.
func ValidateScheduleAtCreate(start, end, deadline, now time.Time) error {
	if err := ValidateSchedule(start, end, deadline); err != nil {
		return err
	}
	if !deadline.After(now) {
		return apperrors.NewCustomError(apperrors.ErrInvalidSchedule, "registration deadline must be in the future")
	}
	return nil
}
