package lifecycle

import (
	"time"

	"github.com/emre/gatherly/internal/app/models"
	"github.com/emre/gatherly/internal/pkg/apperrors"
)

// AdmitMode tells the store how to record an admitted enrollment.
type AdmitMode int

const (
	// AdmitInsert creates a fresh ENROLLED row.
	AdmitInsert AdmitMode = iota
	// AdmitReactivate flips the user's existing CANCELLED row back to ENROLLED.
	AdmitReactivate
)

// AdmitSnapshot is what the store observed for one (activity, user) pair
// while holding the activity row lock. All fields refer to the same
// transaction-consistent view.
type AdmitSnapshot struct {
	Status               models.ActivityStatus
	RegistrationDeadline time.Time
	MaxParticipants      int
	EnrolledCount        int
	UserEnrolled         bool
	UserHasCancelledRow  bool
}

// CheckAdmission decides whether one more enrollment may be admitted.
// Checks run in a fixed order and short-circuit on the first failure:
// recruiting status, deadline, duplicate membership, capacity. The duplicate
// check runs before the capacity check so an already-enrolled user is told so
// rather than "full". Reactivation consumes a capacity slot like any other
// admission.
func CheckAdmission(snap AdmitSnapshot, now time.Time) (AdmitMode, error) {
	if snap.Status != models.StatusRecruiting {
		return 0, apperrors.ErrNotRecruiting
	}

	if now.After(snap.RegistrationDeadline) {
		return 0, apperrors.ErrDeadlinePassed
	}

	if snap.UserEnrolled {
		return 0, apperrors.ErrAlreadyEnrolled
	}

	if snap.EnrolledCount >= snap.MaxParticipants {
		return 0, apperrors.ErrActivityFull
	}

	if snap.UserHasCancelledRow {
		return AdmitReactivate, nil
	}
	return AdmitInsert, nil
}
