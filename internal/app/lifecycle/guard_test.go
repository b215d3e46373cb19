package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emre/gatherly/internal/app/models"
	"github.com/emre/gatherly/internal/pkg/apperrors"
)

func TestCheckAdmission(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	deadline := now.Add(time.Hour)

	open := func() AdmitSnapshot {
		return AdmitSnapshot{
			Status:               models.StatusRecruiting,
			RegistrationDeadline: deadline,
			MaxParticipants:      2,
			EnrolledCount:        0,
		}
	}

	t.Run("admits new enrollment", func(t *testing.T) {
		mode, err := CheckAdmission(open(), now)
		require.NoError(t, err)
		assert.Equal(t, AdmitInsert, mode)
	})

	t.Run("admits reactivation when a cancelled row exists", func(t *testing.T) {
		snap := open()
		snap.UserHasCancelledRow = true
		mode, err := CheckAdmission(snap, now)
		require.NoError(t, err)
		assert.Equal(t, AdmitReactivate, mode)
	})

	t.Run("rejects non-recruiting statuses", func(t *testing.T) {
		for _, status := range []models.ActivityStatus{
			models.StatusPreparing,
			models.StatusRegistrationClosed,
			models.StatusOngoing,
			models.StatusFinished,
			models.StatusCancelled,
		} {
			snap := open()
			snap.Status = status
			_, err := CheckAdmission(snap, now)
			require.ErrorIs(t, err, apperrors.ErrNotRecruiting, "status %s", status)
		}
	})

	t.Run("rejects after the registration deadline", func(t *testing.T) {
		snap := open()
		_, err := CheckAdmission(snap, deadline.Add(time.Second))
		require.ErrorIs(t, err, apperrors.ErrDeadlinePassed)
	})

	t.Run("admits exactly at the registration deadline", func(t *testing.T) {
		snap := open()
		_, err := CheckAdmission(snap, deadline)
		require.NoError(t, err)
	})

	t.Run("duplicate membership wins over full", func(t *testing.T) {
		// A user who is already in must get "already enrolled", never "full".
		snap := open()
		snap.UserEnrolled = true
		snap.EnrolledCount = snap.MaxParticipants
		_, err := CheckAdmission(snap, now)
		require.ErrorIs(t, err, apperrors.ErrAlreadyEnrolled)
	})

	t.Run("rejects when full", func(t *testing.T) {
		snap := open()
		snap.EnrolledCount = snap.MaxParticipants
		_, err := CheckAdmission(snap, now)
		require.ErrorIs(t, err, apperrors.ErrActivityFull)
	})

	t.Run("reactivation still consumes a capacity slot", func(t *testing.T) {
		snap := open()
		snap.UserHasCancelledRow = true
		snap.EnrolledCount = snap.MaxParticipants
		_, err := CheckAdmission(snap, now)
		require.ErrorIs(t, err, apperrors.ErrActivityFull)
	})
}
