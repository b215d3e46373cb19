package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emre/gatherly/internal/app/models"
	"github.com/emre/gatherly/internal/pkg/apperrors"
)

func scheduledActivity(status models.ActivityStatus, deadline, start, end time.Time) *models.Activity {
	return &models.Activity{
		ID:                   1,
		Status:               status,
		RegistrationDeadline: deadline,
		StartTime:            start,
		EndTime:              end,
		MaxParticipants:      10,
	}
}

func TestDeriveStatus(t *testing.T) {
	base := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	deadline := base.Add(24 * time.Hour)
	start := base.Add(48 * time.Hour)
	end := base.Add(72 * time.Hour)

	tests := []struct {
		name   string
		stored models.ActivityStatus
		now    time.Time
		want   models.ActivityStatus
	}{
		{"cancelled is sticky before deadline", models.StatusCancelled, base, models.StatusCancelled},
		{"cancelled is sticky after end", models.StatusCancelled, end.Add(time.Hour), models.StatusCancelled},
		{"finished after end time", models.StatusRecruiting, end.Add(time.Minute), models.StatusFinished},
		{"ongoing at start boundary", models.StatusRecruiting, start, models.StatusOngoing},
		{"ongoing between start and end", models.StatusRecruiting, start.Add(time.Hour), models.StatusOngoing},
		{"ongoing at end boundary", models.StatusRecruiting, end, models.StatusOngoing},
		{"registration closed between deadline and start", models.StatusRecruiting, deadline.Add(time.Minute), models.StatusRegistrationClosed},
		{"preparing stays preparing before deadline", models.StatusPreparing, base, models.StatusPreparing},
		{"recruiting stays recruiting before deadline", models.StatusRecruiting, base, models.StatusRecruiting},
		{"recruiting stays recruiting at deadline", models.StatusRecruiting, deadline, models.StatusRecruiting},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := scheduledActivity(tt.stored, deadline, start, end)
			got := DeriveStatus(a, tt.now)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeriveStatusIsIdempotent(t *testing.T) {
	base := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	deadline := base.Add(24 * time.Hour)
	start := base.Add(48 * time.Hour)
	end := base.Add(72 * time.Hour)

	instants := []time.Time{
		base,
		deadline.Add(time.Minute),
		start.Add(time.Minute),
		end.Add(time.Minute),
	}

	for _, now := range instants {
		a := scheduledActivity(models.StatusRecruiting, deadline, start, end)
		first := DeriveStatus(a, now)
		a.Status = first
		second := DeriveStatus(a, now)
		require.Equal(t, first, second, "derivation at %v changed on second application", now)
	}
}

func TestValidateManualTransition(t *testing.T) {
	base := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	deadline := base.Add(24 * time.Hour)
	start := base.Add(48 * time.Hour)
	end := base.Add(72 * time.Hour)

	t.Run("rejects invalid status value", func(t *testing.T) {
		a := scheduledActivity(models.StatusPreparing, deadline, start, end)
		err := ValidateManualTransition(a, base, models.ActivityStatus("SOMETHING"))
		require.ErrorIs(t, err, apperrors.ErrInvalidStatus)
	})

	t.Run("rejects change on cancelled activity regardless of time", func(t *testing.T) {
		a := scheduledActivity(models.StatusCancelled, deadline, start, end)
		err := ValidateManualTransition(a, base, models.StatusRecruiting)
		require.ErrorIs(t, err, apperrors.ErrInvalidStatus)
	})

	t.Run("rejects change after end time", func(t *testing.T) {
		a := scheduledActivity(models.StatusRecruiting, deadline, start, end)
		err := ValidateManualTransition(a, end.Add(time.Second), models.StatusFinished)
		require.ErrorIs(t, err, apperrors.ErrInvalidStatus)
	})

	t.Run("allows any non-terminal target before end", func(t *testing.T) {
		a := scheduledActivity(models.StatusPreparing, deadline, start, end)
		for _, target := range []models.ActivityStatus{
			models.StatusRecruiting,
			models.StatusRegistrationClosed,
			models.StatusCancelled,
		} {
			assert.NoError(t, ValidateManualTransition(a, base, target))
		}
	})
}

func TestCanModify(t *testing.T) {
	base := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	deadline := base.Add(24 * time.Hour)
	start := base.Add(48 * time.Hour)
	end := base.Add(72 * time.Hour)

	tests := []struct {
		name   string
		status models.ActivityStatus
		now    time.Time
		want   bool
	}{
		{"preparing before start", models.StatusPreparing, base, true},
		{"recruiting before start", models.StatusRecruiting, base, true},
		{"registration closed before start", models.StatusRegistrationClosed, deadline.Add(time.Hour), true},
		{"recruiting at start time", models.StatusRecruiting, start, false},
		{"ongoing", models.StatusOngoing, start.Add(time.Hour), false},
		{"finished", models.StatusFinished, end.Add(time.Hour), false},
		{"cancelled", models.StatusCancelled, base, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := scheduledActivity(tt.status, deadline, start, end)
			assert.Equal(t, tt.want, CanModify(a, tt.now))
		})
	}
}

func TestValidateSchedule(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	deadline := now.Add(24 * time.Hour)
	start := now.Add(48 * time.Hour)
	end := now.Add(72 * time.Hour)

	require.NoError(t, ValidateSchedule(start, end, deadline))
	require.NoError(t, ValidateScheduleAtCreate(start, end, deadline, now))

	t.Run("end must be after start", func(t *testing.T) {
		require.ErrorIs(t, ValidateSchedule(start, start, deadline), apperrors.ErrInvalidSchedule)
	})

	t.Run("deadline must be before start", func(t *testing.T) {
		require.ErrorIs(t, ValidateSchedule(start, end, start), apperrors.ErrInvalidSchedule)
	})

	t.Run("deadline must be in the future at create", func(t *testing.T) {
		err := ValidateScheduleAtCreate(start, end, deadline, deadline.Add(time.Second))
		require.ErrorIs(t, err, apperrors.ErrInvalidSchedule)
	})
}
