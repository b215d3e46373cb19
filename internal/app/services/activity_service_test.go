package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emre/gatherly/internal/app/lifecycle"
	"github.com/emre/gatherly/internal/app/models"
	"github.com/emre/gatherly/internal/app/models/dto"
	"github.com/emre/gatherly/internal/pkg/apperrors"
)

type activityFixture struct {
	store      *memStore
	service    ActivityService
	enrollment EnrollmentService
	now        time.Time
	organizer  *models.User
	admin      *models.User
	category   *models.Category
}

func newActivityFixture(t *testing.T) *activityFixture {
	t.Helper()
	store := newMemStore()
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	organizer := store.addUser("organizer")
	admin := store.addUser("admin")
	admin.Role = models.RoleAdmin
	category := store.addCategory("Basketball")

	clock := lifecycle.FixedClock{Instant: now}
	activityStore := &fakeActivityStore{s: store}
	enrollmentStore := &fakeEnrollmentStore{s: store}
	userStore := &fakeUserStore{s: store}
	authz := &fakeAuthorizer{admins: map[int64]bool{admin.ID: true}}

	return &activityFixture{
		store:      store,
		service:    NewActivityService(activityStore, enrollmentStore, &fakeCategoryStore{s: store}, authz, clock, zerolog.Nop()),
		enrollment: NewEnrollmentService(activityStore, enrollmentStore, userStore, clock, zerolog.Nop()),
		now:        now,
		organizer:  organizer,
		admin:      admin,
		category:   category,
	}
}

func (f *activityFixture) recruitingActivity(maxParticipants int) *models.Activity {
	return f.store.addActivity(models.Activity{
		Name:                 "Sunday Basketball",
		Location:             "Riverside Court 3",
		StartTime:            f.now.Add(48 * time.Hour),
		EndTime:              f.now.Add(50 * time.Hour),
		RegistrationDeadline: f.now.Add(24 * time.Hour),
		MaxParticipants:      maxParticipants,
		Status:               models.StatusRecruiting,
		FeeType:              models.FeeFree,
		OrganizerID:          f.organizer.ID,
		CategoryID:           f.category.ID,
	})
}

func TestCreateActivity(t *testing.T) {
	ctx := context.Background()

	validRequest := func(f *activityFixture) *dto.CreateActivityRequest {
		return &dto.CreateActivityRequest{
			Name:                 "Sunday Basketball",
			Location:             "Riverside Court 3",
			StartTime:            f.now.Add(48 * time.Hour).Format(time.RFC3339),
			EndTime:              f.now.Add(50 * time.Hour).Format(time.RFC3339),
			RegistrationDeadline: f.now.Add(24 * time.Hour).Format(time.RFC3339),
			MaxParticipants:      10,
			CategoryID:           0, // set per test
		}
	}

	t.Run("creates with PREPARING status", func(t *testing.T) {
		f := newActivityFixture(t)
		req := validRequest(f)
		req.CategoryID = f.category.ID

		resp, err := f.service.CreateActivity(ctx, f.organizer.ID, req)
		require.NoError(t, err)
		assert.Equal(t, string(models.StatusPreparing), resp.Status)
		assert.Equal(t, 0, resp.EnrolledCount)
		assert.Equal(t, f.organizer.ID, resp.OrganizerID)
		assert.Equal(t, string(models.FeeFree), resp.FeeType)
	})

	t.Run("rejects deadline not before start", func(t *testing.T) {
		f := newActivityFixture(t)
		req := validRequest(f)
		req.CategoryID = f.category.ID
		req.RegistrationDeadline = f.now.Add(49 * time.Hour).Format(time.RFC3339)

		_, err := f.service.CreateActivity(ctx, f.organizer.ID, req)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidSchedule))
	})

	t.Run("rejects deadline in the past", func(t *testing.T) {
		f := newActivityFixture(t)
		req := validRequest(f)
		req.CategoryID = f.category.ID
		req.RegistrationDeadline = f.now.Add(-time.Hour).Format(time.RFC3339)

		_, err := f.service.CreateActivity(ctx, f.organizer.ID, req)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidSchedule))
	})

	t.Run("rejects unknown category", func(t *testing.T) {
		f := newActivityFixture(t)
		req := validRequest(f)
		req.CategoryID = 9999

		_, err := f.service.CreateActivity(ctx, f.organizer.ID, req)
		assert.True(t, errors.Is(err, apperrors.ErrCategoryNotFound))
	})
}

func TestGetActivityByID(t *testing.T) {
	ctx := context.Background()

	t.Run("persists the derived status on read", func(t *testing.T) {
		f := newActivityFixture(t)
		activity := f.store.addActivity(models.Activity{
			Name:                 "Past Game",
			StartTime:            f.now.Add(-4 * time.Hour),
			EndTime:              f.now.Add(-2 * time.Hour),
			RegistrationDeadline: f.now.Add(-24 * time.Hour),
			MaxParticipants:      10,
			Status:               models.StatusRecruiting,
			OrganizerID:          f.organizer.ID,
			CategoryID:           f.category.ID,
		})

		resp, err := f.service.GetActivityByID(ctx, activity.ID)
		require.NoError(t, err)
		assert.Equal(t, string(models.StatusFinished), resp.Status)

		stored := f.store.activities[activity.ID]
		assert.Equal(t, models.StatusFinished, stored.Status)
	})

	t.Run("cancelled stays cancelled past its end", func(t *testing.T) {
		f := newActivityFixture(t)
		activity := f.store.addActivity(models.Activity{
			Name:                 "Called Off",
			StartTime:            f.now.Add(-4 * time.Hour),
			EndTime:              f.now.Add(-2 * time.Hour),
			RegistrationDeadline: f.now.Add(-24 * time.Hour),
			MaxParticipants:      10,
			Status:               models.StatusCancelled,
			OrganizerID:          f.organizer.ID,
			CategoryID:           f.category.ID,
		})

		resp, err := f.service.GetActivityByID(ctx, activity.ID)
		require.NoError(t, err)
		assert.Equal(t, string(models.StatusCancelled), resp.Status)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		f := newActivityFixture(t)
		_, err := f.service.GetActivityByID(ctx, 9999)
		assert.True(t, errors.Is(err, apperrors.ErrActivityNotFound))
	})
}

func TestUpdateActivity(t *testing.T) {
	ctx := context.Background()

	t.Run("organizer updates basic fields", func(t *testing.T) {
		f := newActivityFixture(t)
		activity := f.recruitingActivity(10)

		name := "Renamed Game"
		resp, err := f.service.UpdateActivity(ctx, activity.ID, f.organizer.ID, &dto.UpdateActivityRequest{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Renamed Game", resp.Name)
	})

	t.Run("non-organizer is forbidden", func(t *testing.T) {
		f := newActivityFixture(t)
		activity := f.recruitingActivity(10)
		stranger := f.store.addUser("stranger")

		name := "Hijacked"
		_, err := f.service.UpdateActivity(ctx, activity.ID, stranger.ID, &dto.UpdateActivityRequest{Name: &name})
		assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))
	})

	t.Run("admin bypasses ownership", func(t *testing.T) {
		f := newActivityFixture(t)
		activity := f.recruitingActivity(10)

		name := "Admin Renamed"
		resp, err := f.service.UpdateActivity(ctx, activity.ID, f.admin.ID, &dto.UpdateActivityRequest{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Admin Renamed", resp.Name)
	})

	t.Run("rejected once the activity has started", func(t *testing.T) {
		f := newActivityFixture(t)
		activity := f.store.addActivity(models.Activity{
			Name:                 "Running Game",
			StartTime:            f.now.Add(-time.Hour),
			EndTime:              f.now.Add(time.Hour),
			RegistrationDeadline: f.now.Add(-2 * time.Hour),
			MaxParticipants:      10,
			Status:               models.StatusRecruiting,
			OrganizerID:          f.organizer.ID,
			CategoryID:           f.category.ID,
		})

		name := "Too Late"
		_, err := f.service.UpdateActivity(ctx, activity.ID, f.organizer.ID, &dto.UpdateActivityRequest{Name: &name})
		assert.True(t, errors.Is(err, apperrors.ErrActivityNotEditable))
	})

	t.Run("cannot lower cap below enrolled count", func(t *testing.T) {
		f := newActivityFixture(t)
		activity := f.recruitingActivity(10)
		for _, name := range []string{"a", "b", "c"} {
			user := f.store.addUser(name)
			_, err := f.enrollment.Enroll(ctx, activity.ID, user.ID)
			require.NoError(t, err)
		}

		lower := 2
		_, err := f.service.UpdateActivity(ctx, activity.ID, f.organizer.ID, &dto.UpdateActivityRequest{MaxParticipants: &lower})
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrBadRequest))

		exact := 3
		resp, err := f.service.UpdateActivity(ctx, activity.ID, f.organizer.ID, &dto.UpdateActivityRequest{MaxParticipants: &exact})
		require.NoError(t, err)
		assert.Equal(t, 3, resp.MaxParticipants)
	})

	t.Run("schedule ordering re-validated with merged fields", func(t *testing.T) {
		f := newActivityFixture(t)
		activity := f.recruitingActivity(10)

		badEnd := f.now.Add(47 * time.Hour).Format(time.RFC3339) // before the stored start
		_, err := f.service.UpdateActivity(ctx, activity.ID, f.organizer.ID, &dto.UpdateActivityRequest{EndTime: &badEnd})
		assert.True(t, errors.Is(err, apperrors.ErrInvalidSchedule))
	})
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("organizer opens recruitment", func(t *testing.T) {
		f := newActivityFixture(t)
		activity := f.recruitingActivity(10)
		f.store.activities[activity.ID].Status = models.StatusPreparing

		resp, err := f.service.SetStatus(ctx, activity.ID, f.organizer.ID, "RECRUITING")
		require.NoError(t, err)
		assert.Equal(t, string(models.StatusRecruiting), resp.Status)
	})

	t.Run("cancelling cascades to enrollments", func(t *testing.T) {
		f := newActivityFixture(t)
		activity := f.recruitingActivity(10)
		for _, name := range []string{"a", "b"} {
			user := f.store.addUser(name)
			_, err := f.enrollment.Enroll(ctx, activity.ID, user.ID)
			require.NoError(t, err)
		}

		resp, err := f.service.SetStatus(ctx, activity.ID, f.organizer.ID, "CANCELLED")
		require.NoError(t, err)
		assert.Equal(t, string(models.StatusCancelled), resp.Status)
		assert.Equal(t, 0, resp.EnrolledCount)

		for _, e := range f.store.enrollments[activity.ID] {
			assert.Equal(t, models.EnrollmentCancelled, e.Status)
		}
	})

	t.Run("cancelled is terminal", func(t *testing.T) {
		f := newActivityFixture(t)
		activity := f.recruitingActivity(10)
		f.store.activities[activity.ID].Status = models.StatusCancelled

		_, err := f.service.SetStatus(ctx, activity.ID, f.organizer.ID, "RECRUITING")
		assert.True(t, errors.Is(err, apperrors.ErrInvalidStatus))
	})

	t.Run("no change after the end time", func(t *testing.T) {
		f := newActivityFixture(t)
		activity := f.store.addActivity(models.Activity{
			Name:                 "Over",
			StartTime:            f.now.Add(-4 * time.Hour),
			EndTime:              f.now.Add(-2 * time.Hour),
			RegistrationDeadline: f.now.Add(-24 * time.Hour),
			MaxParticipants:      10,
			Status:               models.StatusFinished,
			OrganizerID:          f.organizer.ID,
			CategoryID:           f.category.ID,
		})

		_, err := f.service.SetStatus(ctx, activity.ID, f.organizer.ID, "RECRUITING")
		assert.True(t, errors.Is(err, apperrors.ErrInvalidStatus))
	})

	t.Run("invalid target status", func(t *testing.T) {
		f := newActivityFixture(t)
		activity := f.recruitingActivity(10)

		_, err := f.service.SetStatus(ctx, activity.ID, f.organizer.ID, "PAUSED")
		assert.True(t, errors.Is(err, apperrors.ErrInvalidStatus))
	})
}

func TestCancelActivity(t *testing.T) {
	ctx := context.Background()

	t.Run("organizer cancel cascades", func(t *testing.T) {
		f := newActivityFixture(t)
		activity := f.recruitingActivity(10)
		user := f.store.addUser("alice")
		_, err := f.enrollment.Enroll(ctx, activity.ID, user.ID)
		require.NoError(t, err)

		require.NoError(t, f.service.CancelActivity(ctx, activity.ID, f.organizer.ID))
		assert.Equal(t, models.StatusCancelled, f.store.activities[activity.ID].Status)
		assert.Equal(t, models.EnrollmentCancelled, f.store.enrollments[activity.ID][user.ID].Status)
	})

	t.Run("rejected once started", func(t *testing.T) {
		f := newActivityFixture(t)
		activity := f.store.addActivity(models.Activity{
			Name:                 "Running Game",
			StartTime:            f.now.Add(-time.Hour),
			EndTime:              f.now.Add(time.Hour),
			RegistrationDeadline: f.now.Add(-2 * time.Hour),
			MaxParticipants:      10,
			Status:               models.StatusRecruiting,
			OrganizerID:          f.organizer.ID,
			CategoryID:           f.category.ID,
		})

		err := f.service.CancelActivity(ctx, activity.ID, f.organizer.ID)
		assert.True(t, errors.Is(err, apperrors.ErrActivityNotEditable))
	})

	t.Run("admin cancel ignores the edit gate but not terminal states", func(t *testing.T) {
		f := newActivityFixture(t)
		running := f.store.addActivity(models.Activity{
			Name:                 "Running Game",
			StartTime:            f.now.Add(-time.Hour),
			EndTime:              f.now.Add(time.Hour),
			RegistrationDeadline: f.now.Add(-2 * time.Hour),
			MaxParticipants:      10,
			Status:               models.StatusOngoing,
			OrganizerID:          f.organizer.ID,
			CategoryID:           f.category.ID,
		})

		require.NoError(t, f.service.CancelActivityAsAdmin(ctx, running.ID))
		assert.Equal(t, models.StatusCancelled, f.store.activities[running.ID].Status)

		err := f.service.CancelActivityAsAdmin(ctx, running.ID)
		assert.True(t, errors.Is(err, apperrors.ErrActivityNotEditable))
	})
}

func TestActivityLists(t *testing.T) {
	ctx := context.Background()

	t.Run("list recomputes statuses on the returned page", func(t *testing.T) {
		f := newActivityFixture(t)
		f.recruitingActivity(10)
		f.store.addActivity(models.Activity{
			Name:                 "Past Game",
			StartTime:            f.now.Add(-4 * time.Hour),
			EndTime:              f.now.Add(-2 * time.Hour),
			RegistrationDeadline: f.now.Add(-24 * time.Hour),
			MaxParticipants:      10,
			Status:               models.StatusRecruiting,
			OrganizerID:          f.organizer.ID,
			CategoryID:           f.category.ID,
		})

		resp, err := f.service.GetActivities(ctx, dto.ActivityQuery{Page: 1, PageSize: 20})
		require.NoError(t, err)
		require.Len(t, resp.Items, 2)

		statuses := map[string]string{}
		for _, item := range resp.Items {
			statuses[item.Name] = item.Status
		}
		assert.Equal(t, string(models.StatusRecruiting), statuses["Sunday Basketball"])
		assert.Equal(t, string(models.StatusFinished), statuses["Past Game"])
	})

	t.Run("my activities filters by organizer", func(t *testing.T) {
		f := newActivityFixture(t)
		f.recruitingActivity(10)
		other := f.store.addUser("other")
		f.store.addActivity(models.Activity{
			Name:                 "Other Game",
			StartTime:            f.now.Add(48 * time.Hour),
			EndTime:              f.now.Add(50 * time.Hour),
			RegistrationDeadline: f.now.Add(24 * time.Hour),
			MaxParticipants:      5,
			Status:               models.StatusRecruiting,
			OrganizerID:          other.ID,
			CategoryID:           f.category.ID,
		})

		resp, err := f.service.GetMyActivities(ctx, f.organizer.ID, dto.ActivityQuery{})
		require.NoError(t, err)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "Sunday Basketball", resp.Items[0].Name)
	})

	t.Run("enrolled activities follow active enrollments", func(t *testing.T) {
		f := newActivityFixture(t)
		activity := f.recruitingActivity(10)
		user := f.store.addUser("alice")
		_, err := f.enrollment.Enroll(ctx, activity.ID, user.ID)
		require.NoError(t, err)

		resp, err := f.service.GetMyEnrolledActivities(ctx, user.ID, dto.ActivityQuery{})
		require.NoError(t, err)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, 1, resp.Items[0].EnrolledCount)

		require.NoError(t, f.enrollment.CancelEnrollment(ctx, activity.ID, user.ID))

		resp, err = f.service.GetMyEnrolledActivities(ctx, user.ID, dto.ActivityQuery{})
		require.NoError(t, err)
		assert.Empty(t, resp.Items)
	})
}

// TestConcurrentCapLoweringNeverOvershoots races admissions against an
// organizer edit that lowers the cap. The store runs its cap check and
// the write as one locked unit, so whichever interleaving wins, the
// enrolled count never ends up above the stored cap.
func TestConcurrentCapLoweringNeverOvershoots(t *testing.T) {
	ctx := context.Background()

	for round := 0; round < 20; round++ {
		f := newActivityFixture(t)
		activity := f.recruitingActivity(10)

		userIDs := make([]int64, 10)
		for i := range userIDs {
			userIDs[i] = f.store.addUser(fmt.Sprintf("racer%d", i)).ID
		}

		var wg sync.WaitGroup
		for _, userID := range userIDs {
			wg.Add(1)
			go func(userID int64) {
				defer wg.Done()
				_, _ = f.enrollment.Enroll(ctx, activity.ID, userID)
			}(userID)
		}
		lower := 3
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.service.UpdateActivity(ctx, activity.ID, f.organizer.ID, &dto.UpdateActivityRequest{MaxParticipants: &lower})
		}()
		wg.Wait()

		count, err := (&fakeEnrollmentStore{s: f.store}).CountEnrolled(ctx, activity.ID)
		require.NoError(t, err)
		stored, err := (&fakeActivityStore{s: f.store}).GetByID(ctx, activity.ID)
		require.NoError(t, err)
		assert.LessOrEqual(t, count, stored.MaxParticipants,
			"round %d: %d enrolled with a cap of %d", round, count, stored.MaxParticipants)
	}
}

func TestGetActivityEnrollments(t *testing.T) {
	ctx := context.Background()
	f := newActivityFixture(t)
	activity := f.recruitingActivity(10)

	for _, name := range []string{"a", "b", "c"} {
		user := f.store.addUser(name)
		_, err := f.enrollment.Enroll(ctx, activity.ID, user.ID)
		require.NoError(t, err)
	}

	enrollments, err := f.service.GetActivityEnrollments(ctx, activity.ID)
	require.NoError(t, err)
	assert.Len(t, enrollments, 3)
	for _, e := range enrollments {
		assert.Equal(t, string(models.EnrollmentEnrolled), e.Status)
		assert.NotNil(t, e.User)
	}
}
