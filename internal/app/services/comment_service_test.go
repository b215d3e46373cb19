package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emre/gatherly/internal/app/models"
	"github.com/emre/gatherly/internal/app/models/dto"
	"github.com/emre/gatherly/internal/pkg/apperrors"
)

// newCommentFixture seeds a finished activity with "carol" holding an
// active enrollment in it.
func newCommentFixture(t *testing.T) (*memStore, CommentService, *models.Activity, *models.User) {
	t.Helper()
	store := newMemStore()
	organizer := store.addUser("organizer")
	commenter := store.addUser("carol")
	category := store.addCategory("Sports")

	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	activity := store.addActivity(models.Activity{
		Name:                 "Sunday Football",
		Location:             "Riverside Park",
		StartTime:            now.Add(-2 * time.Hour),
		EndTime:              now.Add(-time.Hour),
		RegistrationDeadline: now.Add(-3 * time.Hour),
		MaxParticipants:      10,
		Status:               models.StatusFinished,
		FeeType:              models.FeeFree,
		OrganizerID:          organizer.ID,
		CategoryID:           category.ID,
	})
	store.addEnrollment(activity.ID, commenter.ID, models.EnrollmentEnrolled)

	svc := NewCommentService(
		&fakeCommentStore{s: store},
		&fakeActivityStore{s: store},
		&fakeEnrollmentStore{s: store},
		&fakeUserStore{s: store},
		zerolog.Nop(),
	)
	return store, svc, activity, commenter
}

func TestAddComment(t *testing.T) {
	ctx := context.Background()

	t.Run("attaches comment with rating", func(t *testing.T) {
		_, svc, activity, commenter := newCommentFixture(t)

		rating := 5
		resp, err := svc.AddComment(ctx, activity.ID, commenter.ID, &dto.CreateCommentRequest{
			Content: "Great game, see you next week",
			Rating:  &rating,
		})
		require.NoError(t, err)

		assert.Equal(t, activity.ID, resp.ActivityID)
		assert.Equal(t, "Great game, see you next week", resp.Content)
		require.NotNil(t, resp.Rating)
		assert.Equal(t, 5, *resp.Rating)
		require.NotNil(t, resp.User)
		assert.Equal(t, "carol", resp.User.Username)
	})

	t.Run("rejects users without an active enrollment", func(t *testing.T) {
		store, svc, activity, _ := newCommentFixture(t)
		stranger := store.addUser("stranger")

		_, err := svc.AddComment(ctx, activity.ID, stranger.ID, &dto.CreateCommentRequest{Content: "drive-by"})
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("rejects users whose enrollment was cancelled", func(t *testing.T) {
		store, svc, activity, _ := newCommentFixture(t)
		quitter := store.addUser("quitter")
		store.addEnrollment(activity.ID, quitter.ID, models.EnrollmentCancelled)

		_, err := svc.AddComment(ctx, activity.ID, quitter.ID, &dto.CreateCommentRequest{Content: "almost went"})
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("rejects unknown activity", func(t *testing.T) {
		_, svc, _, commenter := newCommentFixture(t)

		_, err := svc.AddComment(ctx, 9999, commenter.ID, &dto.CreateCommentRequest{Content: "hello"})
		assert.ErrorIs(t, err, apperrors.ErrActivityNotFound)
	})
}

func TestGetComments(t *testing.T) {
	ctx := context.Background()

	t.Run("pages newest first with the average rating", func(t *testing.T) {
		store, svc, activity, commenter := newCommentFixture(t)
		second := store.addUser("dave")
		store.addEnrollment(activity.ID, second.ID, models.EnrollmentEnrolled)

		four, five := 4, 5
		_, err := svc.AddComment(ctx, activity.ID, commenter.ID, &dto.CreateCommentRequest{Content: "first", Rating: &four})
		require.NoError(t, err)
		_, err = svc.AddComment(ctx, activity.ID, second.ID, &dto.CreateCommentRequest{Content: "second", Rating: &five})
		require.NoError(t, err)
		_, err = svc.AddComment(ctx, activity.ID, commenter.ID, &dto.CreateCommentRequest{Content: "third"})
		require.NoError(t, err)

		resp, err := svc.GetComments(ctx, activity.ID, 1, 2)
		require.NoError(t, err)
		require.Len(t, resp.Items, 2)
		assert.Equal(t, "third", resp.Items[0].Content)
		assert.Equal(t, "second", resp.Items[1].Content)
		assert.Equal(t, int64(3), resp.PaginationInfo.TotalItems)
		assert.Equal(t, 2, resp.PaginationInfo.TotalPages)

		// The unrated comment does not drag the average down.
		require.NotNil(t, resp.AverageRating)
		assert.Equal(t, 4.5, *resp.AverageRating)

		rest, err := svc.GetComments(ctx, activity.ID, 2, 2)
		require.NoError(t, err)
		require.Len(t, rest.Items, 1)
		assert.Equal(t, "first", rest.Items[0].Content)
	})

	t.Run("no ratings means no average", func(t *testing.T) {
		_, svc, activity, commenter := newCommentFixture(t)

		_, err := svc.AddComment(ctx, activity.ID, commenter.ID, &dto.CreateCommentRequest{Content: "nice"})
		require.NoError(t, err)

		resp, err := svc.GetComments(ctx, activity.ID, 1, 10)
		require.NoError(t, err)
		require.Len(t, resp.Items, 1)
		assert.Nil(t, resp.AverageRating)
	})

	t.Run("rejects unknown activity", func(t *testing.T) {
		_, svc, _, _ := newCommentFixture(t)

		_, err := svc.GetComments(ctx, 9999, 1, 10)
		assert.ErrorIs(t, err, apperrors.ErrActivityNotFound)
	})
}

func TestUpdateComment(t *testing.T) {
	ctx := context.Background()

	t.Run("author edits content and rating", func(t *testing.T) {
		_, svc, activity, commenter := newCommentFixture(t)

		three := 3
		created, err := svc.AddComment(ctx, activity.ID, commenter.ID, &dto.CreateCommentRequest{Content: "ok game", Rating: &three})
		require.NoError(t, err)

		content := "great game after all"
		five := 5
		resp, err := svc.UpdateComment(ctx, created.ID, commenter.ID, &dto.UpdateCommentRequest{Content: &content, Rating: &five})
		require.NoError(t, err)
		assert.Equal(t, "great game after all", resp.Content)
		require.NotNil(t, resp.Rating)
		assert.Equal(t, 5, *resp.Rating)
	})

	t.Run("absent fields are left untouched", func(t *testing.T) {
		_, svc, activity, commenter := newCommentFixture(t)

		three := 3
		created, err := svc.AddComment(ctx, activity.ID, commenter.ID, &dto.CreateCommentRequest{Content: "ok game", Rating: &three})
		require.NoError(t, err)

		content := "edited"
		resp, err := svc.UpdateComment(ctx, created.ID, commenter.ID, &dto.UpdateCommentRequest{Content: &content})
		require.NoError(t, err)
		assert.Equal(t, "edited", resp.Content)
		require.NotNil(t, resp.Rating)
		assert.Equal(t, 3, *resp.Rating)
	})

	t.Run("non-author is forbidden", func(t *testing.T) {
		store, svc, activity, commenter := newCommentFixture(t)
		other := store.addUser("other")

		created, err := svc.AddComment(ctx, activity.ID, commenter.ID, &dto.CreateCommentRequest{Content: "mine"})
		require.NoError(t, err)

		content := "hijacked"
		_, err = svc.UpdateComment(ctx, created.ID, other.ID, &dto.UpdateCommentRequest{Content: &content})
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("unknown comment is not found", func(t *testing.T) {
		_, svc, _, commenter := newCommentFixture(t)

		content := "ghost"
		_, err := svc.UpdateComment(ctx, 9999, commenter.ID, &dto.UpdateCommentRequest{Content: &content})
		assert.ErrorIs(t, err, apperrors.ErrCommentNotFound)
	})
}

func TestDeleteComment(t *testing.T) {
	ctx := context.Background()

	t.Run("author deletes own comment", func(t *testing.T) {
		_, svc, activity, commenter := newCommentFixture(t)

		created, err := svc.AddComment(ctx, activity.ID, commenter.ID, &dto.CreateCommentRequest{Content: "oops"})
		require.NoError(t, err)

		require.NoError(t, svc.DeleteComment(ctx, created.ID, commenter.ID))

		resp, err := svc.GetComments(ctx, activity.ID, 1, 10)
		require.NoError(t, err)
		assert.Empty(t, resp.Items)
	})

	t.Run("non-author is forbidden", func(t *testing.T) {
		store, svc, activity, commenter := newCommentFixture(t)
		other := store.addUser("other")

		created, err := svc.AddComment(ctx, activity.ID, commenter.ID, &dto.CreateCommentRequest{Content: "mine"})
		require.NoError(t, err)

		err = svc.DeleteComment(ctx, created.ID, other.ID)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("admin deletes regardless of author", func(t *testing.T) {
		_, svc, activity, commenter := newCommentFixture(t)

		created, err := svc.AddComment(ctx, activity.ID, commenter.ID, &dto.CreateCommentRequest{Content: "reported"})
		require.NoError(t, err)

		require.NoError(t, svc.DeleteCommentAsAdmin(ctx, created.ID))

		err = svc.DeleteCommentAsAdmin(ctx, created.ID)
		assert.ErrorIs(t, err, apperrors.ErrCommentNotFound)
	})
}

func TestGetUserComments(t *testing.T) {
	ctx := context.Background()

	t.Run("pages the caller's comments with activity references", func(t *testing.T) {
		_, svc, activity, commenter := newCommentFixture(t)

		_, err := svc.AddComment(ctx, activity.ID, commenter.ID, &dto.CreateCommentRequest{Content: "first"})
		require.NoError(t, err)
		_, err = svc.AddComment(ctx, activity.ID, commenter.ID, &dto.CreateCommentRequest{Content: "second"})
		require.NoError(t, err)

		resp, err := svc.GetUserComments(ctx, commenter.ID, 1, 10)
		require.NoError(t, err)
		require.Len(t, resp.Items, 2)
		assert.Equal(t, int64(2), resp.PaginationInfo.TotalItems)
		for _, item := range resp.Items {
			assert.Equal(t, commenter.ID, item.UserID)
			require.NotNil(t, item.Activity)
			assert.Equal(t, "Sunday Football", item.Activity.Name)
		}
	})

	t.Run("empty history yields an empty page", func(t *testing.T) {
		store, svc, _, _ := newCommentFixture(t)
		silent := store.addUser("silent")

		resp, err := svc.GetUserComments(ctx, silent.ID, 1, 10)
		require.NoError(t, err)
		assert.Empty(t, resp.Items)
		assert.Equal(t, int64(0), resp.PaginationInfo.TotalItems)
	})
}
