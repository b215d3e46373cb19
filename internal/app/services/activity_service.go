package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/emre/gatherly/internal/app/lifecycle"
	"github.com/emre/gatherly/internal/app/models"
	"github.com/emre/gatherly/internal/app/models/dto"
	"github.com/emre/gatherly/internal/pkg/apperrors"
	"github.com/emre/gatherly/internal/pkg/helpers"
)

// ActivityService defines the interface for activity lifecycle operations
type ActivityService interface {
	CreateActivity(ctx context.Context, organizerID int64, req *dto.CreateActivityRequest) (*dto.ActivityResponse, error)
	GetActivityByID(ctx context.Context, id int64) (*dto.ActivityResponse, error)
	GetActivities(ctx context.Context, q dto.ActivityQuery) (*dto.ActivityListResponse, error)
	GetMyActivities(ctx context.Context, userID int64, q dto.ActivityQuery) (*dto.ActivityListResponse, error)
	GetMyEnrolledActivities(ctx context.Context, userID int64, q dto.ActivityQuery) (*dto.ActivityListResponse, error)
	UpdateActivity(ctx context.Context, id, requesterID int64, req *dto.UpdateActivityRequest) (*dto.ActivityResponse, error)
	SetStatus(ctx context.Context, id, requesterID int64, status string) (*dto.ActivityResponse, error)
	CancelActivity(ctx context.Context, id, requesterID int64) error
	DeleteActivityAsAdmin(ctx context.Context, id int64) error
	SetStatusAsAdmin(ctx context.Context, id int64, status string) (*dto.ActivityResponse, error)
	CancelActivityAsAdmin(ctx context.Context, id int64) error
	GetActivityEnrollments(ctx context.Context, id int64) ([]*dto.EnrollmentResponse, error)
	GetCategories(ctx context.Context) ([]dto.CategoryResponse, error)
}

// activityServiceImpl implements ActivityService
type activityServiceImpl struct {
	activityStore   ActivityStore
	enrollmentStore EnrollmentStore
	categoryStore   CategoryStore
	authz           activityAuthorizer
	clock           lifecycle.Clock
	logger          zerolog.Logger
}

// NewActivityService creates a new ActivityService
func NewActivityService(
	activityStore ActivityStore,
	enrollmentStore EnrollmentStore,
	categoryStore CategoryStore,
	authz activityAuthorizer,
	clock lifecycle.Clock,
	logger zerolog.Logger,
) ActivityService {
	return &activityServiceImpl{
		activityStore:   activityStore,
		enrollmentStore: enrollmentStore,
		categoryStore:   categoryStore,
		authz:           authz,
		clock:           clock,
		logger:          logger,
	}
}

func parseEventTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, apperrors.NewBadRequestError("time fields must be RFC3339 timestamps")
	}
	return t, nil
}

// CreateActivity validates the schedule and persists a new activity.
// The stored status always starts as PREPARING.
func (s *activityServiceImpl) CreateActivity(ctx context.Context, organizerID int64, req *dto.CreateActivityRequest) (*dto.ActivityResponse, error) {
	now := s.clock.Now()

	start, err := parseEventTime(req.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := parseEventTime(req.EndTime)
	if err != nil {
		return nil, err
	}
	deadline, err := parseEventTime(req.RegistrationDeadline)
	if err != nil {
		return nil, err
	}

	if err := lifecycle.ValidateScheduleAtCreate(start, end, deadline, now); err != nil {
		return nil, err
	}

	if _, err := s.categoryStore.GetByID(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	activity := &models.Activity{
		Name:                 req.Name,
		Description:          req.Description,
		CoverImageURL:        req.CoverImageURL,
		Location:             req.Location,
		StartTime:            start,
		EndTime:              end,
		RegistrationDeadline: deadline,
		MaxParticipants:      req.MaxParticipants,
		Status:               models.StatusPreparing,
		FeeType:              models.FeeFree,
		OrganizerID:          organizerID,
		CategoryID:           req.CategoryID,
	}
	if req.FeeType != nil {
		activity.FeeType = models.FeeType(*req.FeeType)
	}
	if req.FeeAmount != nil {
		activity.FeeAmount = *req.FeeAmount
	}

	id, err := s.activityStore.Create(ctx, activity, req.ImageURLs)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("activityID", id).
		Int64("organizerID", organizerID).
		Msg("Activity created")

	return s.GetActivityByID(ctx, id)
}

// GetActivityByID retrieves one activity. Reading recomputes the
// time-derived status and persists it when it changed, so repeated reads
// converge on the same value.
func (s *activityServiceImpl) GetActivityByID(ctx context.Context, id int64) (*dto.ActivityResponse, error) {
	now := s.clock.Now()

	activity, err := s.activityStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.refreshStatus(ctx, activity, now); err != nil {
		return nil, err
	}

	count, err := s.enrollmentStore.CountEnrolled(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := dto.NewActivityResponse(activity, count)
	return &resp, nil
}

// refreshStatus derives the status for the given instant and persists it
// when it differs from the stored one.
func (s *activityServiceImpl) refreshStatus(ctx context.Context, activity *models.Activity, now time.Time) error {
	derived := lifecycle.DeriveStatus(activity, now)
	if derived == activity.Status {
		return nil
	}

	if err := s.activityStore.UpdateStatus(ctx, activity.ID, derived); err != nil {
		return err
	}

	s.logger.Debug().
		Int64("activityID", activity.ID).
		Str("from", string(activity.Status)).
		Str("to", string(derived)).
		Msg("Activity status advanced")

	activity.Status = derived
	return nil
}

func normalizeQuery(q dto.ActivityQuery) dto.ActivityQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = helpers.DefaultPageSize
	}
	if q.PageSize > helpers.MaxPageSize {
		q.PageSize = helpers.MaxPageSize
	}
	return q
}

type listFn func(ctx context.Context, q dto.ActivityQuery) ([]*models.Activity, int64, error)

func (s *activityServiceImpl) buildList(ctx context.Context, q dto.ActivityQuery, list listFn) (*dto.ActivityListResponse, error) {
	now := s.clock.Now()
	q = normalizeQuery(q)

	activities, total, err := list(ctx, q)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(activities))
	for _, a := range activities {
		if err := s.refreshStatus(ctx, a, now); err != nil {
			return nil, err
		}
		ids = append(ids, a.ID)
	}

	counts, err := s.activityStore.CountEnrolledByActivityIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ActivityResponse, 0, len(activities))
	for _, a := range activities {
		items = append(items, dto.NewActivityResponse(a, counts[a.ID]))
	}

	return &dto.ActivityListResponse{
		Items:          items,
		PaginationInfo: helpers.NewPaginationInfo(total, q.Page, q.PageSize),
	}, nil
}

// GetActivities retrieves activities with filtering and pagination
func (s *activityServiceImpl) GetActivities(ctx context.Context, q dto.ActivityQuery) (*dto.ActivityListResponse, error) {
	return s.buildList(ctx, q, s.activityStore.List)
}

// GetMyActivities retrieves the activities the user organizes
func (s *activityServiceImpl) GetMyActivities(ctx context.Context, userID int64, q dto.ActivityQuery) (*dto.ActivityListResponse, error) {
	return s.buildList(ctx, q, func(ctx context.Context, q dto.ActivityQuery) ([]*models.Activity, int64, error) {
		return s.activityStore.ListByOrganizer(ctx, userID, q)
	})
}

// GetMyEnrolledActivities retrieves the activities the user is enrolled in
func (s *activityServiceImpl) GetMyEnrolledActivities(ctx context.Context, userID int64, q dto.ActivityQuery) (*dto.ActivityListResponse, error) {
	return s.buildList(ctx, q, func(ctx context.Context, q dto.ActivityQuery) ([]*models.Activity, int64, error) {
		return s.activityStore.ListEnrolledBy(ctx, userID, q)
	})
}

// UpdateActivity applies a partial update. Edits are allowed only while
// the activity has not started and is not in a terminal state. Lowering
// max_participants below the current enrolled count is rejected.
func (s *activityServiceImpl) UpdateActivity(ctx context.Context, id, requesterID int64, req *dto.UpdateActivityRequest) (*dto.ActivityResponse, error) {
	now := s.clock.Now()

	activity, err := s.activityStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authz.CanManageActivity(ctx, requesterID, activity); err != nil {
		return nil, err
	}

	if err := s.refreshStatus(ctx, activity, now); err != nil {
		return nil, err
	}
	if !lifecycle.CanModify(activity, now) {
		return nil, apperrors.ErrActivityNotEditable
	}

	if req.Name != nil {
		activity.Name = *req.Name
	}
	if req.Description != nil {
		activity.Description = req.Description
	}
	if req.CoverImageURL != nil {
		activity.CoverImageURL = req.CoverImageURL
	}
	if req.Location != nil {
		activity.Location = *req.Location
	}
	if req.StartTime != nil {
		if activity.StartTime, err = parseEventTime(*req.StartTime); err != nil {
			return nil, err
		}
	}
	if req.EndTime != nil {
		if activity.EndTime, err = parseEventTime(*req.EndTime); err != nil {
			return nil, err
		}
	}
	if req.RegistrationDeadline != nil {
		if activity.RegistrationDeadline, err = parseEventTime(*req.RegistrationDeadline); err != nil {
			return nil, err
		}
	}
	if req.FeeType != nil {
		activity.FeeType = models.FeeType(*req.FeeType)
	}
	if req.FeeAmount != nil {
		activity.FeeAmount = *req.FeeAmount
	}
	if req.CategoryID != nil {
		if _, err := s.categoryStore.GetByID(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		activity.CategoryID = *req.CategoryID
	}

	if err := lifecycle.ValidateSchedule(activity.StartTime, activity.EndTime, activity.RegistrationDeadline); err != nil {
		return nil, err
	}

	if req.MaxParticipants != nil {
		activity.MaxParticipants = *req.MaxParticipants
	}

	// The store write re-checks the cap against the enrolled count under
	// the activity row lock, so a concurrent admission cannot slip in
	// between this read snapshot and the update.
	if err := s.activityStore.Update(ctx, activity); err != nil {
		return nil, err
	}

	if req.ImageURLs != nil {
		if err := s.activityStore.ReplaceImages(ctx, id, *req.ImageURLs); err != nil {
			return nil, err
		}
	}

	return s.GetActivityByID(ctx, id)
}

func (s *activityServiceImpl) applyStatus(ctx context.Context, activity *models.Activity, now time.Time, target models.ActivityStatus) error {
	if err := lifecycle.ValidateManualTransition(activity, now, target); err != nil {
		return err
	}

	if target == models.StatusCancelled {
		cancelled, err := s.enrollmentStore.CancelActivityCascade(ctx, activity.ID)
		if err != nil {
			return err
		}
		s.logger.Info().
			Int64("activityID", activity.ID).
			Int64("enrollmentsCancelled", cancelled).
			Msg("Activity cancelled")
		return nil
	}

	return s.activityStore.UpdateStatus(ctx, activity.ID, target)
}

// SetStatus applies an organizer-requested status change
func (s *activityServiceImpl) SetStatus(ctx context.Context, id, requesterID int64, status string) (*dto.ActivityResponse, error) {
	now := s.clock.Now()
	target := models.ActivityStatus(status)

	activity, err := s.activityStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authz.CanManageActivity(ctx, requesterID, activity); err != nil {
		return nil, err
	}

	if err := s.applyStatus(ctx, activity, now, target); err != nil {
		return nil, err
	}

	return s.GetActivityByID(ctx, id)
}

// CancelActivity is the organizer cancel: allowed only while the
// activity can still be modified, and cascades enrollment cancellation
func (s *activityServiceImpl) CancelActivity(ctx context.Context, id, requesterID int64) error {
	now := s.clock.Now()

	activity, err := s.activityStore.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.authz.CanManageActivity(ctx, requesterID, activity); err != nil {
		return err
	}

	if err := s.refreshStatus(ctx, activity, now); err != nil {
		return err
	}
	if !lifecycle.CanModify(activity, now) {
		return apperrors.NewCustomError(apperrors.ErrActivityNotEditable, "activity can no longer be cancelled")
	}

	_, err = s.enrollmentStore.CancelActivityCascade(ctx, id)
	return err
}

// DeleteActivityAsAdmin hard-deletes an activity and its dependent rows
func (s *activityServiceImpl) DeleteActivityAsAdmin(ctx context.Context, id int64) error {
	if err := s.activityStore.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Warn().Int64("activityID", id).Msg("Activity deleted by admin")
	return nil
}

// SetStatusAsAdmin applies a status change without an ownership check.
// Terminal-state rules still hold.
func (s *activityServiceImpl) SetStatusAsAdmin(ctx context.Context, id int64, status string) (*dto.ActivityResponse, error) {
	now := s.clock.Now()
	target := models.ActivityStatus(status)

	activity, err := s.activityStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.applyStatus(ctx, activity, now, target); err != nil {
		return nil, err
	}

	return s.GetActivityByID(ctx, id)
}

// CancelActivityAsAdmin cancels any activity that is not already in a
// terminal state, regardless of the edit gate
func (s *activityServiceImpl) CancelActivityAsAdmin(ctx context.Context, id int64) error {
	activity, err := s.activityStore.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if activity.Status.IsTerminal() {
		return apperrors.NewCustomError(apperrors.ErrActivityNotEditable, "activity is already finished or cancelled")
	}

	_, err = s.enrollmentStore.CancelActivityCascade(ctx, id)
	return err
}

// GetActivityEnrollments lists the active participants of an activity
// in enrollment order
func (s *activityServiceImpl) GetActivityEnrollments(ctx context.Context, id int64) ([]*dto.EnrollmentResponse, error) {
	if _, err := s.activityStore.GetByID(ctx, id); err != nil {
		return nil, err
	}

	enrollments, err := s.enrollmentStore.ListEnrolled(ctx, id)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.EnrollmentResponse, 0, len(enrollments))
	for _, e := range enrollments {
		responses = append(responses, dto.NewEnrollmentResponse(e))
	}

	return responses, nil
}

// GetCategories lists all activity categories
func (s *activityServiceImpl) GetCategories(ctx context.Context) ([]dto.CategoryResponse, error) {
	categories, err := s.categoryStore.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CategoryResponse, 0, len(categories))
	for _, c := range categories {
		responses = append(responses, dto.CategoryResponse{ID: c.ID, Name: c.Name})
	}

	return responses, nil
}
