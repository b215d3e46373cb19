package services

import (
	"context"
	"math"

	"github.com/rs/zerolog"

	"github.com/emre/gatherly/internal/app/models"
	"github.com/emre/gatherly/internal/app/models/dto"
	"github.com/emre/gatherly/internal/pkg/apperrors"
	"github.com/emre/gatherly/internal/pkg/helpers"
)

// CommentService defines the interface for activity comment operations
type CommentService interface {
	AddComment(ctx context.Context, activityID, userID int64, req *dto.CreateCommentRequest) (*dto.CommentResponse, error)
	GetComments(ctx context.Context, activityID int64, page, pageSize int) (*dto.CommentListResponse, error)
	GetUserComments(ctx context.Context, userID int64, page, pageSize int) (*dto.CommentListResponse, error)
	UpdateComment(ctx context.Context, commentID, userID int64, req *dto.UpdateCommentRequest) (*dto.CommentResponse, error)
	DeleteComment(ctx context.Context, commentID, userID int64) error
	DeleteCommentAsAdmin(ctx context.Context, commentID int64) error
}

// commentServiceImpl implements CommentService
type commentServiceImpl struct {
	commentStore    CommentStore
	activityStore   ActivityStore
	enrollmentStore EnrollmentStore
	userStore       UserStore
	logger          zerolog.Logger
}

// NewCommentService creates a new CommentService
func NewCommentService(commentStore CommentStore, activityStore ActivityStore, enrollmentStore EnrollmentStore, userStore UserStore, logger zerolog.Logger) CommentService {
	return &commentServiceImpl{
		commentStore:    commentStore,
		activityStore:   activityStore,
		enrollmentStore: enrollmentStore,
		userStore:       userStore,
		logger:          logger,
	}
}

// AddComment attaches a comment, with an optional 1..5 rating, to an
// existing activity. Only users holding an active enrollment in the
// activity may comment on it.
func (s *commentServiceImpl) AddComment(ctx context.Context, activityID, userID int64, req *dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	exists, err := s.activityStore.Exists(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.ErrActivityNotFound
	}

	enrollment, err := s.enrollmentStore.FindActive(ctx, activityID, userID)
	if err != nil {
		return nil, err
	}
	if enrollment == nil {
		return nil, apperrors.NewForbiddenError("only participants can comment on this activity")
	}

	comment := &models.Comment{
		ActivityID: activityID,
		UserID:     userID,
		Content:    req.Content,
		Rating:     req.Rating,
	}

	if _, err := s.commentStore.Create(ctx, comment); err != nil {
		return nil, err
	}

	user, err := s.userStore.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	comment.User = user

	resp := dto.NewCommentResponse(comment)
	return &resp, nil
}

// GetComments lists one page of an activity's comments, newest first,
// together with the average rating over all of its rated comments
func (s *commentServiceImpl) GetComments(ctx context.Context, activityID int64, page, pageSize int) (*dto.CommentListResponse, error) {
	exists, err := s.activityStore.Exists(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.ErrActivityNotFound
	}

	comments, total, avgRating, err := s.commentStore.ListByActivity(ctx, activityID, page, pageSize)
	if err != nil {
		return nil, err
	}

	if avgRating != nil {
		rounded := math.Round(*avgRating*10) / 10
		avgRating = &rounded
	}

	items := make([]dto.CommentResponse, 0, len(comments))
	for _, c := range comments {
		items = append(items, dto.NewCommentResponse(c))
	}

	return &dto.CommentListResponse{
		Items:          items,
		AverageRating:  avgRating,
		PaginationInfo: helpers.NewPaginationInfo(total, page, pageSize),
	}, nil
}

// GetUserComments lists one page of a user's own comments, newest first,
// each carrying a reference to the activity it belongs to
func (s *commentServiceImpl) GetUserComments(ctx context.Context, userID int64, page, pageSize int) (*dto.CommentListResponse, error) {
	comments, total, err := s.commentStore.ListByUser(ctx, userID, page, pageSize)
	if err != nil {
		return nil, err
	}

	items := make([]dto.CommentResponse, 0, len(comments))
	for _, c := range comments {
		items = append(items, dto.NewCommentResponse(c))
	}

	return &dto.CommentListResponse{
		Items:          items,
		PaginationInfo: helpers.NewPaginationInfo(total, page, pageSize),
	}, nil
}

// UpdateComment edits a comment. Only its author may do so.
func (s *commentServiceImpl) UpdateComment(ctx context.Context, commentID, userID int64, req *dto.UpdateCommentRequest) (*dto.CommentResponse, error) {
	comment, err := s.commentStore.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}

	if comment.UserID != userID {
		return nil, apperrors.NewForbiddenError("you can only edit your own comments")
	}

	if req.Content != nil {
		comment.Content = *req.Content
	}
	if req.Rating != nil {
		comment.Rating = req.Rating
	}

	if err := s.commentStore.Update(ctx, comment); err != nil {
		return nil, err
	}

	user, err := s.userStore.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	comment.User = user

	resp := dto.NewCommentResponse(comment)
	return &resp, nil
}

// DeleteComment removes a comment. Only its author may do so.
func (s *commentServiceImpl) DeleteComment(ctx context.Context, commentID, userID int64) error {
	comment, err := s.commentStore.GetByID(ctx, commentID)
	if err != nil {
		return err
	}

	if comment.UserID != userID {
		return apperrors.NewForbiddenError("you can only delete your own comments")
	}

	return s.commentStore.Delete(ctx, commentID)
}

// DeleteCommentAsAdmin removes any comment without an ownership check
func (s *commentServiceImpl) DeleteCommentAsAdmin(ctx context.Context, commentID int64) error {
	if err := s.commentStore.Delete(ctx, commentID); err != nil {
		return err
	}

	s.logger.Warn().Int64("commentID", commentID).Msg("Comment deleted by admin")
	return nil
}
