package dto

import (
	"time"

	"github.com/emre/gatherly/internal/app/models"
)

// CreateCommentRequest is the payload for commenting on an activity
type CreateCommentRequest struct {
	Content string `json:"content" binding:"required,max=1000" example:"Great game, see you next week"`
	Rating  *int   `json:"rating,omitempty" binding:"omitempty,min=1,max=5" example:"5"`
}

// UpdateCommentRequest is the payload for editing an existing comment.
// Absent fields are left untouched.
type UpdateCommentRequest struct {
	Content *string `json:"content,omitempty" binding:"omitempty,max=1000"`
	Rating  *int    `json:"rating,omitempty" binding:"omitempty,min=1,max=5" example:"4"`
}

// CommentResponse is the public representation of a comment
type CommentResponse struct {
	ID         int64                    `json:"id" example:"11"`
	ActivityID int64                    `json:"activityId" example:"1"`
	UserID     int64                    `json:"userId" example:"5"`
	Content    string                   `json:"content"`
	Rating     *int                     `json:"rating,omitempty" example:"5"`
	CreateTime time.Time                `json:"createTime"`
	User       *UserBasicResponse       `json:"user,omitempty"`
	Activity   *CommentActivityResponse `json:"activity,omitempty"`
}

// CommentActivityResponse is the minimal activity reference embedded in
// a user's comment history
type CommentActivityResponse struct {
	ID            int64   `json:"id" example:"1"`
	Name          string  `json:"name" example:"Sunday Basketball"`
	CoverImageURL *string `json:"coverImageUrl,omitempty"`
}

// CommentListResponse is a paginated comment list. AverageRating covers
// every rated comment of the activity, not just the returned page.
type CommentListResponse struct {
	Items          []CommentResponse `json:"items"`
	AverageRating  *float64          `json:"averageRating,omitempty" example:"4.5"`
	PaginationInfo PaginationInfo    `json:"pagination"`
}

// NewCommentResponse maps a comment model to a response
func NewCommentResponse(c *models.Comment) CommentResponse {
	resp := CommentResponse{
		ID:         c.ID,
		ActivityID: c.ActivityID,
		UserID:     c.UserID,
		Content:    c.Content,
		Rating:     c.Rating,
		CreateTime: c.CreateTime,
		User:       NewUserBasicResponse(c.User),
	}
	if c.Activity != nil {
		resp.Activity = &CommentActivityResponse{
			ID:            c.Activity.ID,
			Name:          c.Activity.Name,
			CoverImageURL: c.Activity.CoverImageURL,
		}
	}
	return resp
}
