package dto

import (
	"time"

	"github.com/emre/gatherly/internal/app/models"
)

// CreateActivityRequest is the payload for creating an activity
type CreateActivityRequest struct {
	Name                 string   `json:"name" binding:"required,max=120" example:"Sunday Basketball"`
	Description          *string  `json:"description,omitempty"`
	CoverImageURL        *string  `json:"coverImageUrl,omitempty" binding:"omitempty,url"`
	Location             string   `json:"location" binding:"required,max=200" example:"Riverside Court 3"`
	StartTime            string   `json:"startTime" binding:"required" example:"2026-06-07T14:00:00Z"`
	EndTime              string   `json:"endTime" binding:"required" example:"2026-06-07T16:00:00Z"`
	RegistrationDeadline string   `json:"registrationDeadline" binding:"required" example:"2026-06-06T20:00:00Z"`
	MaxParticipants      int      `json:"maxParticipants" binding:"required,min=1" example:"10"`
	FeeType              *string  `json:"feeType,omitempty" binding:"omitempty,oneof=FREE AA PREPAID_ALL PREPAID_REFUNDABLE"`
	FeeAmount            *float64 `json:"feeAmount,omitempty" binding:"omitempty,min=0"`
	CategoryID           int64    `json:"categoryId" binding:"required" example:"2"`
	ImageURLs            []string `json:"imageUrls,omitempty" binding:"omitempty,dive,url"`
}

// UpdateActivityRequest is the payload for updating an activity.
// All fields are optional; omitted fields keep their stored value.
type UpdateActivityRequest struct {
	Name                 *string  `json:"name,omitempty" binding:"omitempty,max=120"`
	Description          *string  `json:"description,omitempty"`
	CoverImageURL        *string  `json:"coverImageUrl,omitempty" binding:"omitempty,url"`
	Location             *string  `json:"location,omitempty" binding:"omitempty,max=200"`
	StartTime            *string  `json:"startTime,omitempty"`
	EndTime              *string  `json:"endTime,omitempty"`
	RegistrationDeadline *string  `json:"registrationDeadline,omitempty"`
	MaxParticipants      *int     `json:"maxParticipants,omitempty" binding:"omitempty,min=1"`
	FeeType              *string  `json:"feeType,omitempty" binding:"omitempty,oneof=FREE AA PREPAID_ALL PREPAID_REFUNDABLE"`
	FeeAmount            *float64 `json:"feeAmount,omitempty" binding:"omitempty,min=0"`
	CategoryID           *int64   `json:"categoryId,omitempty"`
	ImageURLs            *[]string `json:"imageUrls,omitempty"`
}

// UpdateStatusRequest is the payload for a manual status change
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required" example:"RECRUITING"`
}

// ActivityQuery carries list filters and pagination
type ActivityQuery struct {
	Page       int
	PageSize   int
	CategoryID *int64
	Status     *models.ActivityStatus
	FeeType    *models.FeeType
	Keyword    *string
	Sort       string
}

// ActivityResponse is the public representation of an activity
type ActivityResponse struct {
	ID                   int64              `json:"id" example:"1"`
	Name                 string             `json:"name" example:"Sunday Basketball"`
	Description          *string            `json:"description,omitempty"`
	CoverImageURL        *string            `json:"coverImageUrl,omitempty"`
	Location             string             `json:"location" example:"Riverside Court 3"`
	StartTime            time.Time          `json:"startTime"`
	EndTime              time.Time          `json:"endTime"`
	RegistrationDeadline time.Time          `json:"registrationDeadline"`
	MaxParticipants      int                `json:"maxParticipants" example:"10"`
	EnrolledCount        int                `json:"enrolledCount" example:"4"`
	Status               string             `json:"status" example:"RECRUITING"`
	FeeType              string             `json:"feeType" example:"FREE"`
	FeeAmount            float64            `json:"feeAmount" example:"0"`
	OrganizerID          int64              `json:"organizerId" example:"3"`
	Organizer            *UserBasicResponse `json:"organizer,omitempty"`
	CategoryID           int64              `json:"categoryId" example:"2"`
	Category             *CategoryResponse  `json:"category,omitempty"`
	ImageURLs            []string           `json:"imageUrls,omitempty"`
	CreatedAt            time.Time          `json:"createdAt"`
	UpdatedAt            time.Time          `json:"updatedAt"`
}

// ActivityListResponse is a paginated activity list
type ActivityListResponse struct {
	Items          []ActivityResponse `json:"items"`
	PaginationInfo PaginationInfo     `json:"pagination"`
}

// CategoryResponse is the public representation of a category
type CategoryResponse struct {
	ID   int64  `json:"id" example:"2"`
	Name string `json:"name" example:"Basketball"`
}

// EnrollmentResponse is the public representation of an enrollment
type EnrollmentResponse struct {
	ID         int64              `json:"id" example:"7"`
	ActivityID int64              `json:"activityId" example:"1"`
	UserID     int64              `json:"userId" example:"5"`
	Status     string             `json:"status" example:"ENROLLED"`
	EnrollTime time.Time          `json:"enrollTime"`
	User       *UserBasicResponse `json:"user,omitempty"`
}

// NewActivityResponse maps an activity model plus its enrolled count to a response
func NewActivityResponse(a *models.Activity, enrolledCount int) ActivityResponse {
	resp := ActivityResponse{
		ID:                   a.ID,
		Name:                 a.Name,
		Description:          a.Description,
		CoverImageURL:        a.CoverImageURL,
		Location:             a.Location,
		StartTime:            a.StartTime,
		EndTime:              a.EndTime,
		RegistrationDeadline: a.RegistrationDeadline,
		MaxParticipants:      a.MaxParticipants,
		EnrolledCount:        enrolledCount,
		Status:               string(a.Status),
		FeeType:              string(a.FeeType),
		FeeAmount:            a.FeeAmount,
		OrganizerID:          a.OrganizerID,
		Organizer:            NewUserBasicResponse(a.Organizer),
		CategoryID:           a.CategoryID,
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.UpdatedAt,
	}

	if a.Category != nil {
		resp.Category = &CategoryResponse{ID: a.Category.ID, Name: a.Category.Name}
	}

	for _, img := range a.Images {
		resp.ImageURLs = append(resp.ImageURLs, img.ImageURL)
	}

	return resp
}

// NewEnrollmentResponse maps an enrollment model to a response
func NewEnrollmentResponse(e *models.Enrollment) *EnrollmentResponse {
	if e == nil {
		return nil
	}
	return &EnrollmentResponse{
		ID:         e.ID,
		ActivityID: e.ActivityID,
		UserID:     e.UserID,
		Status:     string(e.Status),
		EnrollTime: e.EnrollTime,
		User:       NewUserBasicResponse(e.User),
	}
}
