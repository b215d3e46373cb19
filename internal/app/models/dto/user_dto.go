package dto

import (
	"time"

	"github.com/emre/gatherly/internal/app/models"
)

// UserResponse is the public representation of a user
type UserResponse struct {
	ID        int64     `json:"id" example:"1"`
	Username  string    `json:"username" example:"jdoe"`
	Email     string    `json:"email" example:"jdoe@example.com"`
	AvatarURL *string   `json:"avatarUrl,omitempty"`
	Role      string    `json:"role" example:"USER" enums:"USER,ADMIN"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserBasicResponse is the minimal user reference embedded in other responses
type UserBasicResponse struct {
	ID        int64   `json:"id" example:"1"`
	Username  string  `json:"username" example:"jdoe"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

// UpdateProfileRequest is the payload for profile updates
type UpdateProfileRequest struct {
	Email     *string `json:"email,omitempty" binding:"omitempty,email"`
	AvatarURL *string `json:"avatarUrl,omitempty" binding:"omitempty,url"`
}

// ChangePasswordRequest is the payload for changing the caller's password
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required" example:"s3cret-pass"`
	NewPassword string `json:"newPassword" binding:"required,min=8" example:"n3w-s3cret-pass"`
}

// NewUserResponse maps a user model to its public representation
func NewUserResponse(u *models.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

// NewUserBasicResponse maps a user model to its minimal reference form
func NewUserBasicResponse(u *models.User) *UserBasicResponse {
	if u == nil {
		return nil
	}
	return &UserBasicResponse{
		ID:        u.ID,
		Username:  u.Username,
		AvatarURL: u.AvatarURL,
	}
}
