package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID        int64     `json:"id" db:"id" example:"1"`                                   // Unique identifier for the user
	Username  string    `json:"username" db:"username" example:"jdoe"`                    // Unique username
	Email     string    `json:"email" db:"email" example:"jdoe@example.com"`              // User's email address
	Password  string    `json:"-" db:"password"`                                          // User's hashed password (excluded from JSON)
	AvatarURL *string   `json:"avatarUrl,omitempty" db:"avatar_url"`                      // URL of the user's avatar (nullable)
	Role      RoleType  `json:"role" db:"role" example:"USER"`                            // User's role (USER or ADMIN)
	CreatedAt time.Time `json:"createdAt" db:"created_at" example:"2024-01-01T10:00:00Z"` // Timestamp when the user was created
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at" example:"2024-01-02T15:30:00Z"` // Timestamp when the user was last updated
}
