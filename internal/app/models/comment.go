package models

import "time"

// Comment represents a user comment on an activity, optionally carrying a rating.
type Comment struct {
	ID         int64     `json:"id" db:"id"`
	ActivityID int64     `json:"activityId" db:"activity_id"`
	UserID     int64     `json:"userId" db:"user_id"`
	Content    string    `json:"content" db:"content"`
	Rating     *int      `json:"rating,omitempty" db:"rating"`
	CreateTime time.Time `json:"createTime" db:"create_time"`

	// Related entities
	User     *User     `json:"user,omitempty"`
	Activity *Activity `json:"activity,omitempty"`
}
