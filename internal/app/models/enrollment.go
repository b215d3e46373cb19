package models

import "time"

// EnrollmentStatus represents the state of an enrollment row
type EnrollmentStatus string

const (
	EnrollmentEnrolled  EnrollmentStatus = "ENROLLED"
	EnrollmentCancelled EnrollmentStatus = "CANCELLED"
)

// Enrollment represents a user's membership record for an activity.
// A cancelled row may be reactivated rather than a new row inserted,
// so a (activity, user) pair has at most one row carrying ENROLLED.
type Enrollment struct {
	ID         int64            `json:"id" db:"id"`
	ActivityID int64            `json:"activityId" db:"activity_id"`
	UserID     int64            `json:"userId" db:"user_id"`
	Status     EnrollmentStatus `json:"status" db:"status"`
	EnrollTime time.Time        `json:"enrollTime" db:"enroll_time"`

	// Related entities
	User *User `json:"user,omitempty"`
}
