package models

import "time"

// ActivityStatus represents the lifecycle state of an activity
type ActivityStatus string

const (
	StatusPreparing          ActivityStatus = "PREPARING"
	StatusRecruiting         ActivityStatus = "RECRUITING"
	StatusRegistrationClosed ActivityStatus = "REGISTRATION_CLOSED"
	StatusOngoing            ActivityStatus = "ONGOING"
	StatusFinished           ActivityStatus = "FINISHED"
	StatusCancelled          ActivityStatus = "CANCELLED"
)

// IsValid reports whether the value is a known activity status.
func (s ActivityStatus) IsValid() bool {
	switch s {
	case StatusPreparing, StatusRecruiting, StatusRegistrationClosed,
		StatusOngoing, StatusFinished, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is permitted out of the status.
func (s ActivityStatus) IsTerminal() bool {
	return s == StatusFinished || s == StatusCancelled
}

// FeeType describes how the activity fee is collected. Fee fields are
// metadata only; no payment processing happens in this system.
type FeeType string

const (
	FeeFree              FeeType = "FREE"
	FeeAA                FeeType = "AA"
	FeePrepaidAll        FeeType = "PREPAID_ALL"
	FeePrepaidRefundable FeeType = "PREPAID_REFUNDABLE"
)

// IsValid reports whether the value is a known fee type.
func (f FeeType) IsValid() bool {
	switch f {
	case FeeFree, FeeAA, FeePrepaidAll, FeePrepaidRefundable:
		return true
	}
	return false
}

// Activity represents an organizer-created, time-bounded group event
// with a participant cap.
type Activity struct {
	ID                   int64          `json:"id" db:"id"`
	Name                 string         `json:"name" db:"name"`
	Description          *string        `json:"description,omitempty" db:"description"`
	CoverImageURL        *string        `json:"coverImageUrl,omitempty" db:"cover_image_url"`
	Location             string         `json:"location" db:"location"`
	StartTime            time.Time      `json:"startTime" db:"start_time"`
	EndTime              time.Time      `json:"endTime" db:"end_time"`
	RegistrationDeadline time.Time      `json:"registrationDeadline" db:"registration_deadline"`
	MaxParticipants      int            `json:"maxParticipants" db:"max_participants"`
	Status               ActivityStatus `json:"status" db:"status"`
	FeeType              FeeType        `json:"feeType" db:"fee_type"`
	FeeAmount            float64        `json:"feeAmount" db:"fee_amount"`
	OrganizerID          int64          `json:"organizerId" db:"organizer_id"`
	CategoryID           int64          `json:"categoryId" db:"category_id"`
	CreatedAt            time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time      `json:"updatedAt" db:"updated_at"`

	// Related entities
	Organizer *User            `json:"organizer,omitempty"`
	Category  *Category        `json:"category,omitempty"`
	Images    []*ActivityImage `json:"images,omitempty"`
}

// Category represents an activity category
type Category struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// ActivityImage represents an image URL attached to an activity.
// Only the URL is stored; image hosting is external.
type ActivityImage struct {
	ID         int64  `json:"id" db:"id"`
	ActivityID int64  `json:"activityId" db:"activity_id"`
	ImageURL   string `json:"imageUrl" db:"image_url"`
}
