package services

import (
	"context"
	"time"

	"github.com/emre/gatherly/internal/app/models"
	"github.com/emre/gatherly/internal/app/models/dto"
)

// Store interfaces consumed by the services. The pgx repositories satisfy
// them in production; tests substitute in-memory fakes.

// ActivityStore persists activities and their image lists
type ActivityStore interface {
	Create(ctx context.Context, activity *models.Activity, imageURLs []string) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Activity, error)
	Update(ctx context.Context, activity *models.Activity) error
	UpdateStatus(ctx context.Context, id int64, status models.ActivityStatus) error
	Delete(ctx context.Context, id int64) error
	ReplaceImages(ctx context.Context, activityID int64, imageURLs []string) error
	List(ctx context.Context, q dto.ActivityQuery) ([]*models.Activity, int64, error)
	ListByOrganizer(ctx context.Context, organizerID int64, q dto.ActivityQuery) ([]*models.Activity, int64, error)
	ListEnrolledBy(ctx context.Context, userID int64, q dto.ActivityQuery) ([]*models.Activity, int64, error)
	CountEnrolledByActivityIDs(ctx context.Context, ids []int64) (map[int64]int, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

// EnrollmentStore persists enrollments; Admit must be atomic per activity
type EnrollmentStore interface {
	Admit(ctx context.Context, activityID, userID int64, now time.Time) (*models.Enrollment, error)
	FindActive(ctx context.Context, activityID, userID int64) (*models.Enrollment, error)
	CancelActive(ctx context.Context, activityID, userID int64) error
	CancelActivityCascade(ctx context.Context, activityID int64) (int64, error)
	CountEnrolled(ctx context.Context, activityID int64) (int, error)
	ListEnrolled(ctx context.Context, activityID int64) ([]*models.Enrollment, error)
}

// CategoryStore reads activity categories
type CategoryStore interface {
	GetAll(ctx context.Context) ([]*models.Category, error)
	GetByID(ctx context.Context, id int64) (*models.Category, error)
}

// UserStore reads and writes users
type UserStore interface {
	Create(ctx context.Context, user *models.User) (int64, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, userID int64, hashedPassword string) error
}

// TokenStore persists refresh tokens
type TokenStore interface {
	Save(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	Find(ctx context.Context, token string) (*models.RefreshToken, error)
	Delete(ctx context.Context, token string) error
	DeleteForUser(ctx context.Context, userID int64) error
}

// CommentStore persists activity comments
type CommentStore interface {
	Create(ctx context.Context, comment *models.Comment) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Comment, error)
	ListByActivity(ctx context.Context, activityID int64, page, pageSize int) ([]*models.Comment, int64, *float64, error)
	ListByUser(ctx context.Context, userID int64, page, pageSize int) ([]*models.Comment, int64, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id int64) error
}

// activityAuthorizer decides whether an actor may mutate an activity
type activityAuthorizer interface {
	CanManageActivity(ctx context.Context, actorID int64, activity *models.Activity) error
}
