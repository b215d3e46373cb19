package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emre/gatherly/internal/app/lifecycle"
	"github.com/emre/gatherly/internal/app/models"
	"github.com/emre/gatherly/internal/pkg/apperrors"
)

// EnrollmentRepository handles database operations for enrollments
type EnrollmentRepository struct {
	db *pgxpool.Pool
}

// NewEnrollmentRepository creates a new EnrollmentRepository
func NewEnrollmentRepository(db *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Admit attempts to enroll a user into an activity. The whole admission
// runs in one transaction holding a FOR UPDATE lock on the activity row,
// so concurrent admissions for the same activity serialize and the
// participant cap cannot be overshot. Admissions for distinct activities
// do not contend.
func (r *EnrollmentRepository) Admit(ctx context.Context, activityID, userID int64, now time.Time) (*models.Enrollment, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	snap, err := lockAndSnapshot(ctx, tx, activityID, userID)
	if err != nil {
		return nil, err
	}

	mode, err := lifecycle.CheckAdmission(*snap, now)
	if err != nil {
		return nil, err
	}

	var enrollment *models.Enrollment
	switch mode {
	case lifecycle.AdmitReactivate:
		enrollment, err = reactivateEnrollment(ctx, tx, activityID, userID, now)
	default:
		enrollment, err = insertEnrollment(ctx, tx, activityID, userID, now)
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("error committing transaction: %w", err)
	}

	return enrollment, nil
}

// lockAndSnapshot takes the per-activity row lock and reads everything
// CheckAdmission needs within the same transaction.
func lockAndSnapshot(ctx context.Context, tx pgx.Tx, activityID, userID int64) (*lifecycle.AdmitSnapshot, error) {
	var snap lifecycle.AdmitSnapshot

	lockSQL := `SELECT status, registration_deadline, max_participants
		FROM activities WHERE id = $1 FOR UPDATE`
	err := tx.QueryRow(ctx, lockSQL, activityID).Scan(
		&snap.Status, &snap.RegistrationDeadline, &snap.MaxParticipants)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrActivityNotFound
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	countSQL := `SELECT COUNT(*) FROM enrollments
		WHERE activity_id = $1 AND status = $2`
	err = tx.QueryRow(ctx, countSQL, activityID, models.EnrollmentEnrolled).Scan(&snap.EnrolledCount)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	// At most one row exists per (activity, user) pair.
	var status models.EnrollmentStatus
	rowSQL := `SELECT status FROM enrollments
		WHERE activity_id = $1 AND user_id = $2`
	err = tx.QueryRow(ctx, rowSQL, activityID, userID).Scan(&status)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("error executing query: %w", err)
		}
	} else {
		snap.UserEnrolled = status == models.EnrollmentEnrolled
		snap.UserHasCancelledRow = status == models.EnrollmentCancelled
	}

	return &snap, nil
}

func insertEnrollment(ctx context.Context, tx pgx.Tx, activityID, userID int64, now time.Time) (*models.Enrollment, error) {
	query := squirrel.Insert("enrollments").
		Columns("activity_id", "user_id", "status", "enroll_time").
		Values(activityID, userID, models.EnrollmentEnrolled, now).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var id int64
	if err := tx.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return &models.Enrollment{
		ID:         id,
		ActivityID: activityID,
		UserID:     userID,
		Status:     models.EnrollmentEnrolled,
		EnrollTime: now,
	}, nil
}

func reactivateEnrollment(ctx context.Context, tx pgx.Tx, activityID, userID int64, now time.Time) (*models.Enrollment, error) {
	query := squirrel.Update("enrollments").
		Set("status", models.EnrollmentEnrolled).
		Set("enroll_time", now).
		Where("activity_id = ?", activityID).
		Where("user_id = ?", userID).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var id int64
	if err := tx.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return &models.Enrollment{
		ID:         id,
		ActivityID: activityID,
		UserID:     userID,
		Status:     models.EnrollmentEnrolled,
		EnrollTime: now,
	}, nil
}

// FindActive retrieves the user's ENROLLED row for an activity,
// returning nil when the user is not actively enrolled
func (r *EnrollmentRepository) FindActive(ctx context.Context, activityID, userID int64) (*models.Enrollment, error) {
	query := squirrel.Select("id", "activity_id", "user_id", "status", "enroll_time").
		From("enrollments").
		Where("activity_id = ?", activityID).
		Where("user_id = ?", userID).
		Where("status = ?", models.EnrollmentEnrolled).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var e models.Enrollment
	err = r.db.QueryRow(ctx, sql, args...).Scan(&e.ID, &e.ActivityID, &e.UserID, &e.Status, &e.EnrollTime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return &e, nil
}

// CancelActive flips a user's ENROLLED row to CANCELLED
func (r *EnrollmentRepository) CancelActive(ctx context.Context, activityID, userID int64) error {
	query := squirrel.Update("enrollments").
		Set("status", models.EnrollmentCancelled).
		Where("activity_id = ?", activityID).
		Where("user_id = ?", userID).
		Where("status = ?", models.EnrollmentEnrolled).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	result, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrEnrollmentNotFound
	}

	return nil
}

// CancelActivityCascade marks the activity CANCELLED and flips every
// ENROLLED row to CANCELLED in one transaction, returning the number of
// enrollments cancelled. Either both updates land or neither does.
func (r *EnrollmentRepository) CancelActivityCascade(ctx context.Context, activityID int64) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	activitySQL := `UPDATE activities SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := tx.Exec(ctx, activitySQL, models.StatusCancelled, activityID)
	if err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}
	if result.RowsAffected() == 0 {
		return 0, apperrors.ErrActivityNotFound
	}

	enrollmentSQL := `UPDATE enrollments SET status = $1
		WHERE activity_id = $2 AND status = $3`
	result, err = tx.Exec(ctx, enrollmentSQL, models.EnrollmentCancelled, activityID, models.EnrollmentEnrolled)
	if err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}
	cancelled := result.RowsAffected()

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("error committing transaction: %w", err)
	}

	return cancelled, nil
}

// CountEnrolled returns the number of active enrollments for an activity
func (r *EnrollmentRepository) CountEnrolled(ctx context.Context, activityID int64) (int, error) {
	query := squirrel.Select("COUNT(*)").
		From("enrollments").
		Where("activity_id = ?", activityID).
		Where("status = ?", models.EnrollmentEnrolled).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var count int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}

	return count, nil
}

// ListEnrolled retrieves the active enrollments of an activity with
// their users, ordered by enroll time
func (r *EnrollmentRepository) ListEnrolled(ctx context.Context, activityID int64) ([]*models.Enrollment, error) {
	query := squirrel.Select(
		"e.id", "e.activity_id", "e.user_id", "e.status", "e.enroll_time",
		"u.username", "u.avatar_url").
		From("enrollments e").
		Join("users u ON u.id = e.user_id").
		Where("e.activity_id = ?", activityID).
		Where("e.status = ?", models.EnrollmentEnrolled).
		OrderBy("e.enroll_time ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var enrollments []*models.Enrollment
	for rows.Next() {
		var e models.Enrollment
		var username string
		var avatarURL *string
		err := rows.Scan(&e.ID, &e.ActivityID, &e.UserID, &e.Status, &e.EnrollTime, &username, &avatarURL)
		if err != nil {
			return nil, fmt.Errorf("error scanning enrollment row: %w", err)
		}
		e.User = &models.User{ID: e.UserID, Username: username, AvatarURL: avatarURL}
		enrollments = append(enrollments, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating enrollment rows: %w", err)
	}

	return enrollments, nil
}
