package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emre/gatherly/internal/app/models"
	"github.com/emre/gatherly/internal/app/models/dto"
	"github.com/emre/gatherly/internal/pkg/apperrors"
	"github.com/emre/gatherly/internal/pkg/dberrors"
)

// ActivityRepository handles database operations for activities
type ActivityRepository struct {
	db *pgxpool.Pool
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{db: db}
}

var activityColumns = []string{
	"a.id", "a.name", "a.description", "a.cover_image_url", "a.location",
	"a.start_time", "a.end_time", "a.registration_deadline",
	"a.max_participants", "a.status", "a.fee_type", "a.fee_amount",
	"a.organizer_id", "a.category_id", "a.created_at", "a.updated_at",
	"u.username", "u.avatar_url", "c.name AS category_name",
}

func scanActivity(row pgx.Rows, extra ...interface{}) (*models.Activity, error) {
	var activity models.Activity
	var organizerName string
	var organizerAvatar *string
	var categoryName string

	dest := []interface{}{
		&activity.ID,
		&activity.Name,
		&activity.Description,
		&activity.CoverImageURL,
		&activity.Location,
		&activity.StartTime,
		&activity.EndTime,
		&activity.RegistrationDeadline,
		&activity.MaxParticipants,
		&activity.Status,
		&activity.FeeType,
		&activity.FeeAmount,
		&activity.OrganizerID,
		&activity.CategoryID,
		&activity.CreatedAt,
		&activity.UpdatedAt,
		&organizerName,
		&organizerAvatar,
		&categoryName,
	}
	dest = append(dest, extra...)

	if err := row.Scan(dest...); err != nil {
		return nil, fmt.Errorf("error scanning activity row: %w", err)
	}

	activity.Organizer = &models.User{
		ID:        activity.OrganizerID,
		Username:  organizerName,
		AvatarURL: organizerAvatar,
	}
	activity.Category = &models.Category{
		ID:   activity.CategoryID,
		Name: categoryName,
	}

	return &activity, nil
}

func baseActivityQuery() squirrel.SelectBuilder {
	return squirrel.Select(activityColumns...).
		From("activities a").
		Join("users u ON u.id = a.organizer_id").
		Join("categories c ON c.id = a.category_id").
		PlaceholderFormat(squirrel.Dollar)
}

// Create inserts a new activity and its image URLs in one transaction,
// returning the new activity id
func (r *ActivityRepository) Create(ctx context.Context, activity *models.Activity, imageURLs []string) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := squirrel.Insert("activities").
		Columns("name", "description", "cover_image_url", "location",
			"start_time", "end_time", "registration_deadline",
			"max_participants", "status", "fee_type", "fee_amount",
			"organizer_id", "category_id").
		Values(activity.Name, activity.Description, activity.CoverImageURL,
			activity.Location, activity.StartTime, activity.EndTime,
			activity.RegistrationDeadline, activity.MaxParticipants,
			activity.Status, activity.FeeType, activity.FeeAmount,
			activity.OrganizerID, activity.CategoryID).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var id int64
	err = tx.QueryRow(ctx, sql, args...).Scan(&id)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return 0, apperrors.ErrCategoryNotFound
		}
		return 0, fmt.Errorf("error executing query: %w", err)
	}

	if err := insertImages(ctx, tx, id, imageURLs); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("error committing transaction: %w", err)
	}

	return id, nil
}

func insertImages(ctx context.Context, tx pgx.Tx, activityID int64, imageURLs []string) error {
	if len(imageURLs) == 0 {
		return nil
	}

	query := squirrel.Insert("activity_images").
		Columns("activity_id", "image_url").
		PlaceholderFormat(squirrel.Dollar)
	for _, url := range imageURLs {
		query = query.Values(activityID, url)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	return nil
}

// GetByID retrieves an activity with its organizer, category and images
func (r *ActivityRepository) GetByID(ctx context.Context, id int64) (*models.Activity, error) {
	query := baseActivityQuery().Where("a.id = ?", id)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("error executing query: %w", err)
		}
		return nil, apperrors.ErrActivityNotFound
	}

	activity, err := scanActivity(rows)
	if err != nil {
		return nil, err
	}
	rows.Close()

	images, err := r.getImages(ctx, id)
	if err != nil {
		return nil, err
	}
	activity.Images = images

	return activity, nil
}

func (r *ActivityRepository) getImages(ctx context.Context, activityID int64) ([]*models.ActivityImage, error) {
	query := squirrel.Select("id", "activity_id", "image_url").
		From("activity_images").
		Where("activity_id = ?", activityID).
		OrderBy("id ASC").
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

	var images []*models.ActivityImage
	for rows.Next() {
		var img models.ActivityImage
		if err := rows.Scan(&img.ID, &img.ActivityID, &img.ImageURL); err != nil {
			return nil, fmt.Errorf("error scanning image row: %w", err)
		}
		images = append(images, &img)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating image rows: %w", err)
	}

	return images, nil
}

// Update persists the mutable fields of an activity. The write runs in
// one transaction holding the same FOR UPDATE lock on the activity row
// that admissions take, and re-checks max_participants against the
// enrolled count under that lock. A concurrent admission therefore
// cannot land between the check and the write and leave the activity
// over capacity.
func (r *ActivityRepository) Update(ctx context.Context, activity *models.Activity) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	lockSQL := `SELECT id FROM activities WHERE id = $1 FOR UPDATE`
	var lockedID int64
	if err := tx.QueryRow(ctx, lockSQL, activity.ID).Scan(&lockedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrActivityNotFound
		}
		return fmt.Errorf("error executing query: %w", err)
	}

	countSQL := `SELECT COUNT(*) FROM enrollments
		WHERE activity_id = $1 AND status = $2`
	var enrolled int
	if err := tx.QueryRow(ctx, countSQL, activity.ID, models.EnrollmentEnrolled).Scan(&enrolled); err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if activity.MaxParticipants < enrolled {
		return apperrors.NewBadRequestError("max participants cannot be lower than the current enrolled count")
	}

	query := squirrel.Update("activities").
		Set("name", activity.Name).
		Set("description", activity.Description).
		Set("cover_image_url", activity.CoverImageURL).
		Set("location", activity.Location).
		Set("start_time", activity.StartTime).
		Set("end_time", activity.EndTime).
		Set("registration_deadline", activity.RegistrationDeadline).
		Set("max_participants", activity.MaxParticipants).
		Set("fee_type", activity.FeeType).
		Set("fee_amount", activity.FeeAmount).
		Set("category_id", activity.CategoryID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where("id = ?", activity.ID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrCategoryNotFound
		}
		return fmt.Errorf("error executing query: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}

	return nil
}

// UpdateStatus sets the stored status of an activity
func (r *ActivityRepository) UpdateStatus(ctx context.Context, id int64, status models.ActivityStatus) error {
	query := squirrel.Update("activities").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where("id = ?", id).
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
		return apperrors.ErrActivityNotFound
	}

	return nil
}

// Delete removes an activity. Enrollments, images and comments go with
// it via ON DELETE CASCADE.
func (r *ActivityRepository) Delete(ctx context.Context, id int64) error {
	query := squirrel.Delete("activities").
		Where("id = ?", id).
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
		return apperrors.ErrActivityNotFound
	}

	return nil
}

// ReplaceImages swaps the full image URL list of an activity
func (r *ActivityRepository) ReplaceImages(ctx context.Context, activityID int64, imageURLs []string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	delQuery := squirrel.Delete("activity_images").
		Where("activity_id = ?", activityID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := delQuery.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	if err := insertImages(ctx, tx, activityID, imageURLs); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}

	return nil
}

func applyActivityFilters(query squirrel.SelectBuilder, q dto.ActivityQuery) squirrel.SelectBuilder {
	if q.CategoryID != nil {
		query = query.Where("a.category_id = ?", *q.CategoryID)
	}
	if q.Status != nil {
		query = query.Where("a.status = ?", *q.Status)
	}
	if q.FeeType != nil {
		query = query.Where("a.fee_type = ?", *q.FeeType)
	}
	if q.Keyword != nil && *q.Keyword != "" {
		pattern := "%" + *q.Keyword + "%"
		query = query.Where(squirrel.Or{
			squirrel.ILike{"a.name": pattern},
			squirrel.ILike{"a.description": pattern},
		})
	}
	return query
}

func activitySortClause(sort string) string {
	switch sort {
	case "start_time":
		return "a.start_time ASC"
	case "-start_time":
		return "a.start_time DESC"
	case "created_at":
		return "a.created_at ASC"
	default:
		return "a.created_at DESC"
	}
}

// List retrieves activities with filtering and pagination
func (r *ActivityRepository) List(ctx context.Context, q dto.ActivityQuery) ([]*models.Activity, int64, error) {
	query := applyActivityFilters(baseActivityQuery(), q)
	return r.listWithTotal(ctx, query, q)
}

// ListByOrganizer retrieves activities created by a user
func (r *ActivityRepository) ListByOrganizer(ctx context.Context, organizerID int64, q dto.ActivityQuery) ([]*models.Activity, int64, error) {
	query := applyActivityFilters(baseActivityQuery(), q).
		Where("a.organizer_id = ?", organizerID)
	return r.listWithTotal(ctx, query, q)
}

// ListEnrolledBy retrieves activities the user has an active enrollment in
func (r *ActivityRepository) ListEnrolledBy(ctx context.Context, userID int64, q dto.ActivityQuery) ([]*models.Activity, int64, error) {
	query := applyActivityFilters(baseActivityQuery(), q).
		Join("enrollments e ON e.activity_id = a.id").
		Where("e.user_id = ?", userID).
		Where("e.status = ?", models.EnrollmentEnrolled)
	return r.listWithTotal(ctx, query, q)
}

func (r *ActivityRepository) listWithTotal(ctx context.Context, query squirrel.SelectBuilder, q dto.ActivityQuery) ([]*models.Activity, int64, error) {
	offset := (q.Page - 1) * q.PageSize
	query = query.
		Column("COUNT(*) OVER()").
		OrderBy(activitySortClause(q.Sort)).
		Limit(uint64(q.PageSize)).
		Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var activities []*models.Activity
	var total int64

	for rows.Next() {
		activity, err := scanActivity(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		activities = append(activities, activity)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating activity rows: %w", err)
	}

	return activities, total, nil
}

// CountEnrolledByActivityIDs returns the active enrollment count per
// activity for the given ids
func (r *ActivityRepository) CountEnrolledByActivityIDs(ctx context.Context, ids []int64) (map[int64]int, error) {
	counts := make(map[int64]int, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	query := squirrel.Select("activity_id", "COUNT(*)").
		From("enrollments").
		Where(squirrel.Eq{"activity_id": ids}).
		Where("status = ?", models.EnrollmentEnrolled).
		GroupBy("activity_id").
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

	for rows.Next() {
		var activityID int64
		var count int
		if err := rows.Scan(&activityID, &count); err != nil {
			return nil, fmt.Errorf("error scanning count row: %w", err)
		}
		counts[activityID] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating count rows: %w", err)
	}

	return counts, nil
}

// Exists reports whether an activity with the id is present
func (r *ActivityRepository) Exists(ctx context.Context, id int64) (bool, error) {
	query := squirrel.Select("1").
		From("activities").
		Where("id = ?", id).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return false, fmt.Errorf("error building SQL: %w", err)
	}

	var one int
	err = r.db.QueryRow(ctx, sql, args...).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("error executing query: %w", err)
	}

	return true, nil
}
