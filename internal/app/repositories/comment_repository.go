package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emre/gatherly/internal/app/models"
	"github.com/emre/gatherly/internal/pkg/apperrors"
	"github.com/emre/gatherly/internal/pkg/dberrors"
)

// CommentRepository handles database operations for activity comments
type CommentRepository struct {
	db *pgxpool.Pool
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create inserts a new comment and returns its id
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) (int64, error) {
	query := squirrel.Insert("comments").
		Columns("activity_id", "user_id", "content", "rating").
		Values(comment.ActivityID, comment.UserID, comment.Content, comment.Rating).
		Suffix("RETURNING id, create_time").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&comment.ID, &comment.CreateTime)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return 0, apperrors.ErrActivityNotFound
		}
		return 0, fmt.Errorf("error executing query: %w", err)
	}

	return comment.ID, nil
}

// GetByID retrieves a comment by id
func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	query := squirrel.Select("id", "activity_id", "user_id", "content", "rating", "create_time").
		From("comments").
		Where("id = ?", id).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var c models.Comment
	err = r.db.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.ActivityID, &c.UserID, &c.Content, &c.Rating, &c.CreateTime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCommentNotFound
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return &c, nil
}

// ListByActivity retrieves one page of an activity's comments with their
// authors, newest first. The total count and the average rating over all
// of the activity's comments come back as window columns on the same
// query.
func (r *CommentRepository) ListByActivity(ctx context.Context, activityID int64, page, pageSize int) ([]*models.Comment, int64, *float64, error) {
	offset := (page - 1) * pageSize
	query := squirrel.Select(
		"c.id", "c.activity_id", "c.user_id", "c.content", "c.rating", "c.create_time",
		"u.username", "u.avatar_url").
		Column("COUNT(*) OVER()").
		Column("AVG(c.rating) OVER()").
		From("comments c").
		Join("users u ON u.id = c.user_id").
		Where("c.activity_id = ?", activityID).
		OrderBy("c.create_time DESC").
		Limit(uint64(pageSize)).
		Offset(uint64(offset)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var comments []*models.Comment
	var total int64
	var avgRating *float64

	for rows.Next() {
		var c models.Comment
		var username string
		var avatarURL *string
		err := rows.Scan(&c.ID, &c.ActivityID, &c.UserID, &c.Content, &c.Rating, &c.CreateTime,
			&username, &avatarURL, &total, &avgRating)
		if err != nil {
			return nil, 0, nil, fmt.Errorf("error scanning comment row: %w", err)
		}
		c.User = &models.User{ID: c.UserID, Username: username, AvatarURL: avatarURL}
		comments = append(comments, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, nil, fmt.Errorf("error iterating comment rows: %w", err)
	}

	return comments, total, avgRating, nil
}

// ListByUser retrieves one page of a user's comments with the activities
// they belong to, newest first
func (r *CommentRepository) ListByUser(ctx context.Context, userID int64, page, pageSize int) ([]*models.Comment, int64, error) {
	offset := (page - 1) * pageSize
	query := squirrel.Select(
		"c.id", "c.activity_id", "c.user_id", "c.content", "c.rating", "c.create_time",
		"a.name", "a.cover_image_url").
		Column("COUNT(*) OVER()").
		From("comments c").
		Join("activities a ON a.id = c.activity_id").
		Where("c.user_id = ?", userID).
		OrderBy("c.create_time DESC").
		Limit(uint64(pageSize)).
		Offset(uint64(offset)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var comments []*models.Comment
	var total int64

	for rows.Next() {
		var c models.Comment
		var activityName string
		var coverImageURL *string
		err := rows.Scan(&c.ID, &c.ActivityID, &c.UserID, &c.Content, &c.Rating, &c.CreateTime,
			&activityName, &coverImageURL, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning comment row: %w", err)
		}
		c.Activity = &models.Activity{ID: c.ActivityID, Name: activityName, CoverImageURL: coverImageURL}
		comments = append(comments, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating comment rows: %w", err)
	}

	return comments, total, nil
}

// Update persists the editable fields of a comment
func (r *CommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	query := squirrel.Update("comments").
		Set("content", comment.Content).
		Set("rating", comment.Rating).
		Where("id = ?", comment.ID).
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
		return apperrors.ErrCommentNotFound
	}

	return nil
}

// Delete removes a comment
func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	query := squirrel.Delete("comments").
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
		return apperrors.ErrCommentNotFound
	}

	return nil
}
