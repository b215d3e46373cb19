package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository       *UserRepository
	TokenRepository      *TokenRepository
	CategoryRepository   *CategoryRepository
	ActivityRepository   *ActivityRepository
	EnrollmentRepository *EnrollmentRepository
	CommentRepository    *CommentRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:       NewUserRepository(db),
		TokenRepository:      NewTokenRepository(db),
		CategoryRepository:   NewCategoryRepository(db),
		ActivityRepository:   NewActivityRepository(db),
		EnrollmentRepository: NewEnrollmentRepository(db),
		CommentRepository:    NewCommentRepository(db),
	}
}
