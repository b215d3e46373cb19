package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appModels "github.com/emre/gatherly/internal/app/models"
	appRepos "github.com/emre/gatherly/internal/app/repositories"
	"github.com/emre/gatherly/internal/pkg/apperrors"
	"github.com/emre/gatherly/internal/pkg/auth"
)

var defaultCategories = []string{
	"Sports",
	"Music",
	"Outdoors",
	"Board Games",
	"Technology",
	"Food & Drink",
}

// CreateDefaultData creates the default categories and the admin account
// if they don't exist.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	categoryRepo := appRepos.NewCategoryRepository(dbPool)
	userRepo := appRepos.NewUserRepository(dbPool)

	lgr.Info().Msg("Checking/Creating default data (Categories/Admin)...")
	var finalErr error // To collect potential errors without stopping the process

	for _, name := range defaultCategories {
		_, err := categoryRepo.Create(ctx, name)
		if err != nil && !errors.Is(err, apperrors.ErrResourceAlreadyExists) {
			lgr.Error().Err(err).Str("category", name).Msg("Error creating default category")
			finalErr = errors.Join(finalErr, err)
		}
	}

	// --- Create Default Admin User --- //
	existing, err := userRepo.FindByEmail(ctx, "admin@gatherly.local")
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking if admin user exists")
		finalErr = errors.Join(finalErr, err)
	} else if existing == nil {
		lgr.Info().Msg("Creating default admin user...")

		hashedPassword, err := auth.HashPassword("Admin123!")
		if err != nil {
			lgr.Error().Err(err).Msg("Error hashing admin password")
			finalErr = errors.Join(finalErr, err)
		} else {
			admin := &appModels.User{
				Username: "admin",
				Email:    "admin@gatherly.local",
				Password: hashedPassword,
				Role:     appModels.RoleAdmin,
			}

			adminID, err := userRepo.Create(ctx, admin)
			if err != nil {
				lgr.Error().Err(err).Msg("Error creating admin user")
				finalErr = errors.Join(finalErr, err)
			} else {
				lgr.Info().Int64("adminID", adminID).Msg("Default admin user created successfully")
			}
		}
	} else {
		lgr.Info().Msg("Admin user already exists, skipping creation")
	}

	lgr.Info().Msg("Default data check/creation finished.")
	return finalErr
}
