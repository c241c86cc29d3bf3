package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	appModels "github.com/yigit/edutech/internal/app/models"
	appRepos "github.com/yigit/edutech/internal/app/repositories"
	"github.com/yigit/edutech/internal/config"
	"github.com/yigit/edutech/internal/pkg/apperrors"
)

// CreateDefaultData creates the configured admin account if it does not exist
// yet. Without a configured admin email it does nothing.
func CreateDefaultData(ctx context.Context, userRepo appRepos.IUserRepository, cfg *config.Config, lgr zerolog.Logger) error {
	if cfg.Seed.AdminEmail == "" {
		lgr.Debug().Msg("No seed admin configured, skipping default data")
		return nil
	}

	lgr.Info().Str("email", cfg.Seed.AdminEmail).Msg("Checking/Creating default admin account...")

	fullname := cfg.Seed.AdminFullname
	if fullname == "" {
		fullname = "Administrator"
	}

	admin := &appModels.User{
		Fullname: fullname,
		Email:    cfg.Seed.AdminEmail,
		Role:     appModels.RoleAdmin,
		IsAdmin:  true,
		Photo:    appModels.DefaultUserPhoto,
	}
	if err := admin.SetPassword(cfg.Seed.AdminPassword); err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	if _, err := userRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			lgr.Info().Str("email", cfg.Seed.AdminEmail).Msg("Default admin already exists")
			return nil
		}
		lgr.Error().Err(err).Msg("Error creating default admin")
		return err
	}

	lgr.Info().Int64("userID", admin.ID).Msg("Default admin account created")
	return nil
}
