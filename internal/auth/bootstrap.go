package auth

import (
	"context"
	"fmt"

	"github.com/lebraggaa/spool-tracker/internal/users"
	"github.com/lebraggaa/spool-tracker/pkg/config"
	"github.com/lebraggaa/spool-tracker/pkg/db/models"
	"github.com/lebraggaa/spool-tracker/pkg/enums"
	"github.com/lebraggaa/spool-tracker/pkg/logger"
	"github.com/lebraggaa/spool-tracker/pkg/security"
)

type bootstrapRepository interface {
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

// SeedAdmin creates the initial admin account when the users table is empty.
// It is a no-op once any user exists, so repeated startups stay idempotent.
func SeedAdmin(ctx context.Context, cfg *config.Config, logg *logger.Logger, repo bootstrapRepository) error {
	count, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting users: %w", err)
	}
	if count > 0 {
		return nil
	}

	if cfg.Bootstrap.AdminPassword == "" {
		logg.Warn(ctx, "no users exist and no bootstrap admin password is configured; skipping admin seed")
		return nil
	}

	hash, err := security.HashPassword(cfg.Bootstrap.AdminPassword, cfg.Password)
	if err != nil {
		return fmt.Errorf("hashing bootstrap admin password: %w", err)
	}

	admin, err := repo.Create(ctx, users.CreateUserDTO{
		Username:     cfg.Bootstrap.AdminUsername,
		PasswordHash: hash,
		Role:         enums.UserRoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("creating bootstrap admin: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"username": admin.Username, "user_id": admin.ID})
	logg.Info(ctx, "seeded bootstrap admin account")
	return nil
}
