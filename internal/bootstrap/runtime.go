// Package bootstrap initializes the runtime shared by the server and the seeder.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"socialhub/internal/cache"
	"socialhub/internal/config"
	"socialhub/internal/database"
	"socialhub/internal/models"
	"socialhub/internal/validation"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// InitRuntime connects to the database and Redis and ensures the configured administrator.
// The Redis client is nil when Redis is unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	if err := EnsureAdmin(ctx, db, cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap admin: %w", err)
	}
	return db, cache.GetClient(), nil
}

// EnsureAdmin promotes the account registered with cfg.AdminEmail, creating it
// when missing. It is a no-op when no admin email is configured.
func EnsureAdmin(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	if email == "" {
		return nil
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.User
		err := tx.Where("email = ?", email).First(&existing).Error
		switch {
		case err == nil:
			if existing.IsAdmin {
				return nil
			}
			slog.Info("promoting configured admin", slog.Uint64("user_id", uint64(existing.ID)))
			return tx.Model(&existing).Update("is_admin", true).Error
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		if cfg.AdminPassword == "" {
			return errors.New("ADMIN_PASSWORD must be set to create the admin account")
		}
		username := strings.TrimSpace(cfg.AdminUsername)
		if err := validation.ValidateUsername(username); err != nil {
			return fmt.Errorf("ADMIN_USERNAME: %w", err)
		}
		if err := validation.ValidatePassword(cfg.AdminPassword); err != nil {
			return fmt.Errorf("ADMIN_PASSWORD: %w", err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
		admin := models.User{
			Username:      username,
			Email:         email,
			Password:      string(hash),
			EmailVerified: true,
			IsAdmin:       true,
		}
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}
		slog.Info("created configured admin", slog.Uint64("user_id", uint64(admin.ID)))
		return nil
	})
}
