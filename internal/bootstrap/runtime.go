// Package bootstrap prepares the database and Redis before the server starts.
package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"courtside/internal/cache"
	"courtside/internal/config"
	"courtside/internal/database"
	"courtside/internal/middleware"
	"courtside/internal/models"
	"courtside/internal/seed"
	"courtside/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedReference bool
}

// InitRuntime connects to DB and Redis, loads reference data when asked and
// ensures the development root admin exists.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Redis is optional; a nil client disables caching and realtime fan-out.
	r := cache.InitRedis(cfg.RedisURL)

	if opts.SeedReference {
		if err := seed.SeedReference(db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed reference data: %w", err)
		}
	}

	if err := EnsureDevRootAdmin(cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development root admin: %w", err)
	}

	return db, r, nil
}

// EnsureDevRootAdmin creates or promotes the configured root account in
// development. It does nothing in other environments or without a password.
func EnsureDevRootAdmin(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || cfg.DevRootPassword == "" {
		return nil
	}

	username := strings.TrimSpace(cfg.DevRootUsername)
	if username == "" {
		username = "courtside_root"
	}
	email := strings.TrimSpace(strings.ToLower(cfg.DevRootEmail))
	if email == "" {
		email = "root@courtside.local"
	}

	hashed, err := service.HashPassword(cfg.DevRootPassword)
	if err != nil {
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var admin models.Role
		if err := tx.Where("name = ?", models.RoleAdmin).First(&admin).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("role %q missing; load reference data first", models.RoleAdmin)
			}
			return err
		}

		var root models.User
		findErr := tx.Where("username = ?", username).First(&root).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			root = models.User{
				RoleID:           admin.ID,
				Username:         username,
				Email:            email,
				Password:         hashed,
				IsStaff:          true,
				IsSuperuser:      true,
				IsProfileVisible: true,
			}
			return tx.Create(&root).Error
		case findErr != nil:
			return findErr
		default:
			return tx.Model(&root).Updates(map[string]any{
				"role_id":      admin.ID,
				"email":        email,
				"password":     hashed,
				"is_staff":     true,
				"is_superuser": true,
			}).Error
		}
	})
	if err != nil {
		return err
	}

	middleware.Logger.Info("development root admin ensured", slog.String("username", username))
	return nil
}
