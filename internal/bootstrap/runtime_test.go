package bootstrap

import (
	"testing"

	"courtside/internal/config"
	"courtside/internal/database"
	"courtside/internal/models"
	"courtside/internal/seed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func referenceDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	require.NoError(t, seed.SeedReference(db))
	return db
}

func TestEnsureDevRootAdmin(t *testing.T) {
	t.Parallel()
	db := referenceDB(t)
	cfg := &config.Config{Env: "development", DevRootPassword: "s3cret-root"}

	require.NoError(t, EnsureDevRootAdmin(cfg, db))
	cfg.DevRootPassword = "rotated-root"
	require.NoError(t, EnsureDevRootAdmin(cfg, db))

	var users []models.User
	require.NoError(t, db.Preload("Role").Find(&users).Error)
	require.Len(t, users, 1)
	root := users[0]
	assert.Equal(t, "courtside_root", root.Username)
	assert.Equal(t, "root@courtside.local", root.Email)
	assert.True(t, root.IsModerator())
	assert.Equal(t, models.RoleAdmin, root.Role.Name)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(root.Password), []byte("rotated-root")))
}

func TestEnsureDevRootAdmin_Skipped(t *testing.T) {
	t.Parallel()
	db := referenceDB(t)

	for _, cfg := range []*config.Config{
		{Env: "production", DevRootPassword: "s3cret-root"},
		{Env: "development"},
	} {
		require.NoError(t, EnsureDevRootAdmin(cfg, db))
	}

	var n int64
	require.NoError(t, db.Model(&models.User{}).Count(&n).Error)
	assert.Zero(t, n)
}
