package repository

import (
	"testing"
	"time"

	"courtside/internal/database"
	"courtside/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	lakers   uint = 1610612747
	warriors uint = 1610612744

	alice uint = 1
	bob   uint = 2
	carol uint = 3
)

var epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// setupDB returns a migrated in-memory SQLite database holding reference rows:
// two languages, the three statuses of each kind, two teams and three users.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))

	require.NoError(t, db.Create(&[]models.Language{
		{ID: 1, Name: "English", Code: "en"},
		{ID: 2, Name: "Korean", Code: "ko"},
	}).Error)
	require.NoError(t, db.Create(&models.Role{ID: 1, Name: models.RoleUser, Weight: 1}).Error)
	for i, name := range []string{"alice", "bob", "carol"} {
		require.NoError(t, db.Create(&models.User{
			ID: uint(i + 1), RoleID: 1, Username: name, Email: name + "@example.com",
		}).Error)
	}
	for i, name := range []string{models.StatusCreated, models.StatusHidden, models.StatusDeleted} {
		require.NoError(t, db.Create(&models.PostStatus{ID: uint(i + 1), Name: name}).Error)
		require.NoError(t, db.Create(&models.PostCommentStatus{ID: uint(i + 1), Name: name}).Error)
	}
	require.NoError(t, db.Create(&[]models.Team{
		{ID: lakers, Symbol: "LAL", TeamNames: []models.TeamName{{LanguageID: 1, Name: "Lakers"}, {LanguageID: 2, Name: "레이커스"}}},
		{ID: warriors, Symbol: "GSW", TeamNames: []models.TeamName{{LanguageID: 1, Name: "Warriors"}}},
	}).Error)
	return db
}

func statusID(name string) uint {
	switch name {
	case models.StatusHidden:
		return 2
	case models.StatusDeleted:
		return 3
	default:
		return 1
	}
}

func insertPost(t *testing.T, db *gorm.DB, userID, teamID uint, title string, age time.Duration, status string) *models.Post {
	t.Helper()
	post := &models.Post{
		UserID:    userID,
		TeamID:    teamID,
		StatusID:  statusID(status),
		Title:     title,
		Content:   title + " content",
		CreatedAt: epoch.Add(-age),
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

func insertComment(t *testing.T, db *gorm.DB, userID, postID uint, content string, age time.Duration, status string) *models.PostComment {
	t.Helper()
	comment := &models.PostComment{
		UserID:    userID,
		PostID:    postID,
		StatusID:  statusID(status),
		Content:   content,
		CreatedAt: epoch.Add(-age),
	}
	require.NoError(t, db.Create(comment).Error)
	return comment
}

func uintPtr(v uint) *uint { return &v }
