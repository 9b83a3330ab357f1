package repository

import (
	"fmt"
	"testing"
	"time"

	"agora/internal/database"
	"agora/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// setupTestDB returns a migrated in-memory sqlite database private to t.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Name:     "Test",
		Surname:  "User",
		Password: "hash",
		IsActive: true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedPost(t *testing.T, db *gorm.DB, owner *models.User, at time.Time) *models.Post {
	t.Helper()
	p := &models.Post{UserID: owner.ID, Text: "a post that is comfortably longer than thirty characters", CreatedAt: at}
	require.NoError(t, db.Create(p).Error)
	return p
}

func seedComment(t *testing.T, db *gorm.DB, owner *models.User, post *models.Post, at time.Time) *models.Comment {
	t.Helper()
	c := &models.Comment{UserID: owner.ID, PostID: post.ID, Text: "comment", CreatedAt: at}
	require.NoError(t, db.Create(c).Error)
	return c
}

func seedReply(t *testing.T, db *gorm.DB, owner *models.User, comment *models.Comment, at time.Time) *models.Reply {
	t.Helper()
	r := &models.Reply{UserID: owner.ID, CommentID: comment.ID, Text: "reply", CreatedAt: at}
	require.NoError(t, db.Create(r).Error)
	return r
}
