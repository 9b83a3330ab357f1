package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"agora/internal/database"
	"agora/internal/models"
	"agora/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const longText = "a post that is comfortably longer than thirty characters"

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

func reloadPost(t *testing.T, db *gorm.DB, id uint) models.Post {
	t.Helper()
	var p models.Post
	require.NoError(t, db.First(&p, id).Error)
	return p
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn    func(context.Context, *models.Post) error
	getByIDFn   func(context.Context, uint) (*models.Post, error)
	listFn      func(context.Context, uint) ([]*models.Post, error)
	updateFn    func(context.Context, uint, string) error
	incrementFn func(context.Context, uint) error
	deleteFn    func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, ownerID uint) ([]*models.Post, error) {
	return s.listFn(ctx, ownerID)
}
func (s *postRepoStub) UpdateText(ctx context.Context, id uint, text string) error {
	return s.updateFn(ctx, id, text)
}
func (s *postRepoStub) IncrementEngagement(ctx context.Context, id uint) error {
	return s.incrementFn(ctx, id)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

// noopPostRepo fails the test on any call that a case did not set up.
func noopPostRepo(t *testing.T) *postRepoStub {
	fail := func(name string) { t.Helper(); t.Fatalf("unexpected call to %s", name) }
	return &postRepoStub{
		createFn:    func(context.Context, *models.Post) error { fail("Create"); return nil },
		getByIDFn:   func(context.Context, uint) (*models.Post, error) { fail("GetByID"); return nil, nil },
		listFn:      func(context.Context, uint) ([]*models.Post, error) { fail("List"); return nil, nil },
		updateFn:    func(context.Context, uint, string) error { fail("UpdateText"); return nil },
		incrementFn: func(context.Context, uint) error { fail("IncrementEngagement"); return nil },
		deleteFn:    func(context.Context, uint) error { fail("Delete"); return nil },
	}
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func newStore(db *gorm.DB) *repository.Store {
	return repository.NewStore(db)
}
