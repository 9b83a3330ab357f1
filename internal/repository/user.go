package repository

import (
	"context"
	"errors"
	"strings"

	"agora/internal/cache"
	"agora/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Activate(ctx context.Context, id uint) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if field, ok := uniqueViolationField(err); ok {
			if field == "" {
				return models.NewConflictError("user already exists.")
			}
			return models.NewFieldError(field, "user with this "+field+" already exists.")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// GetByID is cached. The cached copy carries no password hash, so callers
// that authenticate must use GetByEmail.
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		if err := readDB(ctx, r.db).First(&user, id).Error; err != nil {
			return translateNotFound(err, models.MsgUserNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := primaryDB(ctx, r.db).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translateNotFound(err, models.MsgUserNotFound)
	}
	return &user, nil
}

func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username = ?", username)
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", email)
}

func (r *userRepository) exists(ctx context.Context, query string, arg string) (bool, error) {
	var count int64
	if err := primaryDB(ctx, r.db).Model(&models.User{}).Where(query, arg).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// Activate flips is_active. Activating an already active user is NotFound so
// a verification link works once.
func (r *userRepository) Activate(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND is_active = ?", id, false).
		Update("is_active", true)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError(models.MsgUserNotFound)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

// uniqueViolationField reports which users column a unique violation hit.
func uniqueViolationField(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return columnFromConstraint(pgErr.ConstraintName), true
	}
	// sqlite: "UNIQUE constraint failed: users.email"
	msg := err.Error()
	if i := strings.Index(msg, "UNIQUE constraint failed: users."); i >= 0 {
		return columnFromConstraint(msg[i:]), true
	}
	return "", false
}

func columnFromConstraint(s string) string {
	if strings.Contains(s, "username") {
		return "username"
	}
	if strings.Contains(s, "email") {
		return "email"
	}
	return ""
}
