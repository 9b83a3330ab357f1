package repository

import (
	"context"

	"agora/internal/models"

	"gorm.io/gorm"
)

// ReplyRepository defines persistence operations for replies.
type ReplyRepository interface {
	Create(ctx context.Context, reply *models.Reply) error
	ListByComments(ctx context.Context, commentIDs []uint) ([]*models.Reply, error)
}

type replyRepository struct {
	db *gorm.DB
}

// NewReplyRepository returns a new ReplyRepository implementation.
func NewReplyRepository(db *gorm.DB) ReplyRepository {
	return &replyRepository{db: db}
}

func (r *replyRepository) Create(ctx context.Context, reply *models.Reply) error {
	if err := r.db.WithContext(ctx).Create(reply).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ListByComments returns the replies of every given comment, oldest first.
func (r *replyRepository) ListByComments(ctx context.Context, commentIDs []uint) ([]*models.Reply, error) {
	replies := make([]*models.Reply, 0)
	if len(commentIDs) == 0 {
		return replies, nil
	}
	err := readDB(ctx, r.db).Preload("User").
		Where("comment_id IN ?", commentIDs).
		Order("created_at ASC").Order("id ASC").
		Find(&replies).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return replies, nil
}
