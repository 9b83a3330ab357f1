package service

import (
	"context"

	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/repository"
	"agora/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

type CommentService struct {
	store *repository.Store
	rule  EngagementRule
}

type CreateCommentInput struct {
	UserID uint
	PostID uint
	Text   string
}

func NewCommentService(store *repository.Store) *CommentService {
	return &CommentService{store: store}
}

// CreateComment adds a comment to a post and applies the engagement rule in
// the same transaction.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (comment *models.Comment, err error) {
	ctx, finish := observability.StartSpan(ctx, "comment_service", "create", attribute.Int64("post.id", int64(in.PostID)))
	defer func() { finish(err) }()

	var counted bool
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		post, err := tx.Posts.GetByID(ctx, in.PostID)
		if err != nil {
			return err
		}
		text, err := validation.ValidateCommentText(in.Text)
		if err != nil {
			return models.NewFieldError("text", err.Error())
		}

		comment = &models.Comment{UserID: in.UserID, PostID: post.ID, Text: text}
		if err := tx.Comments.Create(ctx, comment); err != nil {
			return err
		}
		counted, err = s.rule.CommentCreated(ctx, tx.Posts, post, comment)
		return err
	})
	if err != nil {
		return nil, err
	}

	observability.ContentCreated.WithLabelValues("comment").Inc()
	if counted {
		observability.EngagementIncrements.WithLabelValues(SourceComment).Inc()
	}
	return comment, nil
}
