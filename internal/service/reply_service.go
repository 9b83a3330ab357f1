package service

import (
	"context"

	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/repository"
	"agora/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

type ReplyService struct {
	store *repository.Store
	rule  EngagementRule
}

type CreateReplyInput struct {
	UserID    uint
	CommentID uint
	Text      string
}

func NewReplyService(store *repository.Store) *ReplyService {
	return &ReplyService{store: store}
}

// CreateReply adds a reply under a comment. Engagement is credited to the
// post the comment belongs to.
func (s *ReplyService) CreateReply(ctx context.Context, in CreateReplyInput) (reply *models.Reply, err error) {
	ctx, finish := observability.StartSpan(ctx, "reply_service", "create", attribute.Int64("comment.id", int64(in.CommentID)))
	defer func() { finish(err) }()

	var counted bool
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		comment, err := tx.Comments.GetByID(ctx, in.CommentID)
		if err != nil {
			return err
		}
		text, err := validation.ValidateCommentText(in.Text)
		if err != nil {
			return models.NewFieldError("text", err.Error())
		}

		post := comment.Post
		if post == nil {
			if post, err = tx.Posts.GetByID(ctx, comment.PostID); err != nil {
				return err
			}
		}

		reply = &models.Reply{UserID: in.UserID, CommentID: comment.ID, Text: text}
		if err := tx.Replies.Create(ctx, reply); err != nil {
			return err
		}
		counted, err = s.rule.ReplyCreated(ctx, tx.Posts, post, reply)
		return err
	})
	if err != nil {
		return nil, err
	}

	observability.ContentCreated.WithLabelValues("reply").Inc()
	if counted {
		observability.EngagementIncrements.WithLabelValues(SourceReply).Inc()
	}
	return reply, nil
}
