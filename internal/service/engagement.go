package service

import (
	"context"

	"agora/internal/models"
	"agora/internal/repository"
)

// Engagement sources, used as metric labels.
const (
	SourceComment = "comment"
	SourceReply   = "reply"
)

// EngagementRule grows a post's engagement_rate when someone other than its
// owner comments on it or replies under it. It runs once per creation, inside
// the creating transaction, and never on updates.
type EngagementRule struct{}

// CommentCreated applies the rule for a new comment on post.
func (EngagementRule) CommentCreated(ctx context.Context, posts repository.PostRepository, post *models.Post, comment *models.Comment) (bool, error) {
	return bump(ctx, posts, post, comment.UserID)
}

// ReplyCreated applies the rule for a new reply under a comment on post.
func (EngagementRule) ReplyCreated(ctx context.Context, posts repository.PostRepository, post *models.Post, reply *models.Reply) (bool, error) {
	return bump(ctx, posts, post, reply.UserID)
}

// Counts reports whether an interaction by author counts toward the
// engagement of a post owned by owner.
func (EngagementRule) Counts(owner, author uint) bool {
	return owner != author
}

func bump(ctx context.Context, posts repository.PostRepository, post *models.Post, author uint) (bool, error) {
	if !(EngagementRule{}).Counts(post.UserID, author) {
		return false, nil
	}
	if err := posts.IncrementEngagement(ctx, post.ID); err != nil {
		return false, err
	}
	return true, nil
}
