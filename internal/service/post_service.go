package service

import (
	"context"
	"time"

	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/repository"
	"agora/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

type PostService struct {
	store *repository.Store
	now   func() time.Time
}

type CreatePostInput struct {
	UserID uint
	Text   string
}

type UpdatePostInput struct {
	UserID uint
	PostID uint
	Text   string
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

func NewPostService(store *repository.Store) *PostService {
	return &PostService{store: store, now: time.Now}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	text, err := validation.ValidatePostText(in.Text)
	if err != nil {
		return nil, models.NewFieldError("text", err.Error())
	}

	post := &models.Post{UserID: in.UserID, Text: text}
	if err := s.store.Posts.Create(ctx, post); err != nil {
		return nil, err
	}
	observability.ContentCreated.WithLabelValues("post").Inc()
	return post, nil
}

// ListPosts lists posts newest first, restricted to ownerID when it is not zero.
func (s *PostService) ListPosts(ctx context.Context, ownerID uint) ([]PostSummary, error) {
	posts, err := s.store.Posts.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]PostSummary, 0, len(posts))
	for _, p := range posts {
		out = append(out, SummarizePost(p, now))
	}
	return out, nil
}

// GetPostTree returns a post with its comments and their replies.
func (s *PostService) GetPostTree(ctx context.Context, postID uint) (tree *PostTree, err error) {
	ctx, finish := observability.StartSpan(ctx, "post_service", "get_tree", attribute.Int64("post.id", int64(postID)))
	defer func() { finish(err) }()

	post, err := s.store.Posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	comments, err := s.store.Comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.ID)
	}
	replies, err := s.store.Replies.ListByComments(ctx, ids)
	if err != nil {
		return nil, err
	}

	t := AssemblePostTree(post, comments, replies, s.now())
	return &t, nil
}

func (s *PostService) GetPostBasic(ctx context.Context, postID uint) (*PostBasic, error) {
	post, err := s.store.Posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	b := BasicPost(post, s.now())
	return &b, nil
}

// UpdatePost replaces the text of a post. Existence is checked before
// ownership, and ownership before the new text.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.store.Posts.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if err := RequireOwner(post.UserID, in.UserID); err != nil {
		return nil, err
	}
	text, err := validation.ValidatePostText(in.Text)
	if err != nil {
		return nil, models.NewFieldError("text", err.Error())
	}

	if err := s.store.Posts.UpdateText(ctx, post.ID, text); err != nil {
		return nil, err
	}
	post.Text = text
	return post, nil
}

// DeletePost removes a post and everything under it.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.store.Posts.GetByID(ctx, in.PostID)
	if err != nil {
		return err
	}
	if err := RequireOwner(post.UserID, in.UserID); err != nil {
		return err
	}
	if err := s.store.Posts.Delete(ctx, post.ID); err != nil {
		return err
	}
	observability.ContentDeleted.WithLabelValues("post").Inc()
	return nil
}
