package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"agora/internal/models"
	"agora/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngagement_CommentsAndReplies(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	store := newStore(db)
	owner := seedUser(t, db, "owner")
	other := seedUser(t, db, "other")

	post, err := NewPostService(store).CreatePost(context.Background(), CreatePostInput{UserID: owner.ID, Text: longText})
	require.NoError(t, err)

	comments := NewCommentService(store)
	replies := NewReplyService(store)
	ctx := context.Background()

	own, err := comments.CreateComment(ctx, CreateCommentInput{UserID: owner.ID, PostID: post.ID, Text: "mine"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), reloadPost(t, db, post.ID).EngagementRate)

	theirs, err := comments.CreateComment(ctx, CreateCommentInput{UserID: other.ID, PostID: post.ID, Text: "theirs"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), reloadPost(t, db, post.ID).EngagementRate)

	_, err = replies.CreateReply(ctx, CreateReplyInput{UserID: other.ID, CommentID: own.ID, Text: "reply"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), reloadPost(t, db, post.ID).EngagementRate)

	// The owner replying under someone else's comment is still the owner.
	_, err = replies.CreateReply(ctx, CreateReplyInput{UserID: owner.ID, CommentID: theirs.ID, Text: "thanks"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), reloadPost(t, db, post.ID).EngagementRate)
}

func TestEngagement_UpdateDoesNotCount(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	store := newStore(db)
	owner := seedUser(t, db, "owner")
	other := seedUser(t, db, "other")

	posts := NewPostService(store)
	post, err := posts.CreatePost(context.Background(), CreatePostInput{UserID: owner.ID, Text: longText})
	require.NoError(t, err)
	_, err = NewCommentService(store).CreateComment(context.Background(), CreateCommentInput{UserID: other.ID, PostID: post.ID, Text: "hey"})
	require.NoError(t, err)

	before := reloadPost(t, db, post.ID)
	_, err = posts.UpdatePost(context.Background(), UpdatePostInput{UserID: owner.ID, PostID: post.ID, Text: longText + " edited"})
	require.NoError(t, err)

	after := reloadPost(t, db, post.ID)
	assert.Equal(t, before.EngagementRate, after.EngagementRate)
	assert.True(t, before.CreatedAt.Equal(after.CreatedAt))
	assert.Equal(t, longText+" edited", after.Text)
}

func TestEngagement_RejectedChildrenLeaveNoTrace(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	store := newStore(db)
	owner := seedUser(t, db, "owner")
	other := seedUser(t, db, "other")
	post, err := NewPostService(store).CreatePost(context.Background(), CreatePostInput{UserID: owner.ID, Text: longText})
	require.NoError(t, err)

	comments := NewCommentService(store)
	_, err = comments.CreateComment(context.Background(), CreateCommentInput{UserID: other.ID, PostID: post.ID, Text: "   "})
	assert.True(t, models.HasCode(err, models.CodeValidation))
	_, err = comments.CreateComment(context.Background(), CreateCommentInput{UserID: other.ID, PostID: post.ID, Text: strings.Repeat("x", 5001)})
	assert.True(t, models.HasCode(err, models.CodeValidation))

	_, err = comments.CreateComment(context.Background(), CreateCommentInput{UserID: other.ID, PostID: 999, Text: "hi"})
	require.Error(t, err)
	assert.Equal(t, models.MsgPostNotFound, err.Error())

	_, err = NewReplyService(store).CreateReply(context.Background(), CreateReplyInput{UserID: other.ID, CommentID: 999, Text: "hi"})
	require.Error(t, err)
	assert.Equal(t, models.MsgCommentNotFound, err.Error())

	var count int64
	require.NoError(t, db.Model(&models.Comment{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Equal(t, int64(0), reloadPost(t, db, post.ID).EngagementRate)
}

func TestEngagement_FailedIncrementRollsBackComment(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	owner := seedUser(t, db, "owner")
	other := seedUser(t, db, "other")
	post := &models.Post{UserID: owner.ID, Text: longText}
	require.NoError(t, db.Create(post).Error)

	store := newStore(db)
	boom := errors.New("increment failed")
	err := store.Transaction(context.Background(), func(tx *repository.Store) error {
		c := &models.Comment{UserID: other.ID, PostID: post.ID, Text: "hi"}
		require.NoError(t, tx.Comments.Create(context.Background(), c))
		if _, err := (EngagementRule{}).CommentCreated(context.Background(), failingIncrement{tx.Posts, boom}, post, c); err != nil {
			return err
		}
		return nil
	})
	require.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.Model(&models.Comment{}).Count(&count).Error)
	assert.Zero(t, count)
}

type failingIncrement struct {
	repository.PostRepository
	err error
}

func (f failingIncrement) IncrementEngagement(context.Context, uint) error { return f.err }

func TestReplyService_FallsBackToPostLookup(t *testing.T) {
	t.Parallel()
	posts := noopPostRepo(t)
	posts.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return &models.Post{ID: id, UserID: 1}, nil
	}
	var incremented uint
	posts.incrementFn = func(_ context.Context, id uint) error {
		incremented = id
		return nil
	}

	store := &repository.Store{
		Posts:    posts,
		Comments: commentRepoStub{comment: &models.Comment{ID: 3, PostID: 8}},
		Replies:  replyRepoStub{},
	}
	reply, err := NewReplyService(store).CreateReply(context.Background(), CreateReplyInput{UserID: 2, CommentID: 3, Text: " ok "})
	require.NoError(t, err)
	assert.Equal(t, "ok", reply.Text)
	assert.Equal(t, uint(8), incremented)
}

type commentRepoStub struct {
	comment *models.Comment
}

func (s commentRepoStub) Create(context.Context, *models.Comment) error { return nil }
func (s commentRepoStub) GetByID(context.Context, uint) (*models.Comment, error) {
	return s.comment, nil
}
func (s commentRepoStub) ListByPost(context.Context, uint) ([]*models.Comment, error) {
	return []*models.Comment{}, nil
}

type replyRepoStub struct{}

func (replyRepoStub) Create(context.Context, *models.Reply) error { return nil }
func (replyRepoStub) ListByComments(context.Context, []uint) ([]*models.Reply, error) {
	return []*models.Reply{}, nil
}
