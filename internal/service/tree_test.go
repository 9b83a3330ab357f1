package service

import (
	"encoding/json"
	"testing"
	"time"

	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemblePostTree(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	alice := models.User{ID: 1, Username: "alice"}
	bob := models.User{ID: 2, Username: "bob"}

	post := &models.Post{ID: 10, UserID: 1, User: alice, Text: longText, EngagementRate: 3, CreatedAt: now.Add(-2 * time.Hour)}
	comments := []*models.Comment{
		{ID: 22, PostID: 10, UserID: 2, User: bob, Text: "second", CreatedAt: now.Add(-30 * time.Minute)},
		{ID: 21, PostID: 10, UserID: 2, User: bob, Text: "first", CreatedAt: now.Add(-90 * time.Minute)},
		{ID: 99, PostID: 11, UserID: 2, User: bob, Text: "elsewhere", CreatedAt: now},
	}
	replies := []*models.Reply{
		{ID: 32, CommentID: 21, UserID: 1, User: alice, Text: "later", CreatedAt: now.Add(-10 * time.Minute)},
		{ID: 31, CommentID: 21, UserID: 2, User: bob, Text: "earlier", CreatedAt: now.Add(-20 * time.Minute)},
	}

	tree := AssemblePostTree(post, comments, replies, now)

	assert.Equal(t, uint(10), tree.ID)
	assert.Equal(t, models.Author{ID: 1, Username: "alice"}, tree.User)
	assert.Equal(t, "2 hours ago", tree.TimeSincePosted)
	assert.Equal(t, int64(3), tree.EngagementRate)

	require.Len(t, tree.Comments, 2)
	assert.Equal(t, "first", tree.Comments[0].Text)
	assert.Equal(t, "1 hour ago", tree.Comments[0].TimeSincePosted)
	assert.Equal(t, "second", tree.Comments[1].Text)

	require.Len(t, tree.Comments[0].Replies, 2)
	assert.Equal(t, "earlier", tree.Comments[0].Replies[0].Text)
	assert.Equal(t, "20 minutes ago", tree.Comments[0].Replies[0].TimeSincePosted)
	assert.Equal(t, "later", tree.Comments[0].Replies[1].Text)
	assert.NotNil(t, tree.Comments[1].Replies)
	assert.Empty(t, tree.Comments[1].Replies)
}

func TestAssemblePostTree_TiesOrderByID(t *testing.T) {
	t.Parallel()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	post := &models.Post{ID: 1}
	comments := []*models.Comment{
		{ID: 5, PostID: 1, CreatedAt: at},
		{ID: 4, PostID: 1, CreatedAt: at},
	}

	tree := AssemblePostTree(post, comments, nil, at)
	require.Len(t, tree.Comments, 2)
	assert.Equal(t, uint(4), tree.Comments[0].ID)
	assert.Equal(t, uint(5), tree.Comments[1].ID)
}

func TestAssemblePostTree_EmptyListsSerializeAsArrays(t *testing.T) {
	t.Parallel()
	now := time.Now()
	post := &models.Post{ID: 1, User: models.User{ID: 1, Username: "alice"}, CreatedAt: now}

	raw, err := json.Marshal(AssemblePostTree(post, nil, nil, now))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"comments":[]`)
	assert.Contains(t, string(raw), `"user":{"id":1,"username":"alice"}`)
	assert.Contains(t, string(raw), `"time_since_posted":"Just now"`)
}

func TestSummaryAndBasicViews(t *testing.T) {
	t.Parallel()
	now := time.Now()
	post := &models.Post{ID: 7, Text: longText, EngagementRate: 2, User: models.User{ID: 3, Username: "carol"}, CreatedAt: now.Add(-3 * 24 * time.Hour)}

	sum := SummarizePost(post, now)
	assert.Equal(t, PostSummary{ID: 7, Text: longText, User: models.Author{ID: 3, Username: "carol"}, TimeSincePosted: "3 days ago", EngagementRate: 2}, sum)

	raw, err := json.Marshal(BasicPost(post, now))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "engagement_rate")
	assert.NotContains(t, string(raw), "comments")
}
