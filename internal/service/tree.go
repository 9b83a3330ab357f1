package service

import (
	"sort"
	"time"

	"agora/internal/models"
)

// ReplyView is a reply as it appears inside a post tree.
type ReplyView struct {
	ID              uint          `json:"id"`
	User            models.Author `json:"user"`
	Text            string        `json:"text"`
	TimeSincePosted string        `json:"time_since_posted"`
}

// CommentView is a comment with its replies, oldest first.
type CommentView struct {
	ID              uint          `json:"id"`
	User            models.Author `json:"user"`
	Text            string        `json:"text"`
	TimeSincePosted string        `json:"time_since_posted"`
	Replies         []ReplyView   `json:"replies"`
}

// PostTree is the full read view of a post.
type PostTree struct {
	ID              uint          `json:"id"`
	User            models.Author `json:"user"`
	Text            string        `json:"text"`
	TimeSincePosted string        `json:"time_since_posted"`
	EngagementRate  int64         `json:"engagement_rate"`
	Comments        []CommentView `json:"comments"`
}

// PostSummary is a post as listed.
type PostSummary struct {
	ID              uint          `json:"id"`
	Text            string        `json:"text"`
	User            models.Author `json:"user"`
	TimeSincePosted string        `json:"time_since_posted"`
	EngagementRate  int64         `json:"engagement_rate"`
}

// PostBasic is a post without its comments.
type PostBasic struct {
	ID              uint          `json:"id"`
	User            models.Author `json:"user"`
	Text            string        `json:"text"`
	TimeSincePosted string        `json:"time_since_posted"`
}

// AssemblePostTree nests comments under post and replies under their
// comments. Rows that belong elsewhere are ignored. Children are ordered by
// time, then id, and child lists are never nil.
func AssemblePostTree(post *models.Post, comments []*models.Comment, replies []*models.Reply, now time.Time) PostTree {
	byComment := make(map[uint][]*models.Reply, len(comments))
	for _, r := range replies {
		byComment[r.CommentID] = append(byComment[r.CommentID], r)
	}

	own := make([]*models.Comment, 0, len(comments))
	for _, c := range comments {
		if c.PostID == post.ID {
			own = append(own, c)
		}
	}
	sort.SliceStable(own, func(i, j int) bool {
		return earlier(own[i].CreatedAt, own[i].ID, own[j].CreatedAt, own[j].ID)
	})

	views := make([]CommentView, 0, len(own))
	for _, c := range own {
		rs := byComment[c.ID]
		sort.SliceStable(rs, func(i, j int) bool {
			return earlier(rs[i].CreatedAt, rs[i].ID, rs[j].CreatedAt, rs[j].ID)
		})
		rviews := make([]ReplyView, 0, len(rs))
		for _, r := range rs {
			rviews = append(rviews, ReplyView{
				ID:              r.ID,
				User:            models.AuthorOf(r.User),
				Text:            r.Text,
				TimeSincePosted: TimeSincePosted(r.CreatedAt, now),
			})
		}
		views = append(views, CommentView{
			ID:              c.ID,
			User:            models.AuthorOf(c.User),
			Text:            c.Text,
			TimeSincePosted: TimeSincePosted(c.CreatedAt, now),
			Replies:         rviews,
		})
	}

	return PostTree{
		ID:              post.ID,
		User:            models.AuthorOf(post.User),
		Text:            post.Text,
		TimeSincePosted: TimeSincePosted(post.CreatedAt, now),
		EngagementRate:  post.EngagementRate,
		Comments:        views,
	}
}

// SummarizePost builds the list view of post.
func SummarizePost(post *models.Post, now time.Time) PostSummary {
	return PostSummary{
		ID:              post.ID,
		Text:            post.Text,
		User:            models.AuthorOf(post.User),
		TimeSincePosted: TimeSincePosted(post.CreatedAt, now),
		EngagementRate:  post.EngagementRate,
	}
}

// BasicPost builds the comment-free view of post.
func BasicPost(post *models.Post, now time.Time) PostBasic {
	return PostBasic{
		ID:              post.ID,
		User:            models.AuthorOf(post.User),
		Text:            post.Text,
		TimeSincePosted: TimeSincePosted(post.CreatedAt, now),
	}
}

func earlier(at time.Time, id uint, other time.Time, otherID uint) bool {
	if !at.Equal(other) {
		return at.Before(other)
	}
	return id < otherID
}
