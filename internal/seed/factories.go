package seed

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/service"
	"agora/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is the password every seeded account can log in with.
const DefaultPassword = "password123"

// Factory builds domain entities and persists them through the repositories.
// Comments and replies go through the engagement rule, so seeded posts carry
// the engagement_rate their children imply.
type Factory struct {
	store *repository.Store
	opts  Options
	rule  service.EngagementRule
	rng   *rand.Rand
	now   func() time.Time
	hash  string
}

// NewFactory creates a Factory writing to store.
func NewFactory(store *repository.Store, opts Options) *Factory {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gofakeit.Seed(seed)
	return &Factory{
		store: store,
		opts:  opts,
		rng:   rand.New(rand.NewSource(seed)), //nolint:gosec // Weak random number generator is fine for seeding
		now:   time.Now,
	}
}

func (f *Factory) passwordHash() (string, error) {
	if f.hash != "" {
		return f.hash, nil
	}
	cost := f.opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), cost)
	if err != nil {
		return "", fmt.Errorf("hash seed password: %w", err)
	}
	f.hash = string(hashed)
	return f.hash, nil
}

// CreateUser persists an active account. Optional overrides run before the
// insert.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	hash, err := f.passwordHash()
	if err != nil {
		return nil, err
	}

	username := fmt.Sprintf("%s%d", strings.ToLower(gofakeit.Username()), gofakeit.Number(100, 999))
	if len(username) > 30 {
		username = username[len(username)-30:]
	}
	user := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@%s", username, gofakeit.DomainName()),
		Name:     gofakeit.FirstName(),
		Surname:  gofakeit.LastName(),
		Bio:      gofakeit.Sentence(10),
		Password: hash,
		IsActive: true,
	}
	for _, override := range overrides {
		override(user)
	}

	if err := f.store.Users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post for author with a created_at somewhere in the
// last MaxDays days. It does not persist it.
func (f *Factory) BuildPost(author *models.User, overrides ...func(*models.Post)) *models.Post {
	text := gofakeit.Paragraph(1, 3, 12, " ")
	for {
		if _, err := validation.ValidatePostText(text); err == nil {
			break
		}
		text += " " + gofakeit.Sentence(8)
	}
	if len([]rune(text)) > models.MaxTextLength {
		text = string([]rune(text)[:models.MaxTextLength])
	}

	post := &models.Post{
		UserID:    author.ID,
		Text:      text,
		CreatedAt: f.pastTime(),
	}
	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePost builds and persists a post.
func (f *Factory) CreatePost(ctx context.Context, author *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(author, overrides...)
	if err := f.store.Posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a comment by author on post, posted after the post,
// and applies the engagement rule in the same transaction.
func (f *Factory) CreateComment(ctx context.Context, author *models.User, post *models.Post) (*models.Comment, error) {
	comment := &models.Comment{
		UserID:    author.ID,
		PostID:    post.ID,
		Text:      gofakeit.Sentence(gofakeit.Number(4, 16)),
		CreatedAt: f.timeAfter(post.CreatedAt),
	}
	err := f.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Comments.Create(ctx, comment); err != nil {
			return err
		}
		counted, err := f.rule.CommentCreated(ctx, tx.Posts, post, comment)
		if counted {
			post.EngagementRate++
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateReply persists a reply by author under comment, which belongs to
// post.
func (f *Factory) CreateReply(ctx context.Context, author *models.User, post *models.Post, comment *models.Comment) (*models.Reply, error) {
	reply := &models.Reply{
		UserID:    author.ID,
		CommentID: comment.ID,
		Text:      gofakeit.Sentence(gofakeit.Number(3, 12)),
		CreatedAt: f.timeAfter(comment.CreatedAt),
	}
	err := f.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Replies.Create(ctx, reply); err != nil {
			return err
		}
		counted, err := f.rule.ReplyCreated(ctx, tx.Posts, post, reply)
		if counted {
			post.EngagementRate++
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}

func (f *Factory) pastTime() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.rng.Intn(maxDays))*24*time.Hour +
		time.Duration(f.rng.Intn(24))*time.Hour +
		time.Duration(f.rng.Intn(60))*time.Minute
	return f.now().Add(-back)
}

// timeAfter picks a moment between t and now.
func (f *Factory) timeAfter(t time.Time) time.Time {
	window := f.now().Sub(t)
	if window <= 0 {
		return f.now()
	}
	return t.Add(time.Duration(f.rng.Int63n(int64(window))))
}
