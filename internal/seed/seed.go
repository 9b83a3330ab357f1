// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"context"
	"fmt"
	"log"

	"agora/internal/models"
	"agora/internal/repository"

	"gorm.io/gorm"
)

// Options configure the seeder. Zero values fall back to sensible defaults.
type Options struct {
	MaxDays    int
	BcryptCost int
	// RandSeed makes runs reproducible when set.
	RandSeed int64
}

// Shape describes how much content to generate.
type Shape struct {
	Users             int `yaml:"users"`
	PostsPerUser      int `yaml:"posts_per_user"`
	CommentsPerPost   int `yaml:"comments_per_post"`
	RepliesPerComment int `yaml:"replies_per_comment"`
	MaxDays           int `yaml:"max_days"`
}

// Result counts what a run created.
type Result struct {
	Users    []*models.User
	Posts    int
	Comments int
	Replies  int
}

// Seeder fills a database with fake accounts and content.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder writing to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{
		db:      db,
		factory: NewFactory(repository.NewStore(db), opts),
	}
}

// ClearAll removes every row of content and every account, children first.
func (s *Seeder) ClearAll() error {
	log.Println("🗑️  Clearing existing data...")
	if s.db.Dialector.Name() == "postgres" {
		return s.db.Exec(`TRUNCATE TABLE replies, comments, posts, users RESTART IDENTITY CASCADE`).Error
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&models.Reply{}, &models.Comment{}, &models.Post{}, &models.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SeedUsers creates count active accounts. Username collisions are retried
// with fresh fake data.
func (s *Seeder) SeedUsers(ctx context.Context, count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)
	for len(users) < count {
		var (
			user *models.User
			err  error
		)
		for attempt := 0; attempt < 3; attempt++ {
			user, err = s.factory.CreateUser(ctx)
			if err == nil || !isDuplicate(err) {
				break
			}
		}
		if err != nil {
			return users, fmt.Errorf("create user %d: %w", len(users)+1, err)
		}
		users = append(users, user)
		if len(users)%100 == 0 {
			log.Printf("Created %d users...", len(users))
		}
	}
	return users, nil
}

// SeedContent gives every user shape.PostsPerUser posts. Comments and
// replies come from randomly picked users, the post owner included.
func (s *Seeder) SeedContent(ctx context.Context, users []*models.User, shape Shape) (*Result, error) {
	res := &Result{Users: users}
	if len(users) == 0 {
		return res, nil
	}
	pick := func() *models.User { return users[s.factory.rng.Intn(len(users))] }

	for _, author := range users {
		for i := 0; i < shape.PostsPerUser; i++ {
			post, err := s.factory.CreatePost(ctx, author)
			if err != nil {
				return res, fmt.Errorf("create post: %w", err)
			}
			res.Posts++

			for j := 0; j < shape.CommentsPerPost; j++ {
				comment, err := s.factory.CreateComment(ctx, pick(), post)
				if err != nil {
					return res, fmt.Errorf("create comment: %w", err)
				}
				res.Comments++

				for k := 0; k < shape.RepliesPerComment; k++ {
					if _, err := s.factory.CreateReply(ctx, pick(), post, comment); err != nil {
						return res, fmt.Errorf("create reply: %w", err)
					}
					res.Replies++
				}
			}
		}
	}
	return res, nil
}

// Run seeds users and their content according to shape.
func (s *Seeder) Run(ctx context.Context, shape Shape) (*Result, error) {
	if shape.MaxDays > 0 {
		s.factory.opts.MaxDays = shape.MaxDays
	}
	users, err := s.SeedUsers(ctx, shape.Users)
	if err != nil {
		return nil, err
	}
	log.Printf("✓ %d users created", len(users))

	res, err := s.SeedContent(ctx, users, shape)
	if err != nil {
		return nil, err
	}
	log.Printf("✓ %d posts, %d comments, %d replies created", res.Posts, res.Comments, res.Replies)
	return res, nil
}

func isDuplicate(err error) bool {
	return models.HasCode(err, models.CodeConflict) || models.HasCode(err, models.CodeValidation)
}
