// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"agora/internal/models"

	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

// Store groups the repositories that share one connection or transaction.
type Store struct {
	db       *gorm.DB
	Users    UserRepository
	Posts    PostRepository
	Comments CommentRepository
	Replies  ReplyRepository
}

// NewStore wires every repository onto db.
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:       db,
		Users:    NewUserRepository(db),
		Posts:    NewPostRepository(db),
		Comments: NewCommentRepository(db),
		Replies:  NewReplyRepository(db),
	}
}

// Transaction runs fn with repositories bound to a single database
// transaction. A Store built without a connection (as in unit tests) runs fn
// against itself.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	if s.db == nil {
		return fn(s)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// readDB prefers a replica when dbresolver is registered. Inside a
// transaction the statement stays on the transaction's connection.
func readDB(ctx context.Context, db *gorm.DB) *gorm.DB {
	return db.WithContext(ctx).Clauses(dbresolver.Read)
}

// primaryDB forces the primary, for reads that must see a write just made.
func primaryDB(ctx context.Context, db *gorm.DB) *gorm.DB {
	return db.WithContext(ctx).Clauses(dbresolver.Write)
}

func translateNotFound(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(message)
	}
	return models.NewInternalError(err)
}
