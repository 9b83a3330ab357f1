// Package models contains data structures for the application's domain models.
package models

import "time"

// User is an account that can author posts, comments and replies.
// Accounts start inactive until the email verification flow activates them.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:30;not null;uniqueIndex" json:"username"`
	Email     string    `gorm:"size:254;not null;uniqueIndex" json:"email"`
	Name      string    `gorm:"size:60;not null" json:"name"`
	Surname   string    `gorm:"size:60;not null" json:"surname"`
	Bio       string    `gorm:"size:500" json:"bio"`
	Password  string    `gorm:"not null" json:"-"`
	IsActive  bool      `gorm:"not null;default:false" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}

// Author is the public identity of a content owner.
type Author struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// AuthorOf returns the public identity of u.
func AuthorOf(u User) Author {
	return Author{ID: u.ID, Username: u.Username}
}
