package models

import "time"

const (
	// MaxTextLength caps the text of posts, comments and replies.
	MaxTextLength = 5000
	// MinPostTextLength is the trimmed length a post text must exceed.
	MinPostTextLength = 30
)

// Post is a top-level piece of content owned by its author.
// EngagementRate only ever grows; see service.EngagementRule.
type Post struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;index" json:"user_id"`
	User           User      `gorm:"foreignKey:UserID" json:"user"`
	Text           string    `gorm:"type:text;not null" json:"text"`
	EngagementRate int64     `gorm:"not null;default:0" json:"engagement_rate"`
	CreatedAt      time.Time `gorm:"index" json:"time"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Post) TableName() string {
	return "posts"
}

// Comment belongs to a post.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	Post      *Post     `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `gorm:"index" json:"time"`
}

// TableName specifies the table name for GORM.
func (Comment) TableName() string {
	return "comments"
}

// Reply belongs to a comment.
type Reply struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
	CommentID uint      `gorm:"not null;index" json:"comment_id"`
	Comment   *Comment  `gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE" json:"-"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `gorm:"index" json:"time"`
}

// TableName specifies the table name for GORM.
func (Reply) TableName() string {
	return "replies"
}
