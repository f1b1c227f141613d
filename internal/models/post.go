package models

import (
	"time"
)

// MaxBodyLen is the maximum length, in runes, of a post or reply body.
const MaxBodyLen = 5000

// Post represents an original short message. Posts are immutable once
// created; there is no edit path.
type Post struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	AuthorID  int64     `gorm:"not null;index;column:author_id" json:"author_id"`
	Body      string    `gorm:"type:varchar(5000);not null;column:body" json:"body"`
	CreatedAt time.Time `gorm:"not null;index;column:created_at" json:"created_at"`

	// Relationships
	Author *Profile `gorm:"foreignKey:AuthorID;references:ID" json:"-"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "porch_posts"
}
