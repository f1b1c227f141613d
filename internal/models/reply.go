package models

import (
	"time"
)

// Reply is a single-level response to a post. Replies do not themselves
// receive replies.
type Reply struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	PostID    int64     `gorm:"not null;index;column:post_id" json:"post_id"`
	AuthorID  int64     `gorm:"not null;column:author_id" json:"author_id"`
	Body      string    `gorm:"type:varchar(5000);not null;column:body" json:"body"`
	CreatedAt time.Time `gorm:"not null;column:created_at" json:"created_at"`

	// Relationships
	Post   *Post    `gorm:"foreignKey:PostID;references:ID" json:"-"`
	Author *Profile `gorm:"foreignKey:AuthorID;references:ID" json:"-"`
}

// TableName specifies the table name for Reply
func (Reply) TableName() string {
	return "porch_replies"
}
