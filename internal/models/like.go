package models

import (
	"time"
)

// Like marks that a user liked a post. Existence of the row is the whole
// fact; at most one per (post, user) pair.
type Like struct {
	PostID    int64     `gorm:"primaryKey;column:post_id" json:"post_id"`
	UserID    int64     `gorm:"primaryKey;column:user_id" json:"user_id"`
	CreatedAt time.Time `gorm:"not null;column:created_at" json:"created_at"`

	// Relationships
	Post *Post    `gorm:"foreignKey:PostID;references:ID" json:"-"`
	User *Profile `gorm:"foreignKey:UserID;references:ID" json:"-"`
}

// TableName specifies the table name for Like
func (Like) TableName() string {
	return "porch_likes"
}
