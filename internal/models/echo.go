package models

import (
	"time"
)

// Echo represents a rebroadcast of another user's post: "user U echoed
// post P at time T". The (post, user) pair is unique; a second echo of
// the same post by the same user is a no-op at the storage layer.
type Echo struct {
	PostID    int64     `gorm:"primaryKey;column:post_id" json:"post_id"`
	UserID    int64     `gorm:"primaryKey;column:user_id" json:"user_id"`
	CreatedAt time.Time `gorm:"not null;index;column:created_at" json:"created_at"`

	// Relationships
	Post *Post    `gorm:"foreignKey:PostID;references:ID" json:"-"`
	User *Profile `gorm:"foreignKey:UserID;references:ID" json:"-"`
}

// TableName specifies the table name for Echo
func (Echo) TableName() string {
	return "porch_echoes"
}
