package models

import (
	"database/sql"
	"time"
)

// PreviewLen is the maximum length, in runes, of a notification's
// content preview.
const PreviewLen = 100

// Notification represents one engagement event delivered to one
// recipient. Rows are append-only; only the read flag ever changes.
type Notification struct {
	ID          int64          `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Kind        int16          `gorm:"type:smallint;not null;column:kind" json:"kind"`
	RecipientID int64          `gorm:"not null;index;column:recipient_id" json:"recipient_id"`
	SenderID    int64          `gorm:"not null;column:sender_id" json:"sender_id"`
	PostID      sql.NullInt64  `gorm:"column:post_id" json:"post_id"`
	ReplyID     sql.NullInt64  `gorm:"column:reply_id" json:"reply_id"`
	Content     sql.NullString `gorm:"type:varchar(100);column:content" json:"content"`
	Read        bool           `gorm:"not null;default:false;column:read" json:"read"`
	CreatedAt   time.Time      `gorm:"not null;column:created_at" json:"created_at"`

	// Relationships
	Recipient *Profile `gorm:"foreignKey:RecipientID;references:ID" json:"-"`
	Sender    *Profile `gorm:"foreignKey:SenderID;references:ID" json:"-"`
}

// TableName specifies the table name for Notification
func (Notification) TableName() string {
	return "porch_notifications"
}

// Notification kind constants
const (
	NotifyKindMentionPost  int16 = 1
	NotifyKindMentionReply int16 = 2
	NotifyKindLike         int16 = 3
	NotifyKindEcho         int16 = 4
	NotifyKindReply        int16 = 5
)

// NotifyKindName returns the wire name for a notification kind.
func NotifyKindName(kind int16) string {
	names := map[int16]string{
		NotifyKindMentionPost:  "mention_post",
		NotifyKindMentionReply: "mention_reply",
		NotifyKindLike:         "like",
		NotifyKindEcho:         "echo",
		NotifyKindReply:        "reply",
	}
	if name, ok := names[kind]; ok {
		return name
	}
	return "unknown"
}
