package models

import (
	"database/sql"
	"time"
)

// Profile represents a member account. The handle is the public, unique,
// user-chosen identifier used in @mentions; it is distinct from the
// immutable numeric id and may be changed by its owner.
type Profile struct {
	ID          int64          `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	DisplayName string         `gorm:"type:varchar(60);not null;column:display_name" json:"display_name"`
	Handle      sql.NullString `gorm:"type:varchar(30);uniqueIndex:porch_profiles_handle_ux;column:handle" json:"handle"`
	Bio         sql.NullString `gorm:"type:varchar(300);column:bio" json:"bio"`
	CreatedAt   time.Time      `gorm:"not null;column:created_at" json:"created_at"`

	// Reward-unit balance; mutated by flows outside this engine.
	RewardBalance int64 `gorm:"not null;default:0;column:reward_balance" json:"reward_balance"`
}

// TableName specifies the table name for Profile
func (Profile) TableName() string {
	return "porch_profiles"
}

// HandleString returns the handle or "" when none is set.
func (p *Profile) HandleString() string {
	if p.Handle.Valid {
		return p.Handle.String
	}
	return ""
}
