package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vote records a single user's choice within one poll. The composite
// unique index on (poll_id, user_id) is the only cross-client
// serialization point: a second insert for the same pair fails at the
// store regardless of timing.
type Vote struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	PollID    string    `gorm:"not null;uniqueIndex:idx_poll_voter;size:36" json:"poll_id"`
	OptionID  string    `gorm:"not null;index;size:36" json:"option_id"`
	UserID    string    `gorm:"not null;uniqueIndex:idx_poll_voter;size:36" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (v *Vote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}
