package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Poll represents a question with a fixed set of options, owned by its creator.
type Poll struct {
	ID             string     `gorm:"primaryKey;size:36" json:"id"`
	Title          string     `gorm:"not null" json:"title"`
	Description    string     `gorm:"type:text" json:"description"`
	CreatedBy      string     `gorm:"not null;index;size:36" json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"` // Optional cutoff for new votes
	Options        []Option   `gorm:"foreignKey:PollID" json:"options"`
}

// Option is one selectable answer belonging to exactly one poll.
// The option set is fixed once the poll is created; Position preserves
// creation order for stable result ordering.
type Option struct {
	ID         string `gorm:"primaryKey;size:36" json:"id"`
	PollID     string `gorm:"not null;index;size:36" json:"poll_id"`
	OptionText string `gorm:"not null" json:"option_text"`
	Position   int    `gorm:"not null;default:0" json:"position"`
}

func (p *Poll) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (o *Option) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}
