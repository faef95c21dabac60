package poll

import (
	"time"

	"pollboard-backend/models"
)

// Admit gates a vote attempt before it is persisted. Preconditions are
// checked in order: an option must be selected, the poll must not be
// expired, and the option must belong to the poll. The one-vote-per-user
// rule is deliberately NOT checked here: the store's unique index on
// (poll_id, user_id) enforces it atomically, and a read-then-write check
// would only race against concurrent voters.
func Admit(p *models.Poll, optionID string, now time.Time) error {
	if optionID == "" {
		return NewValidationError("no option selected")
	}
	if IsExpired(p, now) {
		return ErrExpired
	}
	for _, opt := range p.Options {
		if opt.ID == optionID {
			return nil
		}
	}
	return NewValidationError("option does not belong to this poll")
}
