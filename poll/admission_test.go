package poll

import (
	"testing"
	"time"

	"pollboard-backend/models"

	"github.com/stretchr/testify/assert"
)

func admissionPoll(expiration *time.Time) *models.Poll {
	return &models.Poll{
		ID:             "poll-1",
		CreatedBy:      "creator",
		ExpirationDate: expiration,
		Options: []models.Option{
			{ID: "opt-a", OptionText: "A", Position: 0},
			{ID: "opt-b", OptionText: "B", Position: 1},
		},
	}
}

func TestAdmit_Success(t *testing.T) {
	err := Admit(admissionPoll(nil), "opt-a", time.Now())
	assert.NoError(t, err)
}

func TestAdmit_NoOptionSelected(t *testing.T) {
	err := Admit(admissionPoll(nil), "", time.Now())

	assert.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, "no option selected", err.Error())
}

func TestAdmit_Expired(t *testing.T) {
	yesterday := time.Now().Add(-24 * time.Hour)

	// Expiration blocks the vote even with a valid option selected.
	err := Admit(admissionPoll(&yesterday), "opt-a", time.Now())
	assert.ErrorIs(t, err, ErrExpired)
}

func TestAdmit_ExpiredCheckedBeforeOptionOwnership(t *testing.T) {
	yesterday := time.Now().Add(-24 * time.Hour)

	// An unknown option on an expired poll still reports expiry: the
	// missing-selection check comes first, expiry second, ownership last.
	err := Admit(admissionPoll(&yesterday), "opt-unknown", time.Now())
	assert.ErrorIs(t, err, ErrExpired)

	err = Admit(admissionPoll(&yesterday), "", time.Now())
	assert.True(t, IsValidation(err))
}

func TestAdmit_ForeignOption(t *testing.T) {
	err := Admit(admissionPoll(nil), "opt-of-another-poll", time.Now())

	assert.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestAdmit_NotExpiredAtExactTimestamp(t *testing.T) {
	now := time.Now()

	// Strictly-before comparison: a poll expiring exactly now still
	// admits the vote.
	err := Admit(admissionPoll(&now), "opt-a", now)
	assert.NoError(t, err)
}
