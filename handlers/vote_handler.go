package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"pollboard-backend/auth"
	"pollboard-backend/database"
	"pollboard-backend/models"
	"pollboard-backend/poll"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// VoteInput defines the expected input structure for casting a vote.
type VoteInput struct {
	OptionID string `json:"option_id"`
}

// SubmitVote records one vote for the session's user. Admission checks
// (selection present, poll open, option belongs to the poll) run in
// memory; the one-vote-per-user rule is enforced by the unique index on
// (poll_id, user_id), so two racing requests from the same user collapse
// to a single row and the loser gets a conflict.
func SubmitVote(c *gin.Context, session *auth.Session) {
	p, ok := loadPoll(c)
	if !ok {
		return
	}

	var input VoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := poll.Admit(p, input.OptionID, time.Now()); err != nil {
		if errors.Is(err, poll.ErrExpired) {
			c.JSON(http.StatusForbidden, gin.H{"error": "This poll has expired"})
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	if err := database.UpsertUser(database.DB, session.UserID, session.Email); err != nil {
		log.Printf("failed to upsert user %s: %v", session.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit vote"})
		return
	}

	vote := models.Vote{
		PollID:   p.ID,
		OptionID: input.OptionID,
		UserID:   session.UserID,
	}
	if err := database.DB.Create(&vote).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "You have already voted in this poll"})
			return
		}
		log.Printf("failed to record vote on poll %s: %v", p.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit vote"})
		return
	}

	counts, err := database.CountVotesByOption(database.DB, p.ID)
	if err != nil {
		log.Printf("failed to count votes after submit: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit vote"})
		return
	}

	tally := poll.ComputeTally(p.Options, counts)
	total := poll.TotalVotes(tally)

	if voteBridge != nil {
		go voteBridge.PublishTally(context.Background(), p.ID, gin.H{
			"tally":       tally,
			"total_votes": total,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Vote recorded",
		"poll_id":     p.ID,
		"user_vote":   input.OptionID,
		"tally":       tally,
		"total_votes": total,
	})
}
