package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"pollboard-backend/auth"
	"pollboard-backend/cache"
	"pollboard-backend/database"
	"pollboard-backend/models"
	"pollboard-backend/poll"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreatePollInput defines the expected input structure for creating a poll.
type CreatePollInput struct {
	Title          string     `json:"title" binding:"required"`
	Description    string     `json:"description" binding:"required"`
	Options        []string   `json:"options" binding:"required"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
}

// CreatePoll persists a new poll with its option set. The option draft is
// validated before anything touches the store, so an undersized or
// half-empty draft never produces rows.
func CreatePoll(c *gin.Context, session *auth.Session) {
	var input CreatePollInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please fill in all fields"})
		return
	}

	draft := poll.DraftOptions(input.Options)
	if err := draft.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.ExpirationDate != nil && input.ExpirationDate.Before(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Expiration date must be in the future"})
		return
	}

	// Identity bootstrap: the users row must exist before the poll
	// references it.
	if err := database.UpsertUser(database.DB, session.UserID, session.Email); err != nil {
		log.Printf("failed to upsert user %s: %v", session.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create poll"})
		return
	}

	newPoll := models.Poll{
		Title:          title,
		Description:    description,
		CreatedBy:      session.UserID,
		ExpirationDate: input.ExpirationDate,
	}

	texts := draft.Trimmed()
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newPoll).Error; err != nil {
			return err
		}
		options := make([]models.Option, len(texts))
		for i, text := range texts {
			options[i] = models.Option{
				PollID:     newPoll.ID,
				OptionText: text,
				Position:   i,
			}
		}
		return tx.Create(&options).Error
	})
	if err != nil {
		log.Printf("failed to create poll: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create poll"})
		return
	}

	var created models.Poll
	if err := database.DB.Preload("Options", orderByPosition).First(&created, "id = ?", newPoll.ID).Error; err != nil {
		log.Printf("failed to reload poll after creation: %v", err)
		c.JSON(http.StatusCreated, newPoll)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func orderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position asc")
}

// GetPolls lists every poll, newest first, with its total vote count.
func GetPolls(c *gin.Context, session *auth.Session) {
	var polls []models.Poll
	if err := database.DB.Preload("Options", orderByPosition).
		Order("created_at desc").Find(&polls).Error; err != nil {
		log.Printf("failed to list polls: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve polls"})
		return
	}

	entries, err := withVoteCounts(polls)
	if err != nil {
		log.Printf("failed to count votes for poll list: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve polls"})
		return
	}

	c.JSON(http.StatusOK, entries)
}

// pollListEntry is a poll row in a list response, annotated with its
// total vote count.
type pollListEntry struct {
	models.Poll
	VoteCount int64 `json:"vote_count"`
}

// withVoteCounts annotates polls with their total vote counts using one
// grouped query. Polls with no votes default to zero; a failed
// aggregation is an error, never a list of fabricated zero tallies.
func withVoteCounts(polls []models.Poll) ([]pollListEntry, error) {
	entries := make([]pollListEntry, len(polls))
	for i, p := range polls {
		entries[i] = pollListEntry{Poll: p}
	}
	if len(polls) == 0 {
		return entries, nil
	}

	ids := make([]string, len(polls))
	for i, p := range polls {
		ids[i] = p.ID
	}

	var rows []struct {
		PollID string
		Count  int64
	}
	err := database.DB.Model(&models.Vote{}).
		Select("poll_id, count(*) as count").
		Where("poll_id IN ?", ids).
		Group("poll_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.PollID] = r.Count
	}
	for i := range entries {
		entries[i].VoteCount = counts[entries[i].ID]
	}
	return entries, nil
}

// GetPoll returns one poll, rendered either as a ballot or as aggregated
// results: the creator and anyone who already voted see results,
// everyone else gets the selectable ballot.
func GetPoll(c *gin.Context, session *auth.Session) {
	p, ok := loadPoll(c)
	if !ok {
		return
	}

	userVote, err := database.UserVote(database.DB, p.ID, session.UserID)
	if err != nil {
		log.Printf("failed to look up user vote: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve poll"})
		return
	}

	isCreator := poll.IsCreator(p, session.UserID)
	hasVoted := userVote != ""
	view := poll.DecideDetailView(isCreator, hasVoted)

	response := gin.H{
		"id":              p.ID,
		"title":           p.Title,
		"description":     p.Description,
		"created_by":      p.CreatedBy,
		"created_at":      p.CreatedAt,
		"expiration_date": p.ExpirationDate,
		"is_expired":      poll.IsExpired(p, time.Now()),
		"is_creator":      isCreator,
		"has_voted":       hasVoted,
		"view":            view,
	}

	if view == poll.ViewResults {
		counts, err := database.CountVotesByOption(database.DB, p.ID)
		if err != nil {
			log.Printf("failed to count votes: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve poll"})
			return
		}
		tally := poll.ComputeTally(p.Options, counts)
		response["tally"] = tally
		response["total_votes"] = poll.TotalVotes(tally)
		response["user_vote"] = userVote
	} else {
		response["options"] = p.Options
	}

	c.JSON(http.StatusOK, response)
}

// GetPollResults returns the results view: options ordered by vote count
// descending (ties keep creation order) with the leading flag on top.
func GetPollResults(c *gin.Context, session *auth.Session) {
	p, ok := loadPoll(c)
	if !ok {
		return
	}

	counts, err := database.CountVotesByOption(database.DB, p.ID)
	if err != nil {
		log.Printf("failed to count votes: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve results"})
		return
	}

	userVote, err := database.UserVote(database.DB, p.ID, session.UserID)
	if err != nil {
		log.Printf("failed to look up user vote: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve results"})
		return
	}

	tally := poll.ComputeTally(p.Options, counts)
	c.JSON(http.StatusOK, gin.H{
		"id":          p.ID,
		"title":       p.Title,
		"description": p.Description,
		"is_creator":  poll.IsCreator(p, session.UserID),
		"has_voted":   userVote != "",
		"results":     poll.SortedResults(tally),
		"total_votes": poll.TotalVotes(tally),
	})
}

// DeletePoll removes a poll with its votes and options. Only the creator
// may delete. The three deletes run votes → options → poll inside one
// transaction, serialized per poll by a distributed lock so concurrent
// deletes across instances do not interleave.
func DeletePoll(c *gin.Context, session *auth.Session) {
	p, ok := loadPoll(c)
	if !ok {
		return
	}

	if !poll.IsCreator(p, session.UserID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the creator can delete a poll"})
		return
	}

	err := cache.GetLockService().WithLock("poll_delete:"+p.ID, 10*time.Second, func() error {
		return database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("poll_id = ?", p.ID).Delete(&models.Vote{}).Error; err != nil {
				return err
			}
			if err := tx.Where("poll_id = ?", p.ID).Delete(&models.Option{}).Error; err != nil {
				return err
			}
			return tx.Where("id = ?", p.ID).Delete(&models.Poll{}).Error
		})
	})
	if err != nil {
		log.Printf("failed to delete poll %s: %v", p.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete poll"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Poll deleted successfully"})
}

// loadPoll fetches the poll named in the route with its options in
// creation order, writing the error response itself when that fails.
func loadPoll(c *gin.Context) (*models.Poll, bool) {
	pollID := c.Param("id")

	var p models.Poll
	err := database.DB.Preload("Options", orderByPosition).First(&p, "id = ?", pollID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Poll not found"})
		} else {
			log.Printf("failed to load poll %s: %v", pollID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve poll"})
		}
		return nil, false
	}
	return &p, true
}
