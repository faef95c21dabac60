package handlers

import (
	"log"
	"net/http"

	"pollboard-backend/auth"
	"pollboard-backend/database"
	"pollboard-backend/models"

	"github.com/gin-gonic/gin"
)

// Dashboard routes the user to one of two landing views: creators (users
// with at least one poll) see the polls they created, everyone else sees
// the polls still open to them. The two lists partition the poll set
// from that user's perspective.
func Dashboard(c *gin.Context, session *auth.Session) {
	var createdCount int64
	if err := database.DB.Model(&models.Poll{}).
		Where("created_by = ?", session.UserID).
		Count(&createdCount).Error; err != nil {
		log.Printf("failed to count created polls: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}

	view := "voter"
	var polls []models.Poll
	var err error
	if createdCount > 0 {
		view = "creator"
		polls, err = createdPolls(session.UserID)
	} else {
		polls, err = openPolls(session.UserID)
	}
	if err != nil {
		log.Printf("failed to load %s dashboard: %v", view, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}

	entries, err := withVoteCounts(polls)
	if err != nil {
		log.Printf("failed to count votes for dashboard: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"view": view, "polls": entries})
}

// CreatedPolls lists the polls the user created, newest first.
func CreatedPolls(c *gin.Context, session *auth.Session) {
	polls, err := createdPolls(session.UserID)
	if err != nil {
		log.Printf("failed to load created polls: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve polls"})
		return
	}

	entries, err := withVoteCounts(polls)
	if err != nil {
		log.Printf("failed to count votes for created polls: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve polls"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

// OpenPolls lists polls the user can still vote in: not their own and
// not yet voted in. Expired polls stay listed so the frontend can label
// them closed.
func OpenPolls(c *gin.Context, session *auth.Session) {
	polls, err := openPolls(session.UserID)
	if err != nil {
		log.Printf("failed to load open polls: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve polls"})
		return
	}

	entries, err := withVoteCounts(polls)
	if err != nil {
		log.Printf("failed to count votes for open polls: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve polls"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func createdPolls(userID string) ([]models.Poll, error) {
	var polls []models.Poll
	err := database.DB.Preload("Options", orderByPosition).
		Where("created_by = ?", userID).
		Order("created_at desc").
		Find(&polls).Error
	return polls, err
}

// openPolls excludes voted-in polls with a subquery rather than a
// materialized id list, so a user with no votes yet still gets the full
// foreign set back.
func openPolls(userID string) ([]models.Poll, error) {
	var polls []models.Poll
	voted := database.DB.Model(&models.Vote{}).
		Select("poll_id").
		Where("user_id = ?", userID)
	err := database.DB.Preload("Options", orderByPosition).
		Where("created_by <> ?", userID).
		Where("id NOT IN (?)", voted).
		Order("created_at desc").
		Find(&polls).Error
	return polls, err
}
