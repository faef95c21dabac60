package handlers

import (
	"log"
	"net/http"

	"pollboard-backend/auth"
	"pollboard-backend/database"
	"pollboard-backend/models"

	"github.com/gin-gonic/gin"
)

// Profile returns the session user's activity stats: how many polls
// they created and how many they voted in. Both are indexed counts.
func Profile(c *gin.Context, session *auth.Session) {
	var pollsCreated int64
	if err := database.DB.Model(&models.Poll{}).
		Where("created_by = ?", session.UserID).
		Count(&pollsCreated).Error; err != nil {
		log.Printf("failed to count created polls for profile: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user statistics"})
		return
	}

	var pollsVoted int64
	if err := database.DB.Model(&models.Vote{}).
		Where("user_id = ?", session.UserID).
		Count(&pollsVoted).Error; err != nil {
		log.Printf("failed to count votes for profile: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user statistics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":            session.UserID,
		"email":         session.Email,
		"polls_created": pollsCreated,
		"polls_voted":   pollsVoted,
	})
}
