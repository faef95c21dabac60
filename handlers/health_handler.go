package handlers

import (
	"net/http"
	"time"

	"pollboard-backend/cache"
	"pollboard-backend/database"

	"github.com/gin-gonic/gin"
)

// HealthCheck reports the health of the service and its dependencies.
// The database is required; Redis is optional, so an absent Redis only
// degrades the status, it never fails the check.
func HealthCheck(c *gin.Context) {
	status := http.StatusOK
	health := gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	}

	sqlDB, err := database.DB.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		health["status"] = "unhealthy"
		health["database"] = "down"
		status = http.StatusServiceUnavailable
	} else {
		health["database"] = "up"
	}

	if client, err := cache.GetClient(); err != nil {
		health["redis"] = "not configured"
	} else if err := client.Ping(c.Request.Context()).Err(); err != nil {
		health["redis"] = "down"
	} else {
		health["redis"] = "up"
	}

	c.JSON(status, health)
}
