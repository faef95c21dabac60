package handlers

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"pollboard-backend/auth"
	"pollboard-backend/config"
	"pollboard-backend/database"
	"pollboard-backend/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestEnvironment sets up the Gin router and in-memory SQLite database for testing.
func SetupTestEnvironment(t *testing.T) (*gin.Engine, *gorm.DB) {
	testing.Init()
	gin.SetMode(gin.TestMode)

	if config.C == nil {
		if _, err := config.Load(); err != nil {
			log.Fatalf("Failed to load test configuration: %v", err)
		}
	}

	// Use in-memory SQLite for testing. TranslateError keeps unique-index
	// violations surfacing as gorm.ErrDuplicatedKey, same as MySQL.
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	// SQLite allows one writer at a time; a single pooled connection
	// makes concurrent requests queue instead of failing with lock errors.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}

	database.DB = db

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, _ := database.DB.DB()
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	})

	router := gin.Default()
	cfg := cors.DefaultConfig()
	cfg.AllowOrigins = []string{"*"}
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	router.Use(cors.New(cfg))

	// Same shape as the real router.
	api := router.Group("/api")
	{
		api.POST("/auth/signup", Signup)
		api.POST("/auth/login", Login)

		protected := api.Group("")
		protected.Use(auth.RequireSession(config.C.JWTSecret()))
		{
			protected.POST("/auth/logout", Logout)
			protected.GET("/auth/me", Me)
			protected.GET("/profile", WithSession(Profile))
			protected.GET("/dashboard", WithSession(Dashboard))
			protected.GET("/dashboard/created", WithSession(CreatedPolls))
			protected.GET("/dashboard/open", WithSession(OpenPolls))
			protected.POST("/polls", WithSession(CreatePoll))
			protected.GET("/polls", WithSession(GetPolls))
			protected.GET("/polls/:id", WithSession(GetPoll))
			protected.GET("/polls/:id/results", WithSession(GetPollResults))
			protected.DELETE("/polls/:id", WithSession(DeletePoll))
			protected.POST("/polls/:id/vote", WithSession(SubmitVote))
		}
	}

	return router, db
}

// ClearTables removes all rows between tests. Order matters due to
// foreign key constraints.
func ClearTables(db *gorm.DB) {
	db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Vote{})
	db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Option{})
	db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Poll{})
	db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.User{})
}

// createTestUser inserts a confirmed user and returns it with a valid
// session token for the Authorization header.
func createTestUser(t *testing.T, db *gorm.DB, email string) (models.User, string) {
	t.Helper()

	hash, err := auth.HashPassword("password123")
	if err != nil {
		t.Fatalf("failed to hash test password: %v", err)
	}

	user := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Confirmed:    true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	token, err := auth.GenerateToken(config.C.JWTSecret(), config.C.JWTTTL(), user.ID, user.Email)
	if err != nil {
		t.Fatalf("failed to issue test token: %v", err)
	}

	return user, token
}

// serveAuthed performs a JSON request with the bearer token through the
// router and returns the recorder.
func serveAuthed(router *gin.Engine, method, url, token string, body interface{}) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != nil {
		data, _ := json.Marshal(body)
		buf = bytes.NewBuffer(data)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, url, buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	router.ServeHTTP(w, req)
	return w
}

// createTestPoll inserts a poll with options directly and returns it
// reloaded with option IDs.
func createTestPoll(t *testing.T, db *gorm.DB, creatorID, title string, optionTexts []string) models.Poll {
	t.Helper()

	p := models.Poll{Title: title, Description: "test poll", CreatedBy: creatorID}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("failed to create test poll: %v", err)
	}
	for i, text := range optionTexts {
		opt := models.Option{PollID: p.ID, OptionText: text, Position: i}
		if err := db.Create(&opt).Error; err != nil {
			t.Fatalf("failed to create test option: %v", err)
		}
	}

	var loaded models.Poll
	if err := db.Preload("Options", orderByPosition).First(&loaded, "id = ?", p.ID).Error; err != nil {
		t.Fatalf("failed to reload test poll: %v", err)
	}
	return loaded
}
