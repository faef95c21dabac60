package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"pollboard-backend/config"
	"pollboard-backend/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// DB is the global database handle. Tests replace it with an in-memory
// SQLite connection.
var DB *gorm.DB

// InitDB connects to MySQL using the loaded configuration and migrates
// the schema. TranslateError is required so unique-index violations
// surface as gorm.ErrDuplicatedKey on every driver.
func InitDB(cfg *config.Config) error {
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	var err error
	DB, err = gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{
		Logger:         newLogger,
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(DB); err != nil {
		return fmt.Errorf("failed to migrate models: %w", err)
	}

	log.Println("database connection and migration successful")
	return nil
}

// Migrate creates or updates the four tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Poll{},
		&models.Option{},
		&models.Vote{},
	)
}

// CloseDB closes the underlying connection pool.
func CloseDB() {
	if DB == nil {
		return
	}
	sqlDB, err := DB.DB()
	if err != nil {
		log.Printf("failed to get underlying sql.DB: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Printf("failed to close database connection: %v", err)
	}
}

// UpsertUser makes sure the users row exists before the user's first
// poll or vote (conflict target: id). Idempotent.
func UpsertUser(db *gorm.DB, id, email string) error {
	user := models.User{ID: id, Email: email}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email"}),
	}).Create(&user).Error
}

// CountVotesByOption aggregates vote rows for one poll into a per-option
// count map. Options with no votes are simply absent; callers default
// them to zero.
func CountVotesByOption(db *gorm.DB, pollID string) (map[string]int64, error) {
	var rows []struct {
		OptionID string
		Count    int64
	}
	err := db.Model(&models.Vote{}).
		Select("option_id, count(*) as count").
		Where("poll_id = ?", pollID).
		Group("option_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.OptionID] = r.Count
	}
	return counts, nil
}

// UserVote returns the option the user voted for in a poll, or "" when
// they have not voted.
func UserVote(db *gorm.DB, pollID, userID string) (string, error) {
	var votes []models.Vote
	err := db.Where("poll_id = ? AND user_id = ?", pollID, userID).
		Limit(1).Find(&votes).Error
	if err != nil {
		return "", err
	}
	if len(votes) == 0 {
		return "", nil
	}
	return votes[0].OptionID, nil
}
