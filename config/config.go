package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime settings, loaded once at startup.
type Config struct {
	viper *viper.Viper
}

// C is the process-wide configuration, set by Load.
var C *Config

// Load reads configuration from environment variables with sane defaults
// for local development.
func Load() (*Config, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8090")
	v.SetDefault("ENVIRONMENT", "development")

	v.SetDefault("DB_USER", "polluser")
	v.SetDefault("DB_PASSWORD", "pollpassword")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_NAME", "pollboard")

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")

	v.SetDefault("JWT_SECRET", "dev-only-secret-change-me")
	v.SetDefault("JWT_TTL_HOURS", 72)
	v.SetDefault("AUTH_AUTO_CONFIRM", true)

	v.SetDefault("ENABLE_RATE_LIMIT", false)
	v.SetDefault("RATE_LIMIT_PER_SECOND", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)

	cfg := &Config{viper: v}
	C = cfg
	return cfg, nil
}

func (c *Config) ServerPort() string {
	return c.viper.GetString("SERVER_PORT")
}

func (c *Config) Environment() string {
	return c.viper.GetString("ENVIRONMENT")
}

// DSN builds the MySQL connection string from the DB_* settings.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.viper.GetString("DB_USER"),
		c.viper.GetString("DB_PASSWORD"),
		c.viper.GetString("DB_HOST"),
		c.viper.GetString("DB_PORT"),
		c.viper.GetString("DB_NAME"),
	)
}

// RedisAddr returns the Redis address, empty when Redis is not configured.
func (c *Config) RedisAddr() string {
	return c.viper.GetString("REDIS_ADDR")
}

func (c *Config) RedisPassword() string {
	return c.viper.GetString("REDIS_PASSWORD")
}

func (c *Config) JWTSecret() []byte {
	return []byte(c.viper.GetString("JWT_SECRET"))
}

func (c *Config) JWTTTL() time.Duration {
	return time.Duration(c.viper.GetInt("JWT_TTL_HOURS")) * time.Hour
}

// AuthAutoConfirm reports whether new accounts are usable without email
// confirmation.
func (c *Config) AuthAutoConfirm() bool {
	return c.viper.GetBool("AUTH_AUTO_CONFIRM")
}

func (c *Config) RateLimitEnabled() bool {
	return c.viper.GetBool("ENABLE_RATE_LIMIT")
}

func (c *Config) RateLimitPerSecond() int {
	return c.viper.GetInt("RATE_LIMIT_PER_SECOND")
}

func (c *Config) RateLimitBurst() int {
	return c.viper.GetInt("RATE_LIMIT_BURST")
}
