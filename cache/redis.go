package cache

import (
	"context"
	"log"
	"sync"
	"time"

	"pollboard-backend/config"

	"github.com/redis/go-redis/v9"
)

var (
	redisClient *redis.Client
	initOnce    sync.Once
)

// InitRedis connects the shared Redis client. Redis is optional: when no
// address is configured, or the ping fails, every consumer falls back to
// local behavior.
func InitRedis(cfg *config.Config) error {
	var initErr error

	initOnce.Do(func() {
		addr := cfg.RedisAddr()
		if addr == "" {
			log.Println("redis not configured, running without it")
			return
		}

		client := redis.NewClient(&redis.Options{
			Addr:        addr,
			Password:    cfg.RedisPassword(),
			DB:          0,
			DialTimeout: 5 * time.Second,
			ReadTimeout: 5 * time.Second,
			PoolSize:    20,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if _, err := client.Ping(ctx).Result(); err != nil {
			log.Printf("redis ping failed, running without it: %v", err)
			initErr = err
			return
		}

		redisClient = client
		log.Printf("redis connected at %s", addr)
	})

	return initErr
}

// GetClient returns the shared Redis client, or ErrRedisNotAvailable when
// Redis is not configured or unreachable.
func GetClient() (*redis.Client, error) {
	if redisClient == nil {
		return nil, ErrRedisNotAvailable
	}
	return redisClient, nil
}

// CloseRedis closes the shared client if one was opened.
func CloseRedis() {
	if redisClient == nil {
		return
	}
	if err := redisClient.Close(); err != nil {
		log.Printf("failed to close redis client: %v", err)
	}
	redisClient = nil
}
