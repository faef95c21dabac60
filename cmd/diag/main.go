// Command diag runs smoke checks against a live Redis: the cross-instance
// rate limiter and the distributed lock used to serialize poll deletes.
// Run it against a staging Redis before rolling out config changes.
//
//	REDIS_ADDR=localhost:6379 go run ./cmd/diag [rate|lock]
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"pollboard-backend/cache"
	"pollboard-backend/config"
)

func testRateLimiter() {
	fmt.Println("=== rate limiter ===")

	// Three tokens per second, burst of five: ten rapid requests should
	// let exactly five through.
	limiter := cache.NewRedisRateLimiter("diag", 3, 5)
	ctx := context.Background()

	allowed := 0
	for i := 0; i < 10; i++ {
		ok, err := limiter.Allow(ctx, "diag-caller")
		if err != nil {
			log.Printf("request %d: limiter error: %v", i+1, err)
			continue
		}
		if ok {
			allowed++
		}
	}
	log.Printf("burst: %d of 10 requests allowed (want 5)", allowed)

	time.Sleep(2 * time.Second)
	ok, err := limiter.Allow(ctx, "diag-caller")
	if err != nil {
		log.Printf("refill check error: %v", err)
	} else {
		log.Printf("after refill: allowed=%v (want true)", ok)
	}
}

func testDistributedLock() {
	fmt.Println("=== distributed lock ===")

	lockService := cache.GetLockService()

	const concurrent = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	held := 0
	blocked := 0

	for i := 0; i < concurrent; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			err := lockService.WithLock("diag:lock", 5*time.Second, func() error {
				mu.Lock()
				held++
				mu.Unlock()
				time.Sleep(1 * time.Second)
				return nil
			})
			if err == cache.ErrLockNotAcquired {
				mu.Lock()
				blocked++
				mu.Unlock()
			} else if err != nil {
				log.Printf("goroutine %d: lock error: %v", idx+1, err)
			}
		}(i)
	}
	wg.Wait()

	log.Printf("%d goroutines held the lock, %d gave up waiting", held, blocked)
	if held+blocked != concurrent {
		log.Printf("warning: %d goroutines failed outright", concurrent-held-blocked)
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if cfg.RedisAddr() == "" {
		log.Fatal("REDIS_ADDR must be set for diagnostics")
	}
	if err := cache.InitRedis(cfg); err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	cache.InitDistLock()
	defer cache.CloseRedis()

	args := os.Args[1:]
	if len(args) == 0 {
		testRateLimiter()
		testDistributedLock()
		return
	}
	for _, arg := range args {
		switch arg {
		case "rate":
			testRateLimiter()
		case "lock":
			testDistributedLock()
		default:
			log.Printf("unknown check: %s", arg)
		}
	}
}
