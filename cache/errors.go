package cache

import "errors"

var (
	// ErrRedisNotAvailable reports that Redis is not configured or down.
	ErrRedisNotAvailable = errors.New("redis not available")

	// ErrLockNotAcquired reports a distributed lock that could not be taken.
	ErrLockNotAcquired = errors.New("could not acquire distributed lock")
)
