package core

import (
	"context"
	"time"
)

// Cache is the key/value storage credentials are persisted in.
//
// Get never fails: a miss, an expired entry and an unreachable backend all
// report ("", false). Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)

	// Set stores value under key. A zero ttl keeps the entry until it is
	// deleted.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Delete removes key. Deleting a missing key succeeds.
	Delete(ctx context.Context, key string) error
}
