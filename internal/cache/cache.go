// Package cache holds short-lived copies of remote sheets so that page
// renders do not hit the network on every request.
package cache

import (
	"context"
	"log/slog"
	"time"
)

// Cache is a keyed store with expiry.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	// Purge drops every entry.
	Purge()
	Len() int
}

// Expirer is implemented by caches that can drop expired entries in bulk.
type Expirer interface {
	CleanExpired() int
}

// Janitor periodically removes expired entries from registered caches.
type Janitor struct {
	caches []Expirer
	done   chan struct{}
}

func NewJanitor(caches ...Expirer) *Janitor {
	return &Janitor{caches: caches, done: make(chan struct{})}
}

// Run sweeps every interval until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context, interval time.Duration) {
	defer close(j.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n := j.Sweep()
			if n > 0 {
				slog.DebugContext(ctx, "Expired cache entries removed", "count", n)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Sweep cleans every cache once and returns the number of removed entries.
func (j *Janitor) Sweep() int {
	total := 0
	for _, c := range j.caches {
		total += c.CleanExpired()
	}
	return total
}

// Done is closed once Run returns.
func (j *Janitor) Done() <-chan struct{} { return j.done }
