package cache

import (
	"context"
	"log"
	"time"
)

// Sweeper clears both cache namespaces at every UTC midnight, independently of
// per-key TTLs. It bounds staleness even when a targeted invalidation was
// missed (crash between store commit and eviction).
type Sweeper struct {
	cache Cache
	now   func() time.Time
}

func NewSweeper(c Cache) *Sweeper {
	return &Sweeper{cache: c, now: time.Now}
}

// Run blocks until ctx is cancelled, sweeping at each daily boundary.
func (s *Sweeper) Run(ctx context.Context) {
	for {
		wait := nextMidnight(s.now()).Sub(s.now())
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep clears both namespaces immediately.
func (s *Sweeper) Sweep(ctx context.Context) {
	s.cache.InvalidateAll(ctx, NamespaceEntry)
	s.cache.InvalidateAll(ctx, NamespaceMonth)
	log.Printf("cache: daily sweep completed")
}

func nextMidnight(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
}
