// Package cache caches the record listings of calendar periods.
package cache

import (
	"context"

	"github.com/at-ishikawa/notekeeper/internal/record"
)

//go:generate mockgen -source=cache.go -destination=../mocks/cache/mock_cache.go -package=mock_cache

// Version is the cache generation a lookup observed.
type Version int64

// NoVersion makes Set a no-op.
const NoVersion Version = -1

// PeriodCache stores the records of a period under record.Period.Key.
// Failures are logged by the implementation and reported as misses.
type PeriodCache interface {
	// Get returns the records of key. On a miss the returned Version must be passed to
	// Set, so records read before a concurrent Invalidate are never stored as current.
	Get(ctx context.Context, key string) ([]record.Record, Version, bool)
	Set(ctx context.Context, key string, version Version, records []record.Record)
	// Invalidate drops every cached period.
	Invalidate(ctx context.Context)
}

// NoopCache never stores anything.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) ([]record.Record, Version, bool) {
	return nil, NoVersion, false
}

func (NoopCache) Set(context.Context, string, Version, []record.Record) {}

func (NoopCache) Invalidate(context.Context) {}
