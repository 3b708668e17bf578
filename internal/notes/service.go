// Package notes implements the record, folder and category operations on
// top of the repositories, keeping cross-entity references consistent.
package notes

import (
	"time"

	"go.uber.org/zap"

	"github.com/at-ishikawa/notekeeper/internal/cache"
	"github.com/at-ishikawa/notekeeper/internal/category"
	"github.com/at-ishikawa/notekeeper/internal/folder"
	"github.com/at-ishikawa/notekeeper/internal/record"
	"github.com/at-ishikawa/notekeeper/internal/storage"
	"github.com/at-ishikawa/notekeeper/internal/ws"
)

//go:generate mockgen -source=service.go -destination=../mocks/notes/mock_events.go -package=mock_notes

// EventPublisher receives an event after every successful mutation.
type EventPublisher interface {
	Publish(e ws.Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(ws.Event) {}

// Dependencies wires the services. Cache, Events, Images, Now, Location and
// Logger are optional.
type Dependencies struct {
	Records    record.Repository
	Folders    folder.Repository
	Categories category.Repository
	Cache      cache.PeriodCache
	Events     EventPublisher
	Images     storage.ImageStorage
	// Location is used to derive the calendar fields of new records.
	Location     *time.Location
	DefaultLimit int
	MaxLimit     int
	Now          func() time.Time
	Logger       *zap.Logger
}

func (deps Dependencies) withDefaults() Dependencies {
	if deps.Cache == nil {
		deps.Cache = cache.NoopCache{}
	}
	if deps.Events == nil {
		deps.Events = noopPublisher{}
	}
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	if deps.DefaultLimit < 1 {
		deps.DefaultLimit = 10
	}
	if deps.MaxLimit < 1 {
		deps.MaxLimit = 100
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return deps
}
