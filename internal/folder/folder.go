// Package folder provides the folder domain model and its repositories.
package folder

import (
	"context"
	"errors"
	"time"

	"github.com/at-ishikawa/notekeeper/internal/record"
)

var (
	// ErrNotFound is returned when no folder matches the lookup.
	ErrNotFound = errors.New("folder not found")
	// ErrDuplicate is returned when a folder with the same name already exists.
	ErrDuplicate = errors.New("folder name already exists")
)

// Folder is a named grouping of records.
type Folder struct {
	ID          string    `json:"_id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	RecordIDs   []string  `json:"recordIds" yaml:"record_ids,omitempty"`
	CreatedAt   time.Time `json:"createdAt" yaml:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" yaml:"updated_at"`
	// Records is only populated when a single folder is fetched.
	Records []record.Record `json:"records,omitempty" yaml:"-"`
}

// HasRecord reports whether recordID is linked to the folder.
func (f Folder) HasRecord(recordID string) bool {
	for _, id := range f.RecordIDs {
		if id == recordID {
			return true
		}
	}
	return false
}

//go:generate mockgen -source=folder.go -destination=../mocks/folder/mock_repository.go -package=mock_folder

// Repository defines operations for managing folders.
type Repository interface {
	Create(ctx context.Context, f *Folder) error
	FindByID(ctx context.Context, id string) (*Folder, error)
	FindByName(ctx context.Context, name string) (*Folder, error)
	FindByIDs(ctx context.Context, ids []string) ([]Folder, error)
	// FindAll returns every folder, newest first.
	FindAll(ctx context.Context) ([]Folder, error)
	// Update replaces name and description.
	Update(ctx context.Context, f *Folder) error
	Delete(ctx context.Context, id string) (*Folder, error)
	AddRecord(ctx context.Context, folderID, recordID string) error
	RemoveRecord(ctx context.Context, folderID, recordID string) error
	RemoveRecordFromAll(ctx context.Context, recordID string) error
}
