// Package record provides the record domain model and its repositories.
package record

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no record matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a record with the same title already exists.
	ErrDuplicate = errors.New("record title already exists")
)

// CategoryRef is the populated category of a record.
type CategoryRef struct {
	ID   string `json:"_id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// FolderRef is a populated folder a record belongs to.
type FolderRef struct {
	ID   string `json:"_id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Record is a user-authored note.
type Record struct {
	ID      string `json:"_id" yaml:"id"`
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
	// CategoryID is empty when the record has no category.
	CategoryID string       `json:"-" yaml:"category_id,omitempty"`
	Category   *CategoryRef `json:"category" yaml:"-"`
	Image      *string      `json:"image" yaml:"image,omitempty"`
	DateInfo   DateInfo     `json:"dateInfo" yaml:"date_info"`
	FolderIDs  []string     `json:"-" yaml:"folder_ids,omitempty"`
	Folders    []FolderRef  `json:"folder" yaml:"-"`
	CreatedAt  time.Time    `json:"createdAt" yaml:"created_at"`
	UpdatedAt  time.Time    `json:"updatedAt" yaml:"updated_at"`
}

// CategoryName returns the populated category name, or an empty string.
func (r Record) CategoryName() string {
	if r.Category == nil {
		return ""
	}
	return r.Category.Name
}

// InFolder reports whether the record belongs to at least one folder.
func (r Record) InFolder() bool {
	return len(r.FolderIDs) > 0 || len(r.Folders) > 0
}

// HasFolder reports whether folderID is among the record's folders.
func (r Record) HasFolder(folderID string) bool {
	for _, id := range r.FolderIDs {
		if id == folderID {
			return true
		}
	}
	return false
}
