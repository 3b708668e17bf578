// Package category provides the category domain model and its repositories.
package category

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no category matches the lookup.
	ErrNotFound = errors.New("category not found")
	// ErrDuplicate is returned when a category with the same name already exists.
	ErrDuplicate = errors.New("category already exists")
)

type Category struct {
	ID        string    `json:"_id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
}

//go:generate mockgen -source=category.go -destination=../mocks/category/mock_repository.go -package=mock_category

// Repository defines operations for managing categories.
type Repository interface {
	Create(ctx context.Context, c *Category) error
	FindByID(ctx context.Context, id string) (*Category, error)
	FindByName(ctx context.Context, name string) (*Category, error)
	FindByIDs(ctx context.Context, ids []string) ([]Category, error)
	// FindAll returns every category ordered by name.
	FindAll(ctx context.Context) ([]Category, error)
	Delete(ctx context.Context, id string) (*Category, error)
}
