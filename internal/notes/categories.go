package notes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/at-ishikawa/notekeeper/internal/category"
	"github.com/at-ishikawa/notekeeper/internal/ws"
)

// CategoryWithCount is a category and the number of records referencing it.
type CategoryWithCount struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"createdAt"`
	RecordCount int64     `json:"recordCount"`
}

type CategoryService struct {
	deps Dependencies
}

func NewCategoryService(deps Dependencies) *CategoryService {
	return &CategoryService{deps: deps.withDefaults()}
}

func (s *CategoryService) Create(ctx context.Context, name string) (*category.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("Category name is required")
	}
	c := &category.Category{Name: name, CreatedAt: s.deps.Now().UTC()}
	if err := s.deps.Categories.Create(ctx, c); err != nil {
		if errors.Is(err, category.ErrDuplicate) {
			return nil, conflictError("Category already exists")
		}
		return nil, fmt.Errorf("categories.Create() > %w", err)
	}
	s.deps.Events.Publish(ws.Event{Type: ws.CategoryCreated, CategoryID: c.ID, Payload: c})
	return c, nil
}

// List returns every category by name with its record count.
func (s *CategoryService) List(ctx context.Context) ([]CategoryWithCount, error) {
	categories, err := s.deps.Categories.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("categories.FindAll() > %w", err)
	}
	counts, err := s.deps.Records.CountByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("records.CountByCategory() > %w", err)
	}

	result := make([]CategoryWithCount, 0, len(categories))
	for _, c := range categories {
		result = append(result, CategoryWithCount{
			ID:          c.ID,
			Name:        c.Name,
			CreatedAt:   c.CreatedAt,
			RecordCount: counts[c.ID],
		})
	}
	return result, nil
}

// Delete removes the category and detaches it from its records.
func (s *CategoryService) Delete(ctx context.Context, id string) (*category.Category, error) {
	c, err := s.deps.Categories.Delete(ctx, id)
	if errors.Is(err, category.ErrNotFound) {
		return nil, notFoundError("Category not found")
	}
	if err != nil {
		return nil, fmt.Errorf("categories.Delete() > %w", err)
	}

	detached, err := s.deps.Records.ClearCategory(ctx, id)
	if err != nil {
		s.deps.Logger.Warn("failed to detach a deleted category from records", zap.String("categoryId", id), zap.Error(err))
	}
	s.deps.Logger.Info("deleted category",
		zap.String("categoryId", id),
		zap.Int64("detachedRecords", detached))

	s.deps.Cache.Invalidate(ctx)
	s.deps.Events.Publish(ws.Event{Type: ws.CategoryDeleted, CategoryID: id, Payload: c})
	return c, nil
}
