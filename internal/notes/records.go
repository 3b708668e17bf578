package notes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/at-ishikawa/notekeeper/internal/category"
	"github.com/at-ishikawa/notekeeper/internal/record"
	"github.com/at-ishikawa/notekeeper/internal/storage"
	"github.com/at-ishikawa/notekeeper/internal/ws"
)

// RecordInput is the user-provided part of a record.
type RecordInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	// Category is the id or the name of a category. An unknown name creates the category.
	Category string  `json:"category"`
	Image    *string `json:"image"`
}

func (in RecordInput) normalize() (RecordInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Category = strings.TrimSpace(in.Category)
	if in.Title == "" || strings.TrimSpace(in.Content) == "" || in.Category == "" {
		return in, validationError("Title, content and category are required")
	}
	return in, nil
}

type RecordService struct {
	deps Dependencies
}

func NewRecordService(deps Dependencies) *RecordService {
	return &RecordService{deps: deps.withDefaults()}
}

func (s *RecordService) populate(ctx context.Context, records []record.Record) error {
	return populate(ctx, s.deps.Categories, s.deps.Folders, records)
}

func (s *RecordService) populateOne(ctx context.Context, r *record.Record) error {
	records := []record.Record{*r}
	if err := s.populate(ctx, records); err != nil {
		return err
	}
	*r = records[0]
	return nil
}

// resolveCategory finds the category by id, then by name, and creates it when neither exists.
func (s *RecordService) resolveCategory(ctx context.Context, ref string) (*category.Category, error) {
	c, err := s.deps.Categories.FindByID(ctx, ref)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, category.ErrNotFound) {
		return nil, fmt.Errorf("categories.FindByID() > %w", err)
	}

	c, err = s.deps.Categories.FindByName(ctx, ref)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, category.ErrNotFound) {
		return nil, fmt.Errorf("categories.FindByName() > %w", err)
	}

	c = &category.Category{Name: ref, CreatedAt: s.deps.Now().UTC()}
	if err := s.deps.Categories.Create(ctx, c); err != nil {
		if errors.Is(err, category.ErrDuplicate) {
			// created concurrently
			return s.deps.Categories.FindByName(ctx, ref)
		}
		return nil, fmt.Errorf("categories.Create() > %w", err)
	}
	s.deps.Logger.Info("created category", zap.String("categoryId", c.ID), zap.String("name", c.Name))
	s.deps.Events.Publish(ws.Event{Type: ws.CategoryCreated, CategoryID: c.ID, Payload: c})
	return c, nil
}

func (s *RecordService) ensureTitleAvailable(ctx context.Context, title, ownID string) error {
	existing, err := s.deps.Records.FindByTitle(ctx, title)
	if errors.Is(err, record.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("records.FindByTitle() > %w", err)
	}
	if existing.ID != ownID {
		return conflictError("A record with this title already exists")
	}
	return nil
}

func (s *RecordService) changed(ctx context.Context, eventType string, r *record.Record) {
	s.deps.Cache.Invalidate(ctx)
	s.deps.Events.Publish(ws.Event{Type: eventType, RecordID: r.ID, Payload: r})
}

// Create validates in and stores a new record dated now.
func (s *RecordService) Create(ctx context.Context, in RecordInput) (*record.Record, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	if err := s.ensureTitleAvailable(ctx, in.Title, ""); err != nil {
		return nil, err
	}
	c, err := s.resolveCategory(ctx, in.Category)
	if err != nil {
		return nil, err
	}

	now := s.deps.Now()
	r := &record.Record{
		Title:      in.Title,
		Content:    in.Content,
		CategoryID: c.ID,
		Category:   &record.CategoryRef{ID: c.ID, Name: c.Name},
		Image:      in.Image,
		DateInfo:   record.NewDateInfo(now, s.deps.Location),
		Folders:    []record.FolderRef{},
		CreatedAt:  now.UTC(),
		UpdatedAt:  now.UTC(),
	}
	if err := s.deps.Records.Create(ctx, r); err != nil {
		if errors.Is(err, record.ErrDuplicate) {
			return nil, conflictError("A record with this title already exists")
		}
		return nil, fmt.Errorf("records.Create() > %w", err)
	}

	s.deps.Logger.Info("created record", zap.String("recordId", r.ID), zap.String("fullDate", r.DateInfo.FullDate))
	s.changed(ctx, ws.RecordCreated, r)
	return r, nil
}

// Get returns the record with id and its category and folder names.
func (s *RecordService) Get(ctx context.Context, id string) (*record.Record, error) {
	r, err := s.deps.Records.FindByID(ctx, id)
	if errors.Is(err, record.ErrNotFound) {
		return nil, notFoundError("Record not found")
	}
	if err != nil {
		return nil, fmt.Errorf("records.FindByID() > %w", err)
	}
	if err := s.populateOne(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// resolveCategoryFilter accepts a category id or name. It returns false when
// no such category exists.
func (s *RecordService) resolveCategoryFilter(ctx context.Context, ref string) (string, bool, error) {
	c, err := s.deps.Categories.FindByID(ctx, ref)
	if err == nil {
		return c.ID, true, nil
	}
	if !errors.Is(err, category.ErrNotFound) {
		return "", false, fmt.Errorf("categories.FindByID() > %w", err)
	}
	c, err = s.deps.Categories.FindByName(ctx, ref)
	if errors.Is(err, category.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("categories.FindByName() > %w", err)
	}
	return c.ID, true, nil
}

// List returns one page of records matching q.
func (s *RecordService) List(ctx context.Context, q record.ListQuery) ([]record.Record, record.Pagination, error) {
	q = q.Normalize(s.deps.DefaultLimit, s.deps.MaxLimit)
	if q.CategoryID != "" {
		id, ok, err := s.resolveCategoryFilter(ctx, q.CategoryID)
		if err != nil {
			return nil, record.Pagination{}, err
		}
		if !ok {
			return []record.Record{}, record.NewPagination(q.Page, q.Limit, 0), nil
		}
		q.CategoryID = id
	}

	records, total, err := s.deps.Records.List(ctx, q)
	if err != nil {
		return nil, record.Pagination{}, fmt.Errorf("records.List() > %w", err)
	}
	if records == nil {
		records = []record.Record{}
	}
	if err := s.populate(ctx, records); err != nil {
		return nil, record.Pagination{}, err
	}
	return records, record.NewPagination(q.Page, q.Limit, total), nil
}

// Update replaces the title, content, category and image of the record with id.
// The creation time and calendar fields never change.
func (s *RecordService) Update(ctx context.Context, id string, in RecordInput) (*record.Record, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	r, err := s.deps.Records.FindByID(ctx, id)
	if errors.Is(err, record.ErrNotFound) {
		return nil, notFoundError("Record not found")
	}
	if err != nil {
		return nil, fmt.Errorf("records.FindByID() > %w", err)
	}
	if in.Title != r.Title {
		if err := s.ensureTitleAvailable(ctx, in.Title, r.ID); err != nil {
			return nil, err
		}
	}
	c, err := s.resolveCategory(ctx, in.Category)
	if err != nil {
		return nil, err
	}

	r.Title = in.Title
	r.Content = in.Content
	r.CategoryID = c.ID
	if in.Image != nil {
		r.Image = in.Image
	}
	r.UpdatedAt = s.deps.Now().UTC()
	if err := s.deps.Records.Update(ctx, r); err != nil {
		switch {
		case errors.Is(err, record.ErrNotFound):
			return nil, notFoundError("Record not found")
		case errors.Is(err, record.ErrDuplicate):
			return nil, conflictError("A record with this title already exists")
		}
		return nil, fmt.Errorf("records.Update() > %w", err)
	}
	if err := s.populateOne(ctx, r); err != nil {
		return nil, err
	}

	s.changed(ctx, ws.RecordUpdated, r)
	return r, nil
}

// Delete removes the record and unlinks it from every folder.
func (s *RecordService) Delete(ctx context.Context, id string) (*record.Record, error) {
	r, err := s.deps.Records.Delete(ctx, id)
	if errors.Is(err, record.ErrNotFound) {
		return nil, notFoundError("Record not found")
	}
	if err != nil {
		return nil, fmt.Errorf("records.Delete() > %w", err)
	}
	if err := s.deps.Folders.RemoveRecordFromAll(ctx, id); err != nil {
		s.deps.Logger.Warn("failed to unlink a deleted record from folders", zap.String("recordId", id), zap.Error(err))
	}

	s.deps.Logger.Info("deleted record", zap.String("recordId", id))
	s.changed(ctx, ws.RecordDeleted, r)
	return r, nil
}

// SetImage uploads an image and attaches its URL to the record.
func (s *RecordService) SetImage(ctx context.Context, id, filename, contentType string, body io.Reader, size int64) (*record.Record, error) {
	if s.deps.Images == nil {
		return nil, &Error{Kind: ErrUnavailable, Message: "Image storage is not configured"}
	}
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := s.deps.Images.Upload(ctx, r.ID, filename, contentType, body, size)
	switch {
	case errors.Is(err, storage.ErrUnsupportedType):
		return nil, validationError("Only image files can be uploaded")
	case errors.Is(err, storage.ErrTooLarge):
		return nil, validationError("Image must be 5MB or smaller")
	case err != nil:
		return nil, fmt.Errorf("images.Upload() > %w", err)
	}

	if err := s.deps.Records.SetImage(ctx, r.ID, url); err != nil {
		if errors.Is(err, record.ErrNotFound) {
			return nil, notFoundError("Record not found")
		}
		return nil, fmt.Errorf("records.SetImage() > %w", err)
	}
	r.Image = &url
	s.changed(ctx, ws.RecordUpdated, r)
	return r, nil
}

// ByDay returns the records created on a calendar date, newest first.
func (s *RecordService) ByDay(ctx context.Context, year, month, day int) ([]record.Record, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}
	if !record.ValidDate(year, month, day) {
		return nil, validationError("Invalid date")
	}
	return s.byPeriod(ctx, record.Period{Kind: record.PeriodDay, Year: year, Month: month, Day: day})
}

// ByWeek returns the records of a Sunday-start week of the year, newest first.
func (s *RecordService) ByWeek(ctx context.Context, year, week int) ([]record.Record, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}
	if week < 1 || week > 54 {
		return nil, validationError("Week must be between 1 and 54")
	}
	return s.byPeriod(ctx, record.Period{Kind: record.PeriodWeek, Year: year, Week: week})
}

// ByMonth returns the records of a month, newest first.
func (s *RecordService) ByMonth(ctx context.Context, year, month int) ([]record.Record, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}
	if month < 1 || month > 12 {
		return nil, validationError("Month must be between 1 and 12")
	}
	return s.byPeriod(ctx, record.Period{Kind: record.PeriodMonth, Year: year, Month: month})
}

func validateYear(year int) error {
	if year < 1 || year > 9999 {
		return validationError("Invalid year")
	}
	return nil
}

func (s *RecordService) byPeriod(ctx context.Context, p record.Period) ([]record.Record, error) {
	records, version, ok := s.deps.Cache.Get(ctx, p.Key())
	if ok {
		return records, nil
	}
	records, err := s.deps.Records.FindByPeriod(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("records.FindByPeriod(%s) > %w", p.Key(), err)
	}
	if records == nil {
		records = []record.Record{}
	}
	if err := s.populate(ctx, records); err != nil {
		return nil, err
	}
	s.deps.Cache.Set(ctx, p.Key(), version, records)
	return records, nil
}

// All returns every record, newest first.
func (s *RecordService) All(ctx context.Context) ([]record.Record, error) {
	records, err := s.deps.Records.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("records.FindAll() > %w", err)
	}
	if records == nil {
		records = []record.Record{}
	}
	if err := s.populate(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

// Categories returns the names of the categories used by at least one record.
func (s *RecordService) Categories(ctx context.Context) ([]string, error) {
	ids, err := s.deps.Records.DistinctCategoryIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("records.DistinctCategoryIDs() > %w", err)
	}
	names := []string{}
	if len(ids) == 0 {
		return names, nil
	}
	categories, err := s.deps.Categories.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("categories.FindByIDs() > %w", err)
	}
	for _, c := range categories {
		names = append(names, c.Name)
	}
	return names, nil
}
