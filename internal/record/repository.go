package record

import "context"

//go:generate mockgen -source=repository.go -destination=../mocks/record/mock_repository.go -package=mock_record

// Repository defines operations for managing records.
type Repository interface {
	Create(ctx context.Context, r *Record) error
	FindByID(ctx context.Context, id string) (*Record, error)
	FindByTitle(ctx context.Context, title string) (*Record, error)
	FindByIDs(ctx context.Context, ids []string) ([]Record, error)
	// List returns one page of records and the total number matching the query.
	List(ctx context.Context, q ListQuery) ([]Record, int64, error)
	// FindByPeriod returns the records of a period, newest first.
	FindByPeriod(ctx context.Context, p Period) ([]Record, error)
	// FindAll returns every record, newest first.
	FindAll(ctx context.Context) ([]Record, error)
	// Update replaces title, content, category and image.
	Update(ctx context.Context, r *Record) error
	SetImage(ctx context.Context, id, image string) error
	// Delete removes the record and returns it.
	Delete(ctx context.Context, id string) (*Record, error)
	AddFolder(ctx context.Context, recordID, folderID string) error
	RemoveFolder(ctx context.Context, recordID, folderID string) error
	RemoveFolderFromAll(ctx context.Context, folderID string) error
	// ClearCategory detaches the category from every record and returns how many changed.
	ClearCategory(ctx context.Context, categoryID string) (int64, error)
	DistinctCategoryIDs(ctx context.Context) ([]string, error)
	CountByCategory(ctx context.Context) (map[string]int64, error)
}
