package folder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/notekeeper/internal/database"
)

type folderRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// DBRepository implements Repository using MySQL.
type DBRepository struct {
	db *sqlx.DB
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

// Create inserts a folder with its record links in a transaction.
func (repo *DBRepository) Create(ctx context.Context, f *Folder) error {
	id := uuid.NewString()
	err := database.RunInTx(ctx, repo.db, func(ctx context.Context, tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO folders (id, name, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
			id, f.Name, f.Description, f.CreatedAt, f.UpdatedAt); err != nil {
			return fmt.Errorf("tx.ExecContext(insert folder) > %w", err)
		}
		for _, recordID := range f.RecordIDs {
			if _, err := tx.ExecContext(ctx,
				"INSERT IGNORE INTO folder_records (folder_id, record_id) VALUES (?, ?)", id, recordID); err != nil {
				return fmt.Errorf("tx.ExecContext(insert folder_record) > %w", err)
			}
		}
		return nil
	})
	if err != nil {
		if database.IsDuplicateEntry(err) {
			return ErrDuplicate
		}
		return err
	}
	f.ID = id
	return nil
}

func (repo *DBRepository) get(ctx context.Context, where string, arg any) (*Folder, error) {
	var row folderRow
	err := repo.db.GetContext(ctx, &row, "SELECT id, name, description, created_at, updated_at FROM folders WHERE "+where, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(folder) > %w", err)
	}
	folders := []Folder{toFolder(row)}
	if err := repo.loadRecordIDs(ctx, folders); err != nil {
		return nil, err
	}
	return &folders[0], nil
}

func toFolder(row folderRow) Folder {
	return Folder{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

// FindByID returns the folder with id, or ErrNotFound.
func (repo *DBRepository) FindByID(ctx context.Context, id string) (*Folder, error) {
	return repo.get(ctx, "id = ?", id)
}

// FindByName returns the folder with the exact name, or ErrNotFound.
func (repo *DBRepository) FindByName(ctx context.Context, name string) (*Folder, error) {
	return repo.get(ctx, "name = ?", name)
}

func (repo *DBRepository) selectFolders(ctx context.Context, query string, args ...any) ([]Folder, error) {
	var rows []folderRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("db.SelectContext(folders) > %w", err)
	}
	folders := make([]Folder, 0, len(rows))
	for _, row := range rows {
		folders = append(folders, toFolder(row))
	}
	if err := repo.loadRecordIDs(ctx, folders); err != nil {
		return nil, err
	}
	return folders, nil
}

// FindByIDs returns the folders with the given ids, skipping unknown ones.
func (repo *DBRepository) FindByIDs(ctx context.Context, ids []string) ([]Folder, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In("SELECT id, name, description, created_at, updated_at FROM folders WHERE id IN (?) ORDER BY created_at DESC", ids)
	if err != nil {
		return nil, fmt.Errorf("sqlx.In(folders) > %w", err)
	}
	return repo.selectFolders(ctx, query, args...)
}

// FindAll returns every folder, newest first.
func (repo *DBRepository) FindAll(ctx context.Context) ([]Folder, error) {
	return repo.selectFolders(ctx, "SELECT id, name, description, created_at, updated_at FROM folders ORDER BY created_at DESC")
}

// Update replaces the name and description of f.
func (repo *DBRepository) Update(ctx context.Context, f *Folder) error {
	result, err := repo.db.ExecContext(ctx,
		"UPDATE folders SET name = ?, description = ?, updated_at = ? WHERE id = ?",
		f.Name, f.Description, f.UpdatedAt, f.ID)
	if err != nil {
		if database.IsDuplicateEntry(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("db.ExecContext(update folder) > %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("result.RowsAffected() > %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the folder with id and returns it.
func (repo *DBRepository) Delete(ctx context.Context, id string) (*Folder, error) {
	f, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	err = database.RunInTx(ctx, repo.db, func(ctx context.Context, tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM folder_records WHERE folder_id = ?", id); err != nil {
			return fmt.Errorf("tx.ExecContext(delete folder_records) > %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM folders WHERE id = ?", id); err != nil {
			return fmt.Errorf("tx.ExecContext(delete folder) > %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

// AddRecord links a record to the folder.
func (repo *DBRepository) AddRecord(ctx context.Context, folderID, recordID string) error {
	if _, err := repo.db.ExecContext(ctx,
		"INSERT IGNORE INTO folder_records (folder_id, record_id) VALUES (?, ?)", folderID, recordID); err != nil {
		return fmt.Errorf("db.ExecContext(insert folder_record) > %w", err)
	}
	return nil
}

// RemoveRecord unlinks a record from the folder.
func (repo *DBRepository) RemoveRecord(ctx context.Context, folderID, recordID string) error {
	if _, err := repo.db.ExecContext(ctx,
		"DELETE FROM folder_records WHERE folder_id = ? AND record_id = ?", folderID, recordID); err != nil {
		return fmt.Errorf("db.ExecContext(delete folder_record) > %w", err)
	}
	return nil
}

// RemoveRecordFromAll unlinks a record from every folder.
func (repo *DBRepository) RemoveRecordFromAll(ctx context.Context, recordID string) error {
	if _, err := repo.db.ExecContext(ctx, "DELETE FROM folder_records WHERE record_id = ?", recordID); err != nil {
		return fmt.Errorf("db.ExecContext(delete folder_records) > %w", err)
	}
	return nil
}

func (repo *DBRepository) loadRecordIDs(ctx context.Context, folders []Folder) error {
	if len(folders) == 0 {
		return nil
	}
	ids := make([]string, len(folders))
	byID := make(map[string]*Folder, len(folders))
	for i := range folders {
		ids[i] = folders[i].ID
		byID[folders[i].ID] = &folders[i]
	}

	query, args, err := sqlx.In("SELECT folder_id, record_id FROM folder_records WHERE folder_id IN (?) ORDER BY created_at", ids)
	if err != nil {
		return fmt.Errorf("sqlx.In(folder_records) > %w", err)
	}
	var links []struct {
		FolderID string `db:"folder_id"`
		RecordID string `db:"record_id"`
	}
	if err := repo.db.SelectContext(ctx, &links, repo.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("db.SelectContext(folder_records) > %w", err)
	}
	for _, link := range links {
		if f, ok := byID[link.FolderID]; ok {
			f.RecordIDs = append(f.RecordIDs, link.RecordID)
		}
	}
	return nil
}
