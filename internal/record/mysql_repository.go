package record

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/notekeeper/internal/database"
)

const recordColumns = "id, title, content, category_id, image, year, month, month_name, week, day, day_of_week, day_name, full_date, created_at, updated_at"

var sortColumns = map[string]string{
	SortByCreatedAt: "created_at",
	SortByTitle:     "title",
	SortByUpdatedAt: "updated_at",
}

type recordRow struct {
	ID         string         `db:"id"`
	Title      string         `db:"title"`
	Content    string         `db:"content"`
	CategoryID sql.NullString `db:"category_id"`
	Image      sql.NullString `db:"image"`
	Year       int            `db:"year"`
	Month      int            `db:"month"`
	MonthName  string         `db:"month_name"`
	Week       int            `db:"week"`
	Day        int            `db:"day"`
	DayOfWeek  int            `db:"day_of_week"`
	DayName    string         `db:"day_name"`
	FullDate   string         `db:"full_date"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

func (row recordRow) toRecord() Record {
	r := Record{
		ID:         row.ID,
		Title:      row.Title,
		Content:    row.Content,
		CategoryID: row.CategoryID.String,
		DateInfo: DateInfo{
			Year:      row.Year,
			Month:     row.Month,
			MonthName: row.MonthName,
			Week:      row.Week,
			Day:       row.Day,
			DayOfWeek: row.DayOfWeek,
			DayName:   row.DayName,
			FullDate:  row.FullDate,
		},
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if row.Image.Valid {
		image := row.Image.String
		r.Image = &image
	}
	return r
}

type folderLink struct {
	FolderID string `db:"folder_id"`
	RecordID string `db:"record_id"`
}

// DBRepository implements Repository using MySQL.
type DBRepository struct {
	db *sqlx.DB
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// Create inserts a record with its folder links in a transaction.
func (repo *DBRepository) Create(ctx context.Context, r *Record) error {
	id := uuid.NewString()
	err := database.RunInTx(ctx, repo.db, func(ctx context.Context, tx *sqlx.Tx) error {
		d := r.DateInfo
		_, err := tx.ExecContext(ctx,
			"INSERT INTO records ("+recordColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			id, r.Title, r.Content, nullString(r.CategoryID), nullStringPtr(r.Image),
			d.Year, d.Month, d.MonthName, d.Week, d.Day, d.DayOfWeek, d.DayName, d.FullDate,
			r.CreatedAt, r.UpdatedAt)
		if err != nil {
			return fmt.Errorf("tx.ExecContext(insert record) > %w", err)
		}
		for _, folderID := range r.FolderIDs {
			if _, err := tx.ExecContext(ctx,
				"INSERT IGNORE INTO folder_records (folder_id, record_id) VALUES (?, ?)", folderID, id); err != nil {
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
	r.ID = id
	return nil
}

func (repo *DBRepository) get(ctx context.Context, where string, arg any) (*Record, error) {
	var row recordRow
	err := repo.db.GetContext(ctx, &row, "SELECT "+recordColumns+" FROM records WHERE "+where, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(record) > %w", err)
	}
	records := []Record{row.toRecord()}
	if err := repo.loadFolders(ctx, records); err != nil {
		return nil, err
	}
	return &records[0], nil
}

// FindByID returns the record with id, or ErrNotFound.
func (repo *DBRepository) FindByID(ctx context.Context, id string) (*Record, error) {
	return repo.get(ctx, "id = ?", id)
}

// FindByTitle returns the record with the exact title, or ErrNotFound.
func (repo *DBRepository) FindByTitle(ctx context.Context, title string) (*Record, error) {
	return repo.get(ctx, "title = ?", title)
}

func (repo *DBRepository) selectRecords(ctx context.Context, query string, args ...any) ([]Record, error) {
	var rows []recordRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("db.SelectContext(records) > %w", err)
	}
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toRecord())
	}
	if err := repo.loadFolders(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

// FindByIDs returns the records with the given ids, skipping unknown ones.
func (repo *DBRepository) FindByIDs(ctx context.Context, ids []string) ([]Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In("SELECT "+recordColumns+" FROM records WHERE id IN (?) ORDER BY created_at DESC", ids)
	if err != nil {
		return nil, fmt.Errorf("sqlx.In(records) > %w", err)
	}
	return repo.selectRecords(ctx, query, args...)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// List returns one page of records matching q and the total count.
func (repo *DBRepository) List(ctx context.Context, q ListQuery) ([]Record, int64, error) {
	var conditions []string
	var args []any
	if q.Search != "" {
		pattern := "%" + escapeLike(q.Search) + "%"
		conditions = append(conditions, "(title LIKE ? OR content LIKE ?)")
		args = append(args, pattern, pattern)
	}
	if q.CategoryID != "" {
		conditions = append(conditions, "category_id = ?")
		args = append(args, q.CategoryID)
	}
	if q.FolderID != "" {
		conditions = append(conditions, "id IN (SELECT record_id FROM folder_records WHERE folder_id = ?)")
		args = append(args, q.FolderID)
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := repo.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM records"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("db.GetContext(count records) > %w", err)
	}

	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = "created_at"
	}
	order := "DESC"
	if q.Ascending {
		order = "ASC"
	}
	query := fmt.Sprintf("SELECT %s FROM records%s ORDER BY %s %s, id %s LIMIT ? OFFSET ?", recordColumns, where, column, order, order)
	records, err := repo.selectRecords(ctx, query, append(args, q.Limit, q.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// FindByPeriod returns the records of p, newest first.
func (repo *DBRepository) FindByPeriod(ctx context.Context, p Period) ([]Record, error) {
	var where string
	var args []any
	switch p.Kind {
	case PeriodDay:
		where, args = "year = ? AND month = ? AND day = ?", []any{p.Year, p.Month, p.Day}
	case PeriodWeek:
		where, args = "year = ? AND week = ?", []any{p.Year, p.Week}
	case PeriodMonth:
		where, args = "year = ? AND month = ?", []any{p.Year, p.Month}
	default:
		return nil, fmt.Errorf("unknown period kind %q", p.Kind)
	}
	return repo.selectRecords(ctx, "SELECT "+recordColumns+" FROM records WHERE "+where+" ORDER BY created_at DESC", args...)
}

// FindAll returns every record, newest first.
func (repo *DBRepository) FindAll(ctx context.Context) ([]Record, error) {
	return repo.selectRecords(ctx, "SELECT "+recordColumns+" FROM records ORDER BY created_at DESC")
}

// Update replaces the editable fields of r.
func (repo *DBRepository) Update(ctx context.Context, r *Record) error {
	result, err := repo.db.ExecContext(ctx,
		"UPDATE records SET title = ?, content = ?, category_id = ?, image = ?, updated_at = ? WHERE id = ?",
		r.Title, r.Content, nullString(r.CategoryID), nullStringPtr(r.Image), r.UpdatedAt, r.ID)
	if err != nil {
		if database.IsDuplicateEntry(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("db.ExecContext(update record) > %w", err)
	}
	return requireAffected(result)
}

// SetImage stores the image URL of a record.
func (repo *DBRepository) SetImage(ctx context.Context, id, image string) error {
	result, err := repo.db.ExecContext(ctx, "UPDATE records SET image = ? WHERE id = ?", image, id)
	if err != nil {
		return fmt.Errorf("db.ExecContext(update record image) > %w", err)
	}
	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("result.RowsAffected() > %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the record with id and returns it.
func (repo *DBRepository) Delete(ctx context.Context, id string) (*Record, error) {
	r, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	err = database.RunInTx(ctx, repo.db, func(ctx context.Context, tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM folder_records WHERE record_id = ?", id); err != nil {
			return fmt.Errorf("tx.ExecContext(delete folder_records) > %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM records WHERE id = ?", id); err != nil {
			return fmt.Errorf("tx.ExecContext(delete record) > %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// AddFolder links the record to a folder.
func (repo *DBRepository) AddFolder(ctx context.Context, recordID, folderID string) error {
	if _, err := repo.db.ExecContext(ctx,
		"INSERT IGNORE INTO folder_records (folder_id, record_id) VALUES (?, ?)", folderID, recordID); err != nil {
		return fmt.Errorf("db.ExecContext(insert folder_record) > %w", err)
	}
	return nil
}

// RemoveFolder unlinks the record from a folder.
func (repo *DBRepository) RemoveFolder(ctx context.Context, recordID, folderID string) error {
	if _, err := repo.db.ExecContext(ctx,
		"DELETE FROM folder_records WHERE folder_id = ? AND record_id = ?", folderID, recordID); err != nil {
		return fmt.Errorf("db.ExecContext(delete folder_record) > %w", err)
	}
	return nil
}

// RemoveFolderFromAll unlinks every record from a folder.
func (repo *DBRepository) RemoveFolderFromAll(ctx context.Context, folderID string) error {
	if _, err := repo.db.ExecContext(ctx, "DELETE FROM folder_records WHERE folder_id = ?", folderID); err != nil {
		return fmt.Errorf("db.ExecContext(delete folder_records) > %w", err)
	}
	return nil
}

// ClearCategory detaches a category from every record.
func (repo *DBRepository) ClearCategory(ctx context.Context, categoryID string) (int64, error) {
	result, err := repo.db.ExecContext(ctx, "UPDATE records SET category_id = NULL WHERE category_id = ?", categoryID)
	if err != nil {
		return 0, fmt.Errorf("db.ExecContext(clear category) > %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("result.RowsAffected() > %w", err)
	}
	return n, nil
}

// DistinctCategoryIDs returns the ids of categories used by at least one record.
func (repo *DBRepository) DistinctCategoryIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := repo.db.SelectContext(ctx, &ids,
		"SELECT DISTINCT category_id FROM records WHERE category_id IS NOT NULL ORDER BY category_id"); err != nil {
		return nil, fmt.Errorf("db.SelectContext(category ids) > %w", err)
	}
	return ids, nil
}

// CountByCategory returns the number of records per category id.
func (repo *DBRepository) CountByCategory(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		CategoryID string `db:"category_id"`
		Count      int64  `db:"count"`
	}
	if err := repo.db.SelectContext(ctx, &rows,
		"SELECT category_id, COUNT(*) AS count FROM records WHERE category_id IS NOT NULL GROUP BY category_id"); err != nil {
		return nil, fmt.Errorf("db.SelectContext(count by category) > %w", err)
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.CategoryID] = row.Count
	}
	return counts, nil
}

func (repo *DBRepository) loadFolders(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	ids := make([]string, len(records))
	byID := make(map[string]*Record, len(records))
	for i := range records {
		ids[i] = records[i].ID
		byID[records[i].ID] = &records[i]
	}

	query, args, err := sqlx.In("SELECT folder_id, record_id FROM folder_records WHERE record_id IN (?) ORDER BY created_at", ids)
	if err != nil {
		return fmt.Errorf("sqlx.In(folder_records) > %w", err)
	}
	var links []folderLink
	if err := repo.db.SelectContext(ctx, &links, repo.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("db.SelectContext(folder_records) > %w", err)
	}
	for _, link := range links {
		if r, ok := byID[link.RecordID]; ok {
			r.FolderIDs = append(r.FolderIDs, link.FolderID)
		}
	}
	return nil
}
