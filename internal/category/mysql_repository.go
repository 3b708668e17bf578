package category

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/notekeeper/internal/database"
)

// DBRepository implements Repository using MySQL.
type DBRepository struct {
	db *sqlx.DB
}

func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

func (repo *DBRepository) Create(ctx context.Context, c *Category) error {
	id := uuid.NewString()
	if _, err := repo.db.ExecContext(ctx,
		"INSERT INTO categories (id, name, created_at) VALUES (?, ?, ?)",
		id, c.Name, c.CreatedAt); err != nil {
		if database.IsDuplicateEntry(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("db.ExecContext(insert category) > %w", err)
	}
	c.ID = id
	return nil
}

func (repo *DBRepository) get(ctx context.Context, where string, arg any) (*Category, error) {
	var c Category
	err := repo.db.QueryRowxContext(ctx, "SELECT id, name, created_at FROM categories WHERE "+where, arg).
		Scan(&c.ID, &c.Name, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("QueryRowxContext(category) > %w", err)
	}
	return &c, nil
}

func (repo *DBRepository) FindByID(ctx context.Context, id string) (*Category, error) {
	return repo.get(ctx, "id = ?", id)
}

func (repo *DBRepository) FindByName(ctx context.Context, name string) (*Category, error) {
	return repo.get(ctx, "name = ?", name)
}

func (repo *DBRepository) selectCategories(ctx context.Context, query string, args ...any) ([]Category, error) {
	rows, err := repo.db.QueryxContext(ctx, repo.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("db.QueryxContext(categories) > %w", err)
	}
	defer func() { _ = rows.Close() }()

	categories := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("rows.Scan() > %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err() > %w", err)
	}
	return categories, nil
}

func (repo *DBRepository) FindByIDs(ctx context.Context, ids []string) ([]Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In("SELECT id, name, created_at FROM categories WHERE id IN (?) ORDER BY name", ids)
	if err != nil {
		return nil, fmt.Errorf("sqlx.In(categories) > %w", err)
	}
	return repo.selectCategories(ctx, query, args...)
}

func (repo *DBRepository) FindAll(ctx context.Context) ([]Category, error) {
	return repo.selectCategories(ctx, "SELECT id, name, created_at FROM categories ORDER BY name")
}

// Delete removes the category. The records.category_id foreign key is set to NULL by the schema.
func (repo *DBRepository) Delete(ctx context.Context, id string) (*Category, error) {
	c, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := repo.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("db.ExecContext(delete category) > %w", err)
	}
	return c, nil
}
