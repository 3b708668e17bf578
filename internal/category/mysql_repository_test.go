package category

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "mysql"), mock
}

func TestDBRepository_Create(t *testing.T) {
	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		execErr error
		wantErr error
	}{
		{name: "success"},
		{name: "duplicate", execErr: &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, wantErr: ErrDuplicate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			exec := mock.ExpectExec("INSERT INTO categories \\(id, name, created_at\\) VALUES \\(\\?, \\?, \\?\\)").
				WithArgs(sqlmock.AnyArg(), "Work", now)
			if tt.execErr != nil {
				exec.WillReturnError(tt.execErr)
			} else {
				exec.WillReturnResult(sqlmock.NewResult(1, 1))
			}

			c := &Category{Name: "Work", CreatedAt: now}
			err := NewDBRepository(db).Create(context.Background(), c)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, c.ID)
			} else {
				require.NoError(t, err)
				assert.Len(t, c.ID, 36)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDBRepository_FindAll(t *testing.T) {
	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT id, name, created_at FROM categories ORDER BY name").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at"}).
			AddRow("c1", "Health", now).
			AddRow("c2", "Work", now))

	got, err := NewDBRepository(db).FindAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Category{
		{ID: "c1", Name: "Health", CreatedAt: now},
		{ID: "c2", Name: "Work", CreatedAt: now},
	}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBRepository_FindByIDs(t *testing.T) {
	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	t.Run("empty ids do not query", func(t *testing.T) {
		db, mock := newMockDB(t)
		got, err := NewDBRepository(db).FindByIDs(context.Background(), nil)
		require.NoError(t, err)
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("expands the id list", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery("SELECT id, name, created_at FROM categories WHERE id IN \\(\\?, \\?\\) ORDER BY name").
			WithArgs("c1", "c2").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at"}).AddRow("c1", "Health", now))
		got, err := NewDBRepository(db).FindByIDs(context.Background(), []string{"c1", "c2"})
		require.NoError(t, err)
		assert.Len(t, got, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDBRepository_Delete(t *testing.T) {
	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		wantErr   error
		wantAny   bool
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT id, name, created_at FROM categories WHERE id = \\?").
					WithArgs("c1").
					WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at"}).AddRow("c1", "Work", now))
				mock.ExpectExec("DELETE FROM categories WHERE id = \\?").WithArgs("c1").WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "not found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT id, name, created_at FROM categories WHERE id = \\?").
					WithArgs("c1").
					WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at"}))
			},
			wantErr: ErrNotFound,
		},
		{
			name: "delete fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT id, name, created_at FROM categories WHERE id = \\?").
					WithArgs("c1").
					WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at"}).AddRow("c1", "Work", now))
				mock.ExpectExec("DELETE FROM categories").WillReturnError(errors.New("lock wait timeout"))
			},
			wantAny: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			tt.setupMock(mock)

			got, err := NewDBRepository(db).Delete(context.Background(), "c1")
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantAny:
				assert.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, "Work", got.Name)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
