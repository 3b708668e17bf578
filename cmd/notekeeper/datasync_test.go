package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4/database/stub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/at-ishikawa/notekeeper/internal/bootstrap"
	"github.com/at-ishikawa/notekeeper/internal/category"
	"github.com/at-ishikawa/notekeeper/internal/database"
	"github.com/at-ishikawa/notekeeper/internal/datasync"
	"github.com/at-ishikawa/notekeeper/internal/folder"
	mock_category "github.com/at-ishikawa/notekeeper/internal/mocks/category"
	mock_folder "github.com/at-ishikawa/notekeeper/internal/mocks/folder"
	mock_record "github.com/at-ishikawa/notekeeper/internal/mocks/record"
	"github.com/at-ishikawa/notekeeper/internal/record"
	"github.com/at-ishikawa/notekeeper/schemas"
)

type mockStores struct {
	records    *mock_record.MockRepository
	folders    *mock_folder.MockRepository
	categories *mock_category.MockRepository
}

func newMockStores(t *testing.T) (mockStores, *bootstrap.Stores) {
	ctrl := gomock.NewController(t)
	m := mockStores{
		records:    mock_record.NewMockRepository(ctrl),
		folders:    mock_folder.NewMockRepository(ctrl),
		categories: mock_category.NewMockRepository(ctrl),
	}
	return m, &bootstrap.Stores{Records: m.records, Folders: m.folders, Categories: m.categories}
}

func TestNewExportAndImportCommands(t *testing.T) {
	export := newExportCommand()
	assert.Equal(t, "export", export.Use)
	assert.NotNil(t, export.Flags().Lookup("output"))

	imp := newImportCommand()
	assert.Equal(t, "import", imp.Use)
	assert.Equal(t, "false", imp.Flags().Lookup("dry-run").DefValue)
	assert.Equal(t, "false", imp.Flags().Lookup("update-existing").DefValue)

	imp.SetArgs([]string{})
	err := imp.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--file is required")
}

func TestRunExport(t *testing.T) {
	createdAt := time.Date(2026, time.March, 16, 9, 0, 0, 0, time.UTC)

	t.Run("writes the snapshot to a file", func(t *testing.T) {
		m, stores := newMockStores(t)
		m.categories.EXPECT().FindAll(gomock.Any()).Return([]category.Category{{ID: "c1", Name: "Work", CreatedAt: createdAt}}, nil)
		m.folders.EXPECT().FindAll(gomock.Any()).Return([]folder.Folder{}, nil)
		m.records.EXPECT().FindAll(gomock.Any()).Return([]record.Record{{ID: "r1", Title: "Plan", Content: "Q2", CategoryID: "c1", CreatedAt: createdAt, UpdatedAt: createdAt}}, nil)

		output := filepath.Join(t.TempDir(), "snapshot.yml")
		require.NoError(t, runExport(context.Background(), stores, output, &bytes.Buffer{}))

		content, err := os.ReadFile(output)
		require.NoError(t, err)
		assert.Contains(t, string(content), "version: 1")
		assert.Contains(t, string(content), "name: Work")
		assert.Contains(t, string(content), "title: Plan")
	})

	t.Run("repository error", func(t *testing.T) {
		m, stores := newMockStores(t)
		m.categories.EXPECT().FindAll(gomock.Any()).Return(nil, errors.New("connection refused"))

		var stdout bytes.Buffer
		err := runExport(context.Background(), stores, "", &stdout)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestRunImport(t *testing.T) {
	t.Run("dry run prints the summary", func(t *testing.T) {
		m, stores := newMockStores(t)
		m.categories.EXPECT().FindByName(gomock.Any(), "Work").Return(nil, category.ErrNotFound)

		file := filepath.Join(t.TempDir(), "snapshot.yml")
		require.NoError(t, os.WriteFile(file, []byte("version: 1\ncategories:\n  - id: c1\n    name: Work\n"), 0644))

		var stdout bytes.Buffer
		require.NoError(t, runImport(context.Background(), stores, file, datasync.ImportOptions{DryRun: true}, &stdout))
		assert.Contains(t, stdout.String(), `[NEW]  category "Work"`)
		assert.Contains(t, stdout.String(), "(dry-run mode, no changes made)")
		assert.Contains(t, stdout.String(), "Categories: 1 new, 0 skipped")
	})

	t.Run("missing file", func(t *testing.T) {
		_, stores := newMockStores(t)
		err := runImport(context.Background(), stores, filepath.Join(t.TempDir(), "missing.yml"), datasync.ImportOptions{}, &bytes.Buffer{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "os.Open")
	})
}

func TestRunMigrate(t *testing.T) {
	var stdout bytes.Buffer
	require.NoError(t, runMigrate(&bootstrap.Stores{}, &stdout))
	assert.Contains(t, stdout.String(), "Nothing to migrate")
}

func TestApplyMigrations(t *testing.T) {
	driver, err := stub.WithInstance(nil, &stub.Config{})
	require.NoError(t, err)
	migrator, err := database.NewMigrator(schemas.Migrations, "stub", driver, nil)
	require.NoError(t, err)
	defer func() { _ = migrator.Close() }()

	var stdout bytes.Buffer
	require.NoError(t, applyMigrations(migrator, &stdout))
	assert.Equal(t, "  [APPLIED] version 0 -> 1\n", stdout.String())

	stdout.Reset()
	require.NoError(t, applyMigrations(migrator, &stdout))
	assert.Equal(t, "Schema is up to date (version 1)\n", stdout.String())
}
