package database

import (
	"testing"
	"testing/fstest"

	"github.com/golang-migrate/migrate/v4/database/stub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/at-ishikawa/notekeeper/schemas"
)

func newStubMigrator(t *testing.T, migrations fstest.MapFS) *Migrator {
	t.Helper()
	driver, err := stub.WithInstance(nil, &stub.Config{})
	require.NoError(t, err)
	m, err := NewMigrator(migrations, "stub", driver, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestMigrator_Up(t *testing.T) {
	m := newStubMigrator(t, fstest.MapFS{
		"migrations/001_init.up.sql":      {Data: []byte("CREATE TABLE categories (id CHAR(36));")},
		"migrations/001_init.down.sql":    {Data: []byte("DROP TABLE categories;")},
		"migrations/002_records.up.sql":   {Data: []byte("CREATE TABLE records (id CHAR(36));")},
		"migrations/002_records.down.sql": {Data: []byte("DROP TABLE records;")},
	})

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
	assert.False(t, dirty)

	from, to, err := m.Up()
	require.NoError(t, err)
	assert.Equal(t, uint(0), from)
	assert.Equal(t, uint(2), to)

	from, to, err = m.Up()
	require.NoError(t, err)
	assert.Equal(t, uint(2), from)
	assert.Equal(t, uint(2), to)
}

func TestMigrator_UpWithoutVersionedFiles(t *testing.T) {
	m := newStubMigrator(t, fstest.MapFS{
		"migrations/001_init.sql": {Data: []byte("CREATE TABLE categories (id CHAR(36));")},
	})

	_, _, err := m.Up()
	assert.Error(t, err)
}

func TestNewMigrator_MissingDirectory(t *testing.T) {
	driver, err := stub.WithInstance(nil, &stub.Config{})
	require.NoError(t, err)

	_, err = NewMigrator(fstest.MapFS{"other/001_init.up.sql": {Data: []byte("SELECT 1;")}}, "stub", driver, nil)
	assert.Error(t, err)
}

func TestMigrator_EmbeddedSchema(t *testing.T) {
	driver, err := stub.WithInstance(nil, &stub.Config{})
	require.NoError(t, err)
	m, err := NewMigrator(schemas.Migrations, "stub", driver, zap.NewNop())
	require.NoError(t, err)
	defer func() { _ = m.Close() }()

	from, to, err := m.Up()
	require.NoError(t, err)
	assert.Equal(t, uint(0), from)
	assert.Equal(t, uint(1), to)
}
