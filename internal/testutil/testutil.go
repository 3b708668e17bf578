// Package testutil provides shared test helpers for creating config files.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// UnreachableMySQLConfig selects the mysql driver against a port nothing listens on,
// so commands can be run without a database while every query fails fast.
const UnreachableMySQLConfig = `database:
  driver: mysql
  mysql:
    host: 127.0.0.1
    port: 1
    database: notekeeper
    username: user
log:
  output: stderr
`

// WriteConfig writes content as config.yml in dir and returns its path.
// The working directory is moved to dir so no .env from the caller is picked up.
func WriteConfig(t *testing.T, dir, content string) string {
	t.Helper()

	t.Chdir(dir)
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// SetupTestConfig writes a config that points at an unreachable MySQL server.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()
	return WriteConfig(t, tmpDir, UnreachableMySQLConfig)
}
