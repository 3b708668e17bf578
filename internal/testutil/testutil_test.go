package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupTestConfig(t *testing.T) {
	tmpDir := t.TempDir()
	got := SetupTestConfig(t, tmpDir)

	want := filepath.Join(tmpDir, "config.yml")
	assert.Equal(t, want, got)

	content, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Contains(t, string(content), "driver: mysql")

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean(tmpDir), filepath.Clean(wd))
}

func TestWriteConfig(t *testing.T) {
	tmpDir := t.TempDir()
	got := WriteConfig(t, tmpDir, "server:\n  port: 8081\n")

	content, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Equal(t, "server:\n  port: 8081\n", string(content))
}
