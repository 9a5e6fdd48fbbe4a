package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOS(t *testing.T) {
	fs := NewOS()
	assert.NotNil(t, fs)

	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.txt")
	testContent := []byte("hello world")

	require.NoError(t, fs.WriteFile(testFile, testContent, 0644))

	info, err := fs.Stat(testFile)
	require.NoError(t, err)
	assert.Equal(t, "test.txt", info.Name())
	assert.Equal(t, int64(len(testContent)), info.Size())

	content, err := fs.ReadFile(testFile)
	require.NoError(t, err)
	assert.Equal(t, testContent, content)

	require.NoError(t, fs.MkdirAll(filepath.Join(tmpDir, "sub", "dir"), 0755))

	entries, err := fs.ReadDir(tmpDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2) // test.txt and sub/

	require.NoError(t, fs.Remove(testFile))
	_, err = fs.Stat(testFile)
	assert.True(t, os.IsNotExist(err))
	assert.False(t, Exists(fs, testFile))
}

func TestWriteFileAtomic(t *testing.T) {
	fs := NewOS()
	dir := t.TempDir()
	target := filepath.Join(dir, "Cargo.toml")

	t.Run("creates a new file", func(t *testing.T) {
		require.NoError(t, WriteFileAtomic(fs, target, []byte("[package]\n")))
		content, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, "[package]\n", string(content))
	})

	t.Run("replaces and keeps permissions", func(t *testing.T) {
		require.NoError(t, os.Chmod(target, 0600))
		require.NoError(t, WriteFileAtomic(fs, target, []byte("[workspace]\n")))

		content, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, "[workspace]\n", string(content))
		info, err := os.Stat(target)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})

	t.Run("leaves no temporary files", func(t *testing.T) {
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("missing directory fails", func(t *testing.T) {
		err := WriteFileAtomic(fs, filepath.Join(dir, "nope", "Cargo.toml"), nil)
		assert.Error(t, err)
	})
}
