package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateMan(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "man")
	require.NoError(t, generate("man", dir))

	assert.FileExists(t, filepath.Join(dir, "bpack.1"))
	assert.FileExists(t, filepath.Join(dir, "bpack-add.1"))
	page, err := os.ReadFile(filepath.Join(dir, "bpack-sync.1"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "BPACK")
}

func TestGenerateMarkdown(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generate("markdown", dir))
	assert.FileExists(t, filepath.Join(dir, "bpack_validate.md"))
	assert.NoFileExists(t, filepath.Join(dir, "bpack_help.md"))
}

func TestGenerateUnknownKind(t *testing.T) {
	assert.Error(t, generate("html", t.TempDir()))
}
