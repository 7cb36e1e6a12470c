package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("# test"), 0o644))
	}
}

func TestFindFilesByExtension(t *testing.T) {
	// --- Arrange ---
	root := t.TempDir()
	writeFiles(t, root, "b.jv", "a.jv", "nested/c.jv", "notes.txt")

	// --- Act ---
	files, err := FindFilesByExtension(root, ".jv")

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.jv"),
		filepath.Join(root, "b.jv"),
		filepath.Join(root, "nested", "c.jv"),
	}, files)
}

func TestFindFilesByExtensionPanicsWithoutExtension(t *testing.T) {
	assert.PanicsWithValue(t, "extension must not be empty", func() {
		_, _ = FindFilesByExtension(t.TempDir(), "")
	})
}

func TestCollectFiles(t *testing.T) {
	t.Run("files and directories are merged without duplicates", func(t *testing.T) {
		// --- Arrange ---
		root := t.TempDir()
		writeFiles(t, root, "cars.jv", "lib/types.jv", "data.csv")
		explicit := filepath.Join(root, "data.csv")

		// --- Act ---
		files, err := CollectFiles([]string{filepath.Join(root, "cars.jv"), root, explicit}, ".jv")

		// --- Assert ---
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(root, "cars.jv"),
			filepath.Join(root, "lib", "types.jv"),
			explicit,
		}, files)
	})

	t.Run("missing path is an error", func(t *testing.T) {
		_, err := CollectFiles([]string{filepath.Join(t.TempDir(), "missing.jv")}, ".jv")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "error accessing path")
	})
}
