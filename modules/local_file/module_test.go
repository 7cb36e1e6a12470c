package local_file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/jayvee/internal/iotype"
	"github.com/vk/jayvee/internal/testutil"
)

const src = `
pipeline "P" {
  block "Read" {
    oftype   = LocalFileExtractor
    filePath = requires.FILE
  }
}
`

func TestLocalFileExtractor(t *testing.T) {
	// --- Arrange ---
	path := filepath.Join(t.TempDir(), "stations.csv")
	require.NoError(t, os.WriteFile(path, []byte("id;name\n1;Main\n"), 0o644))
	b := testutil.LoadBlock(t, &Module{}, src, "Read", map[string]string{"FILE": path})

	// --- Act ---
	out, err := b.Run(iotype.None)

	// --- Assert ---
	require.NoError(t, err)
	f := out.(*iotype.File)
	assert.Equal(t, "stations.csv", f.Name)
	assert.Equal(t, "csv", f.Extension)
	assert.Equal(t, "id;name\n1;Main\n", string(f.Content))
}

func TestLocalFileExtractorErrors(t *testing.T) {
	cases := []struct {
		name string
		path string
		want string
	}{
		{"path traversal", "data/../../etc/passwd", "must not contain '..'"},
		{"missing file", filepath.Join(t.TempDir(), "missing.csv"), "failed to read local file"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := testutil.LoadBlock(t, &Module{}, src, "Read", map[string]string{"FILE": tc.path})

			_, err := b.Run(iotype.None)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
