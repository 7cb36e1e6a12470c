// Package local_file provides the LocalFileExtractor blocktype.
package local_file

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/vk/jayvee/internal/ctxlog"
	"github.com/vk/jayvee/internal/executor"
	"github.com/vk/jayvee/internal/iotype"
	"github.com/vk/jayvee/internal/registry"
)

//go:embed manifest.jv
var manifest []byte

// ErrPathTraversal is returned for file paths that contain "..".
var ErrPathTraversal = errors.New("file path must not contain '..'")

// Module implements the registry.Module interface.
type Module struct{}

// Register registers the LocalFileExtractor executor and its manifest.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterManifest("local_file.jv", manifest)
	r.RegisterBlockExecutor("LocalFileExtractor", func() executor.BlockExecutor {
		return &executor.Func{In: iotype.TypeNone, Out: iotype.TypeFile, Fn: extract}
	})
}

func extract(ctx context.Context, _ iotype.Value, ec *executor.Context) (iotype.Value, error) {
	path, err := ec.Text("filePath")
	if err != nil {
		return nil, err
	}
	if slices.Contains(strings.FieldsFunc(filepath.ToSlash(path), func(r rune) bool { return r == '/' }), "..") {
		return nil, fmt.Errorf("'%s': %w", path, ErrPathTraversal)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read local file: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("Read local file.", "path", path, "bytes", len(content))
	return iotype.NewFile(path, content, ""), nil
}
