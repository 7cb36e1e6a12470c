package loader

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/jayvee/internal/ctxlog"
	"github.com/vk/jayvee/internal/expr"
	"github.com/vk/jayvee/internal/fsutil"
	"github.com/vk/jayvee/internal/model"
	"github.com/vk/jayvee/internal/registry"
)

// Extension is the file extension of pipeline sources.
const Extension = ".jv"

// Source is a single file to load.
type Source struct {
	Filename string
	Src      []byte
	// Manifest marks module manifests, which may declare built-in blocktypes.
	Manifest bool
}

// Loader parses sources into a workspace. A Loader is not safe for
// concurrent use.
type Loader struct {
	operators *expr.Registry
	manifests []registry.Manifest
	parser    *hclparse.Parser
}

// New creates a loader that prepends the manifests registered in reg to every
// load and recognises the operators of reg as function names.
func New(reg *registry.Registry) *Loader {
	return &Loader{
		operators: reg.Operators,
		manifests: reg.Manifests(),
		parser:    hclparse.NewParser(),
	}
}

// Files returns the parsed files of the last load, keyed by filename. It is
// meant for rendering diagnostics with source snippets.
func (l *Loader) Files() map[string]*hcl.File {
	return l.parser.Files()
}

// LoadFiles loads every .jv file found under paths. Directories are walked
// recursively. Filesystem problems are returned as an error, problems with
// the sources as diagnostics.
func (l *Loader) LoadFiles(ctx context.Context, paths ...string) (*model.Workspace, hcl.Diagnostics, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loader started.", "path_count", len(paths))

	files, err := fsutil.CollectFiles(paths, Extension)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Discovered source files.", "count", len(files))

	sources := make([]Source, 0, len(files))
	for _, f := range files {
		src, err := os.ReadFile(f)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
		sources = append(sources, Source{Filename: f, Src: src})
	}

	ws, diags := l.Load(ctx, sources...)
	return ws, diags, nil
}

// LoadSource loads a single in-memory source.
func (l *Loader) LoadSource(ctx context.Context, filename string, src []byte) (*model.Workspace, hcl.Diagnostics) {
	return l.Load(ctx, Source{Filename: filename, Src: src})
}

// Load parses the registered manifests followed by sources. The returned
// workspace is populated as far as the sources allow, also when diagnostics
// contain errors.
func (l *Loader) Load(ctx context.Context, sources ...Source) (*model.Workspace, hcl.Diagnostics) {
	logger := ctxlog.FromContext(ctx)
	l.parser = hclparse.NewParser()

	all := make([]Source, 0, len(l.manifests)+len(sources))
	for _, m := range l.manifests {
		all = append(all, Source{Filename: m.Filename, Src: m.Source, Manifest: true})
	}
	all = append(all, sources...)

	d := newDecoder(l.operators)
	for _, src := range all {
		file, diags := l.parser.ParseHCL(src.Src, src.Filename)
		d.diags = append(d.diags, diags...)
		if file == nil {
			continue
		}
		d.sources[src.Filename] = src.Src
		body, ok := file.Body.(*hclsyntax.Body)
		if !ok {
			d.diags = append(d.diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unsupported file",
				Detail:   fmt.Sprintf("%s is not written in the native syntax.", src.Filename),
			})
			continue
		}
		d.declare(body, src.Manifest)
	}
	d.define()

	ws := d.ws
	logger.Debug("Loading complete.",
		"files", len(all),
		"valuetypes", len(ws.ValueTypes),
		"constraints", len(ws.Constraints),
		"transforms", len(ws.Transforms),
		"blocktypes", len(ws.BlockTypes),
		"pipelines", len(ws.Pipelines),
		"errors", len(d.diags.Errs()),
	)
	return ws, d.diags
}
