package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/vk/jayvee/internal/ctxlog"
	"github.com/vk/jayvee/internal/model"
)

// ValidateRegistry performs a strict parity check between manifests and Go
// code. Every built-in blocktype needs an executor, every executor needs a
// built-in blocktype, and their IO types must agree. The operator tables are
// checked as well.
func (r *Registry) ValidateRegistry(ctx context.Context, ws *model.Workspace) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	builtin := make(map[string]*model.BlockType)
	for name, bt := range ws.BlockTypes {
		if bt.Builtin {
			builtin[name] = bt
		}
	}

	for _, name := range sortedNames(builtin) {
		bt := builtin[name]
		exec, ok := r.Executor(name)
		if !ok {
			errs = append(errs, fmt.Sprintf("blocktype '%s': manifest declares a built-in blocktype, but no Go executor is registered", name))
			continue
		}
		if exec.InputType() != bt.InputType() {
			errs = append(errs, fmt.Sprintf("blocktype '%s': input type mismatch. Manifest requires '%s' but Go executor consumes '%s'",
				name, bt.InputType(), exec.InputType()))
		}
		if exec.OutputType() != bt.OutputType() {
			errs = append(errs, fmt.Sprintf("blocktype '%s': output type mismatch. Manifest requires '%s' but Go executor produces '%s'",
				name, bt.OutputType(), exec.OutputType()))
		}
	}

	for _, name := range r.ExecutorNames() {
		if bt, ok := ws.BlockTypes[name]; !ok || !bt.Builtin {
			errs = append(errs, fmt.Sprintf("blocktype '%s': Go executor is registered, but no manifest declares it", name))
		}
	}

	if err := r.Operators.Validate(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	logger.Debug("Registry parity confirmed.", "executors", len(r.executors), "manifests", len(r.manifests))
	return nil
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
