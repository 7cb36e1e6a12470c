package registry

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/vk/jayvee/internal/constraint"
	"github.com/vk/jayvee/internal/executor"
	"github.com/vk/jayvee/internal/expr"
)

// Module is the interface that all core modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Manifest is a module's blocktype declaration source.
type Manifest struct {
	Filename string
	Source   []byte
}

// Registry holds all the registered executors, manifests, constraint kinds
// and operators for a single application instance.
type Registry struct {
	executors map[string]executor.Factory
	manifests []Manifest

	Constraints *constraint.Registry
	Operators   *expr.Registry
}

// New creates and initializes a new Registry instance with the built-in
// constraint kinds and operators.
func New() *Registry {
	return &Registry{
		executors:   make(map[string]executor.Factory),
		Constraints: constraint.NewDefaultRegistry(),
		Operators:   expr.NewRegistry(),
	}
}

// RegisterBlockExecutor registers the Go executor for a built-in blocktype.
func (r *Registry) RegisterBlockExecutor(name string, factory executor.Factory) {
	if _, exists := r.executors[name]; exists {
		panic(fmt.Sprintf("block executor with name '%s' already registered", name))
	}
	slog.Debug("Registering block executor.", "name", name)
	r.executors[name] = factory
}

// RegisterConstraintKind registers an additional constraint kind.
func (r *Registry) RegisterConstraintKind(k *constraint.Kind) {
	slog.Debug("Registering constraint kind.", "name", k.Name)
	r.Constraints.Register(k)
}

// RegisterManifest registers the blocktype declarations of a module.
func (r *Registry) RegisterManifest(filename string, src []byte) {
	for _, m := range r.manifests {
		if m.Filename == filename {
			panic(fmt.Sprintf("manifest with name '%s' already registered", filename))
		}
	}
	slog.Debug("Registering manifest.", "filename", filename)
	r.manifests = append(r.manifests, Manifest{Filename: filename, Source: src})
}

// Manifests returns the registered manifests in registration order.
func (r *Registry) Manifests() []Manifest {
	return r.manifests
}

// Executor creates a new executor for the named blocktype.
func (r *Registry) Executor(name string) (executor.BlockExecutor, bool) {
	factory, ok := r.executors[name]
	if !ok {
		return nil, false
	}
	return factory(), true
}

// ExecutorNames returns the names of all registered executors, sorted.
func (r *Registry) ExecutorNames() []string {
	names := make([]string, 0, len(r.executors))
	for name := range r.executors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
