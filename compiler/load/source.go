package load

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/syssam/modelgraph"
	"github.com/syssam/modelgraph/schema"
)

// ModelSource resolves a module name into its models.
type ModelSource interface {
	// Load returns the module with the given name, or a
	// *modelgraph.ModuleResolutionError if it cannot be loaded.
	Load(ctx context.Context, name string) (*schema.Module, error)
}

// Resolver is implemented by sources that depend on a framework package
// which must be resolved before any module is loaded.
type Resolver interface {
	Resolve(ctx context.Context) error
}

// Modules loads the named modules from src and returns them in the order
// given. Modules are loaded concurrently, at most GOMAXPROCS at a time,
// and validated after loading. Names resolving to the same module path
// yield the module once, under the first name.
func Modules(ctx context.Context, src ModelSource, names []string, logger *slog.Logger) ([]*schema.Module, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if r, ok := src.(Resolver); ok {
		if err := r.Resolve(ctx); err != nil {
			return nil, err
		}
	}
	modules := make([]*schema.Module, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			mod, err := src.Load(ctx, name)
			if err != nil {
				return err
			}
			if err := mod.Validate(); err != nil {
				return modelgraph.NewModuleResolutionError(name, "invalid model", err)
			}
			logger.Debug("module loaded", "module", mod.Name, "models", len(mod.Models))
			modules[i] = mod
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return merge(modules, logger), nil
}

// merge drops modules loaded more than once and rewrites references by
// module path to the name each module is shown under.
func merge(modules []*schema.Module, logger *slog.Logger) []*schema.Module {
	names := make(map[string]string, len(modules))
	out := modules[:0]
	for _, mod := range modules {
		key := mod.Path
		if key == "" {
			key = mod.Name
		}
		if first, ok := names[key]; ok {
			logger.Debug("duplicate module skipped", "module", mod.Name, "loaded_as", first)
			continue
		}
		names[key] = mod.Name
		out = append(out, mod)
	}
	for _, mod := range out {
		for _, m := range mod.Models {
			if name, ok := names[m.Module]; ok {
				m.Module = name
			}
			for _, f := range m.Fields {
				if f.Target == nil {
					continue
				}
				if name, ok := names[f.Target.Module]; ok {
					f.Target.Module = name
				}
			}
		}
	}
	return out
}

// Registry is a ModelSource holding explicitly registered modules.
type Registry struct {
	modules map[string]*schema.Module
}

// NewRegistry returns a registry holding the given modules.
func NewRegistry(modules ...*schema.Module) *Registry {
	r := &Registry{modules: make(map[string]*schema.Module, len(modules))}
	for _, m := range modules {
		r.Register(m)
	}
	return r
}

// Register adds a module to the registry, replacing any module with the
// same name. Models are sorted by name. Empty model and target modules
// default to the module name.
func (r *Registry) Register(m *schema.Module) {
	for _, model := range m.Models {
		if model.Module == "" {
			model.Module = m.Name
		}
		for _, f := range model.Fields {
			if f.Target != nil && f.Target.Module == "" {
				f.Target.Module = m.Name
			}
		}
	}
	m.Sort()
	r.modules[m.Name] = m
}

// Names returns the registered module names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load implements ModelSource.
func (r *Registry) Load(_ context.Context, name string) (*schema.Module, error) {
	m, ok := r.modules[name]
	if !ok {
		return nil, modelgraph.NewModuleResolutionError(name, fmt.Sprintf("module is not registered (have %v)", r.Names()), nil)
	}
	return m, nil
}
