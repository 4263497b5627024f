package load

import (
	"context"
	"errors"
	"fmt"
	"go/types"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/syssam/modelgraph"
	"github.com/syssam/modelgraph/schema"
)

const loadMode = packages.NeedName | packages.NeedFiles | packages.NeedTypes | packages.NeedImports | packages.NeedModule

// Packages is a ModelSource analysing Go packages statically. Module names
// are package patterns resolving to exactly one package; no code of the
// loaded packages is executed.
type Packages struct {
	// ORM drives model and field classification.
	ORM ORM
	// Dir is the directory patterns are resolved from. Empty means the
	// current directory.
	Dir string
	// BuildFlags are passed to the build system.
	BuildFlags []string
	// Logger receives debug logs. Nil discards them.
	Logger *slog.Logger

	resolved bool
}

// Resolve loads the ORM framework package and checks that it declares
// the base model and foreign-key types.
func (p *Packages) Resolve(ctx context.Context) error {
	if p.resolved {
		return nil
	}
	pkg, err := p.load(ctx, p.ORM.Package)
	if err != nil {
		return err
	}
	for _, name := range []string{p.ORM.BaseModel, p.ORM.ForeignKey} {
		if _, ok := pkg.Types.Scope().Lookup(name).(*types.TypeName); !ok {
			return modelgraph.NewModuleResolutionError(p.ORM.Package, fmt.Sprintf("type %q is not declared", name), nil)
		}
	}
	// Patterns such as "./orm" are replaced by the canonical import path
	// so that types can be matched by package path.
	p.ORM.Package = pkg.PkgPath
	p.resolved = true
	p.log().Debug("orm resolved", "package", pkg.PkgPath, "base", p.ORM.BaseModel, "foreign_key", p.ORM.ForeignKey)
	return nil
}

// Load implements ModelSource.
func (p *Packages) Load(ctx context.Context, name string) (*schema.Module, error) {
	if err := p.Resolve(ctx); err != nil {
		return nil, err
	}
	pkg, err := p.load(ctx, name)
	if err != nil {
		return nil, err
	}
	mod := &schema.Module{
		Name:  displayName(name, pkg.PkgPath),
		Path:  pkg.PkgPath,
		Files: pkg.GoFiles,
	}
	models, err := p.models(mod.Name, pkg.Types)
	if err != nil {
		return nil, modelgraph.NewModuleResolutionError(name, "", err)
	}
	mod.Models = models
	return mod, nil
}

// models returns the models declared in pkg. Scope.Names is sorted, so
// models come out in alphabetical order.
func (p *Packages) models(module string, pkg *types.Package) ([]*schema.Model, error) {
	var models []*schema.Model
	scope := pkg.Scope()
	for _, name := range scope.Names() {
		tn, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || tn.IsAlias() {
			continue
		}
		n, ok := tn.Type().(*types.Named)
		if !ok || n.TypeParams().Len() > 0 || !p.ORM.IsModel(n) {
			continue
		}
		fields, err := p.ORM.Fields(n)
		if err != nil {
			return nil, err
		}
		models = append(models, &schema.Model{
			Name:   name,
			Module: module,
			Fields: fields,
		})
	}
	return models, nil
}

// displayName returns the name a module is shown under: the requested
// pattern without a leading "./". Patterns that do not name a package
// below the working directory fall back to the import path.
func displayName(pattern, pkgPath string) string {
	name := path.Clean(filepath.ToSlash(pattern))
	if name == "." || name == ".." || strings.HasPrefix(name, "../") || filepath.IsAbs(pattern) || path.IsAbs(name) {
		return pkgPath
	}
	return name
}

func (p *Packages) load(ctx context.Context, pattern string) (*packages.Package, error) {
	cfg := &packages.Config{
		Context:    ctx,
		Mode:       loadMode,
		Dir:        p.Dir,
		BuildFlags: p.BuildFlags,
	}
	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, modelgraph.NewModuleResolutionError(pattern, "load package", err)
	}
	if len(pkgs) != 1 {
		return nil, modelgraph.NewModuleResolutionError(pattern, fmt.Sprintf("pattern matches %d packages, want 1", len(pkgs)), nil)
	}
	pkg := pkgs[0]
	if len(pkg.Errors) > 0 {
		errs := make([]error, 0, len(pkg.Errors))
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
		return nil, modelgraph.NewModuleResolutionError(pattern, "", errors.Join(errs...))
	}
	if pkg.Types == nil {
		return nil, modelgraph.NewModuleResolutionError(pattern, "no type information", nil)
	}
	return pkg, nil
}

func (p *Packages) log() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.New(slog.DiscardHandler)
}
