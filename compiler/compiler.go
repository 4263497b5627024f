// Package compiler runs the modelgraph pipeline: it loads the requested
// modules, builds the graph description and hands it to a renderer.
//
//	cfg, err := gen.NewConfig(
//		gen.WithModules("example.com/app/models"),
//		gen.WithORM("example.com/orm"),
//	)
//	if err != nil {
//		return err
//	}
//	path, err := compiler.Generate(ctx, cfg)
package compiler

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/syssam/modelgraph/compiler/gen"
	"github.com/syssam/modelgraph/compiler/load"
	"github.com/syssam/modelgraph/render"
	"github.com/syssam/modelgraph/schema"
)

// Renderer turns a graph description into a file named
// "<file>.<format>" and returns its path.
type Renderer interface {
	Render(ctx context.Context, src []byte, file, format string) (string, error)
}

// ViewFunc opens a rendered file.
type ViewFunc func(ctx context.Context, path string) error

// Option configures a pipeline run.
type Option func(*pipeline)

// WithSource overrides the model source derived from the configuration.
func WithSource(src load.ModelSource) Option {
	return func(p *pipeline) { p.source = src }
}

// WithRenderer overrides the Graphviz renderer.
func WithRenderer(r Renderer) Option {
	return func(p *pipeline) { p.renderer = r }
}

// WithViewer overrides the function opening rendered files.
func WithViewer(fn ViewFunc) Option {
	return func(p *pipeline) { p.view = fn }
}

// WithDebounce sets how long Watch waits for file events to settle before
// regenerating.
func WithDebounce(d time.Duration) Option {
	return func(p *pipeline) { p.debounce = d }
}

// DefaultDebounce is the default settle delay of Watch.
const DefaultDebounce = 250 * time.Millisecond

type pipeline struct {
	cfg      *gen.Config
	source   load.ModelSource
	renderer Renderer
	view     ViewFunc
	debounce time.Duration
}

func newPipeline(cfg *gen.Config, opts ...Option) (*pipeline, error) {
	p := &pipeline{cfg: cfg, debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(p)
	}
	if p.source == nil {
		src, err := NewSource(cfg)
		if err != nil {
			return nil, err
		}
		p.source = src
	}
	if p.renderer == nil {
		p.renderer = &render.Graphviz{Logger: cfg.Log()}
	}
	if p.view == nil {
		p.view = render.View
	}
	return p, nil
}

// NewSource returns the model source selected by the configuration.
func NewSource(cfg *gen.Config) (load.ModelSource, error) {
	switch cfg.Source {
	case gen.SourceGo:
		return &load.Packages{
			ORM: load.ORM{
				Package:    cfg.ORM.Package,
				BaseModel:  cfg.ORM.BaseModel,
				ForeignKey: cfg.ORM.ForeignKey,
				TagKey:     cfg.ORM.TagKey,
			},
			BuildFlags: cfg.BuildFlags,
			Logger:     cfg.Log(),
		}, nil
	case gen.SourceEnt:
		return &load.Ent{BuildFlags: cfg.BuildFlags}, nil
	case gen.SourceAtlas:
		return &load.Atlas{Dialect: cfg.Dialect}, nil
	default:
		return nil, fmt.Errorf("modelgraph: unknown source %q", cfg.Source)
	}
}

// Load loads the configured modules.
func Load(ctx context.Context, cfg *gen.Config, opts ...Option) ([]*schema.Module, error) {
	p, err := newPipeline(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return p.load(ctx)
}

// Build loads the configured modules and assembles their graph
// description. The loaded modules are returned along with the document.
func Build(ctx context.Context, cfg *gen.Config, opts ...Option) (*gen.Document, []*schema.Module, error) {
	p, err := newPipeline(cfg, opts...)
	if err != nil {
		return nil, nil, err
	}
	return p.build(ctx)
}

// Generate runs a full pass: load, build, render and, when configured,
// view. It returns the path of the rendered file.
func Generate(ctx context.Context, cfg *gen.Config, opts ...Option) (string, error) {
	p, err := newPipeline(cfg, opts...)
	if err != nil {
		return "", err
	}
	path, _, err := p.generate(ctx, cfg.View)
	return path, err
}

func (p *pipeline) load(ctx context.Context) ([]*schema.Module, error) {
	return load.Modules(ctx, p.source, p.cfg.Modules, p.cfg.Log())
}

func (p *pipeline) build(ctx context.Context) (*gen.Document, []*schema.Module, error) {
	modules, err := p.load(ctx)
	if err != nil {
		return nil, nil, err
	}
	return gen.NewBuilder(p.cfg).Build(modules...), modules, nil
}

// generate renders the graph and opens it with the viewer if view is set.
func (p *pipeline) generate(ctx context.Context, view bool) (string, []*schema.Module, error) {
	doc, modules, err := p.build(ctx)
	if err != nil {
		return "", modules, err
	}
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return "", modules, err
	}
	path, err := p.renderer.Render(ctx, buf.Bytes(), p.cfg.ExportFile, p.cfg.ExportFormat)
	if err != nil {
		return "", modules, err
	}
	p.cfg.Log().Info("graph rendered", "path", path)
	if view {
		if err := p.view(ctx, path); err != nil {
			return path, modules, err
		}
	}
	return path, modules, nil
}
