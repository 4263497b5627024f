package gen

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/syssam/modelgraph"
)

// Option configures a generation pass.
type Option func(*Config) error

// WithModules adds module names to load. Each name may hold a
// comma-separated list. Duplicates are removed by NewConfig.
func WithModules(names ...string) Option {
	return func(c *Config) error {
		for _, name := range names {
			c.Modules = append(c.Modules, strings.Split(name, ",")...)
		}
		return nil
	}
}

// WithSource sets the model loader: "go", "ent" or "atlas".
func WithSource(s string) Option {
	return func(c *Config) error {
		switch src := Source(strings.ToLower(s)); src {
		case SourceGo, SourceEnt, SourceAtlas:
			c.Source = src
			return nil
		default:
			return modelgraph.NewConfigurationError("source", s, "unknown source; use go, ent or atlas")
		}
	}
}

// WithORM sets the import path of the ORM framework package.
func WithORM(pkg string) Option {
	return func(c *Config) error {
		c.ORM.Package = pkg
		return nil
	}
}

// WithBaseModel sets the name of the ORM base model type.
func WithBaseModel(name string) Option {
	return func(c *Config) error {
		if name == "" {
			return modelgraph.NewConfigurationError("base-model", nil, "base model cannot be empty")
		}
		c.ORM.BaseModel = name
		return nil
	}
}

// WithForeignKey sets the name of the ORM foreign-key field type.
func WithForeignKey(name string) Option {
	return func(c *Config) error {
		if name == "" {
			return modelgraph.NewConfigurationError("foreign-key", nil, "foreign key type cannot be empty")
		}
		c.ORM.ForeignKey = name
		return nil
	}
}

// WithTagKey sets the struct tag key holding field options.
func WithTagKey(key string) Option {
	return func(c *Config) error {
		if key == "" {
			return modelgraph.NewConfigurationError("tag-key", nil, "tag key cannot be empty")
		}
		c.ORM.TagKey = key
		return nil
	}
}

// WithDialect sets the SQL dialect of Atlas HCL documents.
func WithDialect(d string) Option {
	return func(c *Config) error {
		c.Dialect = strings.ToLower(d)
		return nil
	}
}

// WithMainColor sets the main color. The value is passed to Graphviz as is.
func WithMainColor(color string) Option {
	return func(c *Config) error {
		c.MainColor = color
		return nil
	}
}

// WithBgColor sets the node background color. The value is passed to Graphviz as is.
func WithBgColor(color string) Option {
	return func(c *Config) error {
		c.BgColor = color
		return nil
	}
}

// WithExportFile sets the output file name, without extension.
func WithExportFile(name string) Option {
	return func(c *Config) error {
		c.ExportFile = name
		return nil
	}
}

// WithExportFormat sets the Graphviz output format.
func WithExportFormat(format string) Option {
	return func(c *Config) error {
		c.ExportFormat = strings.ToLower(format)
		return nil
	}
}

// WithView opens the rendered file after generation.
func WithView(view bool) Option {
	return func(c *Config) error {
		c.View = view
		return nil
	}
}

// WithDisplay sets the display mode: "all", "relations" or "none".
func WithDisplay(s string) Option {
	return func(c *Config) error {
		d, err := ParseDisplay(s)
		if err != nil {
			return err
		}
		c.Display = d
		return nil
	}
}

// WithDisplayModulesName forces qualification of model names by module.
// Without this option it is derived from the number of modules.
func WithDisplayModulesName(qualify bool) Option {
	return func(c *Config) error {
		c.DisplayModulesName = qualify
		c.modulesNameSet = true
		return nil
	}
}

// WithFieldNames sets the field labels: "go" or "column".
func WithFieldNames(s string) Option {
	return func(c *Config) error {
		switch n := FieldNames(strings.ToLower(s)); n {
		case FieldNamesDeclared, FieldNamesColumn:
			c.FieldNames = n
			return nil
		default:
			return modelgraph.NewConfigurationError("field-names", s, "use go or column")
		}
	}
}

// WithBuildFlags sets custom build flags for loading Go packages.
func WithBuildFlags(flags ...string) Option {
	return func(c *Config) error {
		c.BuildFlags = append(c.BuildFlags, flags...)
		return nil
	}
}

// WithLogger sets the logger used during generation.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) error {
		c.Logger = l
		return nil
	}
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a validated Config from the defaults and the given
// options. Failures of all options are reported together.
func NewConfig(opts ...Option) (*Config, error) {
	c := defaultConfig()
	if err := c.ApplyAll(opts...); err != nil {
		return nil, err
	}
	if err := c.finalize(); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}
