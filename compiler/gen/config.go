package gen

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/syssam/modelgraph"
)

// Default values of the configuration.
const (
	DefaultMainColor    = "#0b7285"
	DefaultBgColor      = "#e3fafc"
	DefaultExportFile   = "peewee_models"
	DefaultExportFormat = "svg"
	DefaultBaseModel    = "Model"
	DefaultForeignKey   = "ForeignKey"
	DefaultTagKey       = "orm"
	DefaultDialect      = "postgres"
)

// Display selects which fields are listed in a model node.
// Relation edges are drawn regardless of the display mode.
type Display string

// Display modes.
const (
	DisplayAll       Display = "all"
	DisplayRelations Display = "relations"
	DisplayNone      Display = "none"
)

// ParseDisplay parses a display mode.
func ParseDisplay(s string) (Display, error) {
	switch d := Display(strings.ToLower(strings.TrimSpace(s))); d {
	case DisplayAll, DisplayRelations, DisplayNone:
		return d, nil
	default:
		return "", modelgraph.NewConfigurationError("display", s, "unknown display mode; use all, relations or none")
	}
}

// FieldNames selects how field names are labelled.
type FieldNames string

// Field naming modes.
const (
	// FieldNamesDeclared shows fields as declared in the source.
	FieldNamesDeclared FieldNames = "go"
	// FieldNamesColumn shows the storage column name of each field.
	FieldNamesColumn FieldNames = "column"
)

// Source selects the loader used to discover models.
type Source string

// Model sources.
const (
	// SourceGo analyses Go packages statically.
	SourceGo Source = "go"
	// SourceEnt loads ent schema packages.
	SourceEnt Source = "ent"
	// SourceAtlas evaluates Atlas HCL schema documents.
	SourceAtlas Source = "atlas"
)

// ORM identifies the framework types used to classify Go declarations.
type ORM struct {
	// Package is the import path of the ORM framework package.
	Package string
	// BaseModel is the name of the abstract model type models embed.
	BaseModel string
	// ForeignKey is the name of the foreign-key field type.
	ForeignKey string
	// TagKey is the struct tag key holding field options.
	TagKey string
}

// Config is the configuration of a single generation pass.
// It is built once by NewConfig and must not be modified afterwards.
type Config struct {
	// Modules are the deduplicated module names to load, in sorted order.
	Modules []string
	// Source is the model loader.
	Source Source
	// ORM parameterises model and field classification of the Go source.
	ORM ORM
	// Dialect is the SQL dialect of Atlas HCL documents.
	Dialect string
	// MainColor is used for node titles and field text.
	MainColor string
	// BgColor is the background of model tables.
	BgColor string
	// ExportFile is the output file name without extension.
	ExportFile string
	// ExportFormat is the Graphviz output format, e.g. svg, png or pdf.
	ExportFormat string
	// View opens the rendered file after generation.
	View bool
	// Display gates the field rows of model nodes.
	Display Display
	// DisplayModulesName qualifies model names with their module.
	// When not set explicitly it is true iff more than one module is requested.
	DisplayModulesName bool
	// FieldNames selects the field labels.
	FieldNames FieldNames
	// BuildFlags are passed to the Go package loader.
	BuildFlags []string
	// Logger receives progress logs. Nil discards them.
	Logger *slog.Logger

	modulesNameSet bool
}

// Log returns the configured logger, or one discarding all records.
func (c *Config) Log() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// QualifyNames reports whether model names are qualified by module.
func (c *Config) QualifyNames() bool { return c.DisplayModulesName }

func defaultConfig() *Config {
	return &Config{
		Source:       SourceGo,
		Dialect:      DefaultDialect,
		MainColor:    DefaultMainColor,
		BgColor:      DefaultBgColor,
		ExportFile:   DefaultExportFile,
		ExportFormat: DefaultExportFormat,
		Display:      DisplayAll,
		FieldNames:   FieldNamesDeclared,
		ORM: ORM{
			BaseModel:  DefaultBaseModel,
			ForeignKey: DefaultForeignKey,
			TagKey:     DefaultTagKey,
		},
	}
}

// finalize validates the configuration and derives the values that
// depend on other options.
func (c *Config) finalize() error {
	modules := make([]string, 0, len(c.Modules))
	for _, m := range c.Modules {
		if m = strings.TrimSpace(m); m != "" {
			modules = append(modules, m)
		}
	}
	slices.Sort(modules)
	c.Modules = slices.Compact(modules)
	if len(c.Modules) == 0 {
		return modelgraph.NewConfigurationError("modules", nil, "no module to load")
	}
	if _, err := ParseDisplay(string(c.Display)); err != nil {
		return err
	}
	switch c.Source {
	case SourceGo:
		if c.ORM.Package == "" {
			return modelgraph.NewConfigurationError("orm", nil, "the ORM framework package is required")
		}
		if c.ORM.BaseModel == "" || c.ORM.ForeignKey == "" {
			return modelgraph.NewConfigurationError("orm", c.ORM, "base model and foreign key type names are required")
		}
	case SourceEnt:
	case SourceAtlas:
		switch c.Dialect {
		case "postgres", "mysql", "sqlite":
		default:
			return modelgraph.NewConfigurationError("dialect", c.Dialect, "unsupported dialect; use postgres, mysql or sqlite")
		}
	default:
		return modelgraph.NewConfigurationError("source", c.Source, "unknown source; use go, ent or atlas")
	}
	switch c.FieldNames {
	case FieldNamesDeclared, FieldNamesColumn:
	default:
		return modelgraph.NewConfigurationError("field-names", c.FieldNames, "use go or column")
	}
	if c.ExportFile == "" {
		return modelgraph.NewConfigurationError("export-file", nil, "export file cannot be empty")
	}
	if c.ExportFormat == "" {
		return modelgraph.NewConfigurationError("export-format", nil, "export format cannot be empty")
	}
	if !c.modulesNameSet {
		c.DisplayModulesName = len(c.Modules) > 1
	}
	return nil
}
