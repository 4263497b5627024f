// Command modelgraph draws the models of an ORM as a Graphviz diagram.
//
//	modelgraph --orm example.com/orm ./models
//	modelgraph --source atlas --dialect mysql --export-format png schema.hcl
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/syssam/modelgraph/compiler"
	"github.com/syssam/modelgraph/compiler/gen"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// optionalBool is a boolean flag that records whether it was given.
type optionalBool struct {
	set   bool
	value bool
}

func (b *optionalBool) String() string {
	if b == nil || !b.set {
		return "auto"
	}
	return strconv.FormatBool(b.value)
}

func (b *optionalBool) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	b.set, b.value = true, v
	return nil
}

func (b *optionalBool) IsBoolFlag() bool { return true }

type flags struct {
	settings
	config      string
	orm         string
	view        bool
	modulesName optionalBool
	stdout      bool
	watch       bool
	verbose     bool
	dotenv      string
}

func newFlagSet(f *flags, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("modelgraph", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: modelgraph [flags] <module[,module...]>")
		fs.PrintDefaults()
	}
	fs.StringVar(&f.MainColor, "main-color", gen.DefaultMainColor, "main color of the graph")
	fs.StringVar(&f.BgColor, "bg-color", gen.DefaultBgColor, "background color of the models")
	fs.StringVar(&f.ExportFile, "export-file", gen.DefaultExportFile, "output file name, without extension")
	fs.StringVar(&f.ExportFormat, "export-format", gen.DefaultExportFormat, "output format (svg, png, pdf, ...)")
	fs.BoolVar(&f.view, "view", false, "open the file after generation")
	fs.StringVar(&f.orm, "orm", "", "import path of the ORM framework package")
	fs.StringVar(&f.orm, "peewee", "", "alias of -orm")
	fs.StringVar(&f.Display, "display", string(gen.DisplayAll), "fields to list: all, relations or none")
	fs.Var(&f.modulesName, "display-modules-name", "qualify models with their module (default: when several modules are given)")
	fs.StringVar(&f.Source, "source", string(gen.SourceGo), "model source: go, ent or atlas")
	fs.StringVar(&f.Dialect, "dialect", gen.DefaultDialect, "SQL dialect of atlas schemas: postgres, mysql or sqlite")
	fs.StringVar(&f.BaseModel, "base-model", gen.DefaultBaseModel, "name of the ORM base model type")
	fs.StringVar(&f.ForeignKey, "foreign-key", gen.DefaultForeignKey, "name of the ORM foreign-key type")
	fs.StringVar(&f.TagKey, "tag-key", gen.DefaultTagKey, "struct tag key of field options")
	fs.StringVar(&f.FieldNames, "field-names", string(gen.FieldNamesDeclared), "field labels: go or column")
	fs.StringVar(&f.config, "config", "", "YAML configuration file (default "+DefaultConfigFile+" if present)")
	fs.StringVar(&f.dotenv, "env-file", ".env", "dotenv file with MODELGRAPH_* variables")
	fs.BoolVar(&f.stdout, "stdout", false, "print the graph description instead of rendering it")
	fs.BoolVar(&f.watch, "watch", false, "regenerate when model files change")
	fs.BoolVar(&f.verbose, "v", false, "enable debug logging")
	return fs
}

// parse parses args, accepting modules before, after or between flags.
func parse(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

// layer returns the flag settings that were given explicitly.
func (f *flags) layer(fs *flag.FlagSet, modules []string) *settings {
	var s settings
	s.Modules = modules
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "main-color":
			s.MainColor = f.MainColor
		case "bg-color":
			s.BgColor = f.BgColor
		case "export-file":
			s.ExportFile = f.ExportFile
		case "export-format":
			s.ExportFormat = f.ExportFormat
		case "view":
			s.View = &f.view
		case "orm", "peewee":
			s.ORM = f.orm
		case "display":
			s.Display = f.Display
		case "display-modules-name":
			s.DisplayModulesName = &f.modulesName.value
		case "source":
			s.Source = f.Source
		case "dialect":
			s.Dialect = f.Dialect
		case "base-model":
			s.BaseModel = f.BaseModel
		case "foreign-key":
			s.ForeignKey = f.ForeignKey
		case "tag-key":
			s.TagKey = f.TagKey
		case "field-names":
			s.FieldNames = f.FieldNames
		}
	})
	return &s
}

// configure builds the configuration from, in increasing precedence, the
// defaults, the configuration file, the environment and the flags.
func configure(f *flags, fs *flag.FlagSet, modules []string, logger *slog.Logger) (*gen.Config, error) {
	path, required := f.config, true
	if path == "" {
		path, required = DefaultConfigFile, false
	}
	s, err := readFile(path, required)
	if err != nil {
		return nil, err
	}
	lookup, err := environ(f.dotenv)
	if err != nil {
		return nil, err
	}
	env, err := readEnv(lookup)
	if err != nil {
		return nil, err
	}
	s.merge(env)
	s.merge(f.layer(fs, modules))
	return gen.NewConfig(append(s.options(), gen.WithLogger(logger))...)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var f flags
	fs := newFlagSet(&f, stderr)
	modules, err := parse(fs, args)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	level := slog.LevelInfo
	if f.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := configure(&f, fs, modules, logger)
	if err != nil {
		return err
	}
	switch {
	case f.stdout:
		doc, _, err := compiler.Build(ctx, cfg)
		if err != nil {
			return err
		}
		_, err = doc.WriteTo(stdout)
		return err
	case f.watch:
		return compiler.Watch(ctx, cfg)
	default:
		_, err := compiler.Generate(ctx, cfg)
		return err
	}
}
