package main

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/syssam/modelgraph"
	"github.com/syssam/modelgraph/compiler/gen"
)

// DefaultConfigFile is read from the working directory when no
// configuration file is given.
const DefaultConfigFile = ".modelgraph.yaml"

// envPrefix prefixes the environment variables overriding settings.
const envPrefix = "MODELGRAPH_"

// settings is one layer of user configuration. Zero values leave the
// setting of the lower layer untouched.
type settings struct {
	Modules            []string `yaml:"modules"`
	Source             string   `yaml:"source"`
	ORM                string   `yaml:"orm"`
	BaseModel          string   `yaml:"base_model"`
	ForeignKey         string   `yaml:"foreign_key"`
	TagKey             string   `yaml:"tag_key"`
	Dialect            string   `yaml:"dialect"`
	MainColor          string   `yaml:"main_color"`
	BgColor            string   `yaml:"bg_color"`
	ExportFile         string   `yaml:"export_file"`
	ExportFormat       string   `yaml:"export_format"`
	View               *bool    `yaml:"view"`
	Display            string   `yaml:"display"`
	DisplayModulesName *bool    `yaml:"display_modules_name"`
	FieldNames         string   `yaml:"field_names"`
	BuildFlags         []string `yaml:"build_flags"`
}

// readFile reads the YAML settings at path. A missing file is an error
// only when required is set.
func readFile(path string, required bool) (*settings, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return &settings{}, nil
		}
		return nil, modelgraph.NewConfigurationError("config", path, err.Error())
	}
	var s settings
	if err := yaml.Unmarshal(buf, &s); err != nil {
		return nil, modelgraph.NewConfigurationError("config", path, err.Error())
	}
	return &s, nil
}

// lookupFunc looks up an environment variable.
type lookupFunc func(key string) (string, bool)

// environ returns a lookup of the process environment falling back to
// the variables of the dotenv file at path, if present.
func environ(path string) (lookupFunc, error) {
	dotenv, err := godotenv.Read(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, modelgraph.NewConfigurationError("env", path, err.Error())
	}
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}, nil
}

// readEnv reads the MODELGRAPH_* settings.
func readEnv(lookup lookupFunc) (*settings, error) {
	var s settings
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	list := func(name string, sep func(rune) bool, dst *[]string) {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = strings.FieldsFunc(v, sep)
		}
	}
	boolean := func(name string, dst **bool) error {
		v, ok := lookup(envPrefix + name)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return modelgraph.NewConfigurationError(envPrefix+name, v, "not a boolean")
		}
		*dst = &b
		return nil
	}
	list("MODULES", func(r rune) bool { return r == ',' }, &s.Modules)
	str("SOURCE", &s.Source)
	str("ORM", &s.ORM)
	str("BASE_MODEL", &s.BaseModel)
	str("FOREIGN_KEY", &s.ForeignKey)
	str("TAG_KEY", &s.TagKey)
	str("DIALECT", &s.Dialect)
	str("MAIN_COLOR", &s.MainColor)
	str("BG_COLOR", &s.BgColor)
	str("EXPORT_FILE", &s.ExportFile)
	str("EXPORT_FORMAT", &s.ExportFormat)
	str("DISPLAY", &s.Display)
	str("FIELD_NAMES", &s.FieldNames)
	list("BUILD_FLAGS", func(r rune) bool { return r == ' ' }, &s.BuildFlags)
	if err := boolean("VIEW", &s.View); err != nil {
		return nil, err
	}
	if err := boolean("DISPLAY_MODULES_NAME", &s.DisplayModulesName); err != nil {
		return nil, err
	}
	return &s, nil
}

// merge overrides s with the non-zero settings of o.
func (s *settings) merge(o *settings) {
	if len(o.Modules) > 0 {
		s.Modules = o.Modules
	}
	for _, p := range []struct{ dst, src *string }{
		{&s.Source, &o.Source},
		{&s.ORM, &o.ORM},
		{&s.BaseModel, &o.BaseModel},
		{&s.ForeignKey, &o.ForeignKey},
		{&s.TagKey, &o.TagKey},
		{&s.Dialect, &o.Dialect},
		{&s.MainColor, &o.MainColor},
		{&s.BgColor, &o.BgColor},
		{&s.ExportFile, &o.ExportFile},
		{&s.ExportFormat, &o.ExportFormat},
		{&s.Display, &o.Display},
		{&s.FieldNames, &o.FieldNames},
	} {
		if *p.src != "" {
			*p.dst = *p.src
		}
	}
	if o.View != nil {
		s.View = o.View
	}
	if o.DisplayModulesName != nil {
		s.DisplayModulesName = o.DisplayModulesName
	}
	if len(o.BuildFlags) > 0 {
		s.BuildFlags = o.BuildFlags
	}
}

// options translates the settings into configuration options. Unset
// settings keep the configuration defaults.
func (s *settings) options() []gen.Option {
	opts := []gen.Option{gen.WithModules(s.Modules...)}
	for _, o := range []struct {
		value string
		opt   func(string) gen.Option
	}{
		{s.Source, gen.WithSource},
		{s.ORM, gen.WithORM},
		{s.BaseModel, gen.WithBaseModel},
		{s.ForeignKey, gen.WithForeignKey},
		{s.TagKey, gen.WithTagKey},
		{s.Dialect, gen.WithDialect},
		{s.MainColor, gen.WithMainColor},
		{s.BgColor, gen.WithBgColor},
		{s.ExportFile, gen.WithExportFile},
		{s.ExportFormat, gen.WithExportFormat},
		{s.Display, gen.WithDisplay},
		{s.FieldNames, gen.WithFieldNames},
	} {
		if o.value != "" {
			opts = append(opts, o.opt(o.value))
		}
	}
	if s.View != nil {
		opts = append(opts, gen.WithView(*s.View))
	}
	if s.DisplayModulesName != nil {
		opts = append(opts, gen.WithDisplayModulesName(*s.DisplayModulesName))
	}
	if len(s.BuildFlags) > 0 {
		opts = append(opts, gen.WithBuildFlags(s.BuildFlags...))
	}
	return opts
}
