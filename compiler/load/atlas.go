package load

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	atlas "ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"

	"github.com/syssam/modelgraph"
	"github.com/syssam/modelgraph/schema"
)

// Atlas is a ModelSource reading Atlas HCL schema documents. Module names
// are file paths; the module is named after the file without extension.
// Tables become models and foreign keys become relations.
type Atlas struct {
	// Dialect selects the HCL evaluator: postgres, mysql or sqlite.
	Dialect string
}

// Load implements ModelSource.
func (a *Atlas) Load(ctx context.Context, name string) (*schema.Module, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	buf, err := os.ReadFile(name)
	if err != nil {
		return nil, modelgraph.NewModuleResolutionError(name, "read schema", err)
	}
	var realm atlas.Realm
	if err := a.eval(buf, &realm); err != nil {
		return nil, modelgraph.NewModuleResolutionError(name, "evaluate HCL", err)
	}
	mod := AtlasModule(strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)), &realm)
	mod.Path = filepath.Clean(name)
	mod.Files = []string{name}
	return mod, nil
}

func (a *Atlas) eval(buf []byte, realm *atlas.Realm) error {
	switch a.Dialect {
	case "", "postgres":
		return postgres.EvalHCLBytes(buf, realm, nil)
	case "mysql":
		return mysql.EvalHCLBytes(buf, realm, nil)
	case "sqlite":
		return sqlite.EvalHCLBytes(buf, realm, nil)
	default:
		return fmt.Errorf("unsupported dialect %q", a.Dialect)
	}
}

// AtlasModule converts the tables of a realm into a module. When the realm
// holds several schemas, table names are prefixed by their schema.
func AtlasModule(name string, realm *atlas.Realm) *schema.Module {
	mod := &schema.Module{Name: name}
	multi := len(realm.Schemas) > 1
	for _, s := range realm.Schemas {
		for _, t := range s.Tables {
			mod.Models = append(mod.Models, atlasModel(name, t, multi))
		}
	}
	mod.Sort()
	return mod
}

func atlasModel(module string, t *atlas.Table, multi bool) *schema.Model {
	m := &schema.Model{Name: tableName(t, multi), Module: module}
	pk := make(map[string]bool)
	if t.PrimaryKey != nil {
		for _, part := range t.PrimaryKey.Parts {
			if part.C != nil {
				pk[part.C.Name] = true
			}
		}
	}
	refs := make(map[string]*atlas.Table)
	for _, fk := range t.ForeignKeys {
		for _, c := range fk.Columns {
			if _, ok := refs[c.Name]; !ok && fk.RefTable != nil {
				refs[c.Name] = fk.RefTable
			}
		}
	}
	for _, c := range t.Columns {
		f := &schema.Field{
			Name:       c.Name,
			Column:     c.Name,
			Type:       columnType(c),
			PrimaryKey: pk[c.Name],
		}
		if ref, ok := refs[c.Name]; ok {
			f.Kind = schema.ForeignKeyField
			f.Target = &schema.Ref{Module: module, Name: tableName(ref, multi)}
		}
		m.Fields = append(m.Fields, f)
	}
	return m
}

func tableName(t *atlas.Table, multi bool) string {
	if multi && t.Schema != nil && t.Schema.Name != "" {
		return t.Schema.Name + "." + t.Name
	}
	return t.Name
}

// columnType returns the declared type of a column.
func columnType(c *atlas.Column) string {
	if c.Type == nil {
		return ""
	}
	if c.Type.Raw != "" {
		return c.Type.Raw
	}
	switch t := c.Type.Type.(type) {
	case *atlas.StringType:
		if t.Size > 0 {
			return fmt.Sprintf("%s(%d)", t.T, t.Size)
		}
		return t.T
	case *atlas.IntegerType:
		return t.T
	case *atlas.BoolType:
		return t.T
	case *atlas.TimeType:
		return t.T
	case *atlas.FloatType:
		return t.T
	case *atlas.DecimalType:
		if t.Precision > 0 {
			return fmt.Sprintf("%s(%d,%d)", t.T, t.Precision, t.Scale)
		}
		return t.T
	case *atlas.BinaryType:
		return t.T
	case *atlas.JSONType:
		return t.T
	case *atlas.EnumType:
		return t.T
	case *atlas.UUIDType:
		return t.T
	case *atlas.SpatialType:
		return t.T
	case *atlas.UnsupportedType:
		return t.T
	case nil:
		return ""
	default:
		return fmt.Sprintf("%T", t)
	}
}
