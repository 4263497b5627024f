package load

import (
	"context"
	"os"
	"path/filepath"

	entload "entgo.io/ent/entc/load"
	"github.com/go-openapi/inflect"

	"github.com/syssam/modelgraph"
	"github.com/syssam/modelgraph/schema"
)

// Ent is a ModelSource loading ent schema packages. Module names are
// paths or import paths of schema packages.
//
// Loading an ent schema builds and runs a small program that marshals the
// schema, so it requires the Go toolchain.
type Ent struct {
	// BuildFlags are passed to the build system.
	BuildFlags []string
}

// Load implements ModelSource.
func (e *Ent) Load(ctx context.Context, name string) (*schema.Module, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	loaded, err := (&entload.Config{Path: name, BuildFlags: e.BuildFlags}).Load()
	if err != nil {
		return nil, modelgraph.NewModuleResolutionError(name, "load ent schema", err)
	}
	mod := EntModule(displayName(name, loaded.PkgPath), loaded.Schemas)
	mod.Path = loaded.PkgPath
	if info, err := os.Stat(name); err == nil && info.IsDir() {
		mod.Files, _ = filepath.Glob(filepath.Join(name, "*.go"))
	}
	return mod, nil
}

// EntModule converts loaded ent schemas into a module. Relations are
// drawn from the schema whose table holds the foreign-key column.
func EntModule(name string, schemas []*entload.Schema) *schema.Module {
	mod := &schema.Module{Name: name}
	// Assoc edges referenced by an inverse edge of another schema.
	backRefs := make(map[string]bool)
	for _, s := range schemas {
		for _, e := range s.Edges {
			if e.Inverse && e.RefName != "" {
				backRefs[e.Type+"."+e.RefName] = true
			}
		}
	}
	models := make(map[string]*schema.Model, len(schemas))
	for _, s := range schemas {
		m := entModel(name, s)
		models[s.Name] = m
		mod.Models = append(mod.Models, m)
	}
	for _, s := range schemas {
		for _, e := range entEdges(s) {
			entRelation(name, models, s, e, backRefs[s.Name+"."+e.Name])
		}
	}
	mod.Sort()
	return mod
}

func entModel(module string, s *entload.Schema) *schema.Model {
	m := &schema.Model{Name: s.Name, Module: module}
	if !hasEntField(s, "id") {
		m.Fields = append(m.Fields, &schema.Field{Name: "id", Column: "id", Type: "int", PrimaryKey: true})
	}
	for _, f := range s.Fields {
		typ := "invalid"
		if f.Info != nil {
			typ = f.Info.String()
		}
		column := f.StorageKey
		if column == "" {
			column = f.Name
		}
		m.Fields = append(m.Fields, &schema.Field{
			Name:       f.Name,
			Column:     column,
			Type:       typ,
			PrimaryKey: f.Name == "id",
		})
	}
	return m
}

// entRelation records edge e of schema s on the model whose table holds
// its foreign-key column:
//
//   - unique inverse edges (M2O and the inverse side of O2O) on s;
//   - unique assoc edges of s to itself without a back-reference on s;
//   - assoc edges to another type without a back-reference on the target,
//     as ent adds the "<schema>_<edge>" column there.
//
// Other edges are either drawn from their inverse side or stored in a
// join table.
func entRelation(module string, models map[string]*schema.Model, s *entload.Schema, e *entload.Edge, referenced bool) {
	owner, target := models[s.Name], s.Name
	switch {
	case e.Inverse && e.Unique:
		target = e.Type
	case e.Inverse || e.Ref != nil || referenced:
		return
	case e.Type == s.Name:
		if !e.Unique {
			return
		}
	default:
		if owner = models[e.Type]; owner == nil {
			return
		}
		column := inflect.Underscore(foldAcronyms(s.Name)) + "_" + e.Name
		owner.Fields = append(owner.Fields, &schema.Field{
			Name:   column,
			Column: column,
			Type:   "edge.To",
			Kind:   schema.ForeignKeyField,
			Target: &schema.Ref{Module: module, Name: s.Name},
		})
		return
	}
	ref := &schema.Ref{Module: module, Name: target}
	if e.Field != "" {
		for _, f := range owner.Fields {
			if f.Name == e.Field {
				f.Kind = schema.ForeignKeyField
				f.Target = ref
				return
			}
		}
	}
	typ := "edge.To"
	if e.Inverse {
		typ = "edge.From"
	}
	owner.Fields = append(owner.Fields, &schema.Field{
		Name:   e.Name,
		Column: e.Name,
		Type:   typ,
		Kind:   schema.ForeignKeyField,
		Target: ref,
	})
}

// entEdges returns the edges of s, including inverse edges declared
// inline with edge.To(...).From(...).
func entEdges(s *entload.Schema) []*entload.Edge {
	edges := make([]*entload.Edge, 0, len(s.Edges))
	for _, e := range s.Edges {
		edges = append(edges, e)
		if ref := e.Ref; ref != nil {
			if ref.Type == "" {
				inline := *ref
				inline.Type = e.Type
				ref = &inline
			}
			edges = append(edges, ref)
		}
	}
	return edges
}

func hasEntField(s *entload.Schema, name string) bool {
	for _, f := range s.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}
