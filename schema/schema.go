package schema

import (
	"fmt"
	"sort"
)

// FieldKind classifies a model field.
type FieldKind uint8

// The closed set of field kinds understood by the graph builder.
const (
	PlainField FieldKind = iota
	ForeignKeyField
)

// String returns the kind name.
func (k FieldKind) String() string {
	switch k {
	case PlainField:
		return "PlainField"
	case ForeignKeyField:
		return "ForeignKeyField"
	default:
		return fmt.Sprintf("FieldKind(%d)", uint8(k))
	}
}

// Ref references a model by its module and declared name.
type Ref struct {
	Module string
	Name   string
}

// DisplayName returns the bare model name, or "<module>.<name>" when qualify is set.
func (r Ref) DisplayName(qualify bool) string {
	if !qualify || r.Module == "" {
		return r.Name
	}
	return r.Module + "." + r.Name
}

// String implements fmt.Stringer.
func (r Ref) String() string { return r.DisplayName(true) }

// Field describes one declared field of a model.
type Field struct {
	// Name is the declared field name.
	Name string
	// Column is the storage name of the field. It may equal Name.
	Column string
	// Type is the declared type name as written in the source.
	Type string
	// Kind tells plain fields and foreign keys apart.
	Kind FieldKind
	// PrimaryKey is read from the field's own declaration.
	PrimaryKey bool
	// Target is the related model. Set iff Kind is ForeignKeyField.
	Target *Ref
}

// IsRelation reports whether the field is a foreign-key field.
func (f *Field) IsRelation() bool { return f.Kind == ForeignKeyField }

// Emphasized reports whether the field is drawn in bold.
func (f *Field) Emphasized() bool { return f.PrimaryKey || f.IsRelation() }

// Model describes one discovered entity type.
type Model struct {
	Name   string
	Module string
	// Fields are kept in declaration order.
	Fields []*Field
}

// Ref returns a reference to the model.
func (m *Model) Ref() Ref { return Ref{Module: m.Module, Name: m.Name} }

// DisplayName returns the model name, qualified by its module if requested.
func (m *Model) DisplayName(qualify bool) string { return m.Ref().DisplayName(qualify) }

// Relations returns the foreign-key fields of the model in declaration order.
func (m *Model) Relations() []*Field {
	var fields []*Field
	for _, f := range m.Fields {
		if f.IsRelation() {
			fields = append(fields, f)
		}
	}
	return fields
}

// Validate checks that field names are unique and that every
// foreign-key field names its target.
func (m *Model) Validate() error {
	seen := make(map[string]struct{}, len(m.Fields))
	for _, f := range m.Fields {
		if f.Name == "" {
			return fmt.Errorf("model %q: field with empty name", m.Name)
		}
		if _, ok := seen[f.Name]; ok {
			return fmt.Errorf("model %q: duplicate field %q", m.Name, f.Name)
		}
		seen[f.Name] = struct{}{}
		if f.IsRelation() && (f.Target == nil || f.Target.Name == "") {
			return fmt.Errorf("model %q: foreign key %q has no target", m.Name, f.Name)
		}
	}
	return nil
}

// Module is a named, loaded collection of models.
type Module struct {
	// Name identifies the module for loading and display qualification.
	Name string
	// Path is the canonical location of the module, such as a package
	// import path. Names resolving to the same path are one module.
	Path string
	// Files backing the module. Used to watch for changes.
	Files []string
	// Models sorted by name.
	Models []*Model
}

// Model returns the model with the given name.
func (m *Module) Model(name string) (*Model, bool) {
	i := sort.Search(len(m.Models), func(i int) bool { return m.Models[i].Name >= name })
	if i < len(m.Models) && m.Models[i].Name == name {
		return m.Models[i], true
	}
	return nil, false
}

// Sort orders the models of the module by name.
func (m *Module) Sort() {
	sort.SliceStable(m.Models, func(i, j int) bool {
		return m.Models[i].Name < m.Models[j].Name
	})
}

// Validate validates all models of the module.
func (m *Module) Validate() error {
	for _, model := range m.Models {
		if err := model.Validate(); err != nil {
			return err
		}
	}
	return nil
}
