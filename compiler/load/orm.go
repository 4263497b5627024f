package load

import (
	"fmt"
	"go/types"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"

	"github.com/syssam/modelgraph/schema"
)

// ORM identifies the types of an ORM framework package that drive the
// classification of Go declarations.
type ORM struct {
	// Package is the import path of the framework.
	Package string
	// BaseModel names the abstract model type that models embed.
	BaseModel string
	// ForeignKey names the foreign-key field type. When it is generic,
	// its first type argument is the related model.
	ForeignKey string
	// TagKey is the struct tag key holding field options, e.g. `orm:"pk"`.
	TagKey string
}

// is reports whether n is the named framework type.
func (o ORM) is(n *types.Named, name string) bool {
	obj := n.Obj()
	return obj.Pkg() != nil && obj.Pkg().Path() == o.Package && obj.Name() == name
}

// IsBaseModel reports whether n is the framework base model type.
func (o ORM) IsBaseModel(n *types.Named) bool { return o.is(n, o.BaseModel) }

// IsForeignKey reports whether n is, or instantiates, the framework foreign-key type.
func (o ORM) IsForeignKey(n *types.Named) bool { return o.is(n, o.ForeignKey) }

// IsModel reports whether n is a model: a struct type embedding the base
// model, directly or through embedded structs, other than the base itself.
func (o ORM) IsModel(n *types.Named) bool {
	if o.IsBaseModel(n) {
		return false
	}
	st, ok := n.Underlying().(*types.Struct)
	if !ok {
		return false
	}
	return o.embedsBase(st, map[*types.Named]bool{n: true})
}

func (o ORM) embedsBase(st *types.Struct, seen map[*types.Named]bool) bool {
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		if !f.Embedded() {
			continue
		}
		n, ok := deref(f.Type()).(*types.Named)
		if !ok || seen[n] {
			continue
		}
		if o.IsBaseModel(n) {
			return true
		}
		seen[n] = true
		if inner, ok := n.Underlying().(*types.Struct); ok && o.embedsBase(inner, seen) {
			return true
		}
	}
	return false
}

// Classify returns the kind of a field with the given type. For foreign
// keys the related model is returned when the type carries it.
func (o ORM) Classify(t types.Type) (schema.FieldKind, *types.Named) {
	n, ok := deref(t).(*types.Named)
	if !ok {
		return schema.PlainField, nil
	}
	if o.IsForeignKey(n) {
		if args := n.TypeArgs(); args != nil && args.Len() > 0 {
			if target, ok := deref(args.At(0)).(*types.Named); ok {
				return schema.ForeignKeyField, target
			}
		}
		return schema.ForeignKeyField, nil
	}
	if o.IsModel(n) {
		return schema.ForeignKeyField, n
	}
	return schema.PlainField, nil
}

// Fields extracts the fields of a model in declaration order. Embedded
// structs other than the base model are flattened in place.
func (o ORM) Fields(n *types.Named) ([]*schema.Field, error) {
	st, ok := n.Underlying().(*types.Struct)
	if !ok {
		return nil, fmt.Errorf("%s is not a struct", n.Obj().Name())
	}
	x := &extractor{
		orm:   o,
		local: n.Obj().Pkg(),
		seen:  map[*types.Named]bool{n: true},
		index: make(map[string]int),
	}
	if err := x.walk(st, 0); err != nil {
		return nil, fmt.Errorf("model %q: %w", n.Obj().Name(), err)
	}
	fields := make([]*schema.Field, 0, len(x.entries))
	for _, e := range x.entries {
		if e.field != nil {
			fields = append(fields, e.field)
		}
	}
	return fields, nil
}

type extractor struct {
	orm     ORM
	local   *types.Package
	seen    map[*types.Named]bool
	entries []entry
	index   map[string]int
}

// entry is a selectable field name. A nil field marks a name that
// shadows inherited fields without being drawn.
type entry struct {
	depth int
	field *schema.Field
}

// walk collects the fields of st. Fields of embedded structs are at
// depth+1 and follow Go's selector rules: a shallower field shadows a
// deeper one of the same name and takes its position.
func (x *extractor) walk(st *types.Struct, depth int) error {
	for i := 0; i < st.NumFields(); i++ {
		v := st.Field(i)
		opts := parseTag(reflect.StructTag(st.Tag(i)).Get(x.orm.TagKey))
		if opts.skip {
			x.add(v.Name(), nil, depth)
			continue
		}
		if v.Embedded() {
			if n, ok := deref(v.Type()).(*types.Named); ok {
				if x.orm.IsBaseModel(n) || x.seen[n] {
					continue
				}
				if inner, ok := n.Underlying().(*types.Struct); ok {
					x.seen[n] = true
					if err := x.walk(inner, depth+1); err != nil {
						return err
					}
					continue
				}
			}
		}
		if !v.Exported() {
			x.add(v.Name(), nil, depth)
			continue
		}
		f, err := x.field(v, opts)
		if err != nil {
			return err
		}
		x.add(f.Name, f, depth)
	}
	return nil
}

// add records a field. The first of two fields at the same depth wins.
func (x *extractor) add(name string, f *schema.Field, depth int) {
	i, ok := x.index[name]
	switch {
	case !ok:
		x.index[name] = len(x.entries)
		x.entries = append(x.entries, entry{depth: depth, field: f})
	case depth < x.entries[i].depth:
		x.entries[i] = entry{depth: depth, field: f}
	}
}

func (x *extractor) field(v *types.Var, opts tagOptions) (*schema.Field, error) {
	f := &schema.Field{
		Name:       v.Name(),
		Type:       types.TypeString(v.Type(), x.qualifier),
		PrimaryKey: opts.pk,
		Column:     opts.column,
	}
	kind, target := x.orm.Classify(v.Type())
	if opts.ref != "" {
		kind = schema.ForeignKeyField
	}
	f.Kind = kind
	if kind == schema.ForeignKeyField {
		switch {
		case target != nil:
			f.Target = &schema.Ref{Module: target.Obj().Pkg().Path(), Name: target.Obj().Name()}
		case opts.ref != "":
			f.Target = parseRef(opts.ref, x.local.Path())
		default:
			return nil, fmt.Errorf("foreign key %q has no target; use a type argument or the %q tag option", f.Name, "ref")
		}
	}
	if f.Column == "" {
		f.Column = inflect.Underscore(foldAcronyms(f.Name))
		if f.IsRelation() && !strings.HasSuffix(f.Column, "_id") {
			f.Column += "_id"
		}
	}
	return f, nil
}

func (x *extractor) qualifier(p *types.Package) string {
	if p == x.local {
		return ""
	}
	return p.Name()
}

// foldAcronyms lowers the tail of upper-case runs so that acronyms form a
// single word: "UserID" becomes "UserId" and "HTTPServer" "HttpServer".
func foldAcronyms(s string) string {
	r := []rune(s)
	out := make([]rune, len(r))
	for i, c := range r {
		out[i] = c
		if i == 0 || !unicode.IsUpper(c) || !unicode.IsUpper(r[i-1]) {
			continue
		}
		// The last upper-case letter of a run starts the next word.
		if i+1 < len(r) && unicode.IsLower(r[i+1]) {
			continue
		}
		out[i] = unicode.ToLower(c)
	}
	return string(out)
}

// parseRef parses "Name" or "import/path.Name".
func parseRef(s, local string) *schema.Ref {
	if i := strings.LastIndex(s, "."); i > 0 {
		return &schema.Ref{Module: s[:i], Name: s[i+1:]}
	}
	return &schema.Ref{Module: local, Name: s}
}

type tagOptions struct {
	skip   bool
	pk     bool
	column string
	ref    string
}

// parseTag parses the options of a field tag. Options are separated by
// commas or semicolons; values follow a colon: `orm:"pk;column:user_id"`.
func parseTag(tag string) tagOptions {
	var opts tagOptions
	if tag == "-" {
		opts.skip = true
		return opts
	}
	for _, item := range strings.FieldsFunc(tag, func(r rune) bool { return r == ',' || r == ';' }) {
		key, value, _ := strings.Cut(strings.TrimSpace(item), ":")
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "pk", "primary_key", "primarykey":
			opts.pk = true
		case "column":
			opts.column = strings.TrimSpace(value)
		case "ref", "references":
			opts.ref = strings.TrimSpace(value)
		}
	}
	return opts
}

func deref(t types.Type) types.Type {
	for {
		t = types.Unalias(t)
		p, ok := t.(*types.Pointer)
		if !ok {
			return t
		}
		t = p.Elem()
	}
}
