package gen

import (
	"bytes"
	"embed"
	"io"
	"regexp"
	"strings"
	"text/template"

	"github.com/syssam/modelgraph/schema"
)

//go:embed template/*.tmpl
var templateDir embed.FS

var (
	funcs     = template.FuncMap{"face": face, "quote": Quote}
	templates = template.Must(template.New("dot").Funcs(funcs).ParseFS(templateDir, "template/*.tmpl"))
)

type (
	// Document is the Graphviz description of a set of modules.
	Document struct {
		// Nodes are the model blocks, in module then model order.
		Nodes []*Node
		// Edges are the relation statements, in the order their
		// fields were declared.
		Edges []*Edge
		// MainColor and BgColor style every node.
		MainColor string
		BgColor   string
	}

	// Node is the table describing one model.
	Node struct {
		// ID is the DOT identifier of the node, quoted if needed.
		ID string
		// Title is the display name of the model.
		Title string
		// Rows are the visible fields.
		Rows []*Row
		// Model is the described model.
		Model *schema.Model

		MainColor string
		BgColor   string
	}

	// Row is one field line of a node.
	Row struct {
		Name string
		Type string
		Bold bool
	}

	// Edge is one foreign-key relation.
	Edge struct {
		From  string
		To    string
		Label string
	}
)

// Builder assembles documents according to a Config.
type Builder struct {
	cfg *Config
}

// NewBuilder returns a Builder for the given configuration.
func NewBuilder(cfg *Config) *Builder {
	return &Builder{cfg: cfg}
}

// Build assembles the document describing all models of the given modules.
// Modules and models are emitted in the order given.
func (b *Builder) Build(modules ...*schema.Module) *Document {
	doc := &Document{
		MainColor: b.cfg.MainColor,
		BgColor:   b.cfg.BgColor,
	}
	qualify := b.cfg.QualifyNames()
	for _, mod := range modules {
		for _, m := range mod.Models {
			node := &Node{
				ID:        NodeID(m.DisplayName(qualify), qualify),
				Title:     m.DisplayName(qualify),
				Model:     m,
				MainColor: b.cfg.MainColor,
				BgColor:   b.cfg.BgColor,
			}
			for _, f := range m.Fields {
				if b.visible(f) {
					node.Rows = append(node.Rows, &Row{
						Name: b.label(f),
						Type: f.Type,
						Bold: f.Emphasized(),
					})
				}
				if f.IsRelation() {
					doc.Edges = append(doc.Edges, &Edge{
						From:  node.ID,
						To:    NodeID(f.Target.DisplayName(qualify), qualify),
						Label: b.label(f),
					})
				}
			}
			doc.Nodes = append(doc.Nodes, node)
		}
	}
	b.cfg.Log().Debug("graph assembled", "nodes", len(doc.Nodes), "edges", len(doc.Edges))
	return doc
}

func (b *Builder) visible(f *schema.Field) bool {
	switch b.cfg.Display {
	case DisplayNone:
		return false
	case DisplayRelations:
		return f.IsRelation()
	default:
		return true
	}
}

func (b *Builder) label(f *schema.Field) string {
	if b.cfg.FieldNames == FieldNamesColumn && f.Column != "" {
		return f.Column
	}
	return f.Name
}

// WriteTo writes the DOT text of the document to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "graph", d); err != nil {
		return 0, err
	}
	return buf.WriteTo(w)
}

// String returns the DOT text of the document.
func (d *Document) String() string {
	var b strings.Builder
	if _, err := d.WriteTo(&b); err != nil {
		panic(err)
	}
	return b.String()
}

// String returns the DOT block of the node.
func (n *Node) String() string {
	return execute("node", n)
}

// String returns the DOT statement of the edge.
func (e *Edge) String() string {
	return execute("edge", e)
}

func execute(name string, data any) string {
	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, name, data); err != nil {
		panic(err)
	}
	return b.String()
}

func face(r *Row) string {
	if r.Bold {
		return "Helvetica Bold"
	}
	return "Helvetica"
}

var plainID = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// NodeID returns the DOT identifier for a display name. Qualified names are
// always quoted; bare names only when they are not plain identifiers or
// collide with a DOT keyword.
func NodeID(name string, qualified bool) string {
	if qualified || !plainID.MatchString(name) {
		return Quote(name)
	}
	switch strings.ToLower(name) {
	case "node", "edge", "graph", "digraph", "subgraph", "strict":
		return Quote(name)
	}
	return name
}

// Quote returns s as a double-quoted DOT string.
func Quote(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}
