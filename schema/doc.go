// Package schema holds the source-independent description of the models
// drawn by modelgraph.
//
// A [Module] is a loaded collection of [Model] values. Each model keeps its
// [Field] list in declaration order, and every field is either a
// [PlainField] or a [ForeignKeyField] pointing at another model through a
// [Ref]:
//
//	user := &schema.Model{
//	    Name:   "User",
//	    Module: "a",
//	    Fields: []*schema.Field{
//	        {Name: "id", Type: "int", PrimaryKey: true},
//	        {Name: "profile", Type: "ForeignKey", Kind: schema.ForeignKeyField,
//	            Target: &schema.Ref{Module: "b", Name: "Profile"}},
//	    },
//	}
//
// Values in this package are produced by the loaders in compiler/load and
// are read-only afterwards.
package schema
