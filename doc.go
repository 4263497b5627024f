// Package modelgraph draws the data models of an ORM layer as a Graphviz
// diagram: every model becomes a node listing its fields and every
// foreign-key relation becomes an edge.
//
// The work is a single pass driven by the compiler package:
//
//	cfg, err := gen.NewConfig(
//	    gen.WithModules("example.com/app/models"),
//	    gen.WithORM("example.com/app/orm"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	path, err := compiler.Generate(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Models are discovered by a model source from compiler/load. Go packages are analysed
// statically, so no user code runs; ent schema packages and Atlas HCL
// documents are supported as well.
//
// This package holds the error types shared by all stages:
// [ConfigurationError], [ModuleResolutionError] and [RenderError].
package modelgraph
