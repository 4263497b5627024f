// Package gen assembles the Graphviz description of loaded model modules.
//
// # Configuration
//
// A [Config] is built once with functional options and is read-only
// afterwards:
//
//	cfg, err := gen.NewConfig(
//	    gen.WithModules("example.com/app/a,example.com/app/b"),
//	    gen.WithORM("example.com/app/orm"),
//	    gen.WithDisplay("relations"),
//	)
//
// Module names are deduplicated and sorted. DisplayModulesName is derived
// from the module count unless [WithDisplayModulesName] is given.
//
// # Document
//
// [Builder.Build] turns modules into a [Document]: one HTML-like table node
// per model and one edge per foreign-key field. The DOT text is produced by
// the templates under template/ and is byte-identical for identical input.
//
//	doc := gen.NewBuilder(cfg).Build(modules...)
//	fmt.Print(doc)
package gen
