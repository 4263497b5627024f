// Package orm is a minimal ORM framework used by the loader tests.
package orm

// Model is the base type embedded by all models.
type Model struct {
	table string
}

// ForeignKey references a row of the model T.
type ForeignKey[T any] struct {
	ID  int64
	ref *T
}

// Reference holds a key whose target is named by a struct tag.
type Reference struct {
	ID int64
}
