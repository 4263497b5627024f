package load_test

import (
	"testing"

	entload "entgo.io/ent/entc/load"
	"entgo.io/ent/schema/field"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/modelgraph/compiler/load"
	"github.com/syssam/modelgraph/schema"
)

func TestEntModule(t *testing.T) {
	schemas := []*entload.Schema{
		{
			Name: "User",
			Fields: []*entload.Field{
				{Name: "name", Info: &field.TypeInfo{Type: field.TypeString}},
			},
			Edges: []*entload.Edge{
				{Name: "pets", Type: "Pet"},
				{Name: "card", Type: "Card", Unique: true},
			},
		},
		{
			Name: "Pet",
			Fields: []*entload.Field{
				{Name: "owner_id", Info: &field.TypeInfo{Type: field.TypeInt}, StorageKey: "user_pets"},
			},
			Edges: []*entload.Edge{
				{Name: "owner", Type: "User", RefName: "pets", Unique: true, Inverse: true, Field: "owner_id"},
			},
		},
		{
			Name: "Card",
			Fields: []*entload.Field{
				{Name: "id", Info: &field.TypeInfo{Type: field.TypeUUID, Ident: "uuid.UUID"}},
			},
			Edges: []*entload.Edge{
				{Name: "owner", Type: "User", RefName: "card", Unique: true, Inverse: true},
			},
		},
		{
			Name: "Node",
			Edges: []*entload.Edge{
				{Name: "next", Type: "Node", Unique: true},
			},
		},
	}
	mod := load.EntModule("example.com/ent/schema", schemas)
	require.NoError(t, mod.Validate())
	require.Len(t, mod.Models, 4)
	assert.Equal(t, []string{"Card", "Node", "Pet", "User"}, names(mod.Models))

	user := model(t, mod, "User")
	require.NotNil(t, user)
	assert.Equal(t, []string{"id", "name"}, fieldNames(user))
	assert.True(t, user.Fields[0].PrimaryKey)
	assert.Equal(t, "int", user.Fields[0].Type)
	assert.Equal(t, "string", user.Fields[1].Type)
	assert.Empty(t, user.Relations(), "assoc edges referenced by an inverse edge do not hold the key")

	pet := model(t, mod, "Pet")
	require.NotNil(t, pet)
	assert.Equal(t, []string{"id", "owner_id"}, fieldNames(pet))
	owner := pet.Fields[1]
	assert.True(t, owner.IsRelation())
	assert.Equal(t, "user_pets", owner.Column)
	assert.Equal(t, &schema.Ref{Module: "example.com/ent/schema", Name: "User"}, owner.Target)

	card := model(t, mod, "Card")
	require.NotNil(t, card)
	assert.Equal(t, []string{"id", "owner"}, fieldNames(card))
	assert.True(t, card.Fields[0].PrimaryKey)
	assert.Equal(t, "uuid.UUID", card.Fields[0].Type)
	assert.Equal(t, "edge.From", card.Fields[1].Type)
	assert.Equal(t, "User", card.Fields[1].Target.Name)

	node := model(t, mod, "Node")
	require.NotNil(t, node)
	require.Len(t, node.Relations(), 1)
	assert.Equal(t, "edge.To", node.Relations()[0].Type)
	assert.Equal(t, "Node", node.Relations()[0].Target.Name)
}

func TestEntModuleAssocWithoutInverse(t *testing.T) {
	schemas := []*entload.Schema{
		{
			Name: "User",
			Edges: []*entload.Edge{
				{Name: "card", Type: "Card", Unique: true},
				{Name: "pets", Type: "Pet"},
				{Name: "groups", Type: "Group"},
				{Name: "friends", Type: "User"},
			},
		},
		{Name: "Card"},
		{Name: "Pet"},
		{
			Name: "Group",
			Edges: []*entload.Edge{
				{Name: "users", Type: "User", RefName: "groups", Inverse: true},
			},
		},
	}
	mod := load.EntModule("app", schemas)
	require.NoError(t, mod.Validate())
	assert.Empty(t, model(t, mod, "User").Relations())
	assert.Empty(t, model(t, mod, "Group").Relations(), "many-to-many edges use a join table")

	card := model(t, mod, "Card")
	rels := card.Relations()
	require.Len(t, rels, 1)
	assert.Equal(t, "user_card", rels[0].Name)
	assert.Equal(t, "user_card", rels[0].Column)
	assert.Equal(t, "edge.To", rels[0].Type)
	assert.Equal(t, &schema.Ref{Module: "app", Name: "User"}, rels[0].Target)

	pet := model(t, mod, "Pet")
	rels = pet.Relations()
	require.Len(t, rels, 1)
	assert.Equal(t, "user_pets", rels[0].Column)
	assert.Equal(t, &schema.Ref{Module: "app", Name: "User"}, rels[0].Target)
}

func TestEntModuleInlineRef(t *testing.T) {
	schemas := []*entload.Schema{{
		Name: "Node",
		Edges: []*entload.Edge{{
			Name: "children",
			Type: "Node",
			Ref:  &entload.Edge{Name: "parent", Unique: true, Inverse: true},
		}},
	}}
	mod := load.EntModule("tree", schemas)
	node := model(t, mod, "Node")
	require.NotNil(t, node)
	rels := node.Relations()
	require.Len(t, rels, 1)
	assert.Equal(t, "parent", rels[0].Name)
	assert.Equal(t, "Node", rels[0].Target.Name)
}

func names(models []*schema.Model) []string {
	out := make([]string, len(models))
	for i, m := range models {
		out[i] = m.Name
	}
	return out
}

func fieldNames(m *schema.Model) []string {
	out := make([]string, len(m.Fields))
	for i, f := range m.Fields {
		out[i] = f.Name
	}
	return out
}

func model(t *testing.T, mod *schema.Module, name string) *schema.Model {
	t.Helper()
	m, ok := mod.Model(name)
	require.Truef(t, ok, "model %q not found in %s", name, mod.Name)
	return m
}
