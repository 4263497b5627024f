package load_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/modelgraph"
	"github.com/syssam/modelgraph/compiler/load"
	"github.com/syssam/modelgraph/schema"
)

func shopModule() *schema.Module {
	return &schema.Module{
		Name: "shop",
		Models: []*schema.Model{
			{
				Name: "Order",
				Fields: []*schema.Field{
					{Name: "ID", Type: "int64", PrimaryKey: true},
					{Name: "Customer", Type: "ForeignKey[Customer]", Kind: schema.ForeignKeyField, Target: &schema.Ref{Module: "shop", Name: "Customer"}},
				},
			},
			{
				Name:   "Customer",
				Fields: []*schema.Field{{Name: "ID", Type: "int64", PrimaryKey: true}},
			},
		},
	}
}

func TestRegistry(t *testing.T) {
	r := load.NewRegistry(shopModule(), &schema.Module{Name: "billing"})
	assert.Equal(t, []string{"billing", "shop"}, r.Names())

	mod, err := r.Load(context.Background(), "shop")
	require.NoError(t, err)
	require.Len(t, mod.Models, 2)
	assert.Equal(t, "Customer", mod.Models[0].Name)
	assert.Equal(t, "Order", mod.Models[1].Name)
	for _, m := range mod.Models {
		assert.Equal(t, "shop", m.Module)
	}

	_, err = r.Load(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, modelgraph.IsModuleResolutionError(err))
	assert.Contains(t, err.Error(), `"missing"`)
}

func TestRegistryReplace(t *testing.T) {
	r := load.NewRegistry(shopModule())
	r.Register(&schema.Module{Name: "shop"})
	mod, err := r.Load(context.Background(), "shop")
	require.NoError(t, err)
	assert.Empty(t, mod.Models)
}

func TestRegistryTargetModule(t *testing.T) {
	r := load.NewRegistry(&schema.Module{
		Name: "shop",
		Models: []*schema.Model{
			{Name: "Customer", Fields: []*schema.Field{{Name: "ID", PrimaryKey: true}}},
			{Name: "Order", Fields: []*schema.Field{
				{Name: "Customer", Kind: schema.ForeignKeyField, Target: &schema.Ref{Name: "Customer"}},
				{Name: "Carrier", Kind: schema.ForeignKeyField, Target: &schema.Ref{Module: "shipping", Name: "Carrier"}},
			}},
		},
	})
	mod, err := r.Load(context.Background(), "shop")
	require.NoError(t, err)
	order := model(t, mod, "Order")
	assert.Equal(t, &schema.Ref{Module: "shop", Name: "Customer"}, order.Fields[0].Target)
	assert.Equal(t, &schema.Ref{Module: "shipping", Name: "Carrier"}, order.Fields[1].Target)
}

func TestModules(t *testing.T) {
	r := load.NewRegistry(shopModule(), &schema.Module{Name: "empty"})
	mods, err := load.Modules(context.Background(), r, []string{"shop", "empty"}, nil)
	require.NoError(t, err)
	require.Len(t, mods, 2)
	assert.Equal(t, "shop", mods[0].Name)
	assert.Equal(t, "empty", mods[1].Name)

	_, err = load.Modules(context.Background(), r, []string{"shop", "nope"}, nil)
	assert.True(t, modelgraph.IsModuleResolutionError(err))
}

func TestModulesSamePath(t *testing.T) {
	const pkg = "example.com/app/models"
	short := &schema.Module{
		Name: "models",
		Path: pkg,
		Models: []*schema.Model{{
			Name:   "Order",
			Fields: []*schema.Field{{Name: "Customer", Kind: schema.ForeignKeyField, Target: &schema.Ref{Module: pkg, Name: "Customer"}}},
		}},
	}
	long := &schema.Module{
		Name:   pkg,
		Path:   pkg,
		Models: []*schema.Model{{Name: "Order"}},
	}
	users := &schema.Module{
		Name: "users",
		Path: "example.com/app/users",
		Models: []*schema.Model{{
			Name:   "User",
			Fields: []*schema.Field{{Name: "Order", Kind: schema.ForeignKeyField, Target: &schema.Ref{Module: pkg, Name: "Order"}}},
		}},
	}
	r := load.NewRegistry(short, long, users)
	mods, err := load.Modules(context.Background(), r, []string{"models", pkg, "users"}, nil)
	require.NoError(t, err)
	require.Len(t, mods, 2)
	assert.Equal(t, "models", mods[0].Name)
	assert.Equal(t, "users", mods[1].Name)

	order := model(t, mods[0], "Order")
	assert.Equal(t, "models", order.Module)
	assert.Equal(t, &schema.Ref{Module: "models", Name: "Customer"}, order.Fields[0].Target)
	user := model(t, mods[1], "User")
	assert.Equal(t, "users", user.Module)
	assert.Equal(t, &schema.Ref{Module: "models", Name: "Order"}, user.Fields[0].Target)
}

func TestModulesInvalid(t *testing.T) {
	bad := &schema.Module{
		Name: "bad",
		Models: []*schema.Model{{
			Name:   "Dangling",
			Fields: []*schema.Field{{Name: "Owner", Kind: schema.ForeignKeyField}},
		}},
	}
	_, err := load.Modules(context.Background(), load.NewRegistry(bad), []string{"bad"}, nil)
	require.Error(t, err)
	assert.True(t, modelgraph.IsModuleResolutionError(err))
	assert.Contains(t, err.Error(), "invalid model")
}

func TestModulesCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := load.Modules(ctx, load.NewRegistry(shopModule()), []string{"shop"}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

type resolveFailure struct{ load.Registry }

func (resolveFailure) Resolve(context.Context) error {
	return modelgraph.NewModuleResolutionError("orm", "not found", nil)
}

func TestModulesResolveFirst(t *testing.T) {
	_, err := load.Modules(context.Background(), &resolveFailure{}, []string{"shop"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"orm"`)
}
