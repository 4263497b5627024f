package shop

import (
	"time"

	"github.com/syssam/modelgraph/compiler/load/testdata/orm"
)

// Timestamps is mixed into models.
type Timestamps struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Customer struct {
	orm.Model
	ID    int64  `orm:"pk"`
	Email string `orm:"column:email_address"`
	Timestamps
}

type Order struct {
	orm.Model
	ID       int64 `orm:"primary_key"`
	Total    float64
	Customer orm.ForeignKey[Customer]
	Note     string `orm:"-"`
	internal string
}

type Item struct {
	orm.Model
	ID       int64 `orm:"pk"`
	Order    *Order
	SKU      string
	Supplier orm.Reference `orm:"ref:Customer"`
}

// PriorityOrder inherits the fields of Order.
type PriorityOrder struct {
	Order
	Priority int
}

// Helper is not a model.
type Helper struct {
	Name string
}

// Current is an alias and is skipped.
type Current = Order

// Page is generic and is skipped.
type Page[T any] struct {
	orm.Model
	Items []T
}

const Answer = 42

func NewOrder() *Order { return &Order{internal: "x"} }
