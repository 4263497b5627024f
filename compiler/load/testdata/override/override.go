package override

import "github.com/syssam/modelgraph/compiler/load/testdata/orm"

type Base struct {
	orm.Model
	ID   int32 `orm:"pk"`
	Name string
	Note string
}

type Account struct {
	Base
	ID   int64 `orm:"pk"`
	Note string `orm:"-"`
}
