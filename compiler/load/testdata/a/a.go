package a

import (
	"github.com/syssam/modelgraph/compiler/load/testdata/b"
	"github.com/syssam/modelgraph/compiler/load/testdata/orm"
)

type User struct {
	orm.Model
	ID      int64 `orm:"pk"`
	Profile orm.ForeignKey[b.Profile]
}
