package b

import "github.com/syssam/modelgraph/compiler/load/testdata/orm"

type Profile struct {
	orm.Model
	ID  int64 `orm:"pk"`
	Bio string
}
