package broken

import "github.com/syssam/modelgraph/compiler/load/testdata/orm"

type Dangling struct {
	orm.Model
	Owner Missing
}
