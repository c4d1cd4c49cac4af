package constraint

import "fmt"

// CountOp is a cardinality operator ("exactly N matches").
type CountOp string

const (
	CountEq      CountOp = "eq"
	CountNe      CountOp = "ne"
	CountGt      CountOp = "gt"
	CountGe      CountOp = "ge"
	CountLt      CountOp = "lt"
	CountLe      CountOp = "le"
	CountBetween CountOp = "between"
	CountWithin  CountOp = "within"
)

// AllCountOps returns every count operator.
func AllCountOps() []CountOp {
	return []CountOp{CountEq, CountNe, CountGt, CountGe, CountLt, CountLe, CountBetween, CountWithin}
}

// ToOp maps a count operator onto the general operator set.
// Every CountOp has a case; an unmapped value is a programming error.
func (c CountOp) ToOp() Op {
	switch c {
	case CountEq:
		return OpEq
	case CountNe:
		return OpNe
	case CountGt:
		return OpGt
	case CountGe:
		return OpGe
	case CountLt:
		return OpLt
	case CountLe:
		return OpLe
	case CountBetween:
		return OpInRange
	case CountWithin:
		return OpWithin
	}
	panic(fmt.Sprintf("constraint: unmapped count operator %q", string(c)))
}
