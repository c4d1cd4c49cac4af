package constraint

// Op is a general constraint operator.
type Op string

const (
	OpEmpty         Op = "empty"
	OpNotEmpty      Op = "notEmpty"
	OpDistinct      Op = "distinct"
	OpEq            Op = "eq"
	OpNe            Op = "ne"
	OpGt            Op = "gt"
	OpGe            Op = "ge"
	OpLt            Op = "lt"
	OpLe            Op = "le"
	OpContains      Op = "contains"
	OpNotContains   Op = "notContains"
	OpStartsWith    Op = "startsWith"
	OpNotStartsWith Op = "notStartsWith"
	OpEndsWith      Op = "endsWith"
	OpNotEndsWith   Op = "notEndsWith"
	OpMatch         Op = "match"
	OpMatchPhrase   Op = "match_phrase"
	OpQueryString   Op = "query_string"
	OpNotMatch      Op = "notMatch"
	OpFuzzyEq       Op = "fuzzyEq"
	OpFuzzyNe       Op = "fuzzyNe"
	OpLike          Op = "like"
	OpInSet         Op = "inSet"
	OpNotInSet      Op = "notInSet"
	OpLikeAny       Op = "likeAny"
	OpInRange       Op = "inRange"
	OpNotInRange    Op = "notInRange"
	OpWithin        Op = "within"
)

// AllOps returns every general operator in declaration order.
func AllOps() []Op {
	return []Op{
		OpEmpty, OpNotEmpty, OpDistinct,
		OpEq, OpNe, OpGt, OpGe, OpLt, OpLe,
		OpContains, OpNotContains, OpStartsWith, OpNotStartsWith, OpEndsWith, OpNotEndsWith,
		OpMatch, OpMatchPhrase, OpQueryString, OpNotMatch, OpFuzzyEq, OpFuzzyNe, OpLike,
		OpInSet, OpNotInSet, OpLikeAny,
		OpInRange, OpNotInRange, OpWithin,
	}
}

// ParseOp resolves an operator name.
func ParseOp(name string) (Op, bool) {
	op := Op(name)
	if op.Arity() == ArityUnknown {
		return "", false
	}
	return op, true
}

// Arity is the operand-count class of an operator.
type Arity int

const (
	ArityUnknown Arity = iota
	NoValue
	SingleValue
	MultiValue
	TwoValue
)

func (a Arity) String() string {
	switch a {
	case NoValue:
		return "no-value"
	case SingleValue:
		return "single-value"
	case MultiValue:
		return "multi-value"
	case TwoValue:
		return "two-value"
	default:
		return "unknown"
	}
}

// Accepts reports whether n operands satisfy the arity class.
func (a Arity) Accepts(n int) bool {
	switch a {
	case NoValue:
		return n == 0
	case SingleValue:
		return n == 1
	case MultiValue:
		return n >= 1
	case TwoValue:
		return n == 2
	default:
		return false
	}
}

// Arity returns the operator's class. Unknown operators report ArityUnknown.
func (op Op) Arity() Arity {
	switch op {
	case OpEmpty, OpNotEmpty, OpDistinct:
		return NoValue
	case OpEq, OpNe, OpGt, OpGe, OpLt, OpLe,
		OpContains, OpNotContains, OpStartsWith, OpNotStartsWith, OpEndsWith, OpNotEndsWith,
		OpMatch, OpMatchPhrase, OpQueryString, OpNotMatch, OpFuzzyEq, OpFuzzyNe, OpLike:
		return SingleValue
	case OpInSet, OpNotInSet, OpLikeAny:
		return MultiValue
	case OpInRange, OpNotInRange, OpWithin:
		return TwoValue
	}
	return ArityUnknown
}

// JoinType governs evaluation granularity of cross-field predicates.
type JoinType string

const (
	// JoinFull evaluates the predicate once against the aggregate of the
	// referenced field.
	JoinFull JoinType = "FULL"
	// JoinForEach evaluates the predicate per element of a multi-valued field.
	JoinForEach JoinType = "FOR_EACH"
)

// DefaultJoin picks FOR_EACH for single-value operators and FULL otherwise.
func DefaultJoin(op Op) JoinType {
	if op.Arity() == SingleValue {
		return JoinForEach
	}
	return JoinFull
}
