package constraint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ontoql/internal/ir"
)

func TestArityPartitionIsTotalAndDisjoint(t *testing.T) {
	counts := map[Arity]int{}
	for _, op := range AllOps() {
		a := op.Arity()
		require.NotEqual(t, ArityUnknown, a, "operator %q has no arity class", op)
		counts[a]++
	}

	assert.Equal(t, 3, counts[NoValue])
	assert.Equal(t, 19, counts[SingleValue])
	assert.Equal(t, 3, counts[MultiValue])
	assert.Equal(t, 3, counts[TwoValue])
	assert.Len(t, AllOps(), 28)
}

func TestNewChecksArity(t *testing.T) {
	one := ir.IRInt(1)
	tests := []struct {
		name     string
		op       Op
		operands []ir.IRValue
		ok       bool
	}{
		{"empty takes none", OpEmpty, nil, true},
		{"empty rejects one", OpEmpty, []ir.IRValue{one}, false},
		{"eq takes one", OpEq, []ir.IRValue{one}, true},
		{"eq rejects none", OpEq, nil, false},
		{"eq rejects two", OpEq, []ir.IRValue{one, one}, false},
		{"inSet takes one", OpInSet, []ir.IRValue{one}, true},
		{"inSet takes many", OpInSet, []ir.IRValue{one, one, one}, true},
		{"inSet rejects none", OpInSet, nil, false},
		{"inRange takes two", OpInRange, []ir.IRValue{one, ir.IRInt(5)}, true},
		{"inRange rejects one", OpInRange, []ir.IRValue{one}, false},
		{"within rejects three", OpWithin, []ir.IRValue{one, one, one}, false},
		{"unknown operator", Op("between"), []ir.IRValue{one, one}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.op, tt.operands...)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.op, l.Operator())
				assert.Len(t, l.Operands, len(tt.operands))
				return
			}
			require.Error(t, err)
			assert.True(t, IsArity(err))
		})
	}
}

func TestFromExpressionUnpacksArrays(t *testing.T) {
	l, err := FromExpression(OpInRange, ir.IRArray{ir.IRInt(1), ir.IRInt(10)})
	require.NoError(t, err)
	assert.Equal(t, []ir.IRValue{ir.IRInt(1), ir.IRInt(10)}, l.Operands)

	_, err = FromExpression(OpInRange, ir.IRInt(1))
	assert.True(t, IsArity(err))

	l, err = FromExpression(OpNotEmpty, nil)
	require.NoError(t, err)
	assert.Empty(t, l.Operands)
}

func TestParseOp(t *testing.T) {
	op, ok := ParseOp("match_phrase")
	assert.True(t, ok)
	assert.Equal(t, OpMatchPhrase, op)

	_, ok = ParseOp("nope")
	assert.False(t, ok)
}

func TestCountOpToOpIsTotal(t *testing.T) {
	want := map[CountOp]Op{
		CountEq:      OpEq,
		CountNe:      OpNe,
		CountGt:      OpGt,
		CountGe:      OpGe,
		CountLt:      OpLt,
		CountLe:      OpLe,
		CountBetween: OpInRange,
		CountWithin:  OpWithin,
	}
	require.Len(t, AllCountOps(), len(want))
	for _, c := range AllCountOps() {
		assert.NotPanics(t, func() { c.ToOp() })
		assert.Equal(t, want[c], c.ToOp(), "count op %q", c)
	}
	assert.Panics(t, func() { CountOp("approx").ToOp() })
}

func TestDefaultJoin(t *testing.T) {
	assert.Equal(t, JoinForEach, DefaultJoin(OpEq))
	assert.Equal(t, JoinFull, DefaultJoin(OpInSet))
	assert.Equal(t, JoinFull, DefaultJoin(OpInRange))
	assert.Equal(t, JoinFull, DefaultJoin(OpEmpty))

	assert.Equal(t, JoinForEach, NewWhereBy(OpGt, "A", "age").Join)
	assert.Equal(t, JoinFull, NewInnerQuery(OpInSet, nil, "B", "id").Join)
}

func TestCloneIsDeep(t *testing.T) {
	orig := MustNew(OpInSet, ir.IRArray{ir.IRString("a")}, ir.IRString("b"))
	clone := Clone(orig).(Literal)

	clone.Operands[1] = ir.IRString("changed")
	clone.Operands[0].(ir.IRArray)[0] = ir.IRString("changed")

	assert.Equal(t, ir.IRString("b"), orig.Operands[1])
	assert.Equal(t, ir.IRString("a"), orig.Operands[0].(ir.IRArray)[0])

	ou := OptionalUnary{Default: OpEq, Allowed: []Op{OpNe}, Param: NamedParameter{Name: "x"}}
	oc := Clone(ou).(OptionalUnary)
	oc.Allowed[0] = OpGt
	assert.Equal(t, OpNe, ou.Allowed[0])

	assert.Nil(t, Clone(nil))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "-", Describe(nil))
	assert.Equal(t, "notEmpty,", Describe(MustNew(OpNotEmpty)))
	assert.Equal(t, "eq,March", Describe(MustNew(OpEq, ir.IRString("March"))))
	assert.Equal(t, "ge,20", Describe(MustNew(OpGe, ir.IRInt(20))))
	assert.Equal(t, "inSet,[a]", Describe(MustNew(OpInSet, ir.IRString("a"))))
	assert.Equal(t, "inRange,[1, 10]", Describe(MustNew(OpInRange, ir.IRInt(1), ir.IRInt(10))))
	assert.Equal(t, "eq,$val", Describe(Parameterized{Op: OpEq, Param: NamedParameter{Name: DefaultParamName}}))
	assert.Equal(t, "gt,A.age,FOR_EACH", Describe(NewWhereBy(OpGt, "A", "age")))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(nil))
	assert.NoError(t, Validate(MustNew(OpEq, ir.IRInt(1))))
	assert.Error(t, Validate(Literal{Op: OpInRange, Operands: []ir.IRValue{ir.IRInt(1)}}))
	assert.Error(t, Validate(&Literal{Op: OpEmpty, Operands: []ir.IRValue{ir.IRInt(1)}}))
	assert.Error(t, Validate(WhereBy{Op: "bogus"}))
	assert.Error(t, Validate(OptionalUnary{Default: OpEq, Allowed: []Op{"bogus"}}))
}
