package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortedKeysUTF16(t *testing.T) {
	obj := IRObject{"b": IRInt(1), "a": IRInt(2), "\uE000": IRInt(3), "\U00010000": IRInt(4)}
	assert.Equal(t, []string{"a", "b", "\U00010000", "\uE000"}, obj.SortedKeys())
}

func TestNewIRDecimal(t *testing.T) {
	d, err := NewIRDecimal("9.99")
	require.NoError(t, err)
	f, err := d.Float64()
	require.NoError(t, err)
	assert.InDelta(t, 9.99, f, 1e-9)

	for _, bad := range []string{"", "abc", "01.5", "1.", ".5"} {
		_, err := NewIRDecimal(bad)
		assert.Error(t, err, bad)
	}
}

func TestFromAny(t *testing.T) {
	v, err := FromAny(map[string]any{
		"name":  "March",
		"age":   20,
		"tags":  []any{"a", true},
		"price": json.Number("9.5"),
		"count": json.Number("3"),
		"gone":  nil,
	})
	require.NoError(t, err)

	assert.Equal(t, IRObject{
		"name":  IRString("March"),
		"age":   IRInt(20),
		"tags":  IRArray{IRString("a"), IRBool(true)},
		"price": IRDecimal("9.5"),
		"count": IRInt(3),
		"gone":  IRNull{},
	}, v)

	_, err = FromAny(1.5)
	assert.Error(t, err)
	_, err = FromAny([]any{struct{}{}})
	assert.Error(t, err)
}

func TestUnmarshalIRValue(t *testing.T) {
	v, err := UnmarshalIRValue([]byte(`{"a":[1,2.5,"x"],"b":false}`))
	require.NoError(t, err)
	assert.Equal(t, IRObject{
		"a": IRArray{IRInt(1), IRDecimal("2.5"), IRString("x")},
		"b": IRBool(false),
	}, v)

	_, err = UnmarshalIRValue([]byte(`{`))
	assert.Error(t, err)
}

func TestMarshalIRValue(t *testing.T) {
	b, err := MarshalIRValue(IRObject{"z": IRArray{IRInt(1), IRDecimal("0.5")}, "a": IRNull{}})
	require.NoError(t, err)
	assert.Equal(t, `{"a":null,"z":[1,0.5]}`, string(b))
}

func TestCloneValueIsDeep(t *testing.T) {
	orig := IRArray{IRObject{"k": IRArray{IRInt(1)}}}
	clone := CloneValue(orig).(IRArray)

	clone[0].(IRObject)["k"].(IRArray)[0] = IRInt(99)
	clone[0].(IRObject)["new"] = IRBool(true)

	assert.Equal(t, IRInt(1), orig[0].(IRObject)["k"].(IRArray)[0])
	assert.NotContains(t, orig[0].(IRObject), "new")
	assert.Nil(t, CloneValue(IRArray(nil)))
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in   IRValue
		want string
	}{
		{nil, ""},
		{IRString("March"), "March"},
		{IRInt(20), "20"},
		{IRDecimal("1.5"), "1.5"},
		{IRBool(true), "true"},
		{IRNull{}, "null"},
		{IRArray{IRInt(1), IRString("b")}, "[1, b]"},
		{IRObject{"b": IRInt(2), "a": IRInt(1)}, "{a: 1, b: 2}"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Format(tt.in))
	}
}
