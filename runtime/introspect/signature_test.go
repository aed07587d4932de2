package introspect

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func add(left, right int) int {
	return left + right
}

func describe(name string,
	count int,
	tags ...string,
) string {
	return name
}

func divide(a, b int) (int, error) {
	if b == 0 {
		return 0, errors.New("division by zero")
	}
	return a / b, nil
}

func TestOf(t *testing.T) {
	sig, err := Of(add)
	require.NoError(t, err)

	assert.Equal(t, "introspect.add", sig.Name)
	assert.Equal(t, []string{"left", "right"}, sig.Names())
	assert.Equal(t, reflect.TypeFor[int](), sig.Params[0].Type)
	assert.Equal(t, PositionalOrNamed, sig.Params[0].Kind)
	assert.Equal(t, 2, sig.Positional())
	assert.False(t, sig.HasVariadic())
	assert.False(t, sig.HasDefaults())
	assert.Equal(t, 1, sig.Index("right"))
	assert.Equal(t, -1, sig.Index("missing"))
}

func TestOfVariadic(t *testing.T) {
	sig, err := Of(describe)
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "count", "tags"}, sig.Names())
	assert.Equal(t, VariadicPositional, sig.Params[2].Kind)
	assert.True(t, sig.HasVariadic())
}

func TestOfClosure(t *testing.T) {
	sig, err := Of(func(first string, second []byte) bool { return len(first) == len(second) })
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, sig.Names())
}

func TestOfRejectsNonFunctions(t *testing.T) {
	for _, v := range []any{nil, 1, "fn", (func())(nil)} {
		_, err := Of(v)
		assert.ErrorIs(t, err, ErrNotFunc, "%T", v)
	}
}

func TestSourceNames(t *testing.T) {
	names, err := SourceNames(add)
	require.NoError(t, err)
	assert.Equal(t, []string{"left", "right"}, names)

	// cached lookups return copies
	names[0] = "changed"
	again, err := SourceNames(add)
	require.NoError(t, err)
	assert.Equal(t, []string{"left", "right"}, again)

	_, err = SourceNames(func(int, string) bool { return true })
	assert.ErrorIs(t, err, ErrUnnamed)

	_, err = SourceNames(func(_ int) bool { return true })
	assert.ErrorIs(t, err, ErrUnnamed)

	_, err = SourceNames(3)
	assert.ErrorIs(t, err, ErrNotFunc)
}

func TestOfFallsBackToPlaceholderNames(t *testing.T) {
	sig, err := Of(func(int, string) {})
	require.NoError(t, err)
	assert.Equal(t, []string{"arg0", "arg1"}, sig.Names())
}

func TestWithoutDefaults(t *testing.T) {
	sig, err := Of(Declare(add, Arg("left").Default(1)))
	require.NoError(t, err)
	require.True(t, sig.HasDefaults())

	stripped := sig.WithoutDefaults()
	assert.False(t, stripped.HasDefaults())
	assert.True(t, sig.HasDefaults())
	assert.Equal(t, sig.Names(), stripped.Names())
}

func TestCall(t *testing.T) {
	sig, err := Of(divide)
	require.NoError(t, err)

	out, err := sig.Call([]reflect.Value{reflect.ValueOf(6), reflect.ValueOf(3)})
	require.NoError(t, err)
	assert.Equal(t, 2, out)

	_, err = sig.Call([]reflect.Value{reflect.ValueOf(6), reflect.ValueOf(0)})
	assert.EqualError(t, err, "division by zero")
}

func TestResults(t *testing.T) {
	out, err := Results(nil)
	assert.NoError(t, err)
	assert.Nil(t, out)

	out, err = Results([]reflect.Value{reflect.ValueOf(1), reflect.ValueOf("a")})
	assert.NoError(t, err)
	assert.Equal(t, []any{1, "a"}, out)

	nilErr := reflect.Zero(reflect.TypeFor[error]())
	out, err = Results([]reflect.Value{reflect.ValueOf(true), nilErr})
	assert.NoError(t, err)
	assert.Equal(t, true, out)
}

func TestAssign(t *testing.T) {
	v, ok := Assign(1, reflect.TypeFor[int]())
	require.True(t, ok)
	assert.Equal(t, 1, v.Interface())

	_, ok = Assign(1.0, reflect.TypeFor[int]())
	assert.False(t, ok)

	v, ok = Assign(nil, reflect.TypeFor[[]int]())
	require.True(t, ok)
	assert.True(t, v.IsNil())

	_, ok = Assign(nil, reflect.TypeFor[int]())
	assert.False(t, ok)

	v, ok = Assign(3, reflect.TypeFor[any]())
	require.True(t, ok)
	assert.Equal(t, reflect.Interface, v.Kind())
	assert.Equal(t, 3, v.Interface())
}

func TestKind(t *testing.T) {
	assert.True(t, Positional.AcceptsPosition())
	assert.False(t, Positional.AcceptsName())
	assert.True(t, PositionalOrNamed.AcceptsPosition())
	assert.True(t, PositionalOrNamed.AcceptsName())
	assert.False(t, NamedOnly.AcceptsPosition())
	assert.True(t, NamedOnly.AcceptsName())
	assert.True(t, VariadicNamed.Variadic())
	assert.False(t, NamedOnly.Variadic())
	assert.Equal(t, "named-only", NamedOnly.String())
}
