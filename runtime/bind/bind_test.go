package bind

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/clauses/runtime/guard"
	"github.com/conduit-lang/clauses/runtime/introspect"
)

func triple(a, b, c int) []int {
	return []int{a, b, c}
}

func between(lo, x, hi int) bool {
	return lo <= x && x <= hi
}

func requireCode(t *testing.T, err error, code guard.ErrorCode) {
	t.Helper()
	var defErr *guard.DefinitionError
	require.True(t, errors.As(err, &defErr), "expected a definition error, got %v", err)
	assert.Equal(t, code, defErr.Code)
}

func rejectedCode(t *testing.T, err error) guard.ErrorCode {
	t.Helper()
	var rej *guard.Rejected
	require.True(t, errors.As(err, &rej), "expected a rejection, got %v", err)
	return rej.Code
}

func TestBindPositional(t *testing.T) {
	g, err := Bind(triple, Guards(guard.Gt(0), guard.Wildcard, guard.Lt(10)))
	require.NoError(t, err)

	out, err := g.Call(1, -5, 9)
	require.NoError(t, err)
	assert.Equal(t, []int{1, -5, 9}, out)

	_, err = g.Call(0, 1, 2)
	assert.ErrorIs(t, err, guard.ErrRejected)
	assert.Equal(t, guard.CodeGuardFailed, rejectedCode(t, err))

	_, err = g.Call(1, 1, 10)
	assert.ErrorIs(t, err, guard.ErrRejected)

	var rej *guard.Rejected
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, "c", rej.Param)
	assert.Equal(t, "lt(10)", rej.Guard)
	assert.Equal(t, 10, rej.Value)
}

func TestBindFewerGuardsThanParams(t *testing.T) {
	g, err := Bind(triple, Guards(guard.Eq(1)))
	require.NoError(t, err)

	guards := g.Guards()
	require.Len(t, guards, 3)
	assert.Equal(t, "a:eq(1)", guards[0].String())
	assert.True(t, guard.IsWildcard(guards[1].Guard))
	assert.True(t, guard.IsWildcard(guards[2].Guard))

	_, err = g.Call(1, "anything", nil)
	// guards pass but the values do not fit the int parameters
	assert.Equal(t, guard.CodeBadArguments, rejectedCode(t, err))
}

func TestBindNamed(t *testing.T) {
	g, err := Bind(triple, Spec{
		Positional: []guard.Guard{guard.Eq(1)},
		Named:      map[string]guard.Guard{"c": guard.Eq(3)},
	})
	require.NoError(t, err)

	out, err := g.Call(1, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, out)

	_, err = g.Call(1, 2, 4)
	assert.ErrorIs(t, err, guard.ErrRejected)

	gd, ok := g.Guard("c")
	require.True(t, ok)
	assert.Equal(t, "eq(3)", gd.String())

	_, ok = g.Guard("z")
	assert.False(t, ok)
}

func TestBindNamedArguments(t *testing.T) {
	g, err := Bind(triple, Guards(guard.Eq(1)))
	require.NoError(t, err)

	out, err := g.Call(1, Named("c", 3), Named("b", 2))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, out)

	out, err = g.Call(Named("a", 1), Named("b", 2), Named("c", 3))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, out)

	tests := []struct {
		name string
		args []any
	}{
		{"unknown name", []any{1, 2, Named("d", 3)}},
		{"duplicate", []any{1, 2, Named("a", 3)}},
		{"positional after named", []any{Named("a", 1), 2, 3}},
		{"missing", []any{1, 2}},
		{"too many", []any{1, 2, 3, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Call(tt.args...)
			assert.Equal(t, guard.CodeBadArguments, rejectedCode(t, err))
		})
	}
}

func TestBindDefinitionErrors(t *testing.T) {
	variadic := func(xs ...int) int { return len(xs) }

	tests := []struct {
		name   string
		target any
		spec   Spec
		code   guard.ErrorCode
	}{
		{"no guards", triple, Spec{}, guard.CodeNoGuards},
		{"too many guards", triple, Guards(guard.Wildcard, guard.Wildcard, guard.Wildcard, guard.Wildcard), guard.CodeTooManyGuards},
		{"unknown named", triple, Spec{Named: map[string]guard.Guard{"z": guard.Eq(1)}}, guard.CodeUnknownParam},
		{"conflict", triple, Spec{
			Positional: []guard.Guard{guard.Eq(1)},
			Named:      map[string]guard.Guard{"a": guard.Eq(2)},
		}, guard.CodeConflict},
		{"nil positional guard", triple, Guards(nil), guard.CodeNotAGuard},
		{"nil named guard", triple, Spec{Named: map[string]guard.Guard{"a": nil}}, guard.CodeNotAGuard},
		{"variadic", variadic, Guards(guard.Wildcard), guard.CodeVariadic},
		{"not a function", 3, Guards(guard.Wildcard), guard.CodeInvalidTarget},
		{"relation with positional", triple, Spec{
			Positional: []guard.Guard{guard.Eq(1)},
			Relation:   guard.MustRelation(func(a, b int) bool { return a < b }, "a", "b"),
		}, guard.CodeRelationMixed},
		{"relation reads unknown parameter", triple,
			Where(guard.MustRelation(func(a, z int) bool { return a < z }, "a", "z")),
			guard.CodeUnknownParam},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Bind(tt.target, tt.spec)
			require.Error(t, err)
			assert.ErrorIs(t, err, guard.ErrDefinition)
			requireCode(t, err, tt.code)
		})
	}
}

func TestBindAlreadyGuarded(t *testing.T) {
	g, err := Bind(triple, Guards(guard.Eq(1)))
	require.NoError(t, err)

	_, err = Bind(g, Guards(guard.Eq(1)))
	requireCode(t, err, guard.CodeAlreadyGuarded)
}

func TestBindDefaults(t *testing.T) {
	target := introspect.Declare(triple, introspect.Arg("c").Default(3))

	g, err := Bind(target, Guards(guard.Wildcard, guard.Wildcard, guard.Gt(0)))
	require.NoError(t, err)

	out, err := g.Call(1, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, out)

	_, err = g.Call(1, 2, -1)
	assert.ErrorIs(t, err, guard.ErrRejected)

	t.Run("default must satisfy its guard", func(t *testing.T) {
		_, err := Bind(target, Guards(guard.Wildcard, guard.Wildcard, guard.Lt(0)))
		requireCode(t, err, guard.CodeDefaultRejected)
	})

	t.Run("default must fit the parameter type", func(t *testing.T) {
		bad := introspect.Declare(triple, introspect.Arg("c").Default("three"))
		_, err := Bind(bad, Guards(guard.Eq(1)))
		requireCode(t, err, guard.CodeDefaultRejected)
	})
}

func TestBindRelation(t *testing.T) {
	g, err := Bind(between, Where(guard.MustRelation(func(lo, hi int) bool { return lo <= hi })))
	require.NoError(t, err)

	out, err := g.Call(1, 5, 10)
	require.NoError(t, err)
	assert.Equal(t, true, out)

	_, err = g.Call(10, 5, 1)
	assert.Equal(t, guard.CodeRelationFailed, rejectedCode(t, err))
	assert.False(t, g.Unconstrained())
}

func TestBindRelationWithNamedGuards(t *testing.T) {
	g, err := Bind(between, Spec{
		Named:    map[string]guard.Guard{"x": guard.Ge(0)},
		Relation: guard.MustRelation(func(lo, hi int) bool { return lo < hi }),
	})
	require.NoError(t, err)

	_, err = g.Call(0, 1, 2)
	require.NoError(t, err)

	// relation is checked before the parameter guards
	_, err = g.Call(2, -1, 0)
	assert.Equal(t, guard.CodeRelationFailed, rejectedCode(t, err))

	_, err = g.Call(0, -1, 2)
	assert.Equal(t, guard.CodeGuardFailed, rejectedCode(t, err))
}

func TestBindDeclaredGuards(t *testing.T) {
	target := introspect.Declare(triple,
		introspect.Arg("a").Guard(guard.Gt(0)),
		introspect.Arg("c").Guard(guard.Wildcard),
		introspect.Returns(guard.MustRelation(func(a, c int) bool { return a < c })),
	)

	g, err := Bind(target, Spec{})
	require.NoError(t, err)

	_, err = g.Call(1, 0, 2)
	require.NoError(t, err)

	_, err = g.Call(-2, 0, 2)
	assert.Equal(t, guard.CodeGuardFailed, rejectedCode(t, err))

	_, err = g.Call(3, 0, 2)
	assert.Equal(t, guard.CodeRelationFailed, rejectedCode(t, err))

	t.Run("explicit spec overrides declared guards", func(t *testing.T) {
		g, err := Bind(target, Guards(guard.Lt(0)))
		require.NoError(t, err)
		_, err = g.Call(-2, 0, 2)
		assert.NoError(t, err)
	})

	t.Run("declared guard must be a guard", func(t *testing.T) {
		bad := introspect.Declare(triple, introspect.Arg("a").Guard(func(int) bool { return true }))
		_, err := Bind(bad, Spec{})
		requireCode(t, err, guard.CodeNotAGuard)
	})

	t.Run("declared return must be a relation", func(t *testing.T) {
		bad := introspect.Declare(triple, introspect.Returns(guard.Eq(1)))
		_, err := Bind(bad, Spec{})
		requireCode(t, err, guard.CodeNotAGuard)
	})
}

func TestBindNamedOnlyParameters(t *testing.T) {
	target := introspect.Declare(triple, introspect.Arg("c").Kind(introspect.NamedOnly))

	_, err := Bind(target, Guards(guard.Eq(1), guard.Eq(2), guard.Eq(3)))
	requireCode(t, err, guard.CodeTooManyGuards)

	g, err := Bind(target, Spec{
		Positional: []guard.Guard{guard.Eq(1), guard.Eq(2)},
		Named:      map[string]guard.Guard{"c": guard.Eq(3)},
	})
	require.NoError(t, err)

	out, err := g.Call(1, 2, Named("c", 3))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, out)

	_, err = g.Call(1, 2, 3)
	assert.Equal(t, guard.CodeBadArguments, rejectedCode(t, err))
}

func TestBindPositionalOnlyParameters(t *testing.T) {
	target := introspect.Declare(triple, introspect.Arg("a").Kind(introspect.Positional))
	g, err := Bind(target, Guards(guard.Eq(1)))
	require.NoError(t, err)

	_, err = g.Call(Named("a", 1), Named("b", 2), Named("c", 3))
	assert.Equal(t, guard.CodeBadArguments, rejectedCode(t, err))
}

func TestWithGuard(t *testing.T) {
	g, err := Bind(triple, Guards(guard.Gt(0)))
	require.NoError(t, err)

	narrowed, err := g.WithGuard("a", guard.Lt(10))
	require.NoError(t, err)

	a, _ := narrowed.Guard("a")
	assert.Equal(t, "and(gt(0), lt(10))", a.String())

	b, err := narrowed.WithGuard("b", guard.Eq(2))
	require.NoError(t, err)
	bg, _ := b.Guard("b")
	assert.Equal(t, "eq(2)", bg.String())

	// the original is unchanged
	orig, _ := g.Guard("a")
	assert.Equal(t, "gt(0)", orig.String())

	_, err = g.WithGuard("z", guard.Eq(1))
	requireCode(t, err, guard.CodeUnknownParam)

	_, err = g.WithGuard("a", nil)
	requireCode(t, err, guard.CodeNotAGuard)
}

func TestPrepare(t *testing.T) {
	g, err := Bind(triple, Guards(guard.Eq(1)))
	require.NoError(t, err)

	inv, err := g.Prepare(1, 2, Named("c", 3))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1, "b": 2, "c": 3}, inv.Args())

	out, err := inv.Invoke()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, out)
}

func TestUnconstrained(t *testing.T) {
	g, err := Bind(triple, Guards(guard.Wildcard))
	require.NoError(t, err)
	assert.True(t, g.Unconstrained())

	g, err = Bind(triple, Guards(guard.Wildcard, guard.IsTruthy()))
	require.NoError(t, err)
	assert.False(t, g.Unconstrained())
}

func TestCallPassesBodyErrors(t *testing.T) {
	boom := errors.New("boom")
	g, err := Bind(introspect.Declare(func(int) error { return boom }, introspect.Names("n")), Guards(guard.Gt(0)))
	require.NoError(t, err)

	_, err = g.Call(1)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, guard.ErrRejected)

	assert.Equal(t, "n", g.Signature().Params[0].Name)
	assert.Nil(t, g.Relation())
}
