package introspect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeclare(t *testing.T) {
	d := Declare(func(int, int) int { return 0 },
		Named("sum"),
		Names("a", "b"),
		Arg("b").Default(10).Guard("metadata"),
		Arg("a").Kind(Positional),
		Returns("relation"),
	)

	sig, err := Of(d)
	require.NoError(t, err)

	assert.Equal(t, "sum", sig.Name)
	assert.Equal(t, []string{"a", "b"}, sig.Names())
	assert.Equal(t, Positional, sig.Params[0].Kind)
	assert.Equal(t, PositionalOrNamed, sig.Params[1].Kind)

	assert.True(t, sig.Params[1].HasDefault)
	assert.Equal(t, 10, sig.Params[1].Default)
	assert.True(t, sig.Params[1].HasGuard)
	assert.Equal(t, "metadata", sig.Params[1].Guard)
	assert.False(t, sig.Params[0].HasGuard)

	assert.True(t, sig.HasReturn)
	assert.Equal(t, "relation", sig.Return)
	assert.NotNil(t, d.Unwrap())
}

func TestDeclareNamedOnly(t *testing.T) {
	sig, err := Of(Declare(add, Arg("right").Kind(NamedOnly)))
	require.NoError(t, err)

	assert.True(t, sig.HasNamedOnly())
	assert.Equal(t, 1, sig.Positional())
}

func TestDeclareVariadicNamed(t *testing.T) {
	sig, err := Of(Declare(func(name string, opts map[string]any) string { return name },
		Arg("opts").Kind(VariadicNamed),
	))
	require.NoError(t, err)
	assert.True(t, sig.HasVariadic())
}

func TestDeclareErrors(t *testing.T) {
	tests := []struct {
		name string
		fn   any
	}{
		{"nested", Declare(Declare(add))},
		{"not a function", Declare(42)},
		{"name count", Declare(add, Names("a"))},
		{"duplicate names", Declare(add, Names("a", "a"))},
		{"empty name", Declare(add, Names("a", ""))},
		{"unknown parameter", Declare(add, Arg("missing").Default(1))},
		{"variadic redeclared", Declare(describe, Arg("tags").Kind(PositionalOrNamed))},
		{"variadic named not a map", Declare(add, Arg("right").Kind(VariadicNamed))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Of(tt.fn)
			assert.Error(t, err)
		})
	}
}
