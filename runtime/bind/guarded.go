package bind

import (
	"fmt"
	"reflect"

	"github.com/conduit-lang/clauses/runtime/guard"
	"github.com/conduit-lang/clauses/runtime/introspect"
)

// NamedArg passes an argument by parameter name
type NamedArg struct {
	Name  string
	Value any
}

// Named wraps value as an argument for the parameter called name.
// Named arguments follow all positional arguments.
func Named(name string, value any) NamedArg {
	return NamedArg{Name: name, Value: value}
}

// Guarded is a function whose arguments are checked by guards before every
// call. It is immutable; WithGuard returns a modified copy.
type Guarded struct {
	sig      *introspect.Signature
	guards   []guard.Guard
	relation *guard.Relation
}

// Name returns the display name of the guarded function
func (g *Guarded) Name() string {
	return g.sig.Name
}

// Signature returns the description of the guarded function
func (g *Guarded) Signature() *introspect.Signature {
	return g.sig
}

// Guards returns the per-parameter guards in parameter order
func (g *Guarded) Guards() []ParamGuard {
	out := make([]ParamGuard, len(g.guards))
	for i, gd := range g.guards {
		out[i] = ParamGuard{Name: g.sig.Params[i].Name, Guard: gd}
	}
	return out
}

// Guard returns the guard of the named parameter
func (g *Guarded) Guard(name string) (guard.Guard, bool) {
	i := g.sig.Index(name)
	if i < 0 {
		return nil, false
	}
	return g.guards[i], true
}

// Relation returns the relation checked before the parameter guards, or nil
func (g *Guarded) Relation() *guard.Relation {
	return g.relation
}

// Unconstrained reports whether every parameter guard is the Wildcard and
// there is no relation
func (g *Guarded) Unconstrained() bool {
	if g.relation != nil {
		return false
	}
	for _, gd := range g.guards {
		if !guard.IsWildcard(gd) {
			return false
		}
	}
	return true
}

// WithGuard returns a copy of g whose guard for the named parameter also
// requires p. A Wildcard guard is replaced by p.
func (g *Guarded) WithGuard(name string, p *guard.Predicate) (*Guarded, error) {
	i := g.sig.Index(name)
	if i < 0 {
		return nil, guard.Definitionf(guard.CodeUnknownParam, "no such parameter").WithTarget(g.Name()).WithParam(name)
	}
	if p == nil {
		return nil, guard.Definitionf(guard.CodeNotAGuard, "guard is nil").WithTarget(g.Name()).WithParam(name)
	}

	merged := &Guarded{
		sig:      g.sig,
		guards:   append([]guard.Guard(nil), g.guards...),
		relation: g.relation,
	}
	switch existing := g.guards[i].(type) {
	case *guard.Predicate:
		merged.guards[i] = existing.And(p)
	default:
		merged.guards[i] = p
	}
	return merged, nil
}

// Invocation is a call whose arguments passed every guard
type Invocation struct {
	target *Guarded
	values []any
	args   []reflect.Value
}

// Args returns the bound arguments by parameter name
func (inv *Invocation) Args() map[string]any {
	return inv.target.boundMap(inv.values)
}

// Invoke forwards the call to the guarded function
func (inv *Invocation) Invoke() (any, error) {
	return inv.target.sig.Call(inv.args)
}

// Prepare binds args to parameters and checks the relation, then every
// parameter guard in order. It returns a *guard.Rejected when the arguments
// cannot be bound or a guard refuses them.
func (g *Guarded) Prepare(args ...any) (*Invocation, error) {
	values, err := g.bindArgs(args)
	if err != nil {
		return nil, err
	}

	if g.relation != nil && !g.relation.Check(g.boundMap(values)) {
		return nil, &guard.Rejected{
			Code:     guard.CodeRelationFailed,
			Function: g.Name(),
			Guard:    g.relation.String(),
		}
	}

	for i, gd := range g.guards {
		if !gd.Check(values[i]) {
			return nil, &guard.Rejected{
				Code:     guard.CodeGuardFailed,
				Function: g.Name(),
				Param:    g.sig.Params[i].Name,
				Guard:    gd.String(),
				Value:    values[i],
			}
		}
	}

	in := make([]reflect.Value, len(values))
	for i, v := range values {
		p := g.sig.Params[i]
		arg, ok := introspect.Assign(v, p.Type)
		if !ok {
			return nil, g.reject("%s=%#v is not assignable to %s", p.Name, v, p.Type)
		}
		in[i] = arg
	}

	return &Invocation{target: g, values: values, args: in}, nil
}

// Call checks args and, when every guard accepts them, calls the function and
// returns its result.
func (g *Guarded) Call(args ...any) (any, error) {
	inv, err := g.Prepare(args...)
	if err != nil {
		return nil, err
	}
	return inv.Invoke()
}

// bindArgs maps positional and named arguments onto the parameters, filling
// omitted ones from their defaults
func (g *Guarded) bindArgs(args []any) ([]any, error) {
	params := g.sig.Params
	values := make([]any, len(params))
	filled := make([]bool, len(params))

	next := 0
	seenNamed := false
	for _, arg := range args {
		if named, ok := arg.(NamedArg); ok {
			seenNamed = true
			i := g.sig.Index(named.Name)
			if i < 0 {
				return nil, g.reject("unexpected argument %q", named.Name)
			}
			if !params[i].Kind.AcceptsName() {
				return nil, g.reject("parameter %q cannot be passed by name", named.Name)
			}
			if filled[i] {
				return nil, g.reject("multiple values for argument %q", named.Name)
			}
			values[i], filled[i] = named.Value, true
			continue
		}

		if seenNamed {
			return nil, g.reject("positional argument follows named arguments")
		}
		for next < len(params) && !params[next].Kind.AcceptsPosition() {
			next++
		}
		if next >= len(params) {
			return nil, g.reject("too many positional arguments: got %d", len(args))
		}
		values[next], filled[next] = arg, true
		next++
	}

	for i, p := range params {
		if filled[i] {
			continue
		}
		if !p.HasDefault {
			return nil, g.reject("missing argument %q", p.Name)
		}
		values[i] = p.Default
	}

	return values, nil
}

func (g *Guarded) boundMap(values []any) map[string]any {
	bound := make(map[string]any, len(values))
	for i, v := range values {
		bound[g.sig.Params[i].Name] = v
	}
	return bound
}

func (g *Guarded) reject(format string, args ...interface{}) *guard.Rejected {
	return &guard.Rejected{
		Code:     guard.CodeBadArguments,
		Function: g.Name(),
		Reason:   fmt.Sprintf(format, args...),
	}
}
