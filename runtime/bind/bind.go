// Package bind attaches guards to the parameters of a function, producing a
// guarded callable that checks its arguments before forwarding a call.
package bind

import (
	"fmt"
	"sort"

	"github.com/conduit-lang/clauses/runtime/guard"
	"github.com/conduit-lang/clauses/runtime/introspect"
)

// Spec selects the guards of a function.
//
// Positional guards apply to parameters left to right; Named guards apply by
// parameter name. A Relation may be combined with Named guards but not with
// Positional ones. An empty Spec falls back to the guard metadata declared on
// the function (see introspect.Declare).
type Spec struct {
	Positional []guard.Guard
	Named      map[string]guard.Guard
	Relation   *guard.Relation
}

// Guards is shorthand for a Spec of positional guards
func Guards(gs ...guard.Guard) Spec {
	return Spec{Positional: gs}
}

// Where is shorthand for a Spec holding only a relation
func Where(r *guard.Relation) Spec {
	return Spec{Relation: r}
}

func (s Spec) empty() bool {
	return len(s.Positional) == 0 && len(s.Named) == 0 && s.Relation == nil
}

// Bind guards target according to spec.
//
// target is a Go function or an introspect.Declared function. Binding fails
// with a *guard.DefinitionError when target is already guarded or variadic,
// when the spec names unknown parameters, supplies more positional guards than
// target has positional parameters, or guards a parameter both by position and
// by name, when a declared default does not satisfy its own guard, and when no
// guards are given at all.
func Bind(target any, spec Spec) (*Guarded, error) {
	if g, ok := target.(*Guarded); ok {
		return nil, guard.Definitionf(guard.CodeAlreadyGuarded, "function is already guarded").WithTarget(g.Name())
	}

	sig, err := introspect.Of(target)
	if err != nil {
		return nil, guard.Definitionf(guard.CodeInvalidTarget, "cannot guard %T: %v", target, err)
	}

	return BindSignature(sig, spec)
}

// BindSignature is Bind for an already described function
func BindSignature(sig *introspect.Signature, spec Spec) (*Guarded, error) {
	defErr := func(code guard.ErrorCode, format string, args ...interface{}) error {
		return guard.Definitionf(code, format, args...).WithTarget(sig.Name)
	}

	if sig.HasVariadic() {
		return nil, defErr(guard.CodeVariadic, "variadic parameters cannot be guarded")
	}
	if spec.Relation != nil && len(spec.Positional) > 0 {
		return nil, defErr(guard.CodeRelationMixed, "a relation cannot be combined with positional guards")
	}

	if spec.empty() {
		declared, err := declaredSpec(sig)
		if err != nil {
			return nil, err
		}
		spec = declared
	}
	if spec.empty() {
		return nil, defErr(guard.CodeNoGuards, "no guards specified")
	}

	guards := make([]guard.Guard, len(sig.Params))
	for i := range guards {
		guards[i] = guard.Wildcard
	}
	assigned := make(map[string]bool, len(sig.Params))

	if len(spec.Positional) > sig.Positional() {
		return nil, defErr(guard.CodeTooManyGuards, "%d positional guards given but only %d positional parameters", len(spec.Positional), sig.Positional())
	}
	positional := make([]int, 0, len(sig.Params))
	for i, p := range sig.Params {
		if p.Kind.AcceptsPosition() {
			positional = append(positional, i)
		}
	}
	for n, g := range spec.Positional {
		if g == nil {
			return nil, defErr(guard.CodeNotAGuard, "positional guard %d is nil", n)
		}
		i := positional[n]
		guards[i] = g
		assigned[sig.Params[i].Name] = true
	}

	names := make([]string, 0, len(spec.Named))
	for name := range spec.Named {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		i := sig.Index(name)
		if i < 0 {
			return nil, guard.Definitionf(guard.CodeUnknownParam, "no such parameter").WithTarget(sig.Name).WithParam(name)
		}
		if assigned[name] {
			return nil, guard.Definitionf(guard.CodeConflict, "guarded both by position and by name").WithTarget(sig.Name).WithParam(name)
		}
		g := spec.Named[name]
		if g == nil {
			return nil, guard.Definitionf(guard.CodeNotAGuard, "guard is nil").WithTarget(sig.Name).WithParam(name)
		}
		guards[i] = g
		assigned[name] = true
	}

	if spec.Relation != nil {
		for _, name := range spec.Relation.RequiredNames() {
			if sig.Index(name) < 0 {
				return nil, guard.Definitionf(guard.CodeUnknownParam, "relation %s reads an unknown parameter", spec.Relation).WithTarget(sig.Name).WithParam(name)
			}
		}
	}

	for i, p := range sig.Params {
		if !p.HasDefault {
			continue
		}
		if _, ok := introspect.Assign(p.Default, p.Type); !ok {
			return nil, guard.Definitionf(guard.CodeDefaultRejected, "default %#v is not assignable to %s", p.Default, p.Type).WithTarget(sig.Name).WithParam(p.Name)
		}
		if !guards[i].Check(p.Default) {
			return nil, guard.Definitionf(guard.CodeDefaultRejected, "default %#v does not satisfy %s", p.Default, guards[i]).WithTarget(sig.Name).WithParam(p.Name)
		}
	}

	return &Guarded{
		sig:      sig,
		guards:   guards,
		relation: spec.Relation,
	}, nil
}

// Unguarded wraps a function that takes no parameters. Such a function has
// nothing to guard and accepts every call.
func Unguarded(sig *introspect.Signature) (*Guarded, error) {
	if len(sig.Params) > 0 {
		return nil, guard.Definitionf(guard.CodeInvalidTarget, "function takes %d parameters", len(sig.Params)).WithTarget(sig.Name)
	}
	return &Guarded{sig: sig}, nil
}

// declaredSpec builds a Spec from the guard metadata attached to sig
func declaredSpec(sig *introspect.Signature) (Spec, error) {
	var spec Spec
	for _, p := range sig.Params {
		if !p.HasGuard {
			continue
		}
		g, err := guard.AsGuard(p.Guard)
		if err != nil {
			return Spec{}, guard.Definitionf(guard.CodeNotAGuard, "declared guard: %v", err).WithTarget(sig.Name).WithParam(p.Name)
		}
		if spec.Named == nil {
			spec.Named = make(map[string]guard.Guard)
		}
		spec.Named[p.Name] = g
	}

	if sig.HasReturn {
		r, ok := sig.Return.(*guard.Relation)
		if !ok || r == nil {
			return Spec{}, guard.Definitionf(guard.CodeNotAGuard, "return metadata %T is not a relation", sig.Return).WithTarget(sig.Name)
		}
		spec.Relation = r
	}

	return spec, nil
}

// ParamGuard pairs a parameter name with its guard
type ParamGuard struct {
	Name  string
	Guard guard.Guard
}

// String renders the pair as name:guard
func (pg ParamGuard) String() string {
	return fmt.Sprintf("%s:%s", pg.Name, pg.Guard)
}
