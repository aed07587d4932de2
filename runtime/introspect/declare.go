package introspect

import (
	"fmt"
	"reflect"
)

// Declared is a Go function with explicit parameter metadata
type Declared struct {
	fn        any
	name      string
	names     []string
	args      []*ArgDecl
	ret       any
	hasReturn bool
}

// Option configures a Declared function
type Option interface {
	apply(d *Declared)
}

type optionFunc func(d *Declared)

func (f optionFunc) apply(d *Declared) { f(d) }

// Declare attaches parameter metadata to fn
func Declare(fn any, opts ...Option) *Declared {
	d := &Declared{fn: fn}
	for _, opt := range opts {
		opt.apply(d)
	}
	return d
}

// Names sets the parameter names in order
func Names(names ...string) Option {
	return optionFunc(func(d *Declared) {
		d.names = append([]string(nil), names...)
	})
}

// Named sets the display name of the function
func Named(name string) Option {
	return optionFunc(func(d *Declared) {
		d.name = name
	})
}

// Returns attaches return-position guard metadata, usually a relation over
// the parameters
func Returns(meta any) Option {
	return optionFunc(func(d *Declared) {
		d.ret = meta
		d.hasReturn = true
	})
}

// ArgDecl declares metadata for one parameter
type ArgDecl struct {
	name       string
	kind       Kind
	hasKind    bool
	def        any
	hasDefault bool
	guard      any
	hasGuard   bool
}

// Arg starts a declaration for the named parameter
func Arg(name string) *ArgDecl {
	return &ArgDecl{name: name}
}

// Default sets the parameter's default value
func (a *ArgDecl) Default(v any) *ArgDecl {
	a.def = v
	a.hasDefault = true
	return a
}

// Guard attaches guard metadata to the parameter
func (a *ArgDecl) Guard(g any) *ArgDecl {
	a.guard = g
	a.hasGuard = true
	return a
}

// Kind overrides the parameter's kind
func (a *ArgDecl) Kind(k Kind) *ArgDecl {
	a.kind = k
	a.hasKind = true
	return a
}

func (a *ArgDecl) apply(d *Declared) {
	d.args = append(d.args, a)
}

// Unwrap returns the underlying function
func (d *Declared) Unwrap() any {
	return d.fn
}

func (d *Declared) signature() (*Signature, error) {
	if _, nested := d.fn.(*Declared); nested {
		return nil, fmt.Errorf("declared function wraps another declared function")
	}

	sig, err := Of(d.fn)
	if err != nil {
		return nil, err
	}
	if d.name != "" {
		sig.Name = d.name
	}

	if d.names != nil {
		if len(d.names) != len(sig.Params) {
			return nil, fmt.Errorf("%s takes %d parameters but %d names were declared", sig.Name, len(sig.Params), len(d.names))
		}
		seen := make(map[string]bool, len(d.names))
		for i, name := range d.names {
			if name == "" {
				return nil, fmt.Errorf("%s: parameter %d has an empty name", sig.Name, i)
			}
			if seen[name] {
				return nil, fmt.Errorf("%s: duplicate parameter name %q", sig.Name, name)
			}
			seen[name] = true
			sig.Params[i].Name = name
		}
	}

	goVariadic := sig.fn.Type().IsVariadic()
	for _, a := range d.args {
		i := sig.Index(a.name)
		if i < 0 {
			return nil, fmt.Errorf("%s has no parameter %q", sig.Name, a.name)
		}
		p := &sig.Params[i]

		if a.hasKind {
			if goVariadic && i == len(sig.Params)-1 && a.kind != VariadicPositional {
				return nil, fmt.Errorf("%s: parameter %q is variadic in Go and cannot be declared %s", sig.Name, a.name, a.kind)
			}
			if a.kind == VariadicNamed && p.Type.Kind() != reflect.Map {
				return nil, fmt.Errorf("%s: variadic-named parameter %q has to be a map, got %s", sig.Name, a.name, p.Type)
			}
			p.Kind = a.kind
		}
		if a.hasDefault {
			p.Default = a.def
			p.HasDefault = true
		}
		if a.hasGuard {
			p.Guard = a.guard
			p.HasGuard = true
		}
	}

	if d.hasReturn {
		sig.Return = d.ret
		sig.HasReturn = true
	}

	return sig, nil
}
