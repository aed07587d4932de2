// Package introspect describes the parameters of Go functions: names, kinds,
// default values and attached guard metadata.
//
// Go functions carry neither parameter names nor defaults at run time. Names
// are recovered from the function's source when it is available, and both
// can be declared explicitly with Declare.
package introspect

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

// ErrNotFunc is returned when a value is not a function
var ErrNotFunc = errors.New("not a function")

// Kind classifies how a parameter receives its argument
type Kind int

const (
	// Positional parameters can only be passed by position
	Positional Kind = iota
	// PositionalOrNamed parameters can be passed by position or by name
	PositionalOrNamed
	// NamedOnly parameters can only be passed by name
	NamedOnly
	// VariadicPositional collects the remaining positional arguments
	VariadicPositional
	// VariadicNamed collects the remaining named arguments
	VariadicNamed
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case Positional:
		return "positional"
	case PositionalOrNamed:
		return "positional-or-named"
	case NamedOnly:
		return "named-only"
	case VariadicPositional:
		return "variadic-positional"
	case VariadicNamed:
		return "variadic-named"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Variadic reports whether the kind collects several arguments
func (k Kind) Variadic() bool {
	return k == VariadicPositional || k == VariadicNamed
}

// AcceptsPosition reports whether the parameter can be passed by position
func (k Kind) AcceptsPosition() bool {
	return k == Positional || k == PositionalOrNamed
}

// AcceptsName reports whether the parameter can be passed by name
func (k Kind) AcceptsName() bool {
	return k == PositionalOrNamed || k == NamedOnly
}

// Param describes one parameter
type Param struct {
	Name       string
	Kind       Kind
	Type       reflect.Type
	Default    any
	HasDefault bool
	Guard      any
	HasGuard   bool
}

// Signature describes a function's parameters and its return-position guard
// metadata
type Signature struct {
	Name      string
	Params    []Param
	Return    any
	HasReturn bool

	fn reflect.Value
}

// Of describes fn, which is a Go function or a *Declared function
func Of(fn any) (*Signature, error) {
	if d, ok := fn.(*Declared); ok {
		return d.signature()
	}

	rv := reflect.ValueOf(fn)
	if !rv.IsValid() || rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, fmt.Errorf("%w: %T", ErrNotFunc, fn)
	}

	rt := rv.Type()
	names, err := SourceNames(fn)
	if err != nil {
		names = placeholderNames(rt.NumIn())
	}

	sig := &Signature{
		Name:   FuncName(fn),
		Params: make([]Param, rt.NumIn()),
		fn:     rv,
	}
	for i := range sig.Params {
		sig.Params[i] = Param{
			Name: names[i],
			Kind: PositionalOrNamed,
			Type: rt.In(i),
		}
	}
	if rt.IsVariadic() {
		sig.Params[len(sig.Params)-1].Kind = VariadicPositional
	}

	return sig, nil
}

// Func returns the described function
func (s *Signature) Func() reflect.Value {
	return s.fn
}

// Index returns the position of the named parameter, or -1
func (s *Signature) Index(name string) int {
	for i, p := range s.Params {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// Names returns the parameter names in order
func (s *Signature) Names() []string {
	names := make([]string, len(s.Params))
	for i, p := range s.Params {
		names[i] = p.Name
	}
	return names
}

// Positional counts the parameters that can be passed by position
func (s *Signature) Positional() int {
	n := 0
	for _, p := range s.Params {
		if p.Kind.AcceptsPosition() {
			n++
		}
	}
	return n
}

// HasVariadic reports whether any parameter is variadic
func (s *Signature) HasVariadic() bool {
	for _, p := range s.Params {
		if p.Kind.Variadic() {
			return true
		}
	}
	return false
}

// HasNamedOnly reports whether any parameter is named-only
func (s *Signature) HasNamedOnly() bool {
	for _, p := range s.Params {
		if p.Kind == NamedOnly {
			return true
		}
	}
	return false
}

// HasDefaults reports whether any parameter declares a default value
func (s *Signature) HasDefaults() bool {
	for _, p := range s.Params {
		if p.HasDefault {
			return true
		}
	}
	return false
}

// WithoutDefaults returns a copy of the signature with every default removed
func (s *Signature) WithoutDefaults() *Signature {
	c := *s
	c.Params = make([]Param, len(s.Params))
	copy(c.Params, s.Params)
	for i := range c.Params {
		c.Params[i].Default = nil
		c.Params[i].HasDefault = false
	}
	return &c
}

// Call invokes the function with already converted arguments and normalises
// its results: no result gives nil, a trailing error result is returned as
// the error, a single remaining result is returned as is and several are
// returned as []any.
func (s *Signature) Call(args []reflect.Value) (any, error) {
	return Results(s.fn.Call(args))
}

var errorType = reflect.TypeFor[error]()

// Results normalises the results of a reflective call
func Results(out []reflect.Value) (any, error) {
	var err error
	if n := len(out); n > 0 && out[n-1].Type() == errorType {
		if last := out[n-1]; !last.IsNil() {
			err = last.Interface().(error)
		}
		out = out[:n-1]
	}

	switch len(out) {
	case 0:
		return nil, err
	case 1:
		return out[0].Interface(), err
	default:
		values := make([]any, len(out))
		for i, v := range out {
			values[i] = v.Interface()
		}
		return values, err
	}
}

// Assign converts v to a value of type t for a reflective call. ok is false
// when v is not assignable to t.
func Assign(v any, t reflect.Type) (reflect.Value, bool) {
	if v == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.UnsafePointer:
			return reflect.Zero(t), true
		}
		return reflect.Value{}, false
	}

	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(t) {
		return reflect.Value{}, false
	}
	if t.Kind() == reflect.Interface && rv.Type() != t {
		converted := reflect.New(t).Elem()
		converted.Set(rv)
		return converted, true
	}
	return rv, true
}

// FuncName returns the short runtime name of fn, e.g. "clause.factorial"
func FuncName(fn any) string {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return ""
	}
	f := runtime.FuncForPC(rv.Pointer())
	if f == nil {
		return ""
	}
	name := f.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func placeholderNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("arg%d", i)
	}
	return names
}
