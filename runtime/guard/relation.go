package guard

import (
	"reflect"
	"strings"

	"github.com/conduit-lang/clauses/runtime/introspect"
)

// Relation is a boolean test over several named parameters of a clause
type Relation struct {
	fn    reflect.Value
	names []string
	types []reflect.Type
	byMap bool
	desc  string
}

// NewRelation wraps test in a Relation.
//
// test must be a non-variadic function returning exactly one value, which is
// coerced with Truth. names names its parameters in order. When names is empty
// and test takes parameters, the names are read from the function's source.
//
// A test of type func(map[string]any) bool receives the named arguments as a
// map; names are then required and may be of any length.
func NewRelation(test any, names ...string) (*Relation, error) {
	if test == nil {
		return nil, Definitionf(CodeInvalidTest, "relation test is nil")
	}

	rv := reflect.ValueOf(test)
	rt := rv.Type()
	if rt.Kind() != reflect.Func {
		return nil, Definitionf(CodeInvalidTest, "relation test has to be a function, got %T", test)
	}
	if rt.IsVariadic() {
		return nil, Definitionf(CodeInvalidTest, "relation test cannot be variadic")
	}
	if rt.NumOut() != 1 {
		return nil, Definitionf(CodeInvalidTest, "relation test has to return exactly one value, got %s", rt)
	}

	r := &Relation{fn: rv, desc: funcName(test)}

	if _, ok := test.(func(map[string]any) bool); ok {
		if len(names) == 0 {
			return nil, Definitionf(CodeInvalidTest, "map relation requires parameter names")
		}
		r.byMap = true
	} else {
		if len(names) == 0 && rt.NumIn() > 0 {
			sourceNames, err := introspect.SourceNames(test)
			if err != nil {
				return nil, Definitionf(CodeInvalidTest, "relation parameter names are required: %v", err)
			}
			names = sourceNames
		}
		if len(names) != rt.NumIn() {
			return nil, Definitionf(CodeInvalidTest, "relation test takes %d parameters but %d names were given", rt.NumIn(), len(names))
		}
		r.types = make([]reflect.Type, rt.NumIn())
		for i := range r.types {
			r.types[i] = rt.In(i)
		}
	}

	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if name == "" || name == "_" {
			return nil, Definitionf(CodeInvalidTest, "relation parameters have to be named")
		}
		if seen[name] {
			return nil, Definitionf(CodeInvalidTest, "duplicate relation parameter %q", name)
		}
		seen[name] = true
	}
	r.names = append([]string(nil), names...)

	return r, nil
}

// MustRelation is like NewRelation but panics if test is malformed
func MustRelation(test any, names ...string) *Relation {
	r, err := NewRelation(test, names...)
	if err != nil {
		panic(err)
	}
	return r
}

// Named returns a copy of the relation carrying the given description
func (r *Relation) Named(desc string) *Relation {
	c := *r
	c.desc = desc
	return &c
}

// RequiredNames returns the parameter names the relation reads, in order
func (r *Relation) RequiredNames() []string {
	return append([]string(nil), r.names...)
}

// Check evaluates the relation against the bound arguments of a call.
// Arguments the relation does not name are ignored. Missing names, values not
// assignable to the test's parameter types, and runtime type errors evaluate
// to false.
func (r *Relation) Check(bound map[string]any) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			if !isTypePanic(rec) {
				panic(rec)
			}
			ok = false
		}
	}()

	if r.byMap {
		filtered := make(map[string]any, len(r.names))
		for _, name := range r.names {
			v, present := bound[name]
			if !present {
				return false
			}
			filtered[name] = v
		}
		return r.fn.Interface().(func(map[string]any) bool)(filtered)
	}

	args := make([]reflect.Value, len(r.names))
	for i, name := range r.names {
		v, present := bound[name]
		if !present {
			return false
		}
		arg, assignable := introspect.Assign(v, r.types[i])
		if !assignable {
			return false
		}
		args[i] = arg
	}
	return Truth(r.fn.Call(args)[0].Interface())
}

// String returns a readable description of the relation
func (r *Relation) String() string {
	return r.desc + "(" + strings.Join(r.names, ", ") + ")"
}
