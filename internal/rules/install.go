package rules

import (
	"reflect"

	"github.com/conduit-lang/clauses/runtime/bind"
	"github.com/conduit-lang/clauses/runtime/clause"
	"github.com/conduit-lang/clauses/runtime/introspect"
)

var anyType = reflect.TypeFor[any]()

// Install registers every clause of the rule set with reg, in file order.
// It stops at the first clause the registry refuses.
func (rs *RuleSet) Install(reg *clause.Registry) error {
	for i := range rs.Functions {
		f := &rs.Functions[i]
		scope := reg.Scope(f.Scope)

		for j := range f.Clauses {
			c := &f.Clauses[j]
			if err := install(scope, f, c); err != nil {
				return &Error{File: rs.path, Line: c.Line, Message: f.Name, Err: err}
			}
		}
	}
	return nil
}

func install(scope *clause.Scope, f *FunctionRule, c *ClauseRule) error {
	cc := c.compiled
	var target any = resultFunc(f, c.Result)

	if len(cc.named) > 0 || cc.relation != nil {
		guarded, err := bind.Bind(target, bind.Spec{Named: cc.named, Relation: cc.relation})
		if err != nil {
			return err
		}
		target = guarded
	}

	p := clause.Values(cc.values...)
	var err error
	if cc.byType {
		_, err = scope.DispatchOnType(f.Name, p, target)
	} else {
		_, err = scope.RegisterClause(f.Name, p, target)
	}
	return err
}

// resultFunc builds a function of the declared parameters, each of type any,
// that returns the clause result
func resultFunc(f *FunctionRule, result any) *introspect.Declared {
	in := make([]reflect.Type, len(f.Params))
	for i := range in {
		in[i] = anyType
	}
	params := append([]string(nil), f.Params...)

	fn := reflect.MakeFunc(reflect.FuncOf(in, []reflect.Type{anyType}, false), func(args []reflect.Value) []reflect.Value {
		bound := make(map[string]any, len(args))
		for i, arg := range args {
			bound[params[i]] = arg.Interface()
		}

		out := reflect.New(anyType).Elem()
		if v := expand(result, bound); v != nil {
			out.Set(reflect.ValueOf(v))
		}
		return []reflect.Value{out}
	})

	return introspect.Declare(fn.Interface(), introspect.Named(f.Name), introspect.Names(params...))
}
