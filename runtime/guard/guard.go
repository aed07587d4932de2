package guard

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"github.com/conduit-lang/clauses/runtime/introspect"
)

// Guard is a per-parameter constraint: either Wildcard or a *Predicate.
// The set of implementations is closed.
type Guard interface {
	// Check reports whether v satisfies the guard
	Check(v any) bool
	String() string
	sealed()
}

type wildcard struct{}

// Wildcard accepts every value. It is the default guard of every parameter
// that has no explicit guard.
var Wildcard Guard = wildcard{}

func (wildcard) Check(any) bool { return true }
func (wildcard) String() string { return "_" }
func (wildcard) sealed()        {}

// IsWildcard reports whether g is the Wildcard
func IsWildcard(g Guard) bool {
	_, ok := g.(wildcard)
	return ok
}

// Predicate is an immutable one-argument boolean test
type Predicate struct {
	test func(any) bool
	desc string
}

func (*Predicate) sealed() {}

// New wraps test in a Predicate.
//
// test must be a function taking exactly one non-variadic parameter and
// returning exactly one result; the result is coerced with Truth. Values that
// are not assignable to the parameter type evaluate to false.
func New(test any) (*Predicate, error) {
	switch fn := test.(type) {
	case nil:
		return nil, Definitionf(CodeInvalidTest, "guard test is nil")
	case *Predicate:
		return fn, nil
	case func(any) bool:
		return &Predicate{test: fn, desc: funcName(fn)}, nil
	}

	rv := reflect.ValueOf(test)
	rt := rv.Type()
	if rt.Kind() != reflect.Func {
		return nil, Definitionf(CodeInvalidTest, "guard test has to be a function, got %T", test)
	}
	if rt.NumIn() != 1 || rt.IsVariadic() {
		return nil, Definitionf(CodeInvalidTest, "guard test has to take exactly one non-variadic parameter, got %s", rt)
	}
	if rt.NumOut() != 1 {
		return nil, Definitionf(CodeInvalidTest, "guard test has to return exactly one value, got %s", rt)
	}

	in := rt.In(0)
	return &Predicate{
		test: func(v any) bool {
			arg, ok := introspect.Assign(v, in)
			if !ok {
				return false
			}
			return Truth(rv.Call([]reflect.Value{arg})[0].Interface())
		},
		desc: funcName(test),
	}, nil
}

// MustNew is like New but panics if test is malformed
func MustNew(test any) *Predicate {
	p, err := New(test)
	if err != nil {
		panic(err)
	}
	return p
}

// Check evaluates the predicate against v. Runtime type errors raised by the
// test evaluate to false.
func (p *Predicate) Check(v any) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if !isTypePanic(r) {
				panic(r)
			}
			ok = false
		}
	}()
	return p.test(v)
}

// String returns a readable description of the predicate
func (p *Predicate) String() string {
	if p.desc == "" {
		return "guard"
	}
	return p.desc
}

// Named returns a copy of the predicate carrying the given description
func (p *Predicate) Named(desc string) *Predicate {
	return &Predicate{test: p.test, desc: desc}
}

// Not returns the negation of p
func (p *Predicate) Not() *Predicate {
	return &Predicate{
		test: func(v any) bool { return !p.test(v) },
		desc: "not(" + p.String() + ")",
	}
}

// And returns a predicate accepting values accepted by both p and q.
// q is only evaluated when p accepts.
func (p *Predicate) And(q *Predicate) *Predicate {
	mustOperand(q)
	return &Predicate{
		test: func(v any) bool { return p.test(v) && q.test(v) },
		desc: "and(" + p.String() + ", " + q.String() + ")",
	}
}

// Or returns a predicate accepting values accepted by p or q.
// q is only evaluated when p rejects.
func (p *Predicate) Or(q *Predicate) *Predicate {
	mustOperand(q)
	return &Predicate{
		test: func(v any) bool { return p.test(v) || q.test(v) },
		desc: "or(" + p.String() + ", " + q.String() + ")",
	}
}

// Xor returns a predicate accepting values accepted by exactly one of p and q
func (p *Predicate) Xor(q *Predicate) *Predicate {
	mustOperand(q)
	return &Predicate{
		test: func(v any) bool { return p.test(v) != q.test(v) },
		desc: "xor(" + p.String() + ", " + q.String() + ")",
	}
}

// Op is a binary predicate combinator
type Op int

const (
	OpAnd Op = iota
	OpOr
	OpXor
)

// String returns the combinator name
func (o Op) String() string {
	switch o {
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	case OpXor:
		return "xor"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Combine applies op to operands of unknown type. It returns ErrTypeMismatch
// when either operand is not a *Predicate.
func Combine(op Op, left, right any) (*Predicate, error) {
	p, ok := left.(*Predicate)
	if !ok || p == nil {
		return nil, fmt.Errorf("%w: left operand is %T", ErrTypeMismatch, left)
	}
	q, ok := right.(*Predicate)
	if !ok || q == nil {
		return nil, fmt.Errorf("%w: right operand is %T", ErrTypeMismatch, right)
	}

	switch op {
	case OpAnd:
		return p.And(q), nil
	case OpOr:
		return p.Or(q), nil
	case OpXor:
		return p.Xor(q), nil
	default:
		return nil, fmt.Errorf("unknown combinator %s", op)
	}
}

// AsGuard validates guard metadata of unknown type
func AsGuard(v any) (Guard, error) {
	switch g := v.(type) {
	case wildcard:
		return g, nil
	case *Predicate:
		if g != nil {
			return g, nil
		}
	}
	return nil, Definitionf(CodeNotAGuard, "%T is not a guard", v)
}

func mustOperand(q *Predicate) {
	if q == nil {
		panic(fmt.Errorf("%w: right operand is nil", ErrTypeMismatch))
	}
}

// isTypePanic reports whether a recovered panic value is a Go runtime type
// error: comparing or hashing uncomparable values, or a failed type assertion.
func isTypePanic(r any) bool {
	err, ok := r.(runtime.Error)
	if !ok {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "uncomparable") ||
		strings.Contains(msg, "unhashable") ||
		strings.Contains(msg, "interface conversion")
}

func funcName(fn any) string {
	if name := introspect.FuncName(fn); name != "" {
		return name
	}
	return "guard"
}
