package guard

import (
	"fmt"
	"reflect"
	"strings"
)

// Eq accepts values equal to val
func Eq(val any) *Predicate {
	return &Predicate{
		test: func(v any) bool { return equal(v, val) },
		desc: fmt.Sprintf("eq(%#v)", val),
	}
}

// Ne accepts values not equal to val
func Ne(val any) *Predicate {
	return &Predicate{
		test: func(v any) bool { return !equal(v, val) },
		desc: fmt.Sprintf("ne(%#v)", val),
	}
}

// Lt accepts values ordered before val
func Lt(val any) *Predicate {
	return ordered("lt", val, func(c int) bool { return c < 0 })
}

// Le accepts values ordered before or equal to val
func Le(val any) *Predicate {
	return ordered("le", val, func(c int) bool { return c <= 0 })
}

// Gt accepts values ordered after val
func Gt(val any) *Predicate {
	return ordered("gt", val, func(c int) bool { return c > 0 })
}

// Ge accepts values ordered after or equal to val
func Ge(val any) *Predicate {
	return ordered("ge", val, func(c int) bool { return c >= 0 })
}

func ordered(name string, val any, accept func(int) bool) *Predicate {
	return &Predicate{
		test: func(v any) bool {
			c, ok := compare(v, val)
			return ok && accept(c)
		},
		desc: fmt.Sprintf("%s(%#v)", name, val),
	}
}

// Same accepts the very value val: the same pointer, map, slice, func or
// channel, or an equal comparable value of the same type.
func Same(val any) *Predicate {
	return &Predicate{
		test: func(v any) bool { return identical(v, val) },
		desc: fmt.Sprintf("same(%#v)", val),
	}
}

// NotSame is the negation of Same
func NotSame(val any) *Predicate {
	return &Predicate{
		test: func(v any) bool { return !identical(v, val) },
		desc: fmt.Sprintf("notSame(%#v)", val),
	}
}

// IsNil accepts nil and nil pointers, maps, slices, funcs, channels and
// interfaces.
func IsNil() *Predicate {
	return &Predicate{test: isNil, desc: "nil"}
}

// NotNil is the negation of IsNil
func NotNil() *Predicate {
	return &Predicate{test: func(v any) bool { return !isNil(v) }, desc: "notNil"}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface, reflect.UnsafePointer:
		return rv.IsNil()
	}
	return false
}

// IsType accepts values whose dynamic type is one of types. Interface types
// accept every value implementing them.
func IsType(types ...reflect.Type) *Predicate {
	accepted := append([]reflect.Type(nil), types...)
	names := make([]string, len(accepted))
	for i, t := range accepted {
		names[i] = typeName(t)
	}

	return &Predicate{
		test: func(v any) bool {
			if v == nil {
				return false
			}
			vt := reflect.TypeOf(v)
			for _, t := range accepted {
				if t == nil {
					continue
				}
				if t.Kind() == reflect.Interface {
					if vt.Implements(t) {
						return true
					}
					continue
				}
				if vt == t {
					return true
				}
			}
			return false
		},
		desc: "isType(" + strings.Join(names, ", ") + ")",
	}
}

// OfType accepts values of type T, or implementing T when T is an interface
func OfType[T any]() *Predicate {
	return &Predicate{
		test: func(v any) bool {
			_, ok := v.(T)
			return ok
		},
		desc: "isType(" + typeName(reflect.TypeFor[T]()) + ")",
	}
}

// TypeMarkers interprets v as a type marker: a reflect.Type or a slice of
// them.
func TypeMarkers(v any) ([]reflect.Type, bool) {
	switch m := v.(type) {
	case reflect.Type:
		if m == nil {
			return nil, false
		}
		return []reflect.Type{m}, true
	case []reflect.Type:
		if len(m) == 0 {
			return nil, false
		}
		for _, t := range m {
			if t == nil {
				return nil, false
			}
		}
		return m, true
	}
	return nil, false
}

// In accepts members of container: elements of a slice or array, keys of a
// map, or substrings of a string. The container is validated eagerly.
func In(container any) (*Predicate, error) {
	member, err := membership(container)
	if err != nil {
		return nil, err
	}
	return &Predicate{
		test: member,
		desc: fmt.Sprintf("in(%#v)", container),
	}, nil
}

// NotIn accepts values that are not members of container
func NotIn(container any) (*Predicate, error) {
	member, err := membership(container)
	if err != nil {
		return nil, err
	}
	return &Predicate{
		test: func(v any) bool { return !member(v) },
		desc: fmt.Sprintf("notIn(%#v)", container),
	}, nil
}

// MustIn is like In but panics if container does not support membership
func MustIn(container any) *Predicate {
	p, err := In(container)
	if err != nil {
		panic(err)
	}
	return p
}

// MustNotIn is like NotIn but panics if container does not support membership
func MustNotIn(container any) *Predicate {
	p, err := NotIn(container)
	if err != nil {
		panic(err)
	}
	return p
}

func membership(container any) (func(any) bool, error) {
	if container == nil {
		return nil, Definitionf(CodeInvalidContainer, "nil does not support membership tests")
	}

	cv := reflect.ValueOf(container)
	switch cv.Kind() {
	case reflect.Slice, reflect.Array:
		return func(v any) bool {
			for i := 0; i < cv.Len(); i++ {
				if equal(cv.Index(i).Interface(), v) {
					return true
				}
			}
			return false
		}, nil

	case reflect.Map:
		keyType := cv.Type().Key()
		return func(v any) bool {
			if v != nil {
				if kv := reflect.ValueOf(v); kv.Type().AssignableTo(keyType) && kv.Comparable() {
					if cv.MapIndex(kv).IsValid() {
						return true
					}
				}
			}
			iter := cv.MapRange()
			for iter.Next() {
				if equal(iter.Key().Interface(), v) {
					return true
				}
			}
			return false
		}, nil

	case reflect.String:
		s := cv.String()
		return func(v any) bool {
			switch sub := v.(type) {
			case string:
				return strings.Contains(s, sub)
			case rune:
				return strings.ContainsRune(s, sub)
			}
			return false
		}, nil
	}

	return nil, Definitionf(CodeInvalidContainer, "%T does not support membership tests", container)
}

// IsTruthy accepts values for which Truth is true
func IsTruthy() *Predicate {
	return &Predicate{test: Truth, desc: "truthy"}
}

// IsFalsy accepts values for which Truth is false
func IsFalsy() *Predicate {
	return &Predicate{test: func(v any) bool { return !Truth(v) }, desc: "falsy"}
}

// IsIterable accepts values a range loop can iterate other than integers:
// strings, slices, arrays, maps, channels and iterator functions.
func IsIterable() *Predicate {
	return &Predicate{test: iterable, desc: "iterable"}
}

func iterable(v any) bool {
	if v == nil {
		return false
	}
	rt := reflect.TypeOf(v)
	switch rt.Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map, reflect.Chan:
		return true
	case reflect.Func:
		// func(yield func(...) bool)
		if rt.NumIn() != 1 || rt.NumOut() != 0 {
			return false
		}
		yield := rt.In(0)
		return yield.Kind() == reflect.Func &&
			yield.NumIn() <= 2 &&
			yield.NumOut() == 1 &&
			yield.Out(0).Kind() == reflect.Bool
	}
	return false
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
