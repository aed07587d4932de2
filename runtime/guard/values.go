package guard

import (
	"reflect"
	"strings"
	"time"
)

var timeType = reflect.TypeOf(time.Time{})

// Truth coerces v to a boolean: nil, false, zero numbers and empty strings,
// slices, arrays, maps and channels are false; nil pointers, funcs and
// interfaces are false; everything else is true.
func Truth(v any) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Complex64, reflect.Complex128:
		return rv.Complex() != 0
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map, reflect.Chan:
		return rv.Len() > 0
	case reflect.Ptr, reflect.Func, reflect.Interface, reflect.UnsafePointer:
		return !rv.IsNil()
	default:
		return true
	}
}

// equal reports value equality: numbers compare numerically across kinds,
// everything else structurally.
func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	if isNumber(av.Kind()) && isNumber(bv.Kind()) {
		c, ok := compareNumbers(av, bv)
		return ok && c == 0
	}
	return reflect.DeepEqual(a, b)
}

// identical reports identity: pointer identity for reference kinds and
// equality of comparable values otherwise.
func identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	if av.Type() != bv.Type() {
		return false
	}

	switch av.Kind() {
	case reflect.Slice:
		return av.Pointer() == bv.Pointer() && av.Len() == bv.Len()
	case reflect.Map, reflect.Func, reflect.Chan, reflect.Ptr, reflect.UnsafePointer:
		return av.Pointer() == bv.Pointer()
	}

	if !av.Comparable() || !bv.Comparable() {
		return false
	}
	return a == b
}

// compare orders a against b. ok is false when the values have no common
// ordering.
func compare(a, b any) (int, bool) {
	if a == nil || b == nil {
		return 0, false
	}
	return compareValues(reflect.ValueOf(a), reflect.ValueOf(b))
}

func compareValues(av, bv reflect.Value) (int, bool) {
	av, aok := unwrap(av)
	bv, bok := unwrap(bv)
	if !aok || !bok {
		return 0, false
	}

	ak, bk := av.Kind(), bv.Kind()
	switch {
	case isNumber(ak) && isNumber(bk):
		return compareNumbers(av, bv)

	case ak == reflect.String && bk == reflect.String:
		return strings.Compare(av.String(), bv.String()), true

	case av.Type() == timeType && bv.Type() == timeType:
		return av.Interface().(time.Time).Compare(bv.Interface().(time.Time)), true

	case isSequence(ak) && isSequence(bk):
		n := av.Len()
		if bv.Len() < n {
			n = bv.Len()
		}
		for i := 0; i < n; i++ {
			c, ok := compareValues(av.Index(i), bv.Index(i))
			if !ok {
				return 0, false
			}
			if c != 0 {
				return c, true
			}
		}
		return compareInts(int64(av.Len()), int64(bv.Len())), true
	}

	return 0, false
}

// unwrap strips interface wrappers, e.g. the elements of a []any
func unwrap(v reflect.Value) (reflect.Value, bool) {
	for v.Kind() == reflect.Interface {
		if v.IsNil() {
			return v, false
		}
		v = v.Elem()
	}
	return v, v.IsValid()
}

func compareNumbers(av, bv reflect.Value) (int, bool) {
	ak, bk := av.Kind(), bv.Kind()

	if isFloat(ak) || isFloat(bk) {
		af, bf := toFloat64(av), toFloat64(bv)
		// NaN is unordered
		if af != af || bf != bf {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}

	switch {
	case isSigned(ak) && isSigned(bk):
		return compareInts(av.Int(), bv.Int()), true
	case isUnsigned(ak) && isUnsigned(bk):
		return compareUints(av.Uint(), bv.Uint()), true
	case isSigned(ak):
		if av.Int() < 0 {
			return -1, true
		}
		return compareUints(uint64(av.Int()), bv.Uint()), true
	default:
		if bv.Int() < 0 {
			return 1, true
		}
		return compareUints(av.Uint(), uint64(bv.Int())), true
	}
}

func compareInts(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareUints(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func toFloat64(v reflect.Value) float64 {
	switch {
	case isSigned(v.Kind()):
		return float64(v.Int())
	case isUnsigned(v.Kind()):
		return float64(v.Uint())
	default:
		return v.Float()
	}
}

func isNumber(k reflect.Kind) bool {
	return isSigned(k) || isUnsigned(k) || isFloat(k)
}

func isSigned(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUnsigned(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func isSequence(k reflect.Kind) bool {
	return k == reflect.Slice || k == reflect.Array
}
