package clause

import (
	"sort"

	"github.com/conduit-lang/clauses/runtime/guard"
	"github.com/conduit-lang/clauses/runtime/introspect"
)

// Mode selects how match values become guards
type Mode int

const (
	// ByValue matches arguments equal to the match values
	ByValue Mode = iota
	// ByType matches arguments whose type is the match value
	ByType
)

// String returns the mode name
func (m Mode) String() string {
	if m == ByType {
		return "type"
	}
	return "value"
}

// Pattern holds the match values of a clause.
//
// Values apply to parameters left to right and Named by parameter name.
// guard.Wildcard matches anything. In ByValue mode a *guard.Predicate value is
// used as the guard itself; in ByType mode every other value has to be a type
// marker (a reflect.Type or []reflect.Type). An empty Pattern takes the match
// values from the target's declared defaults.
type Pattern struct {
	Values []any
	Named  map[string]any
}

// Values is shorthand for a Pattern of positional match values
func Values(vs ...any) Pattern {
	return Pattern{Values: vs}
}

func (p Pattern) empty() bool {
	return len(p.Values) == 0 && len(p.Named) == 0
}

// matchGuards turns the pattern, or the target's defaults when the pattern
// is empty, into one guard per parameter
func matchGuards(sig *introspect.Signature, p Pattern, mode Mode) ([]guard.Guard, error) {
	defErr := func(code guard.ErrorCode, format string, args ...interface{}) *guard.DefinitionError {
		return guard.Definitionf(code, format, args...).WithTarget(sig.Name)
	}

	values := make([]any, len(sig.Params))
	set := make([]bool, len(sig.Params))

	if p.empty() {
		for i, param := range sig.Params {
			if param.HasDefault {
				values[i], set[i] = param.Default, true
			}
		}
	} else {
		if sig.HasDefaults() {
			return nil, defErr(guard.CodeMixedPattern, "match values given both as pattern and as defaults")
		}
		if len(p.Values) > len(sig.Params) {
			return nil, defErr(guard.CodeTooManyGuards, "%d match values given but only %d parameters", len(p.Values), len(sig.Params))
		}
		for i, v := range p.Values {
			values[i], set[i] = v, true
		}

		names := make([]string, 0, len(p.Named))
		for name := range p.Named {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			i := sig.Index(name)
			if i < 0 {
				return nil, defErr(guard.CodeUnknownParam, "no such parameter").WithParam(name)
			}
			if set[i] {
				return nil, defErr(guard.CodeConflict, "matched both by position and by name").WithParam(name)
			}
			values[i], set[i] = p.Named[name], true
		}
	}

	guards := make([]guard.Guard, len(sig.Params))
	for i := range guards {
		if !set[i] {
			guards[i] = guard.Wildcard
			continue
		}
		g, err := matchGuard(values[i], mode)
		if err != nil {
			return nil, err.WithTarget(sig.Name).WithParam(sig.Params[i].Name)
		}
		guards[i] = g
	}
	return guards, nil
}

func matchGuard(v any, mode Mode) (guard.Guard, *guard.DefinitionError) {
	if g, ok := v.(guard.Guard); ok && guard.IsWildcard(g) {
		return guard.Wildcard, nil
	}

	if mode == ByType {
		types, ok := guard.TypeMarkers(v)
		if !ok {
			return nil, guard.Definitionf(guard.CodeInvalidPattern, "%#v is not a type marker", v)
		}
		return guard.IsType(types...), nil
	}

	if p, ok := v.(*guard.Predicate); ok && p != nil {
		return p, nil
	}
	return guard.Eq(v), nil
}
