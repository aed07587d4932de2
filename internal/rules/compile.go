package rules

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/conduit-lang/clauses/runtime/guard"
)

const wildcardToken = "_"

// compiledClause holds the guards of a clause ready for registration
type compiledClause struct {
	named    map[string]guard.Guard
	relation *guard.Relation
	values   []any
	byType   bool
}

func compileClause(f *FunctionRule, c *ClauseRule) (*compiledClause, error) {
	if len(c.Values) > 0 && len(c.Types) > 0 {
		return nil, errorAt(c.Line, "%s: a clause takes either values or types", f.Name)
	}
	if n := len(c.Values) + len(c.Types); n > len(f.Params) {
		return nil, errorAt(c.Line, "%s: %d match values given but only %d parameters", f.Name, n, len(f.Params))
	}

	cc := &compiledClause{byType: len(c.Types) > 0}

	names := make([]string, 0, len(c.Guards))
	for name := range c.Guards {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		node := c.Guards[name]
		if !hasParam(f, name) {
			return nil, errorAt(node.Line, "%s: guard on unknown parameter %q", f.Name, name)
		}
		g, err := compileGuard(&node)
		if err != nil {
			return nil, err
		}
		if guard.IsWildcard(g) {
			continue
		}
		if cc.named == nil {
			cc.named = make(map[string]guard.Guard)
		}
		cc.named[name] = g
	}

	for i := range c.Values {
		v, err := compileValue(&c.Values[i])
		if err != nil {
			return nil, err
		}
		cc.values = append(cc.values, v)
	}
	for i := range c.Types {
		v, err := compileTypes(&c.Types[i])
		if err != nil {
			return nil, err
		}
		cc.values = append(cc.values, v)
	}

	if !c.Where.IsZero() {
		r, err := compileWhere(f, &c.Where)
		if err != nil {
			return nil, err
		}
		cc.relation = r
	}

	return cc, nil
}

func hasParam(f *FunctionRule, name string) bool {
	for _, p := range f.Params {
		if p == name {
			return true
		}
	}
	return false
}

// compileGuard turns a guard expression into a guard. A scalar is an
// equality test, "_" is the wildcard, and a mapping holds exactly one
// operator.
func compileGuard(node *yaml.Node) (guard.Guard, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Value == wildcardToken && node.ShortTag() == "!!str" {
			return guard.Wildcard, nil
		}
		v, err := decode(node)
		if err != nil {
			return nil, err
		}
		return guard.Eq(v), nil

	case yaml.MappingNode:
		p, err := compileOperator(node)
		if err != nil {
			return nil, err
		}
		return p, nil
	}

	return nil, errorAt(node.Line, "guard has to be a value or an operator mapping")
}

func compilePredicate(node *yaml.Node) (*guard.Predicate, error) {
	g, err := compileGuard(node)
	if err != nil {
		return nil, err
	}
	p, ok := g.(*guard.Predicate)
	if !ok {
		return nil, errorAt(node.Line, "wildcard cannot be combined")
	}
	return p, nil
}

func compileOperator(node *yaml.Node) (*guard.Predicate, error) {
	if len(node.Content) != 2 {
		return nil, errorAt(node.Line, "guard operator mapping has to hold exactly one operator")
	}
	key, arg := node.Content[0], node.Content[1]
	op := key.Value

	switch op {
	case "eq", "ne", "lt", "le", "gt", "ge", "is":
		v, err := decode(arg)
		if err != nil {
			return nil, err
		}
		return comparison(op, v), nil

	case "in", "not_in":
		v, err := decode(arg)
		if err != nil {
			return nil, err
		}
		var p *guard.Predicate
		if op == "in" {
			p, err = guard.In(v)
		} else {
			p, err = guard.NotIn(v)
		}
		if err != nil {
			return nil, &Error{Line: arg.Line, Message: op, Err: err}
		}
		return p, nil

	case "type":
		types, err := typeMarkers(arg)
		if err != nil {
			return nil, err
		}
		return guard.IsType(types...), nil

	case "truthy", "falsy", "iterable", "nil", "not_nil":
		var on bool
		if err := arg.Decode(&on); err != nil {
			return nil, errorAt(arg.Line, "%s takes true or false", op)
		}
		p := flag(op)
		if !on {
			p = p.Not()
		}
		return p, nil

	case "not":
		p, err := compilePredicate(arg)
		if err != nil {
			return nil, err
		}
		return p.Not(), nil

	case "all", "any", "xor":
		return compileCombinator(op, arg)
	}

	return nil, errorAt(key.Line, "unknown guard operator %q", op)
}

func comparison(op string, v any) *guard.Predicate {
	switch op {
	case "eq":
		return guard.Eq(v)
	case "ne":
		return guard.Ne(v)
	case "lt":
		return guard.Lt(v)
	case "le":
		return guard.Le(v)
	case "gt":
		return guard.Gt(v)
	case "ge":
		return guard.Ge(v)
	default:
		return guard.Same(v)
	}
}

func flag(op string) *guard.Predicate {
	switch op {
	case "truthy":
		return guard.IsTruthy()
	case "falsy":
		return guard.IsFalsy()
	case "iterable":
		return guard.IsIterable()
	case "nil":
		return guard.IsNil()
	default:
		return guard.NotNil()
	}
}

func compileCombinator(op string, arg *yaml.Node) (*guard.Predicate, error) {
	if arg.Kind != yaml.SequenceNode || len(arg.Content) == 0 {
		return nil, errorAt(arg.Line, "%s takes a list of guards", op)
	}
	if op == "xor" && len(arg.Content) != 2 {
		return nil, errorAt(arg.Line, "xor takes exactly two guards")
	}

	preds := make([]*guard.Predicate, len(arg.Content))
	for i, item := range arg.Content {
		p, err := compilePredicate(item)
		if err != nil {
			return nil, err
		}
		preds[i] = p
	}

	combined := preds[0]
	for _, p := range preds[1:] {
		switch op {
		case "all":
			combined = combined.And(p)
		case "any":
			combined = combined.Or(p)
		case "xor":
			combined = combined.Xor(p)
		}
	}
	return combined, nil
}

// compileValue turns a match value into a pattern value: "_" is the
// wildcard, an operator mapping is a guard, anything else matches by
// equality
func compileValue(node *yaml.Node) (any, error) {
	if node.Kind == yaml.ScalarNode && node.Value == wildcardToken && node.ShortTag() == "!!str" {
		return guard.Wildcard, nil
	}
	if node.Kind == yaml.MappingNode && isOperator(node) {
		return compileOperator(node)
	}
	return decode(node)
}

func isOperator(node *yaml.Node) bool {
	if len(node.Content) != 2 {
		return false
	}
	switch node.Content[0].Value {
	case "eq", "ne", "lt", "le", "gt", "ge", "is", "in", "not_in", "type",
		"truthy", "falsy", "iterable", "nil", "not_nil", "not", "all", "any", "xor":
		return true
	}
	return false
}

// compileTypes turns a type name, or a list of them, into a type marker
func compileTypes(node *yaml.Node) (any, error) {
	if node.Kind == yaml.ScalarNode && node.Value == wildcardToken {
		return guard.Wildcard, nil
	}
	return typeMarkers(node)
}

var typeNames = map[string][]reflect.Type{
	"int":    {reflect.TypeFor[int]()},
	"float":  {reflect.TypeFor[float64]()},
	"number": {reflect.TypeFor[int](), reflect.TypeFor[float64]()},
	"string": {reflect.TypeFor[string]()},
	"bool":   {reflect.TypeFor[bool]()},
	"list":   {reflect.TypeFor[[]any]()},
	"map":    {reflect.TypeFor[map[string]any]()},
}

func typeMarkers(node *yaml.Node) ([]reflect.Type, error) {
	var names []string
	switch node.Kind {
	case yaml.ScalarNode:
		names = []string{node.Value}
	case yaml.SequenceNode:
		if err := node.Decode(&names); err != nil {
			return nil, &Error{Line: node.Line, Message: "type names", Err: err}
		}
	default:
		return nil, errorAt(node.Line, "type takes a type name or a list of them")
	}
	if len(names) == 0 {
		return nil, errorAt(node.Line, "type takes at least one type name")
	}

	var types []reflect.Type
	for _, name := range names {
		ts, ok := typeNames[name]
		if !ok {
			return nil, errorAt(node.Line, "unknown type %q (known: %s)", name, knownTypes())
		}
		types = append(types, ts...)
	}
	return types, nil
}

func knownTypes() string {
	names := make([]string, 0, len(typeNames))
	for name := range typeNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// compileWhere builds a relation comparing two parameters, e.g. {lt: [lo, hi]}
func compileWhere(f *FunctionRule, node *yaml.Node) (*guard.Relation, error) {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return nil, errorAt(node.Line, "where takes a single comparison")
	}
	op, arg := node.Content[0].Value, node.Content[1]

	switch op {
	case "eq", "ne", "lt", "le", "gt", "ge":
	default:
		return nil, errorAt(node.Content[0].Line, "unknown comparison %q in where", op)
	}

	var operands []string
	if err := arg.Decode(&operands); err != nil || len(operands) != 2 {
		return nil, errorAt(arg.Line, "%s takes two parameter names", op)
	}
	left, right := operands[0], operands[1]
	for _, name := range operands {
		if !hasParam(f, name) {
			return nil, errorAt(arg.Line, "%s: where reads unknown parameter %q", f.Name, name)
		}
	}
	if left == right {
		return nil, errorAt(arg.Line, "%s compares %q with itself", op, left)
	}

	r, err := guard.NewRelation(func(args map[string]any) bool {
		return comparison(op, args[right]).Check(args[left])
	}, left, right)
	if err != nil {
		return nil, &Error{Line: node.Line, Message: "where", Err: err}
	}
	return r.Named(op), nil
}

func decode(node *yaml.Node) (any, error) {
	var v any
	if err := node.Decode(&v); err != nil {
		return nil, &Error{Line: node.Line, Message: "invalid value", Err: err}
	}
	return v, nil
}

// expand replaces ${param} in string results. A result that is exactly one
// placeholder returns the argument itself.
func expand(result any, args map[string]any) any {
	s, ok := result.(string)
	if !ok {
		return result
	}
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") && strings.Count(s, "${") == 1 {
		if v, ok := args[s[2:len(s)-1]]; ok {
			return v
		}
	}
	return substitute(s, args)
}

func substitute(s string, args map[string]any) string {
	var b strings.Builder
	for {
		start := strings.Index(s, "${")
		if start < 0 {
			b.WriteString(s)
			return b.String()
		}
		end := strings.Index(s[start:], "}")
		if end < 0 {
			b.WriteString(s)
			return b.String()
		}
		end += start

		b.WriteString(s[:start])
		name := s[start+2 : end]
		if v, ok := args[name]; ok {
			fmt.Fprint(&b, v)
		} else {
			b.WriteString(s[start : end+1])
		}
		s = s[end+1:]
	}
}
