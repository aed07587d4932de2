// Package rules loads multi-clause functions from YAML rule files.
//
// A rule file declares functions by name and parameter list. Each clause
// constrains the parameters with guard expressions, match values or type
// names, and returns a constant result in which ${param} is replaced by the
// argument:
//
//	functions:
//	  - name: classify
//	    params: [n]
//	    clauses:
//	      - guards: {n: {all: [{type: int}, {lt: 0}]}}
//	        result: negative
//	      - values: [0]
//	        result: zero
//	      - result: "positive ${n}"
package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RuleSet is a parsed and validated rule file
type RuleSet struct {
	Functions []FunctionRule `yaml:"functions"`

	path string
}

// FunctionRule declares one multi-clause function
type FunctionRule struct {
	Name    string       `yaml:"name"`
	Scope   string       `yaml:"scope,omitempty"`
	Params  []string     `yaml:"params"`
	Clauses []ClauseRule `yaml:"clauses"`

	Line int `yaml:"-"`
}

// ClauseRule declares one clause of a function.
//
// Guards map parameter names to guard expressions. Values are positional
// match values ("_" matches anything). Types are positional type names and
// make the clause dispatch on argument types. Where is a comparison between
// two parameters, e.g. {lt: [lo, hi]}.
type ClauseRule struct {
	Guards map[string]yaml.Node `yaml:"guards,omitempty"`
	Values []yaml.Node          `yaml:"values,omitempty"`
	Types  []yaml.Node          `yaml:"types,omitempty"`
	Where  yaml.Node            `yaml:"where,omitempty"`
	Result any                  `yaml:"result"`

	Line int `yaml:"-"`

	compiled *compiledClause
}

// UnmarshalYAML records the line of the function declaration
func (f *FunctionRule) UnmarshalYAML(node *yaml.Node) error {
	type plain FunctionRule
	if err := node.Decode((*plain)(f)); err != nil {
		return err
	}
	f.Line = node.Line
	return nil
}

// UnmarshalYAML records the line of the clause declaration
func (c *ClauseRule) UnmarshalYAML(node *yaml.Node) error {
	type plain ClauseRule
	if err := node.Decode((*plain)(c)); err != nil {
		return err
	}
	c.Line = node.Line
	return nil
}

// Load reads and validates a rule file
func Load(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules %s: %w", path, err)
	}
	return parse(data, path)
}

// Parse validates rule file content
func Parse(data []byte) (*RuleSet, error) {
	return parse(data, "")
}

func parse(data []byte, path string) (*RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, &Error{File: path, Message: "invalid YAML", Err: err}
	}
	rs.path = path

	if err := rs.validate(); err != nil {
		return nil, err
	}
	return &rs, nil
}

// Path returns the file the rules were loaded from, if any
func (rs *RuleSet) Path() string {
	return rs.path
}

// Function returns the named function rule of the root scope
func (rs *RuleSet) Function(name string) (*FunctionRule, bool) {
	for i := range rs.Functions {
		if f := &rs.Functions[i]; f.Name == name && f.Scope == "" {
			return f, true
		}
	}
	return nil, false
}

func (rs *RuleSet) validate() error {
	if len(rs.Functions) == 0 {
		return rs.errorf(1, "no functions declared")
	}

	seen := make(map[string]int)
	for i := range rs.Functions {
		f := &rs.Functions[i]
		key := f.Scope + "." + f.Name
		if f.Name == "" {
			return rs.errorf(f.Line, "function name is required")
		}
		if line, dup := seen[key]; dup {
			return rs.errorf(f.Line, "function %q already declared on line %d", f.Name, line)
		}
		seen[key] = f.Line

		params := make(map[string]bool, len(f.Params))
		for _, p := range f.Params {
			if p == "" || p == "_" {
				return rs.errorf(f.Line, "%s: parameters have to be named", f.Name)
			}
			if params[p] {
				return rs.errorf(f.Line, "%s: duplicate parameter %q", f.Name, p)
			}
			params[p] = true
		}

		if len(f.Clauses) == 0 {
			return rs.errorf(f.Line, "%s: no clauses declared", f.Name)
		}
		for j := range f.Clauses {
			c := &f.Clauses[j]
			compiled, err := compileClause(f, c)
			if err != nil {
				return rs.wrap(err)
			}
			c.compiled = compiled
		}
	}
	return nil
}

func (rs *RuleSet) errorf(line int, format string, args ...interface{}) *Error {
	return &Error{File: rs.path, Line: line, Message: fmt.Sprintf(format, args...)}
}

func (rs *RuleSet) wrap(err error) error {
	if e, ok := err.(*Error); ok {
		e.File = rs.path
		return e
	}
	return err
}

// ParseArg parses a command line argument as a YAML value: integers, floats,
// booleans, null, lists and maps are recognised, anything else stays a string
func ParseArg(s string) any {
	var v any
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	return v
}
