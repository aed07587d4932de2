// Package clause defines functions as ordered sets of guarded clauses and
// dispatches each call to the first clause whose guards accept the arguments.
//
// Clauses are grouped by arity. Within an arity they are tried in
// registration order; a clause without any constraint (a catch-all) has to be
// the last one of its arity.
//
//	reg := clause.NewRegistry()
//	reg.RegisterClause("fac", clause.Values(0), func(n int) int { return 1 })
//	reg.RegisterClause("fac", clause.Values(guard.Ge(0)), func(n int) (int, error) {
//		prev, err := reg.Call("fac", n-1)
//		if err != nil {
//			return 0, err
//		}
//		return n * prev.(int), nil
//	})
//	reg.Call("fac", 5)  // 120
//	reg.Call("fac", -1) // *NoMatch
package clause

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Key identifies a multi-clause function within a registry
type Key struct {
	Scope string
	Name  string
}

// String renders the key as scope.name, or name in the root scope
func (k Key) String() string {
	if k.Scope == "" {
		return k.Name
	}
	return k.Scope + "." + k.Name
}

// Registry holds multi-clause functions. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	functions map[Key]*Function
	order     []Key

	logger *zap.Logger
}

// Option configures a Registry
type Option func(*Registry)

// WithLogger sets the logger used for registration and dispatch events
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry creates an empty registry
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		functions: make(map[Key]*Function),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Scope returns a view of the registry whose functions are keyed under scope.
// Functions with the same name in different scopes are unrelated.
func (r *Registry) Scope(scope string) *Scope {
	return &Scope{registry: r, scope: scope}
}

// RegisterClause adds a clause matching by value to the named function in the
// root scope. See Scope.RegisterClause.
func (r *Registry) RegisterClause(name string, p Pattern, target any) (*Function, error) {
	return r.Scope("").RegisterClause(name, p, target)
}

// DispatchOnType adds a clause matching by argument type to the named function
// in the root scope. See Scope.DispatchOnType.
func (r *Registry) DispatchOnType(name string, p Pattern, target any) (*Function, error) {
	return r.Scope("").DispatchOnType(name, p, target)
}

// Lookup returns the named function of the root scope
func (r *Registry) Lookup(name string) (*Function, bool) {
	return r.Scope("").Lookup(name)
}

// Call dispatches a call to the named function of the root scope
func (r *Registry) Call(name string, args ...any) (any, error) {
	return r.Scope("").Call(name, args...)
}

// Functions returns every function in registration order
func (r *Registry) Functions() []*Function {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Function, len(r.order))
	for i, key := range r.order {
		out[i] = r.functions[key]
	}
	return out
}

// Len returns the number of functions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.functions)
}

func (r *Registry) lookup(key Key) (*Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.functions[key]
	return fn, ok
}

// function returns the function for key, creating it on first use.
// Uses double-check locking: the read lock serves every call after the first.
func (r *Registry) function(key Key) *Function {
	if fn, ok := r.lookup(key); ok {
		return fn
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if fn, ok := r.functions[key]; ok {
		return fn
	}
	fn := newFunction(key, r.logger)
	r.functions[key] = fn
	r.order = append(r.order, key)
	return fn
}

func (r *Registry) register(key Key, p Pattern, target any, mode Mode) (*Function, error) {
	c, err := newClause(p, target, mode)
	if err != nil {
		r.logger.Debug("clause rejected",
			zap.String("function", key.Name),
			zap.String("scope", key.Scope),
			zap.Error(err),
		)
		return nil, fmt.Errorf("register %s: %w", key, err)
	}

	fn := r.function(key)
	if err := fn.append(c); err != nil {
		r.logger.Warn("clause ordering violation",
			zap.String("function", key.Name),
			zap.String("scope", key.Scope),
			zap.Int("arity", c.Arity),
			zap.Error(err),
		)
		return nil, err
	}

	r.logger.Debug("clause registered",
		zap.String("function", key.Name),
		zap.String("scope", key.Scope),
		zap.Int("arity", c.Arity),
		zap.Stringer("clause_id", c.ID),
		zap.Bool("catch_all", c.CatchAll),
		zap.Stringer("mode", c.Mode),
	)
	return fn, nil
}

// Scope is a namespace of functions within a registry
type Scope struct {
	registry *Registry
	scope    string
}

// Name returns the scope name
func (s *Scope) Name() string {
	return s.scope
}

// RegisterClause adds a clause to the named function, creating the function
// on first use.
//
// The clause's match values come from p or, when p is empty, from the
// target's declared defaults; every value becomes an equality guard on its
// parameter. target is a Go function, an introspect.Declared function, or a
// *bind.Guarded function whose guards are combined with the match values.
// Registration fails with a *guard.DefinitionError for malformed clauses and
// with an *OrderingViolation when the function already ends with a catch-all
// clause of the same arity.
func (s *Scope) RegisterClause(name string, p Pattern, target any) (*Function, error) {
	return s.registry.register(Key{Scope: s.scope, Name: name}, p, target, ByValue)
}

// DispatchOnType is RegisterClause with match values that are type markers;
// each becomes a type-membership guard on its parameter.
func (s *Scope) DispatchOnType(name string, p Pattern, target any) (*Function, error) {
	return s.registry.register(Key{Scope: s.scope, Name: name}, p, target, ByType)
}

// Lookup returns the named function
func (s *Scope) Lookup(name string) (*Function, bool) {
	return s.registry.lookup(Key{Scope: s.scope, Name: name})
}

// Call dispatches a call to the named function
func (s *Scope) Call(name string, args ...any) (any, error) {
	fn, ok := s.Lookup(name)
	if !ok {
		key := Key{Scope: s.scope, Name: name}
		return nil, &NoMatch{Function: key.String(), Arity: len(args)}
	}
	return fn.Call(args...)
}

// Functions returns the functions of this scope in registration order
func (s *Scope) Functions() []*Function {
	var out []*Function
	for _, fn := range s.registry.Functions() {
		if fn.key.Scope == s.scope {
			out = append(out, fn)
		}
	}
	return out
}

func sortedArities(buckets map[int][]*Clause) []int {
	arities := make([]int, 0, len(buckets))
	for arity := range buckets {
		arities = append(arities, arity)
	}
	sort.Ints(arities)
	return arities
}
