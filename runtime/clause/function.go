package clause

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/conduit-lang/clauses/runtime/bind"
	"github.com/conduit-lang/clauses/runtime/guard"
	"github.com/conduit-lang/clauses/runtime/introspect"
)

// Clause is one guarded variant of a multi-clause function
type Clause struct {
	ID       uuid.UUID
	Arity    int
	CatchAll bool
	Mode     Mode

	guarded *bind.Guarded
}

// Guarded returns the guarded function implementing the clause
func (c *Clause) Guarded() *bind.Guarded {
	return c.guarded
}

func newClause(p Pattern, target any, mode Mode) (*Clause, error) {
	guarded, isGuarded := target.(*bind.Guarded)

	var sig *introspect.Signature
	if isGuarded {
		sig = guarded.Signature()
	} else {
		var err error
		sig, err = introspect.Of(target)
		if err != nil {
			return nil, guard.Definitionf(guard.CodeInvalidTarget, "cannot register %T: %v", target, err)
		}
	}

	if sig.HasVariadic() {
		return nil, guard.Definitionf(guard.CodeVariadic, "variadic parameters cannot be matched").WithTarget(sig.Name)
	}
	if sig.HasNamedOnly() {
		return nil, guard.Definitionf(guard.CodeNamedOnly, "named-only parameters cannot be matched").WithTarget(sig.Name)
	}

	guards, err := matchGuards(sig, p, mode)
	if err != nil {
		return nil, err
	}

	switch {
	case isGuarded:
		guarded, err = mergeGuards(guarded, sig, guards)
	case declaresGuards(sig):
		// declared guards first, match values narrow them
		guarded, err = bind.BindSignature(sig.WithoutDefaults(), bind.Spec{})
		if err == nil {
			guarded, err = mergeGuards(guarded, sig, guards)
		}
	case len(guards) == 0:
		guarded, err = bind.Unguarded(sig.WithoutDefaults())
	default:
		// defaults served as match values
		guarded, err = bind.BindSignature(sig.WithoutDefaults(), bind.Spec{Positional: guards})
	}
	if err != nil {
		return nil, err
	}

	return &Clause{
		ID:       uuid.New(),
		Arity:    len(sig.Params),
		CatchAll: guarded.Unconstrained(),
		Mode:     mode,
		guarded:  guarded,
	}, nil
}

// mergeGuards AND-combines every match predicate into the guard of its
// parameter
func mergeGuards(guarded *bind.Guarded, sig *introspect.Signature, guards []guard.Guard) (*bind.Guarded, error) {
	for i, g := range guards {
		pred, ok := g.(*guard.Predicate)
		if !ok {
			continue
		}
		var err error
		guarded, err = guarded.WithGuard(sig.Params[i].Name, pred)
		if err != nil {
			return nil, err
		}
	}
	return guarded, nil
}

func declaresGuards(sig *introspect.Signature) bool {
	if sig.HasReturn {
		return true
	}
	for _, p := range sig.Params {
		if p.HasGuard {
			return true
		}
	}
	return false
}

// Function is a multi-clause function: clauses grouped by arity, each group
// in registration order
type Function struct {
	key    Key
	logger *zap.Logger

	mu      sync.RWMutex
	origin  string
	buckets map[int][]*Clause
}

func newFunction(key Key, logger *zap.Logger) *Function {
	return &Function{
		key:     key,
		logger:  logger,
		buckets: make(map[int][]*Clause),
	}
}

// Name returns the registered name
func (f *Function) Name() string {
	return f.key.Name
}

// Key returns the registry key
func (f *Function) Key() Key {
	return f.key
}

// Origin returns the display name of the first registered clause's target
func (f *Function) Origin() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.origin
}

// Arities returns the arities with at least one clause, ascending
func (f *Function) Arities() []int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return sortedArities(f.buckets)
}

// Clauses returns the clauses of an arity in dispatch order
func (f *Function) Clauses(arity int) []*Clause {
	return append([]*Clause(nil), f.snapshot(arity)...)
}

// snapshot returns the bucket for arity. Buckets are replaced, never
// modified, so the result stays valid without the lock.
func (f *Function) snapshot(arity int) []*Clause {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.buckets[arity]
}

func (f *Function) append(c *Clause) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	bucket := f.buckets[c.Arity]
	if n := len(bucket); n > 0 && bucket[n-1].CatchAll {
		return &OrderingViolation{
			Function: f.key.String(),
			Arity:    c.Arity,
			CatchAll: bucket[n-1].ID,
		}
	}

	next := make([]*Clause, len(bucket), len(bucket)+1)
	copy(next, bucket)
	f.buckets[c.Arity] = append(next, c)

	if f.origin == "" {
		f.origin = c.guarded.Name()
	}
	return nil
}

// Call dispatches to the first clause of matching arity whose guards accept
// args. Arity counts positional and bind.Named arguments alike. Errors
// returned by the selected clause are passed through; when no clause accepts
// the arguments Call returns a *NoMatch.
func (f *Function) Call(args ...any) (any, error) {
	arity := len(args)
	clauses := f.snapshot(arity)

	for _, c := range clauses {
		inv, err := c.guarded.Prepare(args...)
		if err != nil {
			if errors.Is(err, guard.ErrRejected) {
				continue
			}
			return nil, err
		}
		return inv.Invoke()
	}

	f.logger.Debug("no clause matched",
		zap.String("function", f.key.Name),
		zap.String("scope", f.key.Scope),
		zap.Int("arity", arity),
		zap.Int("tried", len(clauses)),
	)
	return nil, &NoMatch{Function: f.key.String(), Arity: arity, Tried: len(clauses)}
}
