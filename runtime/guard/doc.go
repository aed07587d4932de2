// Package guard provides composable boolean predicates used to guard the
// parameters of a function.
//
// # Overview
//
// A Guard is either the Wildcard, which accepts every value, or a *Predicate
// wrapping a one-argument test. Predicates are immutable; the combinators
// Not, And, Or and Xor return new predicates.
//
//	positive := guard.OfType[int]().And(guard.Gt(0))
//	positive.Check(3)   // true
//	positive.Check("3") // false
//
// Evaluation never propagates a Go type error to the caller: a value that is
// not assignable to the test's parameter type, an ordering comparison between
// unrelated types, or a runtime panic caused by comparing uncomparable values
// all evaluate to false.
//
// # Relations
//
// A *Relation is a test over several named parameters at once:
//
//	ascending, _ := guard.NewRelation(func(a, b int) bool { return a < b }, "a", "b")
//	ascending.Check(map[string]any{"a": 1, "b": 2, "c": "ignored"}) // true
//
// # Errors
//
// Malformed guard definitions are reported as *DefinitionError (errors.Is
// ErrDefinition). A guard rejecting a value at call time is reported as
// *Rejected (errors.Is ErrRejected).
package guard
