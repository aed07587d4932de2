package clause

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Dispatcher error codes
const (
	CodeOrderingViolation = "CLS301"
	CodeNoMatch           = "CLS401"
)

var (
	// ErrOrdering matches every *OrderingViolation
	ErrOrdering = errors.New("clause ordering violation")

	// ErrNoMatch matches every *NoMatch
	ErrNoMatch = errors.New("no clause matched")
)

// OrderingViolation reports a clause registered after the catch-all clause
// of its arity. Such a clause could never be reached.
type OrderingViolation struct {
	Function string    `json:"function"`
	Arity    int       `json:"arity"`
	CatchAll uuid.UUID `json:"catch_all"`
}

// Error implements the error interface
func (e *OrderingViolation) Error() string {
	return fmt.Sprintf("[%s] %s/%d: clause declared after catch-all clause %s would never match",
		CodeOrderingViolation, e.Function, e.Arity, e.CatchAll)
}

// Is reports whether target is ErrOrdering
func (e *OrderingViolation) Is(target error) bool {
	return target == ErrOrdering
}

// NoMatch reports a call that no clause accepted
type NoMatch struct {
	Function string `json:"function"`
	Arity    int    `json:"arity"`
	Tried    int    `json:"tried"`
}

// Error implements the error interface
func (e *NoMatch) Error() string {
	if e.Tried == 0 {
		return fmt.Sprintf("[%s] %s: no clause takes %d arguments", CodeNoMatch, e.Function, e.Arity)
	}
	return fmt.Sprintf("[%s] %s/%d: none of %d clauses matched", CodeNoMatch, e.Function, e.Arity, e.Tried)
}

// Is reports whether target is ErrNoMatch
func (e *NoMatch) Is(target error) bool {
	return target == ErrNoMatch
}
