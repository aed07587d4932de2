package guard

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrorCode identifies a guard error
type ErrorCode string

const (
	// Definition errors (GRD100-199)
	CodeInvalidTest      ErrorCode = "GRD101"
	CodeInvalidContainer ErrorCode = "GRD102"
	CodeNotAGuard        ErrorCode = "GRD103"
	CodeUnknownParam     ErrorCode = "GRD104"
	CodeConflict         ErrorCode = "GRD105"
	CodeTooManyGuards    ErrorCode = "GRD106"
	CodeVariadic         ErrorCode = "GRD107"
	CodeAlreadyGuarded   ErrorCode = "GRD108"
	CodeDefaultRejected  ErrorCode = "GRD109"
	CodeNoGuards         ErrorCode = "GRD110"
	CodeInvalidPattern   ErrorCode = "GRD111"
	CodeRelationMixed    ErrorCode = "GRD112"
	CodeNamedOnly        ErrorCode = "GRD113"
	CodeMixedPattern     ErrorCode = "GRD114"
	CodeInvalidTarget    ErrorCode = "GRD115"

	// Call-time rejections (GRD200-299)
	CodeGuardFailed    ErrorCode = "GRD201"
	CodeRelationFailed ErrorCode = "GRD202"
	CodeBadArguments   ErrorCode = "GRD203"
)

var (
	// ErrDefinition matches every *DefinitionError
	ErrDefinition = errors.New("guard definition error")

	// ErrRejected matches every *Rejected
	ErrRejected = errors.New("guard rejected")

	// ErrTypeMismatch is returned when a combinator operand is not a predicate
	ErrTypeMismatch = errors.New("operand is not a guard predicate")
)

// DefinitionError reports a malformed guard or clause definition.
// It is always produced while binding or registering, never while calling.
type DefinitionError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Target  string    `json:"target,omitempty"`
	Param   string    `json:"param,omitempty"`
}

// Definitionf creates a DefinitionError with a formatted message
func Definitionf(code ErrorCode, format string, args ...interface{}) *DefinitionError {
	return &DefinitionError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WithTarget records the function the definition belongs to
func (e *DefinitionError) WithTarget(target string) *DefinitionError {
	e.Target = target
	return e
}

// WithParam records the offending parameter
func (e *DefinitionError) WithParam(param string) *DefinitionError {
	e.Param = param
	return e
}

// Error implements the error interface
func (e *DefinitionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] ", e.Code)
	if e.Target != "" {
		fmt.Fprintf(&b, "%s: ", e.Target)
	}
	if e.Param != "" {
		fmt.Fprintf(&b, "parameter %q: ", e.Param)
	}
	b.WriteString(e.Message)
	return b.String()
}

// Is reports whether target is ErrDefinition
func (e *DefinitionError) Is(target error) bool {
	return target == ErrDefinition
}

// ToJSON returns the error as an indented JSON document
func (e *DefinitionError) ToJSON() (string, error) {
	bytes, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Rejected reports that a guard refused the arguments of a call.
// Param is empty when the relation or the argument binding refused the call.
type Rejected struct {
	Code     ErrorCode `json:"code"`
	Function string    `json:"function,omitempty"`
	Param    string    `json:"param,omitempty"`
	Guard    string    `json:"guard,omitempty"`
	Value    any       `json:"-"`
	Reason   string    `json:"reason,omitempty"`
}

// Error implements the error interface
func (e *Rejected) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] ", e.Code)
	if e.Function != "" {
		fmt.Fprintf(&b, "%s: ", e.Function)
	}
	switch e.Code {
	case CodeGuardFailed:
		fmt.Fprintf(&b, "guard %s rejected %s=%#v", e.Guard, e.Param, e.Value)
	case CodeRelationFailed:
		fmt.Fprintf(&b, "relation %s rejected the arguments", e.Guard)
	default:
		b.WriteString("arguments rejected")
	}
	if e.Reason != "" {
		fmt.Fprintf(&b, ": %s", e.Reason)
	}
	return b.String()
}

// Is reports whether target is ErrRejected
func (e *Rejected) Is(target error) bool {
	return target == ErrRejected
}
