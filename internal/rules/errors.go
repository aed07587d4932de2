package rules

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Error reports a problem in a rule file
type Error struct {
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder
	if e.File != "" {
		b.WriteString(e.File)
		b.WriteString(":")
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, "%d:", e.Line)
	}
	if b.Len() > 0 {
		b.WriteString(" ")
	}
	b.WriteString(e.Message)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// ToJSON returns the error as an indented JSON document
func (e *Error) ToJSON() (string, error) {
	doc := struct {
		*Error
		Cause string `json:"cause,omitempty"`
	}{Error: e}
	if e.Err != nil {
		doc.Cause = e.Err.Error()
	}

	bytes, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func errorAt(line int, format string, args ...interface{}) *Error {
	return &Error{Line: line, Message: fmt.Sprintf(format, args...)}
}
