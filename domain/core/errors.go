package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	ErrParse       = errors.New("malformed input file")
	ErrSelection   = errors.New("invalid column selection")
	ErrArity       = errors.New("sample length mismatch")
	ErrComputation = errors.New("computation failed")

	ErrUnknownProcedure = errors.New("unknown procedure")

	ErrSessionNotFound = errors.New("session not found")
	ErrNoData          = errors.New("no data loaded")
	ErrNoResult        = errors.New("no analysis computed")
)

// ParseError reports a delimited file that could not be turned into a table.
// Line is 1-based and zero when the problem is not tied to a line.
type ParseError struct {
	Line    int
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	msg := e.Message
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", msg, e.Cause)
	}
	return "parse error: " + msg
}

func (e *ParseError) Unwrap() error { return e.Cause }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// SelectionReason names the constraint a column selection violated
type SelectionReason string

const (
	ReasonWrongCount    SelectionReason = "wrong_count"
	ReasonUnknownColumn SelectionReason = "unknown_column"
	ReasonNonNumeric    SelectionReason = "non_numeric"
	ReasonDuplicate     SelectionReason = "duplicate_column"
)

// SelectionError reports a column selection that does not satisfy a procedure's constraints
type SelectionError struct {
	Reason  SelectionReason
	Column  string
	Message string
}

func (e *SelectionError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("selection error (%s): %s: %s", e.Reason, e.Column, e.Message)
	}
	return fmt.Sprintf("selection error (%s): %s", e.Reason, e.Message)
}

func (e *SelectionError) Is(target error) bool { return target == ErrSelection }

// ArityError reports paired samples of different lengths
type ArityError struct {
	Left, Right int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("arity error: paired samples differ in length (%d vs %d)", e.Left, e.Right)
}

func (e *ArityError) Is(target error) bool { return target == ErrArity }

// ComputationError reports a numeric procedure that could not produce a result
type ComputationError struct {
	Procedure string
	Message   string
	Cause     error
}

func (e *ComputationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Procedure, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Procedure, e.Message)
}

func (e *ComputationError) Unwrap() error { return e.Cause }

func (e *ComputationError) Is(target error) bool { return target == ErrComputation }

// Error constructors with context
func NewParseError(line int, message string, cause error) error {
	return &ParseError{Line: line, Message: message, Cause: cause}
}

func NewSelectionError(reason SelectionReason, column, message string) error {
	return &SelectionError{Reason: reason, Column: column, Message: message}
}

func NewComputationError(procedure, message string, cause error) error {
	return &ComputationError{Procedure: procedure, Message: message, Cause: cause}
}

// Error checking helpers
func IsParseError(err error) bool {
	return errors.Is(err, ErrParse)
}

func IsSelectionError(err error) bool {
	return errors.Is(err, ErrSelection)
}

func IsArityError(err error) bool {
	return errors.Is(err, ErrArity)
}

func IsComputationError(err error) bool {
	return errors.Is(err, ErrComputation)
}

// IsUserError reports whether err is something the user can fix by changing input or selection.
func IsUserError(err error) bool {
	return IsParseError(err) || IsSelectionError(err) || IsArityError(err) || IsComputationError(err) ||
		errors.Is(err, ErrNoData) || errors.Is(err, ErrNoResult) || errors.Is(err, ErrUnknownProcedure)
}
