package errors

import (
	"fmt"
	"strings"
)

// InlayError is the interface implemented by all inlay errors.
type InlayError interface {
	error // Embed the standard error interface
	Pos() Position
	Kind() string // e.g., "Syntax", "Resolve", "Skip", "Cycle", "Transform"
	// Message returns the specific error message without position info.
	// This might be useful if the caller wants to format the error differently.
	Message() string
	Unwrap() error // For error wrapping support (errors.Is/As)
	// Fatal reports whether the error aborts the transform of its module.
	// Non-fatal errors are diagnostics: the offending call site is left
	// untouched and processing continues.
	Fatal() bool
}

// --- Concrete Error Types ---

// SyntaxError represents an error during lexing or parsing.
type SyntaxError struct {
	Position
	Msg   string
	Cause error // Underlying cause, if any
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("Syntax Error at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *SyntaxError) Pos() Position   { return e.Position }
func (e *SyntaxError) Kind() string    { return "Syntax" }
func (e *SyntaxError) Message() string { return e.Msg }
func (e *SyntaxError) Unwrap() error   { return e.Cause }
func (e *SyntaxError) Fatal() bool     { return true }
func (e *SyntaxError) CausedBy(cause error) *SyntaxError {
	e.Cause = cause
	return e
}

// ResolveError represents a failure to resolve a module specifier or an
// imported binding.
type ResolveError struct {
	Position
	Specifier string
	Msg       string
	Cause     error // Underlying cause, if any
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("Resolve Error at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *ResolveError) Pos() Position   { return e.Position }
func (e *ResolveError) Kind() string    { return "Resolve" }
func (e *ResolveError) Message() string { return e.Msg }
func (e *ResolveError) Unwrap() error   { return e.Cause }
func (e *ResolveError) Fatal() bool     { return true }
func (e *ResolveError) CausedBy(cause error) *ResolveError {
	e.Cause = cause
	return e
}

// SkipError reports a call site that was left unexpanded: the callee is
// not statically resolvable, or its body cannot be made self-contained
// in the consumer. Expected and non-fatal.
type SkipError struct {
	Position
	Callee string
	Msg    string
	Cause  error
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("Skip at %d:%d: %s", e.Line, e.Column, e.Message())
}
func (e *SkipError) Pos() Position { return e.Position }
func (e *SkipError) Kind() string  { return "Skip" }
func (e *SkipError) Message() string {
	if e.Callee == "" {
		return e.Msg
	}
	return fmt.Sprintf("cannot inline '%s': %s", e.Callee, e.Msg)
}
func (e *SkipError) Unwrap() error { return e.Cause }
func (e *SkipError) Fatal() bool   { return false }

// CycleError reports a call site whose expansion would recurse, directly
// or through a chain of inline-hinted functions. The call site is left
// as a normal call; the transform continues.
type CycleError struct {
	Position
	Callee string
	Cycle  []string // function names forming the cycle, in call order
	Cause  error
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("Cycle at %d:%d: %s", e.Line, e.Column, e.Message())
}
func (e *CycleError) Pos() Position { return e.Position }
func (e *CycleError) Kind() string  { return "Cycle" }
func (e *CycleError) Message() string {
	if len(e.Cycle) == 0 {
		return fmt.Sprintf("cannot expand recursive function '%s'", e.Callee)
	}
	return fmt.Sprintf("cannot expand '%s': recursion through %s", e.Callee, strings.Join(e.Cycle, " -> "))
}
func (e *CycleError) Unwrap() error { return e.Cause }
func (e *CycleError) Fatal() bool   { return false }

// TransformError represents a structural invariant violation discovered
// mid-rewrite (e.g. a body that captures 'this'). The containing module
// is abandoned; other modules are unaffected.
type TransformError struct {
	Position
	Msg   string
	Cause error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("Transform Error at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *TransformError) Pos() Position   { return e.Position }
func (e *TransformError) Kind() string    { return "Transform" }
func (e *TransformError) Message() string { return e.Msg }
func (e *TransformError) Unwrap() error   { return e.Cause }
func (e *TransformError) Fatal() bool     { return true }
func (e *TransformError) CausedBy(cause error) *TransformError {
	e.Cause = cause
	return e
}

// HasFatal reports whether any error in the list is fatal.
func HasFatal(errs []InlayError) bool {
	for _, err := range errs {
		if err.Fatal() {
			return true
		}
	}
	return false
}
