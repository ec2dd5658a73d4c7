package errors

import "inlay/pkg/source"

// Position represents a specific location in the source code.
// It includes line and column numbers (1-based) for human-readability,
// and byte offsets (0-based) for potential use in tooling (like LSP).
type Position struct {
	Line     int                // 1-based line number
	Column   int                // 1-based column number (rune index within the line)
	StartPos int                // 0-based byte offset of the start of the token/error span
	EndPos   int                // 0-based byte offset of the end of the token/error span (exclusive)
	Source   *source.SourceFile // Reference to the source file
}

// AttachSource fills in the source file on every error that lacks one.
// The rewrite passes report positions without file references; a caller
// that knows which module a diagnostic list belongs to completes them
// before display.
func AttachSource(errs []InlayError, src *source.SourceFile) {
	if src == nil {
		return
	}
	for _, err := range errs {
		switch e := err.(type) {
		case *SyntaxError:
			if e.Source == nil {
				e.Source = src
			}
		case *ResolveError:
			if e.Source == nil {
				e.Source = src
			}
		case *SkipError:
			if e.Source == nil {
				e.Source = src
			}
		case *CycleError:
			if e.Source == nil {
				e.Source = src
			}
		case *TransformError:
			if e.Source == nil {
				e.Source = src
			}
		}
	}
}
