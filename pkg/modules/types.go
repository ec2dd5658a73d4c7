package modules

import (
	"inlay/pkg/errors"
	"inlay/pkg/hoister"
	"inlay/pkg/inliner"
	"inlay/pkg/resolver"
	"inlay/pkg/source"
)

// ModuleState represents how far a module has moved through the build
// pipeline.
type ModuleState int

const (
	ModuleUnknown     ModuleState = iota // Initial state
	ModuleResolved                       // Specifier resolved to a source
	ModuleParsed                         // Parsed and scanned for hints
	ModuleTransformed                    // Inlining and hoisting applied
	ModuleFailed                         // Resolution, parse or transform failed
)

func (s ModuleState) String() string {
	switch s {
	case ModuleUnknown:
		return "unknown"
	case ModuleResolved:
		return "resolved"
	case ModuleParsed:
		return "parsed"
	case ModuleTransformed:
		return "transformed"
	case ModuleFailed:
		return "failed"
	default:
		return "invalid"
	}
}

// Record represents a module in the registry with everything the build
// phases accumulate for it.
type Record struct {
	// Basic module information
	Specifier    string      // Import specifier as first requested
	ResolvedPath string      // Resolved canonical path, the registry key
	State        ModuleState // Current pipeline state

	// Source and parsing
	Source *source.SourceFile // Source file content
	Module *resolver.Module   // Parsed program with hint table and scope

	// Dependencies
	Dependencies []string // Requests imported by this module, in source order

	// Transformation results
	Expansions []*inliner.Expansion // Call sites expanded in this module
	Merges     []*hoister.Merge     // Pure computations merged in this module
	Diags      []errors.InlayError  // Module-local diagnostics
	Output     string               // Printed source after transformation
	Cached     bool                 // Output restored from the cache, Expansions and Merges empty

	// Error handling
	Err error // Resolution, parse or transform error
}

// ResolvedSource represents a resolver's answer for one specifier.
type ResolvedSource struct {
	Specifier    string             // Original specifier
	ResolvedPath string             // Resolved path (canonical)
	Source       *source.SourceFile // Module source content
	Resolver     string             // Name of resolver that resolved this
}
