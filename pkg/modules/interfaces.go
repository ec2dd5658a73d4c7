package modules

import (
	"io/fs"
)

// ModuleFS extends Go's standard io/fs interfaces for module loading
type ModuleFS interface {
	fs.FS
	fs.ReadFileFS // Required for reading module content
}

// Resolver resolves module specifiers to concrete sources
type Resolver interface {
	// Name returns a human-readable name for this resolver
	Name() string

	// CanResolve returns true if this resolver can handle the given specifier
	CanResolve(specifier string) bool

	// Resolve attempts to resolve a module specifier to a concrete source
	// fromPath is the path of the module that is importing (for relative resolution)
	Resolve(specifier string, fromPath string) (*ResolvedSource, error)

	// Priority returns the priority of this resolver (lower = higher priority)
	Priority() int
}
