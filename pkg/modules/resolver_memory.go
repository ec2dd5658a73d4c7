package modules

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"inlay/pkg/source"
)

// MemoryResolver resolves modules from an in-memory store
type MemoryResolver struct {
	name     string                   // Human-readable name
	modules  map[string]*MemoryModule // Map of module path -> module
	mutex    sync.RWMutex             // Protects concurrent access
	priority int                      // Resolution priority
}

// MemoryModule represents a module stored in memory
type MemoryModule struct {
	Path     string    // Module path
	Content  string    // Module source content
	Created  time.Time // When the module was created
	Modified time.Time // When the module was last modified
}

// NewMemoryResolver creates a new memory-based module resolver
func NewMemoryResolver(name string) *MemoryResolver {
	if name == "" {
		name = "Memory"
	}

	return &MemoryResolver{
		name:     name,
		modules:  make(map[string]*MemoryModule),
		priority: 50, // Higher priority than file system for testing
	}
}

// Name returns the resolver name
func (r *MemoryResolver) Name() string {
	return r.name
}

// CanResolve returns true if this resolver can handle the specifier
func (r *MemoryResolver) CanResolve(specifier string) bool {
	// Relative specifiers need the importer's path, which only Resolve
	// receives; accept them here and let Resolve make the final call
	if strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") {
		return true
	}

	// Bare specifiers resolve against the store directly
	_, _, err := r.findModule(specifier, "")
	return err == nil
}

// Priority returns the resolver priority
func (r *MemoryResolver) Priority() int {
	return r.priority
}

// Resolve resolves a module specifier to a concrete source
func (r *MemoryResolver) Resolve(specifier string, fromPath string) (*ResolvedSource, error) {
	resolvedPath, module, err := r.findModule(specifier, fromPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", specifier, err)
	}

	return &ResolvedSource{
		Specifier:    specifier,
		ResolvedPath: resolvedPath,
		Source:       source.NewMemorySource(resolvedPath, module.Content),
		Resolver:     r.name,
	}, nil
}

// findModule finds a module by specifier with various resolution strategies
func (r *MemoryResolver) findModule(specifier string, fromPath string) (string, *MemoryModule, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	// Handle relative paths
	if strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") {
		if fromPath == "" {
			// If no fromPath provided, treat as relative to current directory
			// Remove the leading "./" for root-relative resolution
			if strings.HasPrefix(specifier, "./") {
				specifier = strings.TrimPrefix(specifier, "./")
			} else {
				return "", nil, fmt.Errorf("relative import %s requires fromPath", specifier)
			}
		} else {
			fromDir := filepath.Dir(fromPath)
			targetPath := filepath.Join(fromDir, specifier)
			specifier = filepath.Clean(targetPath)
		}
	}

	// Strategy 1: Try exact path
	if module, exists := r.modules[specifier]; exists {
		return specifier, module, nil
	}

	// Strategy 2: Try with extensions
	extensions := []string{".js", ".mjs"}
	for _, ext := range extensions {
		pathWithExt := specifier + ext
		if module, exists := r.modules[pathWithExt]; exists {
			return pathWithExt, module, nil
		}
	}

	// Strategy 3: Try as directory with index files
	indexFiles := []string{"index.js", "index.mjs"}
	for _, indexFile := range indexFiles {
		indexPath := filepath.Join(specifier, indexFile)
		if module, exists := r.modules[indexPath]; exists {
			return indexPath, module, nil
		}
	}

	return "", nil, fmt.Errorf("module not found: %s", specifier)
}

// AddModule adds a module to the memory store
func (r *MemoryResolver) AddModule(path string, content string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	now := time.Now()
	r.modules[path] = &MemoryModule{
		Path:     path,
		Content:  content,
		Created:  now,
		Modified: now,
	}
}

// UpdateModule updates an existing module's content
func (r *MemoryResolver) UpdateModule(path string, content string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	module, exists := r.modules[path]
	if !exists {
		return fmt.Errorf("module not found: %s", path)
	}

	module.Content = content
	module.Modified = time.Now()
	return nil
}

// RemoveModule removes a module from the memory store
func (r *MemoryResolver) RemoveModule(path string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.modules, path)
}

// ListModules returns all module paths in the store, sorted
func (r *MemoryResolver) ListModules() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	paths := make([]string, 0, len(r.modules))
	for path := range r.modules {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Clear removes all modules from the store
func (r *MemoryResolver) Clear() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.modules = make(map[string]*MemoryModule)
}

// GetModule returns a module by path (for testing/debugging)
func (r *MemoryResolver) GetModule(path string) *MemoryModule {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.modules[path]
}

// SetPriority sets the resolver priority
func (r *MemoryResolver) SetPriority(priority int) {
	r.priority = priority
}
