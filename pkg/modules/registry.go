package modules

import (
	"sort"
	"sync"
)

// Registry caches module records by their resolved path. Safe for
// concurrent use; the parse phase writes records from several
// goroutines at once.
type Registry struct {
	modules map[string]*Record // Map of resolved path -> module record
	mutex   sync.RWMutex       // Protects concurrent access
}

// NewRegistry creates a new module registry
func NewRegistry() *Registry {
	return &Registry{
		modules: make(map[string]*Record),
	}
}

// Get retrieves a module record by resolved path
func (r *Registry) Get(path string) *Record {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.modules[path]
}

// Set stores a module record
func (r *Registry) Set(path string, record *Record) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.modules[path] = record
}

// Remove removes a module from the registry
func (r *Registry) Remove(path string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.modules, path)
}

// Clear removes all module records
func (r *Registry) Clear() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.modules = make(map[string]*Record)
}

// List returns all resolved paths in sorted order
func (r *Registry) List() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	paths := make([]string, 0, len(r.modules))
	for path := range r.modules {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	return paths
}

// Size returns the number of cached modules
func (r *Registry) Size() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.modules)
}

// ByState returns all modules in a specific state, sorted by path
func (r *Registry) ByState(state ModuleState) []*Record {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var records []*Record
	for _, record := range r.modules {
		if record.State == state {
			records = append(records, record)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].ResolvedPath < records[j].ResolvedPath
	})

	return records
}
