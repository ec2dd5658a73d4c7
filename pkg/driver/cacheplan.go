package driver

import (
	"inlay/pkg/cache"
	"inlay/pkg/modules"
)

// cachePlan decides, before the transform phase starts, which modules
// can be restored from the cache and which must be rewritten.
type cachePlan struct {
	keys    map[string]cache.Digest
	entries map[string]*cache.Entry
	need    map[string]bool
}

// planCache keys every parsed module by its inline closure and probes
// the store. A miss forces the module and its whole supplier closure
// into the transform set, because the inliner can only splice bodies
// out of modules it transformed during this build. A hit with no miss
// downstream keeps its stored output.
//
// Returns nil when the session has no cache attached.
func (s *Session) planCache(order []string, graph *modules.Graph) *cachePlan {
	if s.store == nil {
		return nil
	}
	plan := &cachePlan{
		keys:    make(map[string]cache.Digest),
		entries: make(map[string]*cache.Entry),
		need:    make(map[string]bool),
	}

	// Keys build up in supplier order, so each consumer finds its
	// suppliers' keys already computed.
	for _, path := range order {
		rec := s.registry.Get(path)
		if rec == nil || rec.State != modules.ModuleParsed {
			continue
		}
		var suppliers []cache.Digest
		for _, sup := range graph.Suppliers(path) {
			key, ok := plan.keys[sup]
			if !ok {
				// A cycle back edge or an unparsable supplier. The
				// consumer cannot splice a body from either without a
				// diagnostic, and diagnostics block caching, so the
				// missing key cannot make a stale entry reachable.
				continue
			}
			suppliers = append(suppliers, key)
		}
		plan.keys[path] = cache.Key(s.storeFP, cache.HashContent(rec.Source.Content), suppliers)
	}

	for _, path := range order {
		key, ok := plan.keys[path]
		if !ok {
			continue
		}
		entry := new(cache.Entry)
		found, err := s.store.Get(key, entry)
		if err != nil {
			debugPrintf("// [Driver] cache read for %s: %v\n", path, err)
		}
		if found {
			plan.entries[path] = entry
			continue
		}
		plan.force(graph, path)
	}
	return plan
}

// restore reports whether path can skip its transform, handing back the
// stored entry when it can.
func (p *cachePlan) restore(path string) (*cache.Entry, bool) {
	if p == nil || p.need[path] {
		return nil, false
	}
	entry := p.entries[path]
	return entry, entry != nil
}

// force marks path and its supplier closure for transformation. The
// need map doubles as the visited set, which keeps cycles finite.
func (p *cachePlan) force(graph *modules.Graph, path string) {
	if p.need[path] {
		return
	}
	p.need[path] = true
	for _, sup := range graph.Suppliers(path) {
		p.force(graph, sup)
	}
}
