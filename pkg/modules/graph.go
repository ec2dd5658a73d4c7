package modules

import (
	"sort"
)

// Graph records which modules must be transformed before which. An edge
// from consumer to supplier means the consumer imports something the
// supplier provides in inlinable form, so the supplier's bodies have to
// reach their final shape first.
//
// The build pipeline constructs the graph after parsing completes and
// reads it from a single goroutine; it is not safe for concurrent use.
type Graph struct {
	nodes map[string]bool
	edges map[string]map[string]bool // consumer -> set of suppliers
}

// NewGraph creates an empty dependency graph
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[string]bool),
		edges: make(map[string]map[string]bool),
	}
}

// AddModule adds a module with no edges
func (g *Graph) AddModule(path string) {
	g.nodes[path] = true
}

// AddEdge records that consumer needs supplier transformed first.
// Self-edges are ignored; recursion inside one module is handled at the
// call-site level, not by ordering.
func (g *Graph) AddEdge(consumer, supplier string) {
	if consumer == supplier {
		return
	}
	g.nodes[consumer] = true
	g.nodes[supplier] = true

	set := g.edges[consumer]
	if set == nil {
		set = make(map[string]bool)
		g.edges[consumer] = set
	}
	set[supplier] = true
}

// Modules returns all module paths in sorted order
func (g *Graph) Modules() []string {
	paths := make([]string, 0, len(g.nodes))
	for path := range g.nodes {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Suppliers returns the modules consumer waits on, sorted
func (g *Graph) Suppliers(consumer string) []string {
	set := g.edges[consumer]
	suppliers := make([]string, 0, len(set))
	for supplier := range set {
		suppliers = append(suppliers, supplier)
	}
	sort.Strings(suppliers)
	return suppliers
}

// TopoOrder returns every module in an order that places suppliers
// before their consumers. Ties break lexicographically, so the order is
// stable across runs.
//
// When the graph has cycles, the members of each cycle are reported in
// the second return value and the deadlock is broken at the
// smallest-named member, whose unmet edges are disabled. Everything
// downstream of a cycle still waits for the full cycle.
func (g *Graph) TopoOrder() (order []string, cyclic []string) {
	waits := make(map[string]int, len(g.nodes))
	consumers := make(map[string][]string)
	for node := range g.nodes {
		waits[node] = 0
	}
	for consumer, suppliers := range g.edges {
		for supplier := range suppliers {
			waits[consumer]++
			consumers[supplier] = append(consumers[supplier], consumer)
		}
	}

	released := make(map[string]bool)
	inCycle := make(map[string]bool)

	for len(order) < len(g.nodes) {
		// Pick the smallest-named module with no unmet suppliers.
		next := ""
		for node, w := range waits {
			if released[node] || w > 0 {
				continue
			}
			if next == "" || node < next {
				next = node
			}
		}

		if next == "" {
			// Every remaining module waits on a cycle. Record the
			// members, then release the smallest-named one.
			for _, node := range g.cycleMembers(released) {
				if !inCycle[node] {
					inCycle[node] = true
					cyclic = append(cyclic, node)
				}
			}
			for node := range waits {
				if released[node] || !inCycle[node] {
					continue
				}
				if next == "" || node < next {
					next = node
				}
			}
		}

		released[next] = true
		order = append(order, next)
		for _, consumer := range consumers[next] {
			waits[consumer]--
		}
	}

	sort.Strings(cyclic)
	return order, cyclic
}

// cycleMembers finds the modules sitting on dependency cycles among
// those not yet released, using Tarjan's strongly connected components.
func (g *Graph) cycleMembers(released map[string]bool) []string {
	type sccState struct {
		index   int
		low     int
		onStack bool
	}

	counter := 0
	states := make(map[string]*sccState)
	var stack []string
	var members []string

	var strong func(node string)
	strong = func(node string) {
		st := &sccState{index: counter, low: counter}
		counter++
		states[node] = st
		stack = append(stack, node)
		st.onStack = true

		for supplier := range g.edges[node] {
			if released[supplier] {
				continue
			}
			sup := states[supplier]
			if sup == nil {
				strong(supplier)
				if l := states[supplier].low; l < st.low {
					st.low = l
				}
			} else if sup.onStack {
				if sup.index < st.low {
					st.low = sup.index
				}
			}
		}

		if st.low == st.index {
			var scc []string
			for {
				n := len(stack) - 1
				top := stack[n]
				stack = stack[:n]
				states[top].onStack = false
				scc = append(scc, top)
				if top == node {
					break
				}
			}
			if len(scc) > 1 {
				members = append(members, scc...)
			}
		}
	}

	for node := range g.nodes {
		if !released[node] && states[node] == nil {
			strong(node)
		}
	}

	sort.Strings(members)
	return members
}
