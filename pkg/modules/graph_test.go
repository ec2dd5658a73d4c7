package modules

import (
	"reflect"
	"testing"
)

func TestTopoOrderChain(t *testing.T) {
	g := NewGraph()
	g.AddEdge("src/a.js", "src/b.js")
	g.AddEdge("src/b.js", "src/c.js")

	order, cyclic := g.TopoOrder()
	want := []string{"src/c.js", "src/b.js", "src/a.js"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("Expected order %v, got %v", want, order)
	}
	if len(cyclic) != 0 {
		t.Errorf("Expected no cycle members, got %v", cyclic)
	}
}

func TestTopoOrderIndependentModulesSort(t *testing.T) {
	g := NewGraph()
	g.AddModule("src/c.js")
	g.AddModule("src/a.js")
	g.AddModule("src/b.js")

	order, _ := g.TopoOrder()
	want := []string{"src/a.js", "src/b.js", "src/c.js"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("Expected lexicographic order %v, got %v", want, order)
	}
}

func TestTopoOrderDiamond(t *testing.T) {
	g := NewGraph()
	g.AddEdge("src/app.js", "src/left.js")
	g.AddEdge("src/app.js", "src/right.js")
	g.AddEdge("src/left.js", "src/base.js")
	g.AddEdge("src/right.js", "src/base.js")

	order, cyclic := g.TopoOrder()
	want := []string{"src/base.js", "src/left.js", "src/right.js", "src/app.js"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("Expected order %v, got %v", want, order)
	}
	if len(cyclic) != 0 {
		t.Errorf("Expected no cycle members, got %v", cyclic)
	}
}

func TestTopoOrderCycle(t *testing.T) {
	g := NewGraph()
	g.AddEdge("src/x.js", "src/y.js")
	g.AddEdge("src/y.js", "src/x.js")
	g.AddEdge("src/a.js", "src/x.js")

	order, cyclic := g.TopoOrder()

	// The cycle breaks at its smallest member; the consumer outside the
	// cycle still comes after both cycle members.
	want := []string{"src/x.js", "src/y.js", "src/a.js"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("Expected order %v, got %v", want, order)
	}
	wantCyclic := []string{"src/x.js", "src/y.js"}
	if !reflect.DeepEqual(cyclic, wantCyclic) {
		t.Errorf("Expected cycle members %v, got %v", wantCyclic, cyclic)
	}
}

func TestTopoOrderThreeCycle(t *testing.T) {
	g := NewGraph()
	g.AddEdge("src/p.js", "src/q.js")
	g.AddEdge("src/q.js", "src/r.js")
	g.AddEdge("src/r.js", "src/p.js")

	order, cyclic := g.TopoOrder()

	wantCyclic := []string{"src/p.js", "src/q.js", "src/r.js"}
	if !reflect.DeepEqual(cyclic, wantCyclic) {
		t.Errorf("Expected cycle members %v, got %v", wantCyclic, cyclic)
	}
	// p is released first; its supplier q is then unblocked only after
	// r, which waits on p.
	want := []string{"src/p.js", "src/r.js", "src/q.js"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("Expected order %v, got %v", want, order)
	}
}

func TestTopoOrderTwoIndependentCycles(t *testing.T) {
	g := NewGraph()
	g.AddEdge("src/m.js", "src/n.js")
	g.AddEdge("src/n.js", "src/m.js")
	g.AddEdge("src/b.js", "src/c.js")
	g.AddEdge("src/c.js", "src/b.js")

	order, cyclic := g.TopoOrder()

	wantCyclic := []string{"src/b.js", "src/c.js", "src/m.js", "src/n.js"}
	if !reflect.DeepEqual(cyclic, wantCyclic) {
		t.Errorf("Expected cycle members %v, got %v", wantCyclic, cyclic)
	}
	want := []string{"src/b.js", "src/c.js", "src/m.js", "src/n.js"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("Expected order %v, got %v", want, order)
	}
}

func TestTopoOrderSelfEdgeIgnored(t *testing.T) {
	g := NewGraph()
	g.AddModule("src/a.js")
	g.AddEdge("src/a.js", "src/a.js")

	order, cyclic := g.TopoOrder()
	if !reflect.DeepEqual(order, []string{"src/a.js"}) {
		t.Errorf("Expected [src/a.js], got %v", order)
	}
	if len(cyclic) != 0 {
		t.Errorf("Expected no cycle members for self-edge, got %v", cyclic)
	}
}

func TestAddEdgeDeduplicates(t *testing.T) {
	g := NewGraph()
	g.AddEdge("src/a.js", "src/b.js")
	g.AddEdge("src/a.js", "src/b.js")

	suppliers := g.Suppliers("src/a.js")
	if !reflect.DeepEqual(suppliers, []string{"src/b.js"}) {
		t.Errorf("Expected single supplier, got %v", suppliers)
	}

	order, _ := g.TopoOrder()
	want := []string{"src/b.js", "src/a.js"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("Expected order %v, got %v", want, order)
	}
}

func TestGraphModulesAndSuppliers(t *testing.T) {
	g := NewGraph()
	g.AddEdge("src/a.js", "src/c.js")
	g.AddEdge("src/a.js", "src/b.js")
	g.AddModule("src/d.js")

	modules := g.Modules()
	wantModules := []string{"src/a.js", "src/b.js", "src/c.js", "src/d.js"}
	if !reflect.DeepEqual(modules, wantModules) {
		t.Errorf("Expected modules %v, got %v", wantModules, modules)
	}

	suppliers := g.Suppliers("src/a.js")
	wantSuppliers := []string{"src/b.js", "src/c.js"}
	if !reflect.DeepEqual(suppliers, wantSuppliers) {
		t.Errorf("Expected suppliers %v, got %v", wantSuppliers, suppliers)
	}

	if got := g.Suppliers("src/d.js"); len(got) != 0 {
		t.Errorf("Expected no suppliers for src/d.js, got %v", got)
	}
}

func TestTopoOrderIsStable(t *testing.T) {
	build := func() *Graph {
		g := NewGraph()
		g.AddEdge("src/app.js", "src/lib.js")
		g.AddEdge("src/app.js", "src/util.js")
		g.AddEdge("src/lib.js", "src/core.js")
		g.AddEdge("src/util.js", "src/core.js")
		g.AddModule("src/extra.js")
		return g
	}

	first, _ := build().TopoOrder()
	for i := 0; i < 20; i++ {
		order, _ := build().TopoOrder()
		if !reflect.DeepEqual(order, first) {
			t.Fatalf("Order changed between runs: %v vs %v", first, order)
		}
	}
}
