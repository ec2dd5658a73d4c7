package scopes

import (
	"fmt"

	"inlay/pkg/parser"
)

// Namer manufactures temporary names for one module. It is never
// shared across modules; each module's transform starts a fresh one.
//
// Names follow _<base><ordinal>, where base comes from the callee and
// the ordinal counts synthesized names per base within one block. When
// the plain name collides with anything visible at the splice point a
// $n suffix is appended, so repeated expansions can never shadow each
// other or the surrounding code.
type Namer struct {
	ordinals map[ordinalKey]int
}

type ordinalKey struct {
	scope *Scope
	base  string
}

// NewNamer returns a namer with no ordinals handed out yet.
func NewNamer() *Namer {
	return &Namer{ordinals: make(map[ordinalKey]int)}
}

// Temp returns a fresh temporary name for a value derived from callee
// and records it in scope.
func (n *Namer) Temp(scope *Scope, callee parser.Expression) string {
	return n.TempFor(scope, CalleeBase(callee))
}

// TempFor is Temp with the base name supplied directly.
func (n *Namer) TempFor(scope *Scope, base string) string {
	key := ordinalKey{scope: scope, base: base}
	n.ordinals[key]++
	name := hygienic(scope, fmt.Sprintf("_%s%d", base, n.ordinals[key]))
	scope.Define(name, SynthBinding, nil)
	return name
}

// Fresh keeps name when nothing visible in scope uses it, otherwise
// appends the first free $n suffix. Either way the result is recorded
// in scope, so later calls see it as taken.
func (n *Namer) Fresh(scope *Scope, name string) string {
	out := hygienic(scope, name)
	scope.Define(out, SynthBinding, nil)
	return out
}

// Alias picks the local spelling for a binding injected into home, a
// scope enclosing at. The plain base is kept when nothing visible at
// the use site takes it; otherwise the first free _<base><n> is used.
// The result is recorded in home so the whole module sees it.
func (n *Namer) Alias(at, home *Scope, base string) string {
	name := base
	if taken(at, name) {
		for i := 1; ; i++ {
			name = fmt.Sprintf("_%s%d", base, i)
			if !taken(at, name) {
				break
			}
		}
	}
	home.Define(name, SynthBinding, nil)
	return name
}

func hygienic(scope *Scope, name string) string {
	if !taken(scope, name) {
		return name
	}
	for i := 1; ; i++ {
		cand := fmt.Sprintf("%s$%d", name, i)
		if !taken(scope, cand) {
			return cand
		}
	}
}

func taken(scope *Scope, name string) bool {
	return IsReserved(name) || scope.Has(name)
}

// CalleeBase derives the base of a temporary name from the callee
// expression: getUser stays getUser, cache.get becomes cache_get.
// Callees without a stable spelling fall back to "fn".
func CalleeBase(expr parser.Expression) string {
	switch e := expr.(type) {
	case *parser.Identifier:
		return e.Value
	case *parser.MemberExpression:
		return CalleeBase(e.Object) + "_" + e.Property.Value
	}
	return "fn"
}
