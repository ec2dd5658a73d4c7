package hoister

import (
	"strings"
	"testing"

	"inlay/pkg/hints"
	"inlay/pkg/inliner"
	"inlay/pkg/lexer"
	"inlay/pkg/parser"
	"inlay/pkg/resolver"
	"inlay/pkg/source"
)

func buildModules(t *testing.T, sources map[string]string) (*resolver.Resolver, map[string]*resolver.Module) {
	t.Helper()
	mods := make(map[string]*resolver.Module)
	for spec, src := range sources {
		sf := source.NewMemorySource(spec, src)
		l := lexer.NewLexerFromSource(sf)
		p := parser.NewParser(l)
		program, errs := p.ParseProgram()
		if len(errs) != 0 {
			t.Fatalf("parser errors in %s: %v", spec, errs)
		}
		mods[spec] = resolver.NewModule(spec, program, hints.Scan(program, l.Comments(), sf))
	}
	r := resolver.New(resolver.Hooks{
		Lookup: func(from, request string) (*resolver.Module, bool) {
			m, ok := mods[request]
			return m, ok
		},
	})
	return r, mods
}

// hoistOne inlines and then hoists a single module.
func hoistOne(t *testing.T, src string) (*Result, *resolver.Module) {
	t.Helper()
	r, mods := buildModules(t, map[string]string{"main": src})
	m := mods["main"]
	res, err := inliner.New(r).Transform(m)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	return New(r).Hoist(m, res.Expansions), m
}

func wantContains(t *testing.T, out string, frags ...string) {
	t.Helper()
	for _, frag := range frags {
		if !strings.Contains(out, frag) {
			t.Errorf("output missing %q:\n%s", frag, out)
		}
	}
}

func TestRepeatedPureCallsShareOneEvaluation(t *testing.T) {
	res, m := hoistOne(t, `
// @pure
function rank(n) { return n * 10; }
let v = 3;
let a = rank(v) + 1;
let b = rank(v) + 2;
let z = rank(8);
`)
	out := m.Program.String()
	wantContains(t, out,
		"let _rank1 = rank(v);",
		"let a = (_rank1 + 1);",
		"let b = (_rank1 + 2);",
		"let z = rank(8);",
	)
	if n := strings.Count(out, "rank(v)"); n != 1 {
		t.Errorf("rank(v) evaluated %d times, want 1:\n%s", n, out)
	}
	if len(res.Merges) != 1 {
		t.Fatalf("merges = %d, want 1", len(res.Merges))
	}
	mg := res.Merges[0]
	if mg.Callee != "rank" || mg.Module != "main" || mg.Temp != "_rank1" || mg.Uses != 1 {
		t.Errorf("merge = %+v, want rank via _rank1 with one reuse", mg)
	}
}

func TestManyOccurrencesOneEvaluation(t *testing.T) {
	res, m := hoistOne(t, `
// @pure
function area(n) { return n * n; }
let a = area(6);
let b = area(6);
let c = area(6);
let d = area(6);
`)
	out := m.Program.String()
	wantContains(t, out,
		"let _area1 = area(6);",
		"let a = _area1;",
		"let b = _area1;",
		"let c = _area1;",
		"let d = _area1;",
	)
	if n := strings.Count(out, "area(6)"); n != 1 {
		t.Errorf("area(6) evaluated %d times, want 1:\n%s", n, out)
	}
	if len(res.Merges) != 1 || res.Merges[0].Uses != 3 {
		t.Fatalf("merges = %+v, want one merge reused three times", res.Merges)
	}
}

func TestUnhintedCallsNeverMerge(t *testing.T) {
	res, m := hoistOne(t, `
function cost(n) { return n * 2; }
let a = cost(4) + cost(4);
`)
	out := m.Program.String()
	if n := strings.Count(out, "cost(4)"); n != 2 {
		t.Errorf("cost(4) appears %d times, want both kept:\n%s", n, out)
	}
	if len(res.Merges) != 0 {
		t.Errorf("merges = %+v, want none", res.Merges)
	}
}

func TestInlinedCacheLookupEvaluatesOnce(t *testing.T) {
	r, mods := buildModules(t, map[string]string{
		"store": `
export const cache = new Map();
export function findUser(id) { return { id: id, active: true }; }
/* @inline @pure */
export function getUser(id) { return cache.get(id) ?? findUser(id); }
`,
		"main": `
import { getUser } from "store";
export function act(x) {
	let a = getUser(x)?.active;
	let b = getUser(x)?.active;
	return a && b;
}
`,
	})
	in := inliner.New(r)
	if _, err := in.Transform(mods["store"]); err != nil {
		t.Fatalf("Transform store: %v", err)
	}
	res, err := in.Transform(mods["main"])
	if err != nil {
		t.Fatalf("Transform main: %v", err)
	}
	hres := New(r).Hoist(mods["main"], res.Expansions)

	out := mods["main"].Program.String()
	wantContains(t, out,
		"let _id1 = x;",
		"let _getUser1 = (cache.get(_id1) ?? findUser(_id1));",
		"let a = _getUser1?.active;",
		"let b = _getUser1?.active;",
		"return (a && b);",
	)
	if n := strings.Count(out, "cache.get"); n != 1 {
		t.Errorf("cache.get evaluated %d times, want 1:\n%s", n, out)
	}
	if strings.Contains(out, "_id2") {
		t.Errorf("second argument binding should be dropped:\n%s", out)
	}
	if len(hres.Merges) != 1 {
		t.Fatalf("merges = %d, want 1", len(hres.Merges))
	}
	mg := hres.Merges[0]
	if mg.Callee != "getUser" || mg.Module != "store" || mg.Temp != "_getUser1" || mg.Uses != 1 {
		t.Errorf("merge = %+v, want getUser via _getUser1 with one reuse", mg)
	}
}

func TestUnknownCallBreaksTheRun(t *testing.T) {
	res, m := hoistOne(t, `
// @pure
function area(n) { return n * n; }
function log(m) { return m; }
let a = area(5);
let x = log(a);
let b = area(5);
`)
	out := m.Program.String()
	if n := strings.Count(out, "area(5)"); n != 2 {
		t.Errorf("area(5) appears %d times, want both kept:\n%s", n, out)
	}
	if len(res.Merges) != 0 {
		t.Errorf("merges = %+v, want none", res.Merges)
	}
}

func TestAssignmentToReadNameBreaksTheRun(t *testing.T) {
	res, m := hoistOne(t, `
// @pure
function area(n) { return n * n; }
let v = 2;
let a = area(v);
v = 3;
let b = area(v);
`)
	out := m.Program.String()
	if n := strings.Count(out, "area(v)"); n != 2 {
		t.Errorf("area(v) appears %d times, want both kept:\n%s", n, out)
	}
	if len(res.Merges) != 0 {
		t.Errorf("merges = %+v, want none", res.Merges)
	}
}

func TestMemberWritesInvalidateMemberReaders(t *testing.T) {
	res, m := hoistOne(t, `
// @pure
function rank(n) { return n * 10; }
let obj = { a: 1 };
let p = rank(obj.a);
obj.a = 2;
let q = rank(obj.a);
let s = rank(7);
obj.a = 3;
let u = rank(7);
`)
	out := m.Program.String()
	if n := strings.Count(out, "rank(obj.a)"); n != 2 {
		t.Errorf("rank(obj.a) appears %d times, want both kept:\n%s", n, out)
	}
	wantContains(t, out, "let _rank1 = rank(7);", "let s = _rank1;", "let u = _rank1;")
	if n := strings.Count(out, "rank(7)"); n != 1 {
		t.Errorf("rank(7) evaluated %d times, want 1:\n%s", n, out)
	}
	if len(res.Merges) != 1 || res.Merges[0].Callee != "rank" {
		t.Fatalf("merges = %+v, want only the plain-argument calls merged", res.Merges)
	}
}

func TestCapturedResultReused(t *testing.T) {
	res, m := hoistOne(t, `
/* @inline @pure */
function clamp(n) { if (n < 0) { return 0; } return n; }
let x = 5;
let a = clamp(x);
let b = clamp(x);
`)
	out := m.Program.String()
	wantContains(t, out,
		"let _n1 = x;",
		"let _clamp1;",
		"let a = _clamp1;",
		"let b = _clamp1;",
	)
	for _, gone := range []string{"_n2", "_clamp3", "_clamp4"} {
		if strings.Contains(out, gone) {
			t.Errorf("second expansion should be removed, found %q:\n%s", gone, out)
		}
	}
	if n := strings.Count(out, "_clamp2: {"); n != 1 {
		t.Errorf("labeled capture appears %d times, want 1:\n%s", n, out)
	}
	if len(res.Merges) != 1 || res.Merges[0].Temp != "_clamp1" || res.Merges[0].Uses != 1 {
		t.Fatalf("merges = %+v, want one reuse of _clamp1", res.Merges)
	}
}

func TestBlocksDoNotShareMerges(t *testing.T) {
	res, m := hoistOne(t, `
// @pure
function area(n) { return n * n; }
let r = 0;
if (true) { r = area(3); }
{ let s = area(3); }
`)
	out := m.Program.String()
	if n := strings.Count(out, "area(3)"); n != 2 {
		t.Errorf("area(3) appears %d times, want one per block:\n%s", n, out)
	}
	if len(res.Merges) != 0 {
		t.Errorf("merges = %+v, want none", res.Merges)
	}
}

func TestEffectBeforeFirstOccurrenceAnchorsLater(t *testing.T) {
	res, m := hoistOne(t, `
function touch() { return 1; }
// @pure
function area(n) { return n * n; }
let a = [touch(), area(2)];
let b = area(2);
let c = area(2);
`)
	out := m.Program.String()
	wantContains(t, out,
		"let a = [touch(), area(2)];",
		"let _area1 = area(2);",
		"let b = _area1;",
		"let c = _area1;",
	)
	if n := strings.Count(out, "area(2)"); n != 2 {
		t.Errorf("area(2) appears %d times, want the pinned one plus one evaluation:\n%s", n, out)
	}
	if len(res.Merges) != 1 || res.Merges[0].Uses != 1 {
		t.Fatalf("merges = %+v, want the later occurrences merged once", res.Merges)
	}
}

func TestNestedPureArgumentsCascade(t *testing.T) {
	res, m := hoistOne(t, `
/* @inline @pure */
function area(n) { return n * n; }
// @pure
function rank(v) { return v + 1; }
let v = 2;
let p = area(rank(v));
let q = area(rank(v));
`)
	out := m.Program.String()
	wantContains(t, out,
		"let _rank1 = rank(v);",
		"let _n1 = _rank1;",
		"let _area1 = (_n1 * _n1);",
		"let p = _area1;",
		"let q = _area1;",
	)
	if strings.Contains(out, "_n2") {
		t.Errorf("second argument binding should be dropped:\n%s", out)
	}
	if len(res.Merges) != 2 {
		t.Fatalf("merges = %+v, want rank and area both merged", res.Merges)
	}
	if res.Merges[0].Callee != "rank" || res.Merges[1].Callee != "area" {
		t.Errorf("merge order = %s then %s, want rank then area",
			res.Merges[0].Callee, res.Merges[1].Callee)
	}
}

func TestConditionalOccurrencesStay(t *testing.T) {
	res, m := hoistOne(t, `
// @pure
function area(n) { return n * n; }
let flag = true;
let a = flag && area(4);
let b = area(4);
let c = flag && area(4);
`)
	out := m.Program.String()
	if n := strings.Count(out, "area(4)"); n != 3 {
		t.Errorf("area(4) appears %d times, want all kept:\n%s", n, out)
	}
	if len(res.Merges) != 0 {
		t.Errorf("merges = %+v, want none", res.Merges)
	}
}

func TestInnerBlockWritesInvalidate(t *testing.T) {
	res, m := hoistOne(t, `
// @pure
function area(n) { return n * n; }
let v = 1;
let a = area(v);
if (true) { v = 2; }
let b = area(v);
`)
	out := m.Program.String()
	if n := strings.Count(out, "area(v)"); n != 2 {
		t.Errorf("area(v) appears %d times, want both kept:\n%s", n, out)
	}
	if len(res.Merges) != 0 {
		t.Errorf("merges = %+v, want none", res.Merges)
	}
}

func TestInlinedBodiesKillPrecisely(t *testing.T) {
	res, m := hoistOne(t, `
let count = 0;
/* @inline */
function bump(n) { count = count + n; return count; }
// @pure
function area(n) { return n * n; }
let a = area(1);
let p = area(count);
let t = bump(2);
let b = area(1);
let q = area(count);
`)
	out := m.Program.String()
	wantContains(t, out,
		"let _area1 = area(1);",
		"let a = _area1;",
		"(count = (count + _n1));",
		"let b = _area1;",
	)
	if n := strings.Count(out, "area(count)"); n != 2 {
		t.Errorf("area(count) appears %d times, want both kept:\n%s", n, out)
	}
	if n := strings.Count(out, "area(1)"); n != 1 {
		t.Errorf("area(1) evaluated %d times, want 1:\n%s", n, out)
	}
	if len(res.Merges) != 1 || res.Merges[0].Callee != "area" {
		t.Fatalf("merges = %+v, want only the count-independent calls merged", res.Merges)
	}
}
