package driver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"inlay/pkg/cache"
	"inlay/pkg/errors"
	"inlay/pkg/modules"
)

// buildMemory runs a full build over in-memory sources and fails the
// test when the entry itself cannot be resolved.
func buildMemory(t *testing.T, entry string, sources map[string]string) *Result {
	t.Helper()
	mem := modules.NewMemoryResolver("test")
	for path, src := range sources {
		mem.AddModule(path, src)
	}
	result, err := NewSessionWithResolvers(mem).Build(entry)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return result
}

func record(t *testing.T, result *Result, path string) *modules.Record {
	t.Helper()
	rec := result.Record(path)
	if rec == nil {
		t.Fatalf("no record for %s, records: %v", path, result.Order)
	}
	return rec
}

func wantContains(t *testing.T, out string, frags ...string) {
	t.Helper()
	for _, frag := range frags {
		if !strings.Contains(out, frag) {
			t.Errorf("output missing %q:\n%s", frag, out)
		}
	}
}

func TestTransformStringInlinesHintedCall(t *testing.T) {
	out, diags := TransformString(`
// @inline
function inc(n) { return n + 1; }
let y = inc(4);
`)
	wantContains(t, out, "let _n1 = 4;", "let y = _n1 + 1;")
	if len(diags) != 0 {
		t.Errorf("diags = %v, want none", diags)
	}
}

func TestBuildOrdersSupplierBeforeConsumer(t *testing.T) {
	result := buildMemory(t, "main.js", map[string]string{
		"main.js": "import { inc } from \"./util.js\";\nlet a = inc(1);\n",
		"util.js": "// @inline\nexport function inc(n) { return n + 1; }\n",
	})

	// Lexicographic order alone would put main.js first; the inline
	// edge has to flip it.
	wantOrder := []string{"util.js", "main.js"}
	for i, path := range wantOrder {
		if i >= len(result.Order) || result.Order[i] != path {
			t.Fatalf("order = %v, want %v", result.Order, wantOrder)
		}
	}
	if len(result.Cyclic) != 0 {
		t.Errorf("cyclic = %v, want none", result.Cyclic)
	}

	main := record(t, result, "main.js")
	if main.State != modules.ModuleTransformed {
		t.Fatalf("main state = %v, want transformed", main.State)
	}
	wantContains(t, main.Output, "let _n1 = 1;", "let a = _n1 + 1;")
	if strings.Contains(main.Output, "inc(1)") {
		t.Errorf("call survived inlining:\n%s", main.Output)
	}
	if len(main.Expansions) != 1 || main.Expansions[0].Module != "util.js" {
		t.Errorf("expansions = %+v, want one from util.js", main.Expansions)
	}
	if result.Failed() {
		t.Errorf("build reported failure, diags: %v", result.Diags())
	}
}

func TestBuildFollowsReExportChain(t *testing.T) {
	result := buildMemory(t, "main.js", map[string]string{
		"main.js": "import { inc } from \"./hub.js\";\nlet a = inc(5);\n",
		"hub.js":  "export { inc } from \"./util.js\";\n",
		"util.js": "// @inline\nexport function inc(n) { return n + 1; }\n",
	})

	wantOrder := []string{"util.js", "hub.js", "main.js"}
	for i, path := range wantOrder {
		if i >= len(result.Order) || result.Order[i] != path {
			t.Fatalf("order = %v, want %v", result.Order, wantOrder)
		}
	}

	main := record(t, result, "main.js")
	wantContains(t, main.Output, "let _n1 = 5;", "let a = _n1 + 1;")
	if len(main.Expansions) != 1 || main.Expansions[0].Module != "util.js" {
		t.Errorf("expansions = %+v, want one defined in util.js", main.Expansions)
	}
}

func TestBuildSiteHintOrdersSupplier(t *testing.T) {
	result := buildMemory(t, "main.js", map[string]string{
		"main.js": "import { triple } from \"./util.js\";\nlet t = /* @inline */ triple(7);\n",
		"util.js": "export function triple(n) { return n * 3; }\n",
	})

	// util.js exports nothing inline-hinted; only the call-site hint
	// in main.js demands the supplier-first order.
	if len(result.Order) != 2 || result.Order[0] != "util.js" {
		t.Fatalf("order = %v, want util.js first", result.Order)
	}
	if len(result.Cyclic) != 0 {
		t.Errorf("cyclic = %v, want none", result.Cyclic)
	}

	main := record(t, result, "main.js")
	wantContains(t, main.Output, "let _n1 = 7;", "let t = _n1 * 3;")
	if len(main.Diags) != 0 {
		t.Errorf("diags = %v, want none", main.Diags)
	}
}

func TestBuildCycleBreaksDeterministically(t *testing.T) {
	result := buildMemory(t, "main.js", map[string]string{
		"main.js": "import { inc } from \"./util.js\";\n// @inline\nexport function dec(n) { return n - 1; }\nlet a = inc(1);\n",
		"util.js": "import { dec } from \"./main.js\";\n// @inline\nexport function inc(n) { return n + 1; }\nlet b = dec(2);\n",
	})

	wantCyclic := []string{"main.js", "util.js"}
	for i, path := range wantCyclic {
		if i >= len(result.Cyclic) || result.Cyclic[i] != path {
			t.Fatalf("cyclic = %v, want %v", result.Cyclic, wantCyclic)
		}
	}
	if len(result.Order) != 2 || result.Order[0] != "main.js" {
		t.Fatalf("order = %v, want the smallest-named cycle member first", result.Order)
	}

	// The forced member transforms before its supplier settles, so its
	// cross-module call stays a call and is diagnosed.
	main := record(t, result, "main.js")
	if len(main.Expansions) != 0 {
		t.Errorf("main expansions = %+v, want none", main.Expansions)
	}
	wantContains(t, main.Output, "inc(1)")
	foundCycle := false
	for _, diag := range main.Diags {
		if _, ok := diag.(*errors.CycleError); ok {
			foundCycle = true
		}
	}
	if !foundCycle {
		t.Errorf("main diags = %v, want a cycle diagnostic", main.Diags)
	}

	// The later member sees a settled supplier and inlines normally.
	util := record(t, result, "util.js")
	if len(util.Expansions) != 1 || util.Expansions[0].Module != "main.js" {
		t.Errorf("util expansions = %+v, want one from main.js", util.Expansions)
	}
	wantContains(t, util.Output, "let _n1 = 2;", "let b = _n1 - 1;")

	// Cycles are warnings, not failures.
	if result.Failed() {
		t.Errorf("build reported failure, diags: %v", result.Diags())
	}
}

func TestBuildContinuesPastParseFailure(t *testing.T) {
	result := buildMemory(t, "main.js", map[string]string{
		"main.js":   "import { x } from \"./broken.js\";\nlet y = 1;\n",
		"broken.js": "let = ;\n",
	})

	broken := record(t, result, "broken.js")
	if broken.State != modules.ModuleFailed {
		t.Fatalf("broken state = %v, want failed", broken.State)
	}
	if broken.Err == nil {
		t.Error("Expected broken record to carry its parse error")
	}
	if !errors.HasFatal(broken.Diags) {
		t.Errorf("broken diags = %v, want a fatal syntax error", broken.Diags)
	}

	main := record(t, result, "main.js")
	if main.State != modules.ModuleTransformed {
		t.Errorf("main state = %v, want transformed", main.State)
	}
	if !result.Failed() {
		t.Error("Expected build to report failure")
	}
}

func TestBuildDiagnosesUnresolvableImport(t *testing.T) {
	result := buildMemory(t, "main.js", map[string]string{
		"main.js": "import { x } from \"./missing.js\";\nlet y = 2;\n",
	})

	main := record(t, result, "main.js")
	if main.State != modules.ModuleTransformed {
		t.Fatalf("main state = %v, want transformed", main.State)
	}
	if len(main.Diags) != 1 {
		t.Fatalf("diags = %v, want exactly one", main.Diags)
	}
	re, ok := main.Diags[0].(*errors.ResolveError)
	if !ok {
		t.Fatalf("diag = %v, want ResolveError", main.Diags[0])
	}
	if re.Specifier != "./missing.js" {
		t.Errorf("specifier = %q, want ./missing.js", re.Specifier)
	}
	if re.Pos().Line != 1 || re.Pos().Source == nil {
		t.Errorf("pos = %+v, want line 1 with source attached", re.Pos())
	}
	if !result.Failed() {
		t.Error("Expected build to report failure")
	}
}

func TestBuildEntryNotFound(t *testing.T) {
	mem := modules.NewMemoryResolver("test")
	result, err := NewSessionWithResolvers(mem).Build("main.js")
	if err == nil {
		t.Fatal("Expected entry resolution to fail")
	}
	if result != nil {
		t.Errorf("result = %+v, want nil", result)
	}
	if _, ok := err.(*errors.ResolveError); !ok {
		t.Errorf("err = %T, want *errors.ResolveError", err)
	}
}

func TestBuildTwiceIsClean(t *testing.T) {
	mem := modules.NewMemoryResolver("test")
	mem.AddModule("main.js", "import { inc } from \"./util.js\";\nlet a = inc(1);\n")
	mem.AddModule("util.js", "// @inline\nexport function inc(n) { return n + 1; }\n")
	s := NewSessionWithResolvers(mem)

	first, err := s.Build("main.js")
	if err != nil {
		t.Fatalf("first Build: %v", err)
	}
	second, err := s.Build("main.js")
	if err != nil {
		t.Fatalf("second Build: %v", err)
	}

	if len(first.Records) != 2 || len(second.Records) != 2 {
		t.Fatalf("records = %d then %d, want 2 each", len(first.Records), len(second.Records))
	}
	a := record(t, first, "main.js").Output
	b := record(t, second, "main.js").Output
	if a != b {
		t.Errorf("rebuild changed output:\nfirst:\n%s\nsecond:\n%s", a, b)
	}
}

func TestRequestForSpelling(t *testing.T) {
	tests := []struct {
		from   string
		target string
		want   string
	}{
		{"main.js", "util.js", "./util.js"},
		{"src/app.js", "src/lib/util.js", "./lib/util.js"},
		{"src/deep/app.js", "shared/base.js", "../../shared/base.js"},
	}
	for _, tt := range tests {
		if got := requestFor(tt.from, tt.target); got != tt.want {
			t.Errorf("requestFor(%q, %q) = %q, want %q", tt.from, tt.target, got, tt.want)
		}
	}
}

func TestTransformFileAndWriteOutputs(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"main.js": "import { inc } from \"./util.js\";\nlet a = inc(1);\n",
		"util.js": "// @inline\nexport function inc(n) { return n + 1; }\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("writing fixture %s: %v", name, err)
		}
	}

	out, diags := TransformFile(filepath.Join(dir, "main.js"))
	wantContains(t, out, "let _n1 = 1;", "let a = _n1 + 1;")
	if errors.HasFatal(diags) {
		t.Fatalf("diags = %v, want no fatal", diags)
	}

	s := NewSessionWithBaseDir(dir)
	result, err := s.Build("./main.js")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	outDir := t.TempDir()
	if err := s.WriteOutputs(result, outDir); err != nil {
		t.Fatalf("WriteOutputs: %v", err)
	}

	written, err := os.ReadFile(filepath.Join(outDir, "main.js"))
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	wantContains(t, string(written), "let a = _n1 + 1;")
	util, err := os.ReadFile(filepath.Join(outDir, "util.js"))
	if err != nil {
		t.Fatalf("reading util output: %v", err)
	}
	wantContains(t, string(util), "export function inc")
}

func TestAnalyzeReportsPlanWithoutTransforming(t *testing.T) {
	mem := modules.NewMemoryResolver("test")
	mem.AddModule("main.js", "import { inc } from \"./util.js\";\nlet a = inc(1);\n")
	mem.AddModule("util.js", "// @inline\nexport function inc(x) { return x + 1; }\n")

	result, err := NewSessionWithResolvers(mem).Analyze("main.js")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(result.Order) != 2 || result.Order[0] != "util.js" {
		t.Errorf("Order = %v, want util.js first", result.Order)
	}
	sups := result.Suppliers["main.js"]
	if len(sups) != 1 || sups[0] != "util.js" {
		t.Errorf("Suppliers[main.js] = %v, want [util.js]", sups)
	}
	rec := record(t, result, "main.js")
	if rec.State != modules.ModuleParsed || rec.Output != "" {
		t.Errorf("Analyze must stop before transforming, state=%v output=%q", rec.State, rec.Output)
	}
}

// buildCached runs a build over sources with the given store attached.
func buildCached(t *testing.T, store *cache.Store, entry string, sources map[string]string) *Result {
	t.Helper()
	mem := modules.NewMemoryResolver("test")
	for path, src := range sources {
		mem.AddModule(path, src)
	}
	s := NewSessionWithResolvers(mem)
	s.SetCache(store, cache.Fingerprint("", ""))
	result, err := s.Build(entry)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return result
}

func TestBuildReusesCachedOutput(t *testing.T) {
	store, err := cache.Open(t.TempDir())
	if err != nil {
		t.Fatalf("cache.Open: %v", err)
	}
	sources := map[string]string{
		"main.js": "import { inc } from \"./util.js\";\nlet a = inc(1);\n",
		"util.js": "// @inline\nexport function inc(x) { return x + 1; }\n",
	}

	first := buildCached(t, store, "main.js", sources)
	if record(t, first, "main.js").Cached || record(t, first, "util.js").Cached {
		t.Fatal("first build must transform everything")
	}
	firstOut := record(t, first, "main.js").Output

	second := buildCached(t, store, "main.js", sources)
	mainRec := record(t, second, "main.js")
	if !mainRec.Cached || !record(t, second, "util.js").Cached {
		t.Error("second build should restore both modules from the cache")
	}
	if mainRec.Output != firstOut {
		t.Errorf("cached output differs:\n%s\nvs\n%s", mainRec.Output, firstOut)
	}
	if len(mainRec.Expansions) != 0 {
		t.Error("a cached record carries no expansion details")
	}

	// Editing the supplier must invalidate the consumer too, because
	// the consumer's output contains the supplier's body.
	sources["util.js"] = "// @inline\nexport function inc(x) { return x + 2; }\n"
	third := buildCached(t, store, "main.js", sources)
	for _, path := range []string{"main.js", "util.js"} {
		if record(t, third, path).Cached {
			t.Errorf("%s should retransform after the supplier edit", path)
		}
	}
	wantContains(t, record(t, third, "main.js").Output, "let a = _n1 + 2;")
}

func TestBuildNeverCachesModulesWithWarnings(t *testing.T) {
	store, err := cache.Open(t.TempDir())
	if err != nil {
		t.Fatalf("cache.Open: %v", err)
	}
	sources := map[string]string{
		"main.js": "import { loop } from \"./util.js\";\nlet a = loop(3);\n",
		"util.js": "// @inline\nexport function loop(n) { return loop(n - 1); }\n",
	}

	buildCached(t, store, "main.js", sources)
	second := buildCached(t, store, "main.js", sources)

	utilRec := record(t, second, "util.js")
	if utilRec.Cached {
		t.Error("a module that produced warnings must retransform on every build")
	}
	var cycle *errors.CycleError
	for _, diag := range utilRec.Diags {
		if c, ok := diag.(*errors.CycleError); ok {
			cycle = c
		}
	}
	if cycle == nil {
		t.Errorf("expected the recursion warning to reappear, diags: %v", utilRec.Diags)
	}
	// The consumer stayed clean, so it may come from the cache even
	// while its supplier retransforms.
	if !record(t, second, "main.js").Cached {
		t.Error("a clean consumer of a stable supplier should hit the cache")
	}
}
