package tests

import (
	"os"
	"path/filepath"
	"testing"

	"inlay/pkg/driver"
	"inlay/pkg/errors"
	"inlay/pkg/modules"
)

// Module cases are directories under modules/, each built from its
// main.js entry. Directives in a file check that file's transformed
// output; expect_warning directives check the whole build.
func TestModules(t *testing.T) {
	cases, err := os.ReadDir("modules")
	if err != nil {
		t.Fatalf("read modules dir: %v", err)
	}
	if len(cases) == 0 {
		t.Fatal("no module cases found")
	}

	for _, c := range cases {
		if !c.IsDir() {
			continue
		}
		t.Run(c.Name(), func(t *testing.T) {
			dir := filepath.Join("modules", c.Name())
			s := driver.NewSessionWithBaseDir(dir)
			result, err := s.Build("./main.js")
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			diags := result.Diags()
			if errors.HasFatal(diags) {
				t.Fatalf("fatal diagnostics: %v", diags)
			}

			files, err := filepath.Glob(filepath.Join(dir, "*.js"))
			if err != nil {
				t.Fatalf("glob: %v", err)
			}
			var declared []directive
			for _, file := range files {
				content, err := os.ReadFile(file)
				if err != nil {
					t.Fatalf("read %s: %v", file, err)
				}
				directives := parseDirectives(t, file, string(content))
				if len(directives) == 0 {
					continue
				}
				declared = append(declared, directives...)

				rec := result.Record(filepath.Base(file))
				if rec == nil || rec.State != modules.ModuleTransformed {
					t.Fatalf("%s was not transformed", file)
				}
				checkFragments(t, directives, rec.Output)
			}
			if len(declared) == 0 {
				t.Fatalf("case %s declares no expectations", c.Name())
			}
			checkWarnings(t, declared, diags)
		})
	}
}
