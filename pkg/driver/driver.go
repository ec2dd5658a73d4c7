// Package driver wires the pipeline together. A resolver chain turns
// import requests into sources, a parallel parse phase builds one
// resolver.Module per file, the inline dependency graph orders the
// modules suppliers-first, and the inliner and hoister rewrite each
// module in that order.
package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"inlay/pkg/cache"
	"inlay/pkg/errors"
	"inlay/pkg/hints"
	"inlay/pkg/lexer"
	"inlay/pkg/modules"
	"inlay/pkg/parser"
	"inlay/pkg/resolver"
	"inlay/pkg/source"
)

const debugDriver = false

func debugPrintf(format string, args ...interface{}) {
	if debugDriver {
		fmt.Printf(format, args...)
	}
}

// Session represents a configured build setup. The resolver chain, the
// hint scanner and the parallelism settings persist between builds, so
// one session can build several entry points. Parsed modules do not
// persist; every Build starts from an empty registry.
//
// A session is not safe for concurrent use; run concurrent builds on
// separate sessions.
type Session struct {
	resolvers []modules.Resolver
	registry  *modules.Registry
	scanner   *hints.Scanner
	jobs      int
	links     map[string]map[string]string // module path -> request -> resolved path
	store     *cache.Store
	storeFP   cache.Digest
}

// NewSession creates a session resolving file modules from the current
// working directory.
func NewSession() *Session {
	return NewSessionWithBaseDir(".")
}

// NewSessionWithBaseDir creates a session resolving file modules
// relative to baseDir. Tools and tests use this to pin the module root
// without changing the global working directory.
func NewSessionWithBaseDir(baseDir string) *Session {
	return NewSessionWithResolvers(modules.NewOSFileSystemResolver(baseDir))
}

// NewSessionWithResolvers creates a session with an explicit resolver
// chain.
func NewSessionWithResolvers(resolvers ...modules.Resolver) *Session {
	s := &Session{
		registry: modules.NewRegistry(),
		links:    make(map[string]map[string]string),
	}
	for _, r := range resolvers {
		s.AddResolver(r)
	}
	return s
}

// AddResolver adds a resolver to the chain. The chain stays sorted by
// priority; among equal priorities, resolvers added first are tried
// first.
func (s *Session) AddResolver(r modules.Resolver) {
	s.resolvers = append(s.resolvers, r)
	sort.SliceStable(s.resolvers, func(i, j int) bool {
		return s.resolvers[i].Priority() < s.resolvers[j].Priority()
	})
}

// SetScanner replaces the hint scanner, for configurations that respell
// the markers. A nil scanner restores the default spellings.
func (s *Session) SetScanner(sc *hints.Scanner) {
	s.scanner = sc
}

// SetJobs caps how many modules parse concurrently. Zero or a negative
// value restores the default of one worker per CPU.
func (s *Session) SetJobs(n int) {
	s.jobs = n
}

// SetCache attaches a transform output cache. The fingerprint must
// cover every configuration input that changes transform output, which
// today means the marker spellings; cache.Fingerprint computes it. A
// nil store disables caching.
func (s *Session) SetCache(store *cache.Store, fingerprint cache.Digest) {
	s.store = store
	s.storeFP = fingerprint
}

func (s *Session) parseJobs() int {
	if s.jobs > 0 {
		return s.jobs
	}
	return runtime.NumCPU()
}

// provide returns the registry record behind a request seen from the
// module at fromPath, resolving and registering it on first sight. The
// empty fromPath resolves the build entry.
func (s *Session) provide(request, fromPath string) (*modules.Record, error) {
	if fromPath != "" {
		if path, ok := s.linked(fromPath, request); ok {
			return s.registry.Get(path), nil
		}
	}
	resolved, err := s.resolve(request, fromPath)
	if err != nil {
		return nil, err
	}
	rec := s.registry.Get(resolved.ResolvedPath)
	if rec == nil {
		rec = &modules.Record{
			Specifier:    request,
			ResolvedPath: resolved.ResolvedPath,
			State:        modules.ModuleResolved,
			Source:       resolved.Source,
		}
		s.registry.Set(resolved.ResolvedPath, rec)
	}
	if fromPath != "" {
		s.link(fromPath, request, resolved.ResolvedPath)
	}
	return rec, nil
}

// resolve walks the resolver chain in priority order and returns the
// first answer.
func (s *Session) resolve(request, fromPath string) (*modules.ResolvedSource, error) {
	var firstErr error
	for _, r := range s.resolvers {
		if !r.CanResolve(request) {
			continue
		}
		resolved, err := r.Resolve(request, fromPath)
		if err == nil {
			debugPrintf("// [Driver] %s resolved %q -> %s\n", r.Name(), request, resolved.ResolvedPath)
			return resolved, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return nil, fmt.Errorf("no resolver accepts specifier %q", request)
}

func (s *Session) link(from, request, path string) {
	set := s.links[from]
	if set == nil {
		set = make(map[string]string)
		s.links[from] = set
	}
	set[request] = path
}

func (s *Session) linked(from, request string) (string, bool) {
	path, ok := s.links[from][request]
	return path, ok
}

// hooks connects the cross-module resolver to the registry. Lookups go
// through the link table only, so the resolver sees exactly the modules
// this build resolved and never triggers file IO mid-transform. The
// request hook registers the spelling it vends, keeping imports the
// passes insert resolvable for the rest of the build.
func (s *Session) hooks() resolver.Hooks {
	return resolver.Hooks{
		Lookup: func(from, request string) (*resolver.Module, bool) {
			path, ok := s.linked(from, request)
			if !ok {
				return nil, false
			}
			rec := s.registry.Get(path)
			if rec == nil || rec.Module == nil || rec.State == modules.ModuleFailed {
				return nil, false
			}
			return rec.Module, true
		},
		Request: func(from string, target *resolver.Module) string {
			request := requestFor(from, target.Specifier)
			s.link(from, request, target.Specifier)
			return request
		},
	}
}

// requestFor spells target's path as an import request inside the
// module at from. Both are registry paths, so the spelling is their
// relative form.
func requestFor(from, target string) string {
	rel, err := filepath.Rel(filepath.Dir(from), target)
	if err != nil {
		return target
	}
	rel = filepath.ToSlash(rel)
	if !strings.HasPrefix(rel, "../") {
		rel = "./" + rel
	}
	return rel
}

// parse lexes and parses one resolved record and scans its comments
// for hints. Runs on the parse workers; each worker owns its record.
func (s *Session) parse(rec *modules.Record) {
	debugPrintf("// [Driver] Parsing %s\n", rec.ResolvedPath)
	l := lexer.NewLexerFromSource(rec.Source)
	p := parser.NewParser(l)
	program, errs := p.ParseProgram()
	rec.Diags = append(rec.Diags, errs...)
	if errors.HasFatal(errs) {
		rec.State = modules.ModuleFailed
		for _, e := range errs {
			if e.Fatal() {
				rec.Err = e
				break
			}
		}
		return
	}
	table := s.scanHints(program, l.Comments(), rec.Source)
	rec.Module = resolver.NewModule(rec.ResolvedPath, program, table)
	rec.State = modules.ModuleParsed
}

func (s *Session) scanHints(program *parser.Program, comments []lexer.Comment, src *source.SourceFile) *hints.Table {
	if s.scanner != nil {
		return s.scanner.Scan(program, comments, src)
	}
	return hints.Scan(program, comments, src)
}

// WriteOutputs writes every transformed module's output below outDir,
// mirroring the resolved module paths.
func (s *Session) WriteOutputs(result *Result, outDir string) error {
	for _, rec := range result.Records {
		if rec.State != modules.ModuleTransformed {
			continue
		}
		dest := filepath.Join(outDir, filepath.FromSlash(rec.ResolvedPath))
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.WriteFile(dest, []byte(rec.Output), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", dest, err)
		}
	}
	return nil
}

// TransformString rewrites a single in-memory module and returns its
// transformed source. The module cannot import anything; sources with
// dependencies need a session whose resolvers can see them.
func TransformString(src string) (string, []errors.InlayError) {
	mem := modules.NewMemoryResolver("memory")
	mem.AddModule("main.js", src)
	s := NewSessionWithResolvers(mem)
	return entryOutput(s.Build("main.js"))
}

// TransformFile builds the module graph rooted at filePath and returns
// the entry's transformed source. Relative imports resolve against the
// file's directory.
func TransformFile(filePath string) (string, []errors.InlayError) {
	s := NewSessionWithBaseDir(filepath.Dir(filePath))
	return entryOutput(s.Build("./" + filepath.Base(filePath)))
}

// entryOutput reduces a build result to the entry module's output plus
// every diagnostic of the build.
func entryOutput(result *Result, err error) (string, []errors.InlayError) {
	if err != nil {
		if ie, ok := err.(errors.InlayError); ok {
			return "", []errors.InlayError{ie}
		}
		return "", []errors.InlayError{&errors.ResolveError{Msg: err.Error(), Cause: err}}
	}
	output := ""
	if rec := result.Record(result.Entry); rec != nil {
		output = rec.Output
	}
	return output, result.Diags()
}
