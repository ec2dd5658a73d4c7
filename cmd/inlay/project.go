package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"inlay/pkg/cache"
	"inlay/pkg/config"
	"inlay/pkg/driver"
	"inlay/pkg/hints"
	"inlay/pkg/modules"
)

const noEntryMessage = "no entry module\npass one explicitly or set [build].entry in inlay.toml, e.g.:\n  inlay build src/main.js"

// buildSetup carries what the build and graph commands share: the
// governing configuration, the directory module requests resolve
// against, and the entry request inside it.
type buildSetup struct {
	cfg     config.Config
	baseDir string
	entry   string
}

func loadBuildSetup(args []string) (*buildSetup, error) {
	file, found, err := config.Load(".")
	if err != nil {
		return nil, err
	}
	cfg := config.Default()
	baseDir := "."
	if found {
		cfg = file.Config
		baseDir = file.Root
	}

	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}
	var entry string
	switch {
	case arg != "":
		baseDir, entry, err = splitEntryArg(baseDir, found, arg)
		if err != nil {
			return nil, err
		}
	case cfg.Build.Entry != "":
		entry = "./" + filepath.ToSlash(cfg.Build.Entry)
	default:
		return nil, errors.New(noEntryMessage)
	}

	return &buildSetup{cfg: cfg, baseDir: baseDir, entry: entry}, nil
}

// splitEntryArg turns a command line path into a session base directory
// and an import request inside it. A path under the manifest root keeps
// the root as its base, so output trees keep their project shape; a
// path outside it anchors at its own directory instead.
func splitEntryArg(baseDir string, underManifest bool, arg string) (string, string, error) {
	absArg, err := filepath.Abs(arg)
	if err != nil {
		return "", "", err
	}
	if underManifest {
		absBase, err := filepath.Abs(baseDir)
		if err != nil {
			return "", "", err
		}
		rel, err := filepath.Rel(absBase, absArg)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, "../") {
			return baseDir, "./" + filepath.ToSlash(rel), nil
		}
	}
	return filepath.Dir(absArg), "./" + filepath.Base(absArg), nil
}

// newSession builds a driver session from the setup. A jobs value of
// zero defers to the manifest.
func newSession(setup *buildSetup, jobs int) (*driver.Session, error) {
	fs := modules.NewOSFileSystemResolver(setup.baseDir)
	if len(setup.cfg.Build.Extensions) > 0 {
		fs.SetExtensions(setup.cfg.Build.Extensions)
	}
	session := driver.NewSessionWithResolvers(fs)

	scanner, err := setup.cfg.Scanner()
	if err != nil {
		return nil, err
	}
	session.SetScanner(scanner)

	if jobs == 0 {
		jobs = setup.cfg.Build.Jobs
	}
	session.SetJobs(jobs)
	return session, nil
}

// openStore opens the configured cache store, or nothing when caching
// is off. Cache trouble never fails a build; it only disables reuse.
func openStore(cmd *cobra.Command, setup *buildSetup, disabled bool) *cache.Store {
	if disabled || !setup.cfg.Cache.Enabled {
		return nil
	}
	var (
		store *cache.Store
		err   error
	)
	if dir := setup.cfg.Cache.Dir; dir != "" {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(setup.baseDir, dir)
		}
		store, err = cache.Open(dir)
	} else {
		store, err = cache.OpenDefault()
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: cache disabled: %v\n", err)
		return nil
	}
	return store
}

// markerFingerprint keys the cache by the marker spellings actually in
// effect, so blank manifest fields and the spelled-out defaults hash
// the same.
func markerFingerprint(cfg config.Config) cache.Digest {
	inline := cfg.Markers.Inline
	if inline == "" {
		inline = hints.DefaultInlineMarker
	}
	pure := cfg.Markers.Pure
	if pure == "" {
		pure = hints.DefaultPureMarker
	}
	return cache.Fingerprint(inline, pure)
}
