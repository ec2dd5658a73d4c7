// Package config loads project settings from inlay.toml. The file is
// optional: every setting has a default, and the CLI runs without a
// manifest at all. When a manifest exists it is discovered by walking
// upward from the start directory, so commands work from anywhere
// inside a project tree.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"inlay/pkg/hints"
)

// FileName is the manifest file searched for in the project tree.
const FileName = "inlay.toml"

// DefaultOutDir receives rewritten modules when [build].out-dir is unset.
const DefaultOutDir = "dist"

// Config is the decoded content of an inlay.toml manifest.
type Config struct {
	Markers MarkersConfig `toml:"markers"`
	Build   BuildConfig   `toml:"build"`
	Cache   CacheConfig   `toml:"cache"`
}

// MarkersConfig renames the hint markers. Blank fields keep the
// defaults (@inline and @pure).
type MarkersConfig struct {
	Inline string `toml:"inline"`
	Pure   string `toml:"pure"`
}

// BuildConfig holds the settings of the build command.
type BuildConfig struct {
	Entry      string   `toml:"entry"`
	OutDir     string   `toml:"out-dir"`
	Extensions []string `toml:"extensions"`
	Jobs       int      `toml:"jobs"`
}

// CacheConfig controls the transform output cache.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// Default returns the configuration used when no manifest exists.
func Default() Config {
	return Config{
		Build: BuildConfig{OutDir: DefaultOutDir},
		Cache: CacheConfig{Enabled: true},
	}
}

// File is a loaded manifest together with where it was found. Root is
// the directory containing the manifest and anchors relative paths
// such as [build].entry.
type File struct {
	Path   string
	Root   string
	Config Config
}

// Find walks from startDir toward the filesystem root looking for an
// inlay.toml. It reports the manifest path and whether one exists.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load finds and parses the manifest governing startDir. The second
// result reports whether a manifest exists; a missing manifest is not
// an error.
func Load(startDir string) (*File, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := Parse(path)
	if err != nil {
		return nil, true, err
	}
	return &File{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}, true, nil
}

// Parse decodes one manifest file, validates the settings that are
// present, and fills defaults for the ones that are not.
func Parse(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if meta.IsDefined("markers", "inline") && strings.TrimSpace(cfg.Markers.Inline) == "" {
		return Config{}, fmt.Errorf("%s: [markers].inline must not be blank", path)
	}
	if meta.IsDefined("markers", "pure") && strings.TrimSpace(cfg.Markers.Pure) == "" {
		return Config{}, fmt.Errorf("%s: [markers].pure must not be blank", path)
	}
	if meta.IsDefined("build", "entry") && strings.TrimSpace(cfg.Build.Entry) == "" {
		return Config{}, fmt.Errorf("%s: [build].entry must not be blank", path)
	}
	if meta.IsDefined("build", "out-dir") && strings.TrimSpace(cfg.Build.OutDir) == "" {
		return Config{}, fmt.Errorf("%s: [build].out-dir must not be blank", path)
	}
	if meta.IsDefined("build", "extensions") {
		if len(cfg.Build.Extensions) == 0 {
			return Config{}, fmt.Errorf("%s: [build].extensions must list at least one extension", path)
		}
		for _, ext := range cfg.Build.Extensions {
			if !strings.HasPrefix(ext, ".") {
				return Config{}, fmt.Errorf("%s: [build].extensions entry %q must start with '.'", path, ext)
			}
		}
	}
	if cfg.Build.Jobs < 0 {
		return Config{}, fmt.Errorf("%s: [build].jobs must not be negative", path)
	}
	if meta.IsDefined("cache", "dir") && strings.TrimSpace(cfg.Cache.Dir) == "" {
		return Config{}, fmt.Errorf("%s: [cache].dir must not be blank", path)
	}
	if !meta.IsDefined("build", "out-dir") {
		cfg.Build.OutDir = DefaultOutDir
	}
	if !meta.IsDefined("cache", "enabled") {
		cfg.Cache.Enabled = true
	}
	return cfg, nil
}

// Scanner builds the hint scanner matching the configured marker
// spellings.
func (c Config) Scanner() (*hints.Scanner, error) {
	return hints.NewScanner(hints.Options{
		InlineMarker: c.Markers.Inline,
		PureMarker:   c.Markers.Pure,
	})
}
