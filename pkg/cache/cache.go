// Package cache persists transform output between builds. Each module's
// rewritten source is stored under a key that covers everything the
// rewrite can observe: the module's own source, the marker spellings,
// and the keys of every module it inlines from, directly or through
// re-exports. A change anywhere in that closure changes the key, so a
// stale entry is simply never found.
//
// Only clean transforms are stored. A module whose rewrite produced
// diagnostics is transformed again on the next build so the
// diagnostics reappear.
package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Bump when the Entry layout changes. Entries written under another
// schema read back as misses.
const schemaVersion uint16 = 1

// Digest is a SHA-256 cache key.
type Digest [sha256.Size]byte

// Entry is the stored transform result of one module. Path records
// which module the entry came from so cache files can be inspected by
// hand.
type Entry struct {
	Schema uint16
	Path   string
	Output string
}

// Store is an on-disk cache of transform entries. It is safe for
// concurrent use.
type Store struct {
	mu  sync.RWMutex
	dir string
}

// Open creates or reuses a cache rooted at dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// OpenDefault opens the cache at the standard per-user location,
// $XDG_CACHE_HOME/inlay or ~/.cache/inlay.
func OpenDefault() (*Store, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return Open(filepath.Join(base, "inlay"))
}

func (s *Store) pathFor(key Digest) string {
	// Entries live under "out" so the directory can be wiped without
	// touching anything else a future schema might store alongside.
	return filepath.Join(s.dir, "out", hex.EncodeToString(key[:])+".mp")
}

// Put serializes one entry under key, replacing any previous entry
// atomically. The schema field is stamped here; callers leave it zero.
func (s *Store) Put(key Digest, entry *Entry) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.Schema = schemaVersion
	p := s.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(entry); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads the entry stored under key. A missing entry, or one
// written under a different schema, reports (false, nil).
func (s *Store) Get(key Digest, out *Entry) (bool, error) {
	if s == nil {
		return false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := os.Open(s.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(out); err != nil {
		return false, fmt.Errorf("corrupt cache entry %s: %w", s.pathFor(key), err)
	}
	if out.Schema != schemaVersion {
		return false, nil
	}
	return true, nil
}

// Fingerprint hashes the configuration that affects transform output.
// Today that is the two marker spellings; anything else in the
// manifest changes where output goes, not what it says.
func Fingerprint(inlineMarker, pureMarker string) Digest {
	h := sha256.New()
	writeString(h, "markers")
	writeString(h, inlineMarker)
	writeString(h, pureMarker)
	var d Digest
	h.Sum(d[:0])
	return d
}

// HashContent digests one module's source text.
func HashContent(content string) Digest {
	return sha256.Sum256([]byte(content))
}

// Key derives the cache key of one module from the configuration
// fingerprint, the module's own content hash, and the keys of its
// inline suppliers. Supplier order does not matter; the slice is
// sorted on a copy before hashing.
func Key(fingerprint, content Digest, suppliers []Digest) Digest {
	sorted := make([]Digest, len(suppliers))
	copy(sorted, suppliers)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i][:], sorted[j][:]) < 0
	})

	h := sha256.New()
	var v [2]byte
	binary.BigEndian.PutUint16(v[:], schemaVersion)
	h.Write(v[:])
	h.Write(fingerprint[:])
	h.Write(content[:])
	for _, sup := range sorted {
		h.Write(sup[:])
	}
	var d Digest
	h.Sum(d[:0])
	return d
}

// writeString hashes a length-prefixed string so adjacent fields
// cannot run together.
func writeString(h io.Writer, s string) {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(s)))
	h.Write(n[:])
	io.WriteString(h, s)
}
