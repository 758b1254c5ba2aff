// Package fsstate implements pacwrap's filesystem state snapshot and
// linker (spec.md §4.8), grounded on
// original_source/pacwrap-core/src/sync/filesystem.rs.
package fsstate

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pacwrap/pacwrap/usefulerror"
)

// FileType classifies one snapshot entry.
type FileType int8

const (
	FileTypeHardLink FileType = iota
	FileTypeSymLink
	FileTypeDirectory
)

// Entry is one (kind, absolute source path) snapshot value.
type Entry struct {
	Kind   FileType
	Source string
}

// SnapshotMagic/SnapshotVersion are the snapshot file's header
// constants. Per spec.md §9 Open Question 1, the agent parameter
// blob's header (see the agent package) carries the strictly-checked
// major.minor.patch semver; the snapshot instead carries a single u32
// version that is checked loosely (mismatch silently rebuilds, since
// upgrades are expected to invalidate old snapshots rather than fail).
const (
	SnapshotMagic   uint32 = 0x50575346 // "PWSF"
	SnapshotVersion uint32 = 1
)

// orderedFileMap is a minimal insertion-ordered string-keyed map. No
// ordered-map/indexmap-equivalent library appears anywhere in the
// example pack (see DESIGN.md); this is the smallest shape that
// preserves walk order the way original_source's IndexMap does.
type orderedFileMap struct {
	keys   []string
	values map[string]Entry
}

func newOrderedFileMap() *orderedFileMap {
	return &orderedFileMap{values: make(map[string]Entry)}
}

// Get mirrors IndexMap::get — presence check without mutating order.
func (m *orderedFileMap) Get(key string) (Entry, bool) {
	e, ok := m.values[key]
	return e, ok
}

// Insert only appends key to the order on first insertion, matching
// obtain_state's "skip if the relative path is already recorded" rule.
func (m *orderedFileMap) Insert(key string, e Entry) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = e
}

// Extend inserts other's entries in its own order. A key already
// present keeps its first position but takes other's value, mirroring
// IndexMap::extend's overwrite-but-preserve-first-position semantics.
func (m *orderedFileMap) Extend(other *orderedFileMap) {
	for _, k := range other.keys {
		m.Insert(k, other.values[k])
	}
}

func (m *orderedFileMap) Len() int { return len(m.keys) }

func (m *orderedFileMap) Range(fn func(key string, e Entry)) {
	for _, k := range m.keys {
		fn(k, m.values[k])
	}
}

// Snapshot is one container's filesystem-state document: a
// magic+version header plus the insertion-ordered relative-path map
// (spec.md §3 "Filesystem state snapshot").
type Snapshot struct {
	Magic   uint32
	Version uint32
	files   *orderedFileMap
}

// NewSnapshot returns an empty, current-version snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{Magic: SnapshotMagic, Version: SnapshotVersion, files: newOrderedFileMap()}
}

func (s *Snapshot) Len() int { return s.files.Len() }

func (s *Snapshot) Get(relPath string) (Entry, bool) { return s.files.Get(relPath) }

func (s *Snapshot) Insert(relPath string, e Entry) { s.files.Insert(relPath, e) }

func (s *Snapshot) Range(fn func(relPath string, e Entry)) { s.files.Range(fn) }

// Extend unions other's entries into s (obtain_slice/filesystem_state's
// union behaviour); a relative path s already records keeps its
// position and takes other's entry.
func (s *Snapshot) Extend(other *Snapshot) {
	if other == nil {
		return
	}
	s.files.Extend(other.files)
}

// gobEntry is the flat (path, kind, source) record the snapshot codec
// persists — gob cannot round-trip insertion order through a map, so
// encode/decode go through a slice instead.
type gobEntry struct {
	Path   string
	Kind   FileType
	Source string
}

// Encode returns the snapshot's on-disk representation:
// [magic:u32 LE][version:u32 LE] + gob(slice of entries in order).
//
// gob is the stdlib's fixed-schema binary codec and needs no code
// generation step; see DESIGN.md for why no library codec fits here
// instead (the pack's only schema'd binary codec is protobuf, backed
// by generated .pb.go files this exercise must not fabricate).
func (s *Snapshot) Encode() ([]byte, error) {
	entries := make([]gobEntry, 0, s.files.Len())
	s.files.Range(func(path string, e Entry) {
		entries = append(entries, gobEntry{Path: path, Kind: e.Kind, Source: e.Source})
	})

	var body bytes.Buffer
	if err := gob.NewEncoder(&body).Encode(entries); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	header := make([]byte, 8)
	binary.LittleEndian.PutUint32(header[0:4], s.Magic)
	binary.LittleEndian.PutUint32(header[4:8], s.Version)
	return append(header, body.Bytes()...), nil
}

// Decode parses data produced by Encode. It never fails: a magic
// mismatch, a version mismatch or a body that does not decode all
// return an empty NewSnapshot(), so upgrades rebuild state instead of
// refusing to run. warn (when non-nil) is called for a magic mismatch
// or a body decode failure; a version mismatch is silent.
func Decode(data []byte, warn func(string)) *Snapshot {
	if len(data) < 8 {
		return NewSnapshot()
	}

	magic := binary.LittleEndian.Uint32(data[0:4])
	version := binary.LittleEndian.Uint32(data[4:8])

	if magic != SnapshotMagic {
		if warn != nil {
			warn(fmt.Sprintf("magic number mismatch (%d != %d)", SnapshotMagic, magic))
		}
		return NewSnapshot()
	}
	if version != SnapshotVersion {
		return NewSnapshot()
	}

	var entries []gobEntry
	if err := gob.NewDecoder(bytes.NewReader(data[8:])).Decode(&entries); err != nil {
		if warn != nil {
			warn(fmt.Sprintf("deserialization failure: %v", err))
		}
		return NewSnapshot()
	}

	snap := &Snapshot{Magic: magic, Version: version, files: newOrderedFileMap()}
	for _, e := range entries {
		snap.files.Insert(e.Path, Entry{Kind: e.Kind, Source: e.Source})
	}
	return snap
}

// Load reads and decodes the snapshot persisted at path, returning an
// empty snapshot (no error) if the file does not exist.
func Load(path string, warn func(string)) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewSnapshot(), nil
		}
		return nil, usefulerror.Useful().Wrap(err).Msg("failed to read snapshot " + path)
	}
	return Decode(data, warn), nil
}

// Save persists the snapshot at path, creating parent directories.
func Save(path string, s *Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return usefulerror.Useful().Wrap(err).Msg("failed to create state directory for " + path)
	}
	data, err := s.Encode()
	if err != nil {
		return usefulerror.Useful().Wrap(err).Msg("failed to encode snapshot " + path)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return usefulerror.Useful().Wrap(err).Msg("failed to write snapshot " + path)
	}
	return nil
}

// excludedFromWalk reports whether src (an absolute path under root)
// is package-manager state or per-container runtime artefact that
// obtain_state never records (spec.md §4.8).
func excludedFromWalk(src string) bool {
	return strings.Contains(src, "/var/lib/pacman") || strings.HasSuffix(src, "/etc/ld.so.cache")
}
