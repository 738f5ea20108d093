// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dedup persists the set of listing identifiers already processed
// in prior runs. The set only grows: an identifier, once recorded, is never
// removed except by an explicit reset.
package dedup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Store is the dedup gate for the pipeline. Implementations assume a single
// writer per backing file; concurrent runs are not supported.
type Store interface {
	// Contains reports whether id was processed in any prior run or merged
	// during this one.
	Contains(id string) bool

	// Merge records ids as seen in memory. Nothing is durable until
	// Persist.
	Merge(ids []string)

	// Persist writes the full set durably, replacing the backing file
	// atomically.
	Persist() error

	// Len returns the number of recorded identifiers.
	Len() int

	// IDs returns all recorded identifiers, sorted.
	IDs() []string
}

// FileStore keeps the seen set in a flat JSON array so the file stays
// hand-inspectable.
type FileStore struct {
	path string
	seen map[string]struct{}
}

// Open loads the store at path. A missing file starts an empty store; so
// does a corrupt one — losing dedup history only causes re-processing,
// which is safe, while failing the run would not be.
func Open(path string) (*FileStore, error) {
	s := &FileStore{path: path, seen: make(map[string]struct{})}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading dedup store %s: %w", path, err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		// Corrupt store: start fresh rather than abort.
		return s, nil
	}
	for _, id := range ids {
		s.seen[id] = struct{}{}
	}
	return s, nil
}

func (s *FileStore) Contains(id string) bool {
	_, ok := s.seen[id]
	return ok
}

func (s *FileStore) Merge(ids []string) {
	for _, id := range ids {
		s.seen[id] = struct{}{}
	}
}

func (s *FileStore) Len() int {
	return len(s.seen)
}

func (s *FileStore) IDs() []string {
	ids := make([]string, 0, len(s.seen))
	for id := range s.seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Persist writes the sorted set to a temp file in the same directory and
// renames it over the canonical path, so a crash mid-write never leaves a
// partial store.
func (s *FileStore) Persist() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating store directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(s.IDs(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling dedup store: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".seen-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing dedup store: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing dedup store: %w", err)
	}
	return nil
}

// Reset removes the backing file. The next Open starts empty.
func Reset(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing dedup store %s: %w", path, err)
	}
	return nil
}
