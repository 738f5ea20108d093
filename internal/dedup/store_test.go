// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "seen_ids.json")
}

func TestOpenMissingFile(t *testing.T) {
	s, err := Open(storePath(t))
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Contains("A1"))
}

func TestOpenCorruptFileStartsEmpty(t *testing.T) {
	path := storePath(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestMergePersistReload(t *testing.T) {
	path := storePath(t)

	s, err := Open(path)
	require.NoError(t, err)
	s.Merge([]string{"A1"})
	require.NoError(t, s.Persist())

	// Second run: A1 gated, A2 proceeds, both recorded after the run.
	s2, err := Open(path)
	require.NoError(t, err)
	assert.True(t, s2.Contains("A1"))
	assert.False(t, s2.Contains("A2"))

	s2.Merge([]string{"A2"})
	require.NoError(t, s2.Persist())

	s3, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2"}, s3.IDs())
}

func TestPersistLeavesNoTempFiles(t *testing.T) {
	path := storePath(t)
	s, err := Open(path)
	require.NoError(t, err)
	s.Merge([]string{"A1", "A2", "A3"})
	require.NoError(t, s.Persist())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Base(path), entries[0].Name())
}

func TestUnpersistedMergeNotDurable(t *testing.T) {
	path := storePath(t)
	s, err := Open(path)
	require.NoError(t, err)
	s.Merge([]string{"A1"})
	require.NoError(t, s.Persist())

	s.Merge([]string{"A2"})
	// No Persist: a report failure path must leave the file at its last
	// persisted state.
	again, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1"}, again.IDs())
}

func TestReset(t *testing.T) {
	path := storePath(t)
	s, err := Open(path)
	require.NoError(t, err)
	s.Merge([]string{"A1"})
	require.NoError(t, s.Persist())

	require.NoError(t, Reset(path))
	require.NoError(t, Reset(path)) // idempotent

	again, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Len())
}
