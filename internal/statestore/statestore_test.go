package statestore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planpilot/planpilot/internal/engine"
	"github.com/planpilot/planpilot/internal/errors"
	"github.com/planpilot/planpilot/internal/plan"
)

func sampleSyncMap() *engine.SyncMap {
	syncMap := engine.NewSyncMap("a1b2c3d4e5f6", "memory", "memory://board")
	syncMap.Entries["E1"] = engine.Entry{
		ID:       "uuid-1",
		Key:      "PP-1",
		URL:      "memory://board/PP-1",
		ItemType: plan.TypeEpic,
	}
	syncMap.Entries["T1"] = engine.Entry{
		ID:       "uuid-2",
		Key:      "PP-2",
		URL:      "memory://board/PP-2",
		ItemType: plan.TypeTask,
	}
	return syncMap
}

func TestSaveAndLoad(t *testing.T) {
	store := NewStore()
	path := filepath.Join(t.TempDir(), ".planpilot", "sync-map.json")

	require.NoError(t, store.Save(sampleSyncMap(), path))

	loaded, err := store.Load(path)
	require.NoError(t, err)
	assert.Equal(t, sampleSyncMap(), loaded)
}

func TestSaveCreatesParentDirectories(t *testing.T) {
	store := NewStore()
	path := filepath.Join(t.TempDir(), "deep", "nested", "dir", "sync-map.json")

	require.NoError(t, store.Save(sampleSyncMap(), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.False(t, info.IsDir())
}

func TestSaveOverwritesExisting(t *testing.T) {
	store := NewStore()
	path := filepath.Join(t.TempDir(), "sync-map.json")

	require.NoError(t, store.Save(sampleSyncMap(), path))

	updated := sampleSyncMap()
	updated.Entries["S1"] = engine.Entry{ID: "uuid-3", Key: "PP-3", URL: "memory://board/PP-3", ItemType: plan.TypeStory}
	require.NoError(t, store.Save(updated, path))

	loaded, err := store.Load(path)
	require.NoError(t, err)
	assert.Len(t, loaded.Entries, 3)
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	store := NewStore()
	dir := t.TempDir()

	require.NoError(t, store.Save(sampleSyncMap(), filepath.Join(dir, "sync-map.json")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "sync-map.json", entries[0].Name())
}

func TestLoadMissingFile(t *testing.T) {
	store := NewStore()

	_, err := store.Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)

	var perr *errors.PlanPilotError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, errors.ErrCodeFileNotFound, perr.Code)
}

func TestLoadMalformedJSON(t *testing.T) {
	store := NewStore()
	path := filepath.Join(t.TempDir(), "sync-map.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := store.Load(path)
	require.Error(t, err)

	var perr *errors.PlanPilotError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, errors.ErrCodeFileUnmarshal, perr.Code)
}
