// Package statestore persists sync maps on behalf of the CLI. The engine
// never writes here; it returns the map and the caller decides where it goes.
package statestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/planpilot/planpilot/internal/engine"
	"github.com/planpilot/planpilot/internal/errors"
)

// Store reads and writes sync maps as JSON files
type Store struct{}

// NewStore creates a file-based sync map store
func NewStore() *Store {
	return &Store{}
}

// Save writes the sync map to path, creating parent directories. The write
// is atomic: a temp file in the same directory is renamed over the target.
func (s *Store) Save(syncMap *engine.SyncMap, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeDirectoryFailed, fmt.Sprintf("create directory %s", dir), err)
	}

	data, err := json.MarshalIndent(syncMap, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileMarshal, "marshal sync map", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(dir, ".sync-map-*.json")
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "create temp file", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeFileWriteFailed, fmt.Sprintf("write sync map to %s", tmpName), err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, fmt.Sprintf("close %s", tmpName), err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, fmt.Sprintf("rename sync map into %s", path), err)
	}
	return nil
}

// Load reads a previously saved sync map
func (s *Store) Load(path string) (*engine.SyncMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, fmt.Sprintf("sync map not found: %s", path))
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, fmt.Sprintf("read sync map %s", path), err)
	}

	var syncMap engine.SyncMap
	if err := json.Unmarshal(data, &syncMap); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileUnmarshal, fmt.Sprintf("unmarshal sync map %s", path), err)
	}
	return &syncMap, nil
}
