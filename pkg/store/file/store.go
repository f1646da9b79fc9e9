// Package file provides a ServerStore backed by a JSON file.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/getmockd/stubdesk/pkg/server"
	"github.com/getmockd/stubdesk/pkg/store"
)

// FileName is the name of the data file inside the data directory.
const FileName = "servers.json"

// Current data format version for migration support
const dataVersion = 1

// storeData is the persisted document.
type storeData struct {
	Version int             `json:"version"`
	Servers []server.Server `json:"servers"`
}

// Store implements store.ServerStore using a JSON file.
type Store struct {
	path string
	mu   sync.Mutex
}

var _ store.ServerStore = (*Store)(nil)

// New creates a store writing to FileName inside dataDir. An empty dataDir
// uses store.DefaultDataDir.
func New(dataDir string) *Store {
	if dataDir == "" {
		dataDir = store.DefaultDataDir()
	}
	return &Store{path: filepath.Join(dataDir, FileName)}
}

// Path returns the data file path.
func (s *Store) Path() string {
	return s.path
}

// List reads the servers. A missing file is an empty list.
func (s *Store) List(_ context.Context) ([]server.Server, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []server.Server{}, nil
		}
		return nil, err
	}

	var stored storeData
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("invalid server file %s: %w", s.path, err)
	}
	if stored.Servers == nil {
		stored.Servers = []server.Server{}
	}
	return stored.Servers, nil
}

// Save writes the servers atomically: to a temp file, then renamed into place.
func (s *Store) Save(_ context.Context, servers []server.Server) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if servers == nil {
		servers = []server.Server{}
	}
	data, err := json.MarshalIndent(storeData{Version: dataVersion, Servers: servers}, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}

	tmpFile := s.path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		return err
	}
	if err := os.Rename(tmpFile, s.path); err != nil {
		_ = os.Remove(tmpFile)
		return err
	}
	return nil
}

// Close is a no-op; every Save is flushed immediately.
func (s *Store) Close() error {
	return nil
}
