// Package store persists the list of mock servers the editor knows about.
//
// Backends implement ServerStore:
//   - memory: in-process only, for tests and throwaway sessions
//   - file:   a JSON document in the data directory (package file)
//   - sqlite: an embedded database through gorm (package sqlite)
//
// The Servers service layers naming rules and default-server seeding on top
// of any backend.
package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"

	"github.com/getmockd/stubdesk/pkg/server"
)

// Common errors
var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrCreationDisabled = errors.New("server creation is disabled")
)

// AppName names the per-user data directory.
const AppName = "stubdesk"

// Backend represents a storage backend type.
type Backend string

const (
	// BackendFile stores servers in a JSON file
	BackendFile Backend = "file"
	// BackendSQLite uses an embedded SQLite database
	BackendSQLite Backend = "sqlite"
	// BackendMemory keeps servers in memory (no persistence)
	BackendMemory Backend = "memory"
)

// Backends lists the supported backends.
var Backends = []Backend{BackendFile, BackendSQLite, BackendMemory}

// Valid reports whether b is a supported backend.
func (b Backend) Valid() bool {
	for _, known := range Backends {
		if b == known {
			return true
		}
	}
	return false
}

// ServerStore loads and saves the whole server list. Order is preserved.
type ServerStore interface {
	List(ctx context.Context) ([]server.Server, error)
	Save(ctx context.Context, servers []server.Server) error
	Close() error
}

// DefaultDataDir returns the default data directory following the XDG spec.
func DefaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "."+AppName, "data")
	}
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support", AppName)
	}
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("LOCALAPPDATA"); appData != "" {
			return filepath.Join(appData, AppName)
		}
		return filepath.Join(home, "AppData", "Local", AppName)
	}
	return filepath.Join(home, ".local", "share", AppName)
}
