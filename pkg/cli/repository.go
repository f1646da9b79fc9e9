package cli

import (
	"fmt"

	"github.com/getmockd/stubdesk/pkg/cliconfig"
	"github.com/getmockd/stubdesk/pkg/store"
	"github.com/getmockd/stubdesk/pkg/store/file"
	"github.com/getmockd/stubdesk/pkg/store/sqlite"
)

// openStore opens the configured server repository backend.
func openStore(cfg *cliconfig.CLIConfig) (store.ServerStore, error) {
	switch store.Backend(cfg.Store) {
	case store.BackendFile:
		return file.New(cfg.DataDir), nil
	case store.BackendSQLite:
		return sqlite.Open(sqlite.Options{DataDir: cfg.DataDir})
	case store.BackendMemory:
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store)
	}
}

// openServers opens the repository and wraps it with the configured rules.
// The caller closes the returned store.
func openServers() (*store.Servers, store.ServerStore, error) {
	cfg := current.cfg
	backing, err := openStore(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s store: %w", cfg.Store, err)
	}
	servers := store.NewServers(backing,
		store.WithDefaultServer(cfg.DefaultServerName, cfg.DefaultServer),
		store.WithCreationDisabled(cfg.ServerCreationDisabled),
		store.WithServersLogger(logger()),
	)
	return servers, backing, nil
}
