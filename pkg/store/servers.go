package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/getmockd/stubdesk/pkg/logging"
	"github.com/getmockd/stubdesk/pkg/server"
)

// DefaultServer describes the server seeded into an empty repository.
type DefaultServer struct {
	Name    string
	Address string
}

// Servers applies the editor's rules on top of a ServerStore: unique names,
// optional creation lock and default-server seeding.
type Servers struct {
	store          ServerStore
	defaultServer  *DefaultServer
	creationLocked bool
	log            *slog.Logger
}

// ServersOption configures a Servers service.
type ServersOption func(*Servers)

// WithDefaultServer seeds an empty store with the given server on Load.
// Both name and address must be set for seeding to happen.
func WithDefaultServer(name, address string) ServersOption {
	return func(s *Servers) {
		if name != "" && address != "" {
			s.defaultServer = &DefaultServer{Name: name, Address: address}
		}
	}
}

// WithCreationDisabled rejects Create calls.
func WithCreationDisabled(disabled bool) ServersOption {
	return func(s *Servers) {
		s.creationLocked = disabled
	}
}

// WithServersLogger sets the logger.
func WithServersLogger(log *slog.Logger) ServersOption {
	return func(s *Servers) {
		if log != nil {
			s.log = log
		}
	}
}

// NewServers wraps a store.
func NewServers(store ServerStore, opts ...ServersOption) *Servers {
	s := &Servers{store: store, log: logging.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreationDisabled reports whether new servers may be added.
func (s *Servers) CreationDisabled() bool {
	return s.creationLocked
}

// Load returns the stored servers. An empty store is seeded with the default
// server, when one is configured, and the seed is persisted.
func (s *Servers) Load(ctx context.Context) ([]server.Server, error) {
	servers, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list servers: %w", err)
	}
	if len(servers) > 0 || s.defaultServer == nil {
		return servers, nil
	}

	seed := server.FromAddress(s.defaultServer.Name, s.defaultServer.Address)
	if err := s.store.Save(ctx, []server.Server{seed}); err != nil {
		return nil, fmt.Errorf("failed to save default server: %w", err)
	}
	s.log.Info("seeded default server", "name", seed.Name, "url", seed.BaseURL())
	return []server.Server{seed}, nil
}

// Find returns the server with the given name.
func (s *Servers) Find(ctx context.Context, name string) (*server.Server, error) {
	servers, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	srv, ok := server.Find(servers, name)
	if !ok {
		return nil, fmt.Errorf("server %q: %w", name, ErrNotFound)
	}
	return srv, nil
}

// Create appends a new server.
func (s *Servers) Create(ctx context.Context, srv server.Server) error {
	if s.creationLocked {
		return ErrCreationDisabled
	}
	if err := srv.Validate(); err != nil {
		return err
	}
	servers, err := s.Load(ctx)
	if err != nil {
		return err
	}
	if _, exists := server.Find(servers, srv.Name); exists {
		return fmt.Errorf("server %q: %w", srv.Name, ErrAlreadyExists)
	}
	if err := s.store.Save(ctx, append(servers, srv)); err != nil {
		return fmt.Errorf("failed to save servers: %w", err)
	}
	s.log.Debug("created server", "name", srv.Name)
	return nil
}

// Update replaces the server called name, which may be renamed by srv.
func (s *Servers) Update(ctx context.Context, name string, srv server.Server) error {
	if err := srv.Validate(); err != nil {
		return err
	}
	servers, err := s.Load(ctx)
	if err != nil {
		return err
	}
	current, ok := server.Find(servers, name)
	if !ok {
		return fmt.Errorf("server %q: %w", name, ErrNotFound)
	}
	if srv.Name != name {
		if _, exists := server.Find(servers, srv.Name); exists {
			return fmt.Errorf("server %q: %w", srv.Name, ErrAlreadyExists)
		}
	}
	*current = srv
	if err := s.store.Save(ctx, servers); err != nil {
		return fmt.Errorf("failed to save servers: %w", err)
	}
	s.log.Debug("updated server", "name", name)
	return nil
}

// Remove deletes the server called name.
func (s *Servers) Remove(ctx context.Context, name string) error {
	servers, err := s.Load(ctx)
	if err != nil {
		return err
	}
	kept := servers[:0]
	found := false
	for _, srv := range servers {
		if srv.Name == name {
			found = true
			continue
		}
		kept = append(kept, srv)
	}
	if !found {
		return fmt.Errorf("server %q: %w", name, ErrNotFound)
	}
	if err := s.store.Save(ctx, kept); err != nil {
		return fmt.Errorf("failed to save servers: %w", err)
	}
	s.log.Debug("removed server", "name", name)
	return nil
}
