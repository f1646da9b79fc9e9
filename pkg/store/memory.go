package store

import (
	"context"
	"sync"

	"github.com/getmockd/stubdesk/pkg/server"
)

// MemoryStore is a ServerStore that keeps servers in memory.
type MemoryStore struct {
	mu      sync.RWMutex
	servers []server.Server
}

// NewMemoryStore creates a store seeded with servers.
func NewMemoryStore(servers ...server.Server) *MemoryStore {
	return &MemoryStore{servers: clone(servers)}
}

// List returns a copy of the stored servers.
func (s *MemoryStore) List(_ context.Context) ([]server.Server, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.servers), nil
}

// Save replaces the stored servers.
func (s *MemoryStore) Save(_ context.Context, servers []server.Server) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.servers = clone(servers)
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

func clone(servers []server.Server) []server.Server {
	out := make([]server.Server, len(servers))
	copy(out, servers)
	return out
}
