package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/stubdesk/pkg/server"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemoryStore(server.Server{Name: "a", URL: "http://a"})

	got, err := s.List(ctx)
	require.NoError(t, err)
	got[0].Name = "mutated"

	again, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", again[0].Name, "List returns a copy")
	require.NoError(t, s.Close())
}

func TestBackend_Valid(t *testing.T) {
	t.Parallel()

	assert.True(t, BackendSQLite.Valid())
	assert.False(t, Backend("postgres").Valid())
}

func TestServers_LoadSeedsDefault(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backing := NewMemoryStore()
	svc := NewServers(backing, WithDefaultServer("local", "http://localhost:8080"))

	servers, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []server.Server{{Name: "local", URL: "http://localhost", Port: 8080}}, servers)

	persisted, err := backing.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, servers, persisted)
}

func TestServers_LoadDoesNotSeedExisting(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := NewServers(
		NewMemoryStore(server.Server{Name: "mine", URL: "http://mine"}),
		WithDefaultServer("local", "http://localhost:8080"),
	)

	servers, err := svc.Load(ctx)
	require.NoError(t, err)
	require.Len(t, servers, 1)
	assert.Equal(t, "mine", servers[0].Name)
}

func TestServers_LoadNeedsNameAndAddress(t *testing.T) {
	t.Parallel()

	svc := NewServers(NewMemoryStore(), WithDefaultServer("", "http://localhost:8080"))
	servers, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, servers)
}

func TestServers_CRUD(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := NewServers(NewMemoryStore())

	require.NoError(t, svc.Create(ctx, server.Server{Name: "a", URL: "http://a"}))
	require.NoError(t, svc.Create(ctx, server.Server{Name: "b", URL: "http://b"}))
	assert.ErrorIs(t, svc.Create(ctx, server.Server{Name: "a", URL: "http://other"}), ErrAlreadyExists)
	assert.Error(t, svc.Create(ctx, server.Server{Name: "", URL: "http://x"}))

	require.NoError(t, svc.Update(ctx, "a", server.Server{Name: "a2", URL: "http://a", Port: 81}))
	assert.ErrorIs(t, svc.Update(ctx, "missing", server.Server{Name: "x", URL: "http://x"}), ErrNotFound)
	assert.ErrorIs(t, svc.Update(ctx, "a2", server.Server{Name: "b", URL: "http://x"}), ErrAlreadyExists)

	found, err := svc.Find(ctx, "a2")
	require.NoError(t, err)
	assert.Equal(t, 81, found.Port)

	_, err = svc.Find(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.Remove(ctx, "a2"))
	assert.ErrorIs(t, svc.Remove(ctx, "a2"), ErrNotFound)

	servers, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []server.Server{{Name: "b", URL: "http://b"}}, servers)
}

func TestServers_CreationDisabled(t *testing.T) {
	t.Parallel()

	svc := NewServers(NewMemoryStore(), WithCreationDisabled(true))
	assert.True(t, svc.CreationDisabled())
	assert.ErrorIs(t, svc.Create(context.Background(), server.Server{Name: "a", URL: "http://a"}), ErrCreationDisabled)
}
