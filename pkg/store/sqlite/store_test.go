package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/stubdesk/pkg/server"
)

func TestStore_Memory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, err := Open(Options{DSN: MemoryDSN})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	servers, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, servers)

	want := []server.Server{
		{Name: "zeta", URL: "http://z"},
		{Name: "alpha", URL: "http://a", Port: 9000},
	}
	require.NoError(t, s.Save(ctx, want))

	got, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got, "saved order is kept")

	require.NoError(t, s.Save(ctx, want[1:]))
	got, err = s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, want[1:], got)
}

func TestStore_File(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "data")

	s, err := Open(Options{DataDir: dir})
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, []server.Server{{Name: "local", URL: "http://localhost", Port: 8080}}))
	require.NoError(t, s.Close())

	reopened, err := Open(Options{DataDir: dir})
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	got, err := reopened.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []server.Server{{Name: "local", URL: "http://localhost", Port: 8080}}, got)
}
