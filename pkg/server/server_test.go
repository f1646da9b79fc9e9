package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw      string
		wantBase string
		wantPort int
	}{
		{"http://localhost:8080", "http://localhost", 8080},
		{"https://mock.example.com/__admin", "https://mock.example.com", 0},
		{"http://127.0.0.1:9000/", "http://127.0.0.1", 9000},
		{"localhost:8080", "localhost:8080", 0},
		{"not a url", "not a url", 0},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			base, port := ParseURL(tt.raw)
			assert.Equal(t, tt.wantBase, base)
			assert.Equal(t, tt.wantPort, port)
		})
	}
}

func TestServer_BaseURL(t *testing.T) {
	t.Parallel()

	var none *Server
	assert.Equal(t, DefaultBaseURL, none.BaseURL())
	assert.Equal(t, "http://mock", (&Server{URL: "http://mock"}).BaseURL())
	assert.Equal(t, "http://mock:9090", (&Server{URL: "http://mock", Port: 9090}).BaseURL())

	s := FromAddress("local", "http://localhost:8080")
	assert.Equal(t, Server{Name: "local", URL: "http://localhost", Port: 8080}, s)
	assert.Equal(t, "http://localhost:8080", s.BaseURL())
}

func TestServer_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, (&Server{Name: "a", URL: "http://a"}).Validate())
	assert.Error(t, (&Server{URL: "http://a"}).Validate())
	assert.Error(t, (&Server{Name: "a"}).Validate())
	assert.Error(t, (&Server{Name: "a", URL: "http://a", Port: 70000}).Validate())
}

func TestFind(t *testing.T) {
	t.Parallel()

	servers := []Server{{Name: "a", URL: "http://a"}, {Name: "b", URL: "http://b"}}
	s, ok := Find(servers, "b")
	require.True(t, ok)
	assert.Equal(t, "http://b", s.URL)

	_, ok = Find(servers, "c")
	assert.False(t, ok)
}
