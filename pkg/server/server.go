// Package server describes the mock servers the editor talks to.
package server

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// DefaultBaseURL is used when no server is selected.
const DefaultBaseURL = "http://localhost:8080"

// Server is a named mock server endpoint.
type Server struct {
	// Name identifies the server and is unique within a repository.
	Name string `json:"name" yaml:"name"`
	// URL is the scheme and host, e.g. "http://localhost".
	URL string `json:"url" yaml:"url"`
	// Port is optional; zero means the URL's default port.
	Port int `json:"port,omitempty" yaml:"port,omitempty"`
}

// BaseURL joins URL and Port. A nil server yields DefaultBaseURL.
func (s *Server) BaseURL() string {
	if s == nil {
		return DefaultBaseURL
	}
	if s.Port != 0 {
		return s.URL + ":" + strconv.Itoa(s.Port)
	}
	return s.URL
}

// Validate checks the fields required to save a server.
func (s *Server) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("server name is required")
	}
	if strings.TrimSpace(s.URL) == "" {
		return fmt.Errorf("server %q: url is required", s.Name)
	}
	if s.Port < 0 || s.Port > 65535 {
		return fmt.Errorf("server %q: port %d is out of range", s.Name, s.Port)
	}
	return nil
}

// ParseURL splits an address like "http://mock:9000/admin" into the
// scheme-and-host URL and the port. Anything that does not parse as an
// absolute URL is returned unchanged with no port.
func ParseURL(raw string) (base string, port int) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return raw, 0
	}
	if p := u.Port(); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			port = n
		}
	}
	return u.Scheme + "://" + u.Hostname(), port
}

// FromAddress builds a server from a name and a full address.
func FromAddress(name, address string) Server {
	base, port := ParseURL(address)
	return Server{Name: name, URL: base, Port: port}
}

// Find returns the server with the given name.
func Find(servers []Server, name string) (*Server, bool) {
	for i := range servers {
		if servers[i].Name == name {
			return &servers[i], true
		}
	}
	return nil, false
}
