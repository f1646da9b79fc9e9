// Package cliconfig provides configuration types and loading for the stubdesk CLI.
package cliconfig

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/getmockd/stubdesk/pkg/logging"
	"github.com/getmockd/stubdesk/pkg/store"
)

// CLIConfig represents the complete configuration for the stubdesk CLI.
// Configuration values can come from multiple sources with the following precedence:
// 1. Command-line flags (highest priority)
// 2. Environment variables
// 3. Local config file (.stubdeskrc.yaml in current directory)
// 4. Global config file (~/.config/stubdesk/config.yaml)
// 5. Default values (lowest priority)
type CLIConfig struct {
	// Server repository settings
	Store   string `yaml:"store" json:"store"`
	DataDir string `yaml:"dataDir,omitempty" json:"dataDir,omitempty"`

	// Seed for an empty repository: an address like http://localhost:8080
	DefaultServer     string `yaml:"defaultServer,omitempty" json:"defaultServer,omitempty"`
	DefaultServerName string `yaml:"defaultServerName" json:"defaultServerName"`

	ServerCreationDisabled bool `yaml:"serverCreationDisabled" json:"serverCreationDisabled"`

	// Logging settings
	LogLevel  string `yaml:"logLevel" json:"logLevel"`
	LogFormat string `yaml:"logFormat" json:"logFormat"`
	LogFile   string `yaml:"logFile,omitempty" json:"logFile,omitempty"`

	// Output settings
	JSON bool `yaml:"json" json:"json"`

	// Sources tracks where each value came from (for debugging)
	Sources map[string]string `yaml:"-" json:"-"`

	// SetFields holds the YAML keys present in a loaded file, so an explicit
	// false can be told apart from an absent boolean.
	SetFields map[string]bool `yaml:"-" json:"-"`
}

// ConfigSource identifies where a config value originated.
const (
	SourceDefault = "default"
	SourceEnv     = "env"
	SourceGlobal  = "global"
	SourceLocal   = "local"
	SourceFile    = "file"
	SourceFlag    = "flag"
)

// Validate checks the merged configuration.
func (c *CLIConfig) Validate() error {
	var errs []error
	if !store.Backend(c.Store).Valid() {
		errs = append(errs, fmt.Errorf("store %q is not one of %v", c.Store, store.Backends))
	}
	if !slices.Contains(validLogLevels, strings.ToLower(strings.TrimSpace(c.LogLevel))) {
		errs = append(errs, fmt.Errorf("logLevel %q is not one of %v", c.LogLevel, validLogLevels))
	}
	if !slices.Contains(validLogFormats, strings.ToLower(strings.TrimSpace(c.LogFormat))) {
		errs = append(errs, fmt.Errorf("logFormat %q is not one of %v", c.LogFormat, validLogFormats))
	}
	if c.DefaultServer != "" && c.DefaultServerName == "" {
		errs = append(errs, errors.New("defaultServerName is required when defaultServer is set"))
	}
	return errors.Join(errs...)
}

var (
	validLogLevels  = []string{"debug", "info", "warn", "warning", "error"}
	validLogFormats = []string{"text", "json"}
)

// LoggingConfig returns the logging settings.
func (c *CLIConfig) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(c.LogLevel)
	cfg.Format = logging.ParseFormat(c.LogFormat)
	cfg.File = c.LogFile
	return cfg
}
