package cliconfig

import "github.com/getmockd/stubdesk/pkg/store"

// DefaultStore is the default server repository backend.
const DefaultStore = string(store.BackendFile)

// DefaultServerName names the seeded server when only an address is given.
const DefaultServerName = "default"

// DefaultLogLevel is the default minimum log level.
const DefaultLogLevel = "warn"

// DefaultLogFormat is the default console log format.
const DefaultLogFormat = "text"

// NewDefault creates a new CLIConfig with default values.
func NewDefault() *CLIConfig {
	cfg := &CLIConfig{
		Store:             DefaultStore,
		DefaultServerName: DefaultServerName,
		LogLevel:          DefaultLogLevel,
		LogFormat:         DefaultLogFormat,
		Sources:           make(map[string]string),
	}

	// Mark all as default source
	cfg.Sources["store"] = SourceDefault
	cfg.Sources["defaultServerName"] = SourceDefault
	cfg.Sources["serverCreationDisabled"] = SourceDefault
	cfg.Sources["logLevel"] = SourceDefault
	cfg.Sources["logFormat"] = SourceDefault
	cfg.Sources["json"] = SourceDefault

	return cfg
}
