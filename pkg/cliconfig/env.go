package cliconfig

import (
	"os"
	"strings"
)

// Environment variable names
const (
	EnvConfig                 = "STUBDESK_CONFIG"
	EnvStore                  = "STUBDESK_STORE"
	EnvDataDir                = "STUBDESK_DATA_DIR"
	EnvDefaultServer          = "STUBDESK_DEFAULT_SERVER"
	EnvDefaultServerName      = "STUBDESK_DEFAULT_SERVER_NAME"
	EnvServerCreationDisabled = "STUBDESK_SERVER_CREATION_DISABLED"
	EnvLogLevel               = "STUBDESK_LOG_LEVEL"
	EnvLogFormat              = "STUBDESK_LOG_FORMAT"
	EnvLogFile                = "STUBDESK_LOG_FILE"
)

// LoadEnvConfig loads configuration from environment variables.
// It only sets values that are present in the environment.
func LoadEnvConfig(cfg *CLIConfig) {
	if cfg.Sources == nil {
		cfg.Sources = make(map[string]string)
	}

	setString := func(env, key string, field *string) {
		if v := os.Getenv(env); v != "" {
			*field = v
			cfg.Sources[key] = SourceEnv
		}
	}

	setString(EnvStore, "store", &cfg.Store)
	setString(EnvDataDir, "dataDir", &cfg.DataDir)
	setString(EnvDefaultServer, "defaultServer", &cfg.DefaultServer)
	setString(EnvDefaultServerName, "defaultServerName", &cfg.DefaultServerName)
	setString(EnvLogLevel, "logLevel", &cfg.LogLevel)
	setString(EnvLogFormat, "logFormat", &cfg.LogFormat)
	setString(EnvLogFile, "logFile", &cfg.LogFile)

	if v := os.Getenv(EnvServerCreationDisabled); v != "" {
		cfg.ServerCreationDisabled = parseBool(v)
		cfg.Sources["serverCreationDisabled"] = SourceEnv
	}
}

// GetConfigFromEnv returns the explicit config file path from the environment.
// Returns empty string if not set.
func GetConfigFromEnv() string {
	return os.Getenv(EnvConfig)
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes":
		return true
	}
	return false
}
