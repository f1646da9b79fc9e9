package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	// GlobalConfigDir is the directory for global config
	GlobalConfigDir = "stubdesk"
)

// LocalConfigFileNames are the names to search for local config (in order).
var LocalConfigFileNames = []string{".stubdeskrc.yaml", ".stubdeskrc.yml"}

// GlobalConfigFileNames are the names to search for global config (in order).
var GlobalConfigFileNames = []string{"config.yaml", "config.yml"}

// knownKeys are the top-level keys a config file may contain.
var knownKeys = map[string]bool{
	"store":                  true,
	"dataDir":                true,
	"defaultServer":          true,
	"defaultServerName":      true,
	"serverCreationDisabled": true,
	"logLevel":               true,
	"logFormat":              true,
	"logFile":                true,
	"json":                   true,
}

var yamlLinePattern = regexp.MustCompile(`line (\d+)`)

// FindLocalConfig searches for .stubdeskrc.yaml or .stubdeskrc.yml in dir.
// An empty dir means the current directory.
func FindLocalConfig(dir string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		dir = cwd
	}
	for _, name := range LocalConfigFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

// FindGlobalConfig returns the path to the global config file.
// Returns empty string if not found.
func FindGlobalConfig() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		//nolint:nilerr // intentionally returning empty string when no config dir is available
		return "", nil
	}
	for _, name := range GlobalConfigFileNames {
		path := filepath.Join(configDir, GlobalConfigDir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

// LoadConfigFile loads a CLIConfig from a YAML file.
func LoadConfigFile(path string) (*CLIConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(path, data)
}

// ParseConfig decodes YAML config data. path is only used in errors.
func ParseConfig(path string, data []byte) (*CLIConfig, error) {
	cfg := &CLIConfig{
		Sources:   make(map[string]string),
		SetFields: make(map[string]bool),
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, newConfigError(path, err)
	}
	if len(doc.Content) == 0 {
		return cfg, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &ConfigError{Path: path, Line: root.Line, Column: root.Column, Message: "config must be a mapping"}
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i]
		if !knownKeys[key.Value] {
			return nil, &ConfigError{
				Path:    path,
				Line:    key.Line,
				Column:  key.Column,
				Message: fmt.Sprintf("unknown field %q", key.Value),
			}
		}
		cfg.SetFields[key.Value] = true
	}

	if err := root.Decode(cfg); err != nil {
		return nil, newConfigError(path, err)
	}
	return cfg, nil
}

// newConfigError wraps a yaml error, lifting the first reported line.
func newConfigError(path string, err error) *ConfigError {
	cfgErr := &ConfigError{Path: path, Message: err.Error()}
	if m := yamlLinePattern.FindStringSubmatch(err.Error()); m != nil {
		cfgErr.Line, _ = strconv.Atoi(m[1])
	}
	return cfgErr
}

// ConfigError represents a configuration file error with location info.
type ConfigError struct {
	Path    string
	Line    int
	Column  int
	Message string
}

func (e *ConfigError) Error() string {
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("%s (line %d, column %d): %s", e.Path, e.Line, e.Column, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("%s (line %d): %s", e.Path, e.Line, e.Message)
	}
	return e.Path + ": " + e.Message
}

// LoadOptions controls where LoadAll looks for config files.
type LoadOptions struct {
	// ConfigFile replaces the local config lookup when set.
	ConfigFile string
	// Dir is searched for a local config. Empty means the current directory.
	Dir string
	// SkipGlobal disables the global config file.
	SkipGlobal bool
}

// LoadAll loads configuration from all sources and merges them.
// Precedence: flags > env > local config > global config > defaults.
// Flags are applied by the caller on the returned config.
func LoadAll(opts LoadOptions) (*CLIConfig, error) {
	// Start with defaults
	cfg := NewDefault()

	if !opts.SkipGlobal {
		if globalPath, err := FindGlobalConfig(); err == nil && globalPath != "" {
			globalCfg, err := LoadConfigFile(globalPath)
			if err != nil {
				return nil, err
			}
			MergeConfig(cfg, globalCfg, SourceGlobal)
		}
	}

	configFile := opts.ConfigFile
	if configFile == "" {
		configFile = GetConfigFromEnv()
	}
	if configFile != "" {
		fileCfg, err := LoadConfigFile(configFile)
		if err != nil {
			return nil, err
		}
		MergeConfig(cfg, fileCfg, SourceFile)
	} else {
		localPath, err := FindLocalConfig(opts.Dir)
		if err != nil {
			return nil, err
		}
		if localPath != "" {
			localCfg, err := LoadConfigFile(localPath)
			if err != nil {
				return nil, err
			}
			MergeConfig(cfg, localCfg, SourceLocal)
		}
	}

	// Load environment variables
	LoadEnvConfig(cfg)

	return cfg, nil
}
