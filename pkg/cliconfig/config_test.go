package cliconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/stubdesk/pkg/logging"
)

func TestCLIConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*CLIConfig)
		wantErr string
	}{
		{name: "valid defaults", mutate: func(*CLIConfig) {}},
		{name: "sqlite store", mutate: func(c *CLIConfig) { c.Store = "sqlite" }},
		{name: "level any case", mutate: func(c *CLIConfig) { c.LogLevel = "DEBUG" }},
		{name: "unknown store", mutate: func(c *CLIConfig) { c.Store = "redis" }, wantErr: `store "redis" is not one of`},
		{name: "unknown level", mutate: func(c *CLIConfig) { c.LogLevel = "loud" }, wantErr: `logLevel "loud"`},
		{name: "unknown format", mutate: func(c *CLIConfig) { c.LogFormat = "xml" }, wantErr: `logFormat "xml"`},
		{
			name: "default server without name",
			mutate: func(c *CLIConfig) {
				c.DefaultServer = "http://localhost:8080"
				c.DefaultServerName = ""
			},
			wantErr: "defaultServerName is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewDefault()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoggingConfig(t *testing.T) {
	t.Parallel()

	cfg := NewDefault()
	cfg.LogLevel = "debug"
	cfg.LogFormat = "json"
	cfg.LogFile = "/tmp/stubdesk.log"

	lc := cfg.LoggingConfig()
	assert.Equal(t, logging.LevelDebug, lc.Level)
	assert.Equal(t, logging.FormatJSON, lc.Format)
	assert.Equal(t, "/tmp/stubdesk.log", lc.File)
}

func TestMergeConfig(t *testing.T) {
	t.Parallel()

	t.Run("merges non-zero values", func(t *testing.T) {
		target := NewDefault()
		source := &CLIConfig{Store: "sqlite", DataDir: "/data", SetFields: map[string]bool{"store": true, "dataDir": true}}

		MergeConfig(target, source, SourceLocal)

		assert.Equal(t, "sqlite", target.Store)
		assert.Equal(t, "/data", target.DataDir)
		assert.Equal(t, SourceLocal, target.Sources["store"])
		assert.Equal(t, SourceDefault, target.Sources["logLevel"])
	})

	t.Run("does not overwrite with zero values", func(t *testing.T) {
		target := NewDefault()
		MergeConfig(target, &CLIConfig{}, SourceLocal)
		assert.Equal(t, DefaultStore, target.Store)
	})

	t.Run("explicit false with SetFields", func(t *testing.T) {
		target := NewDefault()
		target.ServerCreationDisabled = true

		MergeConfig(target, &CLIConfig{SetFields: map[string]bool{"serverCreationDisabled": true}}, SourceLocal)
		assert.False(t, target.ServerCreationDisabled)
	})

	t.Run("false without SetFields is ignored", func(t *testing.T) {
		target := NewDefault()
		target.JSON = true

		MergeConfig(target, &CLIConfig{}, SourceLocal)
		assert.True(t, target.JSON)
	})

	t.Run("nil source is no-op", func(t *testing.T) {
		target := NewDefault()
		MergeConfig(target, nil, SourceLocal)
		assert.Equal(t, *NewDefault(), *target)
	})
}

func TestParseConfig(t *testing.T) {
	t.Parallel()

	t.Run("fields and set keys", func(t *testing.T) {
		cfg, err := ParseConfig("rc.yaml", []byte("store: memory\nserverCreationDisabled: false\ndefaultServer: http://localhost:9000\n"))
		require.NoError(t, err)
		assert.Equal(t, "memory", cfg.Store)
		assert.Equal(t, "http://localhost:9000", cfg.DefaultServer)
		assert.Equal(t, map[string]bool{"store": true, "serverCreationDisabled": true, "defaultServer": true}, cfg.SetFields)
	})

	t.Run("empty document", func(t *testing.T) {
		cfg, err := ParseConfig("rc.yaml", nil)
		require.NoError(t, err)
		assert.Empty(t, cfg.SetFields)
	})

	t.Run("unknown key has position", func(t *testing.T) {
		_, err := ParseConfig("rc.yaml", []byte("store: file\n  \nport: 8080\n"))
		var cfgErr *ConfigError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, 3, cfgErr.Line)
		assert.Equal(t, 1, cfgErr.Column)
		assert.Equal(t, `rc.yaml (line 3, column 1): unknown field "port"`, err.Error())
	})

	t.Run("type error has line", func(t *testing.T) {
		_, err := ParseConfig("rc.yaml", []byte("store: file\njson: [1, 2]\n"))
		var cfgErr *ConfigError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, 2, cfgErr.Line)
	})

	t.Run("not a mapping", func(t *testing.T) {
		_, err := ParseConfig("rc.yaml", []byte("- a\n- b\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "config must be a mapping")
	})
}

func TestConfigError_Error(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a.yaml: bad", (&ConfigError{Path: "a.yaml", Message: "bad"}).Error())
	assert.Equal(t, "a.yaml (line 2): bad", (&ConfigError{Path: "a.yaml", Line: 2, Message: "bad"}).Error())
}

func TestLoadAll_Precedence(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".stubdeskrc.yaml"),
		[]byte("store: sqlite\nlogLevel: info\njson: true\n"), 0600))

	t.Setenv(EnvConfig, "")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvServerCreationDisabled, "yes")

	cfg, err := LoadAll(LoadOptions{Dir: dir, SkipGlobal: true})
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store)
	assert.Equal(t, SourceLocal, cfg.Sources["store"])
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, SourceEnv, cfg.Sources["logLevel"])
	assert.True(t, cfg.JSON)
	assert.True(t, cfg.ServerCreationDisabled)
	assert.Equal(t, DefaultLogFormat, cfg.LogFormat)
	assert.Equal(t, SourceDefault, cfg.Sources["logFormat"])
}

func TestLoadAll_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".stubdeskrc.yaml"), []byte("store: sqlite\n"), 0600))
	explicit := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(explicit, []byte("store: memory\n"), 0600))

	t.Setenv(EnvConfig, "")
	t.Setenv(EnvStore, "")

	cfg, err := LoadAll(LoadOptions{ConfigFile: explicit, Dir: dir, SkipGlobal: true})
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Store)
	assert.Equal(t, SourceFile, cfg.Sources["store"])
}

func TestLoadAll_BadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".stubdeskrc.yml"), []byte("store: [\n"), 0600))
	t.Setenv(EnvConfig, "")

	_, err := LoadAll(LoadOptions{Dir: dir, SkipGlobal: true})
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
}
