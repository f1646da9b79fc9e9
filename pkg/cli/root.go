package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/getmockd/stubdesk/pkg/cliconfig"
	"github.com/getmockd/stubdesk/pkg/logging"
)

var (
	// Persistent flags available to all subcommands
	configPath string
	storeName  string
	dataDir    string
	logLevel   string
	logFormat  string
	logFile    string
	jsonOutput bool

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// session is the state resolved once per invocation by the root command.
type session struct {
	cfg       *cliconfig.CLIConfig
	log       *slog.Logger
	logCloser io.Closer
}

var current *session

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stubdesk",
	Short: "stubdesk edits and inspects stub mappings for WireMock-compatible mock servers",
	Long: `stubdesk converts stub mappings to and from editable form values, builds the
mapping explorer tree, validates raw mapping JSON and turns mappings into cURL
commands that replay a matching request.

Configuration can be provided via flags, STUBDESK_* environment variables, a
local .stubdeskrc.yaml or the global <config dir>/stubdesk/config.yaml.`,
	SilenceUsage:      true,
	SilenceErrors:     true, // We handle errors in Execute()
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return teardown()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	_ = teardown()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Config file (default: .stubdeskrc.yaml, then the global config)")
	flags.StringVar(&storeName, "store", cliconfig.DefaultStore, "Server repository backend: file, sqlite or memory")
	flags.StringVar(&dataDir, "data-dir", "", "Directory for the server repository")
	flags.StringVar(&logLevel, "log-level", cliconfig.DefaultLogLevel, "Log level: debug, info, warn, error")
	flags.StringVar(&logFormat, "log-format", cliconfig.DefaultLogFormat, "Log format: text or json")
	flags.StringVar(&logFile, "log-file", "", "Also write JSON logs to this file, rotated by size")
	flags.BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")

	rootCmd.Version = Version
}

// setup resolves the configuration and logger for the invoked command.
func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := cliconfig.LoadAll(cliconfig.LoadOptions{ConfigFile: configPath})
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logCfg := cfg.LoggingConfig()
	logCfg.Output = cmd.ErrOrStderr()
	log, closer := logging.Open(logCfg)
	log.Debug("configuration loaded", "store", cfg.Store, "sources", cfg.Sources)

	current = &session{cfg: cfg, log: log, logCloser: closer}
	return nil
}

func teardown() error {
	if current == nil {
		return nil
	}
	err := current.logCloser.Close()
	current = nil
	return err
}

// applyFlags overrides the loaded config with flags set on the command line.
func applyFlags(cmd *cobra.Command, cfg *cliconfig.CLIConfig) {
	flags := cmd.Flags()
	set := func(name string, dst *string, value string) {
		if flags.Changed(name) {
			*dst = value
			cfg.Sources[name] = cliconfig.SourceFlag
		}
	}
	set("store", &cfg.Store, storeName)
	set("data-dir", &cfg.DataDir, dataDir)
	set("log-level", &cfg.LogLevel, logLevel)
	set("log-format", &cfg.LogFormat, logFormat)
	set("log-file", &cfg.LogFile, logFile)
	if flags.Changed("json") {
		cfg.JSON = jsonOutput
		cfg.Sources["json"] = cliconfig.SourceFlag
	}
}

// logger returns the session logger, or a no-op logger outside a command run.
func logger() *slog.Logger {
	if current == nil {
		return logging.Nop()
	}
	return current.log
}

// wantJSON reports whether results should be printed as JSON.
func wantJSON() bool {
	if current != nil {
		return current.cfg.JSON
	}
	return jsonOutput
}

// SetBuildInfo records the build metadata shown by --version.
func SetBuildInfo(version, commit, buildDate string) {
	Version, Commit, BuildDate = version, commit, buildDate
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("stubdesk {{.Version}} (commit %s, built %s)\n", commit, buildDate))
}
