// Configuration is layered, lowest to highest: built-in defaults, the global
// file (<user config dir>/stubdesk/config.yaml), the local .stubdeskrc.yaml,
// STUBDESK_* environment variables and finally command-line flags.
//
// Example .stubdeskrc.yaml:
//
//	store: sqlite
//	dataDir: ./.stubdesk
//	defaultServer: http://localhost:8080
//	defaultServerName: local
//	logLevel: info
package cliconfig
