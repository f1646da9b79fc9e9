// stubdesk CLI - edit and inspect stub mappings for WireMock-compatible mock servers
package main

import "github.com/getmockd/stubdesk/pkg/cli"

// Build-time variables set via ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func main() {
	cli.SetBuildInfo(Version, Commit, BuildDate)
	cli.Execute()
}
