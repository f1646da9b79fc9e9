package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/getmockd/stubdesk/pkg/curl"
	"github.com/getmockd/stubdesk/pkg/mapping"
	"github.com/getmockd/stubdesk/pkg/server"
	"github.com/getmockd/stubdesk/pkg/store"
	"github.com/getmockd/stubdesk/pkg/util"
)

var curlServer string

var curlCmd = &cobra.Command{
	Use:   "curl [file]",
	Short: "Print a cURL command that sends a request matching the mapping",
	Long: `Print a cURL command that sends a request matching the mapping.

The request goes to the server named by --server, looked up in the server
repository. Without --server, or when the server is unknown, the request goes
to ` + server.DefaultBaseURL + `.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		mappings, err := mapping.ParseMappings(data)
		if err != nil {
			return err
		}

		srv, err := resolveServer(cmd, curlServer)
		if err != nil {
			return err
		}

		commands := make([]string, 0, len(mappings))
		for _, m := range mappings {
			commands = append(commands, curl.Generate(m, srv))
		}
		return printResult(cmd, commands, func(w io.Writer) {
			printText(w, strings.Join(commands, "\n\n"))
		})
	},
}

var importCurlCmd = &cobra.Command{
	Use:   "import-curl [command...]",
	Short: "Create a stub mapping from a cURL command",
	Long: `Create a stub mapping that matches the request a cURL command sends.

The command is taken from the arguments, or read from stdin when there are none.`,
	Example: `  stubdesk import-curl "curl -X POST http://localhost:8080/api/users -d '{\"name\":\"x\"}'"
  pbpaste | stubdesk import-curl`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var input string
		if len(args) > 0 {
			input = strings.Join(args, " ")
		} else {
			data, err := readInput(cmd, nil)
			if err != nil {
				return err
			}
			input = string(data)
		}

		parsed, err := curl.Parse(input)
		if err != nil {
			return err
		}
		m, err := parsed.Mapping()
		if err != nil {
			return err
		}
		out, err := util.PrettyJSON(m)
		if err != nil {
			return err
		}
		printText(cmd.OutOrStdout(), out)
		return nil
	},
}

// resolveServer finds a server by name. A missing or unknown name yields nil,
// which callers treat as the default server.
func resolveServer(cmd *cobra.Command, name string) (*server.Server, error) {
	if name == "" {
		return nil, nil
	}
	servers, backing, err := openServers()
	if err != nil {
		return nil, err
	}
	defer backing.Close()

	srv, err := servers.Find(cmd.Context(), name)
	if errors.Is(err, store.ErrNotFound) {
		logger().Warn("unknown server, using default", "server", name, "url", server.DefaultBaseURL)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve server: %w", err)
	}
	return srv, nil
}

func init() {
	rootCmd.AddCommand(curlCmd)
	rootCmd.AddCommand(importCurlCmd)

	curlCmd.Flags().StringVar(&curlServer, "server", "", "Name of the server to send the request to")
}
