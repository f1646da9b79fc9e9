package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/getmockd/stubdesk/pkg/cli/internal/output"
	"github.com/getmockd/stubdesk/pkg/server"
)

var (
	serverName string
	serverURL  string
	serverPort int
	serverNew  string
)

var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "Manage the mock servers mappings are edited against",
	Long: `Manage the mock servers mappings are edited against.

Servers are kept in the configured repository (--store). An empty repository
is seeded with the default server from defaultServer/STUBDESK_DEFAULT_SERVER.`,
}

var serversListCmd = &cobra.Command{
	Use:   "list",
	Short: "List servers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		servers, backing, err := openServers()
		if err != nil {
			return err
		}
		defer backing.Close()

		list, err := servers.Load(cmd.Context())
		if err != nil {
			return err
		}
		return printResult(cmd, list, func(w io.Writer) {
			if len(list) == 0 {
				fmt.Fprintln(w, "No servers configured")
				return
			}
			tw := output.Table(w)
			fmt.Fprintln(tw, "NAME\tURL\tBASE URL")
			for _, srv := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", srv.Name, srv.URL, srv.BaseURL())
			}
			_ = tw.Flush()
		})
	},
}

var serversAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a server",
	Long: `Add a server. Without --name, an interactive form asks for the details.

--url may include a port, e.g. http://localhost:8080.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("name") {
			if err := runServerForm(cmd); err != nil {
				return err
			}
		}

		srv := serverFromFlags(serverName)
		servers, backing, err := openServers()
		if err != nil {
			return err
		}
		defer backing.Close()

		if err := servers.Create(cmd.Context(), srv); err != nil {
			return err
		}
		return printResult(cmd, srv, func(w io.Writer) {
			fmt.Fprintf(w, "Added server %s (%s)\n", srv.Name, srv.BaseURL())
		})
	},
}

var serversUpdateCmd = &cobra.Command{
	Use:   "update NAME",
	Short: "Update a server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		servers, backing, err := openServers()
		if err != nil {
			return err
		}
		defer backing.Close()

		existing, err := servers.Find(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		srv := *existing
		if cmd.Flags().Changed("new-name") {
			srv.Name = serverNew
		}
		if cmd.Flags().Changed("url") {
			srv.URL, srv.Port = server.ParseURL(serverURL)
		}
		if cmd.Flags().Changed("port") {
			srv.Port = serverPort
		}

		if err := servers.Update(cmd.Context(), args[0], srv); err != nil {
			return err
		}
		return printResult(cmd, srv, func(w io.Writer) {
			fmt.Fprintf(w, "Updated server %s (%s)\n", srv.Name, srv.BaseURL())
		})
	},
}

var serversRemoveCmd = &cobra.Command{
	Use:     "remove NAME",
	Aliases: []string{"rm"},
	Short:   "Remove a server",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		servers, backing, err := openServers()
		if err != nil {
			return err
		}
		defer backing.Close()

		if err := servers.Remove(cmd.Context(), args[0]); err != nil {
			return err
		}
		return printResult(cmd, map[string]string{"removed": args[0]}, func(w io.Writer) {
			fmt.Fprintf(w, "Removed server %s\n", args[0])
		})
	},
}

// serverFromFlags builds a server from --url and --port. An explicit --port
// wins over a port in the URL.
func serverFromFlags(name string) server.Server {
	srv := server.FromAddress(name, serverURL)
	if serverPort != 0 {
		srv.Port = serverPort
	}
	return srv
}

// runServerForm asks for the server details and stores them in the flags.
func runServerForm(cmd *cobra.Command) error {
	portStr := ""
	if serverPort != 0 {
		portStr = strconv.Itoa(serverPort)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Server name").
				Placeholder("local").
				Value(&serverName).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Server URL").
				Placeholder(server.DefaultBaseURL).
				Value(&serverURL).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("url is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Port (optional)").
				Value(&portStr).
				Validate(func(s string) error {
					if s == "" {
						return nil
					}
					if _, err := strconv.Atoi(s); err != nil {
						return errors.New("port must be a number")
					}
					return nil
				}),
		),
	).WithInput(cmd.InOrStdin()).WithOutput(cmd.ErrOrStderr())

	if err := form.Run(); err != nil {
		return err
	}
	if portStr != "" {
		serverPort, _ = strconv.Atoi(portStr)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(serversCmd)
	serversCmd.AddCommand(serversListCmd)
	serversCmd.AddCommand(serversAddCmd)
	serversCmd.AddCommand(serversUpdateCmd)
	serversCmd.AddCommand(serversRemoveCmd)

	serversAddCmd.Flags().StringVar(&serverName, "name", "", "Server name")
	serversAddCmd.Flags().StringVar(&serverURL, "url", "", "Server URL, optionally with a port")
	serversAddCmd.Flags().IntVar(&serverPort, "port", 0, "Server port")

	serversUpdateCmd.Flags().StringVar(&serverNew, "new-name", "", "Rename the server")
	serversUpdateCmd.Flags().StringVar(&serverURL, "url", "", "Server URL, optionally with a port")
	serversUpdateCmd.Flags().IntVar(&serverPort, "port", 0, "Server port")
}
