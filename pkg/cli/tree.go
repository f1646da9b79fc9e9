package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/getmockd/stubdesk/pkg/mapping"
	"github.com/getmockd/stubdesk/pkg/server"
	"github.com/getmockd/stubdesk/pkg/tree"
)

var (
	treeServer string
	treeOpen   []string
	treeFolder string
	treeAll    bool
)

var treeCmd = &cobra.Command{
	Use:   "tree [file...]",
	Short: "Show the explorer tree of mappings",
	Long: `Show mappings grouped by folder, the way the explorer lists them.

Each file may hold a single mapping, an array of mappings or an admin API
listing. With no file, mappings are read from stdin. With --all, the full tree
over every configured server is shown, with the mappings loaded under --server.`,
	Example: `  # Folder view of exported mappings
  stubdesk tree mappings.json

  # Only mappings below users/
  stubdesk tree --folder 'users/**' mappings.json

  # Full explorer tree, mappings loaded for the "local" server
  stubdesk tree --all --server local mappings.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := loadEntries(cmd, args)
		if err != nil {
			return err
		}
		opts := tree.Options{OpenIDs: treeOpen, FolderPattern: treeFolder}

		if !treeAll {
			nodes := tree.BuildMappings(treeServer, entries, opts)
			return printResult(cmd, nodes, func(w io.Writer) {
				_ = tree.RenderAll(w, nodes)
			})
		}

		servers, backing, err := openServers()
		if err != nil {
			return err
		}
		defer backing.Close()

		list, err := servers.Load(cmd.Context())
		if err != nil {
			return err
		}
		mappings := map[string][]tree.Entry{}
		if _, ok := server.Find(list, treeServer); ok {
			mappings[treeServer] = entries
		} else if len(args) > 0 {
			logger().Warn("mappings not attached: unknown server", "server", treeServer)
		}

		root := tree.Build(tree.Input{
			Servers:                list,
			Mappings:               mappings,
			Options:                opts,
			ServerCreationDisabled: servers.CreationDisabled(),
		})
		return printResult(cmd, root, func(w io.Writer) {
			_ = tree.Render(w, root)
		})
	},
}

var foldersCmd = &cobra.Command{
	Use:   "folders [file...]",
	Short: "List the folders in use, for folder suggestions",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := loadEntries(cmd, args)
		if err != nil {
			return err
		}
		folders := tree.ExistingFolders(entries)
		return printResult(cmd, folders, func(w io.Writer) {
			for _, f := range folders {
				fmt.Fprintln(w, f)
			}
		})
	},
}

// loadEntries reads mappings from every file argument, or stdin.
func loadEntries(cmd *cobra.Command, args []string) ([]tree.Entry, error) {
	if len(args) == 0 {
		args = []string{"-"}
	}
	var all []*mapping.StubMapping
	for _, arg := range args {
		var data []byte
		var err error
		if arg == "-" {
			data, err = readInput(cmd, nil)
		} else {
			data, err = os.ReadFile(arg)
		}
		if err != nil {
			return nil, err
		}
		mappings, err := mapping.ParseMappings(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", arg, err)
		}
		all = append(all, mappings...)
	}
	return tree.EntriesFrom(all), nil
}

func init() {
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(foldersCmd)

	treeCmd.Flags().StringVar(&treeServer, "server", "local", "Server the mappings belong to")
	treeCmd.Flags().StringSliceVar(&treeOpen, "open", nil, "Ids of mappings open in the editor")
	treeCmd.Flags().StringVar(&treeFolder, "folder", "", "Only show folders matching this glob, e.g. users/**")
	treeCmd.Flags().BoolVar(&treeAll, "all", false, "Show the full tree over all configured servers")
}
