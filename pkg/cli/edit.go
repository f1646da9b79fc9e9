package cli

import (
	"github.com/spf13/cobra"

	"github.com/getmockd/stubdesk/pkg/mapping"
	"github.com/getmockd/stubdesk/pkg/util"
)

var (
	cloneForCreate bool
	cloneUpdateID  string
	beautifyXML    bool
)

var cloneCmd = &cobra.Command{
	Use:   "clone [file]",
	Short: "Clone a raw stub mapping",
	Long: `Clone a raw stub mapping: id and uuid are dropped and the name gets a
" (copy)" suffix. Fields stubdesk does not model are kept as they are.

With --for-create only the identifiers are dropped; with --update-id the id is
set to the given value instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(cmd, args)
		if err != nil {
			return err
		}

		var out []byte
		switch {
		case cloneUpdateID != "":
			out, err = mapping.PrepareForUpdate(data, cloneUpdateID)
		case cloneForCreate:
			out, err = mapping.PrepareForCreate(data)
		default:
			out, err = mapping.CloneJSON(data)
		}
		if err != nil {
			return err
		}
		printText(cmd.OutOrStdout(), util.BeautifyJSON(string(out)))
		return nil
	},
}

var beautifyCmd = &cobra.Command{
	Use:   "beautify [file]",
	Short: "Pretty-print a JSON or XML body",
	Long: `Pretty-print a JSON or XML body. The format is detected from the content
unless --xml is given. Input that cannot be parsed is printed unchanged.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		if beautifyXML {
			printText(cmd.OutOrStdout(), util.BeautifyXML(string(data)))
			return nil
		}
		printText(cmd.OutOrStdout(), util.Beautify(string(data)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cloneCmd)
	rootCmd.AddCommand(beautifyCmd)

	cloneCmd.Flags().BoolVar(&cloneForCreate, "for-create", false, "Only drop id and uuid")
	cloneCmd.Flags().StringVar(&cloneUpdateID, "update-id", "", "Set the mapping id instead of cloning")
	beautifyCmd.Flags().BoolVar(&beautifyXML, "xml", false, "Treat the input as XML")
}
