package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/getmockd/stubdesk/pkg/cli/internal/output"
)

// printResult outputs a single operation result.
//
// Contract: when --json is active, ONLY the JSON encoding of data is written
// to stdout. Human-readable prose must go to stderr or be omitted entirely.
// textFn is called only in text mode.
func printResult(cmd *cobra.Command, data any, textFn func(w io.Writer)) error {
	if wantJSON() {
		return output.JSON(cmd.OutOrStdout(), data)
	}
	textFn(cmd.OutOrStdout())
	return nil
}

// readInput reads the document named by the first argument, or stdin when
// there is no argument or it is "-".
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return data, nil
}

// printText writes s followed by a newline unless it already ends with one.
func printText(w io.Writer, s string) {
	if strings.HasSuffix(s, "\n") {
		fmt.Fprint(w, s)
		return
	}
	fmt.Fprintln(w, s)
}
