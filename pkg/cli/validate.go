package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/getmockd/stubdesk/pkg/mapping"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate raw stub mapping JSON",
	Long: `Validate a raw stub mapping document the way the JSON editor does: syntax,
structure, matcher shapes and operand values.

Exits with a non-zero status when there are errors. Warnings alone do not fail.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(cmd, args)
		if err != nil {
			return err
		}

		result := mapping.ValidateJSON(data)
		if err := printResult(cmd, result, func(w io.Writer) {
			printIssues(w, result)
		}); err != nil {
			return err
		}
		if n := len(result.Errors()); n > 0 {
			return fmt.Errorf("mapping has %d error(s)", n)
		}
		return nil
	},
}

// printIssues lists issues under a heading per severity.
func printIssues(w io.Writer, result *mapping.ValidationResult) {
	if len(result.Issues) == 0 {
		fmt.Fprintln(w, "Mapping is valid")
		return
	}

	title := cases.Title(language.English)
	groups := []struct {
		severity mapping.Severity
		issues   []mapping.Issue
	}{
		{mapping.SeverityError, result.Errors()},
		{mapping.SeverityWarning, result.Warnings()},
	}
	for _, g := range groups {
		if len(g.issues) == 0 {
			continue
		}
		fmt.Fprintf(w, "%ss (%d):\n", title.String(string(g.severity)), len(g.issues))
		for _, issue := range g.issues {
			if issue.Path != "" {
				fmt.Fprintf(w, "  %s: %s\n", issue.Path, issue.Message)
			} else {
				fmt.Fprintf(w, "  %s\n", issue.Message)
			}
		}
	}
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
