package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/stubdesk/pkg/mapping"
	"github.com/getmockd/stubdesk/pkg/util"
)

var (
	formYAML      bool
	buildYAML     bool
	buildValidate bool
)

var formCmd = &cobra.Command{
	Use:   "form [file]",
	Short: "Convert a stub mapping into editable form values",
	Long: `Convert a stub mapping into the flat form values bound to the mapping builder.

Reads the mapping from the file argument or stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		m, err := mapping.Parse(data)
		if err != nil {
			return err
		}

		fv := mapping.NewConverter(mapping.WithLogger(logger())).ToFormValues(m)
		if formYAML {
			return yaml.NewEncoder(cmd.OutOrStdout()).Encode(fv)
		}
		out, err := util.PrettyJSON(fv)
		if err != nil {
			return err
		}
		printText(cmd.OutOrStdout(), out)
		return nil
	},
}

var buildCmd = &cobra.Command{
	Use:   "build [file]",
	Short: "Build a stub mapping from form values",
	Long: `Build a stub mapping from form values (JSON, or YAML with --yaml).

With --validate, field problems are reported on stderr and the command fails
when there are any.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(cmd, args)
		if err != nil {
			return err
		}

		fv := mapping.NewFormValues()
		if buildYAML {
			err = yaml.Unmarshal(data, &fv)
		} else {
			err = json.Unmarshal(data, &fv)
		}
		if err != nil {
			return fmt.Errorf("invalid form values: %w", err)
		}

		if buildValidate {
			if errs := mapping.ValidateForm(fv); len(errs) > 0 {
				printFieldErrors(cmd.ErrOrStderr(), errs)
				return fmt.Errorf("form has %d invalid field(s)", len(errs))
			}
		}

		m := mapping.NewConverter(mapping.WithLogger(logger())).FromFormValues(fv)
		out, err := util.PrettyJSON(m)
		if err != nil {
			return err
		}
		printText(cmd.OutOrStdout(), out)
		return nil
	},
}

func printFieldErrors(w io.Writer, errs []mapping.FieldError) {
	for _, e := range errs {
		fmt.Fprintf(w, "  %s: %s\n", e.Field, e.Message)
	}
}

func init() {
	rootCmd.AddCommand(formCmd)
	rootCmd.AddCommand(buildCmd)

	formCmd.Flags().BoolVar(&formYAML, "yaml", false, "Print form values as YAML")
	buildCmd.Flags().BoolVar(&buildYAML, "yaml", false, "Read form values as YAML")
	buildCmd.Flags().BoolVar(&buildValidate, "validate", false, "Fail when the form has invalid fields")
}
