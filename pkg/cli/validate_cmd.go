package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"posgate/internal/declarative"
)

func newValidateCmd() *cobra.Command {
	var (
		seedDir            string
		allowUnknownFields bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Args:  cobra.NoArgs,
		Short: "Validate a declarative seed tree offline",
		Long:  "Reads YAML seed documents and checks them for errors without contacting the server.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			desired, err := declarative.LoadWithOptions(seedDir, declarative.LoadOptions{
				AllowUnknownFields: allowUnknownFields,
			})
			if err != nil {
				return fmt.Errorf("load seeds: %w", err)
			}
			return reportValidation(cmd, declarative.Validate(desired))
		},
	}

	cmd.Flags().StringVar(&seedDir, "seed-dir", "./seeds", "Path to the seed directory")
	cmd.Flags().BoolVar(&allowUnknownFields, "allow-unknown-fields", false, "Allow unknown YAML fields in seed documents")

	return cmd
}

// reportValidation renders a validation outcome in the active output
// format. A non-empty error list exits 1 in both formats.
func reportValidation(cmd *cobra.Command, errs []declarative.ValidationError) error {
	if getOutputFormat(cmd) == "json" {
		payload := map[string]interface{}{"valid": len(errs) == 0}
		if len(errs) > 0 {
			msgs := make([]string, len(errs))
			for i, ve := range errs {
				msgs[i] = ve.Error()
			}
			payload["errors"] = msgs
		}
		if err := PrintJSON(os.Stdout, payload); err != nil {
			return err
		}
		if len(errs) > 0 {
			return &exitError{code: 1}
		}
		return nil
	}

	if len(errs) > 0 {
		return reportSeedErrors(errs)
	}
	_, _ = fmt.Fprintln(os.Stdout, "Configuration is valid.")
	return nil
}
