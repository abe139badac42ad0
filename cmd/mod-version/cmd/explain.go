package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/mod-version/internal/service/versioner"
)

// explainCmd derives the version and shows how it was assembled.
var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Derive the version and print its components as a table.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		result, err := run(cmd)
		if err != nil {
			return err
		}

		versioner.Explain(cmd.OutOrStdout(), result)

		return nil
	},
}
