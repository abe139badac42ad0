package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oshokin/mod-version/internal/service/versioner"
)

// currentCmd prints the version stored by the last run.
var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Print the version stored in the version file.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		stored, err := versioner.Current(context.Background(), options(cmd))
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), stored)

		return nil
	},
}
