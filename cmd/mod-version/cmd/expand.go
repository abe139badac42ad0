package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oshokin/mod-version/internal/service/versioner"
)

// outDir receives expanded copies instead of rewriting files in place.
var outDir string

// expandCmd derives the version and substitutes it into resource files.
var expandCmd = &cobra.Command{
	Use:   "expand FILE...",
	Short: "Replace ${version}, ${mcversion} and @@VERSION@@ in the given files.",
	Long: `Derives and persists the version like the root command, then substitutes it into
the given files. Resources such as mcmod.info use ${version} and ${mcversion};
sources use the @@VERSION@@ placeholder. Without --out-dir files are rewritten in place.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := run(cmd)
		if err != nil {
			return err
		}

		err = versioner.Expand(context.Background(), result, &versioner.ExpandOptions{
			Files:  args,
			OutDir: outDir,
		})
		if err != nil {
			return fmt.Errorf("expand: %w", err)
		}

		return nil
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	expandCmd.Flags().StringVar(&outDir, "out-dir", "", "write expanded copies into this directory")
}
