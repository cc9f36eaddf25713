// Package cli implements the numtower command-line interface: inspecting
// the capability graph, explaining what a capability requires, and checking
// declaration manifests against claims.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/mfield/numtower"
	"github.com/mfield/numtower/internal/cueload"
)

// NewRootCommand creates the root numtower command with all subcommands.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "numtower",
		Short: "Capability classification for numeric-like types",
		Long: `numtower resolves capability claims for numeric-like types.

A type declares the primitive operations it implements; a claim names the
capabilities it wants. The resolver fills derivable gaps from the mixin
rules and reports exactly which primitives are missing when a claim fails.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("format", "text", "output format (text|json)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable verbose output")

	rootCmd.AddCommand(newTowerCommand())
	rootCmd.AddCommand(newExplainCommand())
	rootCmd.AddCommand(newCheckCommand())

	return rootCmd
}

// newFormatter builds an OutputFormatter from the command's persistent flags.
func newFormatter(cmd *cobra.Command) *OutputFormatter {
	format, _ := cmd.Flags().GetString("format")
	verbose, _ := cmd.Flags().GetBool("verbose")
	return &OutputFormatter{
		Format:    format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   verbose,
	}
}

// resolveTower returns the registry and library to run against: the builtin
// tower by default, or one compiled from a CUE spec directory.
func resolveTower(specsDir string) (*numtower.Registry, *numtower.Library, error) {
	if specsDir == "" {
		return numtower.DefaultRegistry(), numtower.DefaultLibrary(), nil
	}

	result, errs := cueload.LoadTower(specsDir, cueload.LoadModeFailFast)
	if len(errs) > 0 {
		return nil, nil, WrapExitError(ExitCommandError, "loading tower specs", errs[0])
	}

	reg, lib, err := cueload.BuildRegistry(result.Defs)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "building tower registry", err)
	}
	return reg, lib, nil
}
