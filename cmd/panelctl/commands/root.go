// Package commands implements the panelctl administration CLI.
//
// panelctl edits the user registry and the protected folder registry in
// place, inspects the storage root and mints bearer tokens. It reads the
// same environment configuration as the server.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/panelfs/backend/internal/infrastructure/config"
)

// Flags are the global flag values shared by subcommands
var Flags struct {
	ConfigDir string
	Root      string
}

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "panelctl",
		Short: "panelfs administration",
		Long: `panelctl manages a panelfs installation from the host.

It edits the user and protected folder registries directly, so it must run
with access to the server's config directory and storage root.

Use "panelctl [command] --help" for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&Flags.ConfigDir, "config-dir", "", "Config directory (overrides CONFIG_DIR)")
	cmd.PersistentFlags().StringVar(&Flags.Root, "root", "", "Storage root (overrides STORAGE_ROOT)")

	cmd.AddCommand(newUsersCmd())
	cmd.AddCommand(newProtectedCmd())
	cmd.AddCommand(newDrivesCmd())
	cmd.AddCommand(newStatCmd())
	cmd.AddCommand(newTokenCmd())
	cmd.CompletionOptions.DisableDefaultCmd = true
	return cmd
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// PrintErr prints an error message to stderr
func PrintErr(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

// loadConfig reads the environment and applies flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if Flags.ConfigDir != "" {
		cfg.Storage.ConfigDir = Flags.ConfigDir
	}
	if Flags.Root != "" {
		cfg.Storage.Root = Flags.Root
	}
	return cfg, nil
}
