package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/panelfs/backend/internal/domain/protected"
	"github.com/GriffinCanCode/panelfs/backend/internal/shared/types"
)

func openRegistry() (*protected.Registry, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return protected.NewRegistry(cfg.Storage.FoldersPath())
}

func newProtectedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "protected",
		Short: "Manage folders exempt from deletion",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List protected folders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := openRegistry()
			if err != nil {
				return err
			}
			list, err := reg.List()
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(list))
			for _, p := range list {
				rows = append(rows, []string{p.Path, p.DisplayName, strconv.FormatBool(p.IsVolumeRoot)})
			}
			printTable(cmd.OutOrStdout(), []string{"Path", "Name", "Volume"}, rows)
			return nil
		},
	})

	var name string
	var volume bool
	add := &cobra.Command{
		Use:   "add <path>",
		Short: "Protect a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := openRegistry()
			if err != nil {
				return err
			}
			if err := reg.Register(types.ProtectedPath{Path: args[0], DisplayName: name, IsVolumeRoot: volume}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Protected %s\n", args[0])
			return nil
		},
	}
	add.Flags().StringVar(&name, "name", "", "Display name")
	add.Flags().BoolVar(&volume, "volume", false, "Mark as a volume root")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <path>",
		Short: "Stop protecting a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := openRegistry()
			if err != nil {
				return err
			}
			if err := reg.Unregister(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unprotected %s\n", args[0])
			return nil
		},
	})

	return cmd
}
