package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/panelfs/backend/internal/api/middleware"
	"github.com/GriffinCanCode/panelfs/backend/internal/domain/resolver"
	"github.com/GriffinCanCode/panelfs/backend/internal/providers/drives"
	"github.com/GriffinCanCode/panelfs/backend/internal/providers/filesystem"
)

func newDrivesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drives",
		Short: "List mounted volumes as the server sees them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			vols := drives.New(nil).ListVolumes(cmd.Context())
			rows := make([][]string, 0, len(vols))
			for _, v := range vols {
				rows = append(rows, []string{v.Name, v.MountPath, v.SizeLabel, v.FilesystemType, strconv.FormatBool(v.IsRemovable)})
			}
			printTable(cmd.OutOrStdout(), []string{"Name", "Path", "Size", "Type", "Removable"}, rows)
			return nil
		},
	}
}

func newStatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stat <logical-path>",
		Short: "Show size and contents of a logical path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			res := resolver.New(cfg.Storage.Root, cfg.Storage.ExternalPrefixes)
			loc := res.Resolve(args[0])
			if !res.Contained(loc) {
				return fmt.Errorf("%s escapes the storage root", args[0])
			}

			d, err := filesystem.New(res, nil).Details(loc)
			if err != nil {
				return err
			}
			printTable(cmd.OutOrStdout(), []string{"Field", "Value"}, [][]string{
				{"Path", loc.LogicalPath},
				{"Physical", loc.PhysicalPath},
				{"Type", d.MimeType},
				{"Size", humanize.Bytes(uint64(d.TotalSize))},
				{"Items", humanize.Comma(d.ItemCount)},
				{"Modified", humanize.Time(d.ModifiedAt)},
			})
			return nil
		},
	}
}

func newTokenCmd() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token <username>",
		Short: "Mint a bearer token for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openUsers()
			if err != nil {
				return err
			}
			u, err := store.GetByUsername(args[0])
			if err != nil {
				return err
			}

			token, err := middleware.SignToken(middleware.IdentityConfig{
				Secret: cfg.Auth.JWTSecret,
				Issuer: cfg.Auth.JWTIssuer,
			}, u.ID, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime (0 for none)")
	return cmd
}
