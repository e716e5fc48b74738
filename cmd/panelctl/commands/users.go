package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/panelfs/backend/internal/domain/users"
	"github.com/GriffinCanCode/panelfs/backend/internal/shared/types"
)

func openUsers() (*users.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return users.NewStore(cfg.Storage.UsersPath(), cfg.Storage.Root)
}

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "Manage user accounts",
	}
	cmd.AddCommand(newUsersListCmd(), newUsersAddCmd(), newUsersPasswdCmd(), newUsersGrantCmd(), newUsersDeleteCmd())
	return cmd
}

func newUsersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openUsers()
			if err != nil {
				return err
			}
			all, err := store.Load()
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(all))
			for _, u := range all {
				folders := make([]string, 0, len(u.Folders))
				for _, g := range u.Folders {
					folders = append(folders, g.Path)
				}
				rows = append(rows, []string{u.ID, u.Username, string(u.Role), strings.Join(folders, ", ")})
			}
			printTable(cmd.OutOrStdout(), []string{"ID", "Username", "Role", "Folders"}, rows)
			return nil
		},
	}
}

func newUsersAddCmd() *cobra.Command {
	var password, role string
	var folders []string

	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Create a user and provision their home folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				return fmt.Errorf("--password is required")
			}
			store, err := openUsers()
			if err != nil {
				return err
			}
			if err := store.EnsureLayout(); err != nil {
				return err
			}

			in := users.NewUser{Username: args[0], Password: password, Role: types.Role(role)}
			for _, f := range folders {
				in.Folders = append(in.Folders, types.FolderGrant{Path: f})
			}
			u, err := store.Create(in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (id %s)\n", u.Username, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "Initial password")
	cmd.Flags().StringVar(&role, "role", string(types.RoleUser), "Role (user|admin)")
	cmd.Flags().StringSliceVar(&folders, "folder", nil, "Granted folder (repeatable); defaults to home, shared and public")
	return cmd
}

func newUsersPasswdCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "passwd <username>",
		Short: "Reset a user's password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				return fmt.Errorf("--password is required")
			}
			store, err := openUsers()
			if err != nil {
				return err
			}
			u, err := store.GetByUsername(args[0])
			if err != nil {
				return err
			}
			if err := store.SetPassword(u.ID, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Password updated for %s\n", u.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "New password")
	return cmd
}

func newUsersGrantCmd() *cobra.Command {
	var revoke bool
	cmd := &cobra.Command{
		Use:   "grant <username> <folder>",
		Short: "Grant (or with --revoke, remove) access to a folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openUsers()
			if err != nil {
				return err
			}
			u, err := store.GetByUsername(args[0])
			if err != nil {
				return err
			}

			folders := make([]types.FolderGrant, 0, len(u.Folders)+1)
			found := false
			for _, g := range u.Folders {
				if g.Path == args[1] {
					found = true
					if revoke {
						continue
					}
				}
				folders = append(folders, g)
			}
			if !found && !revoke {
				folders = append(folders, types.FolderGrant{Path: args[1]})
			}

			if _, err := store.Update(u.ID, users.Patch{Folders: &folders}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s now has %d folder(s)\n", u.Username, len(folders))
			return nil
		},
	}
	cmd.Flags().BoolVar(&revoke, "revoke", false, "Remove the grant instead")
	return cmd
}

func newUsersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <username>",
		Short: "Delete a user; their home folder is kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openUsers()
			if err != nil {
				return err
			}
			u, err := store.GetByUsername(args[0])
			if err != nil {
				return err
			}
			if u.ID == users.BootstrapAdminID {
				return fmt.Errorf("refusing to delete the bootstrap administrator")
			}
			if err := store.Delete(u.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %s\n", u.Username)
			return nil
		},
	}
}
