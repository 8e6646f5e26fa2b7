package cmd

import (
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/infrahq/unpublished/internal/server/data"
	"github.com/infrahq/unpublished/internal/server/models"
)

func newUsersCmd(cli *CLI) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users that issue access tokens",
	}

	cmd.AddCommand(
		newUsersAddCmd(cli),
		newUsersListCmd(cli),
		newUsersRemoveCmd(cli),
	)

	return cmd
}

func newUsersAddCmd(cli *CLI) *cobra.Command {
	var roles []string

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a user and print its API key",
		Long: `Add a user and print its API key.

The key is only shown once. Send it as "Authorization: Bearer <key>".`,
		Example: `$ unpublished users add alice --roles editors`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(db *gorm.DB) error {
				user := &models.User{Name: args[0], Roles: roles}
				if err := data.CreateUser(db, user); err != nil {
					return err
				}

				cli.Output("Added user %q", user.Name)
				cli.Output("Key: %s", user.Key())
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&roles, "roles", nil, "Roles of the user")

	return cmd
}

func newUsersListCmd(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List users",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(db *gorm.DB) error {
				users, err := data.ListUsers(db)
				if err != nil {
					return err
				}

				type row struct {
					Name  string `header:"NAME"`
					ID    string `header:"ID"`
					Roles string `header:"ROLES"`
				}

				cli.Table(lo.Map(users, func(u models.User, _ int) row {
					return row{Name: u.Name, ID: u.ID.String(), Roles: strings.Join(u.Roles, ", ")}
				}))
				return nil
			})
		},
	}
}

func newUsersRemoveCmd(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:     "remove NAME",
		Aliases: []string{"rm"},
		Short:   "Remove a user and the access tokens it issued",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(db *gorm.DB) error {
				user, err := data.GetUser(db, data.ByName(args[0]))
				if err != nil {
					return err
				}

				if err := data.DeleteUser(db, user.ID); err != nil {
					return err
				}

				cli.Output("Removed user %q", user.Name)
				return nil
			})
		},
	}
}
