package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/infrahq/unpublished/internal"
	"github.com/infrahq/unpublished/internal/access"
	"github.com/infrahq/unpublished/internal/server/data"
	"github.com/infrahq/unpublished/internal/server/models"
)

func newRolesCmd(cli *CLI) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roles",
		Short: "Manage roles and their permissions",
	}

	cmd.AddCommand(
		newRolesAddCmd(cli),
		newRolesListCmd(cli),
	)

	return cmd
}

func newRolesAddCmd(cli *CLI) *cobra.Command {
	var permissions []string

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a role, or grant permissions to an existing role",
		Long: `Add a role, or grant permissions to an existing role.

The "anonymous" and "authenticated" roles apply to every viewer that is not,
or is, signed in.`,
		Example: `$ unpublished roles add editors --permissions "access_unpublished node article,issue token"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(db *gorm.DB) error {
				return rolesAdd(cmd, cli, db, args[0], permissions)
			})
		},
	}

	cmd.Flags().StringSliceVar(&permissions, "permissions", nil, "Permissions granted to the role")

	return cmd
}

func rolesAdd(cmd *cobra.Command, cli *CLI, db *gorm.DB, name string, permissions []string) error {
	known, err := knownPermissions(cmd, db)
	if err != nil {
		return err
	}

	unknown := lo.Filter(permissions, func(p string, _ int) bool {
		return !lo.Contains(known, p)
	})
	if len(unknown) > 0 {
		return fmt.Errorf("unknown permissions %q, run 'unpublished permissions list --all' to see the available permissions", unknown)
	}

	role, err := data.GetRole(db, name)
	switch {
	case errors.Is(err, internal.ErrNotFound):
		role = &models.Role{Name: name, Permissions: lo.Uniq(permissions)}
		if err := data.CreateRole(db, role); err != nil {
			return err
		}

		cli.Output("Added role %q", name)
		return nil

	case err != nil:
		return err
	}

	role.Permissions = lo.Uniq(append(role.Permissions, permissions...))
	if err := data.UpdateRole(db, role); err != nil {
		return err
	}

	cli.Output("Updated role %q", name)
	return nil
}

func knownPermissions(cmd *cobra.Command, db *gorm.DB) ([]string, error) {
	definitions, err := access.NewPermissionRegistry(data.BundleCatalog{DB: db}).Definitions(cmd.Context())
	if err != nil {
		return nil, err
	}

	definitions = append(access.StaticPermissions(), definitions...)

	return lo.Map(definitions, func(d access.PermissionDefinition, _ int) string {
		return d.Key
	}), nil
}

func newRolesListCmd(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List roles",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(db *gorm.DB) error {
				roles, err := data.ListRoles(db)
				if err != nil {
					return err
				}

				type row struct {
					Name        string `header:"NAME"`
					Permissions string `header:"PERMISSIONS"`
				}

				cli.Table(lo.Map(roles, func(r models.Role, _ int) row {
					return row{Name: r.Name, Permissions: strings.Join(r.Permissions, ", ")}
				}))
				return nil
			})
		},
	}
}
