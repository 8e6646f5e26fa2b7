package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
	"gorm.io/gorm"

	"github.com/infrahq/unpublished/api"
	"github.com/infrahq/unpublished/internal/access"
	"github.com/infrahq/unpublished/internal/server/data"
)

func newPermissionsCmd(cli *CLI) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "permissions",
		Short: "Inspect permissions",
	}

	cmd.AddCommand(newPermissionsListCmd(cli))

	return cmd
}

type permissionsListOptions struct {
	Format string
	All    bool
}

func newPermissionsListCmd(cli *CLI) *cobra.Command {
	var options permissionsListOptions

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the access unpublished permissions of every bundle",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(db *gorm.DB) error {
				return permissionsList(cmd, cli, db, options)
			})
		},
	}

	addFormatFlag(cmd.Flags(), &options.Format)
	cmd.Flags().BoolVar(&options.All, "all", false, "Include permissions that do not belong to a bundle")

	return cmd
}

func permissionsList(cmd *cobra.Command, cli *CLI, db *gorm.DB, options permissionsListOptions) error {
	registry := access.NewPermissionRegistry(data.BundleCatalog{DB: db})

	definitions, err := registry.Definitions(cmd.Context())
	if err != nil {
		return err
	}

	if options.All {
		definitions = append(access.StaticPermissions(), definitions...)
	}

	permissions := lo.Map(definitions, func(d access.PermissionDefinition, _ int) api.Permission {
		return api.Permission{Key: d.Key, Title: d.Title, Bundle: d.Bundle}
	})

	switch options.Format {
	case "json":
		out, err := json.MarshalIndent(permissions, "", "  ")
		if err != nil {
			return err
		}
		cli.Output(string(out))

	case "yaml":
		out, err := yaml.Marshal(permissions)
		if err != nil {
			return err
		}
		fmt.Fprint(cli.Stdout, string(out))

	case "":
		if len(permissions) == 0 {
			cli.Output("No permissions found, add a bundle first")
			return nil
		}

		type row struct {
			Key   string `header:"PERMISSION"`
			Title string `header:"TITLE"`
		}

		cli.Table(lo.Map(permissions, func(p api.Permission, _ int) row {
			return row{Key: p.Key, Title: p.Title}
		}))

	default:
		return fmt.Errorf("unsupported format %q, expected json or yaml", options.Format)
	}

	return nil
}
