package cmd

import (
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/infrahq/unpublished/internal/server/data"
	"github.com/infrahq/unpublished/internal/server/models"
)

func newBundlesCmd(cli *CLI) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bundles",
		Short: "Manage content bundles",
	}

	cmd.AddCommand(
		newBundlesAddCmd(cli),
		newBundlesListCmd(cli),
		newBundlesRemoveCmd(cli),
	)

	return cmd
}

func newBundlesAddCmd(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:     "add ID LABEL",
		Short:   "Add a bundle",
		Example: `$ unpublished bundles add article "Article"`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(db *gorm.DB) error {
				if err := data.CreateBundle(db, &models.Bundle{ID: args[0], Label: args[1]}); err != nil {
					return err
				}

				cli.Output("Added bundle %q", args[0])
				return nil
			})
		},
	}
}

func newBundlesListCmd(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List bundles",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(db *gorm.DB) error {
				bundles, err := data.ListBundles(db)
				if err != nil {
					return err
				}

				type row struct {
					ID    string `header:"ID"`
					Label string `header:"LABEL"`
				}

				cli.Table(lo.Map(bundles, func(b models.Bundle, _ int) row {
					return row{ID: b.ID, Label: b.Label}
				}))
				return nil
			})
		},
	}
}

func newBundlesRemoveCmd(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:     "remove ID",
		Aliases: []string{"rm"},
		Short:   "Remove a bundle",
		Long: `Remove a bundle.

A bundle that still has content items can not be removed. Roles keep the
"access_unpublished node <id>" permission of a removed bundle, and it applies
again if a bundle with the same id is added.`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(db *gorm.DB) error {
				if _, err := data.GetBundle(db, args[0]); err != nil {
					return err
				}

				if err := data.DeleteBundle(db, args[0]); err != nil {
					return err
				}

				cli.Output("Removed bundle %q", args[0])
				return nil
			})
		},
	}
}
