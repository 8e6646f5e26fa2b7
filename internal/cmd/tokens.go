package cmd

import (
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/infrahq/unpublished/internal/format"
	"github.com/infrahq/unpublished/internal/server/data"
	"github.com/infrahq/unpublished/internal/server/models"
	"github.com/infrahq/unpublished/uid"
)

func newTokensCmd(cli *CLI) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens",
		Short: "Manage access tokens for unpublished content",
	}

	cmd.AddCommand(
		newTokensListCmd(cli),
		newTokensPurgeCmd(cli),
	)

	return cmd
}

type tokensListOptions struct {
	ContentID   string
	ShowExpired bool
}

func newTokensListCmd(cli *CLI) *cobra.Command {
	var options tokensListOptions

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List access tokens",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var contentID uid.ID
			if options.ContentID != "" {
				id, err := uid.Parse([]byte(options.ContentID))
				if err != nil {
					return err
				}
				contentID = id
			}

			return withDB(cmd, func(db *gorm.DB) error {
				tokens, err := data.ListAccessTokens(db, data.ByOptionalContentID(contentID))
				if err != nil {
					return err
				}

				now := time.Now()
				if !options.ShowExpired {
					tokens = lo.Filter(tokens, func(t models.AccessToken, _ int) bool {
						return !t.IsExpiredAt(now)
					})
				}

				type row struct {
					ID      string `header:"ID"`
					Content string `header:"CONTENT"`
					Owner   string `header:"OWNER"`
					Created string `header:"CREATED"`
					Expires string `header:"EXPIRES"`
				}

				cli.Table(lo.Map(tokens, func(t models.AccessToken, _ int) row {
					return row{
						ID:      t.ID.String(),
						Content: t.ContentID.String(),
						Owner:   t.OwnerID.String(),
						Created: time.Unix(t.CreatedTime(), 0).Format(time.RFC3339),
						Expires: format.Expiry(t.Expire, now),
					}
				}))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&options.ContentID, "content", "", "Only list the tokens of this content item")
	cmd.Flags().BoolVar(&options.ShowExpired, "show-expired", false, "Include expired tokens")

	return cmd
}

func newTokensPurgeCmd(cli *CLI) *cobra.Command {
	var grace time.Duration

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete expired access tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(db *gorm.DB) error {
				deleted, err := data.DeleteExpiredAccessTokens(db, time.Now(), grace)
				if err != nil {
					return err
				}

				cli.Output("Deleted %d expired access tokens", deleted)
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&grace, "grace-period", 0, "Keep tokens that expired less than this long ago")

	return cmd
}
