package cli

import (
	"github.com/spf13/cobra"

	"github.com/vilanovax/wibecur-sub000/internal/app"
)

var (
	suggestAsOf  string
	suggestLimit int
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Rank candidate contents for the next featured slot",
	RunE: func(cmd *cobra.Command, args []string) error {
		asOf, err := asOfOrNow(suggestAsOf)
		if err != nil {
			return err
		}
		return getApp().Suggest(cmd.Context(), app.SuggestOptions{
			AsOf:  asOf,
			Limit: suggestLimit,
		})
	},
}

var rotationAsOf string

var rotationCmd = &cobra.Command{
	Use:   "rotation",
	Short: "Show per-category featuring counts and fairness modifiers",
	RunE: func(cmd *cobra.Command, args []string) error {
		asOf, err := asOfOrNow(rotationAsOf)
		if err != nil {
			return err
		}
		return getApp().Rotation(cmd.Context(), app.SlotsOptions{AsOf: asOf})
	},
}

func init() {
	suggestCmd.Flags().StringVar(&suggestAsOf, "as-of", "", "Ranking instant (RFC3339, defaults to now)")
	suggestCmd.Flags().IntVar(&suggestLimit, "limit", 10, "Maximum suggestions to print")

	rotationCmd.Flags().StringVar(&rotationAsOf, "as-of", "", "Instant the rotation window ends at (RFC3339, defaults to now)")
}
