package cli

import (
	"github.com/spf13/cobra"

	"github.com/vilanovax/wibecur-sub000/internal/app"
)

var (
	analyzeSlotID string
	analyzeAsOf   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Show the before/during performance snapshot for a slot",
	RunE: func(cmd *cobra.Command, args []string) error {
		asOf, err := asOfOrNow(analyzeAsOf)
		if err != nil {
			return err
		}
		return getApp().Analyze(cmd.Context(), app.AnalyzeOptions{
			SlotID: analyzeSlotID,
			AsOf:   asOf,
		})
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeSlotID, "slot", "", "Slot identifier")
	analyzeCmd.Flags().StringVar(&analyzeAsOf, "as-of", "", "Analysis instant (RFC3339, defaults to now)")
	_ = analyzeCmd.MarkFlagRequired("slot")
}
