package cli

import (
	"github.com/spf13/cobra"

	"github.com/vilanovax/wibecur-sub000/internal/app"
)

var reportWeekStart string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the weekly performance report",
	RunE: func(cmd *cobra.Command, args []string) error {
		weekStart, err := parseFlagTime("week-start", reportWeekStart)
		if err != nil {
			return err
		}
		return getApp().Report(cmd.Context(), app.ReportOptions{WeekStart: weekStart})
	},
}

var (
	insightsFrom string
	insightsTo   string
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Print category-level performance insights for a period",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := parseFlagTime("from", insightsFrom)
		if err != nil {
			return err
		}
		to, err := parseFlagTime("to", insightsTo)
		if err != nil {
			return err
		}
		return getApp().Insights(cmd.Context(), app.InsightsOptions{From: from, To: to})
	},
}

var (
	exportWeekStart string
	exportCSVPath   string
	exportPNGPath   string
	exportMaxPoints int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a weekly report as CSV and/or PNG chart",
	RunE: func(cmd *cobra.Command, args []string) error {
		weekStart, err := parseFlagTime("week-start", exportWeekStart)
		if err != nil {
			return err
		}
		return getApp().Export(cmd.Context(), app.ExportOptions{
			WeekStart: weekStart,
			CSVPath:   exportCSVPath,
			PNGPath:   exportPNGPath,
			MaxPoints: exportMaxPoints,
		})
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportWeekStart, "week-start", "", "Start of the reported week (RFC3339)")
	_ = reportCmd.MarkFlagRequired("week-start")

	insightsCmd.Flags().StringVar(&insightsFrom, "from", "", "Period start (RFC3339, inclusive)")
	insightsCmd.Flags().StringVar(&insightsTo, "to", "", "Period end (RFC3339, exclusive)")
	_ = insightsCmd.MarkFlagRequired("from")
	_ = insightsCmd.MarkFlagRequired("to")

	exportCmd.Flags().StringVar(&exportWeekStart, "week-start", "", "Start of the exported week (RFC3339)")
	exportCmd.Flags().StringVar(&exportCSVPath, "csv", "", "Path to write CSV data")
	exportCmd.Flags().StringVar(&exportPNGPath, "png", "", "Path to write PNG chart")
	exportCmd.Flags().IntVar(&exportMaxPoints, "max-points", 0, "Maximum data points to chart (defaults to config)")
	_ = exportCmd.MarkFlagRequired("week-start")
}
