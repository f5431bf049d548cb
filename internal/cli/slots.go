package cli

import (
	"github.com/spf13/cobra"

	"github.com/vilanovax/wibecur-sub000/internal/app"
)

var (
	proposeContentID  string
	proposeStart      string
	proposeEnd        string
	proposeOrderIndex int
)

var proposeCmd = &cobra.Command{
	Use:   "propose",
	Short: "Propose a new featured slot",
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := parseFlagTime("start", proposeStart)
		if err != nil {
			return err
		}
		end, err := parseOptionalFlagTime("end", proposeEnd)
		if err != nil {
			return err
		}

		return getApp().Propose(cmd.Context(), app.ProposeOptions{
			ContentID:  proposeContentID,
			StartAt:    start,
			EndAt:      end,
			OrderIndex: proposeOrderIndex,
		})
	},
}

var (
	editSlotID string
	editStart  string
	editEnd    string
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Move an existing slot to a new window",
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := parseFlagTime("start", editStart)
		if err != nil {
			return err
		}
		end, err := parseOptionalFlagTime("end", editEnd)
		if err != nil {
			return err
		}

		return getApp().Edit(cmd.Context(), app.EditOptions{
			SlotID:  editSlotID,
			StartAt: start,
			EndAt:   end,
		})
	},
}

var removeSlotID string

var removeCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove a scheduled slot",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Remove(cmd.Context(), removeSlotID)
	},
}

var slotsAsOf string

var slotsCmd = &cobra.Command{
	Use:   "slots",
	Short: "Show the scheduling board",
	RunE: func(cmd *cobra.Command, args []string) error {
		asOf, err := asOfOrNow(slotsAsOf)
		if err != nil {
			return err
		}
		return getApp().Slots(cmd.Context(), app.SlotsOptions{AsOf: asOf})
	},
}

var (
	checkStart     string
	checkEnd       string
	checkExcludeID string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check whether a window conflicts with an existing slot",
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := parseFlagTime("start", checkStart)
		if err != nil {
			return err
		}
		end, err := parseOptionalFlagTime("end", checkEnd)
		if err != nil {
			return err
		}

		return getApp().Check(cmd.Context(), app.CheckOptions{
			StartAt:   start,
			EndAt:     end,
			ExcludeID: checkExcludeID,
		})
	},
}

func init() {
	proposeCmd.Flags().StringVar(&proposeContentID, "content", "", "Content identifier to feature")
	proposeCmd.Flags().StringVar(&proposeStart, "start", "", "Window start (RFC3339)")
	proposeCmd.Flags().StringVar(&proposeEnd, "end", "", "Window end (RFC3339, omit for open-ended)")
	proposeCmd.Flags().IntVar(&proposeOrderIndex, "order", 0, "Display ordering among concurrent slots")
	_ = proposeCmd.MarkFlagRequired("content")
	_ = proposeCmd.MarkFlagRequired("start")

	editCmd.Flags().StringVar(&editSlotID, "slot", "", "Slot identifier")
	editCmd.Flags().StringVar(&editStart, "start", "", "New window start (RFC3339)")
	editCmd.Flags().StringVar(&editEnd, "end", "", "New window end (RFC3339, omit for open-ended)")
	_ = editCmd.MarkFlagRequired("slot")
	_ = editCmd.MarkFlagRequired("start")

	removeCmd.Flags().StringVar(&removeSlotID, "slot", "", "Slot identifier")
	_ = removeCmd.MarkFlagRequired("slot")

	slotsCmd.Flags().StringVar(&slotsAsOf, "as-of", "", "Instant to classify slots against (RFC3339, defaults to now)")

	checkCmd.Flags().StringVar(&checkStart, "start", "", "Window start (RFC3339)")
	checkCmd.Flags().StringVar(&checkEnd, "end", "", "Window end (RFC3339, omit for open-ended)")
	checkCmd.Flags().StringVar(&checkExcludeID, "exclude", "", "Slot identifier to ignore during the check")
	_ = checkCmd.MarkFlagRequired("start")
}
