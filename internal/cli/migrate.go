package cli

import (
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Migrate(cmd.Context())
	},
}
