package cli

import (
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run a single fetch-compare-alert cycle and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().CheckOnce(cmd.Context())
	},
}
