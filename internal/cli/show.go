package cli

import (
	"github.com/spf13/cobra"
)

var showStateCmd = &cobra.Command{
	Use:   "show-state",
	Short: "Display the persisted alert dedup state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().ShowState()
	},
}
