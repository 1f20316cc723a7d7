package cli

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var simulateMagnitude float64

var simulateCmd = &cobra.Command{
	Use:   "simulate-alert",
	Short: "模拟一次变暗观测并触发告警",
	RunE: func(cmd *cobra.Command, args []string) error {
		if simulateMagnitude <= 0 {
			return errors.New("--magnitude 必须大于 0")
		}

		magnitude := decimal.NewFromFloat(simulateMagnitude)
		return getApp().SimulateAlert(cmd.Context(), magnitude)
	},
}

func init() {
	simulateCmd.Flags().Float64Var(&simulateMagnitude, "magnitude", 0, "模拟的 V 星等")
}
