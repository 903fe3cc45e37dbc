package cli

import (
	"github.com/spf13/cobra"

	"github.com/sandialabs/wind-hids/internal/app"
)

var replayCycles int

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay recorded XML through the rule engine at full speed",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Replay(cmd.Context(), app.ReplayOptions{Cycles: replayCycles})
	},
}

func init() {
	replayCmd.Flags().IntVar(&replayCycles, "cycles", 60, "Number of one-second cycles to replay")
}
