package cmd

import (
	"github.com/spf13/cobra"

	"github.com/clawd-xsl/android-remote/internal/model"
)

var swipeCmd = &cobra.Command{
	Use:   "swipe",
	Short: "Swipe between two screen points",
	Long:  "Draw a straight stroke from (x1,y1) to (x2,y2). Durations under 50ms are raised to 50ms.",
	RunE:  runSwipe,
}

func init() {
	rootCmd.AddCommand(swipeCmd)
	swipeCmd.Flags().Float64("x1", 0, "Start X")
	swipeCmd.Flags().Float64("y1", 0, "Start Y")
	swipeCmd.Flags().Float64("x2", 0, "End X")
	swipeCmd.Flags().Float64("y2", 0, "End Y")
	swipeCmd.Flags().Int64("duration", 300, "Stroke duration in ms")
	for _, f := range []string{"x1", "y1", "x2", "y2"} {
		_ = swipeCmd.MarkFlagRequired(f)
	}
	addClientFlags(swipeCmd)
}

func runSwipe(cmd *cobra.Command, args []string) error {
	c, err := newClient(cmd)
	if err != nil {
		return err
	}
	duration, _ := cmd.Flags().GetInt64("duration")
	return printAction(c.Swipe(commandContext(cmd), model.SwipeRequest{
		X1:         optionalFloat(cmd, "x1"),
		Y1:         optionalFloat(cmd, "y1"),
		X2:         optionalFloat(cmd, "x2"),
		Y2:         optionalFloat(cmd, "y2"),
		DurationMs: &duration,
	}))
}
