package cmd

import (
	"github.com/spf13/cobra"

	"github.com/clawd-xsl/android-remote/internal/model"
)

var tapCmd = &cobra.Command{
	Use:   "tap",
	Short: "Tap a node or a screen point",
	Long: `Tap a node by address (requires a preceding ui read), the node whose text or
description matches --text, or absolute screen coordinates.`,
	RunE: runTap,
}

func init() {
	rootCmd.AddCommand(tapCmd)
	tapCmd.Flags().String("node", "", "Tap node by address (e.g. \"0.1.2\")")
	tapCmd.Flags().String("text", "", "Find the node by text (case-insensitive substring) and tap it")
	tapCmd.Flags().Float64("x", 0, "Tap at X screen coordinate")
	tapCmd.Flags().Float64("y", 0, "Tap at Y screen coordinate")
	addClientFlags(tapCmd)
}

func runTap(cmd *cobra.Command, args []string) error {
	if err := requireOneOf(cmd, "node", "text", "x"); err != nil {
		return err
	}
	c, err := newClient(cmd)
	if err != nil {
		return err
	}
	return printAction(c.Tap(commandContext(cmd), model.TapRequest{
		NodeID: optionalString(cmd, "node"),
		Text:   optionalString(cmd, "text"),
		X:      optionalFloat(cmd, "x"),
		Y:      optionalFloat(cmd, "y"),
	}))
}
