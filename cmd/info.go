package cmd

import (
	"github.com/spf13/cobra"

	"github.com/clawd-xsl/android-remote/internal/output"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show device model, Android version, battery and address",
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
	addClientFlags(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	c, err := newClient(cmd)
	if err != nil {
		return err
	}
	info, err := c.Info(commandContext(cmd))
	if err != nil {
		return err
	}
	return output.Print(info)
}
