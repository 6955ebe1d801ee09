package cmd

import (
	"github.com/spf13/cobra"

	"github.com/clawd-xsl/android-remote/internal/model"
)

var launchCmd = &cobra.Command{
	Use:   "launch <package>",
	Short: "Launch an installed app",
	Long:  "Start an installed app by package name, e.g. com.android.settings.",
	Args:  cobra.ExactArgs(1),
	RunE:  runLaunch,
}

func init() {
	rootCmd.AddCommand(launchCmd)
	addClientFlags(launchCmd)
}

func runLaunch(cmd *cobra.Command, args []string) error {
	c, err := newClient(cmd)
	if err != nil {
		return err
	}
	return printAction(c.Launch(commandContext(cmd), model.LaunchRequest{PackageName: &args[0]}))
}
