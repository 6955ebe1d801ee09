package cmd

import (
	"github.com/spf13/cobra"

	"github.com/clawd-xsl/android-remote/internal/model"
)

var keyCmd = &cobra.Command{
	Use:       "key <home|back|recents|notifications|quick_settings>",
	Short:     "Perform a global navigation action",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"home", "back", "recents", "notifications", "quick_settings"},
	RunE:      runKey,
}

func init() {
	rootCmd.AddCommand(keyCmd)
	addClientFlags(keyCmd)
}

func runKey(cmd *cobra.Command, args []string) error {
	c, err := newClient(cmd)
	if err != nil {
		return err
	}
	return printAction(c.Key(commandContext(cmd), model.KeyRequest{KeyCode: &args[0]}))
}
