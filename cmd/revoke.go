package cmd

import (
	"github.com/spf13/cobra"

	"github.com/clawd-xsl/android-remote/internal/model"
	"github.com/clawd-xsl/android-remote/internal/output"
)

var revokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Stop screen capture and forget the persisted grant",
	Long: `With --addr the running agent stops its capture session and clears the
persisted grant; otherwise the grant is removed from the state directory.`,
	RunE: runRevoke,
}

func init() {
	rootCmd.AddCommand(revokeCmd)
	revokeCmd.Flags().String("addr", "", "Revoke on the agent at host:port instead of the state directory")
	revokeCmd.Flags().String("state-dir", "", "Directory for the persisted capture grant")
}

func runRevoke(cmd *cobra.Command, args []string) error {
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		if err := c.RevokeCapture(commandContext(cmd)); err != nil {
			return err
		}
		return output.Print(model.ActionResult{Success: true})
	}

	store, err := offlineStore(cmd)
	if err != nil {
		return err
	}
	if err := store.Clear(); err != nil {
		return err
	}
	return output.Print(storeStatus{Path: store.Path(), Persisted: false})
}
