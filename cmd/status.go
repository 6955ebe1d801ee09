package cmd

import (
	"github.com/spf13/cobra"

	"github.com/clawd-xsl/android-remote/internal/output"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the screen capture state",
	Long: `With --addr, show the running agent's capture state (active, lost and why,
unattached). Otherwise report whether a grant is persisted in the state
directory.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().String("addr", "", "Query the agent at host:port instead of the state directory")
	statusCmd.Flags().String("state-dir", "", "Directory for the persisted capture grant")
}

func runStatus(cmd *cobra.Command, args []string) error {
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		st, err := c.CaptureStatus(commandContext(cmd))
		if err != nil {
			return err
		}
		return output.Print(st)
	}

	store, err := offlineStore(cmd)
	if err != nil {
		return err
	}
	_, ok, err := store.Load()
	if err != nil {
		return err
	}
	return output.Print(storeStatus{Path: store.Path(), Persisted: ok})
}
