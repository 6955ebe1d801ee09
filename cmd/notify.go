package cmd

import (
	"github.com/spf13/cobra"

	"github.com/clawd-xsl/android-remote/internal/model"
	"github.com/clawd-xsl/android-remote/internal/output"
)

var notifyCmd = &cobra.Command{
	Use:   "notify <title> <body>",
	Short: "Post a notification on the device",
	Args:  cobra.ExactArgs(2),
	RunE:  runNotify,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	addClientFlags(notifyCmd)
}

func runNotify(cmd *cobra.Command, args []string) error {
	c, err := newClient(cmd)
	if err != nil {
		return err
	}
	id, err := c.Notify(commandContext(cmd), model.NotificationRequest{Title: &args[0], Body: &args[1]})
	if err != nil {
		return err
	}
	return output.Print(model.ActionResult{Success: true, ID: id})
}
