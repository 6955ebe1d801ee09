package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/clawd-xsl/android-remote/internal/discovery"
	"github.com/clawd-xsl/android-remote/internal/output"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "List agents advertised on the local network",
	Long:  "Browse mDNS for " + discovery.ServiceType + " and list each agent's address, model and SDK level.",
	RunE:  runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)
	discoverCmd.Flags().Duration("timeout", discovery.DefaultBrowseTimeout, "How long to listen for advertisements")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, cancel := context.WithTimeout(commandContext(cmd), timeout)
	defer cancel()

	agents, err := discovery.Browse(ctx)
	if err != nil {
		return err
	}
	if agents == nil {
		agents = []discovery.Agent{}
	}
	return output.Print(agents)
}
