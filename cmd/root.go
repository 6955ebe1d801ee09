package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clawd-xsl/android-remote/internal/output"
	"github.com/clawd-xsl/android-remote/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "android-remote",
	Short: "Remote-control an Android device over HTTP",
	Long: `A device agent that exposes the active window's accessibility tree, gesture
injection, global keys, app launch, notifications and screen capture over a
local HTTP API and as MCP tools, plus client commands that call a running agent.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("format", "", "Output format: yaml, json (default: yaml on a terminal, json when piped)")
	rootCmd.PersistentFlags().Bool("pretty", false, "Pretty-print JSON")
	rootCmd.PersistentFlags().String("config", "", "Config file (default: $XDG_CONFIG_HOME/android-remote/config.yaml)")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Use the root persistent flag directly to avoid conflicts with
		// subcommand local flags (e.g. screenshot --image-format).
		format, _ := rootCmd.PersistentFlags().GetString("format")
		f, err := output.ParseFormat(format)
		if err != nil {
			return err
		}
		output.OutputFormat = f
		output.PrettyOutput, _ = rootCmd.PersistentFlags().GetBool("pretty")
		return nil
	}
}
