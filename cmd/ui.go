package cmd

import (
	"github.com/spf13/cobra"

	"github.com/clawd-xsl/android-remote/internal/client"
	"github.com/clawd-xsl/android-remote/internal/output"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Read the active window's accessibility tree",
	Long: `Read the accessibility tree of the device's active window. Node addresses
("0.1.2") in the output can be passed to tap --node until the next read.`,
	RunE: runUI,
}

func init() {
	rootCmd.AddCommand(uiCmd)
	uiCmd.Flags().String("text", "", "Keep only nodes whose text or description contains this (and their ancestors)")
	uiCmd.Flags().Bool("flat", false, "Output a flat list with breadcrumb paths instead of a tree")
	uiCmd.Flags().String("roles", "", "Comma-separated roles to keep with --flat (e.g. \"btn,input\" or \"interactive\")")
	uiCmd.Flags().Bool("diff", false, "Output only what changed since the agent's previous read")
	addClientFlags(uiCmd)
}

func runUI(cmd *cobra.Command, args []string) error {
	c, err := newClient(cmd)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)

	text, _ := cmd.Flags().GetString("text")
	flat, _ := cmd.Flags().GetBool("flat")
	roles, _ := cmd.Flags().GetString("roles")
	diff, _ := cmd.Flags().GetBool("diff")
	opts := client.UIOptions{Text: text, Roles: splitRoles(roles)}

	switch {
	case diff:
		d, err := c.UIDiff(ctx)
		if err != nil {
			return err
		}
		return output.Print(d)
	case flat:
		nodes, err := c.UIFlat(ctx, opts)
		if err != nil {
			return err
		}
		return output.Print(nodes)
	}

	root, err := c.UI(ctx, opts)
	if err != nil {
		return err
	}
	result := output.UIResult{Agent: c.Addr(), Tree: root}
	if root == nil {
		result.Error = "no matching nodes"
	} else {
		result.Nodes = root.Count()
	}
	return output.Print(result)
}
