package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/clawd-xsl/android-remote/internal/model"
)

var typeCmd = &cobra.Command{
	Use:   "type [text]",
	Short: "Set the text of the focused input field",
	Long:  "Replace the text of the input-focused node. Text can be passed as a positional argument or via --text.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runType,
}

func init() {
	rootCmd.AddCommand(typeCmd)
	typeCmd.Flags().String("text", "", "Text to set (alternative to positional arg)")
	addClientFlags(typeCmd)
}

func runType(cmd *cobra.Command, args []string) error {
	text := optionalString(cmd, "text")
	// Positional arg overrides --text flag
	if len(args) > 0 {
		text = &args[0]
	}
	if text == nil {
		return errors.New("text is required (positional or --text)")
	}
	c, err := newClient(cmd)
	if err != nil {
		return err
	}
	return printAction(c.Input(commandContext(cmd), model.InputRequest{Text: text}))
}
