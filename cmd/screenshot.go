package cmd

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clawd-xsl/android-remote/internal/client"
	"github.com/clawd-xsl/android-remote/internal/output"
)

var screenshotCmd = &cobra.Command{
	Use:   "screenshot",
	Short: "Capture the device screen",
	Long:  "Capture the device screen. Requires an active screen capture grant on the agent.",
	RunE:  runScreenshot,
}

func init() {
	rootCmd.AddCommand(screenshotCmd)
	screenshotCmd.Flags().String("output", "", "Output file path (default: stdout as base64)")
	screenshotCmd.Flags().String("image-format", "png", "Image format: png, jpg")
	screenshotCmd.Flags().Int("quality", 80, "JPEG quality 1-100")
	screenshotCmd.Flags().Float64("scale", 1.0, "Scale factor 0.1-1.0")
	screenshotCmd.Flags().Bool("annotate", false, "Draw node addresses and bounds from the latest ui read")
	addClientFlags(screenshotCmd)
}

func runScreenshot(cmd *cobra.Command, args []string) error {
	outPath, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("image-format")
	quality, _ := cmd.Flags().GetInt("quality")
	scale, _ := cmd.Flags().GetFloat64("scale")
	annotate, _ := cmd.Flags().GetBool("annotate")

	c, err := newClient(cmd)
	if err != nil {
		return err
	}
	data, _, err := c.Screen(commandContext(cmd), client.ScreenOptions{
		Format:   format,
		Quality:  quality,
		Scale:    scale,
		Annotate: annotate,
	})
	if err != nil {
		return err
	}

	if outPath != "" {
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			return err
		}
		return output.Print(output.NewScreenshotResult(outPath, format, len(data)))
	}

	// Default: write to stdout as base64 for easy agent consumption
	encoder := base64.NewEncoder(base64.StdEncoding, os.Stdout)
	if _, err := encoder.Write(data); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}
	fmt.Println()
	return nil
}
