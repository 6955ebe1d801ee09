package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/clawd-xsl/android-remote/internal/model"
	"github.com/clawd-xsl/android-remote/internal/output"
)

var doCmd = &cobra.Command{
	Use:   "do",
	Short: "Execute multiple actions in a batch",
	Long: `Execute a sequence of actions from a YAML list on stdin.

Each step is an action name with its parameters as a map. Steps execute
sequentially on the agent, and by default execution stops on the first error.

Supported step types: tap, swipe, input, key, launch, notify, ui, sleep

Example:
  android-remote do <<'EOF'
  - key: { keyCode: home }
  - launch: { packageName: com.android.settings }
  - tap: { text: "Network & internet" }
  - sleep: { ms: 500 }
  - tap: { x: 540, y: 1200 }
  EOF`,
	RunE: runDo,
}

func init() {
	rootCmd.AddCommand(doCmd)
	doCmd.Flags().Bool("stop-on-error", true, "Stop execution on first error")
	addClientFlags(doCmd)
}

func runDo(cmd *cobra.Command, args []string) error {
	stopOnError, _ := cmd.Flags().GetBool("stop-on-error")

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}
	steps, err := parseSteps(data)
	if err != nil {
		return err
	}

	c, err := newClient(cmd)
	if err != nil {
		return err
	}
	result, err := c.Do(commandContext(cmd), model.DoRequest{Steps: steps, StopOnError: &stopOnError})
	if err != nil {
		return err
	}
	if err := output.Print(result); err != nil {
		return err
	}
	if !result.OK {
		return errors.New(result.Error)
	}
	return nil
}

// parseSteps reads a YAML list of single-key step maps.
func parseSteps(data []byte) ([]model.Step, error) {
	if len(data) == 0 {
		return nil, errors.New("no steps provided on stdin: pipe a YAML list of actions")
	}
	var steps []model.Step
	if err := yaml.Unmarshal(data, &steps); err != nil {
		return nil, fmt.Errorf("failed to parse YAML steps: %w", err)
	}
	if len(steps) == 0 {
		return nil, errors.New("no steps provided: expected a YAML list of actions")
	}
	for i, step := range steps {
		if len(step) != 1 {
			return nil, fmt.Errorf("step %d: expected exactly one action key, got %d", i+1, len(step))
		}
		for action, params := range step {
			if params == nil {
				step[action] = map[string]any{}
			}
		}
	}
	return steps, nil
}
