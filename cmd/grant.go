package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/clawd-xsl/android-remote/internal/model"
	"github.com/clawd-xsl/android-remote/internal/output"
	"github.com/clawd-xsl/android-remote/internal/platform"
	"github.com/clawd-xsl/android-remote/internal/session"
)

var grantCmd = &cobra.Command{
	Use:   "grant",
	Short: "Supply a screen capture grant",
	Long: `Supply a fresh screen capture grant. With --addr the running agent attaches
it immediately; otherwise the grant is written to the state directory and
used the next time the agent starts (where the platform allows reuse).`,
	RunE: runGrant,
}

func init() {
	rootCmd.AddCommand(grantCmd)
	grantCmd.Flags().Int("code", 0, "Grant result code (non-zero)")
	grantCmd.Flags().String("token", "", "Grant token")
	grantCmd.Flags().String("addr", "", "Send the grant to the agent at host:port instead of the state directory")
	grantCmd.Flags().String("state-dir", "", "Directory for the persisted capture grant")
	_ = grantCmd.MarkFlagRequired("code")
	_ = grantCmd.MarkFlagRequired("token")
}

func runGrant(cmd *cobra.Command, args []string) error {
	code, _ := cmd.Flags().GetInt("code")
	token, _ := cmd.Flags().GetString("token")
	g := platform.Grant{ResultCode: code, Token: token}
	if !g.Valid() {
		return session.ErrInvalidGrant
	}

	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		st, err := c.GrantCapture(commandContext(cmd), model.GrantRequest{ResultCode: &code, Token: &token})
		if err != nil {
			return err
		}
		return output.Print(st)
	}

	store, err := offlineStore(cmd)
	if err != nil {
		return err
	}
	if err := store.Save(g); err != nil {
		return err
	}
	return output.Print(storeStatus{Path: store.Path(), Persisted: true})
}

// storeStatus is the output of the offline grant commands.
type storeStatus struct {
	Path      string `yaml:"path"      json:"path"`
	Persisted bool   `yaml:"persisted" json:"persisted"`
}

// offlineStore opens the grant store named by --state-dir or the config.
func offlineStore(cmd *cobra.Command) (*session.FileStore, error) {
	dir, _ := cmd.Flags().GetString("state-dir")
	if dir == "" {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return nil, err
		}
		dir = cfg.StateDir
	}
	if dir == "" {
		return nil, errors.New("no state directory configured")
	}
	return session.NewFileStore(dir), nil
}
