package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/clawd-xsl/android-remote/internal/agent"
	"github.com/clawd-xsl/android-remote/internal/capture"
	"github.com/clawd-xsl/android-remote/internal/config"
	"github.com/clawd-xsl/android-remote/internal/gesture"
	"github.com/clawd-xsl/android-remote/internal/platform"
	"github.com/clawd-xsl/android-remote/internal/session"

	// Registers the virtual device backend.
	_ "github.com/clawd-xsl/android-remote/internal/platform/virtual"
)

// deviceRuntime is the in-process agent shared by serve and mcp.
type deviceRuntime struct {
	cfg       *config.Config
	logger    *slog.Logger
	provider  *platform.Provider
	registry  *agent.Registry
	lifecycle *session.Lifecycle
	agent     *agent.Agent
}

// loadConfig reads the --config file and applies the flags shared by the
// commands that run an agent.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := rootCmd.PersistentFlags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("listen-host") {
		cfg.ListenHost, _ = flags.GetString("listen-host")
	}
	if flags.Changed("state-dir") {
		cfg.StateDir, _ = flags.GetString("state-dir")
	}
	if flags.Changed("fixture") {
		cfg.Device.Fixture, _ = flags.GetString("fixture")
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("no-mdns") {
		noMDNS, _ := flags.GetBool("no-mdns")
		cfg.MDNS.Enabled = !noMDNS
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// addRuntimeFlags registers the flags loadConfig reads.
func addRuntimeFlags(cmd *cobra.Command) {
	cmd.Flags().String("state-dir", "", "Directory for the persisted capture grant")
	cmd.Flags().String("fixture", "", "Screen definition YAML for the virtual device")
	cmd.Flags().String("log-level", "", "Log level: debug, info, warn, error")
	cmd.Flags().Int("grant-code", 0, "Attach screen capture with this grant result code at startup")
	cmd.Flags().String("grant-token", "", "Grant token for --grant-code")
}

// newDeviceRuntime wires the agent to the registered platform backend.
// Logs go to stderr so stdio transports keep stdout.
func newDeviceRuntime(cfg *config.Config) (*deviceRuntime, error) {
	logger := cfg.Log.NewLogger(os.Stderr)

	provider, err := platform.NewProvider(platform.ProviderOptions{
		Fixture: cfg.Device.Fixture,
		SDKInt:  cfg.Device.SDKInt,
	})
	if err != nil {
		return nil, err
	}

	caps := provider.Capabilities
	if reuse := cfg.GrantReuseOverride(); reuse != nil {
		caps.GrantReuse = *reuse
	}

	registry := agent.NewRegistry(gesture.Options{Timeout: cfg.GestureTimeout, Logger: logger}, logger)
	registry.Watch(provider.Automation)

	lifecycle := session.New(provider.Projector, session.NewFileStore(cfg.StateDir), caps, logger)
	pipeline := capture.NewPipeline(lifecycle, provider.Display, capture.Options{
		Timeout: cfg.CaptureTimeout,
		Logger:  logger,
	})

	return &deviceRuntime{
		cfg:       cfg,
		logger:    logger,
		provider:  provider,
		registry:  registry,
		lifecycle: lifecycle,
		agent: agent.New(agent.Config{
			Registry:  registry,
			Lifecycle: lifecycle,
			Capture:   pipeline,
			Launcher:  provider.Launcher,
			Notifier:  provider.Notifier,
			Device:    provider.Device,
			Port:      cfg.Port,
			Logger:    logger,
		}),
	}, nil
}

// startCapture attaches a fresh grant from --grant-code/--grant-token, or
// restores the persisted one when the platform allows reuse. Neither is
// fatal: the agent serves everything but /screen without a session.
func (r *deviceRuntime) startCapture(cmd *cobra.Command) {
	code, _ := cmd.Flags().GetInt("grant-code")
	token, _ := cmd.Flags().GetString("grant-token")

	if code != 0 {
		if err := r.lifecycle.Attach(platform.Grant{ResultCode: code, Token: token}); err != nil {
			r.logger.Warn("capture grant from flags rejected", "error", err)
		}
		return
	}
	if err := r.lifecycle.RestoreOnStart(); err != nil {
		r.logger.Warn("capture restore failed", "error", err)
	}
}

// close stops the capture session (keeping the persisted grant) and drops
// the automation connection.
func (r *deviceRuntime) close() {
	r.lifecycle.Close()
	r.registry.Clear()
	r.logger.Info("agent stopped")
}

func (r *deviceRuntime) String() string {
	return fmt.Sprintf("%s (sdk %d)", r.provider.Device.Info().Model, r.provider.Device.Info().SDKInt)
}
