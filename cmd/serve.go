package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/clawd-xsl/android-remote/internal/discovery"
	"github.com/clawd-xsl/android-remote/internal/server"
	"github.com/clawd-xsl/android-remote/internal/version"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the device agent's HTTP command server",
	Long: `Run the device agent: the HTTP command server on the configured port, and an
mDNS advertisement so clients on the LAN can find it.

Screen capture starts unattached unless --grant-code/--grant-token supply a
fresh grant, or a persisted grant may be reused on this platform.

Examples:
  android-remote serve
  android-remote serve --port 9000 --no-mdns
  android-remote serve --grant-code -1 --grant-token "$TOKEN"`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Int("port", 8080, "HTTP port")
	serveCmd.Flags().String("listen-host", "", "Listen address (default: 0.0.0.0)")
	serveCmd.Flags().Bool("no-mdns", false, "Do not advertise the agent over mDNS")
	addRuntimeFlags(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	rt, err := newDeviceRuntime(cfg)
	if err != nil {
		return fmt.Errorf("failed to start agent: %w", err)
	}
	defer rt.close()
	rt.logger.Info("agent starting", "device", rt.String(), "version", version.Version)

	rt.startCapture(cmd)

	srv := server.New(rt.agent, server.Options{
		Addr:          cfg.Addr(),
		MaxConcurrent: cfg.MaxConcurrentRequests,
		Logger:        rt.logger,
	})

	if cfg.MDNS.Enabled {
		adv, err := discovery.Advertise(cfg.MDNS.Instance, cfg.Port, rt.provider.Device.Info(), version.Version, rt.logger)
		if err != nil {
			rt.logger.Warn("mdns advertisement disabled", "error", err)
		} else {
			defer adv.Shutdown()
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	rt.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return <-errc
}
