package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clawd-xsl/android-remote/internal/client"
	"github.com/clawd-xsl/android-remote/internal/discovery"
	"github.com/clawd-xsl/android-remote/internal/model"
	"github.com/clawd-xsl/android-remote/internal/output"
)

// EnvAddr sets the default agent address for client commands.
const EnvAddr = "ANDROID_REMOTE_ADDR"

const defaultAddr = "127.0.0.1:8080"

// addClientFlags registers the flags newClient reads.
func addClientFlags(cmd *cobra.Command) {
	cmd.Flags().String("addr", "", "Agent address host:port (default: $"+EnvAddr+" or "+defaultAddr+")")
	cmd.Flags().Bool("discover", false, "Use the first agent advertised over mDNS")
}

// newClient resolves the agent address from --addr, --discover, the
// environment, then the default.
func newClient(cmd *cobra.Command) (*client.Client, error) {
	addr, _ := cmd.Flags().GetString("addr")
	discover, _ := cmd.Flags().GetBool("discover")

	switch {
	case addr != "":
	case discover:
		agents, err := discovery.Browse(cmd.Context())
		if err != nil {
			return nil, err
		}
		if len(agents) == 0 {
			return nil, errors.New("no agents found over mDNS")
		}
		addr = agents[0].Addr()
	case os.Getenv(EnvAddr) != "":
		addr = os.Getenv(EnvAddr)
	default:
		addr = defaultAddr
	}
	return client.New(addr, nil)
}

// commandContext returns the command's context, or Background outside
// Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// optionalFloat returns the flag's value only if it was set.
func optionalFloat(cmd *cobra.Command, name string) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetFloat64(name)
	return &v
}

// optionalString returns the flag's value only if it was set.
func optionalString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

// printAction prints {success} for an automation command. success=false
// is reported as a command failure so scripts can test the exit status.
func printAction(ok bool, err error) error {
	if err != nil {
		return err
	}
	if err := output.Print(model.ActionResult{Success: ok}); err != nil {
		return err
	}
	if !ok {
		return errActionFailed
	}
	return nil
}

var errActionFailed = errors.New("action reported success=false")

func splitRoles(s string) []string {
	var roles []string
	for _, r := range strings.Split(s, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}

func requireOneOf(cmd *cobra.Command, names ...string) error {
	for _, n := range names {
		if cmd.Flags().Changed(n) {
			return nil
		}
	}
	return fmt.Errorf("one of --%s is required", strings.Join(names, ", --"))
}
