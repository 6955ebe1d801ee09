package platform

import (
	"fmt"
	"runtime"
)

// Provider bundles all platform backends for the current device.
type Provider struct {
	Automation   AutomationWatcher
	Projector    Projector
	Display      Display
	Launcher     Launcher
	Notifier     Notifier
	Device       Device
	Capabilities Capabilities
}

// ErrUnsupported is returned when no platform package registered itself.
var ErrUnsupported = fmt.Errorf("android-remote has no platform backend for %s/%s", runtime.GOOS, runtime.GOARCH)

// NewProviderFunc is set by platform packages via init().
// See internal/platform/virtual/init.go for the virtual device.
var NewProviderFunc func(opts ProviderOptions) (*Provider, error)

// NewProvider returns a Provider for the registered backend.
func NewProvider(opts ProviderOptions) (*Provider, error) {
	if NewProviderFunc == nil {
		return nil, ErrUnsupported
	}
	return NewProviderFunc(opts)
}
