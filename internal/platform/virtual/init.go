package virtual

import "github.com/clawd-xsl/android-remote/internal/platform"

func init() {
	platform.NewProviderFunc = NewProvider
}

// NewProvider loads opts.Fixture (or the built-in screen) and returns a
// Provider whose collaborators are all one virtual Device.
func NewProvider(opts platform.ProviderOptions) (*platform.Provider, error) {
	screen, err := LoadScreen(opts.Fixture)
	if err != nil {
		return nil, err
	}
	if opts.SDKInt > 0 {
		screen.Device.SDKInt = opts.SDKInt
	}
	d := NewDevice(screen)
	return &platform.Provider{
		Automation:   d,
		Projector:    d,
		Display:      d,
		Launcher:     d,
		Notifier:     d,
		Device:       d,
		Capabilities: platform.CapabilitiesForSDK(screen.Device.SDKInt),
	}, nil
}

// DeviceOf returns the virtual Device behind a Provider built by
// NewProvider, for test control.
func DeviceOf(p *platform.Provider) (*Device, bool) {
	d, ok := p.Device.(*Device)
	return d, ok
}
