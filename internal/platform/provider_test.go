package platform

import "testing"

func TestNewProvider_Unsupported(t *testing.T) {
	orig := NewProviderFunc
	NewProviderFunc = nil
	defer func() { NewProviderFunc = orig }()

	_, err := NewProvider(ProviderOptions{})
	if err != ErrUnsupported {
		t.Errorf("expected ErrUnsupported, got: %v", err)
	}
}

func TestNewProvider_UsesRegisteredFunc(t *testing.T) {
	orig := NewProviderFunc
	defer func() { NewProviderFunc = orig }()

	var gotSDK int
	NewProviderFunc = func(opts ProviderOptions) (*Provider, error) {
		gotSDK = opts.SDKInt
		return &Provider{Capabilities: CapabilitiesForSDK(opts.SDKInt)}, nil
	}
	p, err := NewProvider(ProviderOptions{SDKInt: 30})
	if err != nil {
		t.Fatal(err)
	}
	if gotSDK != 30 || !p.Capabilities.GrantReuse {
		t.Errorf("options not forwarded: sdk=%d caps=%+v", gotSDK, p.Capabilities)
	}
}
