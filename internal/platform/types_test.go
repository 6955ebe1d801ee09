package platform

import "testing"

func TestParseGlobalAction_Valid(t *testing.T) {
	tests := []struct {
		input string
		want  GlobalAction
	}{
		{"home", ActionHome},
		{"HOME", ActionHome},
		{"Home", ActionHome},
		{"back", ActionBack},
		{"recents", ActionRecents},
		{"Notifications", ActionNotifications},
		{"QUICK_SETTINGS", ActionQuickSettings},
		{" back ", ActionBack},
	}
	for _, tt := range tests {
		got, err := ParseGlobalAction(tt.input)
		if err != nil {
			t.Errorf("ParseGlobalAction(%q): %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ParseGlobalAction(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseGlobalAction_Invalid(t *testing.T) {
	for _, s := range []string{"", "power", "volume_up"} {
		if _, err := ParseGlobalAction(s); err == nil {
			t.Errorf("ParseGlobalAction(%q) should fail", s)
		}
	}
}

func TestGlobalAction_String(t *testing.T) {
	if ActionQuickSettings.String() != "quick_settings" {
		t.Errorf("got %q", ActionQuickSettings.String())
	}
}

func TestGrant_Valid(t *testing.T) {
	tests := []struct {
		g    Grant
		want bool
	}{
		{Grant{ResultCode: -1, Token: "abc"}, true},
		{Grant{ResultCode: 0, Token: "abc"}, false},
		{Grant{ResultCode: -1, Token: ""}, false},
	}
	for _, tt := range tests {
		if got := tt.g.Valid(); got != tt.want {
			t.Errorf("%+v.Valid() = %v, want %v", tt.g, got, tt.want)
		}
	}
}

func TestCapabilitiesForSDK(t *testing.T) {
	if !CapabilitiesForSDK(33).GrantReuse {
		t.Error("SDK 33 should allow grant reuse")
	}
	if CapabilitiesForSDK(34).GrantReuse {
		t.Error("SDK 34 grants are single-use")
	}
}
