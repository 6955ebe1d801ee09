package model

import "testing"

func TestMapRole_KnownClasses(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"android.widget.Button", "btn"},
		{"android.widget.ImageButton", "btn"},
		{"android.widget.TextView", "txt"},
		{"android.widget.EditText", "input"},
		{"android.widget.CheckBox", "chk"},
		{"android.widget.Switch", "toggle"},
		{"androidx.appcompat.widget.SwitchCompat", "toggle"},
		{"android.widget.RadioButton", "radio"},
		{"androidx.recyclerview.widget.RecyclerView", "list"},
		{"android.widget.ScrollView", "scroll"},
		{"android.webkit.WebView", "web"},
		{"android.widget.FrameLayout", "group"},
		{"Button", "btn"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := MapRole(tt.input)
			if got != tt.want {
				t.Errorf("MapRole(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMapRole_UnknownFallback(t *testing.T) {
	unknowns := []string{"android.view.View", "com.example.FancyWidget", ""}
	for _, class := range unknowns {
		if got := MapRole(class); got != "other" {
			t.Errorf("MapRole(%q) = %q, want %q", class, got, "other")
		}
	}
}

func TestExpandRoles(t *testing.T) {
	got := ExpandRoles([]string{"txt", "interactive", "btn"})
	want := []string{"txt", "btn", "input", "chk", "toggle", "radio", "slider", "menu"}
	if len(got) != len(want) {
		t.Fatalf("ExpandRoles = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ExpandRoles[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
