package cmd

import (
	"strings"
	"testing"
)

func TestParseSteps(t *testing.T) {
	input := `
- key: { keyCode: home }
- tap: { text: "Network & internet" }
- sleep: { ms: 500 }
- ui:
`
	steps, err := parseSteps([]byte(input))
	if err != nil {
		t.Fatal(err)
	}
	if len(steps) != 4 {
		t.Fatalf("got %d steps, want 4", len(steps))
	}
	if steps[0]["key"]["keyCode"] != "home" {
		t.Errorf("step 1 = %v", steps[0])
	}
	if steps[2]["sleep"]["ms"] != 500 {
		t.Errorf("step 3 = %v", steps[2])
	}
	if params, ok := steps[3]["ui"]; !ok || params == nil {
		t.Errorf("step without params should get an empty map, got %v", steps[3])
	}
}

func TestParseSteps_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"empty", "", "no steps provided on stdin"},
		{"empty list", "[]", "expected a YAML list"},
		{"not a list", "tap: {x: 1}", "failed to parse YAML steps"},
		{"two keys", "- {tap: {x: 1}, key: {keyCode: back}}", "step 1: expected exactly one action key, got 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseSteps([]byte(tt.input))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}
