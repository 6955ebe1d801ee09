package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/clawd-xsl/android-remote/internal/model"
)

func sampleResult() UIResult {
	return UIResult{
		Agent: "192.168.1.20:8080",
		Nodes: 1,
		Tree: &model.UiNode{Address: "0", ClassName: "android.widget.Button", Text: "OK",
			Bounds: model.Rect{Left: 10, Top: 20, Right: 110, Bottom: 50}, Clickable: true, Children: []model.UiNode{}},
	}
}

func TestFprintYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Fprint(&buf, FormatYAML, sampleResult()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Count(out, "\n") <= 1 {
		t.Errorf("YAML output should be multi-line, got:\n%s", out)
	}

	var decoded UIResult
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if decoded.Tree == nil || decoded.Tree.Text != "OK" || decoded.Agent != "192.168.1.20:8080" {
		t.Errorf("decoded = %+v", decoded)
	}
	if strings.Contains(out, "error:") {
		t.Error("empty error should be omitted")
	}
}

func TestFprintJSON(t *testing.T) {
	tests := []struct {
		name   string
		pretty bool
		lines  func(int) bool
	}{
		{"compact", false, func(n int) bool { return n == 1 }},
		{"pretty", true, func(n int) bool { return n > 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			PrettyOutput = tt.pretty
			defer func() { PrettyOutput = false }()

			var buf bytes.Buffer
			if err := Fprint(&buf, FormatJSON, sampleResult()); err != nil {
				t.Fatal(err)
			}
			if n := strings.Count(buf.String(), "\n"); !tt.lines(n) {
				t.Errorf("%d lines in:\n%s", n, buf.String())
			}
			var decoded UIResult
			if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
				t.Fatalf("output is not valid JSON: %v", err)
			}
			if decoded.Tree.Address != "0" {
				t.Errorf("decoded = %+v", decoded)
			}
		})
	}
}

func TestFprint_NoHTMLEscape(t *testing.T) {
	var buf bytes.Buffer
	if err := Fprint(&buf, FormatJSON, map[string]string{"text": "Network & internet"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Network & internet") {
		t.Errorf("output = %s", buf.String())
	}
}

func TestPrintUsesStdout(t *testing.T) {
	var buf bytes.Buffer
	old, oldFormat := Stdout, OutputFormat
	Stdout, OutputFormat = &buf, FormatJSON
	defer func() { Stdout, OutputFormat = old, oldFormat }()

	if err := Print(model.ActionResult{Success: true}); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buf.String()); got != `{"success":true}` {
		t.Errorf("output = %q", got)
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"yaml": FormatYAML, "json": FormatJSON} {
		if got, err := ParseFormat(in); err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("agent"); err == nil {
		t.Error("expected error for unsupported format")
	}
	if got, err := ParseFormat(""); err != nil || (got != FormatYAML && got != FormatJSON) {
		t.Errorf("ParseFormat(\"\") = %q, %v", got, err)
	}
}

func TestNewScreenshotResult(t *testing.T) {
	r := NewScreenshotResult("screen.png", "png", 1500000)
	if r.Size != "1.5 MB" || r.Bytes != 1500000 {
		t.Errorf("result = %+v", r)
	}
}
