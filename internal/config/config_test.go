package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func env(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := load(filepath.Join(t.TempDir(), "absent.yaml"), env(nil))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 8080 || cfg.ListenHost != "0.0.0.0" {
		t.Errorf("listen = %s", cfg.Addr())
	}
	if cfg.GestureTimeout != 1500*time.Millisecond || cfg.CaptureTimeout != 1200*time.Millisecond {
		t.Errorf("timeouts = %s, %s", cfg.GestureTimeout, cfg.CaptureTimeout)
	}
	if !cfg.MDNS.Enabled || cfg.GrantReuse != GrantReuseAuto || cfg.GrantReuseOverride() != nil {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
listen_host: 127.0.0.1
port: 9090
state_dir: /var/lib/android-remote
grant_reuse: "false"
gesture_timeout: 2s
capture_timeout: 800ms
max_concurrent_requests: 3
mdns:
  enabled: false
  instance: bench-phone
log:
  level: debug
  format: json
device:
  fixture: screens/login.yaml
  sdk_int: 34
`)
	cfg, err := load(path, env(nil))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr() != "127.0.0.1:9090" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
	if cfg.GestureTimeout != 2*time.Second || cfg.CaptureTimeout != 800*time.Millisecond {
		t.Errorf("timeouts = %s, %s", cfg.GestureTimeout, cfg.CaptureTimeout)
	}
	if cfg.MDNS.Enabled || cfg.MDNS.Instance != "bench-phone" {
		t.Errorf("mdns = %+v", cfg.MDNS)
	}
	if reuse := cfg.GrantReuseOverride(); reuse == nil || *reuse {
		t.Errorf("GrantReuseOverride() = %v", reuse)
	}
	if cfg.Device.Fixture != "screens/login.yaml" || cfg.Device.SDKInt != 34 || cfg.MaxConcurrentRequests != 3 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "port: 9090\nlog:\n  level: debug\n")
	cfg, err := load(path, env(map[string]string{
		"ANDROID_REMOTE_PORT":            "7000",
		"ANDROID_REMOTE_GRANT_REUSE":     "true",
		"ANDROID_REMOTE_CAPTURE_TIMEOUT": "3s",
		"ANDROID_REMOTE_MDNS_ENABLED":    "false",
		"ANDROID_REMOTE_STATE_DIR":       "/tmp/state",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 7000 || cfg.CaptureTimeout != 3*time.Second || cfg.MDNS.Enabled || cfg.StateDir != "/tmp/state" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("file value lost: level = %q", cfg.Log.Level)
	}
	if reuse := cfg.GrantReuseOverride(); reuse == nil || !*reuse {
		t.Errorf("GrantReuseOverride() = %v", reuse)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		env     map[string]string
		wantErr string
	}{
		{"port range", "port: 70000", nil, "port must be between"},
		{"zero timeout", "gesture_timeout: 0s", nil, "gesture_timeout must be positive"},
		{"negative timeout", "capture_timeout: -1s", nil, "capture_timeout must be positive"},
		{"grant reuse", "grant_reuse: sometimes", nil, "grant_reuse must be"},
		{"log level", "log:\n  level: loud", nil, "log.level"},
		{"log format", "log:\n  format: xml", nil, "log.format"},
		{"bad yaml", "port: [", nil, "parse config"},
		{"env port", "", map[string]string{"ANDROID_REMOTE_PORT": "eighty"}, "ANDROID_REMOTE_PORT must be an integer"},
		{"env duration", "", map[string]string{"ANDROID_REMOTE_GESTURE_TIMEOUT": "soon"}, "ANDROID_REMOTE_GESTURE_TIMEOUT must be a duration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(writeConfig(t, tt.file), env(tt.env))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ReportsAll(t *testing.T) {
	cfg := Default()
	cfg.Port = 0
	cfg.GestureTimeout = 0
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"port", "gesture_timeout"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	var buf strings.Builder
	logger := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)
	logger.Info("dropped")
	logger.Warn("kept", "k", "v")
	out := buf.String()
	if strings.Contains(out, "dropped") || !strings.Contains(out, `"msg":"kept"`) {
		t.Errorf("output = %q", out)
	}
	if !logger.Enabled(context.Background(), slog.LevelWarn) {
		t.Error("warn should be enabled")
	}
}
