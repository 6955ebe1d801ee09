package client

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/clawd-xsl/android-remote/internal/agent"
	"github.com/clawd-xsl/android-remote/internal/capture"
	"github.com/clawd-xsl/android-remote/internal/gesture"
	"github.com/clawd-xsl/android-remote/internal/model"
	"github.com/clawd-xsl/android-remote/internal/platform"
	"github.com/clawd-xsl/android-remote/internal/platform/virtual"
	"github.com/clawd-xsl/android-remote/internal/server"
	"github.com/clawd-xsl/android-remote/internal/session"
)

func ptr[T any](v T) *T { return &v }

func newTestClient(t *testing.T) (*Client, *virtual.Device) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	d := virtual.NewDevice(virtual.DefaultScreen())
	d.SetGestureLatency(time.Millisecond)

	registry := agent.NewRegistry(gesture.Options{Logger: logger}, logger)
	registry.Watch(d)
	lifecycle := session.New(d, session.NewFileStore(t.TempDir()), platform.CapabilitiesForSDK(33), logger)
	t.Cleanup(lifecycle.Close)

	a := agent.New(agent.Config{
		Registry:  registry,
		Lifecycle: lifecycle,
		Capture:   capture.NewPipeline(lifecycle, d, capture.Options{Logger: logger}),
		Launcher:  d,
		Notifier:  d,
		Device:    d,
		Logger:    logger,
	})
	ts := httptest.NewServer(server.New(a, server.Options{Logger: logger}).Handler())
	t.Cleanup(ts.Close)

	c, err := New(ts.URL, ts.Client())
	if err != nil {
		t.Fatal(err)
	}
	return c, d
}

func TestNew(t *testing.T) {
	tests := []struct {
		addr    string
		want    string
		wantErr bool
	}{
		{"192.168.1.20:8080", "http://192.168.1.20:8080", false},
		{"http://phone.local:8080", "http://phone.local:8080", false},
		{"http://", "", true},
	}
	for _, tt := range tests {
		c, err := New(tt.addr, nil)
		if tt.wantErr {
			if err == nil {
				t.Errorf("New(%q) should fail", tt.addr)
			}
			continue
		}
		if err != nil || c.Addr() != tt.want {
			t.Errorf("New(%q) = %v, %v", tt.addr, c, err)
		}
	}
}

func TestUIAndTap(t *testing.T) {
	c, d := newTestClient(t)
	ctx := context.Background()

	root, err := c.UI(ctx, UIOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if root.Count() != 12 {
		t.Errorf("nodes = %d", root.Count())
	}
	ok, err := c.Tap(ctx, model.TapRequest{NodeID: ptr("0.1.1.1")})
	if err != nil || !ok {
		t.Fatalf("Tap = %v, %v", ok, err)
	}
	if g := d.Gestures(); len(g) != 1 || g[0].Path[0] != (platform.Point{X: 980, Y: 500}) {
		t.Errorf("gestures = %+v", g)
	}

	none, err := c.UI(ctx, UIOptions{Text: "nothing-here"})
	if err != nil || none != nil {
		t.Errorf("filtered UI = %v, %v", none, err)
	}

	flat, err := c.UIFlat(ctx, UIOptions{Roles: []string{"input"}})
	if err != nil || len(flat) != 1 || flat[0].AccessibilityLabel != "Search" {
		t.Errorf("UIFlat = %+v, %v", flat, err)
	}
}

func TestErrors(t *testing.T) {
	c, d := newTestClient(t)
	ctx := context.Background()

	_, err := c.Tap(ctx, model.TapRequest{})
	if !IsStatus(err, http.StatusBadRequest) {
		t.Fatalf("err = %v, want 400", err)
	}
	if e := err.(*Error); e.Message != "missing 'x' parameter" {
		t.Errorf("message = %q", e.Message)
	}

	d.SetWindow(nil)
	if _, err := c.UI(ctx, UIOptions{}); !IsStatus(err, http.StatusOK) {
		t.Errorf("no window err = %v", err)
	}

	if _, _, err := c.Screen(ctx, ScreenOptions{}); !IsStatus(err, http.StatusBadRequest) {
		t.Errorf("screen without grant err = %v", err)
	}
}

func TestCaptureAndScreen(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	st, err := c.GrantCapture(ctx, model.GrantRequest{ResultCode: ptr(-1), Token: ptr("tok")})
	if err != nil || st.State != "active" {
		t.Fatalf("GrantCapture = %+v, %v", st, err)
	}
	data, ctype, err := c.Screen(ctx, ScreenOptions{Format: "jpg", Quality: 50, Scale: 0.5})
	if err != nil || ctype != "image/jpeg" || len(data) == 0 {
		t.Fatalf("Screen = %d bytes, %q, %v", len(data), ctype, err)
	}
	if err := c.RevokeCapture(ctx); err != nil {
		t.Fatal(err)
	}
	if st, _ := c.CaptureStatus(ctx); st.State != "unattached" || st.Persisted {
		t.Errorf("status after revoke = %+v", st)
	}
}

func TestActions(t *testing.T) {
	c, d := newTestClient(t)
	ctx := context.Background()

	if ok, err := c.Key(ctx, model.KeyRequest{Key: ptr("back")}); err != nil || !ok {
		t.Errorf("Key = %v, %v", ok, err)
	}
	if ok, err := c.Input(ctx, model.InputRequest{Text: ptr("hello")}); err != nil || !ok || d.FocusedText() != "hello" {
		t.Errorf("Input = %v, %v", ok, err)
	}
	if ok, err := c.Swipe(ctx, model.SwipeRequest{X1: ptr(1.0), Y1: ptr(2.0), X2: ptr(3.0), Y2: ptr(4.0)}); err != nil || !ok {
		t.Errorf("Swipe = %v, %v", ok, err)
	}
	if ok, _ := c.Launch(ctx, model.LaunchRequest{PackageName: ptr("com.unknown")}); ok {
		t.Error("launching an unknown package should report false")
	}
	if id, err := c.Notify(ctx, model.NotificationRequest{Title: ptr("t"), Body: ptr("b")}); err != nil || id == "" {
		t.Errorf("Notify = %q, %v", id, err)
	}
	info, err := c.Info(ctx)
	if err != nil || info.Model != "Virtual Pixel" {
		t.Errorf("Info = %+v, %v", info, err)
	}
	res, err := c.Do(ctx, model.DoRequest{Steps: []model.Step{{"key": {"key": "home"}}}})
	if err != nil || !res.OK {
		t.Errorf("Do = %+v, %v", res, err)
	}
}
