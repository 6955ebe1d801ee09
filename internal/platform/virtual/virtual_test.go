package virtual

import (
	"testing"
	"time"

	"github.com/clawd-xsl/android-remote/internal/platform"
)

func TestNewProviderDefaults(t *testing.T) {
	p, err := NewProvider(platform.ProviderOptions{})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if !p.Capabilities.GrantReuse {
		t.Error("built-in screen is SDK 33; grant reuse should be allowed")
	}
	if m := p.Display.Metrics(); m.Width != 1080 || m.Height != 2400 {
		t.Errorf("metrics = %+v", m)
	}
	if _, ok := DeviceOf(p); !ok {
		t.Error("DeviceOf failed")
	}

	p, err = NewProvider(platform.ProviderOptions{SDKInt: 34})
	if err != nil {
		t.Fatal(err)
	}
	if p.Capabilities.GrantReuse {
		t.Error("SDK 34 should not allow grant reuse")
	}
	if got := p.Device.Info().SDKInt; got != 34 {
		t.Errorf("SDKInt = %d", got)
	}
}

func TestParseScreenValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing display", "packages: [a]"},
		{"negative padding", "display: {width: 10, height: 10, row_padding: -1}"},
		{"bad yaml", "display: ["},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseScreen([]byte(tt.yaml)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestTreeReadsAndGoneChild(t *testing.T) {
	d := NewDevice(DefaultScreen())
	root := d.RootInActiveWindow()
	if root == nil || root.ChildCount() != 2 {
		t.Fatalf("root = %v", root)
	}
	toolbar := root.Child(0)
	if got := toolbar.Child(0).Text(); got != "Settings" {
		t.Errorf("title = %q", got)
	}
	if root.Child(5) != nil {
		t.Error("out of range child should be nil")
	}

	d.SetWindow(&NodeSpec{Class: "Frame", Children: []*NodeSpec{{Class: "A", Gone: true}, {Class: "B"}}})
	root = d.RootInActiveWindow()
	if root.ChildCount() != 2 || root.Child(0) != nil || root.Child(1).ClassName() != "B" {
		t.Error("gone child should be counted but unreadable")
	}

	d.SetWindow(nil)
	if d.RootInActiveWindow() != nil {
		t.Error("expected no active window")
	}
}

func TestDispatchGestureModes(t *testing.T) {
	d := NewDevice(DefaultScreen())
	d.SetGestureLatency(time.Millisecond)
	tap := platform.Gesture{Path: []platform.Point{{X: 1, Y: 2}}, Duration: 80 * time.Millisecond}

	result := make(chan bool, 1)
	if !d.DispatchGesture(tap, func(ok bool) { result <- ok }) {
		t.Fatal("gesture rejected")
	}
	if !<-result {
		t.Error("expected completion")
	}

	d.SetGestureMode(GestureCancel)
	d.DispatchGesture(tap, func(ok bool) { result <- ok })
	if <-result {
		t.Error("expected cancellation")
	}

	d.SetGestureMode(GestureReject)
	if d.DispatchGesture(tap, func(bool) { t.Error("rejected gesture reported") }) {
		t.Error("expected rejection")
	}
	if n := len(d.Gestures()); n != 3 {
		t.Errorf("recorded %d gestures, want 3", n)
	}
}

func TestSetFocusedText(t *testing.T) {
	d := NewDevice(DefaultScreen())
	if !d.SetFocusedText("wifi") {
		t.Fatal("SetFocusedText = false")
	}
	if d.FocusedText() != "wifi" {
		t.Errorf("FocusedText = %q", d.FocusedText())
	}

	d.SetWindow(&NodeSpec{Class: "Frame"})
	if d.SetFocusedText("x") {
		t.Error("no focused node should report false")
	}
}

func TestWatchAutomation(t *testing.T) {
	d := NewDevice(DefaultScreen())
	var seen []bool
	d.WatchAutomation(func(a platform.Automation) { seen = append(seen, a != nil) })
	d.Disconnect()
	d.Connect()
	want := []bool{true, false, true}
	if len(seen) != len(want) {
		t.Fatalf("seen = %v", seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("seen[%d] = %v, want %v", i, seen[i], want[i])
		}
	}
}

func TestLaunchAndNotify(t *testing.T) {
	d := NewDevice(DefaultScreen())
	if ok, err := d.Launch("com.android.settings"); !ok || err != nil {
		t.Errorf("Launch installed = %v, %v", ok, err)
	}
	if ok, _ := d.Launch("com.missing.app"); ok {
		t.Error("Launch of missing package succeeded")
	}
	if err := d.Notify("n1", "Hi", "there"); err != nil {
		t.Fatal(err)
	}
	if n := d.Notifications(); len(n) != 1 || n[0].Title != "Hi" {
		t.Errorf("notifications = %+v", n)
	}
}

func TestMirrorDeliversPaddedFrame(t *testing.T) {
	d := NewDevice(DefaultScreen())
	s, err := d.Open(platform.Grant{ResultCode: -1, Token: "t"}, func(string) {})
	if err != nil {
		t.Fatal(err)
	}
	frames := make(chan platform.Frame, 1)
	surface, err := s.Mirror(d.Metrics(), func(f platform.Frame) {
		select {
		case frames <- f:
		default:
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	defer surface.Release()

	select {
	case f := <-frames:
		if f.RowStride != 1080*4+64 || f.PixelStride != 4 {
			t.Errorf("strides = %d/%d", f.RowStride, f.PixelStride)
		}
		if len(f.Pix) != f.RowStride*2400 {
			t.Errorf("buffer = %d bytes", len(f.Pix))
		}
	case <-time.After(time.Second):
		t.Fatal("no frame delivered")
	}
}

func TestSingleUseGrants(t *testing.T) {
	screen := DefaultScreen()
	screen.Device.SDKInt = 34
	d := NewDevice(screen)
	g := platform.Grant{ResultCode: -1, Token: "once"}

	s, err := d.Open(g, func(string) {})
	if err != nil {
		t.Fatal(err)
	}
	s.Stop()
	if _, err := d.Open(g, func(string) {}); err == nil {
		t.Error("second Open with a single-use grant succeeded")
	}
}

func TestEndCaptureReportsReason(t *testing.T) {
	d := NewDevice(DefaultScreen())
	reasons := make(chan string, 2)
	s, err := d.Open(platform.Grant{ResultCode: -1, Token: "t"}, func(r string) { reasons <- r })
	if err != nil {
		t.Fatal(err)
	}
	d.EndCapture("user stopped casting")
	s.Stop()

	if got := <-reasons; got != "user stopped casting" {
		t.Errorf("reason = %q", got)
	}
	select {
	case r := <-reasons:
		t.Errorf("onStop fired twice (%q)", r)
	case <-time.After(20 * time.Millisecond):
	}
	if _, err := s.Mirror(d.Metrics(), func(platform.Frame) {}); err == nil {
		t.Error("Mirror on an ended session succeeded")
	}
	if d.LiveSessions() != 0 {
		t.Errorf("LiveSessions = %d", d.LiveSessions())
	}
}
