package virtual

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/clawd-xsl/android-remote/internal/model"
	"github.com/clawd-xsl/android-remote/internal/platform"
)

// GestureMode selects how the device reports dispatched gestures.
type GestureMode int

const (
	// GestureComplete reports completion after the latency.
	GestureComplete GestureMode = iota
	// GestureCancel reports cancellation after the latency.
	GestureCancel
	// GestureSilent never reports.
	GestureSilent
	// GestureReject refuses the gesture at submission.
	GestureReject
)

// Notification is a posted notification.
type Notification struct {
	ID    string
	Title string
	Body  string
}

// Device is the virtual device. The zero value is not usable; call
// NewDevice.
type Device struct {
	mu sync.RWMutex

	screen    *Screen
	installed map[string]bool
	connected bool
	watchers  []func(platform.Automation)

	gestureMode    GestureMode
	gestureLatency time.Duration
	gestures       []platform.Gesture
	actions        []platform.GlobalAction
	launched       []string
	notifications  []Notification

	framesPaused bool
	usedTokens   map[string]bool
	rejected     map[string]bool
	sessions     []*projection
}

// NewDevice creates a device showing screen, with its accessibility
// service connected.
func NewDevice(screen *Screen) *Device {
	installed := make(map[string]bool, len(screen.Packages))
	for _, p := range screen.Packages {
		installed[p] = true
	}
	return &Device{
		screen:         screen,
		installed:      installed,
		connected:      true,
		gestureLatency: 10 * time.Millisecond,
		usedTokens:     make(map[string]bool),
		rejected:       make(map[string]bool),
	}
}

// RootInActiveWindow implements platform.TreeSource.
func (d *Device) RootInActiveWindow() platform.Node {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.screen.Window == nil {
		return nil
	}
	return node{d: d, spec: d.screen.Window}
}

// DispatchGesture implements platform.GestureInjector.
func (d *Device) DispatchGesture(g platform.Gesture, done func(bool)) bool {
	d.mu.Lock()
	d.gestures = append(d.gestures, g)
	mode, latency := d.gestureMode, d.gestureLatency
	d.mu.Unlock()

	if mode == GestureReject || len(g.Path) == 0 || g.Duration <= 0 {
		return false
	}
	go func() {
		time.Sleep(latency + g.Duration/10)
		switch mode {
		case GestureComplete:
			done(true)
		case GestureCancel:
			done(false)
		}
	}()
	return true
}

// PerformGlobalAction implements platform.ActionPerformer.
func (d *Device) PerformGlobalAction(a platform.GlobalAction) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.actions = append(d.actions, a)
	return true
}

// SetFocusedText implements platform.ActionPerformer.
func (d *Device) SetFocusedText(text string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	var focused *NodeSpec
	d.screen.Window.walk(func(n *NodeSpec) bool {
		if n.Focused && !n.Gone {
			focused = n
			return false
		}
		return true
	})
	if focused == nil {
		return false
	}
	focused.Text = text
	return true
}

// WatchAutomation implements platform.AutomationWatcher.
func (d *Device) WatchAutomation(fn func(platform.Automation)) {
	d.mu.Lock()
	d.watchers = append(d.watchers, fn)
	connected := d.connected
	d.mu.Unlock()
	fn(d.automation(connected))
}

// Connect enables the accessibility service and notifies watchers.
func (d *Device) Connect() { d.setConnected(true) }

// Disconnect disables the accessibility service and notifies watchers.
func (d *Device) Disconnect() { d.setConnected(false) }

func (d *Device) setConnected(connected bool) {
	d.mu.Lock()
	d.connected = connected
	watchers := append([]func(platform.Automation){}, d.watchers...)
	d.mu.Unlock()
	for _, fn := range watchers {
		fn(d.automation(connected))
	}
}

func (d *Device) automation(connected bool) platform.Automation {
	if !connected {
		return nil
	}
	return d
}

// Metrics implements platform.Display.
func (d *Device) Metrics() platform.DisplayMetrics {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return platform.DisplayMetrics{
		Width:      d.screen.Display.Width,
		Height:     d.screen.Display.Height,
		DensityDPI: d.screen.Display.DensityDPI,
	}
}

// Launch implements platform.Launcher.
func (d *Device) Launch(packageName string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.installed[packageName] {
		return false, nil
	}
	d.launched = append(d.launched, packageName)
	return true, nil
}

// Notify implements platform.Notifier.
func (d *Device) Notify(id, title, body string) error {
	if id == "" {
		return fmt.Errorf("notification id is empty")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notifications = append(d.notifications, Notification{ID: id, Title: title, Body: body})
	return nil
}

// Info implements platform.Device.
func (d *Device) Info() model.DeviceInfo {
	d.mu.RLock()
	spec := d.screen.Device
	d.mu.RUnlock()
	return model.DeviceInfo{
		Model:          spec.Model,
		Manufacturer:   spec.Manufacturer,
		AndroidVersion: spec.AndroidVersion,
		SDKInt:         spec.SDKInt,
		BatteryPercent: spec.BatteryPercent,
		IPAddress:      localIPv4(),
	}
}

// localIPv4 returns the first non-loopback IPv4 address, or 0.0.0.0.
func localIPv4() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "0.0.0.0"
	}
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() {
			continue
		}
		if v4 := ipnet.IP.To4(); v4 != nil {
			return v4.String()
		}
	}
	return "0.0.0.0"
}

// SetWindow replaces the active window. nil means no active window.
func (d *Device) SetWindow(root *NodeSpec) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.screen.Window = root
}

// SetGestureMode changes how later gestures are reported.
func (d *Device) SetGestureMode(m GestureMode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gestureMode = m
}

// SetGestureLatency sets the delay before a gesture is reported.
func (d *Device) SetGestureLatency(latency time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gestureLatency = latency
}

// Gestures returns every gesture dispatched so far.
func (d *Device) Gestures() []platform.Gesture {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]platform.Gesture(nil), d.gestures...)
}

// Actions returns every global action performed so far.
func (d *Device) Actions() []platform.GlobalAction {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]platform.GlobalAction(nil), d.actions...)
}

// Launched returns the packages launched so far.
func (d *Device) Launched() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]string(nil), d.launched...)
}

// Notifications returns the notifications posted so far.
func (d *Device) Notifications() []Notification {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]Notification(nil), d.notifications...)
}

// FocusedText returns the text of the focused node.
func (d *Device) FocusedText() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	text := ""
	d.screen.Window.walk(func(n *NodeSpec) bool {
		if n.Focused {
			text = n.Text
			return false
		}
		return true
	})
	return text
}
