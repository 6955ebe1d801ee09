// Package agent combines the snapshot builder, gesture bridge, capture
// pipeline and capture session into the operations the command surfaces
// expose.
package agent

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/clawd-xsl/android-remote/internal/capture"
	"github.com/clawd-xsl/android-remote/internal/clock"
	"github.com/clawd-xsl/android-remote/internal/gesture"
	"github.com/clawd-xsl/android-remote/internal/model"
	"github.com/clawd-xsl/android-remote/internal/platform"
	"github.com/clawd-xsl/android-remote/internal/session"
)

// Config wires an Agent to its collaborators.
type Config struct {
	Registry  *Registry
	Lifecycle *session.Lifecycle
	Capture   *capture.Pipeline
	Launcher  platform.Launcher
	Notifier  platform.Notifier
	Device    platform.Device
	Port      int
	Logger    *slog.Logger
	Clock     clock.Clock // Paces batch sleep steps (default: real time)
}

// Agent executes remote-control operations. It is safe for concurrent use.
type Agent struct {
	registry  *Registry
	lifecycle *session.Lifecycle
	capture   *capture.Pipeline
	launcher  platform.Launcher
	notifier  platform.Notifier
	device    platform.Device
	port      int
	logger    *slog.Logger
	clock     clock.Clock

	mu       sync.Mutex
	lastFlat []model.FlatNode
}

// New creates an Agent.
func New(cfg Config) *Agent {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	return &Agent{
		registry:  cfg.Registry,
		lifecycle: cfg.Lifecycle,
		capture:   cfg.Capture,
		launcher:  cfg.Launcher,
		notifier:  cfg.Notifier,
		device:    cfg.Device,
		port:      cfg.Port,
		logger:    cfg.Logger,
		clock:     cfg.Clock,
	}
}

// UI builds a fresh snapshot of the active window. Node addresses in the
// result are valid for TapNode until the next snapshot.
func (a *Agent) UI() (*model.UiNode, error) {
	auto, err := a.registry.Current()
	if err != nil {
		return nil, err
	}
	root := auto.Builder.Build()
	flat := model.Flatten(root)

	a.mu.Lock()
	a.lastFlat = flat
	a.mu.Unlock()

	if root == nil {
		return nil, ErrNoActiveWindow
	}
	return root, nil
}

// UIDiff builds a fresh snapshot and compares it with the previous one.
// The first call reports every node as added.
func (a *Agent) UIDiff() (model.SnapshotDiff, error) {
	a.mu.Lock()
	prev := a.lastFlat
	a.mu.Unlock()

	root, err := a.UI()
	if err != nil {
		return model.SnapshotDiff{}, err
	}
	return model.DiffSnapshots(prev, model.Flatten(root)), nil
}

// Tap taps a node from the latest snapshot when NodeID is set, the node
// matching Text when that is set, otherwise the point (X, Y).
func (a *Agent) Tap(req model.TapRequest) (bool, error) {
	if req.NodeID == nil && req.Text == nil {
		if req.X == nil {
			return false, missing("x")
		}
		if req.Y == nil {
			return false, missing("y")
		}
	}
	auto, err := a.registry.Current()
	if err != nil {
		return false, err
	}
	switch {
	case req.NodeID != nil:
		return a.tapAddress(auto, *req.NodeID)
	case req.Text != nil:
		node, err := a.FindText(*req.Text, false)
		if err != nil {
			return false, err
		}
		return a.tapAddress(auto, node.Address)
	default:
		return auto.Gestures.Tap(*req.X, *req.Y), nil
	}
}

func (a *Agent) tapAddress(auto *Automation, address string) (bool, error) {
	outcome := auto.Gestures.TapAddressOutcome(address)
	if outcome == gesture.StaleAddress {
		return false, fmt.Errorf("%w: %q", ErrStaleAddress, address)
	}
	return outcome.OK(), nil
}

// FindText builds a fresh snapshot and returns the single node matching
// text. Clickable matches win over static ones.
func (a *Agent) FindText(text string, exact bool) (*model.UiNode, error) {
	if strings.TrimSpace(text) == "" {
		return nil, missing("text")
	}
	root, err := a.UI()
	if err != nil {
		return nil, err
	}
	matches := model.PreferClickable(model.FindByText(root, text, exact))
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %q", ErrNoMatch, text)
	case 1:
		return matches[0], nil
	default:
		addrs := make([]string, 0, len(matches))
		for _, m := range matches {
			addrs = append(addrs, m.Address)
		}
		return nil, fmt.Errorf("%w: %q matches %s", ErrAmbiguousMatch, text, strings.Join(addrs, ", "))
	}
}

// Swipe draws one straight stroke. DurationMs defaults to 300.
func (a *Agent) Swipe(req model.SwipeRequest) (bool, error) {
	for _, f := range []struct {
		name string
		v    *float64
	}{{"x1", req.X1}, {"y1", req.Y1}, {"x2", req.X2}, {"y2", req.Y2}} {
		if f.v == nil {
			return false, missing(f.name)
		}
	}
	duration := gesture.DefaultSwipeDuration
	if req.DurationMs != nil {
		duration = gesture.StrokeDuration(*req.DurationMs)
	}
	auto, err := a.registry.Current()
	if err != nil {
		return false, err
	}
	return auto.Gestures.Swipe(*req.X1, *req.Y1, *req.X2, *req.Y2, duration), nil
}

// Input replaces the text of the input-focused node.
func (a *Agent) Input(req model.InputRequest) (bool, error) {
	if req.Text == nil {
		return false, missing("text")
	}
	auto, err := a.registry.Current()
	if err != nil {
		return false, err
	}
	ok := auto.SetFocusedText(*req.Text)
	if !ok {
		a.logger.Info("input ignored: no focused node")
	}
	return ok, nil
}

// Key performs a global action named by KeyCode or Key. Unknown names
// report false.
func (a *Agent) Key(req model.KeyRequest) (bool, error) {
	name := req.KeyCode
	if name == nil {
		name = req.Key
	}
	if name == nil {
		return false, &ValidationError{Field: "keyCode", Message: "missing 'keyCode' or 'key' parameter"}
	}
	auto, err := a.registry.Current()
	if err != nil {
		return false, err
	}
	action, err := platform.ParseGlobalAction(*name)
	if err != nil {
		a.logger.Info("unknown key", "key", *name)
		return false, nil
	}
	return auto.PerformGlobalAction(action), nil
}

// Launch starts an installed app. A package without a launch entry
// reports false.
func (a *Agent) Launch(req model.LaunchRequest) (bool, error) {
	if req.PackageName == nil || strings.TrimSpace(*req.PackageName) == "" {
		return false, missing("packageName")
	}
	ok, err := a.launcher.Launch(*req.PackageName)
	if err != nil {
		return false, fmt.Errorf("launch %s: %w", *req.PackageName, err)
	}
	return ok, nil
}

// Notify posts a notification and returns its id.
func (a *Agent) Notify(req model.NotificationRequest) (string, error) {
	if req.Title == nil {
		return "", missing("title")
	}
	if req.Body == nil {
		return "", missing("body")
	}
	id := uuid.NewString()
	if err := a.notifier.Notify(id, *req.Title, *req.Body); err != nil {
		return "", fmt.Errorf("post notification: %w", err)
	}
	return id, nil
}

// Info describes the device and the port the agent serves on.
func (a *Agent) Info() model.DeviceInfo {
	info := a.device.Info()
	info.Port = a.port
	return info
}

// ScreenOptions select how a screenshot is rendered.
type ScreenOptions struct {
	capture.EncodeOptions
	// Annotate draws the boxes and addresses of the latest snapshot.
	Annotate bool
}

// Screen captures one frame. Without a live session the error is
// ErrNotGranted or *SessionLostError.
func (a *Agent) Screen(opts ScreenOptions) ([]byte, error) {
	enc := opts.EncodeOptions
	if opts.Annotate {
		enc.Annotations = a.annotations()
	}
	return a.capture.CaptureFrame(enc)
}

// annotations lists the latest snapshot's nodes, parents before children
// so nested labels stay readable. Without a connected service there is
// nothing to draw.
func (a *Agent) annotations() []capture.Annotation {
	auto, err := a.registry.Current()
	if err != nil {
		return nil
	}
	var out []capture.Annotation
	auto.Cache.Each(func(address string, r model.Rect) {
		if !r.Empty() {
			out = append(out, capture.Annotation{Label: address, Bounds: r})
		}
	})
	sort.Slice(out, func(i, j int) bool {
		di, dj := strings.Count(out[i].Label, "."), strings.Count(out[j].Label, ".")
		if di != dj {
			return di < dj
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// CaptureStatus describes the capture grant.
func (a *Agent) CaptureStatus() model.CaptureStatus {
	return a.lifecycle.Status()
}

// GrantCapture attaches a fresh capture grant, replacing any session.
func (a *Agent) GrantCapture(req model.GrantRequest) error {
	if req.ResultCode == nil {
		return missing("resultCode")
	}
	if req.Token == nil || *req.Token == "" {
		return missing("token")
	}
	return a.lifecycle.Attach(platform.Grant{ResultCode: *req.ResultCode, Token: *req.Token})
}

// RevokeCapture stops capture and forgets the persisted grant.
func (a *Agent) RevokeCapture() error {
	return a.lifecycle.Revoke()
}
