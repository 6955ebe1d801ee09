package virtual

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/clawd-xsl/android-remote/internal/model"
)

//go:embed default_screen.yaml
var defaultScreen []byte

// Screen describes the virtual device: its properties, display, installed
// packages and the active window's node tree.
type Screen struct {
	Device   DeviceSpec  `yaml:"device"`
	Display  DisplaySpec `yaml:"display"`
	Packages []string    `yaml:"packages"`
	// Window is the active window's root. Absent means no active window.
	Window *NodeSpec `yaml:"window"`
}

// DeviceSpec holds the values reported by Info.
type DeviceSpec struct {
	Model          string `yaml:"model"`
	Manufacturer   string `yaml:"manufacturer"`
	AndroidVersion string `yaml:"android_version"`
	SDKInt         int    `yaml:"sdk_int"`
	BatteryPercent int    `yaml:"battery_percent"`
}

// DisplaySpec sizes the display. RowPadding adds bytes after every row of
// a captured frame, as real capture buffers do.
type DisplaySpec struct {
	Width      int `yaml:"width"`
	Height     int `yaml:"height"`
	DensityDPI int `yaml:"density_dpi"`
	RowPadding int `yaml:"row_padding"`
}

// NodeSpec is one node of the window tree.
type NodeSpec struct {
	Class       string      `yaml:"class"`
	Text        string      `yaml:"text"`
	Description string      `yaml:"description"`
	Bounds      [4]int      `yaml:"bounds"`
	Clickable   bool        `yaml:"clickable"`
	Scrollable  bool        `yaml:"scrollable"`
	Focused     bool        `yaml:"focused"`
	Gone        bool        `yaml:"gone"` // counted by the parent but unreadable
	Children    []*NodeSpec `yaml:"children"`
}

func (n *NodeSpec) rect() model.Rect {
	return model.Rect{Left: n.Bounds[0], Top: n.Bounds[1], Right: n.Bounds[2], Bottom: n.Bounds[3]}
}

// walk visits n and its descendants depth-first until fn returns false.
func (n *NodeSpec) walk(fn func(*NodeSpec) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.walk(fn) {
			return false
		}
	}
	return true
}

// DefaultScreen returns the built-in settings screen.
func DefaultScreen() *Screen {
	s, err := ParseScreen(defaultScreen)
	if err != nil {
		panic(fmt.Sprintf("built-in screen: %v", err))
	}
	return s
}

// LoadScreen reads a screen definition from path. An empty path selects
// the built-in screen.
func LoadScreen(path string) (*Screen, error) {
	if path == "" {
		return DefaultScreen(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read screen: %w", err)
	}
	s, err := ParseScreen(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseScreen decodes and validates a YAML screen definition.
func ParseScreen(data []byte) (*Screen, error) {
	var s Screen
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse screen: %w", err)
	}
	if s.Display.Width <= 0 || s.Display.Height <= 0 {
		return nil, fmt.Errorf("display size must be positive, got %dx%d", s.Display.Width, s.Display.Height)
	}
	if s.Display.RowPadding < 0 {
		return nil, fmt.Errorf("row_padding must not be negative")
	}
	if s.Device.SDKInt == 0 {
		s.Device.SDKInt = 33
	}
	return &s, nil
}
