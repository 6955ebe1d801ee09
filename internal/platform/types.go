package platform

import (
	"fmt"
	"strings"
	"time"
)

// Capabilities are environment facts resolved once at startup.
type Capabilities struct {
	// GrantReuse reports whether a capture grant token may be used again
	// after the session it created has ended. False on platform revisions
	// where grants are single-use.
	GrantReuse bool
}

// SingleUseGrantSDK is the first SDK level on which capture grants are
// single-use.
const SingleUseGrantSDK = 34

// CapabilitiesForSDK resolves the capability flags for an SDK level.
func CapabilitiesForSDK(sdkInt int) Capabilities {
	return Capabilities{GrantReuse: sdkInt < SingleUseGrantSDK}
}

// ProviderOptions configures a platform backend.
type ProviderOptions struct {
	Fixture string // Screen definition file for the virtual device ("" = built-in)
	SDKInt  int    // Reported SDK level (0 = backend default)
}

// Grant is an opaque capture credential. ResultCode 0 means absent.
type Grant struct {
	ResultCode int    `json:"resultCode"`
	Token      string `json:"token"`
}

// Valid reports whether g carries a usable credential.
func (g Grant) Valid() bool {
	return g.ResultCode != 0 && g.Token != ""
}

// DisplayMetrics are the real pixel dimensions of a display.
type DisplayMetrics struct {
	Width      int
	Height     int
	DensityDPI int
}

// Frame is one RGBA_8888 buffer delivered by a capture surface. Rows may
// be padded: RowStride can exceed PixelStride*Width.
type Frame struct {
	Pix         []byte
	Width       int
	Height      int
	PixelStride int
	RowStride   int
}

// Point is a screen coordinate in pixels.
type Point struct {
	X, Y float64
}

// Gesture is a single stroke: one point (tap) or a straight line through
// two points (swipe), held for Duration.
type Gesture struct {
	Path     []Point
	Duration time.Duration
}

// GlobalAction is a system-wide navigation action.
type GlobalAction int

const (
	ActionHome GlobalAction = iota
	ActionBack
	ActionRecents
	ActionNotifications
	ActionQuickSettings
)

var globalActionNames = map[string]GlobalAction{
	"home":           ActionHome,
	"back":           ActionBack,
	"recents":        ActionRecents,
	"notifications":  ActionNotifications,
	"quick_settings": ActionQuickSettings,
}

// ParseGlobalAction converts a key name to a GlobalAction, ignoring case.
func ParseGlobalAction(s string) (GlobalAction, error) {
	if a, ok := globalActionNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return a, nil
	}
	return ActionHome, fmt.Errorf("unknown key: %q (expected home, back, recents, notifications, or quick_settings)", s)
}

func (a GlobalAction) String() string {
	for name, v := range globalActionNames {
		if v == a {
			return name
		}
	}
	return fmt.Sprintf("GlobalAction(%d)", int(a))
}
