package platform

import "github.com/clawd-xsl/android-remote/internal/model"

// Node is a live node of the platform accessibility hierarchy.
type Node interface {
	Text() string
	ContentDescription() string
	ClassName() string
	BoundsInScreen() model.Rect
	Clickable() bool
	Scrollable() bool
	ChildCount() int
	// Child returns the i-th child, or nil if it disappeared since
	// ChildCount was read.
	Child(i int) Node
}

// TreeSource queries the accessibility hierarchy on demand.
type TreeSource interface {
	// RootInActiveWindow returns the root of the active window, or nil
	// when no window is active.
	RootInActiveWindow() Node
}

// GestureInjector submits gestures to the input pipeline.
type GestureInjector interface {
	// DispatchGesture submits g and returns false if the platform rejects
	// it outright. Otherwise done is invoked later, from another
	// goroutine, with true on completion or false on cancellation. A
	// misbehaving platform may never invoke done, or invoke it twice.
	DispatchGesture(g Gesture, done func(completed bool)) bool
}

// ActionPerformer performs global actions and edits the focused node.
type ActionPerformer interface {
	PerformGlobalAction(action GlobalAction) bool
	// SetFocusedText replaces the text of the input-focused node. Returns
	// false when nothing has input focus.
	SetFocusedText(text string) bool
}

// Automation is the accessibility service: tree queries plus input.
type Automation interface {
	TreeSource
	GestureInjector
	ActionPerformer
}

// AutomationWatcher reports the accessibility service connecting
// (non-nil) and disconnecting (nil). The current state is reported
// immediately on registration.
type AutomationWatcher interface {
	WatchAutomation(fn func(Automation))
}

// Display reports the real metrics of the default display.
type Display interface {
	Metrics() DisplayMetrics
}

// Surface is a single-use off-screen render target.
type Surface interface {
	Release()
}

// ProjectionSession is a live capture session created from a grant.
type ProjectionSession interface {
	// Mirror creates an off-screen surface sized to m and starts
	// rendering the display into it. onFrame is invoked, from another
	// goroutine, for each delivered buffer until the surface is
	// released. The buffer is only valid for the duration of the call.
	Mirror(m DisplayMetrics, onFrame func(Frame)) (Surface, error)

	// Stop ends the session.
	Stop()
}

// Projector turns capture grants into sessions.
type Projector interface {
	// Open creates a session from g. onStop fires at most once, from
	// another goroutine and never from within Open, when the session
	// ends for any reason (including Stop).
	Open(g Grant, onStop func(reason string)) (ProjectionSession, error)
}

// Launcher starts installed apps.
type Launcher interface {
	// Launch starts the launch activity of packageName. Returns false if
	// the package has no launch entry.
	Launch(packageName string) (bool, error)
}

// Notifier posts local notifications.
type Notifier interface {
	Notify(id, title, body string) error
}

// Device reports static and dynamic device properties. Port is filled in
// by the caller.
type Device interface {
	Info() model.DeviceInfo
}
