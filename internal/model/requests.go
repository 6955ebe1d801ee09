package model

// TapRequest taps a node from the latest snapshot, the node matching Text
// in a fresh snapshot, or a screen point, in that order of precedence.
type TapRequest struct {
	X      *float64 `json:"x,omitempty"`
	Y      *float64 `json:"y,omitempty"`
	NodeID *string  `json:"nodeId,omitempty"`
	Text   *string  `json:"text,omitempty"`
}

// SwipeRequest is a single straight-line stroke.
type SwipeRequest struct {
	X1         *float64 `json:"x1"`
	Y1         *float64 `json:"y1"`
	X2         *float64 `json:"x2"`
	Y2         *float64 `json:"y2"`
	DurationMs *int64   `json:"durationMs,omitempty"`
}

// InputRequest sets the text of the input-focused node.
type InputRequest struct {
	Text *string `json:"text"`
}

// KeyRequest accepts either keyCode or key; keyCode wins.
type KeyRequest struct {
	KeyCode *string `json:"keyCode,omitempty"`
	Key     *string `json:"key,omitempty"`
}

// LaunchRequest starts an installed app by package name.
type LaunchRequest struct {
	PackageName *string `json:"packageName"`
}

// NotificationRequest posts a local notification.
type NotificationRequest struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
}

// GrantRequest supplies a fresh capture grant.
type GrantRequest struct {
	ResultCode *int    `json:"resultCode"`
	Token      *string `json:"token"`
}

// ActionResult is the body of every automation endpoint.
type ActionResult struct {
	Success bool   `yaml:"success"      json:"success"`
	ID      string `yaml:"id,omitempty" json:"id,omitempty"`
}

// ErrorResult is the body of every failed request.
type ErrorResult struct {
	Error string `yaml:"error" json:"error"`
}
