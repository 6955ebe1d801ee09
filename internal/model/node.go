package model

// Rect is a screen rectangle in integer pixels.
type Rect struct {
	Left   int `yaml:"left"   json:"left"`
	Top    int `yaml:"top"    json:"top"`
	Right  int `yaml:"right"  json:"right"`
	Bottom int `yaml:"bottom" json:"bottom"`
}

// Width returns the horizontal extent of r.
func (r Rect) Width() int { return r.Right - r.Left }

// Height returns the vertical extent of r.
func (r Rect) Height() int { return r.Bottom - r.Top }

// Empty reports whether r encloses no pixels.
func (r Rect) Empty() bool { return r.Right <= r.Left || r.Bottom <= r.Top }

// Center returns the exact (fractional) center of r.
func (r Rect) Center() (float64, float64) {
	return float64(r.Left+r.Right) / 2, float64(r.Top+r.Bottom) / 2
}

// UiNode is one node of a UI snapshot. Address is the dot-separated path of
// sibling indices from the root ("0", "0.2", "0.2.1") and is only meaningful
// for the snapshot that produced it.
type UiNode struct {
	Address            string   `yaml:"nodeId"                       json:"nodeId"`
	Text               string   `yaml:"text,omitempty"               json:"text,omitempty"`
	AccessibilityLabel string   `yaml:"contentDescription,omitempty" json:"contentDescription,omitempty"`
	ClassName          string   `yaml:"className,omitempty"          json:"className,omitempty"`
	Bounds             Rect     `yaml:"bounds"                       json:"bounds"`
	Clickable          bool     `yaml:"clickable"                    json:"clickable"`
	Scrollable         bool     `yaml:"scrollable"                   json:"scrollable"`
	Children           []UiNode `yaml:"children"                     json:"children"`
}

// Walk visits n and its descendants depth-first, parents before children.
// Returning false from fn stops the walk below that node.
func (n *UiNode) Walk(fn func(*UiNode) bool) {
	if !fn(n) {
		return
	}
	for i := range n.Children {
		n.Children[i].Walk(fn)
	}
}

// Find returns the node with the given address, or nil.
func (n *UiNode) Find(address string) *UiNode {
	var found *UiNode
	n.Walk(func(c *UiNode) bool {
		if found != nil {
			return false
		}
		if c.Address == address {
			found = c
			return false
		}
		return true
	})
	return found
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *UiNode) Count() int {
	count := 0
	n.Walk(func(*UiNode) bool {
		count++
		return true
	})
	return count
}
