package virtual

import (
	"github.com/clawd-xsl/android-remote/internal/model"
	"github.com/clawd-xsl/android-remote/internal/platform"
)

// node is a live view of a NodeSpec. Reads go through the device lock so
// text edits are observed by later reads.
type node struct {
	d    *Device
	spec *NodeSpec
}

func (n node) Text() string {
	n.d.mu.RLock()
	defer n.d.mu.RUnlock()
	return n.spec.Text
}

func (n node) ContentDescription() string {
	n.d.mu.RLock()
	defer n.d.mu.RUnlock()
	return n.spec.Description
}

func (n node) ClassName() string { return n.spec.Class }

func (n node) BoundsInScreen() model.Rect { return n.spec.rect() }

func (n node) Clickable() bool { return n.spec.Clickable }

func (n node) Scrollable() bool { return n.spec.Scrollable }

func (n node) ChildCount() int { return len(n.spec.Children) }

func (n node) Child(i int) platform.Node {
	if i < 0 || i >= len(n.spec.Children) {
		return nil
	}
	c := n.spec.Children[i]
	if c == nil || c.Gone {
		return nil
	}
	return node{d: n.d, spec: c}
}
