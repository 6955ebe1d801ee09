package uitree

import (
	"strconv"

	"github.com/clawd-xsl/android-remote/internal/model"
	"github.com/clawd-xsl/android-remote/internal/platform"
)

// RootAddress is the address of the root of every snapshot.
const RootAddress = "0"

// Builder walks the active window into a model.UiNode tree and republishes
// the AddressCache as a side effect.
type Builder struct {
	source platform.TreeSource
	cache  *AddressCache
}

// NewBuilder creates a Builder reading from source and writing to cache.
func NewBuilder(source platform.TreeSource, cache *AddressCache) *Builder {
	return &Builder{source: source, cache: cache}
}

// Build returns a snapshot of the active window, or nil when no window is
// active. Either way the cache afterwards holds exactly the addresses of
// this call's result, so a tap against an older address misses.
func (b *Builder) Build() *model.UiNode {
	rects := make(map[string]model.Rect)
	root := b.source.RootInActiveWindow()
	if root == nil {
		b.cache.publish(rects)
		return nil
	}
	snapshot := buildNode(root, RootAddress, rects)
	b.cache.publish(rects)
	return &snapshot
}

// buildNode visits n depth-first. A child's address is its parent's address
// plus its platform child index, so a child that vanished mid-walk leaves a
// gap instead of shifting its later siblings onto other nodes.
func buildNode(n platform.Node, address string, rects map[string]model.Rect) model.UiNode {
	bounds := n.BoundsInScreen()
	rects[address] = bounds

	count := n.ChildCount()
	children := make([]model.UiNode, 0, count)
	for i := 0; i < count; i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		children = append(children, buildNode(child, address+"."+strconv.Itoa(i), rects))
	}

	return model.UiNode{
		Address:            address,
		Text:               n.Text(),
		AccessibilityLabel: n.ContentDescription(),
		ClassName:          n.ClassName(),
		Bounds:             bounds,
		Clickable:          n.Clickable(),
		Scrollable:         n.Scrollable(),
		Children:           children,
	}
}
