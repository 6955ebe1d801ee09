package model

import (
	"crypto/sha256"
	"fmt"
	"strconv"
)

// NodeChange is a matched node whose mutable properties differ between two
// snapshots.
type NodeChange struct {
	Address string               `yaml:"nodeId"  json:"nodeId"`
	Text    string               `yaml:"text,omitempty" json:"text,omitempty"`
	Changes map[string][2]string `yaml:"changes" json:"changes"`
}

// SnapshotDiff is the result of comparing two flattened snapshots.
type SnapshotDiff struct {
	Added          []FlatNode   `yaml:"added,omitempty"   json:"added,omitempty"`
	Removed        []FlatNode   `yaml:"removed,omitempty" json:"removed,omitempty"`
	Changed        []NodeChange `yaml:"changed,omitempty" json:"changed,omitempty"`
	UnchangedCount int          `yaml:"unchangedCount"    json:"unchangedCount"`
}

// NodeHash computes an identity for a node from its content and class
// path. Addresses are not part of it: inserting a sibling shifts addresses
// but should not make every later node look new.
func NodeHash(n FlatNode) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s", n.ClassName, n.Text, n.AccessibilityLabel, n.Path)
	return fmt.Sprintf("%x", h.Sum(nil))[:16]
}

// DiffSnapshots compares two flattened snapshots, matching nodes by
// NodeHash. Identical nodes are paired in traversal order.
func DiffSnapshots(prev, curr []FlatNode) SnapshotDiff {
	prevByKey := keyed(prev)
	currByKey := keyed(curr)

	var diff SnapshotDiff
	for _, key := range currByKey.order {
		n := currByKey.nodes[key]
		p, existed := prevByKey.nodes[key]
		if !existed {
			diff.Added = append(diff.Added, n)
			continue
		}
		if changes := diffNodeProperties(p, n); changes != nil {
			diff.Changed = append(diff.Changed, NodeChange{Address: n.Address, Text: n.Text, Changes: changes})
		} else {
			diff.UnchangedCount++
		}
	}
	for _, key := range prevByKey.order {
		if _, exists := currByKey.nodes[key]; !exists {
			diff.Removed = append(diff.Removed, prevByKey.nodes[key])
		}
	}
	return diff
}

type keyedNodes struct {
	order []string
	nodes map[string]FlatNode
}

// keyed indexes nodes by hash plus occurrence count so repeated identical
// rows (list items with the same text) stay distinct.
func keyed(nodes []FlatNode) keyedNodes {
	k := keyedNodes{nodes: make(map[string]FlatNode, len(nodes))}
	seen := make(map[string]int, len(nodes))
	for _, n := range nodes {
		h := NodeHash(n)
		key := h + "#" + strconv.Itoa(seen[h])
		seen[h]++
		k.order = append(k.order, key)
		k.nodes[key] = n
	}
	return k
}

// diffNodeProperties compares the properties not covered by NodeHash.
func diffNodeProperties(prev, curr FlatNode) map[string][2]string {
	diffs := make(map[string][2]string)

	if prev.Address != curr.Address {
		diffs["nodeId"] = [2]string{prev.Address, curr.Address}
	}
	if prev.Bounds != curr.Bounds {
		diffs["bounds"] = [2]string{
			fmt.Sprintf("%v", prev.Bounds),
			fmt.Sprintf("%v", curr.Bounds),
		}
	}
	if prev.Clickable != curr.Clickable {
		diffs["clickable"] = [2]string{strconv.FormatBool(prev.Clickable), strconv.FormatBool(curr.Clickable)}
	}
	if prev.Scrollable != curr.Scrollable {
		diffs["scrollable"] = [2]string{strconv.FormatBool(prev.Scrollable), strconv.FormatBool(curr.Scrollable)}
	}

	if len(diffs) == 0 {
		return nil
	}
	return diffs
}
