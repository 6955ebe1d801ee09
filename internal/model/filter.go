package model

import "strings"

// FilterByText returns a copy of the tree pruned to nodes whose text or
// accessibility label contains text (case-insensitive), keeping the
// ancestors of every match so addresses still read as paths. It returns nil
// when nothing matches. Addresses are never rewritten.
func FilterByText(root *UiNode, text string) *UiNode {
	if root == nil {
		return nil
	}
	if text == "" {
		return root
	}
	return filterRecursive(*root, strings.ToLower(text))
}

func filterRecursive(n UiNode, textLower string) *UiNode {
	var kept []UiNode
	for _, child := range n.Children {
		if f := filterRecursive(child, textLower); f != nil {
			kept = append(kept, *f)
		}
	}
	if !textMatchesNode(n, textLower) && len(kept) == 0 {
		return nil
	}
	if kept == nil {
		kept = []UiNode{}
	}
	n.Children = kept
	return &n
}

func textMatchesNode(n UiNode, textLower string) bool {
	return strings.Contains(strings.ToLower(n.Text), textLower) ||
		strings.Contains(strings.ToLower(n.AccessibilityLabel), textLower)
}

// FilterByRoles keeps the flattened nodes whose role is in roles. Meta-roles
// such as "interactive" are expanded first. An empty list keeps everything.
func FilterByRoles(nodes []FlatNode, roles []string) []FlatNode {
	if len(roles) == 0 {
		return nodes
	}
	want := make(map[string]bool)
	for _, r := range ExpandRoles(roles) {
		want[strings.ToLower(strings.TrimSpace(r))] = true
	}
	var kept []FlatNode
	for _, n := range nodes {
		if want[n.Role] {
			kept = append(kept, n)
		}
	}
	return kept
}
