package model

import "strings"

// FindByText returns the most specific nodes whose text or accessibility
// label matches text (case-insensitive): a node is reported only when none
// of its descendants also match. With exact, the whole field must match.
func FindByText(root *UiNode, text string, exact bool) []*UiNode {
	if root == nil || text == "" {
		return nil
	}
	return collectLeafMatches(root, strings.ToLower(text), exact)
}

func collectLeafMatches(n *UiNode, textLower string, exact bool) []*UiNode {
	var childMatches []*UiNode
	for i := range n.Children {
		childMatches = append(childMatches, collectLeafMatches(&n.Children[i], textLower, exact)...)
	}
	if len(childMatches) > 0 {
		return childMatches
	}
	if nodeMatches(n, textLower, exact) {
		return []*UiNode{n}
	}
	return nil
}

func nodeMatches(n *UiNode, textLower string, exact bool) bool {
	if exact {
		return strings.EqualFold(n.Text, textLower) || strings.EqualFold(n.AccessibilityLabel, textLower)
	}
	return strings.Contains(strings.ToLower(n.Text), textLower) ||
		strings.Contains(strings.ToLower(n.AccessibilityLabel), textLower)
}

// PreferClickable narrows matches to clickable nodes when the set mixes
// clickable and static ones. Otherwise it returns matches unchanged.
func PreferClickable(matches []*UiNode) []*UiNode {
	var clickable []*UiNode
	for _, m := range matches {
		if m.Clickable {
			clickable = append(clickable, m)
		}
	}
	if len(clickable) > 0 && len(clickable) < len(matches) {
		return clickable
	}
	return matches
}
