package model

// FlatNode is a node with a class-name breadcrumb instead of children.
type FlatNode struct {
	Address            string `yaml:"nodeId"                       json:"nodeId"`
	Text               string `yaml:"text,omitempty"               json:"text,omitempty"`
	AccessibilityLabel string `yaml:"contentDescription,omitempty" json:"contentDescription,omitempty"`
	ClassName          string `yaml:"className,omitempty"          json:"className,omitempty"`
	Role               string `yaml:"role"                         json:"role"`
	Bounds             Rect   `yaml:"bounds"                       json:"bounds"`
	Clickable          bool   `yaml:"clickable"                    json:"clickable"`
	Scrollable         bool   `yaml:"scrollable"                   json:"scrollable"`
	Path               string `yaml:"path,omitempty"               json:"path,omitempty"`
}

// Flatten converts a snapshot tree into a depth-first list. Each entry's
// Path joins the short class names of its ancestors and itself with " > ".
func Flatten(root *UiNode) []FlatNode {
	if root == nil {
		return nil
	}
	var result []FlatNode
	flattenRecursive(root, "", &result)
	return result
}

func flattenRecursive(n *UiNode, parentPath string, result *[]FlatNode) {
	currentPath := ShortClassName(n.ClassName)
	if parentPath != "" {
		currentPath = parentPath + " > " + currentPath
	}

	*result = append(*result, FlatNode{
		Address:            n.Address,
		Text:               n.Text,
		AccessibilityLabel: n.AccessibilityLabel,
		ClassName:          n.ClassName,
		Role:               MapRole(n.ClassName),
		Bounds:             n.Bounds,
		Clickable:          n.Clickable,
		Scrollable:         n.Scrollable,
		Path:               currentPath,
	})

	for i := range n.Children {
		flattenRecursive(&n.Children[i], currentPath, result)
	}
}

// ShortClassName strips the package qualifier: "android.widget.Button" -> "Button".
func ShortClassName(className string) string {
	for i := len(className) - 1; i >= 0; i-- {
		if className[i] == '.' {
			return className[i+1:]
		}
	}
	if className == "" {
		return "?"
	}
	return className
}
