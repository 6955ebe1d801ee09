package model

// RoleMap maps short widget class names to compact role codes.
var RoleMap = map[string]string{
	"Button":               "btn",
	"ImageButton":          "btn",
	"FloatingActionButton": "btn",
	"TextView":             "txt",
	"ImageView":            "img",
	"EditText":             "input",
	"AutoCompleteTextView": "input",
	"CheckBox":             "chk",
	"Switch":               "toggle",
	"SwitchCompat":         "toggle",
	"ToggleButton":         "toggle",
	"RadioButton":          "radio",
	"SeekBar":              "slider",
	"Spinner":              "menu",
	"TabWidget":            "tab",
	"TabLayout":            "tab",
	"ListView":             "list",
	"RecyclerView":         "list",
	"GridView":             "list",
	"ScrollView":           "scroll",
	"HorizontalScrollView": "scroll",
	"ViewPager":            "scroll",
	"Toolbar":              "toolbar",
	"WebView":              "web",
	"FrameLayout":          "group",
	"LinearLayout":         "group",
	"RelativeLayout":       "group",
	"ConstraintLayout":     "group",
	"ViewGroup":            "group",
}

// MetaRoles maps meta-role names to the concrete roles they expand to.
var MetaRoles = map[string][]string{
	"interactive": {"btn", "input", "chk", "toggle", "radio", "slider", "menu"},
}

// ExpandRoles expands any meta-roles in the given list to their concrete roles.
// Non-meta roles are passed through unchanged. Duplicates are removed.
func ExpandRoles(roles []string) []string {
	seen := make(map[string]bool, len(roles))
	var expanded []string
	for _, r := range roles {
		if concrete, ok := MetaRoles[r]; ok {
			for _, c := range concrete {
				if !seen[c] {
					seen[c] = true
					expanded = append(expanded, c)
				}
			}
		} else if !seen[r] {
			seen[r] = true
			expanded = append(expanded, r)
		}
	}
	return expanded
}

// MapRole converts a fully qualified widget class name to a compact code.
func MapRole(className string) string {
	if short, ok := RoleMap[ShortClassName(className)]; ok {
		return short
	}
	return "other"
}
