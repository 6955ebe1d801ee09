package output

import (
	"github.com/dustin/go-humanize"

	"github.com/clawd-xsl/android-remote/internal/model"
)

// UIResult is the output of the `ui` command.
type UIResult struct {
	Agent string        `yaml:"agent"          json:"agent"`
	Nodes int           `yaml:"nodes"          json:"nodes"`
	Tree  *model.UiNode `yaml:"tree,omitempty" json:"tree,omitempty"`
	Error string        `yaml:"error,omitempty" json:"error,omitempty"`
}

// ScreenshotResult is the output of the `screenshot` command.
type ScreenshotResult struct {
	Path   string `yaml:"path"   json:"path"`
	Format string `yaml:"format" json:"format"`
	Bytes  int    `yaml:"bytes"  json:"bytes"`
	Size   string `yaml:"size"   json:"size"`
}

// NewScreenshotResult describes an image of n bytes written to path.
func NewScreenshotResult(path, format string, n int) ScreenshotResult {
	return ScreenshotResult{Path: path, Format: format, Bytes: n, Size: humanize.Bytes(uint64(n))}
}
