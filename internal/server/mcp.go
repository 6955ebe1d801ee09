package server

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"

	"github.com/clawd-xsl/android-remote/internal/agent"
	"github.com/clawd-xsl/android-remote/internal/capture"
	"github.com/clawd-xsl/android-remote/internal/model"
	"github.com/clawd-xsl/android-remote/internal/version"
)

// MCP transports.
const (
	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable-http"
)

// MCPConfig holds MCP server configuration.
type MCPConfig struct {
	Transport string
	Port      int
}

// MCP exposes the agent as Model Context Protocol tools.
type MCP struct {
	agent  *agent.Agent
	logger *slog.Logger
	mcp    *mcpserver.MCPServer
}

// NewMCP creates an MCP server with every agent operation registered as a
// tool.
func NewMCP(a *agent.Agent, logger *slog.Logger) *MCP {
	if logger == nil {
		logger = slog.Default()
	}
	s := &MCP{
		agent:  a,
		logger: logger,
		mcp:    mcpserver.NewMCPServer("android-remote", version.Version),
	}
	s.registerTools()
	return s
}

// Serve runs the MCP server on the configured transport until it fails or
// stdin closes.
func (s *MCP) Serve(cfg MCPConfig) error {
	switch cfg.Transport {
	case TransportStdio, "":
		return mcpserver.ServeStdio(s.mcp)
	case TransportStreamableHTTP:
		s.logger.Info("mcp server listening", "port", cfg.Port)
		return mcpserver.NewStreamableHTTPServer(s.mcp).Start(fmt.Sprintf(":%d", cfg.Port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

func (s *MCP) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool("ui",
			mcp.WithDescription("Read the accessibility tree of the active window. Node addresses in the result can be passed to tap as nodeId until the next read."),
			mcp.WithString("text", mcp.Description("Keep only nodes whose text or description contains this")),
			mcp.WithBoolean("flat", mcp.Description("Return a flat list instead of a tree")),
			mcp.WithString("roles", mcp.Description("Comma-separated roles to keep in flat mode (e.g. 'btn,input' or 'interactive')")),
			mcp.WithBoolean("diff", mcp.Description("Return only what changed since the previous read")),
		),
		s.handleUI,
	)

	s.mcp.AddTool(
		mcp.NewTool("tap",
			mcp.WithDescription("Tap a node by address, a node by text, or a screen point (in that order of precedence)"),
			mcp.WithString("nodeId", mcp.Description("Node address from the latest ui read")),
			mcp.WithString("text", mcp.Description("Find the node by text or description and tap it")),
			mcp.WithNumber("x", mcp.Description("X coordinate in pixels")),
			mcp.WithNumber("y", mcp.Description("Y coordinate in pixels")),
		),
		s.handleTap,
	)

	s.mcp.AddTool(
		mcp.NewTool("swipe",
			mcp.WithDescription("Swipe in a straight line between two points"),
			mcp.WithNumber("x1", mcp.Description("Start X"), mcp.Required()),
			mcp.WithNumber("y1", mcp.Description("Start Y"), mcp.Required()),
			mcp.WithNumber("x2", mcp.Description("End X"), mcp.Required()),
			mcp.WithNumber("y2", mcp.Description("End Y"), mcp.Required()),
			mcp.WithNumber("durationMs", mcp.Description("Stroke duration in ms (default: 300, min: 50)")),
		),
		s.handleSwipe,
	)

	s.mcp.AddTool(
		mcp.NewTool("input",
			mcp.WithDescription("Replace the text of the focused input field"),
			mcp.WithString("text", mcp.Description("Text to set"), mcp.Required()),
		),
		s.handleInput,
	)

	s.mcp.AddTool(
		mcp.NewTool("key",
			mcp.WithDescription("Perform a global navigation action: HOME, BACK, RECENTS, NOTIFICATIONS, QUICK_SETTINGS"),
			mcp.WithString("keyCode", mcp.Description("Action name"), mcp.Required()),
		),
		s.handleKey,
	)

	s.mcp.AddTool(
		mcp.NewTool("launch",
			mcp.WithDescription("Launch an installed app by package name"),
			mcp.WithString("packageName", mcp.Description("Package name (e.g. 'com.android.settings')"), mcp.Required()),
		),
		s.handleLaunch,
	)

	s.mcp.AddTool(
		mcp.NewTool("notify",
			mcp.WithDescription("Post a local notification on the device"),
			mcp.WithString("title", mcp.Description("Notification title"), mcp.Required()),
			mcp.WithString("body", mcp.Description("Notification body"), mcp.Required()),
		),
		s.handleNotify,
	)

	s.mcp.AddTool(
		mcp.NewTool("screenshot",
			mcp.WithDescription("Capture the device screen. Requires an active screen capture grant."),
			mcp.WithString("format", mcp.Description("Image format: png, jpg (default: png)")),
			mcp.WithNumber("quality", mcp.Description("JPEG quality 1-100 (default: 80)")),
			mcp.WithNumber("scale", mcp.Description("Scale factor 0.1-1.0 (default: 1.0)")),
			mcp.WithBoolean("annotate", mcp.Description("Draw node addresses and bounds from the latest ui read")),
		),
		s.handleScreenshot,
	)

	s.mcp.AddTool(
		mcp.NewTool("info",
			mcp.WithDescription("Device model, Android version, battery and network address"),
		),
		s.handleInfo,
	)

	s.mcp.AddTool(
		mcp.NewTool("capture_status",
			mcp.WithDescription("Report whether a screen capture session is active"),
		),
		s.handleCaptureStatus,
	)

	s.mcp.AddTool(
		mcp.NewTool("do",
			mcp.WithDescription("Execute multiple actions in a batch. Steps execute sequentially. Supports: tap, swipe, input, key, launch, notify, ui, sleep"),
			mcp.WithArray("steps", mcp.Description("Array of step objects, each with exactly one action key (e.g. {\"tap\": {\"text\": \"Wi-Fi\"}})"), mcp.Required()),
			mcp.WithBoolean("stop-on-error", mcp.Description("Stop on first error (default: true)")),
		),
		s.handleDo,
	)
}

// toText serializes v to YAML for an MCP response.
func toText(v any) string {
	b, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

func actionResult(ok bool, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(toText(model.ActionResult{Success: ok})), nil
}

func (s *MCP) handleUI(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()

	if agent.BoolParam(params, "diff", false) {
		diff, err := s.agent.UIDiff()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(toText(diff)), nil
	}

	root, err := s.agent.UI()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if text := agent.StringParam(params, "text", ""); text != "" {
		root = model.FilterByText(root, text)
	}
	if agent.BoolParam(params, "flat", false) {
		roles := splitList(agent.StringParam(params, "roles", ""))
		return mcp.NewToolResultText(toText(model.FilterByRoles(model.Flatten(root), roles))), nil
	}
	if root == nil {
		return mcp.NewToolResultText("no matching nodes"), nil
	}
	return mcp.NewToolResultText(toText(root)), nil
}

func (s *MCP) handleTap(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	ok, err := s.agent.Tap(model.TapRequest{
		X:      agent.FloatParam(params, "x"),
		Y:      agent.FloatParam(params, "y"),
		NodeID: agent.StringPtrParam(params, "nodeId"),
		Text:   agent.StringPtrParam(params, "text"),
	})
	return actionResult(ok, err)
}

func (s *MCP) handleSwipe(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	req := model.SwipeRequest{
		X1: agent.FloatParam(params, "x1"),
		Y1: agent.FloatParam(params, "y1"),
		X2: agent.FloatParam(params, "x2"),
		Y2: agent.FloatParam(params, "y2"),
	}
	req.DurationMs = agent.Int64Param(params, "durationMs")
	ok, err := s.agent.Swipe(req)
	return actionResult(ok, err)
}

func (s *MCP) handleInput(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ok, err := s.agent.Input(model.InputRequest{Text: agent.StringPtrParam(request.GetArguments(), "text")})
	return actionResult(ok, err)
}

func (s *MCP) handleKey(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	ok, err := s.agent.Key(model.KeyRequest{
		KeyCode: agent.StringPtrParam(params, "keyCode"),
		Key:     agent.StringPtrParam(params, "key"),
	})
	return actionResult(ok, err)
}

func (s *MCP) handleLaunch(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ok, err := s.agent.Launch(model.LaunchRequest{PackageName: agent.StringPtrParam(request.GetArguments(), "packageName")})
	return actionResult(ok, err)
}

func (s *MCP) handleNotify(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	id, err := s.agent.Notify(model.NotificationRequest{
		Title: agent.StringPtrParam(params, "title"),
		Body:  agent.StringPtrParam(params, "body"),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(toText(model.ActionResult{Success: true, ID: id})), nil
}

func (s *MCP) handleScreenshot(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	format, err := capture.ParseFormat(agent.StringParam(params, "format", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opts := agent.ScreenOptions{
		EncodeOptions: capture.EncodeOptions{
			Format:  format,
			Quality: agent.IntParam(params, "quality", 0),
		},
		Annotate: agent.BoolParam(params, "annotate", false),
	}
	if scale := agent.FloatParam(params, "scale"); scale != nil {
		if *scale < 0.1 || *scale > 1.0 {
			return mcp.NewToolResultError("scale must be between 0.1 and 1.0"), nil
		}
		opts.Scale = *scale
	}

	data, err := s.agent.Screen(opts)
	if err != nil {
		if errors.Is(err, agent.ErrCaptureTimeout) || errors.Is(err, agent.ErrCaptureFailed) {
			return mcp.NewToolResultError("screen capture failed: " + err.Error()), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.ImageContent{
				Type:     "image",
				Data:     base64.StdEncoding.EncodeToString(data),
				MIMEType: format.ContentType(),
			},
		},
	}, nil
}

func (s *MCP) handleInfo(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(toText(s.agent.Info())), nil
}

func (s *MCP) handleCaptureStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(toText(s.agent.CaptureStatus())), nil
}

func (s *MCP) handleDo(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	stopOnError := agent.BoolParam(params, "stop-on-error", true)

	steps, err := parseSteps(params["steps"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := s.agent.Do(model.DoRequest{Steps: steps, StopOnError: &stopOnError})
	if !result.OK {
		return mcp.NewToolResultError(toText(result)), nil
	}
	return mcp.NewToolResultText(toText(result)), nil
}

// parseSteps converts the loosely typed steps argument into batch steps.
func parseSteps(raw any) ([]model.Step, error) {
	if raw == nil {
		return nil, errors.New("steps parameter is required")
	}
	arr, ok := raw.([]any)
	if !ok {
		return nil, errors.New("steps must be an array")
	}
	steps := make([]model.Step, 0, len(arr))
	for _, item := range arr {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, errors.New("each step must be an object")
		}
		step := make(model.Step, len(m))
		for action, p := range m {
			switch p := p.(type) {
			case map[string]any:
				step[action] = p
			case nil:
				step[action] = map[string]any{}
			default:
				return nil, fmt.Errorf("parameters of step %q must be an object", action)
			}
		}
		steps = append(steps, step)
	}
	return steps, nil
}
