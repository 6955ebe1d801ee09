// Package client calls a running agent's command server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/clawd-xsl/android-remote/internal/model"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 10 * time.Second

// Error is a non-2xx response, or a 200 response carrying an error body.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("agent returned %d: %s", e.Status, e.Message)
}

// Client talks to one agent.
type Client struct {
	base *url.URL
	http *http.Client
}

// New creates a client for addr, which is host:port or a full URL.
func New(addr string, httpClient *http.Client) (*Client, error) {
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	base, err := url.Parse(addr)
	if err != nil {
		return nil, fmt.Errorf("parse agent address: %w", err)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("agent address %q has no host", addr)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{base: base, http: httpClient}, nil
}

// Addr returns the agent's base URL.
func (c *Client) Addr() string { return c.base.String() }

// UIOptions mirror the /ui query parameters.
type UIOptions struct {
	Text  string
	Roles []string
}

// UI fetches the accessibility tree. A nil tree with a nil error means
// the text filter matched nothing.
func (c *Client) UI(ctx context.Context, opts UIOptions) (*model.UiNode, error) {
	q := url.Values{}
	if opts.Text != "" {
		q.Set("text", opts.Text)
	}
	data, err := c.get(ctx, "/ui", q)
	if err != nil {
		return nil, err
	}
	if msg := errorBody(data); msg != "" {
		if msg == "no matching nodes" {
			return nil, nil
		}
		return nil, &Error{Status: http.StatusOK, Message: msg}
	}
	var root model.UiNode
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode ui: %w", err)
	}
	return &root, nil
}

// UIFlat fetches the flattened tree, optionally filtered by roles.
func (c *Client) UIFlat(ctx context.Context, opts UIOptions) ([]model.FlatNode, error) {
	q := url.Values{"flat": {"true"}}
	if opts.Text != "" {
		q.Set("text", opts.Text)
	}
	if len(opts.Roles) > 0 {
		q.Set("roles", strings.Join(opts.Roles, ","))
	}
	data, err := c.get(ctx, "/ui", q)
	if err != nil {
		return nil, err
	}
	if msg := errorBody(data); msg != "" {
		return nil, &Error{Status: http.StatusOK, Message: msg}
	}
	var flat []model.FlatNode
	if err := json.Unmarshal(data, &flat); err != nil {
		return nil, fmt.Errorf("decode ui: %w", err)
	}
	return flat, nil
}

// UIDiff fetches what changed since the agent's previous snapshot.
func (c *Client) UIDiff(ctx context.Context) (model.SnapshotDiff, error) {
	var diff model.SnapshotDiff
	data, err := c.get(ctx, "/ui", url.Values{"diff": {"true"}})
	if err != nil {
		return diff, err
	}
	if msg := errorBody(data); msg != "" {
		return diff, &Error{Status: http.StatusOK, Message: msg}
	}
	if err := json.Unmarshal(data, &diff); err != nil {
		return diff, fmt.Errorf("decode diff: %w", err)
	}
	return diff, nil
}

// ScreenOptions mirror the /screen query parameters.
type ScreenOptions struct {
	Format   string
	Quality  int
	Scale    float64
	Annotate bool
}

// Screen returns the encoded image and its content type.
func (c *Client) Screen(ctx context.Context, opts ScreenOptions) ([]byte, string, error) {
	q := url.Values{}
	if opts.Format != "" {
		q.Set("format", opts.Format)
	}
	if opts.Quality > 0 {
		q.Set("quality", strconv.Itoa(opts.Quality))
	}
	if opts.Scale > 0 {
		q.Set("scale", strconv.FormatFloat(opts.Scale, 'f', -1, 64))
	}
	if opts.Annotate {
		q.Set("annotate", "true")
	}
	resp, err := c.do(ctx, http.MethodGet, "/screen", q, nil)
	if err != nil {
		return nil, "", err
	}
	return resp.body, resp.contentType, nil
}

func (c *Client) Tap(ctx context.Context, req model.TapRequest) (bool, error) {
	return c.action(ctx, "/tap", req)
}

func (c *Client) Swipe(ctx context.Context, req model.SwipeRequest) (bool, error) {
	return c.action(ctx, "/swipe", req)
}

func (c *Client) Input(ctx context.Context, req model.InputRequest) (bool, error) {
	return c.action(ctx, "/input", req)
}

func (c *Client) Key(ctx context.Context, req model.KeyRequest) (bool, error) {
	return c.action(ctx, "/key", req)
}

func (c *Client) Launch(ctx context.Context, req model.LaunchRequest) (bool, error) {
	return c.action(ctx, "/launch", req)
}

// Notify posts a notification and returns its id.
func (c *Client) Notify(ctx context.Context, req model.NotificationRequest) (string, error) {
	var res model.ActionResult
	if err := c.postJSON(ctx, "/notification", req, &res); err != nil {
		return "", err
	}
	return res.ID, nil
}

func (c *Client) Info(ctx context.Context) (model.DeviceInfo, error) {
	var info model.DeviceInfo
	err := c.getJSON(ctx, "/info", &info)
	return info, err
}

// Do runs a batch on the agent.
func (c *Client) Do(ctx context.Context, req model.DoRequest) (model.DoResult, error) {
	var res model.DoResult
	err := c.postJSON(ctx, "/do", req, &res)
	return res, err
}

func (c *Client) CaptureStatus(ctx context.Context) (model.CaptureStatus, error) {
	var st model.CaptureStatus
	err := c.getJSON(ctx, "/capture", &st)
	return st, err
}

func (c *Client) GrantCapture(ctx context.Context, req model.GrantRequest) (model.CaptureStatus, error) {
	var st model.CaptureStatus
	err := c.postJSON(ctx, "/capture/grant", req, &st)
	return st, err
}

func (c *Client) RevokeCapture(ctx context.Context) error {
	_, err := c.action(ctx, "/capture/revoke", struct{}{})
	return err
}

func (c *Client) action(ctx context.Context, path string, body any) (bool, error) {
	var res model.ActionResult
	if err := c.postJSON(ctx, path, body, &res); err != nil {
		return false, err
	}
	return res.Success, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	data, err := c.get(ctx, path, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	resp, err := c.do(ctx, http.MethodPost, path, nil, payload)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, path, q, nil)
	if err != nil {
		return nil, err
	}
	return resp.body, nil
}

type response struct {
	body        []byte
	contentType string
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body []byte) (*response, error) {
	u := c.base.JoinPath(path)
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := errorBody(data)
		if msg == "" {
			msg = strings.TrimSpace(string(data))
		}
		return nil, &Error{Status: resp.StatusCode, Message: msg}
	}
	return &response{body: data, contentType: resp.Header.Get("Content-Type")}, nil
}

// errorBody returns the message of an {"error": ...} body, or "".
func errorBody(data []byte) string {
	var e model.ErrorResult
	if len(data) == 0 || data[0] != '{' {
		return ""
	}
	if err := json.Unmarshal(data, &e); err != nil {
		return ""
	}
	return e.Error
}

// IsStatus reports whether err is an agent error with the given status.
func IsStatus(err error, status int) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == status
}
