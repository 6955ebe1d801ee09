package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/clawd-xsl/android-remote/internal/agent"
	"github.com/clawd-xsl/android-remote/internal/capture"
	"github.com/clawd-xsl/android-remote/internal/model"
)

const maxBodyBytes = 1 << 20

func (s *Server) routes() *Router {
	r := NewRouter()
	r.Handle(http.MethodGet, "/screen", s.handleScreen)
	r.Handle(http.MethodGet, "/ui", s.handleUI)
	r.Handle(http.MethodPost, "/tap", s.handleTap)
	r.Handle(http.MethodPost, "/swipe", s.handleSwipe)
	r.Handle(http.MethodPost, "/input", s.handleInput)
	r.Handle(http.MethodPost, "/key", s.handleKey)
	r.Handle(http.MethodPost, "/launch", s.handleLaunch)
	r.Handle(http.MethodPost, "/notification", s.handleNotification)
	r.Handle(http.MethodGet, "/info", s.handleInfo)
	r.Handle(http.MethodPost, "/do", s.handleDo)
	r.Handle(http.MethodGet, "/capture", s.handleCaptureStatus)
	r.Handle(http.MethodPost, "/capture/grant", s.handleCaptureGrant)
	r.Handle(http.MethodPost, "/capture/revoke", s.handleCaptureRevoke)
	return r
}

func (s *Server) handleScreen(w http.ResponseWriter, req *http.Request) {
	opts, err := screenOptions(req.URL.Query())
	if err != nil {
		writeAgentError(w, err)
		return
	}
	data, err := s.agent.Screen(opts)
	if err != nil {
		if errors.Is(err, agent.ErrCaptureTimeout) || errors.Is(err, agent.ErrCaptureFailed) {
			writeError(w, http.StatusInternalServerError, "screen capture failed: "+err.Error())
			return
		}
		writeAgentError(w, err)
		return
	}
	format := opts.Format
	if format == "" {
		format = capture.FormatPNG
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func screenOptions(q url.Values) (agent.ScreenOptions, error) {
	var opts agent.ScreenOptions
	format, err := capture.ParseFormat(q.Get("format"))
	if err != nil {
		return opts, &agent.ValidationError{Field: "format", Message: err.Error()}
	}
	opts.Format = format

	if v := q.Get("quality"); v != "" {
		quality, err := strconv.Atoi(v)
		if err != nil || quality < 1 || quality > 100 {
			return opts, &agent.ValidationError{Field: "quality", Message: "quality must be an integer from 1 to 100"}
		}
		opts.Quality = quality
	}
	if v := q.Get("scale"); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil || scale < 0.1 || scale > 1.0 {
			return opts, &agent.ValidationError{Field: "scale", Message: "scale must be between 0.1 and 1.0"}
		}
		opts.Scale = scale
	}
	opts.Annotate = parseBool(q.Get("annotate"))
	return opts, nil
}

func (s *Server) handleUI(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	if parseBool(q.Get("diff")) {
		diff, err := s.agent.UIDiff()
		if err != nil {
			s.writeUIError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, diff)
		return
	}

	root, err := s.agent.UI()
	if err != nil {
		s.writeUIError(w, err)
		return
	}

	if text := q.Get("text"); text != "" {
		root = model.FilterByText(root, text)
	}
	if parseBool(q.Get("flat")) {
		flat := model.FilterByRoles(model.Flatten(root), splitList(q.Get("roles")))
		if flat == nil {
			flat = []model.FlatNode{}
		}
		writeJSON(w, http.StatusOK, flat)
		return
	}
	if root == nil {
		writeError(w, http.StatusOK, "no matching nodes")
		return
	}
	writeJSON(w, http.StatusOK, root)
}

// writeUIError reports a missing window as a 200 body so callers can tell
// it apart from the service being unavailable.
func (s *Server) writeUIError(w http.ResponseWriter, err error) {
	if errors.Is(err, agent.ErrNoActiveWindow) {
		writeError(w, http.StatusOK, err.Error())
		return
	}
	writeAgentError(w, err)
}

func (s *Server) handleTap(w http.ResponseWriter, req *http.Request) {
	var body model.TapRequest
	if err := decodeBody(req, &body); err != nil {
		writeAgentError(w, err)
		return
	}
	ok, err := s.agent.Tap(body)
	if errors.Is(err, agent.ErrStaleAddress) {
		writeSuccess(w, false)
		return
	}
	s.writeAction(w, ok, err)
}

func (s *Server) handleSwipe(w http.ResponseWriter, req *http.Request) {
	var body model.SwipeRequest
	if err := decodeBody(req, &body); err != nil {
		writeAgentError(w, err)
		return
	}
	ok, err := s.agent.Swipe(body)
	s.writeAction(w, ok, err)
}

func (s *Server) handleInput(w http.ResponseWriter, req *http.Request) {
	var body model.InputRequest
	if err := decodeBody(req, &body); err != nil {
		writeAgentError(w, err)
		return
	}
	ok, err := s.agent.Input(body)
	s.writeAction(w, ok, err)
}

func (s *Server) handleKey(w http.ResponseWriter, req *http.Request) {
	var body model.KeyRequest
	if err := decodeBody(req, &body); err != nil {
		writeAgentError(w, err)
		return
	}
	ok, err := s.agent.Key(body)
	s.writeAction(w, ok, err)
}

func (s *Server) handleLaunch(w http.ResponseWriter, req *http.Request) {
	var body model.LaunchRequest
	if err := decodeBody(req, &body); err != nil {
		writeAgentError(w, err)
		return
	}
	ok, err := s.agent.Launch(body)
	s.writeAction(w, ok, err)
}

func (s *Server) handleNotification(w http.ResponseWriter, req *http.Request) {
	var body model.NotificationRequest
	if err := decodeBody(req, &body); err != nil {
		writeAgentError(w, err)
		return
	}
	id, err := s.agent.Notify(body)
	if err != nil {
		writeAgentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.ActionResult{Success: true, ID: id})
}

func (s *Server) handleInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.agent.Info())
}

func (s *Server) handleDo(w http.ResponseWriter, req *http.Request) {
	var body model.DoRequest
	if err := decodeBody(req, &body); err != nil {
		writeAgentError(w, err)
		return
	}
	if len(body.Steps) == 0 {
		writeAgentError(w, missing("steps"))
		return
	}
	writeJSON(w, http.StatusOK, s.agent.Do(body))
}

func (s *Server) handleCaptureStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.agent.CaptureStatus())
}

func (s *Server) handleCaptureGrant(w http.ResponseWriter, req *http.Request) {
	var body model.GrantRequest
	if err := decodeBody(req, &body); err != nil {
		writeAgentError(w, err)
		return
	}
	if err := s.agent.GrantCapture(body); err != nil {
		writeAgentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.agent.CaptureStatus())
}

func (s *Server) handleCaptureRevoke(w http.ResponseWriter, _ *http.Request) {
	if err := s.agent.RevokeCapture(); err != nil {
		writeAgentError(w, err)
		return
	}
	writeSuccess(w, true)
}

func (s *Server) writeAction(w http.ResponseWriter, ok bool, err error) {
	if err != nil {
		writeAgentError(w, err)
		return
	}
	writeSuccess(w, ok)
}

// decodeBody reads a JSON request body into v. An empty body decodes as {}
// so that missing fields surface as validation errors naming the field.
func decodeBody(req *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(req.Body, maxBodyBytes))
	if err != nil {
		return &agent.ValidationError{Field: "body", Message: "read body: " + err.Error()}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return &agent.ValidationError{
				Field:   typeErr.Field,
				Message: fmt.Sprintf("invalid '%s' parameter: expected %s", typeErr.Field, typeErr.Type),
			}
		}
		return &agent.ValidationError{Field: "body", Message: "invalid JSON body: " + err.Error()}
	}
	return nil
}

func missing(field string) error { return &agent.ValidationError{Field: field} }

func parseBool(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
