package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/clawd-xsl/android-remote/internal/agent"
	"github.com/clawd-xsl/android-remote/internal/model"
	"github.com/clawd-xsl/android-remote/internal/session"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return
	}

	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, model.ErrorResult{Error: message})
}

func writeSuccess(w http.ResponseWriter, ok bool) {
	writeJSON(w, http.StatusOK, model.ActionResult{Success: ok})
}

// statusFor maps an agent error to its HTTP status.
func statusFor(err error) int {
	var verr *agent.ValidationError
	var lost *agent.SessionLostError
	switch {
	case errors.As(err, &verr),
		errors.As(err, &lost),
		errors.Is(err, agent.ErrAutomationUnavailable),
		errors.Is(err, agent.ErrNotGranted),
		errors.Is(err, agent.ErrNoMatch),
		errors.Is(err, agent.ErrAmbiguousMatch),
		errors.Is(err, agent.ErrNoActiveWindow),
		errors.Is(err, session.ErrInvalidGrant),
		errors.Is(err, session.ErrReuseNotPermitted):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeAgentError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}
