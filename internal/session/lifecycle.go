// Package session owns the capture grant: attaching fresh grants,
// persisting them, restoring after loss or restart, and revoking.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/clawd-xsl/android-remote/internal/model"
	"github.com/clawd-xsl/android-remote/internal/platform"
)

// State is the lifecycle state of the capture session.
type State int

const (
	Unattached State = iota
	Active
	Lost
)

func (s State) String() string {
	switch s {
	case Unattached:
		return "unattached"
	case Active:
		return "active"
	case Lost:
		return "lost"
	default:
		return "unknown"
	}
}

var (
	// ErrNotGranted means no capture session was ever attached, or the
	// grant was revoked.
	ErrNotGranted = errors.New("screen capture not granted")

	// ErrInvalidGrant rejects grants without a result code or token.
	ErrInvalidGrant = errors.New("invalid capture grant")

	// ErrReuseNotPermitted means the platform treats grants as single-use.
	ErrReuseNotPermitted = errors.New("capture grant reuse is not permitted on this platform")
)

// SessionLostError reports that a session existed and the platform ended it.
type SessionLostError struct {
	Reason string
}

func (e *SessionLostError) Error() string {
	return "screen capture session lost: " + e.Reason
}

// Lifecycle is the capture session state machine. Operations are
// serialized; reads of the current state never block on a transition in
// progress for longer than the state swap itself.
type Lifecycle struct {
	projector platform.Projector
	store     Store
	caps      platform.Capabilities
	logger    *slog.Logger

	opMu sync.Mutex // serializes transitions

	mu         sync.Mutex
	state      State
	session    platform.ProjectionSession
	generation uint64
	lostReason string
}

// New creates an Unattached Lifecycle.
func New(projector platform.Projector, store Store, caps platform.Capabilities, logger *slog.Logger) *Lifecycle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Lifecycle{
		projector: projector,
		store:     store,
		caps:      caps,
		logger:    logger,
	}
}

// Attach persists g and replaces whatever session exists with one created
// from it. The previous session is stopped only once g is saved; a failed
// save leaves it running.
func (l *Lifecycle) Attach(g platform.Grant) error {
	if !g.Valid() {
		return ErrInvalidGrant
	}
	l.opMu.Lock()
	defer l.opMu.Unlock()

	if err := l.store.Save(g); err != nil {
		return fmt.Errorf("persist capture grant: %w", err)
	}
	l.detach()
	if err := l.open(g); err != nil {
		l.logger.Warn("capture attach failed", "error", err)
		return err
	}
	l.logger.Info("capture session attached")
	return nil
}

// Restore recreates a session from a previously persisted grant. On
// failure the persisted record is cleared.
func (l *Lifecycle) Restore(g platform.Grant) error {
	if !l.caps.GrantReuse {
		return ErrReuseNotPermitted
	}
	if !g.Valid() {
		return ErrInvalidGrant
	}
	l.opMu.Lock()
	defer l.opMu.Unlock()

	l.detach()
	return l.restore(g)
}

// RestoreOnStart applies the restart policy: restore the persisted grant
// when reuse is permitted, otherwise stay Unattached.
func (l *Lifecycle) RestoreOnStart() error {
	g, ok, err := l.store.Load()
	if err != nil {
		return err
	}
	if !ok {
		l.logger.Info("no persisted capture grant")
		return nil
	}
	if !l.caps.GrantReuse {
		l.logger.Info("persisted capture grant not reusable; waiting for a fresh grant")
		return nil
	}
	return l.Restore(g)
}

// Revoke stops any session and clears the persisted grant.
func (l *Lifecycle) Revoke() error {
	l.opMu.Lock()
	defer l.opMu.Unlock()

	l.detach()
	l.logger.Info("capture grant revoked")
	return l.store.Clear()
}

// Close stops the live session but keeps the persisted grant so the
// next start can restore it.
func (l *Lifecycle) Close() {
	l.opMu.Lock()
	defer l.opMu.Unlock()
	l.detach()
}

// HasActiveSession reports whether a live session is attached.
func (l *Lifecycle) HasActiveSession() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == Active
}

// State returns the current state.
func (l *Lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Session returns the live session, ErrNotGranted, or *SessionLostError.
func (l *Lifecycle) Session() (platform.ProjectionSession, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch l.state {
	case Active:
		return l.session, nil
	case Lost:
		return nil, &SessionLostError{Reason: l.lostReason}
	default:
		return nil, ErrNotGranted
	}
}

// Status describes the session for callers.
func (l *Lifecycle) Status() model.CaptureStatus {
	_, persisted, err := l.store.Load()
	if err != nil {
		l.logger.Warn("read persisted grant", "error", err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	st := model.CaptureStatus{
		State:        l.state.String(),
		Persisted:    persisted,
		ReuseAllowed: l.caps.GrantReuse,
	}
	if l.state == Lost {
		st.LostReason = l.lostReason
	}
	return st
}

// detach stops the current session and moves to Unattached. Bumping the
// generation first makes the old session's onStop a no-op. Caller holds
// opMu.
func (l *Lifecycle) detach() {
	l.mu.Lock()
	old := l.session
	l.generation++
	l.session = nil
	l.state = Unattached
	l.lostReason = ""
	l.mu.Unlock()

	if old != nil {
		old.Stop()
	}
}

// open creates a session from g and makes it Active. On failure the state
// is left untouched. Caller holds opMu.
func (l *Lifecycle) open(g platform.Grant) error {
	l.mu.Lock()
	l.generation++
	gen := l.generation
	l.mu.Unlock()

	s, err := l.projector.Open(g, func(reason string) { l.handleStop(gen, reason) })
	if err != nil {
		return fmt.Errorf("open capture session: %w", err)
	}

	l.mu.Lock()
	l.session = s
	l.state = Active
	l.lostReason = ""
	l.mu.Unlock()
	return nil
}

// restore opens a session from a persisted grant, clearing the record on
// failure. Caller holds opMu.
func (l *Lifecycle) restore(g platform.Grant) error {
	if err := l.open(g); err != nil {
		l.logger.Warn("capture restore failed; clearing persisted grant", "error", err)
		if cerr := l.store.Clear(); cerr != nil {
			l.logger.Warn("clear persisted grant", "error", cerr)
		}
		return err
	}
	l.logger.Info("capture session restored")
	return nil
}

// handleStop processes a platform-reported loss for the session opened at
// generation gen.
func (l *Lifecycle) handleStop(gen uint64, reason string) {
	// A stop arriving right after Open returned waits here until the
	// opener has published the session.
	if !l.sameGeneration(gen) {
		return
	}
	l.opMu.Lock()
	defer l.opMu.Unlock()
	if !l.sameGeneration(gen) || l.State() != Active {
		return
	}

	l.mu.Lock()
	l.session = nil
	l.state = Lost
	l.lostReason = reason
	l.mu.Unlock()
	l.logger.Warn("capture session lost", "reason", reason)

	if !l.caps.GrantReuse {
		return
	}
	g, ok, err := l.store.Load()
	if err != nil || !ok {
		if err != nil {
			l.logger.Warn("read persisted grant", "error", err)
		}
		return
	}
	// One attempt per loss event; a failed restore leaves the loss visible.
	if err := l.restore(g); err != nil {
		l.mu.Lock()
		l.state = Lost
		l.lostReason = reason
		l.mu.Unlock()
	}
}

func (l *Lifecycle) sameGeneration(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.generation == gen
}
