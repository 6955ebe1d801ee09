package session

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/clawd-xsl/android-remote/internal/platform"
)

type fakeSession struct {
	token   string
	onStop  func(string)
	mu      sync.Mutex
	stopped bool
}

func (s *fakeSession) Mirror(platform.DisplayMetrics, func(platform.Frame)) (platform.Surface, error) {
	return nil, errors.New("not used")
}

func (s *fakeSession) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	go s.onStop("stopped")
}

func (s *fakeSession) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// kill simulates the platform ending the session on its own.
func (s *fakeSession) kill(reason string) { s.onStop(reason) }

type fakeProjector struct {
	mu       sync.Mutex
	opened   []*fakeSession
	failures map[string]bool // tokens that fail to open
	failNext int             // number of upcoming opens that fail
}

func (p *fakeProjector) Open(g platform.Grant, onStop func(string)) (platform.ProjectionSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failures[g.Token] || p.failNext > 0 {
		if p.failNext > 0 {
			p.failNext--
		}
		return nil, errors.New("grant rejected")
	}
	s := &fakeSession{token: g.Token, onStop: onStop}
	p.opened = append(p.opened, s)
	return s, nil
}

func (p *fakeProjector) last() *fakeSession {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.opened[len(p.opened)-1]
}

func (p *fakeProjector) opens() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.opened)
}

func grant(token string) platform.Grant { return platform.Grant{ResultCode: -1, Token: token} }

func newTestLifecycle(t *testing.T, reuse bool) (*Lifecycle, *fakeProjector, *FileStore) {
	t.Helper()
	p := &fakeProjector{failures: map[string]bool{}}
	store := NewFileStore(t.TempDir())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(p, store, platform.Capabilities{GrantReuse: reuse}, logger), p, store
}

func TestSessionBeforeAnyGrantIsNotGranted(t *testing.T) {
	l, _, _ := newTestLifecycle(t, true)
	if _, err := l.Session(); !errors.Is(err, ErrNotGranted) {
		t.Fatalf("err = %v, want ErrNotGranted", err)
	}
	if l.HasActiveSession() {
		t.Error("HasActiveSession = true")
	}
}

func TestAttachOverwrites(t *testing.T) {
	l, p, store := newTestLifecycle(t, false)
	if err := l.Attach(grant("A")); err != nil {
		t.Fatal(err)
	}
	a := p.last()
	if err := l.Attach(grant("B")); err != nil {
		t.Fatal(err)
	}
	b := p.last()

	if !a.isStopped() {
		t.Error("session A still running after attaching B")
	}
	if b.isStopped() {
		t.Error("session B stopped")
	}
	s, err := l.Session()
	if err != nil {
		t.Fatal(err)
	}
	if s.(*fakeSession).token != "B" {
		t.Errorf("active token = %q, want B", s.(*fakeSession).token)
	}
	g, ok, _ := store.Load()
	if !ok || g.Token != "B" {
		t.Errorf("persisted = %+v, %v; want B", g, ok)
	}
}

// failingStore wraps a FileStore and fails every Save while broken is set.
type failingStore struct {
	*FileStore
	broken bool
}

var errDiskFull = errors.New("disk full")

func (s *failingStore) Save(g platform.Grant) error {
	if s.broken {
		return errDiskFull
	}
	return s.FileStore.Save(g)
}

func TestAttachSaveFailureKeepsSession(t *testing.T) {
	p := &fakeProjector{failures: map[string]bool{}}
	store := &failingStore{FileStore: NewFileStore(t.TempDir())}
	l := New(p, store, platform.Capabilities{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	if err := l.Attach(grant("A")); err != nil {
		t.Fatal(err)
	}
	a := p.last()

	store.broken = true
	if err := l.Attach(grant("B")); !errors.Is(err, errDiskFull) {
		t.Fatalf("err = %v, want errDiskFull", err)
	}
	if a.isStopped() || !l.HasActiveSession() {
		t.Fatal("session A was torn down by a failed attach")
	}
	if p.opens() != 1 {
		t.Errorf("opens = %d, want 1", p.opens())
	}
	s, err := l.Session()
	if err != nil || s.(*fakeSession).token != "A" {
		t.Errorf("session = %v, %v; want A", s, err)
	}
	if g, ok, _ := store.Load(); !ok || g.Token != "A" {
		t.Errorf("persisted = %+v, %v; want A", g, ok)
	}
}

func TestStaleStopIsIgnored(t *testing.T) {
	l, p, _ := newTestLifecycle(t, false)
	l.Attach(grant("A"))
	a := p.last()
	l.Attach(grant("B"))

	a.kill("late callback")
	if !l.HasActiveSession() {
		t.Fatal("stop from replaced session A ended session B")
	}
}

func TestLossWithoutReuseStaysLost(t *testing.T) {
	l, p, _ := newTestLifecycle(t, false)
	l.Attach(grant("A"))
	p.last().kill("user stopped casting")

	if l.HasActiveSession() {
		t.Fatal("HasActiveSession = true after loss")
	}
	var lost *SessionLostError
	if _, err := l.Session(); !errors.As(err, &lost) || lost.Reason != "user stopped casting" {
		t.Fatalf("err = %v, want SessionLostError", err)
	}
	if p.opens() != 1 {
		t.Errorf("opens = %d, want no restore attempt", p.opens())
	}
	if st := l.Status(); st.State != "lost" || st.LostReason != "user stopped casting" || !st.Persisted {
		t.Errorf("status = %+v", st)
	}

	if err := l.Attach(grant("C")); err != nil {
		t.Fatal(err)
	}
	if !l.HasActiveSession() {
		t.Error("fresh attach did not reactivate")
	}
}

func TestLossWithReuseRestoresOnce(t *testing.T) {
	l, p, _ := newTestLifecycle(t, true)
	l.Attach(grant("A"))
	p.last().kill("display changed")

	if !l.HasActiveSession() {
		t.Fatal("session not restored after loss")
	}
	if p.opens() != 2 || p.last().token != "A" {
		t.Errorf("opens = %d, last = %q", p.opens(), p.last().token)
	}
}

func TestLossWithFailedRestoreClearsRecord(t *testing.T) {
	l, p, store := newTestLifecycle(t, true)
	l.Attach(grant("A"))
	p.failNext = 1
	p.last().kill("revoked by system")

	var lost *SessionLostError
	if _, err := l.Session(); !errors.As(err, &lost) {
		t.Fatalf("err = %v, want SessionLostError", err)
	}
	if _, ok, _ := store.Load(); ok {
		t.Error("persisted grant kept after failed restore")
	}
}

func TestRestoreOnStart(t *testing.T) {
	tests := []struct {
		name       string
		reuse      bool
		persisted  bool
		failOpen   bool
		wantActive bool
		wantRecord bool
	}{
		{"nothing persisted", true, false, false, false, false},
		{"reuse allowed", true, true, false, true, true},
		{"single-use grants", false, true, false, false, true},
		{"restore fails", true, true, true, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, p, store := newTestLifecycle(t, tt.reuse)
			if tt.persisted {
				if err := store.Save(grant("saved")); err != nil {
					t.Fatal(err)
				}
			}
			if tt.failOpen {
				p.failures["saved"] = true
			}

			err := l.RestoreOnStart()
			if (err != nil) != tt.failOpen {
				t.Fatalf("RestoreOnStart err = %v", err)
			}
			if got := l.HasActiveSession(); got != tt.wantActive {
				t.Errorf("HasActiveSession = %v, want %v", got, tt.wantActive)
			}
			if tt.failOpen && l.State() != Unattached {
				t.Errorf("state = %v, want unattached", l.State())
			}
			if _, ok, _ := store.Load(); ok != tt.wantRecord {
				t.Errorf("record present = %v, want %v", ok, tt.wantRecord)
			}
		})
	}
}

func TestRestoreRequiresReuse(t *testing.T) {
	l, _, _ := newTestLifecycle(t, false)
	if err := l.Restore(grant("A")); !errors.Is(err, ErrReuseNotPermitted) {
		t.Fatalf("err = %v, want ErrReuseNotPermitted", err)
	}
}

func TestRevokeClearsEverything(t *testing.T) {
	l, p, store := newTestLifecycle(t, true)
	l.Attach(grant("A"))
	if err := l.Revoke(); err != nil {
		t.Fatal(err)
	}
	if !p.last().isStopped() {
		t.Error("session not stopped")
	}
	if _, err := l.Session(); !errors.Is(err, ErrNotGranted) {
		t.Errorf("err = %v, want ErrNotGranted", err)
	}
	if _, ok, _ := store.Load(); ok {
		t.Error("record kept after revoke")
	}
}

func TestCloseKeepsRecord(t *testing.T) {
	l, _, store := newTestLifecycle(t, true)
	l.Attach(grant("A"))
	l.Close()
	if l.HasActiveSession() {
		t.Error("session active after Close")
	}
	if _, ok, _ := store.Load(); !ok {
		t.Error("record cleared by Close")
	}
}

func TestAttachRejectsInvalidGrant(t *testing.T) {
	l, p, _ := newTestLifecycle(t, true)
	for _, g := range []platform.Grant{{}, {ResultCode: -1}, {Token: "x"}} {
		if err := l.Attach(g); !errors.Is(err, ErrInvalidGrant) {
			t.Errorf("Attach(%+v) err = %v", g, err)
		}
	}
	if p.opens() != 0 {
		t.Errorf("opens = %d", p.opens())
	}
}

func TestAttachOpenFailureKeepsRecord(t *testing.T) {
	l, p, store := newTestLifecycle(t, true)
	p.failures["A"] = true
	if err := l.Attach(grant("A")); err == nil {
		t.Fatal("expected error")
	}
	if l.State() != Unattached {
		t.Errorf("state = %v", l.State())
	}
	if _, ok, _ := store.Load(); !ok {
		t.Error("fresh grant not persisted")
	}
}

func TestFileStore(t *testing.T) {
	store := NewFileStore(t.TempDir())
	if _, ok, err := store.Load(); ok || err != nil {
		t.Fatalf("empty Load = %v, %v", ok, err)
	}
	if err := store.Save(grant("tok")); err != nil {
		t.Fatal(err)
	}
	g, ok, err := store.Load()
	if err != nil || !ok || g.Token != "tok" || g.ResultCode != -1 {
		t.Fatalf("Load = %+v, %v, %v", g, ok, err)
	}
	if err := store.Clear(); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(); err != nil {
		t.Errorf("second Clear: %v", err)
	}
	if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
		t.Errorf("file still present: %v", err)
	}
}

func TestFileStoreCorrupt(t *testing.T) {
	store := NewFileStore(t.TempDir())
	if err := os.WriteFile(store.Path(), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := store.Load(); err == nil {
		t.Error("expected parse error")
	}
}
