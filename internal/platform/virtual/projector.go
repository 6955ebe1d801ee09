package virtual

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/clawd-xsl/android-remote/internal/platform"
)

// frameInterval is the delay between frames delivered to a surface.
const frameInterval = 16 * time.Millisecond

var (
	errGrantRejected = errors.New("capture grant rejected by the platform")
	errGrantConsumed = errors.New("capture grant already used; single-use grants cannot be reused")
	errSessionEnded  = errors.New("capture session has ended")
)

// Open implements platform.Projector. On single-use SDK levels a token
// opens at most one session.
func (d *Device) Open(g platform.Grant, onStop func(string)) (platform.ProjectionSession, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("invalid capture grant")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.rejected[g.Token] {
		return nil, errGrantRejected
	}
	if d.screen.Device.SDKInt >= platform.SingleUseGrantSDK && d.usedTokens[g.Token] {
		return nil, errGrantConsumed
	}
	d.usedTokens[g.Token] = true

	p := &projection{d: d, token: g.Token, onStop: onStop, done: make(chan struct{})}
	d.sessions = append(d.sessions, p)
	return p, nil
}

// RejectGrant makes later Open calls with token fail.
func (d *Device) RejectGrant(token string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rejected[token] = true
}

// EndCapture ends every live session as if the platform stopped it.
func (d *Device) EndCapture(reason string) {
	d.mu.Lock()
	sessions := d.sessions
	d.sessions = nil
	d.mu.Unlock()
	for _, p := range sessions {
		p.end(reason)
	}
}

// PauseFrames stops (or resumes) frame delivery to new surfaces.
func (d *Device) PauseFrames(paused bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.framesPaused = paused
}

// LiveSessions returns the number of sessions that have not ended.
func (d *Device) LiveSessions() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n := 0
	for _, p := range d.sessions {
		if !p.ended() {
			n++
		}
	}
	return n
}

// projection is a capture session.
type projection struct {
	d      *Device
	token  string
	onStop func(string)

	once sync.Once
	done chan struct{}
}

func (p *projection) Mirror(m platform.DisplayMetrics, onFrame func(platform.Frame)) (platform.Surface, error) {
	if p.ended() {
		return nil, errSessionEnded
	}
	p.d.mu.RLock()
	paused := p.d.framesPaused
	padding := p.d.screen.Display.RowPadding
	p.d.mu.RUnlock()

	s := &surface{released: make(chan struct{})}
	if paused {
		return s, nil
	}
	frame := p.d.render(m, padding)
	go func() {
		ticker := time.NewTicker(frameInterval)
		defer ticker.Stop()
		for {
			select {
			case <-s.released:
				return
			case <-p.done:
				return
			default:
			}
			onFrame(frame)
			select {
			case <-s.released:
				return
			case <-p.done:
				return
			case <-ticker.C:
			}
		}
	}()
	return s, nil
}

func (p *projection) Stop() { p.end("stopped") }

// end closes the session once and reports reason asynchronously.
func (p *projection) end(reason string) {
	p.once.Do(func() {
		close(p.done)
		if p.onStop != nil {
			go p.onStop(reason)
		}
	})
}

func (p *projection) ended() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

type surface struct {
	once     sync.Once
	released chan struct{}
}

func (s *surface) Release() { s.once.Do(func() { close(s.released) }) }

var (
	background = [4]byte{0x20, 0x22, 0x26, 0xff}
	panel      = [4]byte{0x36, 0x3a, 0x40, 0xff}
	control    = [4]byte{0x3d, 0x7e, 0xf0, 0xff}
)

// render paints the window tree into an RGBA_8888 buffer with padding
// bytes after each row. Clickable nodes are painted in the accent color.
func (d *Device) render(m platform.DisplayMetrics, padding int) platform.Frame {
	rowStride := m.Width*4 + padding
	pix := make([]byte, rowStride*m.Height)
	fill(pix, rowStride, 0, 0, m.Width, m.Height, background)

	d.mu.RLock()
	d.screen.Window.walk(func(n *NodeSpec) bool {
		if n.Gone {
			return true
		}
		c := panel
		if n.Clickable {
			c = control
		}
		r := n.rect()
		fill(pix, rowStride,
			max(r.Left, 0), max(r.Top, 0),
			min(r.Right, m.Width), min(r.Bottom, m.Height), c)
		return true
	})
	d.mu.RUnlock()

	return platform.Frame{Pix: pix, Width: m.Width, Height: m.Height, PixelStride: 4, RowStride: rowStride}
}

func fill(pix []byte, rowStride, x1, y1, x2, y2 int, c [4]byte) {
	for y := y1; y < y2; y++ {
		row := pix[y*rowStride:]
		for x := x1; x < x2; x++ {
			copy(row[x*4:x*4+4], c[:])
		}
	}
}
