// Package capture grabs single frames from a capture session and encodes
// them as images.
package capture

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/clawd-xsl/android-remote/internal/clock"
	"github.com/clawd-xsl/android-remote/internal/platform"
)

// DefaultTimeout bounds how long a capture waits for the first frame.
const DefaultTimeout = 1200 * time.Millisecond

var (
	// ErrTimeout means no frame arrived within the bound.
	ErrTimeout = errors.New("no frame arrived before the capture timeout")

	// ErrFailed means a frame arrived but could not be turned into an image.
	ErrFailed = errors.New("capture failed")
)

// SessionSource yields the live capture session, or an error explaining
// why there is none.
type SessionSource interface {
	Session() (platform.ProjectionSession, error)
}

// Pipeline captures one frame per call from the current session.
type Pipeline struct {
	sessions SessionSource
	display  platform.Display
	clock    clock.Clock
	timeout  time.Duration
	logger   *slog.Logger
}

// Options configures a Pipeline. Zero values select defaults.
type Options struct {
	Clock   clock.Clock
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewPipeline creates a Pipeline.
func NewPipeline(sessions SessionSource, display platform.Display, opts Options) *Pipeline {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Pipeline{
		sessions: sessions,
		display:  display,
		clock:    opts.Clock,
		timeout:  opts.Timeout,
		logger:   opts.Logger,
	}
}

// CaptureFrame grabs one frame and encodes it per opts (PNG by default).
// Session errors from the SessionSource are returned unwrapped so callers
// can tell "never granted" from "lost".
func (p *Pipeline) CaptureFrame(opts EncodeOptions) ([]byte, error) {
	img, err := p.Grab()
	if err != nil {
		return nil, err
	}
	out, err := Encode(img, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailed, err)
	}
	return out, nil
}

type grabResult struct {
	img *image.NRGBA
	err error
}

// Grab mirrors the display into a single-use surface, waits for the first
// buffer, and returns it tightly packed and cropped to the display size.
// The surface is released on every return path.
func (p *Pipeline) Grab() (*image.NRGBA, error) {
	session, err := p.sessions.Session()
	if err != nil {
		return nil, err
	}

	metrics := p.display.Metrics()
	if metrics.Width <= 0 || metrics.Height <= 0 {
		return nil, fmt.Errorf("%w: display reports %dx%d", ErrFailed, metrics.Width, metrics.Height)
	}

	start := p.clock.Now()
	ready := make(chan grabResult, 1)
	var once sync.Once
	onFrame := func(f platform.Frame) {
		once.Do(func() {
			img, err := CopyFrame(f, metrics.Width, metrics.Height)
			ready <- grabResult{img: img, err: err}
		})
	}

	surface, err := session.Mirror(metrics, onFrame)
	if err != nil {
		return nil, fmt.Errorf("%w: create surface: %v", ErrFailed, err)
	}
	defer surface.Release()

	select {
	case r := <-ready:
		if r.err != nil {
			p.logger.Warn("capture frame rejected", "error", r.err)
			return nil, fmt.Errorf("%w: %v", ErrFailed, r.err)
		}
		p.logger.Debug("frame captured",
			"width", metrics.Width, "height", metrics.Height,
			"elapsed", p.clock.Now().Sub(start))
		return r.img, nil
	case <-p.clock.After(p.timeout):
		p.logger.Warn("capture timed out", "timeout", p.timeout)
		return nil, ErrTimeout
	}
}
