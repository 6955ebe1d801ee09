// Package gesture turns the platform's asynchronous gesture callbacks into
// synchronous, time-bounded calls.
package gesture

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/clawd-xsl/android-remote/internal/clock"
	"github.com/clawd-xsl/android-remote/internal/platform"
	"github.com/clawd-xsl/android-remote/internal/uitree"
)

const (
	// DefaultTimeout bounds how long a caller waits for the platform to
	// report a gesture's outcome.
	DefaultTimeout = 1500 * time.Millisecond

	// TapDuration is how long a tap presses its single point.
	TapDuration = 80 * time.Millisecond

	// MinStrokeDuration is the shortest stroke submitted; the platform
	// rejects zero-length strokes.
	MinStrokeDuration = 50 * time.Millisecond

	// MaxStrokeDuration is the longest stroke the platform accepts.
	MaxStrokeDuration = 60 * time.Second

	// DefaultSwipeDuration applies when a swipe names no duration.
	DefaultSwipeDuration = 300 * time.Millisecond
)

// StrokeDuration converts ms to a duration within [MinStrokeDuration,
// MaxStrokeDuration]. The bounds are applied before conversion.
func StrokeDuration(ms int64) time.Duration {
	switch {
	case ms >= MaxStrokeDuration.Milliseconds():
		return MaxStrokeDuration
	case ms <= MinStrokeDuration.Milliseconds():
		return MinStrokeDuration
	}
	return time.Duration(ms) * time.Millisecond
}

// Outcome is how a single dispatch ended.
type Outcome int

const (
	Completed Outcome = iota
	Cancelled
	TimedOut
	Rejected
	StaleAddress
)

func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	case TimedOut:
		return "timed_out"
	case Rejected:
		return "rejected"
	case StaleAddress:
		return "stale_address"
	default:
		return "unknown"
	}
}

// OK reports whether the gesture happened.
func (o Outcome) OK() bool { return o == Completed }

// Bridge dispatches taps and swipes and waits for their outcome.
type Bridge struct {
	injector platform.GestureInjector
	cache    *uitree.AddressCache
	clock    clock.Clock
	timeout  time.Duration
	logger   *slog.Logger
}

// Options configures a Bridge. Zero values select defaults.
type Options struct {
	Clock   clock.Clock
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewBridge creates a Bridge that injects through injector and resolves
// node addresses through cache.
func NewBridge(injector platform.GestureInjector, cache *uitree.AddressCache, opts Options) *Bridge {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Bridge{
		injector: injector,
		cache:    cache,
		clock:    opts.Clock,
		timeout:  opts.Timeout,
		logger:   opts.Logger,
	}
}

// Tap presses a single point.
func (b *Bridge) Tap(x, y float64) bool {
	return b.TapOutcome(x, y).OK()
}

// TapOutcome is Tap with the detailed outcome.
func (b *Bridge) TapOutcome(x, y float64) Outcome {
	return b.dispatch(platform.Gesture{
		Path:     []platform.Point{{X: x, Y: y}},
		Duration: TapDuration,
	})
}

// TapAddress taps the center of the node at address in the latest
// snapshot. An address the latest snapshot did not produce fails without
// dispatching anything.
func (b *Bridge) TapAddress(address string) bool {
	return b.TapAddressOutcome(address).OK()
}

// TapAddressOutcome is TapAddress with the detailed outcome.
func (b *Bridge) TapAddressOutcome(address string) Outcome {
	rect, ok := b.cache.Resolve(address)
	if !ok {
		b.logger.Info("tap by address missed", "address", address, "outcome", StaleAddress)
		return StaleAddress
	}
	x, y := rect.Center()
	return b.TapOutcome(x, y)
}

// Swipe draws a straight stroke from (x1,y1) to (x2,y2). Durations are
// clamped to [MinStrokeDuration, MaxStrokeDuration].
func (b *Bridge) Swipe(x1, y1, x2, y2 float64, duration time.Duration) bool {
	return b.SwipeOutcome(x1, y1, x2, y2, duration).OK()
}

// SwipeOutcome is Swipe with the detailed outcome.
func (b *Bridge) SwipeOutcome(x1, y1, x2, y2 float64, duration time.Duration) Outcome {
	if duration < MinStrokeDuration {
		duration = MinStrokeDuration
	}
	if duration > MaxStrokeDuration {
		duration = MaxStrokeDuration
	}
	return b.dispatch(platform.Gesture{
		Path:     []platform.Point{{X: x1, Y: y1}, {X: x2, Y: y2}},
		Duration: duration,
	})
}

// dispatch submits g and blocks until the platform reports an outcome or
// the timeout elapses. The first report wins; later ones are dropped.
func (b *Bridge) dispatch(g platform.Gesture) Outcome {
	start := b.clock.Now()
	result := make(chan bool, 1)
	var once sync.Once
	done := func(completed bool) {
		once.Do(func() { result <- completed })
	}

	if !b.injector.DispatchGesture(g, done) {
		b.log(g, Rejected, start)
		return Rejected
	}

	var outcome Outcome
	select {
	case completed := <-result:
		outcome = Cancelled
		if completed {
			outcome = Completed
		}
	case <-b.clock.After(b.timeout):
		outcome = TimedOut
	}
	b.log(g, outcome, start)
	return outcome
}

func (b *Bridge) log(g platform.Gesture, outcome Outcome, start time.Time) {
	level := slog.LevelDebug
	if !outcome.OK() {
		level = slog.LevelWarn
	}
	b.logger.Log(context.Background(), level, "gesture dispatched",
		"points", len(g.Path),
		"duration", g.Duration,
		"outcome", outcome,
		"elapsed", b.clock.Now().Sub(start))
}
