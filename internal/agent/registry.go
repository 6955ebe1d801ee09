package agent

import (
	"log/slog"
	"sync"

	"github.com/clawd-xsl/android-remote/internal/gesture"
	"github.com/clawd-xsl/android-remote/internal/platform"
	"github.com/clawd-xsl/android-remote/internal/uitree"
)

// Automation is a connected accessibility service with the components
// built on it. A reconnect produces a new Automation with an empty
// address cache.
type Automation struct {
	platform.Automation
	Cache    *uitree.AddressCache
	Builder  *uitree.Builder
	Gestures *gesture.Bridge
}

// Registry holds the currently connected accessibility service. It is set
// when the service connects and cleared when it disconnects.
type Registry struct {
	gestureOpts gesture.Options
	logger      *slog.Logger

	mu      sync.RWMutex
	current *Automation
}

// NewRegistry creates an empty Registry. gestureOpts configures the
// bridge built for each connected service.
func NewRegistry(gestureOpts gesture.Options, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	if gestureOpts.Logger == nil {
		gestureOpts.Logger = logger
	}
	return &Registry{gestureOpts: gestureOpts, logger: logger}
}

// Watch subscribes the registry to w's connect/disconnect reports.
func (r *Registry) Watch(w platform.AutomationWatcher) {
	w.WatchAutomation(r.Set)
}

// Set installs a as the current service. nil clears it.
func (r *Registry) Set(a platform.Automation) {
	if a == nil {
		r.Clear()
		return
	}
	cache := uitree.NewAddressCache()
	entry := &Automation{
		Automation: a,
		Cache:      cache,
		Builder:    uitree.NewBuilder(a, cache),
		Gestures:   gesture.NewBridge(a, cache, r.gestureOpts),
	}

	r.mu.Lock()
	r.current = entry
	r.mu.Unlock()
	r.logger.Info("accessibility service connected")
}

// Clear forgets the current service.
func (r *Registry) Clear() {
	r.mu.Lock()
	had := r.current != nil
	r.current = nil
	r.mu.Unlock()
	if had {
		r.logger.Info("accessibility service disconnected")
	}
}

// Current returns the connected service or ErrAutomationUnavailable.
func (r *Registry) Current() (*Automation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return nil, ErrAutomationUnavailable
	}
	return r.current, nil
}
