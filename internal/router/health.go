package router

import (
	"sync"
	"time"
)

// HealthTracker keeps a consecutive-failure breaker per provider. A provider
// that fails failureThreshold times in a row stops taking traffic until the
// probe interval elapses, after which one request is let through; success
// closes the breaker, failure reopens it.
type HealthTracker struct {
	mu        sync.Mutex
	providers map[string]*providerHealth

	failureThreshold int
	probeInterval    time.Duration
}

type providerHealth struct {
	failures int
	openedAt time.Time
	open     bool
}

func NewHealthTracker(failureThreshold int, probeInterval time.Duration) *HealthTracker {
	if failureThreshold <= 0 {
		failureThreshold = 5
	}
	if probeInterval <= 0 {
		probeInterval = 15 * time.Second
	}
	return &HealthTracker{
		providers:        make(map[string]*providerHealth),
		failureThreshold: failureThreshold,
		probeInterval:    probeInterval,
	}
}

// IsAvailable reports whether the provider may take traffic. An open breaker
// past its probe interval allows one request through to test recovery.
func (h *HealthTracker) IsAvailable(provider string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	ph, ok := h.providers[provider]
	if !ok || !ph.open {
		return true
	}
	return time.Since(ph.openedAt) >= h.probeInterval
}

// RecordSuccess clears failure state for the provider.
func (h *HealthTracker) RecordSuccess(provider string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ph := h.get(provider)
	ph.failures = 0
	ph.open = false
}

// RecordFailure counts a failure and opens the breaker at the threshold.
// A failure while probing reopens immediately.
func (h *HealthTracker) RecordFailure(provider string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ph := h.get(provider)
	ph.failures++
	if ph.open || ph.failures >= h.failureThreshold {
		ph.open = true
		ph.openedAt = time.Now()
	}
}

func (h *HealthTracker) get(provider string) *providerHealth {
	ph, ok := h.providers[provider]
	if !ok {
		ph = &providerHealth{}
		h.providers[provider] = ph
	}
	return ph
}
