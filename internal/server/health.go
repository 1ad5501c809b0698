package server

import (
	"maps"
	"sync"
	"time"
)

// probeCheck is the last observed state of one upstream reachability probe.
type probeCheck struct {
	Endpoint  string    `json:"endpoint"`
	URL       string    `json:"url"`
	Healthy   bool      `json:"healthy"`
	CheckedAt time.Time `json:"checked_at"`
	Error     string    `json:"error,omitempty"`
}

// healthState aggregates probe results for the health endpoint.
type healthState struct {
	mu     sync.RWMutex
	checks map[string]probeCheck
}

func newHealthState() *healthState {
	return &healthState{checks: make(map[string]probeCheck)}
}

func (h *healthState) record(endpoint, url string, err error) {
	check := probeCheck{
		Endpoint:  endpoint,
		URL:       url,
		Healthy:   err == nil,
		CheckedAt: time.Now().UTC(),
	}
	if err != nil {
		check.Error = err.Error()
	}
	h.mu.Lock()
	h.checks[endpoint] = check
	h.mu.Unlock()
}

func (h *healthState) snapshot() map[string]probeCheck {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return maps.Clone(h.checks)
}

// healthy reports whether every probed upstream answered its last check.
// An empty state counts as healthy: probes may be disabled or still pending.
func (h *healthState) healthy() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, check := range h.checks {
		if !check.Healthy {
			return false
		}
	}
	return true
}
