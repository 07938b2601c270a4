// Package upstream tracks recent call outcomes per Open-Meteo endpoint in a
// sliding window. The /health handler uses it to report per-provider checks.
package upstream

import (
	"sync"
	"time"
)

// Provider names one of the three upstream endpoints.
type Provider string

const (
	ProviderGeocoding  Provider = "geocoding"
	ProviderForecast   Provider = "forecast"
	ProviderAirQuality Provider = "air_quality"
)

// Providers lists all tracked providers in display order.
var Providers = []Provider{ProviderGeocoding, ProviderForecast, ProviderAirQuality}

// retention bounds how long outcomes are kept regardless of query window.
const retention = 5 * time.Minute

// Health records call outcomes per provider and answers windowed error-rate
// queries. Safe for concurrent use.
type Health struct {
	mu       sync.Mutex
	outcomes map[Provider]*providerWindow
}

type providerWindow struct {
	successes []time.Time
	errors    []time.Time
}

// NewHealth returns an empty tracker.
func NewHealth() *Health {
	return &Health{outcomes: make(map[Provider]*providerWindow)}
}

// RecordSuccess records a successful call to the provider.
func (h *Health) RecordSuccess(p Provider) {
	h.record(p, true)
}

// RecordError records a failed call to the provider (transport error,
// timeout, or non-success status).
func (h *Health) RecordError(p Provider) {
	h.record(p, false)
}

func (h *Health) record(p Provider, success bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	w := h.outcomes[p]
	if w == nil {
		w = &providerWindow{}
		h.outcomes[p] = w
	}
	now := time.Now()
	if success {
		w.successes = append(w.successes, now)
	} else {
		w.errors = append(w.errors, now)
	}
	w.prune(now.Add(-retention))
}

// ErrorRate returns (errorCount, totalCount) for the provider within the
// window. A provider with no recorded outcomes returns (0, 0).
func (h *Health) ErrorRate(p Provider, window time.Duration) (errs, total int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	w := h.outcomes[p]
	if w == nil {
		return 0, 0
	}
	cutoff := time.Now().Add(-window)
	errs = countSince(w.errors, cutoff)
	return errs, errs + countSince(w.successes, cutoff)
}

// Reset clears all recorded outcomes. For tests only.
func (h *Health) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.outcomes = make(map[Provider]*providerWindow)
}

func (w *providerWindow) prune(cutoff time.Time) {
	w.successes = dropBefore(w.successes, cutoff)
	w.errors = dropBefore(w.errors, cutoff)
}

func dropBefore(times []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for ; i < len(times) && times[i].Before(cutoff); i++ {
	}
	if i == 0 {
		return times
	}
	return append(times[:0], times[i:]...)
}

func countSince(times []time.Time, cutoff time.Time) int {
	n := 0
	for _, ts := range times {
		if !ts.Before(cutoff) {
			n++
		}
	}
	return n
}

// Default is the process-wide tracker shared by the client and the health
// handler.
var Default = NewHealth()
