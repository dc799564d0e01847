// Package control provides the operator kill switch: a process-wide flag
// that halts bet resolution without restarting the server.
package control

import (
	"sync"
	"time"
)

// Status is a snapshot of the gaming switch.
type Status struct {
	Enabled    bool      `json:"enabled"`
	Reason     string    `json:"reason,omitempty"`
	ChangedAt  time.Time `json:"changed_at"`
	DisabledBy string    `json:"disabled_by,omitempty"`
}

// Switch is safe for concurrent use. Gaming starts enabled.
type Switch struct {
	mu     sync.RWMutex
	status Status
}

// NewSwitch creates an enabled switch.
func NewSwitch() *Switch {
	return &Switch{status: Status{Enabled: true, ChangedAt: time.Now().UTC()}}
}

// Enabled reports whether bets may be resolved.
func (s *Switch) Enabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status.Enabled
}

// Disable halts bet resolution.
func (s *Switch) Disable(by, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = Status{Enabled: false, Reason: reason, DisabledBy: by, ChangedAt: time.Now().UTC()}
}

// Enable resumes bet resolution.
func (s *Switch) Enable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = Status{Enabled: true, ChangedAt: time.Now().UTC()}
}

// Status returns the current snapshot.
func (s *Switch) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}
