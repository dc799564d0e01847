// Package freespin tracks awarded free spins per account. State is
// created on the first award, decremented on consumption and destroyed
// when it reaches zero.
package freespin

import "sync"

// State is a snapshot of an account's free-spin entitlement.
type State struct {
	Remaining  int   `json:"remaining"`
	Multiplier int64 `json:"multiplier"`
}

// Tracker holds free-spin state for all accounts.
type Tracker struct {
	mu         sync.Mutex
	cap        int
	multiplier int64
	states     map[string]*State
}

// NewTracker creates a tracker. Awards are capped at cap spins; wins on
// free spins are multiplied by multiplier.
func NewTracker(cap int, multiplier int64) *Tracker {
	return &Tracker{
		cap:        cap,
		multiplier: multiplier,
		states:     make(map[string]*State),
	}
}

// Award adds spins to an account's entitlement, capped at the configured
// maximum, and returns the new remaining count.
func (t *Tracker) Award(accountID string, spins int) int {
	if spins <= 0 {
		return t.Remaining(accountID)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.states[accountID]
	if !ok {
		st = &State{Multiplier: t.multiplier}
		t.states[accountID] = st
	}
	st.Remaining += spins
	if st.Remaining > t.cap {
		st.Remaining = t.cap
	}
	return st.Remaining
}

// Consume spends one free spin. It returns the state in effect for the
// spin and false if the account has none remaining.
func (t *Tracker) Consume(accountID string) (State, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.states[accountID]
	if !ok || st.Remaining <= 0 {
		return State{}, false
	}

	st.Remaining--
	out := *st
	if st.Remaining == 0 {
		delete(t.states, accountID)
	}
	return out, true
}

// Remaining reports how many free spins an account holds.
func (t *Tracker) Remaining(accountID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if st, ok := t.states[accountID]; ok {
		return st.Remaining
	}
	return 0
}

// Multiplier returns the win multiplier applied to free spins.
func (t *Tracker) Multiplier() int64 {
	return t.multiplier
}
