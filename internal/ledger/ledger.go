// Package ledger is the authoritative account balance store. Debits and
// credits are serialized per account, so a sufficiency check and its
// mutation are one indivisible step and operations on different accounts
// never block each other. Balances are never negative.
package ledger

import (
	"errors"
	"sync"
)

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountExists     = errors.New("account already exists")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("invalid amount")
)

type account struct {
	mu      sync.Mutex
	balance int64 // cents, invariant: >= 0
}

// Ledger maps account ids to balances. The outer RWMutex guards the map
// itself; each account carries its own lock for balance mutations.
type Ledger struct {
	mu       sync.RWMutex
	accounts map[string]*account
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{accounts: make(map[string]*account)}
}

// Open creates an account with an opening balance.
func (l *Ledger) Open(id string, opening int64) error {
	if opening < 0 {
		return ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.accounts[id]; ok {
		return ErrAccountExists
	}
	l.accounts[id] = &account{balance: opening}
	return nil
}

func (l *Ledger) account(id string) (*account, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	a, ok := l.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return a, nil
}

// Balance returns the current balance.
func (l *Ledger) Balance(id string) (int64, error) {
	a, err := l.account(id)
	if err != nil {
		return 0, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance, nil
}

// TryDebit decrements the balance only if it covers the amount, as one
// atomic step. On insufficient funds the balance is untouched and
// ErrInsufficientFunds is returned. Returns the new balance on success.
func (l *Ledger) TryDebit(id string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	a, err := l.account(id)
	if err != nil {
		return 0, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.balance < amount {
		return a.balance, ErrInsufficientFunds
	}
	a.balance -= amount
	return a.balance, nil
}

// Credit increments the balance. It always succeeds for non-negative
// amounts; a zero credit is a no-op that still reports the balance.
func (l *Ledger) Credit(id string, amount int64) (int64, error) {
	if amount < 0 {
		return 0, ErrInvalidAmount
	}
	a, err := l.account(id)
	if err != nil {
		return 0, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.balance += amount
	return a.balance, nil
}
