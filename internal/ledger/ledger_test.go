package ledger

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAndBalance(t *testing.T) {
	l := New()
	require.NoError(t, l.Open("p1", 1000))

	t.Run("Balance", func(t *testing.T) {
		bal, err := l.Balance("p1")
		require.NoError(t, err)
		assert.Equal(t, int64(1000), bal)
	})

	t.Run("DuplicateOpen", func(t *testing.T) {
		assert.ErrorIs(t, l.Open("p1", 0), ErrAccountExists)
	})

	t.Run("NegativeOpening", func(t *testing.T) {
		assert.ErrorIs(t, l.Open("p2", -1), ErrInvalidAmount)
	})

	t.Run("UnknownAccount", func(t *testing.T) {
		_, err := l.Balance("ghost")
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})
}

func TestTryDebit(t *testing.T) {
	l := New()
	require.NoError(t, l.Open("p1", 100))

	t.Run("Sufficient", func(t *testing.T) {
		bal, err := l.TryDebit("p1", 60)
		require.NoError(t, err)
		assert.Equal(t, int64(40), bal)
	})

	t.Run("InsufficientLeavesBalance", func(t *testing.T) {
		bal, err := l.TryDebit("p1", 41)
		assert.ErrorIs(t, err, ErrInsufficientFunds)
		assert.Equal(t, int64(40), bal)

		bal, err = l.Balance("p1")
		require.NoError(t, err)
		assert.Equal(t, int64(40), bal, "rejected debit must not change the balance")
	})

	t.Run("ExactBalance", func(t *testing.T) {
		bal, err := l.TryDebit("p1", 40)
		require.NoError(t, err)
		assert.Equal(t, int64(0), bal)
	})

	t.Run("InvalidAmount", func(t *testing.T) {
		_, err := l.TryDebit("p1", 0)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}

func TestCredit(t *testing.T) {
	l := New()
	require.NoError(t, l.Open("p1", 0))

	bal, err := l.Credit("p1", 250)
	require.NoError(t, err)
	assert.Equal(t, int64(250), bal)

	t.Run("ZeroCredit", func(t *testing.T) {
		bal, err := l.Credit("p1", 0)
		require.NoError(t, err)
		assert.Equal(t, int64(250), bal)
	})

	t.Run("NegativeCredit", func(t *testing.T) {
		_, err := l.Credit("p1", -1)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}

// Two concurrent debits of 80 against a balance of 100: exactly one must
// succeed and the final balance must reflect exactly one debit.
func TestConcurrentDebitRace(t *testing.T) {
	for round := 0; round < 200; round++ {
		l := New()
		require.NoError(t, l.Open("p1", 100))

		var wg sync.WaitGroup
		results := make([]error, 2)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, results[i] = l.TryDebit("p1", 80)
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range results {
			if err == nil {
				succeeded++
			} else {
				require.ErrorIs(t, err, ErrInsufficientFunds)
			}
		}
		require.Equal(t, 1, succeeded, "exactly one debit must pass")

		bal, err := l.Balance("p1")
		require.NoError(t, err)
		require.Equal(t, int64(20), bal)
	}
}

// Fuzzed concurrent debit/credit pairs: the final balance must equal the
// initial balance plus the net of the operations that were not rejected,
// and it must never be observed negative.
func TestConcurrentRoundTripInvariant(t *testing.T) {
	l := New()
	const opening = int64(10_000)
	require.NoError(t, l.Open("p1", opening))

	const workers = 16
	const opsPerWorker = 500

	var wg sync.WaitGroup
	var mu sync.Mutex
	var netCommitted int64

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			r := rand.New(rand.NewSource(seed))
			for i := 0; i < opsPerWorker; i++ {
				bet := int64(r.Intn(500) + 1)
				win := int64(r.Intn(700)) // sometimes exceeds the bet

				if _, err := l.TryDebit("p1", bet); err != nil {
					continue // rejected: no side effects
				}
				_, err := l.Credit("p1", win)
				if err != nil {
					t.Error(err)
					return
				}
				mu.Lock()
				netCommitted += win - bet
				mu.Unlock()

				bal, err := l.Balance("p1")
				if err != nil {
					t.Error(err)
					return
				}
				if bal < 0 {
					t.Errorf("observed negative balance %d", bal)
					return
				}
			}
		}(int64(w))
	}
	wg.Wait()

	bal, err := l.Balance("p1")
	require.NoError(t, err)
	assert.Equal(t, opening+netCommitted, bal)
	assert.GreaterOrEqual(t, bal, int64(0))
}

// Debits against separate accounts must proceed independently.
func TestIndependentAccounts(t *testing.T) {
	l := New()
	require.NoError(t, l.Open("a", 1000))
	require.NoError(t, l.Open("b", 1000))

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.TryDebit("a", 10)
			l.Credit("b", 10)
		}()
	}
	wg.Wait()

	balA, _ := l.Balance("a")
	balB, _ := l.Balance("b")
	assert.Equal(t, int64(0), balA)
	assert.Equal(t, int64(2000), balB)
}
