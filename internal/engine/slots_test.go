package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akozlov/reelcore/internal/domain"
	"github.com/akozlov/reelcore/internal/jackpot"
	"github.com/akozlov/reelcore/internal/reel"
	"github.com/akozlov/reelcore/internal/rng"
)

// missSource draws grids from a seeded stream but never triggers a
// jackpot tier.
type missSource struct{ *rng.Seeded }

func (missSource) Float64() (float64, error) { return 0.99, nil }

// hitSource forces every probability draw to its floor, so the first
// eligible tier always triggers.
type hitSource struct{ *rng.Seeded }

func (hitSource) Float64() (float64, error) { return 0, nil }

func slotGame() domain.Game {
	return domain.Game{ID: "g-slot", Name: "Fruit Reels", Type: "fruit-reels", MinBet: 5, MaxBet: 500, Enabled: true}
}

func TestSlotValidate(t *testing.T) {
	e := NewSlotEngine(slotGame(), reel.DefaultMath(), nil)

	t.Run("WithinRange", func(t *testing.T) {
		stake, err := e.Validate(&BetRequest{Amount: 100})
		require.NoError(t, err)
		assert.Equal(t, int64(100), stake)
	})

	t.Run("BelowMin", func(t *testing.T) {
		_, err := e.Validate(&BetRequest{Amount: 4})
		assert.ErrorIs(t, err, ErrInvalidBet)
	})

	t.Run("AboveMax", func(t *testing.T) {
		_, err := e.Validate(&BetRequest{Amount: 501})
		assert.ErrorIs(t, err, ErrInvalidBet)
	})

	t.Run("SubBetsRejected", func(t *testing.T) {
		_, err := e.Validate(&BetRequest{Amount: 100, SubBets: map[string]int64{"hearts": 100}})
		assert.ErrorIs(t, err, ErrInvalidBet)
	})
}

func TestSlotSpinDeterministic(t *testing.T) {
	m := reel.DefaultMath()
	e := NewSlotEngine(slotGame(), m, nil)
	req := &BetRequest{AccountID: "p1", Amount: 100}

	first, err := e.Spin(req, true, 1, missSource{rng.NewSeeded(7)})
	require.NoError(t, err)
	second, err := e.Spin(req, true, 1, missSource{rng.NewSeeded(7)})
	require.NoError(t, err)

	assert.Equal(t, first.WinAmount, second.WinAmount)
	assert.Equal(t, first.Payload.(*SlotOutcome).Grid, second.Payload.(*SlotOutcome).Grid)
	assert.Equal(t, first.Wins, second.Wins)
}

func TestSlotFreeSpinMultiplier(t *testing.T) {
	m := reel.DefaultMath()
	e := NewSlotEngine(slotGame(), m, nil)
	req := &BetRequest{AccountID: "p1", Amount: 100}

	// Same seed yields the same grid, so the only difference is the
	// multiplier applied to the line wins.
	paid, err := e.Spin(req, true, 1, missSource{rng.NewSeeded(11)})
	require.NoError(t, err)
	free, err := e.Spin(req, false, 2, missSource{rng.NewSeeded(11)})
	require.NoError(t, err)

	paidOut := paid.Payload.(*SlotOutcome)
	freeOut := free.Payload.(*SlotOutcome)
	assert.Equal(t, paidOut.BaseWin, freeOut.BaseWin)
	assert.Equal(t, 2*freeOut.BaseWin, free.WinAmount)
	assert.Equal(t, int64(2), freeOut.Multiplier)
}

func TestSlotPoolAccrualOnMiss(t *testing.T) {
	pool := jackpot.NewPool(jackpot.DefaultConfig(500), 10_000)
	e := NewSlotEngine(slotGame(), reel.DefaultMath(), pool)

	_, err := e.Spin(&BetRequest{AccountID: "p1", Amount: 100}, true, 1, missSource{rng.NewSeeded(3)})
	require.NoError(t, err)
	assert.Equal(t, int64(10_100), pool.Total(), "a missed paid spin accrues the stake")
}

func TestSlotFreeSpinSkipsPool(t *testing.T) {
	pool := jackpot.NewPool(jackpot.DefaultConfig(500), 10_000)
	e := NewSlotEngine(slotGame(), reel.DefaultMath(), pool)

	_, err := e.Spin(&BetRequest{AccountID: "p1", Amount: 100}, false, 2, missSource{rng.NewSeeded(3)})
	require.NoError(t, err)
	assert.Equal(t, int64(10_000), pool.Total(), "free spins must not touch the pool")
}

func TestSlotJackpotHitAddsToWin(t *testing.T) {
	// Opening above the super floor with a max bet makes the forced
	// super hit pay the full pool.
	pool := jackpot.NewPool(jackpot.DefaultConfig(500), 200_000)
	e := NewSlotEngine(slotGame(), reel.DefaultMath(), pool)

	out, err := e.Spin(&BetRequest{AccountID: "p1", Amount: 500}, true, 1, hitSource{rng.NewSeeded(3)})
	require.NoError(t, err)

	require.NotNil(t, out.Jackpot)
	assert.Equal(t, jackpot.SuperTierName, out.Jackpot.Tier)
	assert.Equal(t, int64(200_000), out.Jackpot.Amount)
	assert.Equal(t, out.Payload.(*SlotOutcome).BaseWin+out.Jackpot.Amount, out.WinAmount)
	assert.Equal(t, int64(0), pool.Total(), "super hit drains the pool")
}

func TestSlotScatterAwardMatchesCount(t *testing.T) {
	m := reel.DefaultMath()
	e := NewSlotEngine(slotGame(), m, nil)
	src := missSource{rng.NewSeeded(42)}

	sawTrigger := false
	for i := 0; i < 500; i++ {
		out, err := e.Spin(&BetRequest{AccountID: "p1", Amount: 100}, true, 1, src)
		require.NoError(t, err)

		payload := out.Payload.(*SlotOutcome)
		if payload.ScatterCount >= m.ScatterTrigger {
			sawTrigger = true
			assert.Equal(t, m.FreeSpinAward, out.FreeSpinsAwarded)
		} else {
			assert.Zero(t, out.FreeSpinsAwarded)
		}
	}
	assert.True(t, sawTrigger, "500 spins should produce at least one scatter trigger")
}
