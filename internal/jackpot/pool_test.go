package jackpot

import (
	"testing"

	"github.com/akozlov/reelcore/internal/rng"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSource feeds predetermined floats, cycling when exhausted.
type scriptedSource struct {
	floats []float64
	i      int
}

func (s *scriptedSource) Float64() (float64, error) {
	f := s.floats[s.i%len(s.floats)]
	s.i++
	return f, nil
}

func (s *scriptedSource) Int64n(max int64) (int64, error) {
	f, _ := s.Float64()
	return int64(f * float64(max)), nil
}

func TestTriggerProbabilityBoundaries(t *testing.T) {
	cfg := DefaultConfig(10_000)
	p := NewPool(cfg, 0)

	t.Run("SuperAtMaxBet", func(t *testing.T) {
		want := cfg.SuperBaseRate * (1 + cfg.SuperMaxScale)
		assert.InDelta(t, want, p.TriggerProbability(SuperTierName, cfg.MaxBet), 1e-12)
	})

	t.Run("SuperAtZeroBet", func(t *testing.T) {
		assert.InDelta(t, cfg.SuperBaseRate, p.TriggerProbability(SuperTierName, 0), 1e-12)
	})

	t.Run("LowerTierScaling", func(t *testing.T) {
		tier := cfg.Tiers[0]
		assert.InDelta(t, tier.BaseRate, p.TriggerProbability(tier.Name, 0), 1e-12)
		assert.InDelta(t, tier.BaseRate*(1+tier.MaxScale), p.TriggerProbability(tier.Name, cfg.MaxBet), 1e-12)
	})

	t.Run("BetAboveMaxClamps", func(t *testing.T) {
		assert.Equal(t,
			p.TriggerProbability(SuperTierName, cfg.MaxBet),
			p.TriggerProbability(SuperTierName, cfg.MaxBet*3))
	})
}

func TestSettleMissAccrues(t *testing.T) {
	p := NewPool(DefaultConfig(10_000), 0)

	// All draws at 0.999: nothing can trigger.
	src := &scriptedSource{floats: []float64{0.999}}

	hit, err := p.Settle(500, src)
	require.NoError(t, err)
	assert.Nil(t, hit)
	assert.Equal(t, int64(500), p.Total())

	hit, err = p.Settle(700, src)
	require.NoError(t, err)
	assert.Nil(t, hit)
	assert.Equal(t, int64(1200), p.Total())
}

func TestSettleSuperTier(t *testing.T) {
	cfg := DefaultConfig(10_000)

	t.Run("RequiresPoolFloor", func(t *testing.T) {
		p := NewPool(cfg, cfg.SuperFloor) // at the floor, not above
		src := &scriptedSource{floats: []float64{0}}

		hit, err := p.Settle(cfg.MaxBet, src)
		require.NoError(t, err)
		require.NotNil(t, hit)
		assert.NotEqual(t, SuperTierName, hit.Tier, "super must not fire at or below the floor")
	})

	t.Run("PaysFullPoolAtMaxBet", func(t *testing.T) {
		opening := cfg.SuperFloor + 50_000
		p := NewPool(cfg, opening)
		src := &scriptedSource{floats: []float64{0}}

		hit, err := p.Settle(cfg.MaxBet, src)
		require.NoError(t, err)
		require.NotNil(t, hit)
		assert.Equal(t, SuperTierName, hit.Tier)
		assert.Equal(t, opening, hit.Amount, "max bet takes 100%% of the pool")
		assert.Equal(t, int64(0), p.Total(), "super hit resets the pool")
	})

	t.Run("PaysHalfPoolAtMinimalBet", func(t *testing.T) {
		opening := cfg.SuperFloor + 50_000
		p := NewPool(cfg, opening)
		src := &scriptedSource{floats: []float64{0}}

		hit, err := p.Settle(1, src)
		require.NoError(t, err)
		require.NotNil(t, hit)
		assert.Equal(t, SuperTierName, hit.Tier)

		// Fraction is 0.5 + 0.5*ratio with ratio ~ 0.
		assert.InDelta(t, float64(opening)/2, float64(hit.Amount), float64(opening)/100)
		assert.Equal(t, int64(0), p.Total())
	})
}

func TestSettleLowerTierReward(t *testing.T) {
	cfg := DefaultConfig(10_000)
	p := NewPool(cfg, 0) // pool empty: super ineligible

	tier := cfg.Tiers[0]

	t.Run("RewardWithinScaledBand", func(t *testing.T) {
		for _, u := range []float64{0, 0.25, 0.5, 0.99} {
			// First tier triggers (draw 0), reward draw is u.
			src := &scriptedSource{floats: []float64{0.999, 0, u, 0.999, 0.999, 0.999, 0.999}}

			hit, err := p.Settle(cfg.MaxBet, src)
			require.NoError(t, err)
			require.NotNil(t, hit)
			assert.Equal(t, tier.Name, hit.Tier)
			assert.GreaterOrEqual(t, hit.Amount, tier.MinReward)
			assert.LessOrEqual(t, hit.Amount, tier.MaxReward)
		}
	})

	t.Run("SmallBetShrinksBand", func(t *testing.T) {
		// Smallest band: bounds scale by 1/RewardBands.
		src := &scriptedSource{floats: []float64{0.999, 0, 0.99, 0.999, 0.999, 0.999, 0.999}}

		hit, err := p.Settle(100, src)
		require.NoError(t, err)
		require.NotNil(t, hit)
		assert.Equal(t, tier.Name, hit.Tier)
		assert.LessOrEqual(t, hit.Amount, tier.MaxReward/int64(cfg.RewardBands)+1)
	})

	t.Run("TierHitDoesNotAccrue", func(t *testing.T) {
		before := p.Total()
		src := &scriptedSource{floats: []float64{0.999, 0, 0.5, 0.999, 0.999, 0.999, 0.999}}

		_, err := p.Settle(cfg.MaxBet, src)
		require.NoError(t, err)
		assert.Equal(t, before, p.Total())
	})
}

func TestSettleRejectsInvalidBet(t *testing.T) {
	p := NewPool(DefaultConfig(10_000), 0)
	_, err := p.Settle(0, rng.NewSeeded(1))
	assert.ErrorIs(t, err, ErrInvalidBet)
}
