// Package jackpot implements the tiered progressive jackpot pool: a
// process-wide accumulator fed by losing paid spins and drained by tier
// hits. The top ("super") tier pays a bet-scaled fraction of the pool and
// resets it; lower tiers pay from bet-banded fixed ranges.
package jackpot

import (
	"errors"
	"fmt"
	"sync"

	"github.com/akozlov/reelcore/internal/rng"
)

var ErrInvalidBet = errors.New("bet amount must be positive")

// TierConfig describes one fixed-range jackpot tier. The trigger
// probability at bet b is BaseRate*(1+MaxScale*b/maxBet), so BaseRate
// applies unscaled at bet zero and BaseRate*(1+MaxScale) at max bet.
type TierConfig struct {
	Name      string  `yaml:"name"`
	BaseRate  float64 `yaml:"base_rate"`
	MaxScale  float64 `yaml:"max_scale"`
	MinReward int64   `yaml:"min_reward"`
	MaxReward int64   `yaml:"max_reward"`
}

// Config holds the full jackpot configuration.
type Config struct {
	MaxBet int64 `yaml:"max_bet"`

	// Super tier: eligible only while the pool exceeds SuperFloor; pays
	// 50-100% of the pool scaled by bet ratio and resets it.
	SuperFloor    int64   `yaml:"super_floor"`
	SuperBaseRate float64 `yaml:"super_base_rate"`
	SuperMaxScale float64 `yaml:"super_max_scale"`

	// Lower tiers, checked in order; first hit wins.
	Tiers []TierConfig `yaml:"tiers"`

	// RewardBands is the number of discrete bet-size bands used to scale
	// lower-tier reward ranges.
	RewardBands int `yaml:"reward_bands"`
}

// DefaultConfig returns the built-in three-tier configuration.
func DefaultConfig(maxBet int64) Config {
	return Config{
		MaxBet:        maxBet,
		SuperFloor:    100_000,
		SuperBaseRate: 0.0001,
		SuperMaxScale: 9,
		Tiers: []TierConfig{
			{Name: "major", BaseRate: 0.0005, MaxScale: 4, MinReward: 5_000, MaxReward: 50_000},
			{Name: "minor", BaseRate: 0.002, MaxScale: 3, MinReward: 1_000, MaxReward: 10_000},
			{Name: "mini", BaseRate: 0.01, MaxScale: 2, MinReward: 100, MaxReward: 2_000},
		},
		RewardBands: 4,
	}
}

// SuperTierName identifies the pool-draining top tier.
const SuperTierName = "super"

// Hit reports a jackpot award.
type Hit struct {
	Tier   string `json:"tier"`
	Amount int64  `json:"amount"`
}

// Pool is the process-wide progressive accumulator. It is shared across
// all accounts and game types; updates are O(1) under a single mutex.
type Pool struct {
	mu    sync.Mutex
	total int64
	cfg   Config
}

// NewPool creates a pool with the given configuration and opening total.
func NewPool(cfg Config, opening int64) *Pool {
	return &Pool{cfg: cfg, total: opening}
}

// Total returns the current pool total.
func (p *Pool) Total() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}

// Accrue adds a losing spin's bet into the pool.
func (p *Pool) Accrue(amount int64) {
	if amount <= 0 {
		return
	}
	p.mu.Lock()
	p.total += amount
	p.mu.Unlock()
}

// draws holds every random number a settlement can need, taken before
// the pool lock so no RNG call happens inside the critical section.
type draws struct {
	super   float64
	tiers   []float64
	rewards []float64
}

// Settle evaluates the jackpot for one paid spin of the given bet. On a
// tier hit it returns the award (consuming pool funds for the super
// tier); on a miss it accrues the bet into the pool and returns nil.
func (p *Pool) Settle(bet int64, src rng.Source) (*Hit, error) {
	if bet <= 0 {
		return nil, ErrInvalidBet
	}

	d, err := p.draw(src)
	if err != nil {
		return nil, err
	}

	ratio := p.betRatio(bet)

	p.mu.Lock()
	defer p.mu.Unlock()

	// Super tier: pool must exceed the floor before it becomes winnable.
	if p.total > p.cfg.SuperFloor {
		if d.super < scaledRate(p.cfg.SuperBaseRate, p.cfg.SuperMaxScale, ratio) {
			// Reward fraction runs 50% at minimal bets up to 100% of
			// the pool at max bet.
			fraction := 0.5 + 0.5*ratio
			amount := int64(float64(p.total) * fraction)
			if amount > p.total {
				amount = p.total
			}
			p.total = 0
			return &Hit{Tier: SuperTierName, Amount: amount}, nil
		}
	}

	for i, tier := range p.cfg.Tiers {
		if d.tiers[i] >= scaledRate(tier.BaseRate, tier.MaxScale, ratio) {
			continue
		}
		return &Hit{Tier: tier.Name, Amount: p.tierReward(tier, bet, d.rewards[i])}, nil
	}

	// No hit: the bet accrues.
	p.total += bet
	return nil, nil
}

// draw takes every random number a settlement might need.
func (p *Pool) draw(src rng.Source) (*draws, error) {
	d := &draws{
		tiers:   make([]float64, len(p.cfg.Tiers)),
		rewards: make([]float64, len(p.cfg.Tiers)),
	}

	var err error
	if d.super, err = src.Float64(); err != nil {
		return nil, fmt.Errorf("failed to draw jackpot randomness: %w", err)
	}
	for i := range p.cfg.Tiers {
		if d.tiers[i], err = src.Float64(); err != nil {
			return nil, fmt.Errorf("failed to draw jackpot randomness: %w", err)
		}
		if d.rewards[i], err = src.Float64(); err != nil {
			return nil, fmt.Errorf("failed to draw jackpot randomness: %w", err)
		}
	}
	return d, nil
}

// betRatio clamps bet/maxBet to [0,1].
func (p *Pool) betRatio(bet int64) float64 {
	if p.cfg.MaxBet <= 0 {
		return 1
	}
	r := float64(bet) / float64(p.cfg.MaxBet)
	if r > 1 {
		r = 1
	}
	return r
}

// scaledRate is the tier trigger probability at the given bet ratio.
func scaledRate(base, maxScale, ratio float64) float64 {
	return base * (1 + maxScale*ratio)
}

// tierReward draws a uniform reward from the tier's range, with bounds
// scaled by the discrete bet band the bet falls into. The band never
// lifts the upper bound past the tier's configured maximum.
func (p *Pool) tierReward(tier TierConfig, bet int64, u float64) int64 {
	bands := p.cfg.RewardBands
	if bands < 1 {
		bands = 1
	}

	// Band k for bets in ((k-1)/bands, k/bands] of max bet.
	band := 1
	for k := 1; k <= bands; k++ {
		if float64(bet) <= float64(p.cfg.MaxBet)*float64(k)/float64(bands) {
			band = k
			break
		}
		band = bands
	}

	scale := float64(band) / float64(bands)
	lo := int64(float64(tier.MinReward) * scale)
	hi := int64(float64(tier.MaxReward) * scale)
	if lo < 1 {
		lo = 1
	}
	if hi > tier.MaxReward {
		hi = tier.MaxReward
	}
	if hi <= lo {
		return lo
	}
	return lo + int64(u*float64(hi-lo+1))
}

// TriggerProbability exposes the scaled trigger rate for a named tier at
// a bet amount. Used by monitoring and tests.
func (p *Pool) TriggerProbability(name string, bet int64) float64 {
	ratio := p.betRatio(bet)
	if name == SuperTierName {
		return scaledRate(p.cfg.SuperBaseRate, p.cfg.SuperMaxScale, ratio)
	}
	for _, t := range p.cfg.Tiers {
		if t.Name == name {
			return scaledRate(t.BaseRate, t.MaxScale, ratio)
		}
	}
	return 0
}
