// Package sim runs return-to-player simulations against the slot math.
// It plays the full loop the engine plays in production, free spins and
// jackpot included, against an isolated ledgerless harness.
package sim

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"github.com/akozlov/reelcore/internal/jackpot"
	"github.com/akozlov/reelcore/internal/reel"
	"github.com/akozlov/reelcore/internal/rng"
)

// Options configures a simulation run.
type Options struct {
	Spins int
	Bet   int64
	Seed  int64
	// Progress, when set, is called after every batch of spins.
	Progress func(done, total int)
}

// Result aggregates a finished run.
type Result struct {
	Spins            int
	FreeSpins        int
	TotalBet         int64
	TotalWin         int64
	RTP              decimal.Decimal
	HitRate          float64
	WinStdDev        float64
	JackpotHits      int
	FreeSpinTriggers int
}

const progressBatch = 1000

// Run plays opts.Spins paid spins plus any free spins they trigger.
func Run(m *reel.Math, poolCfg jackpot.Config, opts Options) (*Result, error) {
	if opts.Spins <= 0 {
		return nil, fmt.Errorf("spins must be positive")
	}
	if opts.Bet <= 0 {
		return nil, fmt.Errorf("bet must be positive")
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid math: %w", err)
	}

	src := rng.NewSeeded(opts.Seed)
	pool := jackpot.NewPool(poolCfg, 0)
	lineUnit := opts.Bet / m.LineUnitDivisor

	res := &Result{}
	wins := make([]float64, 0, opts.Spins)
	pendingFree := 0

	paid := 0
	for paid < opts.Spins {
		free := pendingFree > 0
		if free {
			pendingFree--
			res.FreeSpins++
		} else {
			paid++
			res.TotalBet += opts.Bet
		}

		grid, err := reel.GenerateGrid(m, src)
		if err != nil {
			return nil, err
		}

		var spinWin int64
		lineWins := reel.Evaluate(m, grid)
		for _, w := range lineWins {
			spinWin += lineUnit * w.Multiplier
		}
		if free {
			spinWin *= m.FreeSpinMultiplier
		}

		if grid.ScatterCount(m.Scatter) >= m.ScatterTrigger {
			res.FreeSpinTriggers++
			if pendingFree += m.FreeSpinAward; pendingFree > m.FreeSpinCap {
				pendingFree = m.FreeSpinCap
			}
		}

		if !free {
			hit, err := pool.Settle(opts.Bet, src)
			if err != nil {
				return nil, err
			}
			if hit != nil {
				res.JackpotHits++
				spinWin += hit.Amount
			}
		}

		res.TotalWin += spinWin
		if len(lineWins) > 0 {
			res.HitRate++
		}
		wins = append(wins, float64(spinWin))

		if opts.Progress != nil && !free && paid%progressBatch == 0 {
			opts.Progress(paid, opts.Spins)
		}
	}
	if opts.Progress != nil {
		opts.Progress(opts.Spins, opts.Spins)
	}

	res.Spins = opts.Spins
	res.HitRate /= float64(len(wins))
	res.WinStdDev = stat.StdDev(wins, nil)
	res.RTP = decimal.NewFromInt(res.TotalWin).
		Div(decimal.NewFromInt(res.TotalBet)).
		Round(4)
	return res, nil
}
