package engine

import (
	"fmt"

	"github.com/akozlov/reelcore/internal/domain"
	"github.com/akozlov/reelcore/internal/jackpot"
	"github.com/akozlov/reelcore/internal/reel"
	"github.com/akozlov/reelcore/internal/rng"
)

// SlotOutcome is the payload stored and returned for a slot spin.
type SlotOutcome struct {
	Grid         [][]reel.Symbol `json:"grid"`
	Wins         []reel.LineWin  `json:"wins,omitempty"`
	ScatterCount int             `json:"scatter_count"`
	BaseWin      int64           `json:"base_win"`
	Multiplier   int64           `json:"multiplier"`
	Jackpot      *jackpot.Hit    `json:"jackpot,omitempty"`
}

// SlotEngine is the reel game: weighted grid generation, payline
// evaluation, scatter-triggered free spins and the progressive jackpot.
type SlotEngine struct {
	game domain.Game
	math *reel.Math
	pool *jackpot.Pool
}

func NewSlotEngine(game domain.Game, m *reel.Math, pool *jackpot.Pool) *SlotEngine {
	return &SlotEngine{game: game, math: m, pool: pool}
}

func (e *SlotEngine) Game() domain.Game { return e.game }

// Pool exposes the jackpot pool for reporting.
func (e *SlotEngine) Pool() *jackpot.Pool { return e.pool }

func (e *SlotEngine) Validate(req *BetRequest) (int64, error) {
	if len(req.SubBets) != 0 {
		return 0, fmt.Errorf("%w: slot bets carry a single amount", ErrInvalidBet)
	}
	if req.Amount < e.game.MinBet || req.Amount > e.game.MaxBet {
		return 0, fmt.Errorf("%w: amount %d outside [%d, %d]", ErrInvalidBet,
			req.Amount, e.game.MinBet, e.game.MaxBet)
	}
	return req.Amount, nil
}

func (e *SlotEngine) Spin(req *BetRequest, paid bool, multiplier int64, src rng.Source) (*SpinOutcome, error) {
	grid, err := reel.GenerateGrid(e.math, src)
	if err != nil {
		return nil, err
	}

	wins := reel.Evaluate(e.math, grid)
	lineUnit := req.Amount / e.math.LineUnitDivisor
	var base int64
	for _, w := range wins {
		base += lineUnit * w.Multiplier
	}
	win := base * multiplier

	scatters := grid.ScatterCount(e.math.Scatter)
	awarded := 0
	if scatters >= e.math.ScatterTrigger {
		awarded = e.math.FreeSpinAward
	}

	out := &SpinOutcome{
		Payload: &SlotOutcome{
			Grid:         grid.RowMajor(),
			Wins:         wins,
			ScatterCount: scatters,
			BaseWin:      base,
			Multiplier:   multiplier,
		},
		Wins:             wins,
		WinAmount:        win,
		FreeSpinsAwarded: awarded,
	}

	// Free spins ride on a past stake, so only paid spins touch the pool.
	if paid && e.pool != nil {
		hit, err := e.pool.Settle(req.Amount, src)
		if err != nil {
			return nil, err
		}
		if hit != nil {
			out.Jackpot = hit
			out.WinAmount += hit.Amount
			out.Payload.(*SlotOutcome).Jackpot = hit
		}
	}
	return out, nil
}
