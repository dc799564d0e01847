package engine

import (
	"fmt"

	"github.com/akozlov/reelcore/internal/domain"
	"github.com/akozlov/reelcore/internal/rng"
)

// SuitConfig is one outcome of a multi-outcome wheel game: its draw
// weight and the odds paid on a winning stake.
type SuitConfig struct {
	ID     string `yaml:"id"`
	Weight int64  `yaml:"weight"`
	Odds   int64  `yaml:"odds"`
}

// SuitsOutcome is the payload stored and returned for a wheel draw.
type SuitsOutcome struct {
	Drawn  string `json:"drawn"`
	Staked int64  `json:"staked"`
	Odds   int64  `json:"odds"`
}

// SuitsEngine is the multi-outcome game: the player stakes any subset
// of the suits, one suit is drawn by weight and only the stake on the
// drawn suit pays, at that suit's odds.
type SuitsEngine struct {
	game  domain.Game
	suits []SuitConfig
	total int64
}

// DefaultSuits keeps the weighted odds under unity expectation per suit.
func DefaultSuits() []SuitConfig {
	return []SuitConfig{
		{ID: "hearts", Weight: 30, Odds: 3},
		{ID: "diamonds", Weight: 30, Odds: 3},
		{ID: "clubs", Weight: 23, Odds: 4},
		{ID: "spades", Weight: 17, Odds: 5},
	}
}

func NewSuitsEngine(game domain.Game, suits []SuitConfig) (*SuitsEngine, error) {
	if len(suits) == 0 {
		return nil, fmt.Errorf("suits game requires at least one outcome")
	}
	var total int64
	for _, s := range suits {
		if s.Weight <= 0 || s.Odds <= 0 {
			return nil, fmt.Errorf("suit %q: weight and odds must be positive", s.ID)
		}
		total += s.Weight
	}
	return &SuitsEngine{game: game, suits: suits, total: total}, nil
}

func (e *SuitsEngine) Game() domain.Game { return e.game }

func (e *SuitsEngine) Validate(req *BetRequest) (int64, error) {
	if req.FreeSpin {
		return 0, fmt.Errorf("%w: free spins do not apply to %s", ErrInvalidBet, e.game.Type)
	}
	if len(req.SubBets) == 0 {
		return 0, fmt.Errorf("%w: at least one suit must be staked", ErrInvalidBet)
	}
	var total int64
	for id, amount := range req.SubBets {
		if e.suit(id) == nil {
			return 0, fmt.Errorf("%w: unknown suit %q", ErrInvalidBet, id)
		}
		if amount <= 0 {
			return 0, fmt.Errorf("%w: stake on %q must be positive", ErrInvalidBet, id)
		}
		total += amount
	}
	if total < e.game.MinBet || total > e.game.MaxBet {
		return 0, fmt.Errorf("%w: total stake %d outside [%d, %d]", ErrInvalidBet,
			total, e.game.MinBet, e.game.MaxBet)
	}
	return total, nil
}

func (e *SuitsEngine) Spin(req *BetRequest, paid bool, multiplier int64, src rng.Source) (*SpinOutcome, error) {
	n, err := src.Int64n(e.total)
	if err != nil {
		return nil, err
	}
	drawn := e.suits[len(e.suits)-1]
	var cum int64
	for _, s := range e.suits {
		cum += s.Weight
		if n < cum {
			drawn = s
			break
		}
	}

	staked := req.SubBets[drawn.ID]
	return &SpinOutcome{
		Payload:   &SuitsOutcome{Drawn: drawn.ID, Staked: staked, Odds: drawn.Odds},
		WinAmount: staked * drawn.Odds,
	}, nil
}

func (e *SuitsEngine) suit(id string) *SuitConfig {
	for i := range e.suits {
		if e.suits[i].ID == id {
			return &e.suits[i]
		}
	}
	return nil
}
