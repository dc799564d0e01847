package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akozlov/reelcore/internal/domain"
)

// scriptedInts replays a fixed sequence of Int64n draws.
type scriptedInts struct {
	vals []int64
	i    int
}

func (s *scriptedInts) Int64n(max int64) (int64, error) {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v % max, nil
}

func (s *scriptedInts) Float64() (float64, error) { return 0.99, nil }

func suitsGame() domain.Game {
	return domain.Game{ID: "g-suits", Name: "Four Suits", Type: "four-suits", MinBet: 10, MaxBet: 1000, Enabled: true}
}

func newSuits(t *testing.T) *SuitsEngine {
	t.Helper()
	e, err := NewSuitsEngine(suitsGame(), DefaultSuits())
	require.NoError(t, err)
	return e
}

func TestSuitsValidate(t *testing.T) {
	e := newSuits(t)

	t.Run("Valid", func(t *testing.T) {
		stake, err := e.Validate(&BetRequest{SubBets: map[string]int64{"hearts": 50, "spades": 30}})
		require.NoError(t, err)
		assert.Equal(t, int64(80), stake)
	})

	t.Run("EmptySubBets", func(t *testing.T) {
		_, err := e.Validate(&BetRequest{Amount: 100})
		assert.ErrorIs(t, err, ErrInvalidBet)
	})

	t.Run("UnknownSuit", func(t *testing.T) {
		_, err := e.Validate(&BetRequest{SubBets: map[string]int64{"stars": 50}})
		assert.ErrorIs(t, err, ErrInvalidBet)
	})

	t.Run("NonPositiveStake", func(t *testing.T) {
		_, err := e.Validate(&BetRequest{SubBets: map[string]int64{"hearts": 0}})
		assert.ErrorIs(t, err, ErrInvalidBet)
	})

	t.Run("TotalOutsideRange", func(t *testing.T) {
		_, err := e.Validate(&BetRequest{SubBets: map[string]int64{"hearts": 5}})
		assert.ErrorIs(t, err, ErrInvalidBet)

		_, err = e.Validate(&BetRequest{SubBets: map[string]int64{"hearts": 600, "clubs": 600}})
		assert.ErrorIs(t, err, ErrInvalidBet)
	})

	t.Run("FreeSpinRejected", func(t *testing.T) {
		_, err := e.Validate(&BetRequest{SubBets: map[string]int64{"hearts": 50}, FreeSpin: true})
		assert.ErrorIs(t, err, ErrInvalidBet)
	})
}

func TestSuitsDrawBoundaries(t *testing.T) {
	e := newSuits(t)
	req := &BetRequest{SubBets: map[string]int64{"hearts": 10, "diamonds": 10, "clubs": 10, "spades": 10}}

	// Cumulative weights: hearts 30, diamonds 60, clubs 83, spades 100.
	cases := []struct {
		draw int64
		want string
		odds int64
	}{
		{0, "hearts", 3},
		{29, "hearts", 3},
		{30, "diamonds", 3},
		{59, "diamonds", 3},
		{60, "clubs", 4},
		{82, "clubs", 4},
		{83, "spades", 5},
		{99, "spades", 5},
	}
	for _, tc := range cases {
		out, err := e.Spin(req, true, 1, &scriptedInts{vals: []int64{tc.draw}})
		require.NoError(t, err)

		payload := out.Payload.(*SuitsOutcome)
		assert.Equal(t, tc.want, payload.Drawn, "draw %d", tc.draw)
		assert.Equal(t, int64(10)*tc.odds, out.WinAmount, "draw %d", tc.draw)
	}
}

func TestSuitsUnstakedDrawPaysNothing(t *testing.T) {
	e := newSuits(t)
	req := &BetRequest{SubBets: map[string]int64{"hearts": 100}}

	out, err := e.Spin(req, true, 1, &scriptedInts{vals: []int64{99}})
	require.NoError(t, err)

	assert.Equal(t, "spades", out.Payload.(*SuitsOutcome).Drawn)
	assert.Zero(t, out.WinAmount)
}

func TestNewSuitsEngineRejectsBadConfig(t *testing.T) {
	_, err := NewSuitsEngine(suitsGame(), nil)
	assert.Error(t, err)

	_, err = NewSuitsEngine(suitsGame(), []SuitConfig{{ID: "hearts", Weight: 0, Odds: 3}})
	assert.Error(t, err)
}
