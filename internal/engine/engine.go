// Package engine resolves bets: it validates the request, performs the
// ledger debit, runs the game's outcome computation, credits winnings
// and appends the audit record. One OutcomeEngine exists per game type;
// the Resolver composes them with the shared ledger and bookkeeping.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/akozlov/reelcore/internal/audit"
	"github.com/akozlov/reelcore/internal/control"
	"github.com/akozlov/reelcore/internal/domain"
	"github.com/akozlov/reelcore/internal/freespin"
	"github.com/akozlov/reelcore/internal/jackpot"
	"github.com/akozlov/reelcore/internal/ledger"
	"github.com/akozlov/reelcore/internal/record"
	"github.com/akozlov/reelcore/internal/reel"
	"github.com/akozlov/reelcore/internal/rng"
)

var (
	ErrUnknownGame    = errors.New("unknown game type")
	ErrGameDisabled   = errors.New("game is disabled")
	ErrGamingDisabled = errors.New("gaming is disabled")
	ErrInvalidBet     = errors.New("invalid bet")
	ErrNoFreeSpins    = errors.New("no free spins available")

	// ErrLedgerConsistency marks the fatal case: a debit committed but
	// the matching credit failed, leaving the account short. It must
	// never be masked behind a generic error.
	ErrLedgerConsistency = errors.New("ledger inconsistency: debit committed but credit failed")
)

// BetRequest is one bet to resolve. Amount carries the stake for
// single-outcome games; SubBets carries per-outcome stakes for
// multi-outcome games (Amount is ignored there).
type BetRequest struct {
	AccountID string           `json:"account_id"`
	GameType  string           `json:"game_type"`
	Amount    int64            `json:"amount"`
	SubBets   map[string]int64 `json:"sub_bets,omitempty"`
	FreeSpin  bool             `json:"free_spin,omitempty"`
}

// SpinOutcome is what an OutcomeEngine computes for one spin. It is pure
// output: no ledger state has been touched when it is produced.
type SpinOutcome struct {
	Payload          any
	Wins             []reel.LineWin
	Jackpot          *jackpot.Hit
	WinAmount        int64
	FreeSpinsAwarded int
}

// OutcomeEngine computes outcomes for one game type.
type OutcomeEngine interface {
	Game() domain.Game
	// Validate checks the bet shape and returns the total stake.
	Validate(req *BetRequest) (int64, error)
	// Spin computes the outcome. paid gates jackpot participation;
	// multiplier scales line wins (1 on paid spins).
	Spin(req *BetRequest, paid bool, multiplier int64, src rng.Source) (*SpinOutcome, error)
}

// BetResult is the response for a resolved bet.
type BetResult struct {
	RecordID           string         `json:"record_id"`
	GameType           string         `json:"game_type"`
	Outcome            any            `json:"outcome"`
	Wins               []reel.LineWin `json:"wins,omitempty"`
	Jackpot            *jackpot.Hit   `json:"jackpot,omitempty"`
	BetAmount          int64          `json:"bet_amount"`
	WinAmount          int64          `json:"win_amount"`
	NewBalance         int64          `json:"new_balance"`
	FreeSpin           bool           `json:"free_spin"`
	FreeSpinsAwarded   int            `json:"free_spins_awarded,omitempty"`
	FreeSpinsRemaining int            `json:"free_spins_remaining"`
}

// Resolver dispatches bets to game engines and owns the resolve
// composition around the ledger.
type Resolver struct {
	ledger    *ledger.Ledger
	records   record.Store
	audit     *audit.Service
	gate      *control.Switch
	freespins *freespin.Tracker
	src       rng.Source
	log       *slog.Logger
	games     map[string]OutcomeEngine

	largeWinThreshold int64
}

// NewResolver wires the resolver. All collaborators are injected so
// tests can substitute in-memory fakes.
func NewResolver(led *ledger.Ledger, records record.Store, auditSvc *audit.Service,
	gate *control.Switch, spins *freespin.Tracker, src rng.Source, log *slog.Logger) *Resolver {
	return &Resolver{
		ledger:            led,
		records:           records,
		audit:             auditSvc,
		gate:              gate,
		freespins:         spins,
		src:               src,
		log:               log,
		games:             make(map[string]OutcomeEngine),
		largeWinThreshold: 100_000,
	}
}

// Register adds a game engine.
func (r *Resolver) Register(e OutcomeEngine) {
	r.games[e.Game().Type] = e
}

// Games lists the registered games.
func (r *Resolver) Games() []domain.Game {
	out := make([]domain.Game, 0, len(r.games))
	for _, e := range r.games {
		out = append(out, e.Game())
	}
	return out
}

// FreeSpinsRemaining reports an account's free-spin entitlement.
func (r *Resolver) FreeSpinsRemaining(accountID string) int {
	return r.freespins.Remaining(accountID)
}

// Resolve runs one bet end to end. Validation and funds failures are
// clean rejections with no side effects beyond the rejection record.
func (r *Resolver) Resolve(ctx context.Context, req *BetRequest) (*BetResult, error) {
	if !r.gate.Enabled() {
		return nil, ErrGamingDisabled
	}

	eng, ok := r.games[req.GameType]
	if !ok {
		return nil, ErrUnknownGame
	}
	game := eng.Game()
	if !game.Enabled {
		return nil, ErrGameDisabled
	}

	stake, err := eng.Validate(req)
	if err != nil {
		return nil, err
	}

	paid := !req.FreeSpin
	multiplier := int64(1)
	var balanceBefore int64

	if paid {
		newBal, err := r.ledger.TryDebit(req.AccountID, stake)
		if err != nil {
			if errors.Is(err, ledger.ErrInsufficientFunds) {
				r.writeRecord(ctx, rejectionRecord(req, game.Type, stake, newBal))
				r.audit.Log(audit.EventBetRejected, domain.SeverityInfo, req.AccountID,
					"bet rejected: insufficient funds", map[string]any{"stake": stake, "balance": newBal})
			}
			return nil, err
		}
		balanceBefore = newBal + stake
	} else {
		st, ok := r.freespins.Consume(req.AccountID)
		if !ok {
			return nil, ErrNoFreeSpins
		}
		multiplier = st.Multiplier
		if balanceBefore, err = r.ledger.Balance(req.AccountID); err != nil {
			return nil, err
		}
	}

	out, err := eng.Spin(req, paid, multiplier, r.src)
	if err != nil {
		// The outcome never existed, so the stake goes back — the cash
		// stake on a paid spin, the consumed entitlement on a free one.
		if paid {
			if _, cerr := r.ledger.Credit(req.AccountID, stake); cerr != nil {
				r.fatalInconsistency(req.AccountID, stake, cerr)
				return nil, fmt.Errorf("%w: %v", ErrLedgerConsistency, cerr)
			}
		} else {
			r.freespins.Award(req.AccountID, 1)
		}
		return nil, fmt.Errorf("failed to generate outcome: %w", err)
	}

	newBalance, err := r.ledger.Credit(req.AccountID, out.WinAmount)
	if err != nil {
		// The account is debited without its winnings: surface loudly,
		// never downgrade to a generic failure.
		r.fatalInconsistency(req.AccountID, out.WinAmount, err)
		return nil, fmt.Errorf("%w: %v", ErrLedgerConsistency, err)
	}

	awarded := out.FreeSpinsAwarded
	if awarded > 0 {
		r.freespins.Award(req.AccountID, awarded)
	}
	remaining := r.freespins.Remaining(req.AccountID)

	rec := &domain.GameRecord{
		ID:            uuid.New().String(),
		AccountID:     req.AccountID,
		GameType:      game.Type,
		BetAmount:     stake,
		WinAmount:     out.WinAmount,
		BalanceBefore: balanceBefore,
		BalanceAfter:  newBalance,
		FreeSpin:      !paid,
		CreatedAt:     time.Now().UTC(),
	}
	if out.Jackpot != nil {
		rec.JackpotTier = out.Jackpot.Tier
	}
	if payload, err := json.Marshal(out.Payload); err == nil {
		rec.Outcome = payload
	}
	r.writeRecord(ctx, rec)

	if out.Jackpot != nil {
		r.audit.Log(audit.EventJackpotHit, domain.SeverityWarning, req.AccountID,
			fmt.Sprintf("jackpot hit: %s", out.Jackpot.Tier),
			map[string]any{"tier": out.Jackpot.Tier, "amount": out.Jackpot.Amount})
	}
	if out.WinAmount >= r.largeWinThreshold {
		r.audit.Log(audit.EventLargeWin, domain.SeverityInfo, req.AccountID,
			"large win", map[string]any{"win": out.WinAmount, "stake": stake})
	}

	return &BetResult{
		RecordID:           rec.ID,
		GameType:           game.Type,
		Outcome:            out.Payload,
		Wins:               out.Wins,
		Jackpot:            out.Jackpot,
		BetAmount:          stake,
		WinAmount:          out.WinAmount,
		NewBalance:         newBalance,
		FreeSpin:           !paid,
		FreeSpinsAwarded:   awarded,
		FreeSpinsRemaining: remaining,
	}, nil
}

// writeRecord appends best-effort: a failed write is audited and logged
// but never affects the resolution.
func (r *Resolver) writeRecord(ctx context.Context, rec *domain.GameRecord) {
	if err := r.records.Append(ctx, rec); err != nil {
		r.log.Warn("failed to append game record", "err", err, "record_id", rec.ID, "account_id", rec.AccountID)
		r.audit.Log(audit.EventRecordWriteFailed, domain.SeverityWarning, rec.AccountID,
			"game record write failed", map[string]any{"record_id": rec.ID, "err": err.Error()})
	}
}

func (r *Resolver) fatalInconsistency(accountID string, amount int64, err error) {
	r.log.Error("ledger inconsistency: credit failed after committed debit",
		"err", err, "account_id", accountID, "amount", amount)
	r.audit.Log(audit.EventLedgerInconsistent, domain.SeverityCritical, accountID,
		"credit failed after committed debit", map[string]any{"amount": amount, "err": err.Error()})
}

func rejectionRecord(req *BetRequest, gameType string, stake, balance int64) *domain.GameRecord {
	return &domain.GameRecord{
		ID:            uuid.New().String(),
		AccountID:     req.AccountID,
		GameType:      gameType,
		BetAmount:     stake,
		BalanceBefore: balance,
		BalanceAfter:  balance,
		Rejected:      true,
		CreatedAt:     time.Now().UTC(),
	}
}
