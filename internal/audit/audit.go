// Package audit records significant events: jackpot hits, large wins,
// ledger consistency failures. Events go to the structured log and,
// when configured, to a NATS subject for downstream consumers.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/akozlov/reelcore/internal/domain"
)

// Event types.
const (
	EventBetResolved        = "bet.resolved"
	EventBetRejected        = "bet.rejected"
	EventLargeWin           = "win.large"
	EventJackpotHit         = "jackpot.hit"
	EventLedgerInconsistent = "ledger.inconsistent"
	EventRecordWriteFailed  = "record.write_failed"
	EventGamingDisabled     = "gaming.disabled"
	EventGamingEnabled      = "gaming.enabled"
)

// Event is one significant event.
type Event struct {
	ID        string               `json:"id"`
	Type      string               `json:"type"`
	Severity  domain.EventSeverity `json:"severity"`
	Timestamp time.Time            `json:"timestamp"`
	AccountID string               `json:"account_id,omitempty"`
	Message   string               `json:"message"`
	Data      map[string]any       `json:"data,omitempty"`
}

// Service logs events and optionally publishes them to NATS. A nil
// *Service is usable and drops everything, so callers never need a nil
// check.
type Service struct {
	log     *slog.Logger
	nc      *nats.Conn
	subject string
}

// New creates an audit service. natsURL may be empty, in which case
// events only reach the log.
func New(log *slog.Logger, natsURL, subject string) (*Service, error) {
	s := &Service{log: log, subject: subject}
	if natsURL != "" {
		nc, err := nats.Connect(natsURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		s.nc = nc
	}
	return s, nil
}

// Log records one event. Publication failures are logged, never
// propagated.
func (s *Service) Log(eventType string, severity domain.EventSeverity, accountID, message string, data map[string]any) {
	if s == nil {
		return
	}

	ev := Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Severity:  severity,
		Timestamp: time.Now().UTC(),
		AccountID: accountID,
		Message:   message,
		Data:      data,
	}

	level := slog.LevelInfo
	switch severity {
	case domain.SeverityWarning:
		level = slog.LevelWarn
	case domain.SeverityError, domain.SeverityCritical:
		level = slog.LevelError
	}
	s.log.Log(context.Background(), level, message,
		"event", ev.Type, "event_id", ev.ID, "account_id", ev.AccountID, "data", ev.Data)

	if s.nc != nil {
		payload, err := json.Marshal(ev)
		if err != nil {
			s.log.Error("failed to encode audit event", "err", err)
			return
		}
		if err := s.nc.Publish(s.subject, payload); err != nil {
			s.log.Error("failed to publish audit event", "err", err, "event", ev.Type)
		}
	}
}

// Close drains the NATS connection if one exists.
func (s *Service) Close() {
	if s != nil && s.nc != nil {
		s.nc.Close()
	}
}
