// Package api provides the HTTP surface of the gaming engine.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/akozlov/reelcore/internal/audit"
	"github.com/akozlov/reelcore/internal/auth"
	"github.com/akozlov/reelcore/internal/control"
	"github.com/akozlov/reelcore/internal/domain"
	"github.com/akozlov/reelcore/internal/engine"
	"github.com/akozlov/reelcore/internal/jackpot"
	"github.com/akozlov/reelcore/internal/ledger"
	"github.com/akozlov/reelcore/internal/record"
	"github.com/akozlov/reelcore/internal/rng"
)

// Handler contains all HTTP handlers
type Handler struct {
	log      *slog.Logger
	auth     *auth.Service
	ledger   *ledger.Ledger
	records  record.Store
	resolver *engine.Resolver
	pool     *jackpot.Pool
	gate     *control.Switch
	audit    *audit.Service
	rngSrc   rng.Source
}

// New creates a new API handler
func New(log *slog.Logger, authSvc *auth.Service, led *ledger.Ledger, records record.Store,
	resolver *engine.Resolver, pool *jackpot.Pool, gate *control.Switch,
	auditSvc *audit.Service, src rng.Source) *Handler {
	return &Handler{
		log:      log,
		auth:     authSvc,
		ledger:   led,
		records:  records,
		resolver: resolver,
		pool:     pool,
		gate:     gate,
		audit:    auditSvc,
		rngSrc:   src,
	}
}

// Response helpers

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
	})
}

// === Health & Info ===

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	rngHealth, _ := rng.HealthCheck(h.rngSrc, 10_000, 16)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "healthy",
		"gaming":     h.gate.Status(),
		"rng_status": rngHealth,
	})
}

// ServerInfo handles GET /
func (h *Handler) ServerInfo(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"name":        "reelcore",
		"version":     "1.0.0",
		"description": "Casino game outcome and payout engine",
	})
}

// === Authentication ===

// Register handles POST /api/v1/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	acct, err := h.auth.Register(&req)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			respondError(w, http.StatusConflict, "USER_EXISTS", "Username already exists")
		default:
			respondError(w, http.StatusBadRequest, "REGISTRATION_FAILED", err.Error())
		}
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"account_id": acct.ID,
		"username":   acct.Username,
		"message":    "Registration successful",
	})
}

// Login handles POST /api/v1/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	result, err := h.auth.Login(&req)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			respondError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password")
		default:
			respondError(w, http.StatusInternalServerError, "LOGIN_FAILED", "Login failed")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token": result.Token,
		"account": map[string]interface{}{
			"id":       result.Account.ID,
			"username": result.Account.Username,
		},
	})
}

// Logout handles POST /api/v1/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.RevokeToken(bearerToken(r)); err != nil {
		respondError(w, http.StatusInternalServerError, "LOGOUT_FAILED", "Logout failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Logged out successfully",
	})
}

// GetSession handles GET /api/v1/auth/session
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	acct := accountFrom(r)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"account": map[string]interface{}{
			"id":         acct.ID,
			"username":   acct.Username,
			"created_at": acct.CreatedAt,
		},
	})
}

// === Wallet ===

// GetBalance handles GET /api/v1/wallet/balance
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	acct := accountFrom(r)

	balance, err := h.ledger.Balance(acct.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "BALANCE_ERROR", "Failed to get balance")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"balance":              balance,
		"free_spins_remaining": h.resolver.FreeSpinsRemaining(acct.ID),
	})
}

// Deposit handles POST /api/v1/wallet/deposit
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	acct := accountFrom(r)

	var req struct {
		Amount int64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if req.Amount <= 0 {
		respondError(w, http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be positive")
		return
	}

	balance, err := h.ledger.Credit(acct.ID, req.Amount)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DEPOSIT_FAILED", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"amount":        req.Amount,
		"balance_after": balance,
	})
}

// GetRecords handles GET /api/v1/wallet/records
func (h *Handler) GetRecords(w http.ResponseWriter, r *http.Request) {
	acct := accountFrom(r)

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	records, err := h.records.ListByAccount(r.Context(), acct.ID, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "RECORDS_ERROR", "Failed to get game records")
		return
	}

	respondJSON(w, http.StatusOK, records)
}

// === Games ===

// GetGames handles GET /api/v1/games
func (h *Handler) GetGames(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.resolver.Games())
}

// ResolveBet handles POST /api/v1/games/bet
func (h *Handler) ResolveBet(w http.ResponseWriter, r *http.Request) {
	acct := accountFrom(r)

	var req engine.BetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	// The authenticated account always bets for itself.
	req.AccountID = acct.ID

	result, err := h.resolver.Resolve(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrUnknownGame):
			respondError(w, http.StatusNotFound, "GAME_NOT_FOUND", "Game not found")
		case errors.Is(err, engine.ErrGameDisabled):
			respondError(w, http.StatusBadRequest, "GAME_DISABLED", "Game is currently disabled")
		case errors.Is(err, engine.ErrGamingDisabled):
			respondError(w, http.StatusServiceUnavailable, "GAMING_DISABLED", "Gaming is temporarily disabled")
		case errors.Is(err, engine.ErrInvalidBet):
			respondError(w, http.StatusBadRequest, "INVALID_BET", err.Error())
		case errors.Is(err, engine.ErrNoFreeSpins):
			respondError(w, http.StatusBadRequest, "NO_FREE_SPINS", "No free spins available")
		case errors.Is(err, ledger.ErrInsufficientFunds):
			respondError(w, http.StatusBadRequest, "INSUFFICIENT_FUNDS", "Insufficient funds")
		case errors.Is(err, engine.ErrLedgerConsistency):
			// Distinguishable code: this case needs manual reconciliation.
			respondError(w, http.StatusInternalServerError, "LEDGER_INCONSISTENCY", "Bet settled inconsistently, support has been notified")
		default:
			respondError(w, http.StatusInternalServerError, "BET_ERROR", "Failed to resolve bet")
		}
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetJackpot handles GET /api/v1/jackpot
func (h *Handler) GetJackpot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"pool": h.pool.Total(),
	})
}

// === Admin ===

// DisableGaming handles POST /api/v1/admin/gaming/disable
func (h *Handler) DisableGaming(w http.ResponseWriter, r *http.Request) {
	acct := accountFrom(r)

	var req struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	h.gate.Disable(acct.Username, req.Reason)
	h.audit.Log(audit.EventGamingDisabled, domain.SeverityWarning, acct.ID,
		"gaming disabled", map[string]any{"reason": req.Reason})

	respondJSON(w, http.StatusOK, h.gate.Status())
}

// EnableGaming handles POST /api/v1/admin/gaming/enable
func (h *Handler) EnableGaming(w http.ResponseWriter, r *http.Request) {
	acct := accountFrom(r)

	h.gate.Enable()
	h.audit.Log(audit.EventGamingEnabled, domain.SeverityInfo, acct.ID, "gaming enabled", nil)

	respondJSON(w, http.StatusOK, h.gate.Status())
}
