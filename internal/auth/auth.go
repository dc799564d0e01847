// Package auth provides player registration and session management.
package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/akozlov/reelcore/internal/config"
	"github.com/akozlov/reelcore/internal/domain"
	"github.com/akozlov/reelcore/internal/ledger"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionExpired     = errors.New("session expired")
	ErrSessionNotFound    = errors.New("session not found")
	ErrUserExists         = errors.New("username already exists")
	ErrUserNotFound       = errors.New("user not found")
)

type session struct {
	id        string
	accountID string
	createdAt time.Time
	expiresAt time.Time
	revoked   bool
}

// Service provides authentication functionality. Accounts and sessions
// live in memory; the ledger is opened alongside registration so an
// authenticated account always has a balance.
type Service struct {
	mu       sync.RWMutex
	users    map[string]*domain.Account // keyed by username
	byID     map[string]*domain.Account
	sessions map[string]*session

	config  *config.AuthConfig
	ledger  *ledger.Ledger
	opening int64
}

// New creates a new auth service
func New(cfg *config.AuthConfig, led *ledger.Ledger, openingBalance int64) *Service {
	return &Service{
		users:    make(map[string]*domain.Account),
		byID:     make(map[string]*domain.Account),
		sessions: make(map[string]*session),
		config:   cfg,
		ledger:   led,
		opening:  openingBalance,
	}
}

// RegisterRequest contains registration data
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a new player account with the opening balance.
func (s *Service) Register(req *RegisterRequest) (*domain.Account, error) {
	if req.Username == "" || req.Password == "" {
		return nil, errors.New("username and password are required")
	}
	if len(req.Password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[req.Username]; ok {
		return nil, ErrUserExists
	}

	acct := &domain.Account{
		ID:           uuid.New().String(),
		Username:     req.Username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.ledger.Open(acct.ID, s.opening); err != nil {
		return nil, fmt.Errorf("failed to open ledger account: %w", err)
	}

	s.users[req.Username] = acct
	s.byID[acct.ID] = acct
	out := *acct
	return &out, nil
}

// LoginRequest contains login credentials
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse contains login result
type LoginResponse struct {
	Account *domain.Account `json:"account"`
	Token   string          `json:"token"`
}

// Login authenticates a player and issues a session token.
func (s *Service) Login(req *LoginRequest) (*LoginResponse, error) {
	s.mu.RLock()
	acct, ok := s.users[req.Username]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.createSession(acct)
	if err != nil {
		return nil, err
	}
	out := *acct
	return &LoginResponse{Account: &out, Token: token}, nil
}

// createSession issues a JWT bound to an in-memory session record.
func (s *Service) createSession(acct *domain.Account) (string, error) {
	now := time.Now().UTC()
	sess := &session{
		id:        uuid.New().String(),
		accountID: acct.ID,
		createdAt: now,
		expiresAt: now.Add(s.config.TokenExpiry),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"session_id": sess.id,
		"account_id": acct.ID,
		"username":   acct.Username,
		"exp":        sess.expiresAt.Unix(),
		"iat":        now.Unix(),
	})
	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	return signed, nil
}

// ValidateToken validates a JWT token and returns the account it
// belongs to.
func (s *Service) ValidateToken(tokenString string) (*domain.Account, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrSessionExpired
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrSessionExpired
	}
	sessionID, ok := claims["session_id"].(string)
	if !ok {
		return nil, ErrSessionExpired
	}

	s.mu.RLock()
	sess, found := s.sessions[sessionID]
	s.mu.RUnlock()
	if !found {
		return nil, ErrSessionNotFound
	}
	if sess.revoked || time.Now().After(sess.expiresAt) {
		return nil, ErrSessionExpired
	}

	return s.GetAccount(sess.accountID)
}

// RevokeToken revokes the session a token was issued for.
func (s *Service) RevokeToken(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return ErrSessionExpired
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ErrSessionExpired
	}
	sessionID, ok := claims["session_id"].(string)
	if !ok {
		return ErrSessionExpired
	}
	return s.Logout(sessionID)
}

// Logout revokes a session.
func (s *Service) Logout(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	sess.revoked = true
	return nil
}

// GetAccount retrieves an account by ID.
func (s *Service) GetAccount(accountID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, ok := s.byID[accountID]
	if !ok {
		return nil, ErrUserNotFound
	}
	out := *acct
	return &out, nil
}
