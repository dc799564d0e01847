// Package api - WebSocket handler for live play and jackpot updates
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/akozlov/reelcore/internal/engine"
	"github.com/akozlov/reelcore/internal/ledger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// WSClient represents a WebSocket client connection
type WSClient struct {
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	accountID string
	closeOnce sync.Once
}

// shutdown signals both pumps to stop. The send channel is never
// closed; writers select on done instead, so a late jackpot tick or
// bet response cannot hit a closed channel.
func (c *WSClient) shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

// HandleWebSocket upgrades an authenticated connection and serves live
// bets, balance queries and jackpot pool updates over it.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	acct := accountFrom(r)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "err", err)
		return
	}

	client := &WSClient{
		conn:      conn,
		send:      make(chan []byte, 256),
		done:      make(chan struct{}),
		accountID: acct.ID,
	}

	go h.writePump(client)
	go h.readPump(client)
}

// writePump pumps messages from the send channel to the WebSocket
// connection and pushes periodic jackpot pool updates.
func (h *Handler) writePump(c *WSClient) {
	ping := time.NewTicker(30 * time.Second)
	pool := time.NewTicker(5 * time.Second)
	defer func() {
		ping.Stop()
		pool.Stop()
		c.shutdown()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)
			w.Close()

		case <-pool.C:
			h.sendMessage(c, "jackpot", map[string]interface{}{
				"pool": h.pool.Total(),
			})

		case <-ping.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump pumps messages from the WebSocket connection to the handler
func (h *Handler) readPump(c *WSClient) {
	defer c.shutdown()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	h.sendMessage(c, "connected", map[string]interface{}{
		"account_id": c.accountID,
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Warn("websocket read error", "err", err)
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			h.sendError(c, "INVALID_MESSAGE", "Invalid message format")
			continue
		}

		h.handleWSMessage(c, &msg)
	}
}

// handleWSMessage processes incoming WebSocket messages
func (h *Handler) handleWSMessage(c *WSClient, msg *WSMessage) {
	switch msg.Type {
	case "bet", "spin":
		h.handleBetMessage(c, msg)

	case "balance":
		balance, err := h.ledger.Balance(c.accountID)
		if err != nil {
			h.sendError(c, "BALANCE_ERROR", "Failed to get balance")
			return
		}
		h.sendMessage(c, "balance", map[string]interface{}{
			"balance":              balance,
			"free_spins_remaining": h.resolver.FreeSpinsRemaining(c.accountID),
		})

	case "jackpot":
		h.sendMessage(c, "jackpot", map[string]interface{}{
			"pool": h.pool.Total(),
		})

	case "ping":
		h.sendMessage(c, "pong", map[string]interface{}{
			"timestamp": time.Now().Unix(),
		})

	default:
		h.sendError(c, "UNKNOWN_MESSAGE", "Unknown message type: "+msg.Type)
	}
}

// handleBetMessage resolves a bet submitted over the socket.
func (h *Handler) handleBetMessage(c *WSClient, msg *WSMessage) {
	var req engine.BetRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		h.sendError(c, "INVALID_PAYLOAD", "Invalid bet payload")
		return
	}
	req.AccountID = c.accountID

	result, err := h.resolver.Resolve(context.Background(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInsufficientFunds):
			h.sendError(c, "INSUFFICIENT_FUNDS", "Insufficient funds")
		case errors.Is(err, engine.ErrInvalidBet):
			h.sendError(c, "INVALID_BET", err.Error())
		case errors.Is(err, engine.ErrNoFreeSpins):
			h.sendError(c, "NO_FREE_SPINS", "No free spins available")
		case errors.Is(err, engine.ErrGamingDisabled):
			h.sendError(c, "GAMING_DISABLED", "Gaming is temporarily disabled")
		default:
			h.sendError(c, "BET_ERROR", "Failed to resolve bet")
		}
		return
	}

	h.sendMessage(c, "outcome", result)
}

// sendMessage sends a message to the client
func (h *Handler) sendMessage(c *WSClient, msgType string, payload interface{}) {
	payloadBytes, _ := json.Marshal(payload)
	msg := WSMessage{
		Type:    msgType,
		Payload: payloadBytes,
	}
	msgBytes, _ := json.Marshal(msg)

	select {
	case <-c.done:
	case c.send <- msgBytes:
	default:
		// Channel full, drop message
	}
}

// sendError sends an error message to the client
func (h *Handler) sendError(c *WSClient, code, message string) {
	h.sendMessage(c, "error", map[string]string{
		"code":    code,
		"message": message,
	})
}
