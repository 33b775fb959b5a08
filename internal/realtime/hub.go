package realtime

import (
	"errors"
	"log"
	"sync"

	"artspace/internal/model"
)

// ErrNotRunning is returned when an operation is attempted on a stopped hub.
var ErrNotRunning = errors.New("realtime hub is not running")

const (
	// sessionBufferSize is the per-session outbound channel capacity.
	// When a session's buffer is full the message is dropped for that
	// session; the notification stays in the ledger either way.
	sessionBufferSize = 16
)

// Session is a single subscriber connection for one user. A user with
// multiple open connections has one Session per connection, and each
// session receives every message addressed to that user.
type Session struct {
	UserID int64
	C      <-chan model.NotificationMessage

	send chan model.NotificationMessage
}

// Hub routes notification messages to the active sessions of their
// receiver. Messages for users with no active session are discarded;
// the notification ledger is the durable record.
type Hub struct {
	mu       sync.RWMutex
	running  bool
	sessions map[int64]map[*Session]struct{}
}

// NewHub creates a stopped Hub. Call Start before use.
func NewHub() *Hub {
	return &Hub{
		sessions: make(map[int64]map[*Session]struct{}),
	}
}

// Start makes the hub accept subscriptions and deliveries.
func (h *Hub) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.running = true
	log.Printf("[Hub] Started")
}

// Stop closes all active sessions and rejects further operations.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.running {
		return
	}
	h.running = false

	var closed int
	for _, sessions := range h.sessions {
		for s := range sessions {
			close(s.send)
			closed++
		}
	}
	h.sessions = make(map[int64]map[*Session]struct{})
	log.Printf("[Hub] Stopped, closed %d sessions", closed)
}

// Subscribe registers a new session for userID. The caller must call
// Unsubscribe when the connection closes.
func (h *Hub) Subscribe(userID int64) (*Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.running {
		return nil, ErrNotRunning
	}

	send := make(chan model.NotificationMessage, sessionBufferSize)
	s := &Session{
		UserID: userID,
		C:      send,
		send:   send,
	}

	if h.sessions[userID] == nil {
		h.sessions[userID] = make(map[*Session]struct{})
	}
	h.sessions[userID][s] = struct{}{}

	log.Printf("[Hub] Subscribe: user=%d sessions=%d", userID, len(h.sessions[userID]))
	return s, nil
}

// Unsubscribe removes a session and closes its channel. Safe to call
// after Stop or with an already-removed session.
func (h *Hub) Unsubscribe(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sessions, ok := h.sessions[s.UserID]
	if !ok {
		return
	}
	if _, ok := sessions[s]; !ok {
		return
	}

	delete(sessions, s)
	if len(sessions) == 0 {
		delete(h.sessions, s.UserID)
	}
	close(s.send)

	log.Printf("[Hub] Unsubscribe: user=%d sessions=%d", s.UserID, len(sessions))
}

// Deliver sends msg to every active session of receiverID. Sessions
// whose buffers are full are skipped. Returns the number of sessions
// the message was queued to; zero when the receiver has none.
func (h *Hub) Deliver(receiverID int64, msg model.NotificationMessage) (int, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.running {
		return 0, ErrNotRunning
	}

	sessions, ok := h.sessions[receiverID]
	if !ok || len(sessions) == 0 {
		return 0, nil
	}

	var delivered int
	for s := range sessions {
		select {
		case s.send <- msg:
			delivered++
		default:
			log.Printf("[Hub] Deliver: user=%d session buffer full, dropping", receiverID)
		}
	}

	return delivered, nil
}

// ActiveSessions returns the number of open sessions for a user.
func (h *Hub) ActiveSessions(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[userID])
}
