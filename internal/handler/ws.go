package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"artspace/internal/httputil"
	"artspace/internal/realtime"
	"artspace/internal/transport/http/middleware"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Token auth decides access; the Origin header does not.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler upgrades authenticated requests to WebSocket connections
// and bridges them to hub sessions.
type WSHandler struct {
	hub *realtime.Hub
}

func NewWSHandler(hub *realtime.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// Serve handles GET /ws. Each connection gets its own hub session and
// receives every notification addressed to the authenticated user while
// the connection is open.
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	session, err := h.hub.Subscribe(userID)
	if err != nil {
		httputil.WriteInternalError(w, "Realtime delivery unavailable")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response
		h.hub.Unsubscribe(session)
		log.Printf("[WS] Upgrade failed: user=%d err=%v", userID, err)
		return
	}

	log.Printf("[WS] Connected: user=%d", userID)

	go h.writePump(conn, session)
	go h.readPump(conn, session)
}

// writePump forwards hub messages to the connection and keeps it alive
// with pings. Exits when the session channel closes.
func (h *WSHandler) writePump(conn *websocket.Conn, session *realtime.Session) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-session.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("[WS] Write failed: user=%d err=%v", session.UserID, err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards client frames and unsubscribes when the connection
// drops. Clients only listen on this socket; all writes go over HTTP.
func (h *WSHandler) readPump(conn *websocket.Conn, session *realtime.Session) {
	defer func() {
		h.hub.Unsubscribe(session)
		conn.Close()
		log.Printf("[WS] Disconnected: user=%d", session.UserID)
	}()

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
