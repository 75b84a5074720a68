package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"gemini_chat/pkg/chat"

	"github.com/gorilla/websocket"
)

// Event types sent to websocket clients.
const (
	EventUser  = "user"
	EventDelta = "delta"
	EventReply = "reply"
	EventError = "error"
)

// clientMessage is what a websocket client sends.
type clientMessage struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Event is what the server sends back.
type Event struct {
	Type    string        `json:"type"`
	Message *chat.Message `json:"message,omitempty"`
	Delta   string        `json:"delta,omitempty"`
	Error   string        `json:"error,omitempty"`
	Code    int           `json:"code,omitempty"`
}

// wsConn serializes writes; gorilla allows one concurrent writer.
type wsConn struct {
	conn      *websocket.Conn
	mu        sync.Mutex
	writeWait time.Duration
}

func (c *wsConn) send(ev Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(ev)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		slog.Warn("ws_upgrade_failed", "error", err)
		return
	}
	defer conn.Close()

	client := &wsConn{conn: conn, writeWait: s.timeouts.WriteWait}
	slog.Info("ws_connected", "remote", r.RemoteAddr)

	_ = conn.SetReadDeadline(time.Now().Add(s.timeouts.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.timeouts.PongWait))
	})

	done := make(chan struct{})
	var turns sync.WaitGroup
	defer func() {
		close(done)
		turns.Wait()
	}()

	go func() {
		ticker := time.NewTicker(s.timeouts.PingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				deadline := time.Now().Add(s.timeouts.WriteWait)
				if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("ws_read_failed", "error", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(s.timeouts.PongWait))

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			_ = client.send(Event{Type: EventError, Error: "invalid JSON message", Code: http.StatusBadRequest})
			continue
		}

		switch msg.Type {
		case "send":
			turn, err := s.session.BeginWith(msg.Content)
			if err != nil {
				_ = client.send(Event{Type: EventError, Error: err.Error(), Code: sendStatus(err)})
				continue
			}
			user := turn.User
			if err := client.send(Event{Type: EventUser, Message: &user}); err != nil {
				slog.Warn("ws_write_failed", "error", err)
			}
			// The turn runs to completion even if the socket closes.
			turns.Add(1)
			go func() {
				defer turns.Done()
				s.streamTurn(client, turn)
			}()
		default:
			_ = client.send(Event{Type: EventError, Error: "unknown message type: " + msg.Type, Code: http.StatusBadRequest})
		}
	}
}

func (s *Server) streamTurn(client *wsConn, turn chat.Turn) {
	events, err := s.session.Stream(context.Background(), turn)
	if err != nil {
		_ = client.send(Event{Type: EventError, Error: err.Error(), Code: http.StatusInternalServerError})
		return
	}

	// Keep draining after a write failure so the session finishes the turn.
	broken := false
	for ev := range events {
		if broken {
			continue
		}
		var out []Event
		switch {
		case ev.Done:
			reply := ev.Message
			out = append(out, Event{Type: EventReply, Message: &reply})
			if ev.Err != nil {
				out = append(out, Event{Type: EventError, Error: ev.Err.Error(), Code: http.StatusBadGateway})
			}
		case ev.Delta != "":
			out = append(out, Event{Type: EventDelta, Delta: ev.Delta})
		}
		for _, e := range out {
			if err := client.send(e); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					slog.Warn("ws_write_failed", "error", err)
				}
				broken = true
				break
			}
		}
	}
}
