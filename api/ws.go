package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rishugupta23/word-guessing-game/logger"
	"github.com/rishugupta23/word-guessing-game/logic"
	"github.com/rishugupta23/word-guessing-game/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 512
)

// The default origin check rejects cross-site upgrades, which matters since
// the session travels in a cookie.
var upgrader = websocket.Upgrader{}

// Format for all WebSocket messages (sent and received).
type WSMessage struct {
	Action   string           `json:"action"`            // "guess", "new_game", "reveal", "state", "error"
	Payload  string           `json:"payload,omitempty"` // letter guessed
	Feedback *models.Feedback `json:"feedback,omitempty"`
	State    *models.Snapshot `json:"state,omitempty"`
}

// A single WebSocket connection of a session.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// hub holds, for every session ID, the sockets currently open on it so all
// tabs of one browser stay in sync.
type hub struct {
	mu      sync.Mutex
	clients map[string][]*client
}

func newHub() *hub {
	return &hub{clients: make(map[string][]*client)}
}

func (h *hub) add(id string, c *client) {
	h.mu.Lock()
	h.clients[id] = append(h.clients[id], c)
	h.mu.Unlock()
}

func (h *hub) remove(id string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	list := h.clients[id]
	for i, other := range list {
		if other == c {
			h.clients[id] = append(list[:i], list[i+1:]...)
			break
		}
	}
	// If this was the last client for the session, remove the entry
	if len(h.clients[id]) == 0 {
		delete(h.clients, id)
	}
}

// broadcast queues msg for every socket of the session except skip. Slow
// sockets drop messages rather than block the sender.
func (h *hub) broadcast(id string, msg WSMessage, skip *client) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error("marshal WSMessage: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients[id] {
		if c == skip {
			continue
		}
		c.queue(data)
	}
}

func (h *hub) count(id string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[id])
}

func (c *client) queue(data []byte) {
	select {
	case c.send <- data:
	default:
		logger.Error("websocket send buffer full, dropping message")
	}
}

func (c *client) reply(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error("marshal WSMessage: %v", err)
		return
	}
	c.queue(data)
}

// writePump owns all writes to the connection.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Error("websocket write: %v", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// WebSocketHandler upgrades the connection and processes game commands.
// Path: /ws
func (h *Handler) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)

	conn, err := upgrader.Upgrade(w, r, w.Header())
	if err != nil {
		logger.Error("websocket upgrade: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 16)}
	h.hub.add(sess.ID, c)
	go c.writePump()

	defer func() {
		h.hub.remove(sess.ID, c)
		close(c.send)
	}()

	state := h.sessions.View(sess)
	c.reply(WSMessage{Action: "state", State: &state})

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		h.sessions.touch(sess)
		return nil
	})

	// Main receive loop: wait for client messages
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Error("websocket read: %v", err)
			}
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Info("invalid WS message: %v", err)
			continue
		}

		// the registry may have pruned and reloaded the session meanwhile
		sess = h.sessions.Get(r.Context(), sess.ID)

		cmd, ok := commandFor(msg)
		if !ok {
			if msg.Action == "state" {
				state := h.sessions.View(sess)
				c.reply(WSMessage{Action: "state", State: &state})
			}
			continue
		}

		fb, state, err := h.run(r.Context(), sess, cmd, c)
		action := "state"
		if err != nil {
			action = "error"
		}
		c.reply(WSMessage{Action: action, Feedback: &fb, State: &state})
	}
}

// commandFor translates a socket message into an engine command. Guesses
// that are not a single A-Z letter are dropped here.
func commandFor(msg WSMessage) (logic.Command, bool) {
	switch msg.Action {
	case "new_game":
		return logic.NewGame(), true
	case "reveal":
		return logic.ShowAnswer(), true
	case "guess":
		l, ok := parseLetter(msg.Payload)
		if !ok || l < 'A' || l > 'Z' {
			return logic.Command{}, false
		}
		return logic.GuessLetter(l), true
	}
	return logic.Command{}, false
}
