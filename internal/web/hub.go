package web

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sweeney/lambda-display/internal/display"
	"github.com/sweeney/lambda-display/internal/notify"
	"github.com/sweeney/lambda-display/internal/status"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The page is served from the device itself; any LAN origin may watch.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is one websocket update.
type Message struct {
	Type     string               `json:"type"` // frame, blink, info, error
	Channels []status.ChannelJSON `json:"channels,omitempty"`
	Blink    []string             `json:"blink,omitempty"`
	Channel  string               `json:"channel,omitempty"`
	Visible  *bool                `json:"visible,omitempty"`
	Lines    []string             `json:"lines,omitempty"`
	Error    *status.ErrorJSON    `json:"error,omitempty"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans display updates out to connected browsers. It is a
// display.Sink and the notify displays. A slow client is dropped
// rather than allowed to block the event loop.
type Hub struct {
	mu      sync.Mutex
	clients map[*wsClient]struct{}
	closed  bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*wsClient]struct{})}
}

// ServeWS upgrades the request and registers the connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade: %v", err)
		return
	}
	c := &wsClient{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(c)
	go h.readPump(c)
}

// Clients returns the number of connected browsers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Apply broadcasts a rendered frame.
func (h *Hub) Apply(frame display.Frame) {
	m := Message{Type: "frame", Channels: status.Snapshot{Frame: frame}.Channels()}
	for _, id := range frame.Blink {
		m.Blink = append(m.Blink, string(id))
	}
	h.broadcast(m)
}

// SetVisible broadcasts a blink visibility change.
func (h *Hub) SetVisible(ch display.ChannelID, visible bool) {
	h.broadcast(Message{Type: "blink", Channel: string(ch), Visible: &visible})
}

// ShowInfos broadcasts the info queue. An empty queue hides the modal.
func (h *Hub) ShowInfos(lines []string) {
	h.broadcast(Message{Type: "info", Lines: lines})
}

// ShowError broadcasts the current server error. nil closes the modal.
func (h *Hub) ShowError(n *notify.ErrorNotice) {
	m := Message{Type: "error"}
	if n != nil {
		m.Error = &status.ErrorJSON{Type: n.Type, Exc: n.Exc, Traceback: n.Traceback, Hint: n.Hint}
	}
	h.broadcast(m)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
}

func (h *Hub) broadcast(m Message) {
	data, err := json.Marshal(m)
	if err != nil {
		log.Printf("web: encode %s message: %v", m.Type, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			log.Printf("web: dropping slow websocket client %s", c.conn.RemoteAddr())
			h.removeLocked(c)
		}
	}
}

func (h *Hub) remove(c *wsClient) {
	h.mu.Lock()
	h.removeLocked(c)
	h.mu.Unlock()
}

func (h *Hub) removeLocked(c *wsClient) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

func (h *Hub) writePump(c *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.remove(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		}
	}
}

// readPump discards client messages and notices when the browser goes away.
func (h *Hub) readPump(c *wsClient) {
	defer h.remove(c)
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
