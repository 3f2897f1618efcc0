package websocket

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	sendBuffer      = 64
	broadcastBuffer = 256
)

var upgrader = websocket.Upgrader{
	// slip job events carry no secrets beyond the user's own job ids
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is one job event pushed to a user's sockets.
type Message struct {
	UserID  int64       `json:"user_id,omitempty"`
	Type    string      `json:"type"`
	Channel string      `json:"channel,omitempty"`
	Data    interface{} `json:"data"`
}

// Hub fans job events out to every socket a user has open.
type Hub struct {
	mu          sync.RWMutex
	connections map[int64]map[*Connection]struct{}

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *Message
}

type Connection struct {
	ws     *websocket.Conn
	userID int64
	send   chan *Message
	hub    *Hub
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[int64]map[*Connection]struct{}),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		broadcast:   make(chan *Message, broadcastBuffer),
	}
}

// Run serves register, unregister and broadcast requests until ctx is
// cancelled, then closes every open socket.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case conn := <-h.register:
			h.mu.Lock()
			if h.connections[conn.userID] == nil {
				h.connections[conn.userID] = make(map[*Connection]struct{})
			}
			h.connections[conn.userID][conn] = struct{}{}
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			h.remove(conn)
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			for conn := range h.connections[msg.UserID] {
				select {
				case conn.send <- msg:
				default:
					log.Printf("[WS] user %d: slow socket dropped", conn.userID)
					h.remove(conn)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove must be called with mu held.
func (h *Hub) remove(conn *Connection) {
	conns, ok := h.connections[conn.userID]
	if !ok {
		return
	}
	if _, ok := conns[conn]; !ok {
		return
	}
	delete(conns, conn)
	close(conn.send)
	if len(conns) == 0 {
		delete(h.connections, conn.userID)
	}
}

func (h *Hub) closeAll() {
	h.mu.RLock()
	var conns []*Connection
	for _, m := range h.connections {
		for c := range m {
			conns = append(conns, c)
		}
	}
	h.mu.RUnlock()

	// pumps see the error and unregister themselves
	for _, c := range conns {
		_ = c.ws.Close()
	}
}

// Connections reports how many sockets userID currently has open.
func (h *Hub) Connections(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[userID])
}

// Broadcast queues msg for userID. The message is dropped when the queue
// is full.
func (h *Hub) Broadcast(userID int64, msg *Message) {
	msg.UserID = userID
	select {
	case h.broadcast <- msg:
	default:
		log.Printf("[WS] broadcast queue full, dropping %s for user %d", msg.Type, userID)
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request, userID int64) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] upgrade: %v", err)
		return
	}

	conn := &Connection{
		ws:     ws,
		userID: userID,
		send:   make(chan *Message, sendBuffer),
		hub:    h,
	}

	h.register <- conn

	go conn.writePump()
	go conn.readPump()
}

// readPump only keeps the read deadline alive; clients never send events.
func (c *Connection) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.ws.Close()
	}()

	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] user %d: %v", c.userID, err)
			}
			return
		}
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteJSON(msg); err != nil {
				log.Printf("[WS] user %d: write: %v", c.userID, err)
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
