package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/anggasct/crossroad"
)

// MessageType tags stream messages
type MessageType string

const (
	// MessageSnapshot carries a full Snapshot
	MessageSnapshot MessageType = "snapshot"
)

// Message is the envelope every stream frame is sent in
type Message struct {
	Type  MessageType        `json:"type"`
	State crossroad.Snapshot `json:"state"`
}

const (
	sendBuffer = 16
	writeWait  = 2 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one connected WebSocket renderer
type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

// ID returns the identifier assigned on connect
func (c *Client) ID() string { return c.id }

// enqueue hands msg to the writer without blocking; false means the client
// is too slow and should be dropped. Callers hold the hub lock.
func (c *Client) enqueue(msg []byte) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// Hub tracks connected clients and fans messages out to them
type Hub struct {
	mutex   sync.Mutex
	clients map[string]*Client
	logger  logrus.FieldLogger
}

// NewHub creates an empty hub
func NewHub(logger logrus.FieldLogger) *Hub {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
	}
}

// Accept upgrades the request and registers the connection
func (h *Hub) Accept(w http.ResponseWriter, r *http.Request) (*Client, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}

	client := &Client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	h.mutex.Lock()
	h.clients[client.id] = client
	total := len(h.clients)
	h.mutex.Unlock()

	h.logger.WithFields(logrus.Fields{"client": client.id, "clients": total}).Info("websocket client connected")

	go h.writePump(client)
	go h.readPump(client)
	return client, nil
}

// readPump discards inbound frames and unregisters the client on close
func (h *Hub) readPump(c *Client) {
	defer h.remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.WithError(err).WithField("client", c.id).Warn("websocket read error")
			}
			return
		}
	}
}

func (h *Hub) writePump(c *Client) {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.logger.WithError(err).WithField("client", c.id).Warn("websocket write error")
			go h.remove(c)
			for range c.send {
			}
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

func (h *Hub) remove(c *Client) {
	h.mutex.Lock()
	_, ok := h.clients[c.id]
	if ok {
		delete(h.clients, c.id)
		c.close()
	}
	total := len(h.clients)
	h.mutex.Unlock()

	if ok {
		h.logger.WithFields(logrus.Fields{"client": c.id, "clients": total}).Info("websocket client disconnected")
	}
}

// Send queues msg for a single client if it is still connected
func (h *Hub) Send(c *Client, msg []byte) bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[c.id]; !ok {
		return false
	}
	return c.enqueue(msg)
}

// Broadcast queues msg for every client, dropping clients that cannot keep up
func (h *Hub) Broadcast(msg []byte) {
	h.mutex.Lock()
	var slow []*Client
	for _, c := range h.clients {
		if !c.enqueue(msg) {
			slow = append(slow, c)
		}
	}
	h.mutex.Unlock()

	for _, c := range slow {
		h.logger.WithField("client", c.id).Warn("dropping slow websocket client")
		h.remove(c)
	}
}

// Len returns the number of connected clients
func (h *Hub) Len() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mutex.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mutex.Unlock()

	for _, c := range clients {
		h.remove(c)
	}
}
