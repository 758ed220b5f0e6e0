// Package ws adapts a websocket connection to the push delivery surface.
package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"docseal/internal/domain"
)

const writeTimeout = 10 * time.Second

// Upgrader used by the notification endpoint. Origin checks happen at the
// session layer; the socket itself is already authenticated.
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type pushMessage struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Conn serializes writes to one websocket. gorilla/websocket permits only a
// single concurrent writer.
type Conn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

func (c *Conn) Send(n domain.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.ws.WriteJSON(pushMessage{ID: n.ID, Message: n.Message, CreatedAt: n.CreatedAt})
}

func (c *Conn) Close() error {
	return c.ws.Close()
}

// ReadUntilClosed consumes client frames until the peer disconnects. The
// server never acts on inbound frames; reading just surfaces the close.
func (c *Conn) ReadUntilClosed() {
	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			return
		}
	}
}
