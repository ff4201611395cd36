package ws

import (
	"time"

	"github.com/mohitdudhat22/Task-Management-App/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second

	sendBuffer = 256
)

type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte

	Hub  *Hub
	Done chan struct{}
}

func NewClient(userID string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, sendBuffer),
		Hub:    hub,
		Done:   make(chan struct{}),
	}
}

// Run registers the client, starts the writer and blocks reading until the
// connection drops.
func (c *Client) Run() {
	// The hub owns Send once the client is registered.
	c.queueReady()
	if !c.Hub.Register(c) {
		_ = c.Conn.Close()
		close(c.Done)
		return
	}
	go c.writePump()
	c.readPump()
}

// queueReady buffers the handshake frame telling the peer it will now
// receive events.
func (c *Client) queueReady() {
	select {
	case c.Send <- []byte(`{"event":"` + MsgReady + `"}`):
	default:
	}
}

// readPump keeps the read deadline alive. Inbound frames are discarded:
// clients never emit task events.
func (c *Client) readPump() {
	defer func() {
		c.Hub.Unregister(c)
		_ = c.Conn.Close()
		close(c.Done)
	}()

	c.Conn.SetReadLimit(4096)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("ws read error", "user_id", c.UserID, "error", err)
			}
			return
		}
		logger.Debug("ws inbound frame ignored", "user_id", c.UserID, "bytes", len(msg))
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Warn("ws write error", "user_id", c.UserID, "error", err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
