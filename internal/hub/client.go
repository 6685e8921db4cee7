package hub

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"

	"github.com/chernandez90/InsurancePortal/internal/config"
	"github.com/chernandez90/InsurancePortal/pkg/log"
)

// Client binds a Session to a websocket connection.
type Client struct {
	Session *Session
	hub     *Hub
	conn    *websocket.Conn
	config  config.WebSocketConfig
}

func NewClient(h *Hub, conn *websocket.Conn, s *Session, cfg config.WebSocketConfig) *Client {
	return &Client{
		Session: s,
		hub:     h,
		conn:    conn,
		config:  cfg,
	}
}

// ReadPump reads client frames and passes them to handler. It unregisters
// the session when the connection ends.
func (c *Client) ReadPump(handler func(*Client, []byte)) {
	defer func() {
		c.hub.Unregister(c.Session)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				l := log.L()
				l.Warn().Err(err).Str(log.FieldSessionID, c.Session.ID).Msg("websocket read error")
			}
			return
		}
		handler(c, message)
	}
}

// WritePump drains the session queue to the connection and keeps it alive
// with pings. It exits when the queue is closed or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Session.Send():
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage queues a direct reply to this client.
func (c *Client) SendMessage(message any) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	if err := c.hub.SendTo(c.Session.ID, data); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return err
	}
	return nil
}
