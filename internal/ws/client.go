package ws

import (
	"errors"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is one user's socket. Send is closed by the hub when the client is
// unregistered or replaced.
type Client struct {
	Hub         *Hub
	Conn        *websocket.Conn
	Send        chan []byte
	UserID      int64
	Username    string
	ConnectedAt time.Time
	logger      *log.Logger
}

func NewClient(hub *Hub, conn *websocket.Conn, userID int64, username string) *Client {
	return &Client{
		Hub:         hub,
		Conn:        conn,
		Send:        make(chan []byte, 256),
		UserID:      userID,
		Username:    username,
		ConnectedAt: time.Now(),
		logger:      hub.logger.With("user", userID, "username", username),
	}
}

// ReadPump dispatches every inbound frame on the client's own goroutine, so
// a slow room only holds up its own players.
func (c *Client) ReadPump() {
	frames := 0
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			reason := closeReason(err)
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("socket dropped", "reason", reason, "frames", frames, "after", time.Since(c.ConnectedAt).Round(time.Second))
			} else {
				c.logger.Debug("socket closed", "reason", reason, "frames", frames)
			}
			return
		}
		frames++
		c.Hub.Dispatch(c, message)
	}
}

// WritePump drains Send and keeps the connection alive with pings. It exits
// when the hub closes Send or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "replaced or closed"))
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Debug("write failed", "error", err)
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("ping failed", "error", err)
				return
			}
		}
	}
}

// closeReason names why a read ended, for logs.
func closeReason(err error) string {
	var ce *websocket.CloseError
	switch {
	case errors.As(err, &ce):
		if ce.Text != "" {
			return ce.Text
		}
		return closeCodeName(ce.Code)
	case errors.Is(err, websocket.ErrReadLimit):
		return "message too large"
	}
	return err.Error()
}

func closeCodeName(code int) string {
	switch code {
	case websocket.CloseNormalClosure:
		return "normal closure"
	case websocket.CloseGoingAway:
		return "going away"
	case websocket.CloseAbnormalClosure:
		return "abnormal closure"
	case websocket.CloseMessageTooBig:
		return "message too large"
	}
	return "close code " + strconv.Itoa(code)
}
