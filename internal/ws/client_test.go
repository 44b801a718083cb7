package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPumpsCarryFramesBothWays(t *testing.T) {
	h := startHub(t)
	got := make(chan Message, 1)
	h.OnMessage = func(c *Client, msg Message) {
		assert.Equal(t, int64(5), c.UserID)
		got <- msg
	}
	gone := make(chan *Client, 1)
	h.OnDisconnect = func(c *Client) { gone <- c }

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := NewClient(h, conn, 5, "eve")
		h.Register <- c
		go c.WritePump()
		go c.ReadPump()
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return h.GetClient(5) != nil }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"pass_turn","payload":null}`)))
	select {
	case msg := <-got:
		assert.Equal(t, MsgPassTurn, msg.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("frame not dispatched")
	}

	h.Notify(5, MsgQueued, QueuedPayload{Position: 2})
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, MsgQueued, msg.Type)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")))
	select {
	case c := <-gone:
		assert.Equal(t, "eve", c.Username)
	case <-time.After(2 * time.Second):
		t.Fatal("disconnect not reported")
	}
	assert.Nil(t, h.GetClient(5))
}

func TestCloseReason(t *testing.T) {
	assert.Equal(t, "bye", closeReason(&websocket.CloseError{Code: websocket.CloseNormalClosure, Text: "bye"}))
	assert.Equal(t, "going away", closeReason(&websocket.CloseError{Code: websocket.CloseGoingAway}))
	assert.Equal(t, "close code 4001", closeReason(&websocket.CloseError{Code: 4001}))
	assert.Equal(t, "message too large", closeReason(websocket.ErrReadLimit))
}
