package engine

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/game-playzui/bigtwo-server/internal/game"
	"github.com/game-playzui/bigtwo-server/internal/room"
	"github.com/game-playzui/bigtwo-server/internal/ws"
)

const requestTimeout = 5 * time.Second

// Seating is what the engine needs from matchmaking.
type Seating interface {
	Enqueue(ctx context.Context, userID int64, username string) error
	Cancel(userID int64) bool
	RoomOf(ctx context.Context, userID int64) (*room.Room, error)
}

// Engine turns socket traffic into room requests.
type Engine struct {
	hub    *ws.Hub
	seats  Seating
	logger *log.Logger
}

func NewEngine(hub *ws.Hub, seats Seating, logger *log.Logger) *Engine {
	e := &Engine{
		hub:    hub,
		seats:  seats,
		logger: logger.WithPrefix("engine"),
	}
	hub.OnMessage = e.HandleMessage
	hub.OnConnect = e.HandleConnect
	hub.OnDisconnect = e.HandleDisconnect
	return e
}

func (e *Engine) HandleMessage(client *ws.Client, msg ws.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	switch msg.Type {
	case ws.MsgPlayCards:
		e.handlePlayCards(ctx, client, msg.Payload)
	case ws.MsgPassTurn:
		e.handlePassTurn(ctx, client)
	case ws.MsgAutoMatch:
		e.handleAutoMatch(ctx, client)
	case ws.MsgLeaveRoom:
		e.handleLeaveRoom(ctx, client)
	default:
		e.reply(client, "unknown message type: "+string(msg.Type))
	}
}

func (e *Engine) handlePlayCards(ctx context.Context, client *ws.Client, payload json.RawMessage) {
	var p ws.PlayCardsPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		e.reply(client, "invalid play_cards payload")
		return
	}
	r := e.roomFor(ctx, client)
	if r == nil {
		return
	}
	e.report(client, r.Play(ctx, client.UserID, p.Cards))
}

func (e *Engine) handlePassTurn(ctx context.Context, client *ws.Client) {
	r := e.roomFor(ctx, client)
	if r == nil {
		return
	}
	e.report(client, r.Pass(ctx, client.UserID))
}

func (e *Engine) handleAutoMatch(ctx context.Context, client *ws.Client) {
	if err := e.seats.Enqueue(ctx, client.UserID, client.Username); err != nil {
		e.reply(client, err.Error())
	}
}

// handleLeaveRoom drops a queued user from the wait list; a seated user
// leaves the same way a dropped socket does.
func (e *Engine) handleLeaveRoom(ctx context.Context, client *ws.Client) {
	if e.seats.Cancel(client.UserID) {
		return
	}
	r := e.roomFor(ctx, client)
	if r == nil {
		return
	}
	e.report(client, r.Disconnect(ctx, client.UserID))
}

// HandleConnect resumes the user's seat if it was dropped, or just resends
// the snapshot when the new socket replaced one the room never saw close.
func (e *Engine) HandleConnect(client *ws.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	r, err := e.seats.RoomOf(ctx, client.UserID)
	if err != nil {
		e.logger.Error("room lookup failed", "user", client.UserID, "error", err)
		return
	}
	if r == nil {
		return
	}

	_, err = r.Reconnect(ctx, client.UserID)
	if err == nil {
		e.logger.Info("seat resumed", "user", client.UserID, "room", r.ID)
		return
	}
	e.logger.Debug("reconnect refused", "user", client.UserID, "room", r.ID, "error", err)
	snap, err := r.State(ctx, client.UserID)
	if err != nil {
		return
	}
	e.hub.Send(client.UserID, room.KindGameState, snap)
}

func (e *Engine) HandleDisconnect(client *ws.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	// a newer socket already took over; freezing the seat would strand it
	if current := e.hub.GetClient(client.UserID); current != nil && current != client {
		e.logger.Debug("ignoring disconnect of replaced socket", "user", client.UserID)
		return
	}
	if e.seats.Cancel(client.UserID) {
		e.logger.Debug("dropped from queue", "user", client.UserID)
		return
	}
	r, err := e.seats.RoomOf(ctx, client.UserID)
	if err != nil || r == nil {
		return
	}
	if err := r.Disconnect(ctx, client.UserID); err != nil && !errors.Is(err, room.ErrRoomClosed) {
		e.logger.Warn("disconnect refused", "user", client.UserID, "room", r.ID, "error", err)
	}
}

func (e *Engine) roomFor(ctx context.Context, client *ws.Client) *room.Room {
	r, err := e.seats.RoomOf(ctx, client.UserID)
	if err != nil {
		e.logger.Error("room lookup failed", "user", client.UserID, "error", err)
		e.reply(client, "room lookup failed")
		return nil
	}
	if r == nil {
		e.reply(client, "you are not seated in a room")
	}
	return r
}

// report surfaces errors the room could not deliver itself. Rule
// rejections already reached the client as move_rejected.
func (e *Engine) report(client *ws.Client, err error) {
	switch {
	case err == nil:
	case errors.Is(err, room.ErrRoomClosed):
		e.reply(client, "the room has closed")
	case game.KindOf(err) != "":
		e.logger.Debug("request rejected", "user", client.UserID, "error", err)
	default:
		e.logger.Warn("request failed", "user", client.UserID, "error", err)
		e.reply(client, err.Error())
	}
}

func (e *Engine) reply(client *ws.Client, msg string) {
	e.hub.SendToClient(client.UserID, ws.NewErrorMessage(msg))
}
