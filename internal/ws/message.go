package ws

import "encoding/json"

type MessageType string

const (
	// Client -> Server
	MsgPlayCards MessageType = "play_cards"
	MsgPassTurn  MessageType = "pass_turn"
	MsgAutoMatch MessageType = "auto_match"
	MsgLeaveRoom MessageType = "leave_room"

	// Server -> Client
	MsgGameState    MessageType = "game_state"
	MsgMatchEnded   MessageType = "match_ended"
	MsgGameOver     MessageType = "game_over"
	MsgMatchAborted MessageType = "match_aborted"
	MsgMoveRejected MessageType = "move_rejected"
	MsgQueued       MessageType = "queued"
	MsgMatchFound   MessageType = "match_found"
	MsgError        MessageType = "error"
)

type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// PlayCardsPayload carries card tokens such as "10S" or "3D".
type PlayCardsPayload struct {
	Cards []string `json:"cards"`
}

type MatchFoundPayload struct {
	RoomID   string `json:"room_id"`
	RoomName string `json:"room_name"`
	Seat     int    `json:"seat"`
}

type QueuedPayload struct {
	Position int `json:"position"`
}

type ErrorPayload struct {
	Message string `json:"error"`
}

func NewMessage(msgType MessageType, payload interface{}) ([]byte, error) {
	p, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	msg := Message{Type: msgType, Payload: p}
	return json.Marshal(msg)
}

func NewErrorMessage(errMsg string) []byte {
	data, _ := NewMessage(MsgError, ErrorPayload{Message: errMsg})
	return data
}
