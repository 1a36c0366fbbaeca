package ws

import "encoding/json"

// Message is the wire envelope in both directions: a type tag and a payload
// whose shape depends on the type.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Inbound message types.
const (
	MsgCreateRoom        = "create_room"
	MsgJoinRoom          = "join_room"
	MsgStartGame         = "start_game"
	MsgDrawFromDeck      = "draw_from_deck"
	MsgDrawFromDiscard   = "draw_from_discard"
	MsgSwapWithHand      = "swap_with_hand"
	MsgDiscardDrawn      = "discard_drawn"
	MsgSelectPowerTarget = "select_power_target"
)

// CreateRoomPayload opens a room. Difficulty defaults to beginner.
type CreateRoomPayload struct {
	Name       string `json:"name"`
	Difficulty string `json:"difficulty"`
}

type JoinRoomPayload struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// SwapPayload picks the hand slot that receives the drawn card.
type SwapPayload struct {
	Index int `json:"index"`
}

// TargetPayload aims a pending power. Index is -1 for whole-hand targets.
type TargetPayload struct {
	Seat  int `json:"seat"`
	Index int `json:"index"`
}

// ErrorPayload reports a rejected request back to its sender.
type ErrorPayload struct {
	Message string `json:"message"`
}
