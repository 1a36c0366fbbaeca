package room

import "github.com/HazimKhairi/triple-seven-games/internal/engine"

// Outbound message types pushed to clients. The transport layer wraps each
// payload in its envelope under these type tags.
const (
	MsgRoomCreated  = "room_created"
	MsgPlayerJoined = "player_joined"
	MsgPlayerLeft   = "player_left"
	MsgGameStarted  = "game_started"
	MsgStateUpdate  = "state_update"
	MsgToast        = "toast"
	MsgGameOver     = "game_over"
	MsgError        = "error"
)

// SendFunc delivers one message to one connection. Implementations must not
// block on slow clients; the room calls this while holding its lock.
type SendFunc func(connID, msgType string, payload any)

// ToastPayload is a transient notice rendered by the client.
type ToastPayload struct {
	Message  string          `json:"message"`
	Severity engine.Severity `json:"severity"`
	Seat     int             `json:"seat"`
}

// LobbyPayload describes a room before the game starts.
type LobbyPayload struct {
	Code       string             `json:"code"`
	Difficulty string             `json:"difficulty"`
	HostSeat   int                `json:"hostSeat"`
	Seats      [NumSeats]SeatInfo `json:"seats"`
}

// SeatInfo is one lobby seat as shown to clients.
type SeatInfo struct {
	Name     string `json:"name,omitempty"`
	Occupied bool   `json:"occupied"`
	IsAI     bool   `json:"isAi"`
}

// GameOverPayload carries the final result.
type GameOverPayload struct {
	Winner int              `json:"winner"`
	Names  [NumSeats]string `json:"names"`
	Scores [NumSeats]int    `json:"scores"`
}
