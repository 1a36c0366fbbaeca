package engine

import "github.com/HazimKhairi/triple-seven-games/internal/deck"

// EventType identifies a domain event produced by a transition.
type EventType string

const (
	EventCardDrawn        EventType = "card_drawn"
	EventCardDiscarded    EventType = "card_discarded"
	EventHandSwap         EventType = "hand_swap" // drawn card swapped into the actor's hand
	EventPowerTriggered   EventType = "power_triggered"
	EventPowerAbandoned   EventType = "power_abandoned"
	EventPeekStarted      EventType = "peek_started"
	EventCardLocked       EventType = "card_locked"
	EventCardUnlocked     EventType = "card_unlocked"
	EventSwapSourceChosen EventType = "swap_source_chosen"
	EventCardsSwapped     EventType = "cards_swapped"
	EventHandsRotated     EventType = "hands_rotated" // joker mass swap
	EventGameOver         EventType = "game_over"
)

// Severity mirrors the toast levels the client renders.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Event is one discrete thing that happened during a transition. Transitions
// return events instead of invoking presentation callbacks; the room decides
// how (and to whom) each one is rendered.
type Event struct {
	Type     EventType   `json:"type"`
	Seat     int         `json:"seat"`
	Target   *SlotRef    `json:"target,omitempty"`
	Power    deck.Power  `json:"power,omitempty"`
	Card     *deck.Card  `json:"card,omitempty"`
	Message  string      `json:"message"`
	Severity Severity    `json:"severity"`
}

func infoEvent(t EventType, seat int, msg string) Event {
	return Event{Type: t, Seat: seat, Message: msg, Severity: SeverityInfo}
}
