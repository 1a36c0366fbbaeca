// Package engine implements the Triple Seven turn state machine.
//
// The engine is pure: every transition validates the action against the
// current state, then returns a NEW state plus the domain events the action
// produced. Callers own broadcasting, timers, and persistence. The same
// engine drives the authoritative server and any embedded offline runner, so
// nothing in this package touches the clock, the network, or a logger.
package engine

import (
	"fmt"
	"math/rand/v2"

	"github.com/HazimKhairi/triple-seven-games/internal/ai"
	"github.com/HazimKhairi/triple-seven-games/internal/deck"
)

const (
	// NumSeats is the fixed table size.
	NumSeats = 4
	// HandSize is the number of cards every seat holds for the whole game.
	HandSize = 4
)

// Phase is the turn state machine's current node.
type Phase string

const (
	PhaseTurnDraw     Phase = "turn_draw"
	PhaseTurnDecision Phase = "turn_decision"
	PhasePowerTarget  Phase = "power_target"
	PhaseGameOver     Phase = "game_over"
)

// SeatKind says what controls a seat.
type SeatKind string

const (
	SeatHuman SeatKind = "human"
	SeatAI    SeatKind = "ai"
)

// DrawOrigin records where the pending drawn card came from.
type DrawOrigin string

const (
	OriginDeck    DrawOrigin = "deck"
	OriginDiscard DrawOrigin = "discard"
)

// Player is one seat at the table.
type Player struct {
	Seat int         `json:"seat"`
	Kind SeatKind    `json:"kind"`
	Name string      `json:"name"`
	Hand []deck.Card `json:"hand"`
	// Score stays zero until the game ends.
	Score int `json:"score"`
}

// SlotRef addresses one hand slot.
type SlotRef struct {
	Seat  int `json:"seat"`
	Index int `json:"index"`
}

// Seat describes a seat when constructing a new game.
type Seat struct {
	Kind SeatKind
	Name string
}

// State is the single authoritative source of truth for one game.
// Transitions never mutate it in place; they Clone first.
type State struct {
	Deck    []deck.Card      // face-down, Deck[0] drawn next
	Discard []deck.Card      // face-up, top = last element
	Players [NumSeats]Player

	Phase Phase
	Turn  int // seat whose turn it is
	Round int // increments each time the turn returns to seat 0

	Drawn     *deck.Card // at most one card pending a keep/discard decision
	DrawnFrom DrawOrigin

	ActivePower deck.Power
	PowerSource int      // seat that triggered ActivePower
	SwapSource  *SlotRef // first-selected slot of a two-step swap

	// DiscardBurned blocks draw_from_discard for the next player right after
	// a power trigger. Reset by every normal discard.
	DiscardBurned bool

	Winner int // -1 until game over

	// Memories holds what each seat's AI would know. Maintained for every
	// seat so a mid-game human-to-AI conversion starts with an honest view.
	Memories [NumSeats]ai.Memory
}

// NewState builds, shuffles, and deals a fresh game. Four cards per seat face
// down, one card flipped to start the discard pile, seat 0 to draw.
func NewState(seats [NumSeats]Seat, includeJokers bool, seed uint64) *State {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	cards := deck.Shuffle(deck.Build(includeJokers), rng)

	s := &State{
		Phase:  PhaseTurnDraw,
		Turn:   0,
		Round:  1,
		Winner: -1,
	}
	for i := 0; i < NumSeats; i++ {
		var hand []deck.Card
		hand, cards = deck.Deal(cards, HandSize)
		s.Players[i] = Player{Seat: i, Kind: seats[i].Kind, Name: seats[i].Name, Hand: hand}
		s.Memories[i] = ai.NewMemory()
	}

	// Flip the top card to seed the discard pile.
	var flip []deck.Card
	flip, cards = deck.Deal(cards, 1)
	flip[0].FaceUp = true
	s.Discard = flip
	s.Deck = cards

	return s
}

// Clone deep-copies the state.
func (s *State) Clone() *State {
	out := *s
	out.Deck = append([]deck.Card(nil), s.Deck...)
	out.Discard = append([]deck.Card(nil), s.Discard...)
	for i := range s.Players {
		out.Players[i].Hand = append([]deck.Card(nil), s.Players[i].Hand...)
		out.Memories[i] = s.Memories[i].Clone()
	}
	if s.Drawn != nil {
		drawn := *s.Drawn
		out.Drawn = &drawn
	}
	if s.SwapSource != nil {
		src := *s.SwapSource
		out.SwapSource = &src
	}
	return &out
}

// DiscardTop returns the top discard card, or nil when the pile is empty.
func (s *State) DiscardTop() *deck.Card {
	if len(s.Discard) == 0 {
		return nil
	}
	return &s.Discard[len(s.Discard)-1]
}

// AnyLocked reports whether any card on the table is currently locked.
// The unlock power fizzles when this is false.
func (s *State) AnyLocked() bool {
	for i := range s.Players {
		for _, c := range s.Players[i].Hand {
			if c.Locked {
				return true
			}
		}
	}
	return false
}

// cardAt returns a pointer into the live hand slot, or nil when out of range.
func (s *State) cardAt(seat, index int) *deck.Card {
	if seat < 0 || seat >= NumSeats || index < 0 || index >= HandSize {
		return nil
	}
	return &s.Players[seat].Hand[index]
}

// opponentsOf collects the other seats' hands, keyed by seat, for AI
// targeting.
func (s *State) opponentsOf(seat int) map[int][]deck.Card {
	opps := make(map[int][]deck.Card, NumSeats-1)
	for i := range s.Players {
		if i != seat {
			opps[i] = s.Players[i].Hand
		}
	}
	return opps
}

// InvalidActionError marks a rejected action: wrong phase, wrong actor, or an
// illegal target. The state is guaranteed unchanged; the caller should relay
// the reason to the offending seat and carry on.
type InvalidActionError struct {
	Reason string
}

func (e *InvalidActionError) Error() string { return e.Reason }

func invalidf(format string, args ...any) error {
	return &InvalidActionError{Reason: fmt.Sprintf(format, args...)}
}

// IsInvalidAction reports whether err is a rejected-action result rather than
// a programming error.
func IsInvalidAction(err error) bool {
	_, ok := err.(*InvalidActionError)
	return ok
}
