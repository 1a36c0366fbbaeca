package engine

import (
	"fmt"

	"github.com/HazimKhairi/triple-seven-games/internal/deck"
)

// DrawFromDeck draws the top face-down card for seat. When the deck is empty
// the game ends instead: hands are revealed, scores computed, winner set.
func DrawFromDeck(s *State, seat int) (*State, []Event, error) {
	if err := s.checkTurnAction(seat, PhaseTurnDraw); err != nil {
		return s, nil, err
	}

	next := s.Clone()
	if len(next.Deck) == 0 {
		evs := finishGame(next)
		return next, evs, nil
	}

	drawn := next.Deck[0]
	next.Deck = next.Deck[1:]
	drawn.FaceUp = false
	next.Drawn = &drawn
	next.DrawnFrom = OriginDeck
	next.Phase = PhaseTurnDecision

	ev := infoEvent(EventCardDrawn, seat, fmt.Sprintf("%s drew from the deck", next.Players[seat].Name))
	return next, []Event{ev}, nil
}

// DrawFromDiscard picks up the visible top discard. Rejected while the pile
// is burned (the turn right after a power trigger) or empty.
func DrawFromDiscard(s *State, seat int) (*State, []Event, error) {
	if err := s.checkTurnAction(seat, PhaseTurnDraw); err != nil {
		return s, nil, err
	}
	if len(s.Discard) == 0 {
		return s, nil, invalidf("the discard pile is empty")
	}
	if s.DiscardBurned {
		return s, nil, invalidf("the discard pile is burned this turn")
	}

	next := s.Clone()
	drawn := next.Discard[len(next.Discard)-1]
	next.Discard = next.Discard[:len(next.Discard)-1]
	drawn.FaceUp = false
	next.Drawn = &drawn
	next.DrawnFrom = OriginDiscard
	next.Phase = PhaseTurnDecision

	ev := infoEvent(EventCardDrawn, seat, fmt.Sprintf("%s picked up the discard", next.Players[seat].Name))
	return next, []Event{ev}, nil
}

// SwapWithHand puts the drawn card into the actor's hand at index and
// discards the card that was there. The displaced card's power can trigger.
func SwapWithHand(s *State, seat, index int) (*State, []Event, error) {
	if err := s.checkTurnAction(seat, PhaseTurnDecision); err != nil {
		return s, nil, err
	}
	if s.Drawn == nil {
		return s, nil, invalidf("no drawn card to place")
	}
	if index < 0 || index >= HandSize {
		return s, nil, invalidf("hand index %d out of range", index)
	}
	if s.Players[seat].Hand[index].Locked {
		return s, nil, invalidf("that card is locked")
	}

	next := s.Clone()
	placed := *next.Drawn
	placed.FaceUp = false
	placed.Selected = false
	placed.Peeking = false

	removed := next.Players[seat].Hand[index]
	next.Players[seat].Hand[index] = placed
	next.Drawn = nil

	// The actor learns what it placed; everyone else loses track of the slot.
	for o := 0; o < NumSeats; o++ {
		if o == seat {
			next.Memories[o] = next.Memories[o].Observe(seat, index, placed)
		} else {
			next.Memories[o] = next.Memories[o].Forget(seat, index)
		}
	}

	evs := []Event{infoEvent(EventHandSwap, seat, fmt.Sprintf("%s swapped the drawn card into their hand", next.Players[seat].Name))}
	evs = append(evs, resolveDiscard(next, removed, seat, true)...)
	return next, evs, nil
}

// DiscardDrawn throws the drawn card onto the discard pile, possibly
// triggering its power.
func DiscardDrawn(s *State, seat int) (*State, []Event, error) {
	if err := s.checkTurnAction(seat, PhaseTurnDecision); err != nil {
		return s, nil, err
	}
	if s.Drawn == nil {
		return s, nil, invalidf("no drawn card to discard")
	}

	next := s.Clone()
	discarded := *next.Drawn
	next.Drawn = nil

	evs := resolveDiscard(next, discarded, seat, true)
	return next, evs, nil
}

// AbandonPower gives up a pending power and advances the turn. Used when a
// human times out in the target phase and when an AI finds no legal target.
func AbandonPower(s *State, seat int) (*State, []Event, error) {
	if s.Phase != PhasePowerTarget {
		return s, nil, invalidf("no power to abandon")
	}
	if seat != s.PowerSource {
		return s, nil, invalidf("it is not your power to abandon")
	}

	next := s.Clone()
	power := next.ActivePower
	advanceTurn(next)
	ev := infoEvent(EventPowerAbandoned, seat, fmt.Sprintf("%s let the %s power pass", next.Players[seat].Name, power))
	return next, []Event{ev}, nil
}

// ClearPeek clears the peeking flag on the card with the given identity,
// wherever it now sits. Invoked by the room's peek-expiry timer; not a player
// action, so it is legal in any phase and never fails.
func ClearPeek(s *State, cardID string) *State {
	next := s.Clone()
	for p := range next.Players {
		for i := range next.Players[p].Hand {
			if next.Players[p].Hand[i].ID == cardID {
				next.Players[p].Hand[i].Peeking = false
			}
		}
	}
	for i := range next.Discard {
		if next.Discard[i].ID == cardID {
			next.Discard[i].Peeking = false
		}
	}
	return next
}

// checkTurnAction rejects actions from the wrong seat or phase.
func (s *State) checkTurnAction(seat int, want Phase) error {
	if s.Phase == PhaseGameOver {
		return invalidf("the game is over")
	}
	if seat < 0 || seat >= NumSeats {
		return invalidf("no such seat %d", seat)
	}
	if seat != s.Turn {
		return invalidf("it is not your turn")
	}
	if s.Phase != want {
		return invalidf("cannot do that right now")
	}
	return nil
}

// resolveDiscard pushes c face-up onto the discard pile, records it in every
// memory, and either enters the power-target phase (burning the pile) or
// advances the turn. Both discard paths, the drawn-card discard and the
// replaced-hand-card discard, funnel through here, so a power card triggers
// identically from either. allowPower is false only for the AI locked-slot
// fallback, which must stay side-effect-free.
func resolveDiscard(s *State, c deck.Card, seat int, allowPower bool) []Event {
	power := c.Power()
	triggered := allowPower && power != deck.PowerNone

	// Unlock fizzles outright when nothing on the board is locked.
	if triggered && power == deck.PowerUnlock && !s.AnyLocked() {
		triggered = false
	}

	if triggered {
		c.PowerUsed = true
	}
	c.FaceUp = true
	c.Selected = false
	c.Peeking = false
	s.Discard = append(s.Discard, c)

	for o := 0; o < NumSeats; o++ {
		s.Memories[o] = s.Memories[o].RecordDiscard(c)
	}

	evs := []Event{infoEvent(EventCardDiscarded, seat, fmt.Sprintf("%s discarded %s", s.Players[seat].Name, cardLabel(c)))}

	if triggered {
		s.ActivePower = power
		s.PowerSource = seat
		s.SwapSource = nil
		s.Phase = PhasePowerTarget
		s.DiscardBurned = true
		ev := infoEvent(EventPowerTriggered, seat, fmt.Sprintf("%s triggered %s", s.Players[seat].Name, power))
		ev.Power = power
		evs = append(evs, ev)
		return evs
	}

	s.DiscardBurned = false
	advanceTurn(s)
	return evs
}

// advanceTurn hands control to the next seat and resets per-turn power state.
// The pending swap source, when one exists, loses its selection mark here so
// an abandoned swap leaves no trace on the board.
func advanceTurn(s *State) {
	if s.SwapSource != nil {
		if c := s.cardAt(s.SwapSource.Seat, s.SwapSource.Index); c != nil {
			c.Selected = false
		}
	}
	s.ActivePower = deck.PowerNone
	s.SwapSource = nil
	s.Turn = (s.Turn + 1) % NumSeats
	if s.Turn == 0 {
		s.Round++
	}
	s.Phase = PhaseTurnDraw
}

// finishGame reveals every hand, totals the scores, and picks the winner.
// Ties go to the lowest seat index.
func finishGame(s *State) []Event {
	s.Phase = PhaseGameOver
	s.Drawn = nil
	s.ActivePower = deck.PowerNone
	s.SwapSource = nil

	best := -1
	for i := range s.Players {
		total := 0
		for j := range s.Players[i].Hand {
			s.Players[i].Hand[j].FaceUp = true
			s.Players[i].Hand[j].Peeking = false
			s.Players[i].Hand[j].Selected = false
			total += s.Players[i].Hand[j].Value()
		}
		s.Players[i].Score = total
		if best == -1 || total < s.Players[best].Score {
			best = i
		}
	}
	s.Winner = best

	ev := infoEvent(EventGameOver, best, fmt.Sprintf("%s wins with %d points", s.Players[best].Name, s.Players[best].Score))
	return []Event{ev}
}

// cardLabel renders a card for toast text.
func cardLabel(c deck.Card) string {
	if c.Joker {
		return fmt.Sprintf("the %s joker", c.JokerColor)
	}
	return fmt.Sprintf("%s of %s", c.Rank, c.Suit)
}
