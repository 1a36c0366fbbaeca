package engine

import (
	"math/rand/v2"

	"github.com/HazimKhairi/triple-seven-games/internal/ai"
	"github.com/HazimKhairi/triple-seven-games/internal/deck"
)

// ExecuteAITurn plays one complete turn for an AI seat: draw, keep-or-
// discard, and power resolution, as a single atomic transition. The room
// schedules the call; the engine never decides when an AI acts.
func ExecuteAITurn(s *State, seat int, difficulty ai.Difficulty, rng *rand.Rand) (*State, []Event, error) {
	if err := s.checkTurnAction(seat, PhaseTurnDraw); err != nil {
		return s, nil, err
	}

	// Draw. The discard top is only an option when the pile is live.
	var top *deck.Card
	if t := s.DiscardTop(); t != nil && !s.DiscardBurned {
		top = t
	}
	source := ai.ChooseDrawSource(difficulty, top, rng)

	var (
		cur *State
		evs []Event
		err error
	)
	if source == ai.DrawDiscard && top != nil {
		cur, evs, err = DrawFromDiscard(s, seat)
	} else {
		cur, evs, err = DrawFromDeck(s, seat)
	}
	if err != nil {
		return s, nil, err
	}
	if cur.Phase == PhaseGameOver {
		// The forced draw found the deck empty.
		return cur, evs, nil
	}

	// Keep or discard.
	decision := ai.Decide(difficulty, *cur.Drawn, cur.Players[seat].Hand, cur.Memories[seat], seat, rng)

	var stepEvs []Event
	switch {
	case decision.Swap && validSlot(decision.Index) && !cur.Players[seat].Hand[decision.Index].Locked:
		cur, stepEvs, err = SwapWithHand(cur, seat, decision.Index)
	case decision.Swap:
		// Chosen slot is locked: fall back to discarding the drawn card, with
		// no power check on this forced path.
		cur, stepEvs, err = discardDrawnNoPower(cur, seat)
	default:
		cur, stepEvs, err = DiscardDrawn(cur, seat)
	}
	if err != nil {
		return s, nil, err
	}
	evs = append(evs, stepEvs...)

	// Power resolution.
	if cur.Phase == PhasePowerTarget {
		targets := ai.PowerTarget(difficulty, cur.ActivePower, seat,
			cur.Players[seat].Hand, cur.opponentsOf(seat), cur.Memories[seat], rng)
		if len(targets) == 0 {
			// No legal target: the power resolves as a silent no-op and the
			// turn still ends.
			cur = cur.Clone()
			advanceTurn(cur)
			return cur, evs, nil
		}
		for _, t := range targets {
			var powerEvs []Event
			cur, powerEvs, err = SelectPowerTarget(cur, seat, t.Seat, t.Index)
			if err != nil {
				// A stale target (e.g. slot locked between choice and
				// application) abandons the power rather than stalling the
				// game on an AI seat.
				cur, powerEvs, _ = AbandonPower(cur, seat)
				evs = append(evs, powerEvs...)
				break
			}
			evs = append(evs, powerEvs...)
		}
	}

	return cur, evs, nil
}

func validSlot(i int) bool { return i >= 0 && i < HandSize }

// discardDrawnNoPower is the AI fallback path: discard the drawn card without
// checking it for a power trigger.
func discardDrawnNoPower(s *State, seat int) (*State, []Event, error) {
	if s.Drawn == nil {
		return s, nil, invalidf("no drawn card to discard")
	}
	next := s.Clone()
	discarded := *next.Drawn
	next.Drawn = nil
	evs := resolveDiscard(next, discarded, seat, false)
	return next, evs, nil
}
