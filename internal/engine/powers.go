package engine

import (
	"fmt"

	"github.com/HazimKhairi/triple-seven-games/internal/deck"
)

// SelectPowerTarget resolves the pending power against (targetSeat,
// targetIndex). Every power resolves in one call and advances the turn,
// except swap: the first call only records the swap source and stays in the
// power-target phase; the second performs the exchange.
//
// For mass swap targetIndex is ignored (the whole hand is the target).
func SelectPowerTarget(s *State, seat, targetSeat, targetIndex int) (*State, []Event, error) {
	if s.Phase == PhaseGameOver {
		return s, nil, invalidf("the game is over")
	}
	if s.Phase != PhasePowerTarget {
		return s, nil, invalidf("no power is waiting for a target")
	}
	if seat != s.PowerSource || seat != s.Turn {
		return s, nil, invalidf("it is not your power to aim")
	}
	if targetSeat < 0 || targetSeat >= NumSeats {
		return s, nil, invalidf("no such seat %d", targetSeat)
	}

	switch s.ActivePower {
	case deck.PowerPeek:
		return resolvePeek(s, seat, targetSeat, targetIndex)
	case deck.PowerSwap:
		return resolveSwapStep(s, seat, targetSeat, targetIndex)
	case deck.PowerUnlock:
		return resolveUnlock(s, seat, targetSeat, targetIndex)
	case deck.PowerLock:
		return resolveLock(s, seat, targetSeat, targetIndex)
	case deck.PowerMassSwap:
		return resolveMassSwap(s, seat, targetSeat)
	}
	return s, nil, invalidf("no power is active")
}

func resolvePeek(s *State, seat, targetSeat, targetIndex int) (*State, []Event, error) {
	target := s.cardAt(targetSeat, targetIndex)
	if target == nil {
		return s, nil, invalidf("no card at seat %d index %d", targetSeat, targetIndex)
	}
	if target.Locked {
		return s, nil, invalidf("locked cards cannot be peeked")
	}
	if target.Peeking {
		return s, nil, invalidf("that card is already being peeked")
	}

	next := s.Clone()
	card := next.cardAt(targetSeat, targetIndex)
	card.Peeking = true

	// Only the peeker learns the card.
	next.Memories[seat] = next.Memories[seat].Observe(targetSeat, targetIndex, *card)

	revealed := *card
	advanceTurn(next)

	ev := infoEvent(EventPeekStarted, seat, fmt.Sprintf("%s peeked at a card", next.Players[seat].Name))
	ev.Target = &SlotRef{Seat: targetSeat, Index: targetIndex}
	ev.Card = &revealed
	return next, []Event{ev}, nil
}

// resolveSwapStep handles both halves of the two-step swap. The pending
// source is scoped to this power invocation only; advanceTurn clears it.
func resolveSwapStep(s *State, seat, targetSeat, targetIndex int) (*State, []Event, error) {
	target := s.cardAt(targetSeat, targetIndex)
	if target == nil {
		return s, nil, invalidf("no card at seat %d index %d", targetSeat, targetIndex)
	}
	if target.Locked {
		return s, nil, invalidf("locked cards cannot be swapped")
	}
	if target.Peeking {
		return s, nil, invalidf("that card is being peeked")
	}

	if s.SwapSource == nil {
		next := s.Clone()
		next.SwapSource = &SlotRef{Seat: targetSeat, Index: targetIndex}
		next.cardAt(targetSeat, targetIndex).Selected = true

		ev := infoEvent(EventSwapSourceChosen, seat, fmt.Sprintf("%s chose a card to swap", next.Players[seat].Name))
		ev.Target = next.SwapSource
		return next, []Event{ev}, nil
	}

	src := *s.SwapSource
	if src.Seat == targetSeat && src.Index == targetIndex {
		return s, nil, invalidf("pick a different card to swap with")
	}
	if s.cardAt(src.Seat, src.Index).Locked {
		// The source slot can be locked out from under the pending swap only
		// by a bug, but reject rather than trust it.
		return s, nil, invalidf("the first card is locked")
	}

	next := s.Clone()
	a := next.cardAt(src.Seat, src.Index)
	b := next.cardAt(targetSeat, targetIndex)
	a.Selected = false
	b.Selected = false
	*a, *b = *b, *a

	// The actor's knowledge of the two slots travels with the cards; every
	// other observer loses both slots.
	for o := 0; o < NumSeats; o++ {
		if o == seat {
			mem := next.Memories[o]
			known1, ok1 := mem.Lookup(src.Seat, src.Index)
			known2, ok2 := mem.Lookup(targetSeat, targetIndex)
			mem = mem.Forget(src.Seat, src.Index).Forget(targetSeat, targetIndex)
			if ok1 {
				mem = mem.Observe(targetSeat, targetIndex, known1)
			}
			if ok2 {
				mem = mem.Observe(src.Seat, src.Index, known2)
			}
			next.Memories[o] = mem
		} else {
			next.Memories[o] = next.Memories[o].Forget(src.Seat, src.Index).Forget(targetSeat, targetIndex)
		}
	}

	advanceTurn(next)

	ev := infoEvent(EventCardsSwapped, seat, fmt.Sprintf("%s swapped two cards", next.Players[seat].Name))
	ev.Target = &SlotRef{Seat: targetSeat, Index: targetIndex}
	return next, []Event{ev}, nil
}

func resolveUnlock(s *State, seat, targetSeat, targetIndex int) (*State, []Event, error) {
	target := s.cardAt(targetSeat, targetIndex)
	if target == nil {
		return s, nil, invalidf("no card at seat %d index %d", targetSeat, targetIndex)
	}
	if !target.Locked {
		return s, nil, invalidf("that card is not locked")
	}

	next := s.Clone()
	next.cardAt(targetSeat, targetIndex).Locked = false
	advanceTurn(next)

	ev := infoEvent(EventCardUnlocked, seat, fmt.Sprintf("%s unlocked a card", next.Players[seat].Name))
	ev.Target = &SlotRef{Seat: targetSeat, Index: targetIndex}
	return next, []Event{ev}, nil
}

func resolveLock(s *State, seat, targetSeat, targetIndex int) (*State, []Event, error) {
	target := s.cardAt(targetSeat, targetIndex)
	if target == nil {
		return s, nil, invalidf("no card at seat %d index %d", targetSeat, targetIndex)
	}
	if target.Locked {
		return s, nil, invalidf("that card is already locked")
	}
	if target.Peeking {
		return s, nil, invalidf("that card is being peeked")
	}

	next := s.Clone()
	next.cardAt(targetSeat, targetIndex).Locked = true
	advanceTurn(next)

	ev := infoEvent(EventCardLocked, seat, fmt.Sprintf("%s locked a card", next.Players[seat].Name))
	ev.Target = &SlotRef{Seat: targetSeat, Index: targetIndex}
	return next, []Event{ev}, nil
}

// resolveMassSwap exchanges all four slots between the actor and targetSeat,
// skipping any pair where either side is locked. Both hands become unknown to
// every observer, the actor included.
func resolveMassSwap(s *State, seat, targetSeat int) (*State, []Event, error) {
	if targetSeat == seat {
		return s, nil, invalidf("choose an opponent to swap hands with")
	}

	next := s.Clone()
	for i := 0; i < HandSize; i++ {
		a := next.cardAt(seat, i)
		b := next.cardAt(targetSeat, i)
		if a.Locked || b.Locked {
			continue
		}
		*a, *b = *b, *a
	}

	for o := 0; o < NumSeats; o++ {
		next.Memories[o] = next.Memories[o].ForgetSeat(seat).ForgetSeat(targetSeat)
	}

	advanceTurn(next)

	ev := infoEvent(EventHandsRotated, seat, fmt.Sprintf("%s swapped hands with %s", next.Players[seat].Name, next.Players[targetSeat].Name))
	ev.Target = &SlotRef{Seat: targetSeat, Index: -1}
	return next, []Event{ev}, nil
}
