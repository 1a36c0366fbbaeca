package ai

import (
	"math/rand/v2"

	"github.com/HazimKhairi/triple-seven-games/internal/deck"
)

// Difficulty selects which strategy tier drives an AI seat.
type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Hardcore     Difficulty = "hardcore"
)

// Valid reports whether d names a known tier.
func (d Difficulty) Valid() bool {
	switch d {
	case Beginner, Intermediate, Hardcore:
		return true
	}
	return false
}

// DrawSource is where an AI chooses to draw from.
type DrawSource string

const (
	DrawDeck    DrawSource = "deck"
	DrawDiscard DrawSource = "discard"
)

// unknownSlotValue is the assumed value of a slot the hardcore tier has never
// seen. Six is the empirical mean of the Triple Seven point table.
const unknownSlotValue = 6

// ChooseDrawSource decides between the face-down deck and the visible discard
// top. discardTop is nil when the pile is empty or burned.
func ChooseDrawSource(d Difficulty, discardTop *deck.Card, rng *rand.Rand) DrawSource {
	if discardTop == nil {
		return DrawDeck
	}
	switch d {
	case Intermediate:
		if discardTop.Value() <= 3 || discardTop.Power() == deck.PowerLock {
			return DrawDiscard
		}
		return DrawDeck
	case Hardcore:
		v := discardTop.Value()
		switch {
		case v == 0 || v == 1:
			return DrawDiscard
		case discardTop.Power() == deck.PowerLock || discardTop.Power() == deck.PowerMassSwap:
			return DrawDiscard
		case v <= 4:
			return DrawDiscard
		}
		return DrawDeck
	default: // Beginner: coin flip.
		if rng.IntN(2) == 0 {
			return DrawDiscard
		}
		return DrawDeck
	}
}

// Decision is the outcome of the keep-or-discard choice. When Swap is false
// the drawn card goes straight to the discard pile.
type Decision struct {
	Swap  bool
	Index int
}

// Decide chooses whether to swap the drawn card into the hand and where.
// A locked slot is never a swap candidate.
func Decide(d Difficulty, drawn deck.Card, hand []deck.Card, mem Memory, seat int, rng *rand.Rand) Decision {
	open := openSlots(hand)
	if len(open) == 0 {
		return Decision{}
	}

	switch d {
	case Intermediate:
		return decideIntermediate(drawn, hand, mem, seat, open, rng)
	case Hardcore:
		return decideHardcore(drawn, hand, mem, seat, open)
	default:
		return decideBeginner(drawn, open, rng)
	}
}

// decideBeginner swaps randomly, biased toward keeping obviously good draws
// and ditching obviously bad ones.
func decideBeginner(drawn deck.Card, open []int, rng *rand.Rand) Decision {
	swapChance := 50
	if drawn.Value() <= 3 {
		swapChance = 80
	} else if drawn.Value() >= 9 {
		swapChance = 20
	}
	if rng.IntN(100) < swapChance {
		return Decision{Swap: true, Index: open[rng.IntN(len(open))]}
	}
	return Decision{}
}

// decideIntermediate replaces the worst known slot when the draw beats it,
// and prefers dumping mediocre draws into unknown slots over known-moderate
// ones.
func decideIntermediate(drawn deck.Card, hand []deck.Card, mem Memory, seat int, open []int, rng *rand.Rand) Decision {
	worstIdx, worstVal, unknown := scanOwnSlots(mem, seat, open)

	if worstIdx >= 0 && worstVal >= 6 && drawn.Value() < worstVal {
		return Decision{Swap: true, Index: worstIdx}
	}
	if len(unknown) > 0 && drawn.Value() <= 4 {
		return Decision{Swap: true, Index: unknown[rng.IntN(len(unknown))]}
	}
	return Decision{}
}

// decideHardcore treats unknown slots as worth unknownSlotValue and replaces
// the worst effective slot whenever the draw improves on it.
func decideHardcore(drawn deck.Card, hand []deck.Card, mem Memory, seat int, open []int) Decision {
	bestIdx := -1
	bestVal := -1
	for _, i := range open {
		v := unknownSlotValue
		if c, ok := mem.Lookup(seat, i); ok {
			v = c.Value()
		}
		if v > bestVal {
			bestVal = v
			bestIdx = i
		}
	}
	if bestIdx >= 0 && drawn.Value() < bestVal {
		return Decision{Swap: true, Index: bestIdx}
	}
	return Decision{}
}

// scanOwnSlots returns the worst known open slot (index and value) and the
// list of open slots with no memory entry.
func scanOwnSlots(mem Memory, seat int, open []int) (worstIdx, worstVal int, unknown []int) {
	worstIdx = -1
	for _, i := range open {
		c, ok := mem.Lookup(seat, i)
		if !ok {
			unknown = append(unknown, i)
			continue
		}
		if c.Value() > worstVal {
			worstVal = c.Value()
			worstIdx = i
		}
	}
	return worstIdx, worstVal, unknown
}

// openSlots returns indices of slots that may legally be replaced.
func openSlots(hand []deck.Card) []int {
	var open []int
	for i, c := range hand {
		if !c.Locked {
			open = append(open, i)
		}
	}
	return open
}
