package ai

import (
	"math/rand/v2"
	"sort"

	"github.com/HazimKhairi/triple-seven-games/internal/deck"
)

// Target addresses a power's destination. Index is -1 for whole-hand powers
// (mass swap picks a seat, not a slot).
type Target struct {
	Seat  int
	Index int
}

// PowerTarget chooses where to aim a triggered power. opponents maps every
// other seat to its hand. The swap power returns two targets (source slot
// first, then the slot it is exchanged with); every other power returns one.
// A nil result means no legal target exists and the caller must resolve the
// power as a no-op.
func PowerTarget(d Difficulty, power deck.Power, seat int, hand []deck.Card, opponents map[int][]deck.Card, mem Memory, rng *rand.Rand) []Target {
	switch power {
	case deck.PowerPeek:
		return peekTarget(d, seat, hand, opponents, mem, rng)
	case deck.PowerSwap:
		return swapTargets(d, seat, hand, opponents, mem, rng)
	case deck.PowerUnlock:
		return unlockTarget(d, seat, hand, opponents, mem, rng)
	case deck.PowerLock:
		return lockTarget(d, seat, hand, opponents, mem, rng)
	case deck.PowerMassSwap:
		return massSwapTarget(d, seat, opponents, mem, rng)
	}
	return nil
}

// targetable reports whether a card may be aimed at by peek/swap/lock.
func targetable(c deck.Card) bool {
	return !c.Locked && !c.Peeking
}

// legalSlots collects every targetable slot on the table.
func legalSlots(seat int, hand []deck.Card, opponents map[int][]deck.Card) []Target {
	var out []Target
	for i, c := range hand {
		if targetable(c) {
			out = append(out, Target{Seat: seat, Index: i})
		}
	}
	for s, h := range opponents {
		for i, c := range h {
			if targetable(c) {
				out = append(out, Target{Seat: s, Index: i})
			}
		}
	}
	// Map iteration order is random; sort for deterministic choice under a
	// seeded rng.
	sort.Slice(out, func(a, b int) bool {
		if out[a].Seat != out[b].Seat {
			return out[a].Seat < out[b].Seat
		}
		return out[a].Index < out[b].Index
	})
	return out
}

func pickUniform(ts []Target, rng *rand.Rand) []Target {
	if len(ts) == 0 {
		return nil
	}
	return []Target{ts[rng.IntN(len(ts))]}
}

// peekTarget looks at an own unknown slot when the tier uses memory,
// otherwise any legal card.
func peekTarget(d Difficulty, seat int, hand []deck.Card, opponents map[int][]deck.Card, mem Memory, rng *rand.Rand) []Target {
	legal := legalSlots(seat, hand, opponents)
	if len(legal) == 0 {
		return nil
	}
	if d == Beginner {
		return pickUniform(legal, rng)
	}
	var ownUnknown []Target
	for _, t := range legal {
		if t.Seat != seat {
			continue
		}
		if _, ok := mem.Lookup(seat, t.Index); !ok {
			ownUnknown = append(ownUnknown, t)
		}
	}
	if len(ownUnknown) > 0 {
		return pickUniform(ownUnknown, rng)
	}
	return pickUniform(legal, rng)
}

// swapTargets picks the own worst known slot and the opponent's best known
// slot. Falls back to uniform randomness when memory offers nothing.
func swapTargets(d Difficulty, seat int, hand []deck.Card, opponents map[int][]deck.Card, mem Memory, rng *rand.Rand) []Target {
	var ownLegal, oppLegal []Target
	for _, t := range legalSlots(seat, hand, opponents) {
		if t.Seat == seat {
			ownLegal = append(ownLegal, t)
		} else {
			oppLegal = append(oppLegal, t)
		}
	}
	if len(ownLegal) == 0 || len(oppLegal) == 0 {
		return nil
	}

	src := pickUniform(ownLegal, rng)[0]
	dst := pickUniform(oppLegal, rng)[0]

	if d != Beginner {
		// Own worst known slot (highest value) is the one to give away.
		bestVal := -1
		for _, t := range ownLegal {
			if c, ok := mem.Lookup(seat, t.Index); ok && c.Value() > bestVal {
				bestVal = c.Value()
				src = t
			}
		}
		// Opponent's best known slot (lowest value) is the one to take.
		bestOpp := 99
		for _, t := range oppLegal {
			if c, ok := mem.Lookup(t.Seat, t.Index); ok && c.Value() < bestOpp {
				bestOpp = c.Value()
				dst = t
			}
		}
	}
	return []Target{src, dst}
}

// unlockTarget prefers freeing an own locked slot so it can be replaced
// later. Returns nil when nothing on the board is locked.
func unlockTarget(d Difficulty, seat int, hand []deck.Card, opponents map[int][]deck.Card, mem Memory, rng *rand.Rand) []Target {
	var own, all []Target
	for i, c := range hand {
		if c.Locked {
			t := Target{Seat: seat, Index: i}
			own = append(own, t)
			all = append(all, t)
		}
	}
	seats := sortedSeats(opponents)
	for _, s := range seats {
		for i, c := range opponents[s] {
			if c.Locked {
				all = append(all, Target{Seat: s, Index: i})
			}
		}
	}
	if len(all) == 0 {
		return nil
	}
	if d == Beginner {
		return pickUniform(all, rng)
	}
	if len(own) > 0 {
		// Worst known locked card first; any own locked card otherwise.
		pick := own[0]
		bestVal := -1
		for _, t := range own {
			if c, ok := mem.Lookup(seat, t.Index); ok && c.Value() > bestVal {
				bestVal = c.Value()
				pick = t
			}
		}
		return []Target{pick}
	}
	return pickUniform(all, rng)
}

// lockTarget pins an opponent's worst known card in place, denying them the
// chance to replace it.
func lockTarget(d Difficulty, seat int, hand []deck.Card, opponents map[int][]deck.Card, mem Memory, rng *rand.Rand) []Target {
	var oppLegal []Target
	for _, t := range legalSlots(seat, hand, opponents) {
		if t.Seat != seat {
			oppLegal = append(oppLegal, t)
		}
	}
	if len(oppLegal) == 0 {
		// Nothing hostile to pin; lock anything legal (own slots included).
		return pickUniform(legalSlots(seat, hand, opponents), rng)
	}
	if d == Beginner {
		return pickUniform(oppLegal, rng)
	}
	pick := oppLegal[rng.IntN(len(oppLegal))]
	bestVal := -1
	for _, t := range oppLegal {
		if c, ok := mem.Lookup(t.Seat, t.Index); ok && c.Value() > bestVal {
			bestVal = c.Value()
			pick = t
		}
	}
	return []Target{pick}
}

// massSwapTarget picks the opponent whose hand looks strongest (lowest
// estimated total, unknown slots assumed mid-value).
func massSwapTarget(d Difficulty, seat int, opponents map[int][]deck.Card, mem Memory, rng *rand.Rand) []Target {
	seats := sortedSeats(opponents)
	if len(seats) == 0 {
		return nil
	}
	if d == Beginner {
		return []Target{{Seat: seats[rng.IntN(len(seats))], Index: -1}}
	}
	best := seats[rng.IntN(len(seats))]
	bestEst := 1 << 30
	anyKnown := false
	for _, s := range seats {
		est := 0
		known := false
		for i := range opponents[s] {
			if c, ok := mem.Lookup(s, i); ok {
				est += c.Value()
				known = true
			} else {
				est += unknownSlotValue
			}
		}
		if known && est < bestEst {
			bestEst = est
			best = s
			anyKnown = true
		}
	}
	if !anyKnown {
		best = seats[rng.IntN(len(seats))]
	}
	return []Target{{Seat: best, Index: -1}}
}

func sortedSeats(opponents map[int][]deck.Card) []int {
	seats := make([]int, 0, len(opponents))
	for s := range opponents {
		seats = append(seats, s)
	}
	sort.Ints(seats)
	return seats
}
