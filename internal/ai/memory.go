// Package ai implements the computer players: a fallible observation memory
// and three difficulty-tiered decision strategies. Everything here is pure:
// strategies take state in and return a decision, and memories are updated by
// copy so independent observers never alias each other's knowledge.
package ai

import "github.com/HazimKhairi/triple-seven-games/internal/deck"

// SlotKey addresses one hand slot on the table.
type SlotKey struct {
	Seat  int
	Index int
}

// Memory is what one AI seat knows about the table: the cards it has directly
// observed (by peeking, by swapping, or by placing them itself) and every
// card it has seen hit the discard pile.
//
// All update methods return a modified copy. Each AI seat owns an independent
// Memory; sharing a mutated map between observers is exactly the aliasing bug
// this shape exists to prevent.
type Memory struct {
	Known        map[SlotKey]deck.Card
	SeenDiscards []deck.Card
}

// NewMemory returns an empty memory.
func NewMemory() Memory {
	return Memory{Known: make(map[SlotKey]deck.Card)}
}

// Clone deep-copies the memory.
func (m Memory) Clone() Memory {
	out := Memory{
		Known:        make(map[SlotKey]deck.Card, len(m.Known)),
		SeenDiscards: make([]deck.Card, len(m.SeenDiscards)),
	}
	for k, v := range m.Known {
		out.Known[k] = v
	}
	copy(out.SeenDiscards, m.SeenDiscards)
	return out
}

// Observe records that the card at (seat, index) is c.
func (m Memory) Observe(seat, index int, c deck.Card) Memory {
	out := m.Clone()
	out.Known[SlotKey{Seat: seat, Index: index}] = c
	return out
}

// Forget drops any knowledge of the card at (seat, index). Called for every
// observer other than the actor whenever a slot's occupant changes.
func (m Memory) Forget(seat, index int) Memory {
	out := m.Clone()
	delete(out.Known, SlotKey{Seat: seat, Index: index})
	return out
}

// ForgetSeat drops knowledge of every slot belonging to seat. Used after
// full-hand events (mass swap / rotation).
func (m Memory) ForgetSeat(seat int) Memory {
	out := m.Clone()
	for k := range out.Known {
		if k.Seat == seat {
			delete(out.Known, k)
		}
	}
	return out
}

// RecordDiscard notes a card seen going to the discard pile.
func (m Memory) RecordDiscard(c deck.Card) Memory {
	out := m.Clone()
	out.SeenDiscards = append(out.SeenDiscards, c)
	return out
}

// Lookup returns the remembered card at (seat, index), if any.
func (m Memory) Lookup(seat, index int) (deck.Card, bool) {
	c, ok := m.Known[SlotKey{Seat: seat, Index: index}]
	return c, ok
}
