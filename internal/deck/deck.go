// Package deck implements the Triple Seven card model and deck operations.
//
// A deck holds 52 standard cards plus, optionally, two jokers (one red, one
// black). Sevens are worth zero, the card the whole game is named after.
package deck

import (
	"math/rand/v2"

	"github.com/google/uuid"
)

// Suit identifies one of the four standard suits. Jokers carry no suit.
type Suit string

const (
	SuitHearts   Suit = "hearts"
	SuitDiamonds Suit = "diamonds"
	SuitClubs    Suit = "clubs"
	SuitSpades   Suit = "spades"
)

// Suits lists the standard suits in deck-construction order.
var Suits = [4]Suit{SuitHearts, SuitDiamonds, SuitClubs, SuitSpades}

// Rank is the face rank of a standard card ("A", "2".."10", "J", "Q", "K").
type Rank string

// Ranks lists all thirteen ranks in deck-construction order.
var Ranks = [13]Rank{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

// JokerColor distinguishes the two jokers.
type JokerColor string

const (
	JokerRed   JokerColor = "red"
	JokerBlack JokerColor = "black"
)

// Power is the special effect granted by discarding certain cards.
type Power string

const (
	PowerNone     Power = ""
	PowerPeek     Power = "peek"      // 10: look at any one card
	PowerSwap     Power = "swap"      // J: exchange any two cards
	PowerUnlock   Power = "unlock"    // Q: unlock a locked card
	PowerLock     Power = "lock"      // K: lock a card in place
	PowerMassSwap Power = "mass_swap" // joker: exchange full hands with one opponent
)

// Card is a single card instance. ID is unique per physical card so clients
// and AI memories can track a card across swaps.
//
// A card is either standard (Suit and Rank set, Joker false) or a joker
// (Suit and Rank empty, Joker true, JokerColor set).
type Card struct {
	ID         string     `json:"id"`
	Suit       Suit       `json:"suit,omitempty"`
	Rank       Rank       `json:"rank,omitempty"`
	Joker      bool       `json:"joker,omitempty"`
	JokerColor JokerColor `json:"jokerColor,omitempty"`

	FaceUp    bool `json:"faceUp"`
	Locked    bool `json:"locked"`
	PowerUsed bool `json:"powerUsed"`

	// Presentation hints that also constrain server logic: a peeking card
	// cannot be targeted again while the peek is live.
	Selected bool `json:"selected,omitempty"`
	Peeking  bool `json:"peeking,omitempty"`
}

// Value returns the point value counted at game end.
// Seven → 0, Ace → 1, 10/J/Q/K and jokers → 10, everything else face value.
func (c Card) Value() int {
	if c.Joker {
		return 10
	}
	switch c.Rank {
	case "7":
		return 0
	case "A":
		return 1
	case "10", "J", "Q", "K":
		return 10
	case "2":
		return 2
	case "3":
		return 3
	case "4":
		return 4
	case "5":
		return 5
	case "6":
		return 6
	case "8":
		return 8
	case "9":
		return 9
	}
	return 0
}

// Power returns the special effect this card grants when discarded, or
// PowerNone. A card whose power has already been consumed grants nothing.
func (c Card) Power() Power {
	if c.PowerUsed {
		return PowerNone
	}
	if c.Joker {
		return PowerMassSwap
	}
	switch c.Rank {
	case "10":
		return PowerPeek
	case "J":
		return PowerSwap
	case "Q":
		return PowerUnlock
	case "K":
		return PowerLock
	}
	return PowerNone
}

// Build constructs a fresh ordered deck: 4 suits x 13 ranks, plus two jokers
// when includeJokers is set. Every card gets a unique identity.
func Build(includeJokers bool) []Card {
	size := 52
	if includeJokers {
		size = 54
	}
	cards := make([]Card, 0, size)
	for _, s := range Suits {
		for _, r := range Ranks {
			cards = append(cards, Card{ID: uuid.NewString(), Suit: s, Rank: r})
		}
	}
	if includeJokers {
		cards = append(cards,
			Card{ID: uuid.NewString(), Joker: true, JokerColor: JokerRed},
			Card{ID: uuid.NewString(), Joker: true, JokerColor: JokerBlack},
		)
	}
	return cards
}

// Shuffle returns a uniformly shuffled copy of cards. The input is not
// mutated.
func Shuffle(cards []Card, rng *rand.Rand) []Card {
	out := make([]Card, len(cards))
	copy(out, cards)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Deal removes the first n cards and returns them alongside the remainder.
// Purely positional, no randomness.
func Deal(cards []Card, n int) (hand, rest []Card) {
	if n > len(cards) {
		n = len(cards)
	}
	hand = make([]Card, n)
	copy(hand, cards[:n])
	rest = make([]Card, len(cards)-n)
	copy(rest, cards[n:])
	return hand, rest
}
