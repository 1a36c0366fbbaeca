package room

import (
	"github.com/HazimKhairi/triple-seven-games/internal/deck"
	"github.com/HazimKhairi/triple-seven-games/internal/engine"
)

// CardView is a card as one viewer is allowed to see it. Rank and suit are
// present only when Known is true; identity and board flags are always public.
type CardView struct {
	ID         string          `json:"id"`
	Known      bool            `json:"known"`
	Rank       deck.Rank       `json:"rank,omitempty"`
	Suit       deck.Suit       `json:"suit,omitempty"`
	Joker      bool            `json:"joker,omitempty"`
	JokerColor deck.JokerColor `json:"jokerColor,omitempty"`
	Value      int             `json:"value,omitempty"`
	Locked     bool            `json:"locked,omitempty"`
	Peeking    bool            `json:"peeking,omitempty"`
	Selected   bool            `json:"selected,omitempty"`
}

// PlayerView is one seat as shown to a viewer.
type PlayerView struct {
	Seat      int        `json:"seat"`
	Name      string     `json:"name"`
	IsAI      bool       `json:"isAi"`
	Connected bool       `json:"connected"`
	Hand      []CardView `json:"hand"`
	Score     int        `json:"score"`
}

// StateView is the full game state filtered for one seat. Hidden cards carry
// only their identity and flags; the deck is a count; the drawn card is
// revealed only to the seat holding it.
type StateView struct {
	Code          string               `json:"code"`
	You           int                  `json:"you"`
	Status        Status               `json:"status"`
	Phase         engine.Phase         `json:"phase"`
	Turn          int                  `json:"turn"`
	Round         int                  `json:"round"`
	DeckCount     int                  `json:"deckCount"`
	DiscardTop    *CardView            `json:"discardTop,omitempty"`
	DiscardBurned bool                 `json:"discardBurned"`
	Drawn         *CardView            `json:"drawn,omitempty"`
	HasDrawn      bool                 `json:"hasDrawn"`
	ActivePower   deck.Power           `json:"activePower,omitempty"`
	PowerSource   int                  `json:"powerSource"`
	SwapSource    *engine.SlotRef      `json:"swapSource,omitempty"`
	Winner        int                  `json:"winner"`
	Players       [NumSeats]PlayerView `json:"players"`
}

// cardView projects c for a viewer. Every card is face-down to everyone,
// owner included, unless the game-over reveal or an active peek shows it.
func cardView(c deck.Card) CardView {
	v := CardView{
		ID:       c.ID,
		Locked:   c.Locked,
		Peeking:  c.Peeking,
		Selected: c.Selected,
	}
	if c.FaceUp || c.Peeking {
		v.Known = true
		v.Rank = c.Rank
		v.Suit = c.Suit
		v.Joker = c.Joker
		v.JokerColor = c.JokerColor
		v.Value = c.Value()
	}
	return v
}

func revealedCardView(c deck.Card) CardView {
	v := cardView(c)
	v.Known = true
	v.Rank = c.Rank
	v.Suit = c.Suit
	v.Joker = c.Joker
	v.JokerColor = c.JokerColor
	v.Value = c.Value()
	return v
}

// buildView assembles the filtered projection for forSeat. Assumes the room
// lock is held and the game has started.
func (r *Room) buildView(forSeat int) StateView {
	s := r.state
	view := StateView{
		Code:          r.code,
		You:           forSeat,
		Status:        r.status,
		Phase:         s.Phase,
		Turn:          s.Turn,
		Round:         s.Round,
		DeckCount:     len(s.Deck),
		DiscardBurned: s.DiscardBurned,
		ActivePower:   s.ActivePower,
		PowerSource:   s.PowerSource,
		Winner:        s.Winner,
	}

	if top := s.DiscardTop(); top != nil {
		v := revealedCardView(*top)
		view.DiscardTop = &v
	}
	if s.SwapSource != nil {
		src := *s.SwapSource
		view.SwapSource = &src
	}
	if s.Drawn != nil {
		view.HasDrawn = true
		if forSeat == s.Turn {
			v := revealedCardView(*s.Drawn)
			view.Drawn = &v
		}
	}

	for i := range s.Players {
		p := s.Players[i]
		pv := PlayerView{
			Seat:      i,
			Name:      p.Name,
			IsAI:      p.Kind == engine.SeatAI,
			Connected: p.Kind == engine.SeatAI || r.seats[i].ConnID != "",
			Score:     p.Score,
			Hand:      make([]CardView, len(p.Hand)),
		}
		for j, c := range p.Hand {
			pv.Hand[j] = cardView(c)
		}
		view.Players[i] = pv
	}
	return view
}
