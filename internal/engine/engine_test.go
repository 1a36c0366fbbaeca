package engine

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/HazimKhairi/triple-seven-games/internal/ai"
	"github.com/HazimKhairi/triple-seven-games/internal/deck"
)

var cardSeq int

// testCard builds a standard card with a unique identity.
func testCard(rank deck.Rank) deck.Card {
	cardSeq++
	return deck.Card{ID: fmt.Sprintf("c%03d-%s", cardSeq, rank), Suit: deck.SuitHearts, Rank: rank}
}

func testJoker() deck.Card {
	cardSeq++
	return deck.Card{ID: fmt.Sprintf("c%03d-joker", cardSeq), Joker: true, JokerColor: deck.JokerRed}
}

func handOf(ranks ...deck.Rank) []deck.Card {
	hand := make([]deck.Card, len(ranks))
	for i, r := range ranks {
		hand[i] = testCard(r)
	}
	return hand
}

// newTestState builds a deterministic mid-game state: seat 0 to draw, known
// hands, a harmless discard top, and a small deck.
func newTestState() *State {
	s := &State{
		Phase:  PhaseTurnDraw,
		Turn:   0,
		Round:  1,
		Winner: -1,
	}
	hands := [NumSeats][]deck.Card{
		handOf("2", "3", "4", "5"),
		handOf("A", "6", "8", "9"),
		handOf("7", "2", "3", "6"),
		handOf("9", "8", "5", "4"),
	}
	names := [NumSeats]string{"Ana", "Bram", "Cleo", "Dev"}
	for i := 0; i < NumSeats; i++ {
		s.Players[i] = Player{Seat: i, Kind: SeatHuman, Name: names[i], Hand: hands[i]}
		s.Memories[i] = ai.NewMemory()
	}
	top := testCard("6")
	top.FaceUp = true
	s.Discard = []deck.Card{top}
	s.Deck = handOf("3", "8", "2", "9", "5", "A")
	return s
}

func TestNewStateDeal(t *testing.T) {
	seats := [NumSeats]Seat{
		{Kind: SeatHuman, Name: "host"},
		{Kind: SeatAI, Name: "AI 1"},
		{Kind: SeatAI, Name: "AI 2"},
		{Kind: SeatAI, Name: "AI 3"},
	}
	s := NewState(seats, true, 42)

	for i, p := range s.Players {
		if len(p.Hand) != HandSize {
			t.Errorf("seat %d hand size: want %d, got %d", i, HandSize, len(p.Hand))
		}
		for _, c := range p.Hand {
			if c.FaceUp {
				t.Errorf("seat %d dealt a face-up card", i)
			}
		}
		if p.Score != 0 {
			t.Errorf("seat %d score: want 0 pre-game, got %d", i, p.Score)
		}
	}
	if len(s.Discard) != 1 || !s.Discard[0].FaceUp {
		t.Errorf("discard pile: want one face-up card, got %d", len(s.Discard))
	}
	if want := 54 - NumSeats*HandSize - 1; len(s.Deck) != want {
		t.Errorf("deck size: want %d, got %d", want, len(s.Deck))
	}
	if s.Phase != PhaseTurnDraw || s.Turn != 0 || s.Round != 1 || s.Winner != -1 {
		t.Errorf("initial state: phase=%s turn=%d round=%d winner=%d", s.Phase, s.Turn, s.Round, s.Winner)
	}
}

func TestDrawFromDeck(t *testing.T) {
	s := newTestState()
	topID := s.Deck[0].ID

	next, evs, err := DrawFromDeck(s, 0)
	if err != nil {
		t.Fatalf("DrawFromDeck: %v", err)
	}
	if next.Drawn == nil || next.Drawn.ID != topID {
		t.Fatal("drawn card is not the deck top")
	}
	if next.DrawnFrom != OriginDeck {
		t.Errorf("DrawnFrom: want deck, got %s", next.DrawnFrom)
	}
	if next.Phase != PhaseTurnDecision {
		t.Errorf("phase: want turn_decision, got %s", next.Phase)
	}
	if len(next.Deck) != len(s.Deck)-1 {
		t.Errorf("deck shrank by %d", len(s.Deck)-len(next.Deck))
	}
	if len(evs) != 1 || evs[0].Type != EventCardDrawn {
		t.Errorf("events: want one card_drawn, got %v", evs)
	}
	// Original untouched.
	if s.Drawn != nil || s.Phase != PhaseTurnDraw {
		t.Error("transition mutated the input state")
	}
}

func TestWrongActorRejected(t *testing.T) {
	s := newTestState()
	next, _, err := DrawFromDeck(s, 2)
	if !IsInvalidAction(err) {
		t.Fatalf("want invalid action, got %v", err)
	}
	if next != s {
		t.Error("rejected action returned a new state")
	}
}

func TestWrongPhaseRejected(t *testing.T) {
	s := newTestState()
	if _, _, err := DiscardDrawn(s, 0); !IsInvalidAction(err) {
		t.Fatalf("discard in turn_draw: want invalid action, got %v", err)
	}
	if _, _, err := SwapWithHand(s, 0, 1); !IsInvalidAction(err) {
		t.Fatalf("swap in turn_draw: want invalid action, got %v", err)
	}
	if _, _, err := SelectPowerTarget(s, 0, 1, 0); !IsInvalidAction(err) {
		t.Fatalf("power target with no power: want invalid action, got %v", err)
	}
}

// TestTurnRoundRobin drives four plain turns and checks seat order and the
// round counter.
func TestTurnRoundRobin(t *testing.T) {
	s := newTestState()
	for i := 0; i < NumSeats; i++ {
		if s.Turn != i {
			t.Fatalf("turn %d: want seat %d, got %d", i, i, s.Turn)
		}
		var err error
		s, _, err = DrawFromDeck(s, i)
		if err != nil {
			t.Fatalf("draw seat %d: %v", i, err)
		}
		// The test deck holds no power ranks, so discards never trigger.
		s, _, err = DiscardDrawn(s, i)
		if err != nil {
			t.Fatalf("discard seat %d: %v", i, err)
		}
	}
	if s.Turn != 0 {
		t.Errorf("after full cycle: want seat 0, got %d", s.Turn)
	}
	if s.Round != 2 {
		t.Errorf("round counter: want 2 after one full cycle, got %d", s.Round)
	}
}

func TestDrawFromEmptyDeckEndsGame(t *testing.T) {
	s := newTestState()
	s.Deck = nil
	// Score fixture: totals 14, 0, 12, 7 → seat 1 wins.
	s.Players[0].Hand = handOf("2", "3", "4", "5")
	s.Players[1].Hand = handOf("7", "7", "7", "7")
	s.Players[2].Hand = handOf("A", "2", "3", "6")
	s.Players[3].Hand = handOf("7", "A", "2", "4")

	next, evs, err := DrawFromDeck(s, 0)
	if err != nil {
		t.Fatalf("DrawFromDeck on empty deck: %v", err)
	}
	if next.Phase != PhaseGameOver {
		t.Fatalf("phase: want game_over, got %s", next.Phase)
	}
	if next.Winner != 1 {
		t.Errorf("winner: want seat 1 (score 0), got %d", next.Winner)
	}
	wantScores := [NumSeats]int{14, 0, 12, 7}
	for i, p := range next.Players {
		if p.Score != wantScores[i] {
			t.Errorf("seat %d score: want %d, got %d", i, wantScores[i], p.Score)
		}
		for _, c := range p.Hand {
			if !c.FaceUp {
				t.Errorf("seat %d holds a hidden card after game over", i)
			}
		}
	}
	if len(evs) != 1 || evs[0].Type != EventGameOver {
		t.Errorf("events: want one game_over, got %v", evs)
	}
}

func TestWinnerTieBreakSeatOrder(t *testing.T) {
	s := newTestState()
	s.Deck = nil
	s.Players[0].Hand = handOf("A", "2", "3", "4") // 10
	s.Players[1].Hand = handOf("7", "7", "3", "2") // 5
	s.Players[2].Hand = handOf("7", "A", "2", "2") // 5
	s.Players[3].Hand = handOf("5", "5", "5", "5") // 20

	next, _, err := DrawFromDeck(s, 0)
	if err != nil {
		t.Fatalf("DrawFromDeck: %v", err)
	}
	if next.Winner != 1 {
		t.Errorf("tie-break: want lowest seat 1, got %d", next.Winner)
	}
}

// TestLockPowerScenario walks a full lock turn: a discarded K triggers lock,
// targeting seat 2 index 1 locks it, and the turn passes to seat 1.
func TestLockPowerScenario(t *testing.T) {
	s := newTestState()
	s.Deck = append(handOf("K"), s.Deck...)

	s, _, err := DrawFromDeck(s, 0)
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	s, evs, err := DiscardDrawn(s, 0)
	if err != nil {
		t.Fatalf("discard: %v", err)
	}
	if s.Phase != PhasePowerTarget {
		t.Fatalf("phase: want power_target, got %s", s.Phase)
	}
	if s.ActivePower != deck.PowerLock || s.PowerSource != 0 {
		t.Fatalf("power: want lock from seat 0, got %s from %d", s.ActivePower, s.PowerSource)
	}
	if !s.DiscardBurned {
		t.Error("discard should be burned after a power trigger")
	}
	found := false
	for _, ev := range evs {
		if ev.Type == EventPowerTriggered && ev.Power == deck.PowerLock {
			found = true
		}
	}
	if !found {
		t.Error("missing power_triggered event")
	}

	s, _, err = SelectPowerTarget(s, 0, 2, 1)
	if err != nil {
		t.Fatalf("select target: %v", err)
	}
	if !s.Players[2].Hand[1].Locked {
		t.Error("target card not locked")
	}
	if s.Turn != 1 || s.Phase != PhaseTurnDraw {
		t.Errorf("turn after power: want seat 1 in turn_draw, got seat %d in %s", s.Turn, s.Phase)
	}
}

// TestDiscardBurnRule verifies the burned pile rejects draw_from_discard for
// the next player and that a later normal discard clears the burn.
func TestDiscardBurnRule(t *testing.T) {
	s := newTestState()
	s.Deck = append(handOf("K", "4"), s.Deck...)

	s, _, _ = DrawFromDeck(s, 0)
	s, _, _ = DiscardDrawn(s, 0) // K → lock
	s, _, err := SelectPowerTarget(s, 0, 1, 0)
	if err != nil {
		t.Fatalf("lock target: %v", err)
	}

	if _, _, err := DrawFromDiscard(s, 1); !IsInvalidAction(err) {
		t.Fatalf("draw from burned discard: want invalid action, got %v", err)
	}

	// Seat 1 draws from the deck and discards a plain card instead.
	s, _, err = DrawFromDeck(s, 1)
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	s, _, err = DiscardDrawn(s, 1)
	if err != nil {
		t.Fatalf("discard: %v", err)
	}
	if s.DiscardBurned {
		t.Error("burn flag should reset on a normal discard")
	}
	if _, _, err := DrawFromDiscard(s, 2); err != nil {
		t.Errorf("draw from discard after reset: %v", err)
	}
}

func TestSwapIntoLockedSlotRejected(t *testing.T) {
	s := newTestState()
	s.Players[0].Hand[2].Locked = true
	s, _, _ = DrawFromDeck(s, 0)

	next, _, err := SwapWithHand(s, 0, 2)
	if !IsInvalidAction(err) {
		t.Fatalf("swap into locked slot: want invalid action, got %v", err)
	}
	if next.Drawn == nil {
		t.Error("rejected swap consumed the drawn card")
	}

	// Another slot still works.
	next, _, err = SwapWithHand(s, 0, 0)
	if err != nil {
		t.Fatalf("swap into open slot: %v", err)
	}
	if next.Players[0].Hand[0].ID != s.Drawn.ID {
		t.Error("drawn card did not land in the hand")
	}
}

// TestSwapWithHandTriggersDisplacedPower covers the replaced-hand-card path:
// discarding a hand card via swap checks that card for a power.
func TestSwapWithHandTriggersDisplacedPower(t *testing.T) {
	s := newTestState()
	s.Players[0].Hand[3] = testCard("Q")
	s.Players[1].Hand[0].Locked = true // gives unlock a legal board

	s, _, _ = DrawFromDeck(s, 0)
	s, _, err := SwapWithHand(s, 0, 3)
	if err != nil {
		t.Fatalf("swap: %v", err)
	}
	if s.Phase != PhasePowerTarget || s.ActivePower != deck.PowerUnlock {
		t.Fatalf("want unlock power pending, got phase=%s power=%s", s.Phase, s.ActivePower)
	}
	top := s.DiscardTop()
	if top == nil || top.Rank != "Q" || !top.PowerUsed {
		t.Errorf("discard top: want consumed Q, got %+v", top)
	}
}

func TestUnlockSuppressedWhenNothingLocked(t *testing.T) {
	s := newTestState()
	s.Deck = append(handOf("Q"), s.Deck...)

	s, _, _ = DrawFromDeck(s, 0)
	s, _, err := DiscardDrawn(s, 0)
	if err != nil {
		t.Fatalf("discard: %v", err)
	}
	if s.Phase != PhaseTurnDraw || s.Turn != 1 {
		t.Errorf("unlock with nothing locked: want plain turn advance, got phase=%s turn=%d", s.Phase, s.Turn)
	}
	if s.DiscardBurned {
		t.Error("suppressed power must not burn the discard")
	}
	if top := s.DiscardTop(); top.PowerUsed {
		t.Error("suppressed power must not consume the card")
	}
}

func TestPowerUsedDoesNotRetrigger(t *testing.T) {
	s := newTestState()
	k := testCard("K")
	k.PowerUsed = true
	k.FaceUp = true
	s.Discard = append(s.Discard, k)

	s, _, err := DrawFromDiscard(s, 0)
	if err != nil {
		t.Fatalf("draw consumed K from discard: %v", err)
	}
	s, _, err = DiscardDrawn(s, 0)
	if err != nil {
		t.Fatalf("re-discard: %v", err)
	}
	if s.Phase != PhaseTurnDraw || s.Turn != 1 {
		t.Errorf("consumed power re-triggered: phase=%s turn=%d", s.Phase, s.Turn)
	}
}

func TestPeekPower(t *testing.T) {
	s := newTestState()
	s.Deck = append(handOf("10"), s.Deck...)

	s, _, _ = DrawFromDeck(s, 0)
	s, _, _ = DiscardDrawn(s, 0)
	if s.ActivePower != deck.PowerPeek {
		t.Fatalf("want peek power, got %s", s.ActivePower)
	}

	target := s.Players[2].Hand[0]
	s, evs, err := SelectPowerTarget(s, 0, 2, 0)
	if err != nil {
		t.Fatalf("peek: %v", err)
	}
	if !s.Players[2].Hand[0].Peeking {
		t.Error("target not marked peeking")
	}
	if s.Turn != 1 {
		t.Errorf("turn after peek: want 1, got %d", s.Turn)
	}
	if got, ok := s.Memories[0].Lookup(2, 0); !ok || got.ID != target.ID {
		t.Error("peeker's memory did not learn the card")
	}
	if _, ok := s.Memories[1].Lookup(2, 0); ok {
		t.Error("bystander memory learned a peeked card")
	}
	var peekEv *Event
	for i := range evs {
		if evs[i].Type == EventPeekStarted {
			peekEv = &evs[i]
		}
	}
	if peekEv == nil || peekEv.Card == nil || peekEv.Card.ID != target.ID {
		t.Error("peek event missing the revealed card")
	}
}

func TestPeekLockedCardRejected(t *testing.T) {
	s := newTestState()
	s.Deck = append(handOf("10"), s.Deck...)
	s.Players[2].Hand[0].Locked = true

	s, _, _ = DrawFromDeck(s, 0)
	s, _, _ = DiscardDrawn(s, 0)
	if _, _, err := SelectPowerTarget(s, 0, 2, 0); !IsInvalidAction(err) {
		t.Fatalf("peek locked card: want invalid action, got %v", err)
	}
}

func TestPeekingCardCannotBeRetargeted(t *testing.T) {
	s := newTestState()
	s.Deck = append(handOf("10"), s.Deck...)
	s.Players[2].Hand[0].Peeking = true

	s, _, _ = DrawFromDeck(s, 0)
	s, _, _ = DiscardDrawn(s, 0)
	if _, _, err := SelectPowerTarget(s, 0, 2, 0); !IsInvalidAction(err) {
		t.Fatalf("peek a peeking card: want invalid action, got %v", err)
	}
}

func TestClearPeek(t *testing.T) {
	s := newTestState()
	s.Players[2].Hand[0].Peeking = true
	id := s.Players[2].Hand[0].ID

	next := ClearPeek(s, id)
	if next.Players[2].Hand[0].Peeking {
		t.Error("peek flag not cleared")
	}
	if !s.Players[2].Hand[0].Peeking {
		t.Error("ClearPeek mutated the input state")
	}
}

// TestSwapPowerTwoStep walks the full two-step swap: source select, same-slot
// rejection, then the exchange.
func TestSwapPowerTwoStep(t *testing.T) {
	s := newTestState()
	s.Deck = append(handOf("J"), s.Deck...)

	s, _, _ = DrawFromDeck(s, 0)
	s, _, _ = DiscardDrawn(s, 0)
	if s.ActivePower != deck.PowerSwap {
		t.Fatalf("want swap power, got %s", s.ActivePower)
	}

	ownCard := s.Players[0].Hand[1]
	oppCard := s.Players[3].Hand[2]

	// Step one: record the source, stay in power_target.
	s, evs, err := SelectPowerTarget(s, 0, 0, 1)
	if err != nil {
		t.Fatalf("swap step 1: %v", err)
	}
	if s.Phase != PhasePowerTarget {
		t.Fatalf("phase after step 1: want power_target, got %s", s.Phase)
	}
	if s.SwapSource == nil || s.SwapSource.Seat != 0 || s.SwapSource.Index != 1 {
		t.Fatalf("swap source: want (0,1), got %+v", s.SwapSource)
	}
	if s.Turn != 0 {
		t.Error("turn advanced after the first swap step")
	}
	if len(evs) != 1 || evs[0].Type != EventSwapSourceChosen {
		t.Errorf("step 1 events: want swap_source_chosen, got %v", evs)
	}

	// Same slot again is rejected.
	if _, _, err := SelectPowerTarget(s, 0, 0, 1); !IsInvalidAction(err) {
		t.Fatalf("same-slot swap: want invalid action, got %v", err)
	}

	// Step two: the exchange happens and the turn advances.
	s, _, err = SelectPowerTarget(s, 0, 3, 2)
	if err != nil {
		t.Fatalf("swap step 2: %v", err)
	}
	if s.Players[0].Hand[1].ID != oppCard.ID || s.Players[3].Hand[2].ID != ownCard.ID {
		t.Error("cards were not exchanged")
	}
	if s.Turn != 1 || s.SwapSource != nil {
		t.Errorf("after swap: want seat 1 with no pending source, got seat %d %+v", s.Turn, s.SwapSource)
	}
}

func TestSwapPowerLockedTargetRejected(t *testing.T) {
	s := newTestState()
	s.Deck = append(handOf("J"), s.Deck...)
	s.Players[3].Hand[2].Locked = true

	s, _, _ = DrawFromDeck(s, 0)
	s, _, _ = DiscardDrawn(s, 0)
	s, _, _ = SelectPowerTarget(s, 0, 0, 1)
	if _, _, err := SelectPowerTarget(s, 0, 3, 2); !IsInvalidAction(err) {
		t.Fatalf("swap with locked card: want invalid action, got %v", err)
	}
}

// TestMassSwap exchanges hands with one opponent, slot by slot, skipping any
// pair where either side is locked.
func TestMassSwap(t *testing.T) {
	s := newTestState()
	s.Deck = append([]deck.Card{testJoker()}, s.Deck...)
	s.Players[0].Hand[1].Locked = true // pair 1 must not move
	s.Players[2].Hand[3].Locked = true // pair 3 must not move

	before0 := append([]deck.Card(nil), s.Players[0].Hand...)
	before2 := append([]deck.Card(nil), s.Players[2].Hand...)

	// Seed some memory to verify the wipe.
	s.Memories[1] = s.Memories[1].Observe(0, 0, s.Players[0].Hand[0]).Observe(2, 2, s.Players[2].Hand[2])

	s, _, _ = DrawFromDeck(s, 0)
	s, _, _ = DiscardDrawn(s, 0)
	if s.ActivePower != deck.PowerMassSwap {
		t.Fatalf("want mass_swap power, got %s", s.ActivePower)
	}

	s, _, err := SelectPowerTarget(s, 0, 2, -1)
	if err != nil {
		t.Fatalf("mass swap: %v", err)
	}

	for i := 0; i < HandSize; i++ {
		lockedPair := i == 1 || i == 3
		if lockedPair {
			if s.Players[0].Hand[i].ID != before0[i].ID || s.Players[2].Hand[i].ID != before2[i].ID {
				t.Errorf("locked pair %d moved", i)
			}
		} else {
			if s.Players[0].Hand[i].ID != before2[i].ID || s.Players[2].Hand[i].ID != before0[i].ID {
				t.Errorf("open pair %d not exchanged", i)
			}
		}
	}

	if _, ok := s.Memories[1].Lookup(0, 0); ok {
		t.Error("observer memory of seat 0 survived the mass swap")
	}
	if _, ok := s.Memories[1].Lookup(2, 2); ok {
		t.Error("observer memory of seat 2 survived the mass swap")
	}
	if s.Turn != 1 {
		t.Errorf("turn after mass swap: want 1, got %d", s.Turn)
	}
}

func TestMassSwapSelfTargetRejected(t *testing.T) {
	s := newTestState()
	s.Deck = append([]deck.Card{testJoker()}, s.Deck...)
	s, _, _ = DrawFromDeck(s, 0)
	s, _, _ = DiscardDrawn(s, 0)
	if _, _, err := SelectPowerTarget(s, 0, 0, -1); !IsInvalidAction(err) {
		t.Fatalf("self mass swap: want invalid action, got %v", err)
	}
}

// TestAbandonedSwapClearsSelection ensures the selection mark from swap step
// one does not outlive the power: abandoning after the source pick leaves the
// board with no selected card and no pending source.
func TestAbandonedSwapClearsSelection(t *testing.T) {
	s := newTestState()
	s.Deck = append(handOf("J"), s.Deck...)

	s, _, _ = DrawFromDeck(s, 0)
	s, _, _ = DiscardDrawn(s, 0)
	s, _, err := SelectPowerTarget(s, 0, 0, 1)
	if err != nil {
		t.Fatalf("swap step 1: %v", err)
	}
	if !s.Players[0].Hand[1].Selected {
		t.Fatal("step 1 did not mark the source card")
	}

	s, _, err = AbandonPower(s, 0)
	if err != nil {
		t.Fatalf("abandon: %v", err)
	}
	if s.Players[0].Hand[1].Selected {
		t.Error("selection mark survived the abandoned swap")
	}
	if s.SwapSource != nil {
		t.Errorf("swap source survived the abandoned swap: %+v", s.SwapSource)
	}
	if s.Turn != 1 || s.Phase != PhaseTurnDraw {
		t.Errorf("after abandon: want seat 1 turn_draw, got seat %d %s", s.Turn, s.Phase)
	}
}

func TestAbandonPower(t *testing.T) {
	s := newTestState()
	s.Deck = append(handOf("K"), s.Deck...)
	s, _, _ = DrawFromDeck(s, 0)
	s, _, _ = DiscardDrawn(s, 0)

	if _, _, err := AbandonPower(s, 1); !IsInvalidAction(err) {
		t.Fatalf("abandon by wrong seat: want invalid action, got %v", err)
	}
	s, _, err := AbandonPower(s, 0)
	if err != nil {
		t.Fatalf("abandon: %v", err)
	}
	if s.Turn != 1 || s.Phase != PhaseTurnDraw {
		t.Errorf("after abandon: want seat 1 turn_draw, got seat %d %s", s.Turn, s.Phase)
	}
}

// TestMemoryBookkeepingOnSwap checks the acting seat learns what it placed
// while other observers forget the slot.
func TestMemoryBookkeepingOnSwap(t *testing.T) {
	s := newTestState()
	// Seat 3 previously observed seat 0's slot 1.
	s.Memories[3] = s.Memories[3].Observe(0, 1, s.Players[0].Hand[1])

	s, _, _ = DrawFromDeck(s, 0)
	drawnID := s.Drawn.ID
	s, _, err := SwapWithHand(s, 0, 1)
	if err != nil {
		t.Fatalf("swap: %v", err)
	}

	if got, ok := s.Memories[0].Lookup(0, 1); !ok || got.ID != drawnID {
		t.Error("actor memory did not learn the placed card")
	}
	if _, ok := s.Memories[3].Lookup(0, 1); ok {
		t.Error("observer memory survived a slot mutation it did not perform")
	}
	found := false
	for _, c := range s.Memories[2].SeenDiscards {
		if c.ID == s.DiscardTop().ID {
			found = true
		}
	}
	if !found {
		t.Error("observers did not record the discarded card")
	}
}

// TestExecuteAITurnEmptyDeck forces the AI to the deck (burned discard) with
// nothing left in it: the turn must end the game without a drawn card.
func TestExecuteAITurnEmptyDeck(t *testing.T) {
	s := newTestState()
	s.Deck = nil
	s.DiscardBurned = true
	rng := rand.New(rand.NewPCG(1, 2))

	next, evs, err := ExecuteAITurn(s, 0, ai.Hardcore, rng)
	if err != nil {
		t.Fatalf("ExecuteAITurn: %v", err)
	}
	if next.Phase != PhaseGameOver {
		t.Fatalf("phase: want game_over, got %s", next.Phase)
	}
	if next.Drawn != nil {
		t.Error("game-ending draw still produced a drawn card")
	}
	if next.Winner < 0 || next.Winner >= NumSeats {
		t.Errorf("winner out of range: %d", next.Winner)
	}
	if len(evs) != 1 || evs[0].Type != EventGameOver {
		t.Errorf("events: want one game_over, got %v", evs)
	}
}

// TestExecuteAITurnFullTurn runs one deterministic hardcore turn: the "6"
// discard top sends it to the deck, the low draw beats the assumed value of
// an unseen slot, and the displaced card lands on the discard pile.
func TestExecuteAITurnFullTurn(t *testing.T) {
	s := newTestState()
	drawnID := s.Deck[0].ID
	displacedID := s.Players[0].Hand[0].ID
	rng := rand.New(rand.NewPCG(3, 4))

	next, _, err := ExecuteAITurn(s, 0, ai.Hardcore, rng)
	if err != nil {
		t.Fatalf("ExecuteAITurn: %v", err)
	}
	if next.Players[0].Hand[0].ID != drawnID {
		t.Error("drawn card did not land in the first unseen slot")
	}
	if top := next.DiscardTop(); top == nil || top.ID != displacedID {
		t.Error("displaced card did not reach the discard pile")
	}
	if next.Turn != 1 || next.Phase != PhaseTurnDraw {
		t.Errorf("after AI turn: want seat 1 turn_draw, got seat %d %s", next.Turn, next.Phase)
	}
	if s.Turn != 0 || s.Players[0].Hand[0].ID == drawnID {
		t.Error("AI turn mutated the input state")
	}
}

// TestAIForcedDiscardSkipsPower covers the forced fallback used when an AI's
// chosen swap slot is locked: the drawn card is discarded with no power check,
// so a K goes down inert and the pile is not burned.
func TestAIForcedDiscardSkipsPower(t *testing.T) {
	s := newTestState()
	s, _, _ = DrawFromDeck(s, 0)
	k := testCard("K")
	s.Drawn = &k

	next, evs, err := discardDrawnNoPower(s, 0)
	if err != nil {
		t.Fatalf("discardDrawnNoPower: %v", err)
	}
	if next.Phase != PhaseTurnDraw || next.Turn != 1 {
		t.Errorf("forced discard: want plain turn advance, got phase=%s turn=%d", next.Phase, next.Turn)
	}
	top := next.DiscardTop()
	if top == nil || top.Rank != "K" {
		t.Fatalf("discard top: want the K, got %+v", top)
	}
	if top.PowerUsed {
		t.Error("forced discard consumed the power")
	}
	if next.DiscardBurned {
		t.Error("forced discard burned the pile")
	}
	if len(evs) != 1 || evs[0].Type != EventCardDiscarded {
		t.Errorf("events: want one card_discarded, got %v", evs)
	}
}
