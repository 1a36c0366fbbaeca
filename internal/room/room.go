package room

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/HazimKhairi/triple-seven-games/internal/ai"
	"github.com/HazimKhairi/triple-seven-games/internal/cache"
	"github.com/HazimKhairi/triple-seven-games/internal/config"
	"github.com/HazimKhairi/triple-seven-games/internal/engine"
)

// NumSeats mirrors the engine's fixed table size.
const NumSeats = engine.NumSeats

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomFull          = errors.New("room is full")
	ErrAlreadyStarted    = errors.New("game already started")
	ErrNotStarted        = errors.New("game has not started")
	ErrNotHost           = errors.New("only the host can do that")
	ErrNotInRoom         = errors.New("not in a room")
	ErrAlreadyInRoom     = errors.New("already in a room")
	ErrInvalidDifficulty = errors.New("unknown difficulty")
)

// Status is the room lifecycle.
type Status string

const (
	StatusLobby      Status = "lobby"
	StatusInProgress Status = "in_progress"
	StatusFinished   Status = "finished"
)

// seatSlot is one seat at the table. Humans carry a connection ID; AI seats
// and empty lobby seats carry none.
type seatSlot struct {
	ConnID   string
	Name     string
	IsAI     bool
	Occupied bool
}

// Room holds one table through its whole lifecycle. All fields are protected
// by mu; timer callbacks re-acquire it and re-check liveness before acting.
type Room struct {
	code     string
	mu       sync.Mutex
	log      *logrus.Entry
	cfg      config.GameConfig
	send     SendFunc
	recorder *cache.Recorder

	difficulty ai.Difficulty
	status     Status
	hostSeat   int
	seats      [NumSeats]seatSlot
	state      *engine.State
	rng        *rand.Rand

	// epoch increments on every applied transition; a timer armed for an
	// older epoch is stale and must not fire.
	epoch      int
	turnTimer  *time.Timer
	aiTimer    *time.Timer
	peekTimers map[string]*time.Timer
	closed     bool
}

func newRoom(code string, difficulty ai.Difficulty, cfg config.GameConfig, send SendFunc, recorder *cache.Recorder, log *logrus.Entry) *Room {
	return &Room{
		code:       code,
		log:        log.WithField("room", code),
		cfg:        cfg,
		send:       send,
		recorder:   recorder,
		difficulty: difficulty,
		status:     StatusLobby,
		rng:        rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64())),
		peekTimers: make(map[string]*time.Timer),
	}
}

// Code returns the room's join code.
func (r *Room) Code() string { return r.code }

// join seats a new human in the lowest empty seat.
func (r *Room) join(connID, name string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return -1, ErrRoomNotFound
	}
	if r.status != StatusLobby {
		return -1, ErrAlreadyStarted
	}

	seat := -1
	for i := range r.seats {
		if !r.seats[i].Occupied {
			seat = i
			break
		}
	}
	if seat == -1 {
		return -1, ErrRoomFull
	}

	if name == "" {
		name = fmt.Sprintf("Player %d", seat+1)
	}
	r.seats[seat] = seatSlot{ConnID: connID, Name: name, Occupied: true}
	r.log.WithFields(logrus.Fields{"seat": seat, "name": name}).Info("player joined")

	lobby := r.lobbyPayload()
	for _, slot := range r.seats {
		if slot.ConnID != "" {
			r.send(slot.ConnID, MsgPlayerJoined, lobby)
		}
	}
	return seat, nil
}

// start deals the game. Empty seats are filled with AI players.
func (r *Room) start(connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRoomNotFound
	}
	if r.status != StatusLobby {
		return ErrAlreadyStarted
	}
	if seat := r.seatOf(connID); seat != r.hostSeat {
		return ErrNotHost
	}

	var seats [NumSeats]engine.Seat
	for i := range r.seats {
		if !r.seats[i].Occupied {
			r.seats[i] = seatSlot{Name: fmt.Sprintf("Bot %d", i+1), IsAI: true, Occupied: true}
		}
		kind := engine.SeatHuman
		if r.seats[i].IsAI {
			kind = engine.SeatAI
		}
		seats[i] = engine.Seat{Kind: kind, Name: r.seats[i].Name}
	}

	seed := uint64(time.Now().UnixNano())
	r.state = engine.NewState(seats, r.cfg.IncludeJokers, seed)
	r.status = StatusInProgress
	r.epoch++
	r.log.WithField("difficulty", r.difficulty).Info("game started")
	r.recorder.RecordAction(r.code, cache.ActionRecord{Type: "game_started"})

	for i, slot := range r.seats {
		if slot.ConnID != "" {
			r.send(slot.ConnID, MsgGameStarted, r.buildView(i))
		}
	}
	r.armTimers()
	return nil
}

// humanAction runs one engine transition on behalf of connID's seat. Invalid
// actions bounce back to the actor as a warning toast and are not an error.
func (r *Room) humanAction(connID string, act func(s *engine.State, seat int) (*engine.State, []engine.Event, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRoomNotFound
	}
	if r.status != StatusInProgress {
		return ErrNotStarted
	}
	seat := r.seatOf(connID)
	if seat == -1 {
		return ErrNotInRoom
	}

	next, evs, err := act(r.state, seat)
	if err != nil {
		var invalid *engine.InvalidActionError
		if errors.As(err, &invalid) {
			r.send(connID, MsgToast, ToastPayload{Message: invalid.Reason, Severity: engine.SeverityWarning, Seat: seat})
			return nil
		}
		return err
	}
	r.apply(next, evs)
	return nil
}

// apply installs the new state, fans out events and views, and re-arms
// timers. Assumes the lock is held.
func (r *Room) apply(next *engine.State, evs []engine.Event) {
	r.state = next
	r.epoch++
	if r.state.Phase == engine.PhaseGameOver {
		// Status flips before the fan-out so the final views carry it.
		r.status = StatusFinished
	}

	for _, ev := range evs {
		r.recorder.RecordAction(r.code, cache.ActionRecord{
			Seat:   ev.Seat,
			Type:   string(ev.Type),
			Detail: map[string]any{"message": ev.Message},
		})
		r.broadcast(MsgToast, ToastPayload{Message: ev.Message, Severity: ev.Severity, Seat: ev.Seat})
		if ev.Type == engine.EventPeekStarted && ev.Card != nil {
			r.armPeekTimer(ev.Card.ID)
		}
	}

	r.broadcastState()

	if r.status == StatusFinished {
		r.finish()
		return
	}
	r.armTimers()
}

// finish closes out a completed game. Assumes the lock is held.
func (r *Room) finish() {
	stopTimer(&r.turnTimer)
	stopTimer(&r.aiTimer)

	payload := GameOverPayload{Winner: r.state.Winner}
	for i, p := range r.state.Players {
		payload.Names[i] = p.Name
		payload.Scores[i] = p.Score
	}
	r.broadcast(MsgGameOver, payload)

	if w := r.state.Winner; w >= 0 {
		r.recorder.RecordWin(r.state.Players[w].Name)
	}
	r.log.WithField("winner", r.state.Winner).Info("game over")
}

// armTimers schedules the next driver of the game: the AI delay when an AI
// seat is on turn, the idle timeout otherwise. Assumes the lock is held.
func (r *Room) armTimers() {
	stopTimer(&r.turnTimer)
	stopTimer(&r.aiTimer)
	if r.closed || r.status != StatusInProgress {
		return
	}

	seat := r.state.Turn
	epoch := r.epoch
	if r.seats[seat].IsAI {
		r.aiTimer = time.AfterFunc(r.cfg.AIDelay(), func() { r.runAITurn(seat, epoch) })
	} else {
		r.turnTimer = time.AfterFunc(r.cfg.TurnTimeout(), func() { r.timeoutTurn(seat, epoch) })
	}
}

func (r *Room) runAITurn(seat, epoch int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.status != StatusInProgress || r.epoch != epoch || r.state.Turn != seat {
		return
	}

	next, evs, err := engine.ExecuteAITurn(r.state, seat, r.difficulty, r.rng)
	if err != nil {
		r.log.WithError(err).WithField("seat", seat).Error("ai turn failed")
		return
	}
	r.apply(next, evs)
}

// timeoutTurn auto-plays for an idle human: draw-and-discard, discard, or
// abandon, depending on where the turn stalled.
func (r *Room) timeoutTurn(seat, epoch int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.status != StatusInProgress || r.epoch != epoch || r.state.Turn != seat {
		return
	}

	r.broadcast(MsgToast, ToastPayload{
		Message:  fmt.Sprintf("%s ran out of time", r.seats[seat].Name),
		Severity: engine.SeverityWarning,
		Seat:     seat,
	})

	s := r.state
	var (
		next *engine.State
		evs  []engine.Event
		err  error
	)
	switch s.Phase {
	case engine.PhaseTurnDraw:
		next, evs, err = engine.DrawFromDeck(s, seat)
		if err == nil && next.Phase == engine.PhaseTurnDecision {
			var more []engine.Event
			next, more, err = engine.DiscardDrawn(next, seat)
			evs = append(evs, more...)
		}
	case engine.PhaseTurnDecision:
		next, evs, err = engine.DiscardDrawn(s, seat)
	case engine.PhasePowerTarget:
		next, evs, err = engine.AbandonPower(s, seat)
	default:
		return
	}

	// An auto-discard can itself trigger a power; give that up too.
	if err == nil && next.Phase == engine.PhasePowerTarget && next.PowerSource == seat {
		var more []engine.Event
		next, more, err = engine.AbandonPower(next, seat)
		evs = append(evs, more...)
	}
	if err != nil {
		r.log.WithError(err).WithField("seat", seat).Error("timeout auto-play failed")
		return
	}
	r.apply(next, evs)
}

// armPeekTimer schedules the reveal window's end for one card, keyed by the
// card's identity so a fired timer leaves no entry behind. Assumes the lock is
// held.
func (r *Room) armPeekTimer(cardID string) {
	if old, ok := r.peekTimers[cardID]; ok {
		old.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(r.cfg.PeekDuration(), func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		// A rearm for the same card may have replaced this entry.
		if r.peekTimers[cardID] == t {
			delete(r.peekTimers, cardID)
		}
		if r.closed || r.status != StatusInProgress {
			return
		}
		r.state = engine.ClearPeek(r.state, cardID)
		r.broadcastState()
	})
	r.peekTimers[cardID] = t
}

// handleDisconnect removes connID from the table and returns how many human
// connections remain. Mid-game the seat converts to an AI and play continues.
func (r *Room) handleDisconnect(connID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	seat := r.seatOf(connID)
	if seat == -1 {
		return r.humanConns()
	}
	name := r.seats[seat].Name

	switch r.status {
	case StatusLobby:
		r.seats[seat] = seatSlot{}
		if seat == r.hostSeat {
			r.promoteHost()
		}
		lobby := r.lobbyPayload()
		for _, slot := range r.seats {
			if slot.ConnID != "" {
				r.send(slot.ConnID, MsgPlayerLeft, lobby)
			}
		}
		r.log.WithFields(logrus.Fields{"seat": seat, "name": name}).Info("player left lobby")

	case StatusInProgress:
		r.seats[seat].ConnID = ""
		r.seats[seat].IsAI = true
		st := r.state.Clone()
		st.Players[seat].Kind = engine.SeatAI
		r.state = st
		r.epoch++
		r.broadcast(MsgToast, ToastPayload{
			Message:  fmt.Sprintf("%s disconnected, an AI takes over", name),
			Severity: engine.SeverityWarning,
			Seat:     seat,
		})
		r.broadcastState()
		r.armTimers()
		r.log.WithFields(logrus.Fields{"seat": seat, "name": name}).Info("player converted to ai")

	case StatusFinished:
		r.seats[seat].ConnID = ""
	}

	return r.humanConns()
}

// promoteHost hands the lobby to the lowest-seated remaining human. Assumes
// the lock is held.
func (r *Room) promoteHost() {
	for i, slot := range r.seats {
		if slot.Occupied && slot.ConnID != "" {
			r.hostSeat = i
			return
		}
	}
}

// close tears the room down: no timer fires after this returns its callbacks'
// liveness checks.
func (r *Room) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	stopTimer(&r.turnTimer)
	stopTimer(&r.aiTimer)
	for id, t := range r.peekTimers {
		t.Stop()
		delete(r.peekTimers, id)
	}
	r.log.Info("room closed")
}

func (r *Room) seatOf(connID string) int {
	if connID == "" {
		return -1
	}
	for i, slot := range r.seats {
		if slot.ConnID == connID {
			return i
		}
	}
	return -1
}

func (r *Room) humanConns() int {
	n := 0
	for _, slot := range r.seats {
		if slot.ConnID != "" {
			n++
		}
	}
	return n
}

func (r *Room) broadcast(msgType string, payload any) {
	for _, slot := range r.seats {
		if slot.ConnID != "" {
			r.send(slot.ConnID, msgType, payload)
		}
	}
}

func (r *Room) broadcastState() {
	for i, slot := range r.seats {
		if slot.ConnID != "" {
			r.send(slot.ConnID, MsgStateUpdate, r.buildView(i))
		}
	}
}

func (r *Room) lobbySnapshot() LobbyPayload {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lobbyPayload()
}

func (r *Room) lobbyPayload() LobbyPayload {
	p := LobbyPayload{
		Code:       r.code,
		Difficulty: string(r.difficulty),
		HostSeat:   r.hostSeat,
	}
	for i, slot := range r.seats {
		p.Seats[i] = SeatInfo{Name: slot.Name, Occupied: slot.Occupied, IsAI: slot.IsAI}
	}
	return p
}

func stopTimer(t **time.Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}
