package room

import (
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/HazimKhairi/triple-seven-games/internal/ai"
	"github.com/HazimKhairi/triple-seven-games/internal/cache"
	"github.com/HazimKhairi/triple-seven-games/internal/config"
	"github.com/HazimKhairi/triple-seven-games/internal/engine"
)

const (
	roomCodeLength = 6
	roomCodeChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Manager owns every live room and the connection-to-room index. Its lock
// covers the maps only; each room serializes its own state.
type Manager struct {
	mu       sync.Mutex
	log      *logrus.Entry
	cfg      config.GameConfig
	send     SendFunc
	recorder *cache.Recorder

	rooms  map[string]*Room
	byConn map[string]*Room
}

func NewManager(cfg config.GameConfig, send SendFunc, recorder *cache.Recorder, log *logrus.Entry) *Manager {
	return &Manager{
		log:      log,
		cfg:      cfg,
		send:     send,
		recorder: recorder,
		rooms:    make(map[string]*Room),
		byConn:   make(map[string]*Room),
	}
}

// Create opens a new room with connID as the host in seat 0 and returns the
// join code.
func (m *Manager) Create(connID, name string, difficulty ai.Difficulty) (string, error) {
	if !difficulty.Valid() {
		return "", ErrInvalidDifficulty
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Player 1"
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.byConn[connID] != nil {
		return "", ErrAlreadyInRoom
	}

	code := m.generateCode()
	r := newRoom(code, difficulty, m.cfg, m.send, m.recorder, m.log)
	r.seats[0] = seatSlot{ConnID: connID, Name: name, Occupied: true}
	m.rooms[code] = r
	m.byConn[connID] = r

	m.log.WithFields(logrus.Fields{"room": code, "host": name}).Info("room created")
	m.send(connID, MsgRoomCreated, r.lobbySnapshot())
	return code, nil
}

// Join seats connID in the room with the given code.
func (m *Manager) Join(connID, code, name string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	name = strings.TrimSpace(name)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.byConn[connID] != nil {
		return ErrAlreadyInRoom
	}
	r := m.rooms[code]
	if r == nil {
		return ErrRoomNotFound
	}
	if _, err := r.join(connID, name); err != nil {
		return err
	}
	m.byConn[connID] = r
	return nil
}

// Start begins the game in connID's room. Host only.
func (m *Manager) Start(connID string) error {
	r := m.roomFor(connID)
	if r == nil {
		return ErrNotInRoom
	}
	return r.start(connID)
}

// DrawFromDeck plays the draw-from-deck action for connID's seat.
func (m *Manager) DrawFromDeck(connID string) error {
	return m.action(connID, func(s *engine.State, seat int) (*engine.State, []engine.Event, error) {
		return engine.DrawFromDeck(s, seat)
	})
}

// DrawFromDiscard plays the pick-up-discard action for connID's seat.
func (m *Manager) DrawFromDiscard(connID string) error {
	return m.action(connID, func(s *engine.State, seat int) (*engine.State, []engine.Event, error) {
		return engine.DrawFromDiscard(s, seat)
	})
}

// SwapWithHand places the drawn card at index and discards what was there.
func (m *Manager) SwapWithHand(connID string, index int) error {
	return m.action(connID, func(s *engine.State, seat int) (*engine.State, []engine.Event, error) {
		return engine.SwapWithHand(s, seat, index)
	})
}

// DiscardDrawn throws away the drawn card.
func (m *Manager) DiscardDrawn(connID string) error {
	return m.action(connID, func(s *engine.State, seat int) (*engine.State, []engine.Event, error) {
		return engine.DiscardDrawn(s, seat)
	})
}

// SelectPowerTarget aims the pending power at a slot (index -1 for a whole
// hand).
func (m *Manager) SelectPowerTarget(connID string, targetSeat, targetIndex int) error {
	return m.action(connID, func(s *engine.State, seat int) (*engine.State, []engine.Event, error) {
		return engine.SelectPowerTarget(s, seat, targetSeat, targetIndex)
	})
}

// HandleDisconnect detaches connID from its room, converting its seat to an
// AI mid-game and tearing the room down when the last human leaves.
func (m *Manager) HandleDisconnect(connID string) {
	m.mu.Lock()
	r := m.byConn[connID]
	delete(m.byConn, connID)
	m.mu.Unlock()
	if r == nil {
		return
	}

	if remaining := r.handleDisconnect(connID); remaining == 0 {
		r.close()
		m.mu.Lock()
		delete(m.rooms, r.code)
		m.mu.Unlock()
	}
}

// RoomCount reports the number of live rooms.
func (m *Manager) RoomCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rooms)
}

func (m *Manager) roomFor(connID string) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byConn[connID]
}

func (m *Manager) action(connID string, act func(s *engine.State, seat int) (*engine.State, []engine.Event, error)) error {
	r := m.roomFor(connID)
	if r == nil {
		return ErrNotInRoom
	}
	return r.humanAction(connID, act)
}

// generateCode draws codes until one is free. Assumes m.mu is held.
func (m *Manager) generateCode() string {
	for {
		code := make([]byte, roomCodeLength)
		for i := range code {
			code[i] = roomCodeChars[rand.IntN(len(roomCodeChars))]
		}
		if _, exists := m.rooms[string(code)]; !exists {
			return string(code)
		}
	}
}
