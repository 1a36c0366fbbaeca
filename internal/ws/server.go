package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/HazimKhairi/triple-seven-games/internal/ai"
	"github.com/HazimKhairi/triple-seven-games/internal/cache"
	"github.com/HazimKhairi/triple-seven-games/internal/config"
	"github.com/HazimKhairi/triple-seven-games/internal/room"
)

const (
	sendBuffer   = 64
	pingInterval = 15 * time.Second
)

// client is one websocket connection. Outbound messages go through a buffered
// channel so a slow socket never blocks a room holding its lock.
type client struct {
	id   string
	conn *websocket.Conn
	send chan Message
	log  *logrus.Entry
}

// Server accepts websocket connections and routes their messages into the
// room manager. The router itself is stateless; every per-player fact lives
// in the rooms.
type Server struct {
	log   *logrus.Entry
	rooms *room.Manager

	mu      sync.Mutex
	clients map[string]*client
}

func NewServer(cfg config.GameConfig, recorder *cache.Recorder, log *logrus.Entry) *Server {
	s := &Server{
		log:     log,
		clients: make(map[string]*client),
	}
	s.rooms = room.NewManager(cfg, s.sendTo, recorder, log)
	return s
}

// Rooms exposes the manager for ops endpoints.
func (s *Server) Rooms() *room.Manager { return s.rooms }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		s.log.WithError(err).Warn("websocket accept failed")
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan Message, sendBuffer),
	}
	c.log = s.log.WithField("conn", c.id)

	s.mu.Lock()
	s.clients[c.id] = c
	s.mu.Unlock()
	c.log.Info("client connected")

	ctx := r.Context()
	go c.writeLoop(ctx)
	s.readLoop(ctx, c)

	s.mu.Lock()
	delete(s.clients, c.id)
	s.mu.Unlock()
	s.rooms.HandleDisconnect(c.id)
	conn.Close(websocket.StatusNormalClosure, "bye")
	c.log.Info("client disconnected")
}

// sendTo delivers one message to one connection, dropping it if the client's
// buffer is full. Called by rooms while they hold their lock.
func (s *Server) sendTo(connID, msgType string, payload any) {
	s.mu.Lock()
	c := s.clients[connID]
	s.mu.Unlock()
	if c == nil {
		return
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		c.log.WithError(err).WithField("type", msgType).Error("failed to marshal payload")
		return
	}

	select {
	case c.send <- Message{Type: msgType, Payload: raw}:
	default:
		c.log.WithField("type", msgType).Warn("send buffer full, dropping message")
	}
}

func (c *client) writeLoop(ctx context.Context) {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()
	for {
		select {
		case msg := <-c.send:
			if err := wsjson.Write(ctx, c.conn, msg); err != nil {
				return
			}
		case <-ping.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) readLoop(ctx context.Context, c *client) {
	for {
		var msg Message
		if err := wsjson.Read(ctx, c.conn, &msg); err != nil {
			return
		}
		s.dispatch(c, msg)
	}
}

// dispatch routes one inbound message. A panic in a handler is contained to
// the offending connection.
func (s *Server) dispatch(c *client, msg Message) {
	defer func() {
		if rec := recover(); rec != nil {
			c.log.WithFields(logrus.Fields{"type": msg.Type, "panic": rec}).
				Errorf("handler panic:\n%s", debug.Stack())
			s.sendError(c, "internal error")
		}
	}()

	switch msg.Type {
	case MsgCreateRoom:
		var p CreateRoomPayload
		if !s.decode(c, msg, &p) {
			return
		}
		if p.Difficulty == "" {
			p.Difficulty = string(ai.Beginner)
		}
		if _, err := s.rooms.Create(c.id, p.Name, ai.Difficulty(p.Difficulty)); err != nil {
			s.sendError(c, err.Error())
		}

	case MsgJoinRoom:
		var p JoinRoomPayload
		if !s.decode(c, msg, &p) {
			return
		}
		if err := s.rooms.Join(c.id, p.Code, p.Name); err != nil {
			s.sendError(c, err.Error())
		}

	case MsgStartGame:
		if err := s.rooms.Start(c.id); err != nil {
			s.sendError(c, err.Error())
		}

	case MsgDrawFromDeck:
		if err := s.rooms.DrawFromDeck(c.id); err != nil {
			s.sendError(c, err.Error())
		}

	case MsgDrawFromDiscard:
		if err := s.rooms.DrawFromDiscard(c.id); err != nil {
			s.sendError(c, err.Error())
		}

	case MsgSwapWithHand:
		var p SwapPayload
		if !s.decode(c, msg, &p) {
			return
		}
		if err := s.rooms.SwapWithHand(c.id, p.Index); err != nil {
			s.sendError(c, err.Error())
		}

	case MsgDiscardDrawn:
		if err := s.rooms.DiscardDrawn(c.id); err != nil {
			s.sendError(c, err.Error())
		}

	case MsgSelectPowerTarget:
		var p TargetPayload
		if !s.decode(c, msg, &p) {
			return
		}
		if err := s.rooms.SelectPowerTarget(c.id, p.Seat, p.Index); err != nil {
			s.sendError(c, err.Error())
		}

	default:
		s.sendError(c, fmt.Sprintf("unknown message type %q", msg.Type))
	}
}

func (s *Server) decode(c *client, msg Message, dst any) bool {
	if len(msg.Payload) == 0 {
		return true
	}
	if err := json.Unmarshal(msg.Payload, dst); err != nil {
		s.sendError(c, fmt.Sprintf("bad %s payload", msg.Type))
		return false
	}
	return true
}

func (s *Server) sendError(c *client, text string) {
	s.sendTo(c.id, room.MsgError, ErrorPayload{Message: text})
}
